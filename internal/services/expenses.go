package services

import (
	"context"
	"strings"

	"gemdash/internal/core"
	"gemdash/internal/ledger"
	applog "gemdash/internal/log"

	"github.com/shopspring/decimal"
)

// Expenses sums every expense-like record across every tab of a module.
type Expenses struct {
	reader *ledger.Reader
	tabs   ModuleTabs
	logger *applog.Logger
	Fanout int
}

func NewExpenses(reader *ledger.Reader, tabs ModuleTabs, logger *applog.Logger) *Expenses {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Expenses{
		reader: reader,
		tabs:   tabs,
		logger: logger.WithComponent(applog.ComponentExpenses),
		Fanout: DefaultFanout,
	}
}

// TotalExpenses returns the module's expense total in canonical currency.
func (s *Expenses) TotalExpenses(ctx context.Context, module string) decimal.Decimal {
	return s.Report(ctx, module).Total
}

type tabExpenses struct {
	totals [5]decimal.Decimal
	counts [5]int
}

// Report computes the module total with per-tab and per-kind breakdowns.
// Tabs and kinds without records are left out of the breakdowns.
func (s *Expenses) Report(ctx context.Context, module string) core.ExpenseReport {
	ctx = s.reader.Pin(ctx)
	tabs := expenseTabs(s.tabs.ModuleTabs(module))

	results := fanOut(ctx, s.Fanout, len(tabs), func(ctx context.Context, i int) tabExpenses {
		var te tabExpenses
		for k, kind := range ledger.ExpenseKinds {
			for _, rec := range s.reader.Expenses(ctx, kind, module, tabs[i]) {
				te.totals[k] = te.totals[k].Add(rec.Value())
				te.counts[k]++
			}
		}
		return te
	})

	report := core.ExpenseReport{
		Module: module,
		Total:  decimal.Zero,
		ByTab:  []core.NamedTotal{},
		ByKind: []core.NamedTotal{},
	}
	var kindTotals [5]decimal.Decimal
	var kindCounts [5]int
	for i, te := range results {
		tabTotal := decimal.Zero
		tabCount := 0
		for k := range ledger.ExpenseKinds {
			tabTotal = tabTotal.Add(te.totals[k])
			tabCount += te.counts[k]
			kindTotals[k] = kindTotals[k].Add(te.totals[k])
			kindCounts[k] += te.counts[k]
		}
		report.Total = report.Total.Add(tabTotal)
		if tabCount > 0 {
			report.ByTab = append(report.ByTab, core.NamedTotal{Name: tabs[i], Total: tabTotal, Count: tabCount})
		}
	}
	for k, kind := range ledger.ExpenseKinds {
		if kindCounts[k] > 0 {
			report.ByKind = append(report.ByKind, core.NamedTotal{Name: string(kind), Total: kindTotals[k], Count: kindCounts[k]})
		}
	}

	s.logger.DebugContext(ctx, "Aggregated module expenses",
		applog.FieldModule, module,
		"tabs", len(tabs),
		"total", report.Total.String())
	return report
}

// expenseTabs drops dashboard tabs so a module never sums its own summary.
func expenseTabs(tabs []string) []string {
	out := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if strings.Contains(strings.ToLower(t), "dashboard") {
			continue
		}
		out = append(out, t)
	}
	return out
}
