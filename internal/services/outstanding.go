package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gemdash/internal/core"
	"gemdash/internal/ledger"
	applog "gemdash/internal/log"

	"github.com/shopspring/decimal"
)

// ReceivablesLayout names the tabs the reconciliation reads. SalesTabs is the
// subset of customer tabs whose lines are grouped by title.
type ReceivablesLayout struct {
	Module       string   `yaml:"module"`
	PaymentTabs  []string `yaml:"paymentTabs"`
	CustomerTabs []string `yaml:"customerTabs"`
	SalesTabs    []string `yaml:"salesTabs"`
}

// Outstanding reconciles payments and customer ledgers into balances.
type Outstanding struct {
	reader   *ledger.Reader
	layout   ReceivablesLayout
	rates    core.RateTable
	customer OverduePolicy
	title    OverduePolicy
	logger   *applog.Logger

	// Now is the clock used for due-date checks.
	Now    func() time.Time
	Fanout int
}

// NewOutstanding uses the receivables rate table, the default overdue
// threshold for customers and due dates for titles.
func NewOutstanding(reader *ledger.Reader, layout ReceivablesLayout, logger *applog.Logger) *Outstanding {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Outstanding{
		reader:   reader,
		layout:   layout,
		rates:    core.ReceivablesRates,
		customer: ThresholdPolicy{Limit: decimal.NewFromInt(DefaultOverdueThreshold)},
		title:    DueDatePolicy{},
		logger:   logger.WithComponent(applog.ComponentReceivables),
		Now:      time.Now,
		Fanout:   DefaultFanout,
	}
}

// Layout returns the tabs this engine reads.
func (s *Outstanding) Layout() ReceivablesLayout { return s.layout }

// Reconcile runs every step against one snapshot of the store and shapes the
// outcome into metrics and breakdowns. An empty store yields zero metrics and
// HasData=false.
func (s *Outstanding) Reconcile(ctx context.Context) core.DashboardResult {
	ctx = s.reader.Pin(ctx)
	paymentTabs := uniqueTabs(s.layout.PaymentTabs)
	payments := s.loadPayments(ctx, paymentTabs)
	ledgers := s.loadLedgers(ctx)

	sources, received, lastPayment := s.paymentSources(paymentTabs, payments)
	customers := s.customers(ledgers)
	shares, native := s.currencyBreakdown(customers)
	titles := s.titles(ledgers)

	res := core.NewResult()
	m := res.Metrics

	invoiced, paid, outstanding, overdueAmount := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	counts := map[core.ClearingStatus]int{}
	for _, c := range customers {
		invoiced = invoiced.Add(c.Invoiced)
		paid = paid.Add(c.Paid)
		outstanding = outstanding.Add(c.Outstanding)
		counts[c.Status]++
		if c.Status == core.Overdue {
			overdueAmount = overdueAmount.Add(c.Outstanding)
		}
	}
	titleOutstanding := decimal.Zero
	for _, t := range titles {
		titleOutstanding = titleOutstanding.Add(t.Outstanding)
	}

	m.SetAmount("totalReceived", received)
	m.SetAmount("totalInvoiced", invoiced)
	m.SetAmount("totalPaid", paid)
	m.SetAmount("totalOutstanding", outstanding)
	m.SetAmount("overdueAmount", overdueAmount)
	m.SetAmount("usdOutstanding", native.USD)
	m.SetAmount("bathOutstanding", native.THB)
	m.SetAmount("rmbOutstanding", native.RMB)
	m.SetAmount("titleOutstanding", titleOutstanding)
	m.SetCount("customerCount", len(customers))
	m.SetCount("clearedCount", counts[core.Cleared])
	m.SetCount("pendingCount", counts[core.Pending])
	m.SetCount("overdueCount", counts[core.Overdue])
	m.SetCount("titleCount", len(titles))
	m.SetCount("paymentCount", countPayments(sources))
	m["lastPaymentDate"] = lastPayment.String()

	res.Breakdowns["paymentSources"] = sources
	res.Breakdowns["customers"] = customers
	res.Breakdowns["currencyBreakdown"] = shares
	res.Breakdowns["titles"] = titles
	res.HasData = len(sources) > 0 || len(customers) > 0 || len(shares) > 0 || len(titles) > 0

	s.logger.DebugContext(ctx, "Reconciled receivables",
		applog.FieldModule, s.layout.Module,
		"customers", len(customers),
		"titles", len(titles),
		"sources", len(sources))
	return res
}

func (s *Outstanding) loadPayments(ctx context.Context, tabs []string) [][]core.PaymentRecord {
	return fanOut(ctx, s.Fanout, len(tabs), func(ctx context.Context, i int) []core.PaymentRecord {
		return s.reader.Payments(ctx, s.layout.Module, tabs[i])
	})
}

// loadLedgers reads every customer and sales tab once, keyed by normalized
// tab name.
func (s *Outstanding) loadLedgers(ctx context.Context) map[string][]core.LedgerRecord {
	tabs := uniqueTabs(s.layout.CustomerTabs, s.layout.SalesTabs)
	loaded := fanOut(ctx, s.Fanout, len(tabs), func(ctx context.Context, i int) []core.LedgerRecord {
		return s.reader.Ledger(ctx, s.layout.Module, tabs[i])
	})
	out := make(map[string][]core.LedgerRecord, len(tabs))
	for i, tab := range tabs {
		out[ledger.NormalizeTab(tab)] = loaded[i]
	}
	return out
}

// paymentSources totals each payment tab, converting foreign receipts with
// the record's rate or the receivables default. payments[i] belongs to tabs[i].
func (s *Outstanding) paymentSources(tabs []string, payments [][]core.PaymentRecord) ([]core.PaymentSource, decimal.Decimal, core.Date) {
	var (
		sources  = []core.PaymentSource{}
		received = decimal.Zero
		last     core.Date
	)
	for i, recs := range payments {
		if len(recs) == 0 {
			continue
		}
		src := core.PaymentSource{Source: tabs[i], Total: decimal.Zero}
		for _, p := range recs {
			noteUnconverted(s.logger, s.rates, p.Currency, p.ExchangeRate)
			src.Total = src.Total.Add(s.rates.ToCanonical(p.Amount, p.Currency, p.ExchangeRate))
			src.Count++
			if d := p.Date; !d.IsZero() && (src.LastPayment.IsZero() || src.LastPayment.Before(d)) {
				src.LastPayment = d
			}
		}
		received = received.Add(src.Total)
		if !src.LastPayment.IsZero() && (last.IsZero() || last.Before(src.LastPayment)) {
			last = src.LastPayment
		}
		sources = append(sources, src)
	}
	return sources, received, last
}

// customers derives one summary per customer tab that has records.
func (s *Outstanding) customers(ledgers map[string][]core.LedgerRecord) []core.CustomerSummary {
	now := s.Now()
	out := []core.CustomerSummary{}
	for _, tab := range uniqueTabs(s.layout.CustomerTabs) {
		recs := ledgers[ledger.NormalizeTab(tab)]
		if len(recs) == 0 {
			continue
		}
		c := core.CustomerSummary{
			Customer:    strings.TrimSpace(tab),
			Tab:         ledger.NormalizeTab(tab),
			Invoiced:    decimal.Zero,
			Paid:        decimal.Zero,
			Outstanding: decimal.Zero,
		}
		for _, r := range recs {
			noteUnconverted(s.logger, s.rates, r.Currency, r.ExchangeRate)
			c.Invoiced = c.Invoiced.Add(s.rates.ToCanonical(r.Invoice, r.Currency, r.ExchangeRate))
			c.Paid = c.Paid.Add(s.rates.ToCanonical(r.Paid, r.Currency, r.ExchangeRate))
			c.Outstanding = c.Outstanding.Add(s.rates.ToCanonical(r.Balance(), r.Currency, r.ExchangeRate))
			c.Native.Add(r.Currency, r.Balance())
			c.Transactions++
		}
		c.Status = Classify(s.customer, c.Outstanding, recs, now)
		out = append(out, c)
	}
	return out
}

// currencyBreakdown converts the native sub-totals of all customers with the
// default table. It feeds a proportion chart only, so record-level rates are
// intentionally not used here.
func (s *Outstanding) currencyBreakdown(customers []core.CustomerSummary) ([]core.CurrencyShare, core.CurrencyAmounts) {
	var native core.CurrencyAmounts
	for _, c := range customers {
		native.Merge(c.Native)
	}

	candidates := []struct {
		code string
		amt  decimal.Decimal
	}{
		{core.CanonicalCurrency, native.LKR},
		{core.USD, native.USD},
		{core.THB, native.THB},
		{core.RMB, native.RMB},
	}
	shares := []core.CurrencyShare{}
	sum := decimal.Zero
	for _, c := range candidates {
		if c.amt.IsZero() {
			continue
		}
		conv := s.rates.ToCanonical(c.amt, c.code, decimal.NullDecimal{})
		sum = sum.Add(conv)
		shares = append(shares, core.CurrencyShare{Currency: c.code, Native: c.amt, Converted: conv})
	}
	if !sum.IsZero() {
		for i := range shares {
			shares[i].Percent = shares[i].Converted.Div(sum).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
	}
	return shares, native
}

// titles groups every titled line of the sales tabs. Titles are trimmed and
// compared exactly; untitled lines are skipped.
func (s *Outstanding) titles(ledgers map[string][]core.LedgerRecord) []core.TitleBreakdown {
	now := s.Now()
	groups := map[string]*core.TitleBreakdown{}
	seenTab := map[string]map[string]bool{}
	var order []string

	for _, tab := range uniqueTabs(s.layout.SalesTabs) {
		for _, r := range ledgers[ledger.NormalizeTab(tab)] {
			title := strings.TrimSpace(r.Title)
			if title == "" {
				continue
			}
			g, ok := groups[title]
			if !ok {
				g = &core.TitleBreakdown{
					Title:            title,
					FinalAmount:      decimal.Zero,
					Outstanding:      decimal.Zero,
					ReceivedPayments: decimal.Zero,
				}
				groups[title] = g
				seenTab[title] = map[string]bool{}
				order = append(order, title)
			}
			if b := g.Bucket(r.Currency); b != nil {
				b.Total = b.Total.Add(r.Invoice)
				b.Outstanding = b.Outstanding.Add(r.Balance())
			}
			g.FinalAmount = g.FinalAmount.Add(s.rates.ToCanonical(r.Invoice, r.Currency, r.ExchangeRate))
			g.Outstanding = g.Outstanding.Add(s.rates.ToCanonical(r.Balance(), r.Currency, r.ExchangeRate))
			g.ReceivedPayments = g.ReceivedPayments.Add(s.rates.ToCanonical(r.Paid, r.Currency, r.ExchangeRate))
			g.Transactions = append(g.Transactions, r)
			g.TransactionCount++
			if !seenTab[title][tab] {
				seenTab[title][tab] = true
				g.SourceTabs = append(g.SourceTabs, tab)
			}
		}
	}

	out := make([]core.TitleBreakdown, 0, len(order))
	for _, title := range order {
		g := groups[title]
		g.Status = Classify(s.title, g.Outstanding, g.Transactions, now)
		sort.Strings(g.SourceTabs)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].FinalAmount.Cmp(out[j].FinalAmount); c != 0 {
			return c > 0
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func countPayments(sources []core.PaymentSource) int {
	n := 0
	for _, s := range sources {
		n += s.Count
	}
	return n
}

// uniqueTabs concatenates lists, keeping the first tab of each normalized
// name. Two spellings of one tab read the same key and must count once.
func uniqueTabs(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lists {
		for _, t := range l {
			norm := ledger.NormalizeTab(t)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			out = append(out, t)
		}
	}
	return out
}
