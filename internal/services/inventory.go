package services

import (
	"context"

	"gemdash/internal/core"
	"gemdash/internal/ledger"
	applog "gemdash/internal/log"

	"github.com/shopspring/decimal"
)

// Inventory computes the profit proxy of a module's stone inventory.
type Inventory struct {
	reader *ledger.Reader
	rates  core.RateTable
	logger *applog.Logger
	Fanout int
}

// NewInventory uses the purchase-side rate table: inventory is bought and
// priced on purchase terms.
func NewInventory(reader *ledger.Reader, logger *applog.Logger) *Inventory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Inventory{
		reader: reader,
		rates:  core.PurchaseRates,
		logger: logger.WithComponent(applog.ComponentInventory),
		Fanout: DefaultFanout,
	}
}

// ProfitFromInventory sums cost over every item and revenue over sold items
// only, then nets them, so unsold stock counts against sales.
func (s *Inventory) ProfitFromInventory(ctx context.Context, module string, tabs []string) core.ProfitSummary {
	ctx = s.reader.Pin(ctx)
	perTab := fanOut(ctx, s.Fanout, len(tabs), func(ctx context.Context, i int) core.ProfitSummary {
		return s.summarize(s.reader.Inventory(ctx, module, tabs[i]))
	})

	total := core.ProfitSummary{SalesRevenue: decimal.Zero, InventoryCost: decimal.Zero, ByTab: []core.TabProfit{}}
	for i, p := range perTab {
		total.SalesRevenue = total.SalesRevenue.Add(p.SalesRevenue)
		total.InventoryCost = total.InventoryCost.Add(p.InventoryCost)
		total.Items += p.Items
		total.Sold += p.Sold
		if p.Items > 0 {
			total.ByTab = append(total.ByTab, core.TabProfit{Tab: tabs[i], ProfitSummary: p})
		}
	}
	total.Profit = total.SalesRevenue.Sub(total.InventoryCost)
	return total
}

func (s *Inventory) summarize(items []core.InventoryItem) core.ProfitSummary {
	p := core.ProfitSummary{SalesRevenue: decimal.Zero, InventoryCost: decimal.Zero}
	for _, it := range items {
		noteUnconverted(s.logger, s.rates, it.Currency, it.ExchangeRate)
		p.InventoryCost = p.InventoryCost.Add(s.rates.ToCanonical(it.Cost, it.Currency, it.ExchangeRate))
		p.Items++
		if it.Status == core.Sold {
			p.SalesRevenue = p.SalesRevenue.Add(s.rates.ToCanonical(it.FinalPrice, it.Currency, it.ExchangeRate))
			p.Sold++
		}
	}
	p.Profit = p.SalesRevenue.Sub(p.InventoryCost)
	return p
}
