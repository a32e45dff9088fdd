package dashboard

import (
	"context"
	"time"

	"gemdash/internal/core"
	"gemdash/internal/ledger"
	applog "gemdash/internal/log"
	"gemdash/internal/services"
)

// Options tunes the services an Assembler builds.
type Options struct {
	// Fanout bounds concurrent tab reads per aggregation; 0 keeps the default.
	Fanout int
	// Now overrides the clock used for due-date checks.
	Now func() time.Time
}

// Assembler routes a dashboard id to its recipe. It aggregates nothing
// itself.
type Assembler struct {
	registry    *Registry
	reader      *ledger.Reader
	expenses    *services.Expenses
	inventory   *services.Inventory
	outstanding *services.Outstanding
	logger      *applog.Logger
}

func NewAssembler(registry *Registry, reader *ledger.Reader, logger *applog.Logger, opts Options) *Assembler {
	if logger == nil {
		logger = applog.Discard()
	}
	a := &Assembler{
		registry:    registry,
		reader:      reader,
		expenses:    services.NewExpenses(reader, registry, logger),
		inventory:   services.NewInventory(reader, logger),
		outstanding: services.NewOutstanding(reader, registry.Receivables, logger),
		logger:      logger.WithComponent(applog.ComponentDashboard),
	}
	if opts.Fanout > 0 {
		a.expenses.Fanout = opts.Fanout
		a.inventory.Fanout = opts.Fanout
		a.outstanding.Fanout = opts.Fanout
	}
	if opts.Now != nil {
		a.outstanding.Now = opts.Now
	}
	return a
}

// Registry returns the registry the assembler routes with.
func (a *Assembler) Registry() *Registry { return a.registry }

// ExpenseReport exposes the module expense breakdown directly.
func (a *Assembler) ExpenseReport(ctx context.Context, module string) core.ExpenseReport {
	return a.expenses.Report(ctx, module)
}

// Assemble builds the result of dashboard id. Unknown ids never fail: they
// fall back to an inventory profit view for inventory-like modules and to a
// zeroed result otherwise. Every recipe reads one snapshot of the store.
func (a *Assembler) Assemble(ctx context.Context, id string) core.DashboardResult {
	ctx = a.reader.Pin(ctx)
	cfg, ok := a.registry.Config(id)
	if !ok {
		return a.fallback(ctx, id)
	}

	var res core.DashboardResult
	switch cfg.Recipe {
	case RecipeExpenses:
		res = a.expenseResult(ctx, cfg.Module)
	case RecipeInventory:
		res = a.inventoryResult(ctx, cfg.Module, a.inventoryTabs(cfg))
	case RecipeOverview:
		res = a.overviewResult(ctx, cfg.Module, a.inventoryTabs(cfg))
	case RecipeOutstanding:
		res = a.outstanding.Reconcile(ctx)
	default:
		res = zeroResult()
	}
	res.Dashboard = cfg.ID
	fillCards(res.Metrics, cfg.Cards)

	a.logger.DebugContext(ctx, "Assembled dashboard",
		applog.FieldDashboard, cfg.ID,
		applog.FieldRecipe, string(cfg.Recipe),
		"has_data", res.HasData)
	return res
}

// AssembleTab resolves a module tab to its dashboard. Unregistered tabs use
// the fallback for "module/tab".
func (a *Assembler) AssembleTab(ctx context.Context, module, tab string) core.DashboardResult {
	if cfg, ok := a.registry.Lookup(module, tab); ok {
		return a.Assemble(ctx, cfg.ID)
	}
	return a.fallback(ctx, module+"/"+tab)
}

func (a *Assembler) fallback(ctx context.Context, id string) core.DashboardResult {
	ctx = a.reader.Pin(ctx)
	res := zeroResult()
	if m, ok := a.registry.ModuleOf(id); ok && m.Inventory {
		res = a.inventoryResult(ctx, m.ID, m.InventoryTabs)
	}
	res.Dashboard = id
	a.logger.WarnContext(ctx, "Unknown dashboard, using fallback",
		applog.FieldDashboard, id,
		"has_data", res.HasData)
	return res
}

func (a *Assembler) inventoryTabs(cfg Config) []string {
	if len(cfg.Tabs) > 0 {
		return cfg.Tabs
	}
	m, _ := a.registry.Module(cfg.Module)
	return m.InventoryTabs
}

func (a *Assembler) expenseResult(ctx context.Context, module string) core.DashboardResult {
	report := a.expenses.Report(ctx, module)
	res := core.NewResult()
	setExpenseMetrics(res.Metrics, report)
	res.Breakdowns["expensesByTab"] = report.ByTab
	res.Breakdowns["expensesByKind"] = report.ByKind
	res.HasData = len(report.ByTab) > 0
	return res
}

func (a *Assembler) inventoryResult(ctx context.Context, module string, tabs []string) core.DashboardResult {
	profit := a.inventory.ProfitFromInventory(ctx, module, tabs)
	res := core.NewResult()
	setProfitMetrics(res.Metrics, profit)
	res.Breakdowns["inventoryByTab"] = profit.ByTab
	res.HasData = len(profit.ByTab) > 0
	return res
}

// overviewResult nets the inventory profit proxy against module expenses.
func (a *Assembler) overviewResult(ctx context.Context, module string, tabs []string) core.DashboardResult {
	profit := a.inventory.ProfitFromInventory(ctx, module, tabs)
	report := a.expenses.Report(ctx, module)

	res := core.NewResult()
	setProfitMetrics(res.Metrics, profit)
	setExpenseMetrics(res.Metrics, report)
	res.Metrics.SetAmount("netProfit", profit.Profit.Sub(report.Total))
	res.Breakdowns["inventoryByTab"] = profit.ByTab
	res.Breakdowns["expensesByTab"] = report.ByTab
	res.Breakdowns["expensesByKind"] = report.ByKind
	res.HasData = len(profit.ByTab) > 0 || len(report.ByTab) > 0
	return res
}

func setProfitMetrics(m core.Metrics, p core.ProfitSummary) {
	m.SetAmount("salesRevenue", p.SalesRevenue)
	m.SetAmount("inventoryCost", p.InventoryCost)
	m.SetAmount("profit", p.Profit)
	m.SetCount("itemCount", p.Items)
	m.SetCount("soldCount", p.Sold)
	m.SetCount("unsoldCount", p.Items-p.Sold)
}

func setExpenseMetrics(m core.Metrics, r core.ExpenseReport) {
	count := 0
	for _, t := range r.ByTab {
		count += t.Count
	}
	m.SetAmount("totalExpenses", r.Total)
	m.SetCount("expenseCount", count)
}

// zeroResult is the static result for dashboards with nothing to aggregate.
func zeroResult() core.DashboardResult {
	res := core.NewResult()
	m := res.Metrics
	m.SetCount("salesRevenue", 0)
	m.SetCount("inventoryCost", 0)
	m.SetCount("profit", 0)
	return res
}

// fillCards guarantees a value for every card key.
func fillCards(m core.Metrics, cards []Card) {
	for _, c := range cards {
		if _, ok := m[c.Key]; !ok {
			m.SetCount(c.Key, 0)
		}
	}
}
