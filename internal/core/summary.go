package core

import "github.com/shopspring/decimal"

// CurrencyBucket is a total/outstanding pair in one native currency.
type CurrencyBucket struct {
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// CurrencyAmounts holds native sub-totals for the receivables currencies.
type CurrencyAmounts struct {
	LKR decimal.Decimal `json:"lkr"`
	USD decimal.Decimal `json:"usd"`
	THB decimal.Decimal `json:"bath"`
	RMB decimal.Decimal `json:"rmb"`
}

// Add accumulates amt under code. Codes outside the four tracked buckets are
// ignored and reported with false.
func (c *CurrencyAmounts) Add(code string, amt decimal.Decimal) bool {
	switch NormalizeCurrency(code) {
	case CanonicalCurrency:
		c.LKR = c.LKR.Add(amt)
	case USD:
		c.USD = c.USD.Add(amt)
	case THB:
		c.THB = c.THB.Add(amt)
	case RMB:
		c.RMB = c.RMB.Add(amt)
	default:
		return false
	}
	return true
}

// Merge adds other into c.
func (c *CurrencyAmounts) Merge(other CurrencyAmounts) {
	c.LKR = c.LKR.Add(other.LKR)
	c.USD = c.USD.Add(other.USD)
	c.THB = c.THB.Add(other.THB)
	c.RMB = c.RMB.Add(other.RMB)
}

// CustomerSummary is the derived balance of one customer-ledger tab.
type CustomerSummary struct {
	Customer     string          `json:"customer"`
	Tab          string          `json:"tab"`
	Invoiced     decimal.Decimal `json:"invoiced"`
	Paid         decimal.Decimal `json:"paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Native       CurrencyAmounts `json:"outstandingByCurrency"`
	Transactions int             `json:"transactions"`
	Status       ClearingStatus  `json:"status"`
}

// TitleBreakdown groups every sales line sharing a title across tabs.
type TitleBreakdown struct {
	Title            string          `json:"title"`
	LKR              CurrencyBucket  `json:"lkr"`
	USD              CurrencyBucket  `json:"usd"`
	THB              CurrencyBucket  `json:"bath"`
	RMB              CurrencyBucket  `json:"rmb"`
	FinalAmount      decimal.Decimal `json:"finalAmount"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	ReceivedPayments decimal.Decimal `json:"receivedPayments"`
	Status           ClearingStatus  `json:"status"`
	TransactionCount int             `json:"transactionCount"`
	Transactions     []LedgerRecord  `json:"transactions"`
	SourceTabs       []string        `json:"sourceTabs"`
}

// Bucket returns the native bucket for code, or nil for other currencies.
func (t *TitleBreakdown) Bucket(code string) *CurrencyBucket {
	switch NormalizeCurrency(code) {
	case CanonicalCurrency:
		return &t.LKR
	case USD:
		return &t.USD
	case THB:
		return &t.THB
	case RMB:
		return &t.RMB
	}
	return nil
}

// PaymentSource totals one payment-tracking tab.
type PaymentSource struct {
	Source      string          `json:"source"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	LastPayment Date            `json:"lastPayment"`
}

// CurrencyShare is one slice of the outstanding-by-currency proportion chart.
type CurrencyShare struct {
	Currency  string          `json:"currency"`
	Native    decimal.Decimal `json:"native"`
	Converted decimal.Decimal `json:"converted"`
	Percent   float64         `json:"percent"`
}

// ProfitSummary is the inventory profit proxy: revenue of sold items minus
// cost of all items.
type ProfitSummary struct {
	SalesRevenue  decimal.Decimal `json:"salesRevenue"`
	InventoryCost decimal.Decimal `json:"inventoryCost"`
	Profit        decimal.Decimal `json:"profit"`
	Items         int             `json:"items"`
	Sold          int             `json:"sold"`
	ByTab         []TabProfit     `json:"byTab,omitempty"`
}

// TabProfit is the profit proxy of a single inventory tab.
type TabProfit struct {
	Tab string `json:"tab"`
	ProfitSummary
}

// NamedTotal is a labelled amount used by breakdown lists.
type NamedTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ExpenseReport is the expense total of a module with its breakdowns.
type ExpenseReport struct {
	Module string          `json:"module"`
	Total  decimal.Decimal `json:"total"`
	ByTab  []NamedTotal    `json:"byTab"`
	ByKind []NamedTotal    `json:"byKind"`
}

// Metrics maps KPI card keys to numbers (float64) or strings.
type Metrics map[string]any

// SetAmount stores d as a plain number.
func (m Metrics) SetAmount(key string, d decimal.Decimal) {
	m[key] = d.InexactFloat64()
}

// SetCount stores n as a plain number.
func (m Metrics) SetCount(key string, n int) {
	m[key] = float64(n)
}

// Number returns the numeric metric at key, or 0.
func (m Metrics) Number(key string) float64 {
	f, _ := m[key].(float64)
	return f
}

// Breakdowns maps breakdown names to typed lists.
type Breakdowns map[string]any

// DashboardResult is the only shape handed to the presentation layer.
type DashboardResult struct {
	Dashboard  string     `json:"dashboard,omitempty"`
	Metrics    Metrics    `json:"metrics"`
	Breakdowns Breakdowns `json:"breakdowns,omitempty"`
	// HasData is false when every breakdown is empty; zero metrics are then
	// a "no data" state rather than real totals.
	HasData bool `json:"hasData"`
}

// NewResult returns an empty result with initialized maps.
func NewResult() DashboardResult {
	return DashboardResult{Metrics: Metrics{}, Breakdowns: Breakdowns{}}
}
