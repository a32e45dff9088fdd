package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalCurrency is the currency every aggregate total is expressed in.
const CanonicalCurrency = "LKR"

// Foreign currency codes tracked in their own buckets on the receivables side.
const (
	USD = "USD"
	THB = "THB"
	RMB = "RMB"
)

// RateTable holds static default exchange rates to the canonical currency.
type RateTable struct {
	name  string
	rates map[string]decimal.Decimal
}

// Two independent tables exist in the business: rates used when recording
// purchases and rates used when chasing receivables. They disagree for the
// same codes and are kept apart until the owners confirm which is right.
var (
	ReceivablesRates = NewRateTable("receivables", map[string]float64{
		USD: 300,
		THB: 8.5,
		RMB: 42,
	})

	PurchaseRates = NewRateTable("purchase", map[string]float64{
		USD:   305,
		"EUR": 330,
		"GBP": 385,
		THB:   9,
		RMB:   43,
		"TZS": 0.12,
		"KES": 2.35,
	})
)

// NewRateTable builds a table from plain float rates keyed by currency code.
func NewRateTable(name string, rates map[string]float64) RateTable {
	t := RateTable{name: name, rates: make(map[string]decimal.Decimal, len(rates))}
	for code, r := range rates {
		t.rates[NormalizeCurrency(code)] = decimal.NewFromFloat(r)
	}
	return t
}

// Name identifies the table in logs.
func (t RateTable) Name() string { return t.name }

// NormalizeCurrency upper-cases and trims a currency code. Empty input means
// the canonical currency. "Bath" is a common misspelling of THB in the ledgers.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "":
		return CanonicalCurrency
	case "BATH", "BAHT":
		return THB
	case "CNY", "YUAN":
		return RMB
	case "RS", "RS.":
		return CanonicalCurrency
	}
	return code
}

// Rate returns the default rate for code.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	code = NormalizeCurrency(code)
	if code == CanonicalCurrency {
		return decimal.NewFromInt(1), true
	}
	r, ok := t.rates[code]
	return r, ok
}

// Known reports whether code can be converted without a record-level rate.
func (t RateTable) Known(code string) bool {
	_, ok := t.Rate(code)
	return ok
}

// ToCanonical converts amount in currency to the canonical currency.
// A positive record-level rate wins over the table default. Codes the table
// does not know are passed through at rate 1. No rounding happens here.
func (t RateTable) ToCanonical(amount decimal.Decimal, currency string, rate decimal.NullDecimal) decimal.Decimal {
	code := NormalizeCurrency(currency)
	if code == CanonicalCurrency {
		return amount
	}
	if rate.Valid && rate.Decimal.IsPositive() {
		return amount.Mul(rate.Decimal)
	}
	if r, ok := t.rates[code]; ok {
		return amount.Mul(r)
	}
	return amount
}

// Currencies lists the codes selectable against this table, canonical first.
func (t RateTable) Currencies() []string {
	out := make([]string, 0, len(t.rates)+1)
	for code := range t.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return append([]string{CanonicalCurrency}, out...)
}
