// Package core holds the ledger record types, the currency normalizer and the
// result shapes produced by the aggregation services.
//
// This file contains the lenient amount and date parsing used when decoding
// free-form ledger records.
package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Dashboard consumers expect plain JSON numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts a loosely typed JSON value into a decimal.
//
// It accepts JSON numbers, numeric strings with thousand separators
// ("1,250,000.50", "1 250"), and an optional currency prefix such as "Rs".
// Anything else reports ok=false and callers treat the field as absent.
//
// Examples:
//
//	ParseAmount(1500.0)        -> 1500, true
//	ParseAmount("1,500.25")    -> 1500.25, true
//	ParseAmount("Rs. 2,000")   -> 2000, true
//	ParseAmount("n/a")         -> 0, false
func ParseAmount(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		return parseAmountString(x)
	}
	return decimal.Zero, false
}

func parseAmountString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	// Strip a leading currency marker like "Rs.", "LKR", "$".
	s = strings.TrimLeft(s, "$€£¥ ")
	upper := strings.ToUpper(s)
	for _, p := range []string{"RS.", "RS", "LKR", "USD"} {
		if strings.HasPrefix(upper, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	s = strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// ParseDate parses the date formats found in the ledgers. Unknown formats
// yield a zero Date.
func ParseDate(v any) Date {
	s, ok := v.(string)
	if !ok {
		return Date{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}
		}
	}
	return Date{}
}
