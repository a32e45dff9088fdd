package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Unsold StockStatus = "unsold"
	Sold   StockStatus = "sold"
)

const (
	Cleared ClearingStatus = "Cleared"
	Pending ClearingStatus = "Pending"
	Overdue ClearingStatus = "Overdue"
)

type (
	// StockStatus is the normalized state of an inventory item.
	StockStatus string

	// ClearingStatus classifies a balance as settled, open or late.
	ClearingStatus string

	Date struct {
		time.Time
	}

	// Raw is a single record exactly as stored in a tab.
	Raw map[string]any

	// ExpenseRecord is any expense-like entry: general expenses, cut and
	// polish charges, ticket/visa, hotel and export charges.
	ExpenseRecord struct {
		Date            Date                `json:"date"`
		Description     string              `json:"description,omitempty"`
		Category        string              `json:"category,omitempty"`
		Currency        string              `json:"currency"`
		Amount          decimal.Decimal     `json:"amount"`
		ConvertedAmount decimal.NullDecimal `json:"convertedAmount"`
	}

	// InventoryItem is one stone or gem lot.
	InventoryItem struct {
		ID           string              `json:"id,omitempty"`
		Name         string              `json:"name,omitempty"`
		Currency     string              `json:"currency"`
		ExchangeRate decimal.NullDecimal `json:"exchangeRate"`
		Cost         decimal.Decimal     `json:"cost"`
		FinalPrice   decimal.Decimal     `json:"finalPrice"`
		Status       StockStatus         `json:"status"`
	}

	// LedgerRecord is an invoice line of a customer-ledger tab.
	LedgerRecord struct {
		Tab          string              `json:"tab"`
		Title        string              `json:"title,omitempty"`
		Description  string              `json:"description,omitempty"`
		Category     string              `json:"category,omitempty"`
		Status       string              `json:"status,omitempty"`
		Date         Date                `json:"date"`
		PaymentDate  Date                `json:"paymentDate"`
		DueDate      Date                `json:"dueDate"`
		Currency     string              `json:"currency"`
		ExchangeRate decimal.NullDecimal `json:"exchangeRate"`
		Invoice      decimal.Decimal     `json:"invoiceAmount"`
		Paid         decimal.Decimal     `json:"paidAmount"`
		Outstanding  decimal.NullDecimal `json:"outstandingAmount"`
	}

	// PaymentRecord is an entry of a payment-tracking tab.
	PaymentRecord struct {
		Source       string              `json:"source"`
		Reference    string              `json:"reference,omitempty"`
		Date         Date                `json:"date"`
		Currency     string              `json:"currency"`
		ExchangeRate decimal.NullDecimal `json:"exchangeRate"`
		Amount       decimal.Decimal     `json:"amount"`
	}
)

var ErrUnknownDashboard = errors.New("unknown dashboard")

// ParseStockStatus collapses the free-text status variants ("Sold",
// "sold out", "SOLD - paid") into the closed enum. Anything containing
// "sold" in any case is Sold.
func ParseStockStatus(s string) StockStatus {
	if strings.Contains(strings.ToLower(s), "sold") {
		return Sold
	}
	return Unsold
}

// ClassifyBalance maps an outstanding amount to a status. A non-positive
// balance is always Cleared; late reports whether the open balance is overdue.
func ClassifyBalance(outstanding decimal.Decimal, late bool) ClearingStatus {
	switch {
	case !outstanding.IsPositive():
		return Cleared
	case late:
		return Overdue
	default:
		return Pending
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// Text returns the first non-empty value among keys as text. Numbers are
// kept in their written form, so a title typed as 17 reads as "17".
func (r Raw) Text(keys ...string) string {
	for _, k := range keys {
		var s string
		switch v := r[k].(type) {
		case string:
			s = v
		case json.Number:
			s = v.String()
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			s = strconv.Itoa(v)
		case int64:
			s = strconv.FormatInt(v, 10)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Amount returns the first parseable amount among keys.
func (r Raw) Amount(keys ...string) decimal.NullDecimal {
	for _, k := range keys {
		if d, ok := ParseAmount(r[k]); ok {
			return decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}
	return decimal.NullDecimal{}
}

// Date returns the first parseable date among keys.
func (r Raw) Date(keys ...string) Date {
	for _, k := range keys {
		if d := ParseDate(r[k]); !d.IsZero() {
			return d
		}
	}
	return Date{}
}

// Value is what the record contributes to an expense total: the converted
// amount when recorded, else the raw amount.
func (e ExpenseRecord) Value() decimal.Decimal {
	if e.ConvertedAmount.Valid {
		return e.ConvertedAmount.Decimal
	}
	return e.Amount
}

// Balance is the record's open amount in its own currency.
func (r LedgerRecord) Balance() decimal.Decimal {
	if r.Outstanding.Valid {
		return r.Outstanding.Decimal
	}
	return r.Invoice.Sub(r.Paid)
}

// PaidOn is the date a payment was received.
func (r LedgerRecord) PaidOn() Date {
	if !r.PaymentDate.IsZero() {
		return r.PaymentDate
	}
	return r.Date
}
