package core

import (
	"github.com/shopspring/decimal"
)

// Field aliases seen across the different tab layouts. The first entry is
// the current name; the rest are older spellings still present in data.
var (
	descriptionKeys = []string{"description", "details", "note", "remarks"}
	rateKeys        = []string{"exchangeRate", "rate"}
	invoiceKeys     = []string{"invoiceAmount", "finalAmount", "amount"}
	costKeys        = []string{"cost", "totalCost", "purchasePrice"}
	priceKeys       = []string{"finalPrice", "sellingPrice", "salePrice", "soldPrice"}
)

// DecodeExpense maps a raw record onto an ExpenseRecord.
func DecodeExpense(r Raw) ExpenseRecord {
	return ExpenseRecord{
		Date:            r.Date("date", "paymentDate"),
		Description:     r.Text(descriptionKeys...),
		Category:        r.Text("category", "type"),
		Currency:        NormalizeCurrency(r.Text("currency")),
		Amount:          r.Amount("amount").Decimal,
		ConvertedAmount: r.Amount("convertedAmount"),
	}
}

// DecodeInventory maps a raw record onto an InventoryItem.
func DecodeInventory(r Raw) InventoryItem {
	return InventoryItem{
		ID:           r.Text("id", "stoneId", "code"),
		Name:         r.Text("name", "stoneName", "variety", "type"),
		Currency:     NormalizeCurrency(r.Text("currency")),
		ExchangeRate: positiveRate(r.Amount(rateKeys...)),
		Cost:         r.Amount(costKeys...).Decimal,
		FinalPrice:   r.Amount(priceKeys...).Decimal,
		Status:       ParseStockStatus(r.Text("status")),
	}
}

// DecodeLedger maps a raw record from tab onto a LedgerRecord.
func DecodeLedger(tab string, r Raw) LedgerRecord {
	return LedgerRecord{
		Tab:          tab,
		Title:        r.Text("title"),
		Description:  r.Text(descriptionKeys...),
		Category:     r.Text("category"),
		Status:       r.Text("status"),
		Date:         r.Date("date"),
		PaymentDate:  r.Date("paymentDate"),
		DueDate:      r.Date("dueDate"),
		Currency:     NormalizeCurrency(r.Text("currency")),
		ExchangeRate: positiveRate(r.Amount(rateKeys...)),
		Invoice:      r.Amount(invoiceKeys...).Decimal,
		Paid:         r.Amount("paidAmount").Decimal,
		Outstanding:  r.Amount("outstandingAmount"),
	}
}

// DecodePayment maps a raw payment-tab record. The received amount is
// paidAmount, else amount.
func DecodePayment(source string, r Raw) PaymentRecord {
	return PaymentRecord{
		Source:       source,
		Date:         r.Date("paymentDate", "date"),
		Reference:    r.Text("reference", "title", "customer"),
		Currency:     NormalizeCurrency(r.Text("currency")),
		ExchangeRate: positiveRate(r.Amount(rateKeys...)),
		Amount:       r.Amount("paidAmount", "amount").Decimal,
	}
}

func positiveRate(n decimal.NullDecimal) decimal.NullDecimal {
	if !n.Valid || !n.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return n
}
