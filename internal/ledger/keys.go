package ledger

import (
	"strings"
	"unicode"
)

// Kind identifies a record kind and therefore its key prefix.
type Kind string

const (
	KindExpenses   Kind = "expenses"
	KindCutPolish  Kind = "cut_polish"
	KindTicketVisa Kind = "ticket_visa"
	KindHotel      Kind = "hotel"
	KindExport     Kind = "export"
	KindInventory  Kind = "inventory"
	KindPayments   Kind = "payments"
	KindCustomer   Kind = "customer"
)

// prefixes lists the storage prefixes per kind. The first is the current
// name; the rest are legacy names that older tabs were saved under.
var prefixes = map[Kind][]string{
	KindExpenses:   {"unified_expenses", "expenses", "general_expenses"},
	KindCutPolish:  {"cut_polish_charges", "cutpolish"},
	KindTicketVisa: {"ticket_visa_charges"},
	KindHotel:      {"hotel_accommodation", "accommodation"},
	KindExport:     {"export_charges"},
	KindInventory:  {"inventory", "stones"},
	KindPayments:   {"payments"},
	KindCustomer:   {"customer_ledger", "outstanding"},
}

// ExpenseKinds are the record kinds summed into a module's expense total.
var ExpenseKinds = []Kind{KindExpenses, KindCutPolish, KindTicketVisa, KindHotel, KindExport}

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{KindExpenses, KindCutPolish, KindTicketVisa, KindHotel, KindExport, KindInventory, KindPayments, KindCustomer}
}

// NormalizeTab drops every character that is not an ASCII letter, digit or
// whitespace, then turns each remaining whitespace run into one underscore.
// Case is kept and nothing is trimmed, so the result matches the keys the
// ledger tabs were saved under: "Cut & Polish  (2024)" -> "Cut_Polish_2024",
// " Lead" -> "_Lead", "Café" -> "Caf".
func NormalizeTab(tab string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range tab {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			inSpace = false
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
		}
	}
	return b.String()
}

// Key builds the current storage key for kind, module and tab.
func Key(kind Kind, module, tab string) string {
	return Keys(kind, module, tab)[0]
}

// Keys returns every candidate key for kind, module and tab in lookup order.
// Unknown kinds use the kind name itself as the prefix.
func Keys(kind Kind, module, tab string) []string {
	ps, ok := prefixes[kind]
	if !ok {
		ps = []string{string(kind)}
	}
	norm := NormalizeTab(tab)
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p + "_" + module + "_" + norm
	}
	return out
}
