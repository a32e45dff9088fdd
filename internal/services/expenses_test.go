package services

import (
	"testing"

	"gemdash/internal/ledger"

	"github.com/shopspring/decimal"
)

func TestTotalExpenses(t *testing.T) {
	r := newReader(t,
		seedTab{ledger.KindExpenses, "sl", "Office", []map[string]any{
			{"amount": 1000, "currency": "LKR"},
			{"amount": 10, "currency": "USD", "convertedAmount": 3000},
		}},
		seedTab{ledger.KindCutPolish, "sl", "Office", []map[string]any{{"amount": "Rs. 2,500"}}},
		seedTab{ledger.KindHotel, "sl", "Trip", []map[string]any{{"amount": 400}}},
		seedTab{ledger.KindExport, "sl", "Trip", []map[string]any{{"amount": 100}}},
		seedTab{ledger.KindExpenses, "sl", "Sl Dashboard", []map[string]any{{"amount": 1_000_000}}},
	)
	tabs := staticTabs{"sl": {"Office", "Trip", "Empty", "Sl Dashboard"}}
	svc := NewExpenses(r, tabs, nil)

	report := svc.Report(ctx, "sl")
	if want := decimal.NewFromInt(7000); !report.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", report.Total, want)
	}
	if len(report.ByTab) != 2 {
		t.Fatalf("ByTab has %d entries, want 2: %+v", len(report.ByTab), report.ByTab)
	}
	if report.ByTab[0].Name != "Office" || report.ByTab[0].Count != 3 {
		t.Errorf("ByTab[0] = %+v", report.ByTab[0])
	}
	if len(report.ByKind) != 4 {
		t.Errorf("ByKind has %d entries, want 4", len(report.ByKind))
	}
	if got := svc.TotalExpenses(ctx, "sl"); !got.Equal(report.Total) {
		t.Errorf("TotalExpenses() = %s, want %s", got, report.Total)
	}
	if got := svc.TotalExpenses(ctx, "unknown"); !got.IsZero() {
		t.Errorf("TotalExpenses(unknown) = %s, want 0", got)
	}
}

func TestTotalExpensesOrderIndependent(t *testing.T) {
	recs := []map[string]any{{"amount": 1.1}, {"amount": 2.2}, {"amount": 3.3}}
	reversed := []map[string]any{recs[2], recs[1], recs[0]}

	a := newReader(t,
		seedTab{ledger.KindExpenses, "m", "A", recs},
		seedTab{ledger.KindTicketVisa, "m", "B", recs},
	)
	b := newReader(t,
		seedTab{ledger.KindExpenses, "m", "A", reversed},
		seedTab{ledger.KindTicketVisa, "m", "B", reversed},
	)
	ta := NewExpenses(a, staticTabs{"m": {"A", "B"}}, nil).TotalExpenses(ctx, "m")
	tb := NewExpenses(b, staticTabs{"m": {"B", "A"}}, nil).TotalExpenses(ctx, "m")
	if !ta.Equal(tb) {
		t.Errorf("order changed total: %s vs %s", ta, tb)
	}
	if want := decimal.RequireFromString("13.2"); !ta.Equal(want) {
		t.Errorf("total = %s, want %s", ta, want)
	}
}

func TestTotalExpensesMalformedTabs(t *testing.T) {
	good := seedTab{ledger.KindExpenses, "sl", "Office", []map[string]any{{"amount": 1000}, {"amount": 200}}}
	tests := []struct {
		name      string
		raw       map[string]string
		wantTabs  int
		wantKinds int
	}{
		{"malformed kind in a good tab", map[string]string{
			ledger.Key(ledger.KindCutPolish, "sl", "Office"): `{not json`,
		}, 1, 1},
		{"malformed tab next to a good one", map[string]string{
			ledger.Key(ledger.KindExpenses, "sl", "Trip"): `[{"amount": 5`,
			ledger.Key(ledger.KindHotel, "sl", "Trip"):    `"a string"`,
		}, 1, 1},
		{"object instead of array", map[string]string{
			ledger.Key(ledger.KindExport, "sl", "Trip"): `{"amount": 5}`,
		}, 1, 1},
		{"malformed legacy key alongside", map[string]string{
			"expenses_sl_Trip":                              `nope`,
			ledger.Key(ledger.KindTicketVisa, "sl", "Trip"): `[{"amount": 300}]`,
		}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRawReader(t, tt.raw, good)
			report := NewExpenses(r, staticTabs{"sl": {"Office", "Trip"}}, nil).Report(ctx, "sl")

			want := decimal.NewFromInt(1200)
			if tt.wantTabs == 2 {
				want = decimal.NewFromInt(1500)
			}
			if !report.Total.Equal(want) {
				t.Errorf("Total = %s, want %s", report.Total, want)
			}
			if len(report.ByTab) != tt.wantTabs || len(report.ByKind) != tt.wantKinds {
				t.Errorf("ByTab/ByKind = %d/%d entries, want %d/%d", len(report.ByTab), len(report.ByKind), tt.wantTabs, tt.wantKinds)
			}
		})
	}
}

func TestReportEmptyModule(t *testing.T) {
	report := NewExpenses(newReader(t), staticTabs{"sl": {"Office"}}, nil).Report(ctx, "sl")
	if report.ByTab == nil || report.ByKind == nil {
		t.Errorf("empty breakdowns should be empty lists, got %#v / %#v", report.ByTab, report.ByKind)
	}
}
