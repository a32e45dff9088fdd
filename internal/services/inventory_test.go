package services

import (
	"testing"

	"gemdash/internal/ledger"

	"github.com/shopspring/decimal"
)

func TestProfitFromInventory(t *testing.T) {
	r := newReader(t,
		seedTab{ledger.KindInventory, "tz", "Rough", []map[string]any{
			{"cost": 1000, "finalPrice": 3000, "status": "Sold"},
			{"cost": 500, "finalPrice": 900, "status": "in stock"},
			{"cost": 10, "currency": "USD", "finalPrice": 20, "status": "SOLD out"},
		}},
		seedTab{ledger.KindInventory, "tz", "Cut", []map[string]any{
			{"cost": 2, "currency": "usd", "exchangeRate": 100, "sellingPrice": 5, "status": "sold"},
		}},
	)
	svc := NewInventory(r, nil)
	got := svc.ProfitFromInventory(ctx, "tz", []string{"Rough", "Cut", "Missing"})

	// USD at the purchase rate of 305 unless the item carries its own.
	wantCost := decimal.NewFromInt(1000 + 500 + 10*305 + 2*100)
	wantRevenue := decimal.NewFromInt(3000 + 20*305 + 5*100)
	if !got.InventoryCost.Equal(wantCost) {
		t.Errorf("InventoryCost = %s, want %s", got.InventoryCost, wantCost)
	}
	if !got.SalesRevenue.Equal(wantRevenue) {
		t.Errorf("SalesRevenue = %s, want %s", got.SalesRevenue, wantRevenue)
	}
	if !got.Profit.Equal(wantRevenue.Sub(wantCost)) {
		t.Errorf("Profit = %s", got.Profit)
	}
	if got.Items != 4 || got.Sold != 3 {
		t.Errorf("Items/Sold = %d/%d, want 4/3", got.Items, got.Sold)
	}
	if len(got.ByTab) != 2 || got.ByTab[1].Tab != "Cut" {
		t.Errorf("ByTab = %+v", got.ByTab)
	}
}

func TestProfitFromInventoryMonotonic(t *testing.T) {
	items := []map[string]any{
		{"cost": 100, "finalPrice": 50, "status": "Sold"},
		{"cost": 200, "finalPrice": 900, "status": "available"},
		{"cost": 0, "finalPrice": 10, "status": ""},
		{"cost": 300, "finalPrice": 400, "status": "sold"},
	}
	prevCost, prevRevenue := decimal.Zero, decimal.Zero
	for n := 0; n <= len(items); n++ {
		r := newReader(t, seedTab{ledger.KindInventory, "m", "Stones", items[:n]})
		got := NewInventory(r, nil).ProfitFromInventory(ctx, "m", []string{"Stones"})
		if got.InventoryCost.LessThan(prevCost) {
			t.Fatalf("cost decreased after adding item %d: %s < %s", n, got.InventoryCost, prevCost)
		}
		grew := got.SalesRevenue.GreaterThan(prevRevenue)
		if grew && n > 0 && items[n-1]["status"] == "available" {
			t.Fatalf("revenue grew for unsold item %d", n)
		}
		prevCost, prevRevenue = got.InventoryCost, got.SalesRevenue
	}
	if want := decimal.NewFromInt(450); !prevRevenue.Equal(want) {
		t.Errorf("final revenue = %s, want %s", prevRevenue, want)
	}
}

func TestProfitFromInventoryMalformedTab(t *testing.T) {
	r := newRawReader(t,
		map[string]string{
			ledger.Key(ledger.KindInventory, "tz", "Cut"): `{not json`,
			"stones_tz_Cut":                               `[{"cost": 999999}]`,
		},
		seedTab{ledger.KindInventory, "tz", "Rough", []map[string]any{
			{"cost": 100, "finalPrice": 300, "status": "sold"},
			{"cost": 50, "status": "in stock"},
		}},
	)
	got := NewInventory(r, nil).ProfitFromInventory(ctx, "tz", []string{"Cut", "Rough"})

	if !got.InventoryCost.Equal(decimal.NewFromInt(150)) || !got.SalesRevenue.Equal(decimal.NewFromInt(300)) {
		t.Errorf("cost/revenue = %s/%s, want 150/300", got.InventoryCost, got.SalesRevenue)
	}
	if got.Items != 2 || len(got.ByTab) != 1 || got.ByTab[0].Tab != "Rough" {
		t.Errorf("Items = %d, ByTab = %+v", got.Items, got.ByTab)
	}

	empty := NewInventory(newReader(t), nil).ProfitFromInventory(ctx, "tz", []string{"Rough"})
	if empty.ByTab == nil {
		t.Error("ByTab should be an empty list when no tab has items")
	}
}
