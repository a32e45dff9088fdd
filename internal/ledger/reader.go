package ledger

import (
	"context"
	"encoding/json"
	"strings"

	"gemdash/internal/core"
	applog "gemdash/internal/log"
)

// Reader loads raw tab records from a Store. It never fails: a missing key,
// a store error or a payload that is not a JSON array all read as an empty
// tab, so aggregation always sees a valid zero state.
type Reader struct {
	store  Store
	logger *applog.Logger
}

// NewReader wraps store. A nil logger discards output.
func NewReader(store Store, logger *applog.Logger) *Reader {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Reader{store: store, logger: logger.WithComponent(applog.ComponentLedger)}
}

type pinKey struct{}

type pinned struct {
	reader *Reader
	values map[string]string
}

// Pin takes one snapshot of a Snapshotter store and serves every read made
// through ctx from it, so one aggregation never mixes two versions of the
// store. Other stores, or a ctx already pinned by r, are returned as is. A
// failed snapshot falls back to per-key reads.
func (r *Reader) Pin(ctx context.Context) context.Context {
	if p, ok := ctx.Value(pinKey{}).(*pinned); ok && p.reader == r {
		return ctx
	}
	s, ok := r.store.(Snapshotter)
	if !ok {
		return ctx
	}
	values, err := s.View(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Store snapshot failed, reading keys one by one",
			applog.FieldError, err.Error(), applog.FieldOperation, applog.OpRead)
		return ctx
	}
	return context.WithValue(ctx, pinKey{}, &pinned{reader: r, values: values})
}

func (r *Reader) get(ctx context.Context, key string) (string, bool, error) {
	if p, ok := ctx.Value(pinKey{}).(*pinned); ok && p.reader == r {
		v, ok := p.values[key]
		return v, ok, nil
	}
	return r.store.Get(ctx, key)
}

// LoadTab returns the raw records of (kind, module, tab). Legacy key
// variants are tried in order and the first key present wins, even when its
// payload turns out to be malformed.
func (r *Reader) LoadTab(ctx context.Context, kind Kind, module, tab string) []core.Raw {
	for _, key := range Keys(kind, module, tab) {
		value, ok, err := r.get(ctx, key)
		if err != nil {
			r.logger.WarnContext(ctx, "Store read failed, treating tab as empty",
				applog.NewFields().WithTab(string(kind), module, tab, key).WithError(err).WithOperation(applog.OpRead).ToSlice()...)
			return nil
		}
		if !ok {
			continue
		}
		records, err := decodeRecords(value)
		if err != nil {
			r.logger.WarnContext(ctx, "Malformed tab payload, treating tab as empty",
				applog.NewFields().WithTab(string(kind), module, tab, key).WithError(err).WithOperation(applog.OpParse).ToSlice()...)
			return nil
		}
		return records
	}
	r.logger.DebugContext(ctx, "No data for tab",
		applog.NewFields().WithTab(string(kind), module, tab, Key(kind, module, tab)).ToSlice()...)
	return nil
}

// Expenses loads an expense-like tab.
func (r *Reader) Expenses(ctx context.Context, kind Kind, module, tab string) []core.ExpenseRecord {
	raws := r.LoadTab(ctx, kind, module, tab)
	out := make([]core.ExpenseRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, core.DecodeExpense(raw))
	}
	return out
}

// Inventory loads an inventory tab.
func (r *Reader) Inventory(ctx context.Context, module, tab string) []core.InventoryItem {
	raws := r.LoadTab(ctx, KindInventory, module, tab)
	out := make([]core.InventoryItem, 0, len(raws))
	for _, raw := range raws {
		out = append(out, core.DecodeInventory(raw))
	}
	return out
}

// Ledger loads a customer-ledger tab.
func (r *Reader) Ledger(ctx context.Context, module, tab string) []core.LedgerRecord {
	raws := r.LoadTab(ctx, KindCustomer, module, tab)
	out := make([]core.LedgerRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, core.DecodeLedger(tab, raw))
	}
	return out
}

// Payments loads a payment-tracking tab.
func (r *Reader) Payments(ctx context.Context, module, tab string) []core.PaymentRecord {
	raws := r.LoadTab(ctx, KindPayments, module, tab)
	out := make([]core.PaymentRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, core.DecodePayment(tab, raw))
	}
	return out
}

// decodeRecords parses a JSON array, keeping only object entries. Numbers are
// kept as json.Number so large amounts survive without float rounding.
func decodeRecords(value string) ([]core.Raw, error) {
	if strings.TrimSpace(value) == "" || strings.TrimSpace(value) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	out := make([]core.Raw, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, core.Raw(m))
		}
	}
	return out, nil
}
