// Package services holds the aggregation engine: module expense totals,
// inventory profit and receivables reconciliation. Every aggregation is a
// read-only, deterministic function of the store snapshot it reads.
package services

import (
	"context"

	"gemdash/internal/core"
	applog "gemdash/internal/log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultFanout bounds concurrent tab reads per aggregation.
const DefaultFanout = 8

// ModuleTabs enumerates the tabs registered to a module.
type ModuleTabs interface {
	ModuleTabs(module string) []string
}

// fanOut runs fn for every index in [0, n) with at most limit in flight and
// returns the results in index order once all of them completed. fn cannot
// fail, so one tab never discards another tab's result.
func fanOut[T any](ctx context.Context, limit, n int, fn func(ctx context.Context, i int) T) []T {
	out := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			out[i] = fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// noteUnconverted logs amounts in a currency the table has no rate for and
// the record carries none either. Such amounts pass through unchanged.
func noteUnconverted(logger *applog.Logger, rates core.RateTable, code string, rate decimal.NullDecimal) {
	if code == "" || rate.Valid || rates.Known(code) {
		return
	}
	logger.Debug("No exchange rate for currency, amount kept as is",
		applog.FieldCurrency, code, "rates", rates.Name())
}
