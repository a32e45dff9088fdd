// Package worker mirrors the upstream spreadsheet store into the local sqlite
// store and announces which tabs changed.
package worker

import (
	"context"
	"fmt"
	"time"

	applog "gemdash/internal/log"
)

// Source yields a full key/value snapshot of the upstream store.
type Source interface {
	Snapshot(ctx context.Context) (map[string]string, error)
}

// Destination receives mirrored payloads.
type Destination interface {
	Put(ctx context.Context, key, value string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Publisher announces changed keys. It may be nil.
type Publisher interface {
	PublishTabChanged(ctx context.Context, key string) error
}

// SyncResult summarizes one mirror pass.
type SyncResult struct {
	Keys    int
	Changed []string
	Removed []string
	Failed  int
}

// SyncWorker copies every key of Source into Destination, removing keys that
// disappeared upstream, and publishes one event per changed or removed key.
type SyncWorker struct {
	source    Source
	dest      Destination
	publisher Publisher
	logger    *applog.Logger
}

func NewSyncWorker(source Source, dest Destination, publisher Publisher, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		source:    source,
		dest:      dest,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// SyncOnce runs a single mirror pass. A failed key write is counted and
// skipped; only a failed snapshot or listing aborts the pass.
func (w *SyncWorker) SyncOnce(ctx context.Context) (SyncResult, error) {
	start := time.Now()
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("snapshot source: %w", err)
	}
	existing, err := w.dest.Keys(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list destination keys: %w", err)
	}

	res := SyncResult{Keys: len(snap)}
	for key, value := range snap {
		changed, err := w.dest.Put(ctx, key, value)
		if err != nil {
			res.Failed++
			w.logger.ErrorContext(ctx, "Failed to mirror tab",
				append(applog.NewFields().WithError(err).WithOperation(applog.OpSync).ToSlice(),
					applog.FieldKey, key)...)
			continue
		}
		if changed {
			res.Changed = append(res.Changed, key)
		}
	}
	for _, key := range existing {
		if _, ok := snap[key]; ok {
			continue
		}
		removed, err := w.dest.Delete(ctx, key)
		if err != nil {
			res.Failed++
			w.logger.ErrorContext(ctx, "Failed to remove stale tab",
				applog.FieldKey, key, applog.FieldError, err.Error())
			continue
		}
		if removed {
			res.Removed = append(res.Removed, key)
		}
	}

	w.publish(ctx, res.Changed)
	w.publish(ctx, res.Removed)

	w.logger.InfoContext(ctx, "Mirror pass complete",
		"keys", res.Keys,
		"changed", len(res.Changed),
		"removed", len(res.Removed),
		"failed", res.Failed,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return res, nil
}

func (w *SyncWorker) publish(ctx context.Context, keys []string) {
	if w.publisher == nil {
		return
	}
	for _, key := range keys {
		if err := w.publisher.PublishTabChanged(ctx, key); err != nil {
			w.logger.WarnContext(ctx, "Failed to publish tab change",
				applog.FieldKey, key, applog.FieldError, err.Error())
		}
	}
}

// Run mirrors immediately and then every interval until ctx is done. Failed
// passes are logged and retried on the next tick.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sync interval %s", interval)
	}
	w.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Sync worker stopping", applog.FieldOperation, applog.OpShutdown)
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Mirror pass failed",
			applog.FieldError, err.Error(), applog.FieldOperation, applog.OpSync)
	}
}
