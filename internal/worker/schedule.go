package worker

import (
	"context"
	"fmt"
	"time"

	applog "gemdash/internal/log"

	"github.com/robfig/cron/v3"
)

// RunSchedule mirrors immediately and then on every tick of a standard
// five-field cron spec evaluated in loc, until ctx is done. A pass still
// running when the next tick fires makes that tick a no-op.
func (w *SyncWorker) RunSchedule(ctx context.Context, spec string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { w.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}

	w.runOnce(ctx)
	c.Start()
	w.logger.Info("Sync schedule started", "schedule", spec, "location", loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("Sync worker stopping", applog.FieldOperation, applog.OpShutdown)
	return nil
}
