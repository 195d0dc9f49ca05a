package tasks

import (
	"context"
)

// newHistorySweepTask forgets callers whose history has been idle longer
// than history.idle_ttl.
func newHistorySweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "history_sweep")

	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		removed := deps.History.SweepIdle(deps.now())
		if removed > 0 {
			log.InfoContext(ctx, "Swept idle callers", "removed", removed)
		} else {
			log.DebugContext(ctx, "No idle callers to sweep")
		}
		return nil
	}
}
