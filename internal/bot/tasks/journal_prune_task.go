package tasks

import (
	"context"
	"fmt"
)

// newJournalPruneTask deletes journal rows older than the configured retention.
// A zero retention keeps everything.
func newJournalPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "journal_prune")

	return func(ctx context.Context) error {
		retention := deps.Config.Database.JournalRetention
		if retention <= 0 {
			log.DebugContext(ctx, "Journal retention disabled, skipping prune")
			return nil
		}

		cutoff := deps.now().Add(-retention)
		deleted, err := deps.Store.PruneExchanges(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("journal prune failed: %w", err)
		}

		log.InfoContext(ctx, "Journal pruned", "deleted", deleted, "cutoff", cutoff)
		return nil
	}
}
