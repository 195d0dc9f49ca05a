// Package tasks implements the bot's scheduled housekeeping tasks.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/schoolbot/internal/config"
)

// Journal is the part of the database store used by tasks.
type Journal interface {
	PruneExchanges(ctx context.Context, before time.Time) (int64, error)
	RunSQLMaintenance(ctx context.Context) error
}

// HistorySweeper drops callers that have been idle too long.
type HistorySweeper interface {
	SweepIdle(now time.Time) int
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   Journal
	History HistorySweeper
	Config  *config.Config
	Now     func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
