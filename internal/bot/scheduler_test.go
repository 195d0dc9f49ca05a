package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/schoolbot/internal/bot/tasks"
	"github.com/edgard/schoolbot/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"history_sweep":   {Enabled: true, Schedule: "0 */10 * * * *"},
		"journal_prune":   {Enabled: false, Schedule: "0 30 3 * * *"},
		"sql_maintenance": {Enabled: true, Schedule: "not a cron"},
		"unregistered":    {Enabled: true, Schedule: "0 0 * * * *"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"history_sweep":   noop,
		"journal_prune":   noop,
		"sql_maintenance": noop,
	}

	s, err := NewScheduler(discardLogger(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{"history_sweep"}, s.Jobs())
	assert.Error(t, s.Start(), "second start")
}

func TestSchedulerStopIdempotent(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(discardLogger(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
