package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the journal operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveExchange appends one exchange to the journal.
	SaveExchange(ctx context.Context, exchange *Exchange) error

	// CountExchanges returns the number of journaled exchanges for callerID,
	// or for all callers when callerID is zero.
	CountExchanges(ctx context.Context, callerID int64) (int64, error)

	// PruneExchanges deletes exchanges created before the cutoff.
	PruneExchanges(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance optimizes and vacuums the database file.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveExchange(ctx context.Context, exchange *Exchange) error {
	if exchange == nil {
		return errors.New("cannot save nil exchange")
	}
	if exchange.CallerID == 0 {
		return errors.New("exchange must have a non-zero caller_id")
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = s.now()
	} else {
		exchange.CreatedAt = exchange.CreatedAt.UTC()
	}

	query := `
        INSERT INTO exchanges (caller_id, username, question, answer, fallback, created_at)
        VALUES (:caller_id, :username, :question, :answer, :fallback, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, exchange)
	if err != nil {
		return fmt.Errorf("failed to save exchange (caller %d): %w", exchange.CallerID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // row ids are positive
		exchange.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving exchange",
			"caller_id", exchange.CallerID, "error", err)
	}

	s.logger.DebugContext(ctx, "Exchange journaled",
		"caller_id", exchange.CallerID, "exchange_id", exchange.ID, "fallback", exchange.Fallback)
	return nil
}

func (s *sqlxStore) CountExchanges(ctx context.Context, callerID int64) (int64, error) {
	var count int64
	var err error
	if callerID == 0 {
		err = s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM exchanges;")
	} else {
		err = s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM exchanges WHERE caller_id = ?;", callerID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) PruneExchanges(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM exchanges WHERE created_at < ?;", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune exchanges: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	s.logger.InfoContext(ctx, "Pruned journal", "deleted", affected, "before", before)
	return affected, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	// VACUUM cannot run inside a transaction.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
