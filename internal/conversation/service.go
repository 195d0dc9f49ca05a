// Package conversation answers a caller's question with their recent
// history as context.
package conversation

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/edgard/schoolbot/internal/database"
	"github.com/edgard/schoolbot/internal/history"
	"github.com/edgard/schoolbot/internal/metrics"
	"github.com/edgard/schoolbot/internal/prompt"
)

// Caller identifies the sender of a question.
type Caller struct {
	ID       int64
	Username string
}

// Answerer produces an answer for a prompt, falling back on failure.
type Answerer interface {
	Answer(ctx context.Context, messages []prompt.Message) (text string, usedFallback bool)
}

// Journal stores exchanges for auditing. A nil Journal disables journaling.
type Journal interface {
	SaveExchange(ctx context.Context, exchange *database.Exchange) error
}

// Options configures a Service.
type Options struct {
	History        *history.Store
	Builder        prompt.Builder
	Answerer       Answerer
	Journal        Journal
	DomainContext  string
	RecordFallback bool
	Logger         *slog.Logger
}

// Service runs the question pipeline: lock, read history, build prompt,
// answer, record.
type Service struct {
	history        *history.Store
	builder        prompt.Builder
	answerer       Answerer
	journal        Journal
	domainContext  string
	recordFallback bool
	logger         *slog.Logger
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		history:        opts.History,
		builder:        opts.Builder,
		answerer:       opts.Answerer,
		journal:        opts.Journal,
		domainContext:  opts.DomainContext,
		recordFallback: opts.RecordFallback,
		logger:         logger.With("component", "conversation"),
	}
}

// Ask answers question for caller. It always returns text to send back,
// the fallback text included.
func (s *Service) Ask(ctx context.Context, caller Caller, question string) string {
	question = strings.TrimSpace(question)

	unlock := s.history.Lock(caller.ID)
	defer unlock()

	exchanges := s.history.GetOrCreate(caller.ID)
	messages := s.builder.Build(question, exchanges, s.domainContext)

	s.logger.DebugContext(ctx, "Asking completion",
		"caller_id", caller.ID, "history_len", len(exchanges), "prompt_len", len(messages))

	answer, usedFallback := s.answerer.Answer(ctx, messages)

	if !usedFallback || s.recordFallback {
		s.history.Record(caller.ID, question, answer)
	}
	s.journalExchange(ctx, caller, question, answer, usedFallback)

	return answer
}

// Reset forgets the caller's history. It reports whether the caller was known.
func (s *Service) Reset(callerID int64) bool {
	unlock := s.history.Lock(callerID)
	defer unlock()
	return s.history.Reset(callerID)
}

func (s *Service) journalExchange(ctx context.Context, caller Caller, question, answer string, usedFallback bool) {
	if s.journal == nil {
		return
	}
	err := s.journal.SaveExchange(ctx, &database.Exchange{
		CallerID: caller.ID,
		Username: caller.Username,
		Question: question,
		Answer:   answer,
		Fallback: usedFallback,
	})
	if err != nil {
		metrics.JournalWriteErrors.Inc()
		s.logger.ErrorContext(ctx, "Failed to journal exchange", "caller_id", caller.ID, "error", err)
	}
}
