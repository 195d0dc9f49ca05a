// Package completion talks to the hosted LLM that answers user questions.
package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/schoolbot/internal/metrics"
	"github.com/edgard/schoolbot/internal/prompt"
)

// DefaultFallback is returned to the user whenever a completion fails.
const DefaultFallback = "Sorry, I cannot answer right now, please try again later."

var (
	// ErrStatus reports a non-2xx response from the completion endpoint.
	ErrStatus = errors.New("unexpected completion status")
	// ErrEmptyResponse reports a response without any answer text.
	ErrEmptyResponse = errors.New("completion response has no text")
)

// Completer sends one prompt to a completion backend and returns its answer.
type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// Answerer turns a Completer into a total function: every failure,
// including a panic inside the Completer, becomes the fallback text.
type Answerer struct {
	completer Completer
	provider  string
	fallback  string
	logger    *slog.Logger
}

// NewAnswerer wraps completer. An empty fallback selects DefaultFallback.
func NewAnswerer(completer Completer, provider, fallback string, logger *slog.Logger) *Answerer {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Answerer{
		completer: completer,
		provider:  provider,
		fallback:  fallback,
		logger:    logger.With("component", "answerer", "provider", provider),
	}
}

// Fallback returns the text used when the completion fails.
func (a *Answerer) Fallback() string {
	return a.fallback
}

// Answer returns the model's answer, or the fallback text with
// usedFallback set when anything goes wrong. It never returns an error.
func (a *Answerer) Answer(ctx context.Context, messages []prompt.Message) (text string, usedFallback bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "Completion panicked", "panic", fmt.Sprint(r))
			text, usedFallback = a.fallback, true
		}
		outcome := metrics.OutcomeSuccess
		if usedFallback {
			outcome = metrics.OutcomeFallback
		}
		metrics.CompletionRequests.WithLabelValues(a.provider, outcome).Inc()
		metrics.CompletionLatency.WithLabelValues(a.provider).Observe(time.Since(start).Seconds())
	}()

	answer, err := a.completer.Complete(ctx, messages)
	if err != nil {
		a.logger.ErrorContext(ctx, "Completion failed, using fallback", "error", err, "duration", time.Since(start))
		return a.fallback, true
	}

	a.logger.DebugContext(ctx, "Completion succeeded", "duration", time.Since(start), "answer_len", len(answer))
	return answer, false
}
