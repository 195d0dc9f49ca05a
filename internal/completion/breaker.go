package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgard/schoolbot/internal/prompt"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig configures a circuit breaker around a Completer.
type BreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before probing again.
	OpenTimeout time.Duration
}

// BreakerCompleter fails fast with ErrCircuitOpen after MaxFailures
// consecutive backend failures, probing again after OpenTimeout.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerCompleter wraps next with a circuit breaker.
func NewBreakerCompleter(name string, next Completer, cfg BreakerConfig, logger *slog.Logger) *BreakerCompleter {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// Caller cancellation does not count against the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("Completion circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		}
	}

	return &BreakerCompleter{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Complete forwards to the wrapped Completer unless the circuit is open.
func (b *BreakerCompleter) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, messages)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state name: closed, half-open or open.
func (b *BreakerCompleter) State() string {
	return b.cb.State().String()
}
