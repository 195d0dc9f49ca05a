// Package history keeps the short per-caller conversation context that is
// replayed to the completion endpoint on every request.
package history

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMaxExchanges is the number of exchanges remembered per caller.
const DefaultMaxExchanges = 5

// Exchange is one completed question/answer turn.
type Exchange struct {
	Question string
	Answer   string
	At       time.Time
}

type entry struct {
	exchanges []Exchange
	lastSeen  time.Time
}

type callerLock struct {
	mu   sync.Mutex
	refs int
}

// Store maps caller ids to a bounded FIFO of recent exchanges.
//
// The number of tracked callers is capped by an LRU; callers idle longer
// than the configured TTL are dropped by SweepIdle. Every History handed out
// is a copy, so only the Store mutates the underlying slices.
type Store struct {
	mu       sync.Mutex
	callers  *lru.Cache // int64 -> *entry
	locks    map[int64]*callerLock
	capacity int
	idleTTL  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Options configures a Store.
type Options struct {
	MaxExchanges int
	MaxCallers   int
	IdleTTL      time.Duration
	Logger       *slog.Logger
}

// NewStore creates an empty Store.
func NewStore(opts Options) (*Store, error) {
	if opts.MaxExchanges <= 0 {
		opts.MaxExchanges = DefaultMaxExchanges
	}
	if opts.MaxCallers <= 0 {
		return nil, fmt.Errorf("max callers must be positive, got %d", opts.MaxCallers)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "history_store")

	callers, err := lru.NewWithEvict(opts.MaxCallers, func(key, _ interface{}) {
		log.Debug("Dropped caller history", "caller_id", key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create caller cache: %w", err)
	}

	return &Store{
		callers:  callers,
		locks:    make(map[int64]*callerLock),
		capacity: opts.MaxExchanges,
		idleTTL:  opts.IdleTTL,
		now:      time.Now,
		logger:   log,
	}, nil
}

// Capacity returns the maximum number of exchanges kept per caller.
func (s *Store) Capacity() int {
	return s.capacity
}

// GetOrCreate returns a copy of the caller's history, oldest first,
// registering the caller with an empty history if it is unknown.
func (s *Store) GetOrCreate(callerID int64) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(callerID)
	out := make([]Exchange, len(e.exchanges))
	copy(out, e.exchanges)
	return out
}

// Record appends an exchange to the caller's history and evicts the oldest
// entries until the history fits the capacity again.
func (s *Store) Record(callerID int64, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.entryLocked(callerID)
	e.exchanges = append(e.exchanges, Exchange{Question: question, Answer: answer, At: now})
	for len(e.exchanges) > s.capacity {
		e.exchanges[0] = Exchange{}
		e.exchanges = e.exchanges[1:]
	}
	e.lastSeen = now
}

// Reset forgets the caller's history. It reports whether the caller was known.
func (s *Store) Reset(callerID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.callers.Contains(callerID) {
		return false
	}
	s.callers.Remove(callerID)
	return true
}

// Lock serialises work for a single caller. Callers never contend with each
// other; the returned function must be called exactly once.
func (s *Store) Lock(callerID int64) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[callerID]
	if !ok {
		l = &callerLock{}
		s.locks[callerID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, callerID)
			}
			s.mu.Unlock()
		})
	}
}

// SweepIdle drops callers whose last activity is older than the idle TTL and
// returns how many were removed. A zero TTL disables sweeping.
func (s *Store) SweepIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range s.callers.Keys() {
		v, ok := s.callers.Peek(key)
		if !ok {
			continue
		}
		if now.Sub(v.(*entry).lastSeen) > s.idleTTL {
			s.callers.Remove(key)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Swept idle callers", "removed", removed, "remaining", s.callers.Len())
	}
	return removed
}

// Len returns the number of tracked callers.
func (s *Store) Len() int {
	return s.callers.Len()
}

func (s *Store) entryLocked(callerID int64) *entry {
	if v, ok := s.callers.Get(callerID); ok {
		return v.(*entry)
	}
	e := &entry{lastSeen: s.now()}
	s.callers.Add(callerID, e)
	return e
}
