package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.MaxCallers == 0 {
		opts.MaxCallers = 100
	}
	s, err := NewStore(opts)
	require.NoError(t, err)
	return s
}

func TestGetOrCreateEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	h := s.GetOrCreate(42)

	assert.Empty(t, h)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, DefaultMaxExchanges, s.Capacity())
}

func TestRecordFIFOBound(t *testing.T) {
	t.Parallel()

	for k := 1; k <= 12; k++ {
		t.Run(fmt.Sprintf("%d exchanges", k), func(t *testing.T) {
			t.Parallel()

			s := newTestStore(t, Options{MaxExchanges: 5})
			for i := 1; i <= k; i++ {
				s.Record(42, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
			}

			h := s.GetOrCreate(42)
			want := min(k, 5)
			require.Len(t, h, want)

			// The retained entries are the most recent ones in arrival order.
			first := k - want + 1
			for i, ex := range h {
				assert.Equal(t, fmt.Sprintf("q%d", first+i), ex.Question)
				assert.Equal(t, fmt.Sprintf("a%d", first+i), ex.Answer)
			}
		})
	}
}

func TestSixMessagesEvictFirst(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{MaxExchanges: 5})
	for i := 1; i <= 6; i++ {
		s.Record(42, fmt.Sprintf("message %d", i), "ok")
	}

	h := s.GetOrCreate(42)
	require.Len(t, h, 5)
	for _, ex := range h {
		assert.NotEqual(t, "message 1", ex.Question)
	}
	assert.Equal(t, "message 2", h[0].Question)
	assert.Equal(t, "message 6", h[4].Question)
}

func TestGetOrCreateReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	s.Record(1, "q", "a")

	h := s.GetOrCreate(1)
	h[0].Answer = "tampered"

	assert.Equal(t, "a", s.GetOrCreate(1)[0].Answer)
}

func TestCallersAreIndependent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	s.Record(1, "q1", "a1")
	s.Record(2, "q2", "a2")

	assert.Len(t, s.GetOrCreate(1), 1)
	assert.Equal(t, "q2", s.GetOrCreate(2)[0].Question)
}

func TestReset(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	s.Record(42, "q", "a")

	assert.True(t, s.Reset(42))
	assert.False(t, s.Reset(42))
	assert.Empty(t, s.GetOrCreate(42))
}

func TestMaxCallersEvictsLeastRecent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{MaxCallers: 2})
	s.Record(1, "q", "a")
	s.Record(2, "q", "a")
	s.GetOrCreate(1) // caller 1 becomes most recent
	s.Record(3, "q", "a")

	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.GetOrCreate(1), 1)
	assert.Empty(t, s.GetOrCreate(2), "caller 2 was evicted and starts over")
}

func TestSweepIdle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{IdleTTL: time.Hour})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	s.Record(1, "old", "a")
	s.now = func() time.Time { return base.Add(50 * time.Minute) }
	s.Record(2, "fresh", "a")

	removed := s.SweepIdle(base.Add(90 * time.Minute))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "fresh", s.GetOrCreate(2)[0].Question)
}

func TestSweepIdleDisabled(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	s.Record(1, "q", "a")

	assert.Zero(t, s.SweepIdle(time.Now().Add(365*24*time.Hour)))
	assert.Equal(t, 1, s.Len())
}

func TestLockSerialisesSameCaller(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{MaxExchanges: 100})

	const workers = 20
	var wg sync.WaitGroup
	active := 0
	maxActive := 0
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := s.Lock(42)
			defer unlock()

			mu.Lock()
			active++
			maxActive = max(maxActive, active)
			mu.Unlock()

			h := s.GetOrCreate(42)
			time.Sleep(time.Millisecond)
			s.Record(42, fmt.Sprintf("q%d-%d", i, len(h)), "a")

			mu.Lock()
			active--
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Len(t, s.GetOrCreate(42), workers)
	s.mu.Lock()
	assert.Empty(t, s.locks, "locks are released once nobody holds them")
	s.mu.Unlock()
}

func TestLockDoesNotBlockOtherCallers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, Options{})
	unlock := s.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		s.Lock(2)()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for caller 2 blocked on caller 1")
	}
}

func TestNewStoreRejectsZeroCallers(t *testing.T) {
	t.Parallel()

	_, err := NewStore(Options{MaxCallers: -1})
	assert.Error(t, err)
}
