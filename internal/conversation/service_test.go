package conversation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/schoolbot/internal/completion"
	"github.com/edgard/schoolbot/internal/config"
	"github.com/edgard/schoolbot/internal/conversation"
	"github.com/edgard/schoolbot/internal/database"
	"github.com/edgard/schoolbot/internal/history"
	"github.com/edgard/schoolbot/internal/prompt"
)

// scriptedCompleter returns queued answers in order and records every prompt.
type scriptedCompleter struct {
	mu      sync.Mutex
	answers []string
	errs    []error
	prompts [][]prompt.Message
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []prompt.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, messages)
	i := len(c.prompts) - 1
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.answers) {
		return c.answers[i], nil
	}
	return "ok", nil
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []database.Exchange
	err     error
}

func (j *memoryJournal) SaveExchange(_ context.Context, ex *database.Exchange) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, *ex)
	return nil
}

func newService(t *testing.T, completer completion.Completer, journal conversation.Journal, recordFallback bool) (*conversation.Service, *history.Store) {
	t.Helper()
	store, err := history.NewStore(history.Options{MaxExchanges: 5, MaxCallers: 100})
	require.NoError(t, err)
	svc := conversation.NewService(conversation.Options{
		History:        store,
		Builder:        prompt.NewBuilder(config.DefaultSystemTemplate),
		Answerer:       completion.NewAnswerer(completer, "test", "", nil),
		Journal:        journal,
		DomainContext:  "Lessons cost $10.",
		RecordFallback: recordFallback,
	})
	return svc, store
}

func TestAskFirstQuestion(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{answers: []string{"From $10/lesson."}}
	journal := &memoryJournal{}
	svc, store := newService(t, completer, journal, true)

	got := svc.Ask(context.Background(), conversation.Caller{ID: 42, Username: "mom"}, "  How much are lessons?  ")
	assert.Equal(t, "From $10/lesson.", got)

	require.Len(t, completer.prompts, 1)
	sent := completer.prompts[0]
	require.Len(t, sent, 2)
	assert.Equal(t, prompt.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Text, "Lessons cost $10.")
	assert.Equal(t, prompt.Message{Role: prompt.RoleUser, Text: "How much are lessons?"}, sent[1])

	hist := store.GetOrCreate(42)
	require.Len(t, hist, 1)
	assert.Equal(t, "How much are lessons?", hist[0].Question)
	assert.Equal(t, "From $10/lesson.", hist[0].Answer)

	require.Len(t, journal.entries, 1)
	assert.Equal(t, int64(42), journal.entries[0].CallerID)
	assert.Equal(t, "mom", journal.entries[0].Username)
	assert.False(t, journal.entries[0].Fallback)
}

func TestAskSixthQuestionEvictsOldest(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{answers: []string{"a1", "a2", "a3", "a4", "a5", "a6"}}
	svc, store := newService(t, completer, nil, true)
	caller := conversation.Caller{ID: 7}

	for _, q := range []string{"q1", "q2", "q3", "q4", "q5"} {
		svc.Ask(context.Background(), caller, q)
	}
	svc.Ask(context.Background(), caller, "q6")

	sixth := completer.prompts[5]
	require.Len(t, sixth, 12)
	assert.Equal(t, "q1", sixth[1].Text)
	assert.Equal(t, "a5", sixth[10].Text)
	assert.Equal(t, "q6", sixth[11].Text)

	hist := store.GetOrCreate(7)
	require.Len(t, hist, 5)
	assert.Equal(t, "q2", hist[0].Question)
	assert.Equal(t, "q6", hist[4].Question)
}

func TestAskFallbackRecorded(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{errs: []error{completion.ErrStatus}}
	journal := &memoryJournal{}
	svc, store := newService(t, completer, journal, true)

	got := svc.Ask(context.Background(), conversation.Caller{ID: 1}, "Hello")
	assert.Equal(t, completion.DefaultFallback, got)

	hist := store.GetOrCreate(1)
	require.Len(t, hist, 1)
	assert.Equal(t, completion.DefaultFallback, hist[0].Answer)

	require.Len(t, journal.entries, 1)
	assert.True(t, journal.entries[0].Fallback)
}

func TestAskFallbackNotRecorded(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{errs: []error{errors.New("timeout")}}
	svc, store := newService(t, completer, nil, false)

	got := svc.Ask(context.Background(), conversation.Caller{ID: 1}, "Hello")
	assert.Equal(t, completion.DefaultFallback, got)
	assert.Empty(t, store.GetOrCreate(1))
}

func TestAskJournalErrorIgnored(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{answers: []string{"fine"}}
	svc, store := newService(t, completer, &memoryJournal{err: errors.New("disk full")}, true)

	assert.Equal(t, "fine", svc.Ask(context.Background(), conversation.Caller{ID: 3}, "q"))
	assert.Len(t, store.GetOrCreate(3), 1)
}

func TestResetClearsOnlyOneCaller(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, &scriptedCompleter{}, nil, true)
	ctx := context.Background()

	svc.Ask(ctx, conversation.Caller{ID: 1}, "q")
	svc.Ask(ctx, conversation.Caller{ID: 2}, "q")

	assert.True(t, svc.Reset(1))
	assert.False(t, svc.Reset(99))
	assert.Empty(t, store.GetOrCreate(1))
	assert.Len(t, store.GetOrCreate(2), 1)
}

func TestAskConcurrentSameCaller(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, &scriptedCompleter{}, nil, true)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Ask(context.Background(), conversation.Caller{ID: 5}, "q")
		}()
	}
	wg.Wait()

	assert.Len(t, store.GetOrCreate(5), 5)
}
