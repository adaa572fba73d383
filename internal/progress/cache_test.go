package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	results map[string]TopicProgress
	err     error
	calls   int
}

func (f *fakeFetcher) fetch(_ context.Context, topicID string) (TopicProgress, error) {
	f.calls++
	if f.err != nil {
		return TopicProgress{}, f.err
	}
	return f.results[topicID], nil
}

type memPersister struct {
	saved []TopicProgress
}

func (m *memPersister) SaveTopicProgress(_ context.Context, p TopicProgress) error {
	m.saved = append(m.saved, p)
	return nil
}

func TestRefreshReplacesEntry(t *testing.T) {
	f := &fakeFetcher{results: map[string]TopicProgress{
		"go-basics": {TopicID: "go-basics", Difficulty: DifficultyIntermediate, Attempted: 10, Correct: 8, Mastery: 54},
	}}
	c := NewCache(f.fetch)

	got, err := c.Refresh(context.Background(), "go-basics")
	require.NoError(t, err)
	assert.Equal(t, 54, got.Mastery)

	cached, ok := c.Get("go-basics")
	require.True(t, ok)
	assert.Equal(t, got, cached)
}

func TestRefreshFailureKeepsStaleEntry(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f.fetch)
	stale := TopicProgress{TopicID: "loops", Attempted: 3, Correct: 1, Mastery: 20}
	c.Patch("loops", stale)

	f.err = errors.New("connection refused")
	_, err := c.Refresh(context.Background(), "loops")
	require.Error(t, err)

	cached, ok := c.Get("loops")
	require.True(t, ok)
	assert.Equal(t, stale, cached)
}

func TestRefreshRejectsMismatchedTopic(t *testing.T) {
	f := &fakeFetcher{results: map[string]TopicProgress{
		"a": {TopicID: "b"},
	}}
	c := NewCache(f.fetch)
	_, err := c.Refresh(context.Background(), "a")
	require.Error(t, err)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestPatchIsFullReplace(t *testing.T) {
	c := NewCache(nil)
	c.Patch("maps", TopicProgress{Attempted: 5, Correct: 5, XPEarned: 100, Mastery: 60, Difficulty: DifficultyAdvanced})
	c.Patch("maps", TopicProgress{Attempted: 6})

	got, _ := c.Get("maps")
	assert.Equal(t, TopicProgress{TopicID: "maps", Attempted: 6}, got)
}

func TestPersisterAndSubscribers(t *testing.T) {
	p := &memPersister{}
	c := NewCache(nil, WithPersister(p))

	var seen []string
	unsubscribe := c.Subscribe(func(tp TopicProgress) { seen = append(seen, tp.TopicID) })

	c.Patch("a", TopicProgress{Mastery: 1})
	unsubscribe()
	c.Patch("b", TopicProgress{Mastery: 2})

	assert.Equal(t, []string{"a"}, seen)
	require.Len(t, p.saved, 2)
	assert.Equal(t, "b", p.saved[1].TopicID)
}

func TestSeedDoesNotOverwrite(t *testing.T) {
	c := NewCache(nil)
	c.Patch("a", TopicProgress{Mastery: 90})
	c.Seed([]TopicProgress{{TopicID: "a", Mastery: 10}, {TopicID: "b", Mastery: 30}})

	a, _ := c.Get("a")
	b, _ := c.Get("b")
	assert.Equal(t, 90, a.Mastery)
	assert.Equal(t, 30, b.Mastery)
	assert.Len(t, c.All(), 2)
}

func TestComputedAccuracy(t *testing.T) {
	assert.Zero(t, TopicProgress{}.ComputedAccuracy())
	assert.InDelta(t, 75.0, TopicProgress{Attempted: 4, Correct: 3}.ComputedAccuracy(), 1e-9)
}
