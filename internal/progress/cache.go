package progress

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
)

// Fetcher loads a fresh snapshot for one topic of the current user.
type Fetcher func(ctx context.Context, topicID string) (TopicProgress, error)

// Persister stores snapshots so they survive restarts.
type Persister interface {
	SaveTopicProgress(ctx context.Context, p TopicProgress) error
}

// Listener is notified after an entry is replaced.
type Listener func(p TopicProgress)

// Cache maps topic IDs to their latest known snapshot. Entries are only ever
// replaced wholesale; a failed refresh keeps the previous entry.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]TopicProgress
	fetch     Fetcher
	persister Persister
	logger    *slog.Logger

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures a Cache.
type Option func(*Cache)

// WithPersister saves every replaced entry through p.
func WithPersister(p Persister) Option {
	return func(c *Cache) { c.persister = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates an empty cache that refreshes through fetch.
func NewCache(fetch Fetcher, opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]TopicProgress),
		fetch:     fetch,
		logger:    slog.New(slog.DiscardHandler),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed loads previously persisted snapshots without notifying listeners.
// Existing entries win over seeded ones.
func (c *Cache) Seed(snapshots []TopicProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range snapshots {
		if _, ok := c.entries[p.TopicID]; !ok {
			c.entries[p.TopicID] = p
		}
	}
}

// Refresh fetches topicID and replaces its entry. On failure the prior entry
// is left untouched and the error is returned.
func (c *Cache) Refresh(ctx context.Context, topicID string) (TopicProgress, error) {
	if c.fetch == nil {
		return TopicProgress{}, fmt.Errorf("refresh %s: no fetcher configured", topicID)
	}
	p, err := c.fetch(ctx, topicID)
	if err != nil {
		c.logger.Warn("topic progress refresh failed, keeping cached entry",
			"topic", topicID, "error", err)
		return TopicProgress{}, fmt.Errorf("refresh %s: %w", topicID, err)
	}
	if p.TopicID != topicID {
		return TopicProgress{}, fmt.Errorf("refresh %s: service returned topic %q", topicID, p.TopicID)
	}
	c.replace(ctx, p)
	return p, nil
}

// Patch overwrites the entry for topicID with a known-good snapshot.
func (c *Cache) Patch(topicID string, p TopicProgress) {
	p.TopicID = topicID
	c.replace(context.Background(), p)
}

// Get returns the cached entry for topicID.
func (c *Cache) Get(topicID string) (TopicProgress, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[topicID]
	return p, ok
}

// All returns a copy of every cached entry.
func (c *Cache) All() map[string]TopicProgress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (c *Cache) Subscribe(fn Listener) (unsubscribe func()) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Cache) replace(ctx context.Context, p TopicProgress) {
	c.mu.Lock()
	c.entries[p.TopicID] = p
	c.mu.Unlock()

	if c.persister != nil {
		if err := c.persister.SaveTopicProgress(ctx, p); err != nil {
			c.logger.Warn("persist topic progress", "topic", p.TopicID, "error", err)
		}
	}

	c.listenerMu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}
