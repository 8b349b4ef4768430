// Package namecache maps human-readable option names (as they appear in
// deep-link URLs) back to numeric catalog ids, one mapping per filter
// dimension. Mappings are learned from every option list the API returns
// and persisted so that a deep link can be rebuilt before any network
// round-trip completes. The cache only grows.
package namecache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/store"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// Backend persists one NameEntry per dimension.
type Backend interface {
	Load(ctx context.Context, dim model.Dimension) (model.NameEntry, error)
	Merge(ctx context.Context, dim model.Dimension, add model.NameEntry) error
}

// Cache is a memoising front for a Backend. Safe for concurrent use.
type Cache struct {
	backend Backend
	log     *zap.Logger

	mu   sync.Mutex
	memo map[model.Dimension]model.NameEntry
}

// New returns a Cache over backend.
func New(backend Backend, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		backend: backend,
		log:     log,
		memo:    map[model.Dimension]model.NameEntry{},
	}
}

// entry returns the memoised entry for dim, loading it on first use.
// Must be called with c.mu held.
func (c *Cache) entry(ctx context.Context, dim model.Dimension) model.NameEntry {
	if e, ok := c.memo[dim]; ok {
		return e
	}
	e, err := c.backend.Load(ctx, dim)
	if err != nil {
		c.log.Debug("name cache load failed", zap.String("dimension", string(dim)), zap.Error(err))
		e = model.NewNameEntry()
	}
	c.memo[dim] = e
	return e
}

// Resolve looks name up under every normalised form (lowercase, decoded,
// slug) and returns the first id found.
func (c *Cache) Resolve(ctx context.Context, dim model.Dimension, name string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(ctx, dim)
	for _, k := range urlsync.NameKeys(name) {
		if id, ok := e.Names[k]; ok {
			return id, true
		}
	}
	return 0, false
}

// Label returns the original display label last seen for id.
func (c *Cache) Label(ctx context.Context, dim model.Dimension, id int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry(ctx, dim).Label(id)
}

// Learn upserts every option's name forms. Nothing is written when the
// options are already known.
func (c *Cache) Learn(ctx context.Context, dim model.Dimension, opts []model.Option) error {
	if len(opts) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.entry(ctx, dim)
	add := model.NewNameEntry()
	for _, o := range opts {
		idKey := strconv.FormatInt(o.ID, 10)
		if o.Name != "" && cur.Labels[idKey] != o.Name {
			add.Labels[idKey] = o.Name
		}
		for _, k := range urlsync.NameKeys(o.Name) {
			if have, ok := cur.Names[k]; !ok || have != o.ID {
				add.Names[k] = o.ID
			}
		}
	}
	if len(add.Names) == 0 && len(add.Labels) == 0 {
		return nil
	}
	if err := c.backend.Merge(ctx, dim, add); err != nil {
		return fmt.Errorf("storing names for %s: %w", dim, err)
	}
	for k, v := range add.Names {
		cur.Names[k] = v
	}
	for k, v := range add.Labels {
		cur.Labels[k] = v
	}
	c.memo[dim] = cur
	return nil
}

// Entry returns a copy of the stored entry for dim.
func (c *Cache) Entry(ctx context.Context, dim model.Dimension) model.NameEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.entry(ctx, dim)
	out := model.NewNameEntry()
	for k, v := range src.Names {
		out.Names[k] = v
	}
	for k, v := range src.Labels {
		out.Labels[k] = v
	}
	return out
}

// Forget drops the in-process memo so the next lookup rereads the backend.
func (c *Cache) Forget() {
	c.mu.Lock()
	c.memo = map[model.Dimension]model.NameEntry{}
	c.mu.Unlock()
}

// ─── bbolt backend ────────────────────────────────────────────────────────────

// BoltBackend stores entries in the local store's names bucket.
type BoltBackend struct {
	Store *store.Store
}

func (b BoltBackend) Load(_ context.Context, dim model.Dimension) (model.NameEntry, error) {
	return b.Store.LoadNames(string(dim))
}

func (b BoltBackend) Merge(_ context.Context, dim model.Dimension, add model.NameEntry) error {
	return b.Store.MergeNames(string(dim), add)
}

// MemoryBackend keeps entries in process memory. Used when no durable
// store is available.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[model.Dimension]model.NameEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: map[model.Dimension]model.NameEntry{}}
}

func (m *MemoryBackend) Load(_ context.Context, dim model.Dimension) (model.NameEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := model.NewNameEntry()
	for k, v := range m.entries[dim].Names {
		out.Names[k] = v
	}
	for k, v := range m.entries[dim].Labels {
		out.Labels[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Merge(_ context.Context, dim model.Dimension, add model.NameEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.entries[dim]
	if !ok {
		cur = model.NewNameEntry()
	}
	for k, v := range add.Names {
		cur.Names[k] = v
	}
	for k, v := range add.Labels {
		cur.Labels[k] = v
	}
	m.entries[dim] = cur
	return nil
}
