package aggregator

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/openuptime/uptimer/internal/models"
	"github.com/openuptime/uptimer/internal/store"
)

// CacheConfig tunes the read-through snapshot cache.
type CacheConfig struct {
	Fresh    time.Duration // below this age, Classify reports the snapshot fresh
	RefreshAt time.Duration // at or above this age, kick off a background recompute
	MaxStale time.Duration // beyond this age, block the reader on a synchronous recompute
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Fresh:     60 * time.Second,
		RefreshAt: 30 * time.Second,
		MaxStale:  10 * time.Minute,
	}
}

// Cache serves the public snapshot from public_snapshots, recomputing
// synchronously when the cached copy is missing or past MaxStale, and
// in the background once it reaches RefreshAt. At most one background
// refresh runs at a time; concurrent reads that find the snapshot due
// for refresh share it rather than stacking duplicate work.
// Synchronous recomputes are not deduplicated.
type Cache struct {
	store *store.Store
	cfg   CacheConfig

	mu         sync.Mutex
	refreshing bool
}

func NewCache(st *store.Store, cfg CacheConfig) *Cache {
	return &Cache{store: st, cfg: cfg}
}

// Freshness classifies a snapshot's age for the HTTP layer's
// Cache-Control header.
type Freshness string

const (
	FreshnessFresh   Freshness = "fresh"
	FreshnessStale   Freshness = "stale"
	FreshnessExpired Freshness = "expired"
)

func (c *Cache) Classify(snap *models.PublicSnapshot) Freshness {
	age := time.Since(snap.GeneratedAt)
	switch {
	case age < c.cfg.Fresh:
		return FreshnessFresh
	case age < c.cfg.MaxStale:
		return FreshnessStale
	default:
		return FreshnessExpired
	}
}

// Get returns the snapshot to serve. It never returns a snapshot older
// than MaxStale: past that age it recomputes synchronously and returns
// the error if the recompute fails. A brand new deployment with no
// snapshot yet always recomputes synchronously.
func (c *Cache) Get(ctx context.Context) (*models.PublicSnapshot, error) {
	snap, err := c.store.GetSnapshot(ctx, models.PublicSnapshotKey)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return c.recompute(ctx)
	}

	age := time.Since(snap.GeneratedAt)
	if age >= c.cfg.RefreshAt {
		c.triggerBackgroundRefresh()
	}
	if age < c.cfg.MaxStale {
		return snap, nil
	}

	fresh, err := c.recompute(ctx)
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func (c *Cache) triggerBackgroundRefresh() {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.refreshing = false
			c.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.recompute(ctx); err != nil {
			log.Printf("aggregator: background refresh failed: %v", err)
		}
	}()
}

func (c *Cache) recompute(ctx context.Context) (*models.PublicSnapshot, error) {
	snapshot, err := BuildSnapshot(ctx, c.store)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	generatedAt := snapshot.GeneratedAt
	if err := c.store.PutSnapshot(ctx, models.PublicSnapshotKey, generatedAt, string(body)); err != nil {
		return nil, err
	}
	return &models.PublicSnapshot{Key: models.PublicSnapshotKey, GeneratedAt: generatedAt, Body: string(body)}, nil
}
