package catalog

import (
	"sync"
	"time"
)

// row pairs a record with the keys it is matched on. Backends that load the
// whole catalog at once keep a snapshot of these.
type row struct {
	Key    MatchKey
	Record PriceRecord
}

// snapshotCache holds a full catalog snapshot for a fixed TTL. A zero TTL
// disables caching entirely.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   func() time.Time
	takenAt time.Time
	rows    []row
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{ttl: ttl, clock: time.Now}
}

// Get returns the cached snapshot if it is still fresh.
func (c *snapshotCache) Get() ([]row, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.takenAt.IsZero() || c.clock().Sub(c.takenAt) >= c.ttl {
		return nil, false
	}
	return c.rows, true
}

// Put replaces the snapshot and restarts the TTL clock.
func (c *snapshotCache) Put(rows []row) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = rows
	c.takenAt = c.clock()
}

// Invalidate drops the snapshot so the next read goes to the source.
func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = nil
	c.takenAt = time.Time{}
}
