// Package dedup tracks which post IDs have already been handled during the
// current run, so overlapping feeds cannot trigger duplicate enforcement.
// There is no cross-restart durability: re-evaluating a recently seen post
// after a restart is safe because enforcement is idempotent.
package dedup

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCapacity  = 65536
	DefaultRetention = 30 * time.Minute
)

// Cursor is a TTL- and capacity-bounded seen-set keyed by post fullname.
// Safe for concurrent use.
type Cursor struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, time.Time]
}

// New builds a cursor. Non-positive capacity or retention fall back to the
// defaults; both bounds keep memory flat over a long-running process.
func New(capacity int, retention time.Duration) *Cursor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cursor{
		seen: expirable.NewLRU[string, time.Time](capacity, nil, retention),
	}
}

// Seen reports whether id was marked within the retention window.
func (c *Cursor) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen.Get(id)
	return ok
}

// Mark records id as handled.
func (c *Cursor) Mark(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen.Add(id, time.Now())
}

// Claim marks id and reports whether it was unseen, in one atomic step, so
// two workers holding the same id cannot both win it.
func (c *Cursor) Claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen.Get(id); ok {
		return false
	}
	c.seen.Add(id, time.Now())
	return true
}

// Len returns the number of tracked IDs.
func (c *Cursor) Len() int {
	return c.seen.Len()
}
