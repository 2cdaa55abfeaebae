// Package dedupe remembers which target ids have already been scored so a
// double-fired hit counts once.
package dedupe

import (
	"sync"
)

// Deduper records seen target ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded, recording it
	// if not.
	SeenAndRecord(id string) bool

	// Reset forgets every id.
	Reset()
}

// inMemoryDeduper keeps ids in a map. In bounded mode a ring of insertion
// order evicts the oldest id once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper. Without options it holds up to
// 4096 ids.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 4096,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}

	if d.maxSize <= 0 {
		return false
	}
	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, id)
		return false
	}
	// Full: the slot at next holds the oldest id.
	delete(d.seen, d.ring[d.next])
	d.ring[d.next] = id
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.seen)
	d.ring = d.ring[:0]
	d.next = 0
}
