package discovery

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// deduplicator tracks paths seen during a discovery run using a Bloom
// filter with an exact map behind it for false positives.
type deduplicator struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

func newDeduplicator(estimatedItems int) *deduplicator {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}
	return &deduplicator{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add records a path. Returns true if the path was new.
func (d *deduplicator) Add(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.exact[path]; exists {
		return false
	}
	d.filter.AddString(path)
	d.exact[path] = struct{}{}
	return true
}

// HasSeen checks if a path has been recorded.
func (d *deduplicator) HasSeen(path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// Fast negative check, then exact check for false positives.
	if !d.filter.TestString(path) {
		return false
	}
	_, exists := d.exact[path]
	return exists
}

// Count returns the number of unique paths seen.
func (d *deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.exact)
}
