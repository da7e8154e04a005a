package history

import (
	"sync"

	"github.com/incube-ai/incube-go/boomerang"
)

// DefaultCapacity bounds how many finished runs an InMemoryArchive retains
// before evicting the oldest.
const DefaultCapacity = 50

// InMemoryArchive is a volatile boomerang.Archive implementation storing
// finished run records in a process local slice. It is safe for concurrent
// access and best suited for a single client session; records do not survive
// the process. Returned slices are copies to prevent external mutation of
// internal state.
type InMemoryArchive struct {
	mu       sync.RWMutex
	capacity int
	records  []boomerang.RunRecord
}

// NewInMemoryArchive constructs an empty archive with DefaultCapacity.
func NewInMemoryArchive() *InMemoryArchive {
	return NewInMemoryArchiveWithCapacity(DefaultCapacity)
}

// NewInMemoryArchiveWithCapacity constructs an empty archive retaining at
// most capacity records. A capacity below one falls back to DefaultCapacity.
func NewInMemoryArchiveWithCapacity(capacity int) *InMemoryArchive {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &InMemoryArchive{capacity: capacity}
}

// Append stores a finished run record, evicting the oldest record when the
// archive is at capacity.
func (a *InMemoryArchive) Append(rec boomerang.RunRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	if len(a.records) > a.capacity {
		a.records = a.records[len(a.records)-a.capacity:]
	}
	return nil
}

// List returns all retained records, oldest first.
func (a *InMemoryArchive) List() []boomerang.RunRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]boomerang.RunRecord{}, a.records...)
}

// ByPerspective returns the retained records for one perspective, oldest
// first.
func (a *InMemoryArchive) ByPerspective(perspectiveID string) []boomerang.RunRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []boomerang.RunRecord
	for _, rec := range a.records {
		if rec.PerspectiveID == perspectiveID {
			out = append(out, rec)
		}
	}
	return out
}

// Latest returns the most recently appended record, if any.
func (a *InMemoryArchive) Latest() (boomerang.RunRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.records) == 0 {
		return boomerang.RunRecord{}, false
	}
	return a.records[len(a.records)-1], true
}

// Len reports how many records are retained.
func (a *InMemoryArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}
