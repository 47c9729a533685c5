package folder

import (
	"sync"
	"sync/atomic"

	"folio/internal/errs"
)

// Locked guards one Folder with a read/write lock.
type Locked struct {
	mu sync.RWMutex
	f  *Folder
}

// Read runs fn under the shared lock. fn must not mutate the folder.
func (l *Locked) Read(fn func(f *Folder) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.f)
}

// Write runs fn under the exclusive lock.
func (l *Locked) Write(fn func(f *Folder) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.f)
}

// Handle is the swappable, possibly empty reference to the current workspace folder.
// Swapping does not affect *Locked values already returned by Load.
type Handle struct {
	p atomic.Pointer[Locked]
}

func (h *Handle) Load() (*Locked, error) {
	l := h.p.Load()
	if l == nil {
		return nil, errs.ErrNotInitialized
	}
	return l, nil
}

func (h *Handle) Store(f *Folder) *Locked {
	l := &Locked{f: f}
	h.p.Store(l)
	return l
}

func (h *Handle) Clear() {
	h.p.Store(nil)
}
