// Package registry holds the in-flight tasks shared between the download
// engines and the status helpers.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mirrorbot/mirrorbot/internal/mirror"
)

// ErrExists is returned when a gid is already registered.
var ErrExists = errors.New("task already registered")

// Registry is a mutex-guarded gid -> Handle map that remembers insertion order.
type Registry struct {
	mu      sync.Mutex
	order   []string
	handles map[string]mirror.Handle
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		handles: make(map[string]mirror.Handle),
	}
}

// Add registers h under its gid.
func (r *Registry) Add(h mirror.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gid := h.GID()
	if _, exists := r.handles[gid]; exists {
		return fmt.Errorf("%w: %s", ErrExists, gid)
	}
	r.handles[gid] = h
	r.order = append(r.order, gid)
	return nil
}

// Put registers h, replacing any task with the same gid in place.
func (r *Registry) Put(h mirror.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gid := h.GID()
	if _, exists := r.handles[gid]; !exists {
		r.order = append(r.order, gid)
	}
	r.handles[gid] = h
}

// Remove deletes the task with the given gid.
// Returns true if the task existed.
func (r *Registry) Remove(gid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[gid]; !ok {
		return false
	}
	delete(r.handles, gid)
	for i, id := range r.order {
		if id == gid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Snapshot returns the registered tasks in insertion order.
func (r *Registry) Snapshot() []mirror.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// View calls fn with the tasks in insertion order while holding the lock.
// Add, Put and Remove block until fn returns; fn must not call back into r.
func (r *Registry) View(fn func(handles []mirror.Handle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.snapshotLocked())
}

func (r *Registry) snapshotLocked() []mirror.Handle {
	out := make([]mirror.Handle, 0, len(r.order))
	for _, gid := range r.order {
		out = append(out, r.handles[gid])
	}
	return out
}
