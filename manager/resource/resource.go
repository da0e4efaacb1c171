// Package resource provides the handle table that maps guest-visible
// integer handles to host-owned resources.
package resource

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrUnknownHandle = errors.New("unknown handle")
	ErrReleased      = errors.New("handle already released")
)

// DefaultTombstones is the number of released handles remembered when
// NewManager is given a non-positive size.
const DefaultTombstones = 1024

// Manager is a thread-safe handle table for resources of type T.
// Handles start at 1; 0 is never handed out.
type Manager[T any] struct {
	mu         sync.RWMutex
	handles    map[uint32]T
	nextID     uint32
	destructor func(T)

	// released remembers recently removed handles so a late call can be told
	// apart from a handle that never existed.
	released *lru.Cache[uint32, struct{}]
}

// NewManager creates a handle table. destructor, if not nil, runs once for
// every resource leaving the table through Remove or Close.
func NewManager[T any](destructor func(T), tombstones int) *Manager[T] {
	if tombstones <= 0 {
		tombstones = DefaultTombstones
	}
	released, _ := lru.New[uint32, struct{}](tombstones)
	return &Manager[T]{
		handles:    make(map[uint32]T),
		destructor: destructor,
		released:   released,
	}
}

// Add stores a resource and returns its handle.
func (m *Manager[T]) Add(resource T) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		m.nextID++
		if m.nextID == 0 {
			continue
		}
		if _, taken := m.handles[m.nextID]; !taken {
			break
		}
	}
	m.handles[m.nextID] = resource
	m.released.Remove(m.nextID)
	return m.nextID
}

// Get looks up a handle. It fails with ErrReleased for handles that were
// removed recently and ErrUnknownHandle otherwise.
func (m *Manager[T]) Get(handle uint32) (T, error) {
	m.mu.RLock()
	res, ok := m.handles[handle]
	m.mu.RUnlock()
	if ok {
		return res, nil
	}
	var zero T
	if m.released.Contains(handle) {
		return zero, ErrReleased
	}
	return zero, ErrUnknownHandle
}

// Remove drops a handle and runs the destructor on its resource.
// It reports whether the handle was present.
func (m *Manager[T]) Remove(handle uint32) bool {
	m.mu.Lock()
	res, ok := m.handles[handle]
	if ok {
		delete(m.handles, handle)
		m.released.Add(handle, struct{}{})
	}
	m.mu.Unlock()

	if ok && m.destructor != nil {
		m.destructor(res)
	}
	return ok
}

// Len returns the number of live handles.
func (m *Manager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

// Range calls f for each live handle until f returns false.
func (m *Manager[T]) Range(f func(handle uint32, resource T) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for handle, resource := range m.handles {
		if !f(handle, resource) {
			break
		}
	}
}

// Close removes every handle, running the destructor on each resource.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	handles := m.handles
	m.handles = make(map[uint32]T)
	for handle := range handles {
		m.released.Add(handle, struct{}{})
	}
	m.mu.Unlock()

	if m.destructor == nil {
		return
	}
	for _, res := range handles {
		m.destructor(res)
	}
}
