// Package registry abstracts the connected-client map used by the live
// push channel. The socket front-end owns the connection lifecycle; the
// dispatcher only asks "is this user online?" and fires a payload at them.
package registry

import (
	"context"
	"sync"
)

// Registry is the dispatcher's view of live connections. Push is
// best-effort: a failure means the user reads the persisted notification
// later, nothing retries.
type Registry interface {
	// Lookup reports whether the user currently has a live connection.
	Lookup(ctx context.Context, userID int64) (bool, error)

	// Push delivers an event payload to the user's live connection.
	Push(ctx context.Context, userID int64, event string, payload any) error
}

// PushFunc receives events for one in-memory connection.
type PushFunc func(event string, payload any) error

// MemoryRegistry is a mutex-guarded connection map for single-node
// deployments and tests. Connect/Disconnect are called by the connection
// lifecycle; the dispatcher only reads.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[int64]PushFunc
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[int64]PushFunc)}
}

// Connect registers a live connection for a user, replacing any previous one.
func (r *MemoryRegistry) Connect(userID int64, push PushFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = push
}

// Disconnect removes the user's connection.
func (r *MemoryRegistry) Disconnect(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
}

func (r *MemoryRegistry) Lookup(_ context.Context, userID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok, nil
}

func (r *MemoryRegistry) Push(_ context.Context, userID int64, event string, payload any) error {
	r.mu.RLock()
	push, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	return push(event, payload)
}
