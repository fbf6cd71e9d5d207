package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks in-flight correction loops for explicit
// cancellation and duplicate rejection. It maps correlation IDs to their
// cancel functions, allowing a DELETE request to cancel a loop that is
// still running and a second POST with the same correlation ID to be
// rejected instead of racing the first.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[string]context.CancelFunc),
	}
}

// Register adds an in-flight loop to the registry. Returns false without
// registering when the correlation ID is already in flight.
func (r *InFlightRegistry) Register(id string, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = cancel
	return true
}

// Cancel cancels an in-flight loop by calling its cancel function.
// Returns true if the loop was found and cancelled, false if the ID
// was not registered (either already completed or never existed).
func (r *InFlightRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.entries[id]
	if !ok {
		return false
	}
	cancel()
	delete(r.entries, id)
	return true
}

// Remove removes a loop from the registry without cancelling it.
// Called when a loop completes normally.
func (r *InFlightRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}
