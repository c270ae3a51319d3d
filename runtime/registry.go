// Package runtime holds the live part of the relay: the connection
// registry, the message router and the per-connection session loop.
package runtime

import (
	"log/slog"
	"sync"

	"sign-relay/contract"
)

// Registry maps a user identifier to their single active sink.
// It is the only shared mutable state in the system and is always
// injected, never reached through a package-level variable.
type Registry struct {
	mu    sync.RWMutex
	log   *slog.Logger
	sinks map[string]contract.Sink
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, sinks: make(map[string]contract.Sink)}
}

// Register stores the mapping for userID, unconditionally overwriting any
// existing entry. The superseded sink is returned so the caller can close
// it; the registry itself never closes connections.
func (r *Registry) Register(userID string, sink contract.Sink) (contract.Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, existed := r.sinks[userID]
	r.sinks[userID] = sink
	if existed {
		r.log.Info("Connection replaced", "user", userID)
	}
	return previous, existed
}

// Deregister removes the mapping only if it still points at sink.
// A session that was replaced must not evict its replacement when it
// finally winds down.
func (r *Registry) Deregister(userID string, sink contract.Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sinks[userID]; ok && current == sink {
		delete(r.sinks, userID)
	}
}

func (r *Registry) Lookup(userID string) (contract.Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[userID]
	return sink, ok
}

// Send writes payload to the user's sink if one is registered.
// An absent receiver is a silent no-op: delivery is best-effort and
// nothing is queued for offline users.
func (r *Registry) Send(userID string, payload []byte) {
	sink, ok := r.Lookup(userID)
	if !ok {
		return
	}
	if err := sink.Deliver(payload); err != nil {
		r.log.Warn("Dropping frame for unreachable receiver", "user", userID, "error", err)
	}
}
