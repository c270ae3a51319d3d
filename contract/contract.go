package contract

import (
	"context"
	"reflect"
)

// Sink is a live outbound channel to one connected user.
// Deliver must never block the caller; a sink that cannot keep up
// drops frames rather than stalling the router.
type Sink interface {
	Deliver(payload []byte) error
	Close()
}

// IRegistry is the single source of truth for "is this user reachable now".
type IRegistry interface {
	// Register stores the mapping, overwriting any existing entry.
	// The superseded sink, if any, is returned so the caller can close it.
	Register(userID string, sink Sink) (Sink, bool)
	// Deregister removes the mapping only if it still points at sink.
	Deregister(userID string, sink Sink)
	Lookup(userID string) (Sink, bool)
	// Send writes payload to the user's sink if one is registered.
	// An unreachable receiver is a silent no-op, not an error.
	Send(userID string, payload []byte)
}

// Worker doesn't protect itself. Can be silly, focused.
// The supervisor owns panic recovery and restarts.
type Worker interface {
	Run(ctx context.Context) error
}

// ISupervisor runs workers, survives their panics and restarts them.
type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
