package location

import "context"

// Subscription identifies a listener registered with a Source.
type Subscription uint64

// Listener receives the outcome of a single-update request. A Source calls at
// most one of the callbacks per registration that matters to the engine; the
// engine tolerates extra calls.
type Listener struct {
	OnPosition         func(Position)
	OnProviderDisabled func(provider string)
}

// Source is the location backend. It is implemented outside this module,
// except for the in-memory simsource used by tests and the demo CLI.
type Source interface {
	IsProviderEnabled(provider string) bool
	// LastPosition returns the most recent cached fix. ok is false when the
	// provider has none; that is not an error.
	LastPosition(ctx context.Context, provider string) (pos Position, ok bool, err error)
	// RequestSingleUpdate registers l for the next fix from provider.
	RequestSingleUpdate(provider string, l Listener) (Subscription, error)
	// RemoveUpdates deregisters a listener. After it returns no callback of
	// that registration may run.
	RemoveUpdates(sub Subscription)
}
