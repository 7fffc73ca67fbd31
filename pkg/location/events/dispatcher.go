package events

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Correlated is an event that names the request it answers.
type Correlated interface {
	Token() uuid.UUID
}

type waiter[E Correlated] struct {
	id uint64
	ch chan E
}

// Dispatcher routes each delivered event to the waiter that subscribed with
// the same token. An event carrying uuid.Nil is broadcast to every pending
// waiter, for hosts that cannot echo a token back. Events for unknown tokens
// are dropped.
type Dispatcher[E Correlated] struct {
	name    string
	mu      sync.Mutex
	waiters map[uuid.UUID][]waiter[E]
	nextID  uint64
	logger  *slog.Logger
}

func NewDispatcher[E Correlated](name string, logger *slog.Logger) *Dispatcher[E] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher[E]{
		name:    name,
		waiters: make(map[uuid.UUID][]waiter[E]),
		logger:  logger,
	}
}

// Subscribe registers a waiter for token. The returned channel receives at
// most one event. The unsubscribe function is idempotent and must be called
// on every exit path.
func (d *Dispatcher[E]) Subscribe(token uuid.UUID) (<-chan E, func()) {
	d.mu.Lock()
	d.nextID++
	w := waiter[E]{id: d.nextID, ch: make(chan E, 1)}
	d.waiters[token] = append(d.waiters[token], w)
	d.mu.Unlock()

	var once sync.Once
	return w.ch, func() {
		once.Do(func() { d.remove(token, w.id) })
	}
}

func (d *Dispatcher[E]) remove(token uuid.UUID, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ws := d.waiters[token]
	for i, w := range ws {
		if w.id == id {
			ws = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(ws) == 0 {
		delete(d.waiters, token)
		return
	}
	d.waiters[token] = ws
}

// Deliver hands ev to the matching waiters and reports how many received it.
// A waiter receives only the first event routed to it and is then detached.
func (d *Dispatcher[E]) Deliver(ev E) int {
	token := ev.Token()

	d.mu.Lock()
	var targets []waiter[E]
	if token == uuid.Nil {
		for t, ws := range d.waiters {
			targets = append(targets, ws...)
			delete(d.waiters, t)
		}
	} else {
		targets = d.waiters[token]
		delete(d.waiters, token)
	}
	d.mu.Unlock()

	for _, w := range targets {
		w.ch <- ev
	}

	if len(targets) == 0 {
		d.logger.Warn("dropping uncorrelated event", "stream", d.name, "token", token)
	}
	return len(targets)
}

// Pending is the number of registered waiters.
func (d *Dispatcher[E]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, ws := range d.waiters {
		n += len(ws)
	}
	return n
}
