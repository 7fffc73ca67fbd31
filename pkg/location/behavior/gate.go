package behavior

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ib-77/locchain/pkg/location/events"
)

// State is where a host-driven gate currently stands.
type State int32

const (
	StateIdle State = iota
	StatePending
	StateSatisfied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSatisfied:
		return "satisfied"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// waiter is the wait/resume protocol shared by every gate that needs the
// host to act: check the precondition, subscribe with a fresh token, ask the
// host, then wait for the one event answering that token.
type waiter[E events.Correlated] struct {
	name      string
	stream    *events.Dispatcher[E]
	satisfied func(ctx context.Context) bool
	request   func(ctx context.Context, token uuid.UUID) error
	evaluate  func(ctx context.Context, ev E) error
	state     atomic.Int32
	logger    *slog.Logger
}

func (w *waiter[E]) State() State {
	return State(w.state.Load())
}

func (w *waiter[E]) await(ctx context.Context) error {
	if w.satisfied(ctx) {
		w.state.Store(int32(StateSatisfied))
		return nil
	}

	token := uuid.New()
	// subscribe before asking so an immediate answer cannot be missed
	ch, unsubscribe := w.stream.Subscribe(token)
	defer unsubscribe()

	w.state.Store(int32(StatePending))
	w.logger.Debug("gate pending", "gate", w.name, "token", token)

	if err := w.request(ctx, token); err != nil {
		w.state.Store(int32(StateFailed))
		return fmt.Errorf("%s: ask host: %w", w.name, err)
	}

	select {
	case ev := <-ch:
		if err := w.evaluate(ctx, ev); err != nil {
			w.state.Store(int32(StateFailed))
			w.logger.Info("gate failed", "gate", w.name, "err", err)
			return err
		}
		w.state.Store(int32(StateSatisfied))
		return nil
	case <-ctx.Done():
		w.state.Store(int32(StateIdle))
		return ctx.Err()
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type Option func(*options)

type options struct {
	logger     *slog.Logger
	resolution string
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolution makes a settings gate ask the host to launch sender instead
// of the settings screen. Other gates ignore it.
func WithResolution(sender string) Option {
	return func(o *options) {
		o.resolution = sender
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: discardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
