package behavior

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/suppress"
	"github.com/ib-77/locchain/pkg/rop/mass"
)

// Behavior customizes a location request. A behavior is a Gate, a Filter or
// both.
type Behavior interface {
	Name() string
}

// Gate is a precondition that must resolve before the wrapped operation
// starts. A non-nil error fails the operation without running it.
type Gate interface {
	Behavior
	Await(ctx context.Context) error
}

// Filter rewrites failures of everything that follows it into empty results.
type Filter interface {
	Behavior
	Suppresses(err error) bool
}

// Apply wraps op with behaviors in the order given: the first gate resolves
// before the second, the last gate before op itself, and a filter covers the
// gates and op that follow it.
func Apply[T any](op mass.Op[T], behaviors ...Behavior) mass.Op[T] {
	for i := len(behaviors) - 1; i >= 0; i-- {
		b := behaviors[i]
		if g, ok := b.(Gate); ok {
			op = mass.Then(mass.Complete(g.Await), op)
		}
		if f, ok := b.(Filter); ok {
			op = suppress.When(op, f.Suppresses)
		}
	}
	return op
}

type ignoreErrors struct {
	kinds location.KindSet
}

// IgnoreErrors is a filter for the given kinds; with no kinds it swallows
// every failure.
func IgnoreErrors(kinds ...location.Kind) Filter {
	return ignoreErrors{kinds: location.Kinds(kinds...)}
}

func (ignoreErrors) Name() string { return "ignore-errors" }

func (b ignoreErrors) Suppresses(err error) bool { return b.kinds.Matches(err) }

type throttle struct {
	limiter *rate.Limiter
}

// Throttle is a gate that waits for a token from limiter, spacing out
// requests that reach the backend.
func Throttle(limiter *rate.Limiter) Gate {
	return throttle{limiter: limiter}
}

func (throttle) Name() string { return "throttle" }

func (b throttle) Await(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
