package mass

import (
	"context"

	"github.com/ib-77/locchain/pkg/rop"
)

// Op is a deferred asynchronous operation. Calling it starts the work and
// returns a channel that yields exactly one result and then closes.
//
// An Op must resolve promptly once ctx is done, and must have released every
// resource it acquired (listeners, subscriptions, timers) before its result
// is sent.
type Op[T any] func(ctx context.Context) <-chan rop.Result[T]

// Completable is an Op that only signals completion or failure.
type Completable = Op[struct{}]

// Go runs engine on its own goroutine. The engine owns cancellation: it is
// expected to watch ctx and return a cancel result when ctx is done.
func Go[T any](ctx context.Context, engine func(ctx context.Context) rop.Result[T]) <-chan rop.Result[T] {
	out := make(chan rop.Result[T], 1)

	go func() {
		defer close(out)

		if ctx.Err() != nil {
			out <- rop.Cancel[T](ctx.Err())
			return
		}
		out <- engine(ctx)
	}()

	return out
}

// Lift turns a blocking engine into an Op.
func Lift[T any](engine func(ctx context.Context) rop.Result[T]) Op[T] {
	return func(ctx context.Context) <-chan rop.Result[T] {
		return Go(ctx, engine)
	}
}

// Await blocks until ch yields. A channel closed without a value reads as a
// cancellation.
func Await[T any](ch <-chan rop.Result[T]) rop.Result[T] {
	r, ok := <-ch
	if !ok {
		return rop.Cancel[T](context.Canceled)
	}
	return r
}

// Run starts op and waits for its result.
func Run[T any](ctx context.Context, op Op[T]) rop.Result[T] {
	return Await(op(ctx))
}

// Then runs gate to completion and, only if it succeeded or completed empty,
// starts next. A failed or cancelled gate short-circuits and next never runs.
func Then[T any](gate Completable, next Op[T]) Op[T] {
	return Lift(func(ctx context.Context) rop.Result[T] {
		g := Run(ctx, gate)
		if g.IsFailure() {
			return rop.From[struct{}, T](g)
		}
		if ctx.Err() != nil {
			return rop.Cancel[T](ctx.Err())
		}
		return Run(ctx, next)
	})
}

// Transform applies f to op's result once it is available. It never re-runs op.
func Transform[T any](op Op[T], f func(ctx context.Context, r rop.Result[T]) rop.Result[T]) Op[T] {
	return Lift(func(ctx context.Context) rop.Result[T] {
		return f(ctx, Run(ctx, op))
	})
}

// Complete adapts a blocking check into a Completable: nil means done.
func Complete(check func(ctx context.Context) error) Completable {
	return Lift(func(ctx context.Context) rop.Result[struct{}] {
		if err := check(ctx); err != nil {
			return rop.FromError[struct{}](err)
		}
		return rop.Success(struct{}{})
	})
}
