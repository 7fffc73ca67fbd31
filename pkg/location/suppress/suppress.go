package suppress

import (
	"context"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/rop"
	"github.com/ib-77/locchain/pkg/rop/mass"
	"github.com/ib-77/locchain/pkg/rop/solo"
)

// Maybe rewrites failures of the given kinds into an empty result. With no
// kinds every failure is rewritten. Cancellations are never touched.
func Maybe[T any](op mass.Op[T], kinds ...location.Kind) mass.Op[T] {
	return When(op, location.Kinds(kinds...).Matches)
}

// When is Maybe driven by an arbitrary predicate.
func When[T any](op mass.Op[T], match func(err error) bool) mass.Op[T] {
	return mass.Transform(op, func(ctx context.Context, r rop.Result[T]) rop.Result[T] {
		return solo.Recover(ctx, r, func(ctx context.Context, err error) rop.Result[T] {
			if match(err) {
				return rop.Empty[T]()
			}
			return r
		})
	})
}

// Single is Maybe for operations that must yield a value: a matching failure
// becomes a KindIgnorable failure instead of an empty result. DropIgnorable
// at the caller boundary turns it into empty.
func Single[T any](op mass.Op[T], kinds ...location.Kind) mass.Op[T] {
	set := location.Kinds(kinds...)
	return mass.Transform(op, func(ctx context.Context, r rop.Result[T]) rop.Result[T] {
		return solo.Recover(ctx, r, func(ctx context.Context, err error) rop.Result[T] {
			if set.Matches(err) && !location.IsKind(err, location.KindIgnorable) {
				return rop.Fail[T](location.Ignorable(err))
			}
			return r
		})
	})
}

// Completable rewrites matching failures of a fire-and-forget operation into
// completion.
func Completable(op mass.Completable, kinds ...location.Kind) mass.Completable {
	set := location.Kinds(kinds...)
	return mass.Transform(op, func(ctx context.Context, r rop.Result[struct{}]) rop.Result[struct{}] {
		return solo.Recover(ctx, r, func(ctx context.Context, err error) rop.Result[struct{}] {
			if set.Matches(err) {
				return rop.Success(struct{}{})
			}
			return r
		})
	})
}

// DropIgnorable turns KindIgnorable failures into empty results so they never
// reach a caller.
func DropIgnorable[T any](op mass.Op[T]) mass.Op[T] {
	return Maybe(op, location.KindIgnorable)
}
