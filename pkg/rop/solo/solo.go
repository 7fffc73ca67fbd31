package solo

import (
	"context"

	"github.com/ib-77/locchain/pkg/rop"
)

// Tee runs a side effect on a successful input and returns the input as is.
func Tee[T any](ctx context.Context,
	input rop.Result[T],
	onSuccess func(ctx context.Context, r T)) rop.Result[T] {

	if input.IsSuccess() {
		onSuccess(ctx, input.Result())
	}

	return input
}

// FailOnError turns a successful input into a failure when maybeErr reports
// one. Empty and failed inputs pass through untouched.
func FailOnError[T any](ctx context.Context, input rop.Result[T],
	maybeErr func(ctx context.Context, in T) error) rop.Result[T] {
	if input.IsSuccess() {
		if err := maybeErr(ctx, input.Result()); err != nil {
			return rop.Fail[T](err)
		}
	}
	return input
}

// Recover hands a failed (not cancelled) input to onError, which may replace
// it with any other result.
func Recover[T any](ctx context.Context, input rop.Result[T],
	onError func(ctx context.Context, err error) rop.Result[T]) rop.Result[T] {

	if input.IsFailure() && !input.IsCancel() {
		return onError(ctx, input.Err())
	}
	return input
}

// DefaultIfEmpty replaces an empty input with a success holding defaultV.
func DefaultIfEmpty[T any](input rop.Result[T], defaultV T) rop.Result[T] {
	if input.IsEmpty() {
		return rop.Success(defaultV)
	}
	return input
}

type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, r In) Out
	OnEmpty   func(ctx context.Context) Out
	OnError   func(ctx context.Context, err error) Out
	OnCancel  func(ctx context.Context, err error) Out
}

// Finally collapses the input into a concrete value. A nil OnCancel falls
// back to OnError.
func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	handlers FinallyHandlers[In, Out]) Out {

	switch {
	case input.IsSuccess():
		return handlers.OnSuccess(ctx, input.Result())
	case input.IsCancel() && handlers.OnCancel != nil:
		return handlers.OnCancel(ctx, input.Err())
	case input.IsFailure():
		return handlers.OnError(ctx, input.Err())
	default:
		return handlers.OnEmpty(ctx)
	}
}
