package rop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type state uint8

const (
	stateEmpty state = iota
	stateSuccess
	stateFail
	stateCancel
)

// Result is a railway value: exactly one of success (with a value), empty
// (completed without a value), failure or cancel (both with an error).
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	state     state
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		state:     stateSuccess,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// Empty is a completed result that carries neither a value nor an error.
func Empty[T any]() Result[T] {
	return Result[T]{
		state:     stateEmpty,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		state:     stateFail,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		state:     stateCancel,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// From carries an unsuccessful result over to another value type, keeping its
// id, creation time, state and error. A successful input becomes empty.
func From[In, Out any](from Result[In]) Result[Out] {
	out := Result[Out]{
		err:       from.err,
		state:     from.state,
		createdAt: from.createdAt,
		id:        from.id,
	}
	if out.state == stateSuccess {
		out.state = stateEmpty
	}
	return out
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.state == stateSuccess
}

func (r Result[T]) IsCancel() bool {
	return r.state == stateCancel
}

// IsFailure reports a failed or cancelled result.
func (r Result[T]) IsFailure() bool {
	return r.state == stateFail || r.state == stateCancel
}

func (r Result[T]) IsEmpty() bool {
	return r.state == stateEmpty
}

func (r Result[T]) HasResult() bool {
	return r.state == stateSuccess
}

// Get unpacks the result in the usual Go shape: the value and ok on success,
// ok=false with a nil error when empty, the error otherwise.
func (r Result[T]) Get() (T, bool, error) {
	return r.result, r.state == stateSuccess, r.err
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}

func (r Result[T]) String() string {
	switch r.state {
	case stateSuccess:
		return "success"
	case stateFail:
		return fmt.Sprintf("fail: %v", r.err)
	case stateCancel:
		return fmt.Sprintf("cancel: %v", r.err)
	default:
		return "empty"
	}
}
