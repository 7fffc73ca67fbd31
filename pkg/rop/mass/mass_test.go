package mass

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/locchain/pkg/rop"
)

func TestGo_YieldsOnceAndCloses(t *testing.T) {
	t.Parallel()

	ch := Go(context.Background(), func(ctx context.Context) rop.Result[int] { return rop.Success(4) })

	r, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, 4, r.Result())

	_, ok = <-ch
	assert.False(t, ok, "channel must close after the single result")
}

func TestGo_CancelledContextSkipsEngine(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	r := Await(Go(ctx, func(ctx context.Context) rop.Result[int] {
		called.Store(true)
		return rop.Success(1)
	}))

	assert.True(t, r.IsCancel())
	assert.False(t, called.Load())
}

func TestAwait_ClosedChannelIsCancel(t *testing.T) {
	t.Parallel()

	ch := make(chan rop.Result[int])
	close(ch)
	assert.True(t, Await(ch).IsCancel())
}

func TestThen_GateFailureShortCircuits(t *testing.T) {
	t.Parallel()

	var ran atomic.Int32
	next := Lift(func(ctx context.Context) rop.Result[int] {
		ran.Add(1)
		return rop.Success(7)
	})

	denied := errors.New("denied")
	r := Run(context.Background(), Then(Complete(func(ctx context.Context) error { return denied }), next))
	assert.ErrorIs(t, r.Err(), denied)
	assert.Zero(t, ran.Load())

	r = Run(context.Background(), Then(Complete(func(ctx context.Context) error { return nil }), next))
	assert.Equal(t, 7, r.Result())
	assert.Equal(t, int32(1), ran.Load())
}

func TestComplete_ContextErrorIsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	r := Run(ctx, Complete(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	assert.True(t, r.IsCancel())
}

func TestTransform_RunsOpOnce(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	op := Lift(func(ctx context.Context) rop.Result[int] {
		runs.Add(1)
		return rop.Fail[int](errors.New("x"))
	})

	r := Run(context.Background(), Transform(op, func(ctx context.Context, r rop.Result[int]) rop.Result[int] {
		return rop.Empty[int]()
	}))
	assert.True(t, r.IsEmpty())
	assert.Equal(t, int32(1), runs.Load())
}
