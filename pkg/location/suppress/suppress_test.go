package suppress

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/rop"
	"github.com/ib-77/locchain/pkg/rop/mass"
)

func failing(err error, runs *atomic.Int32) mass.Op[location.Position] {
	return mass.Lift(func(ctx context.Context) rop.Result[location.Position] {
		runs.Add(1)
		return rop.Fail[location.Position](err)
	})
}

func TestMaybe_OnlyListedKinds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var runs atomic.Int32

	r := mass.Run(ctx, Maybe(failing(location.Ignorable(errors.New("x")), &runs), location.KindIgnorable))
	assert.True(t, r.IsEmpty())

	r = mass.Run(ctx, Maybe(failing(location.Timeout("gps"), &runs), location.KindIgnorable))
	assert.True(t, r.IsFailure())
	assert.Equal(t, location.KindTimeout, location.KindOf(r.Err()))

	plain := errors.New("plain")
	r = mass.Run(ctx, Maybe(failing(plain, &runs), location.KindIgnorable))
	assert.ErrorIs(t, r.Err(), plain)

	assert.Equal(t, int32(3), runs.Load(), "suppression must never re-run the operation")
}

func TestMaybe_NoKindsSuppressesEverything(t *testing.T) {
	t.Parallel()
	var runs atomic.Int32

	r := mass.Run(context.Background(), Maybe(failing(errors.New("anything"), &runs)))
	assert.True(t, r.IsEmpty())
}

func TestMaybe_LeavesSuccessAndCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := location.Position{Provider: "gps"}

	r := mass.Run(ctx, Maybe(resolved(rop.Success(p))))
	assert.Equal(t, p, r.Result())

	r = mass.Run(ctx, Maybe(resolved(rop.Cancel[location.Position](context.Canceled))))
	assert.True(t, r.IsCancel())
}

func TestSingle_MarksIgnorable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var runs atomic.Int32

	r := mass.Run(ctx, Single(failing(location.ProviderDisabled("gps"), &runs), location.KindProviderDisabled))
	assert.True(t, r.IsFailure())
	assert.Equal(t, location.KindIgnorable, location.KindOf(r.Err()))

	r = mass.Run(ctx, DropIgnorable(Single(failing(location.ProviderDisabled("gps"), &runs))))
	assert.True(t, r.IsEmpty())
}

func TestCompletable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	denied := location.PermissionDenied([]string{"fine"})

	r := mass.Run(ctx, Completable(mass.Complete(func(ctx context.Context) error { return denied }), location.KindPermissionDenied))
	assert.True(t, r.IsSuccess())

	r = mass.Run(ctx, Completable(mass.Complete(func(ctx context.Context) error { return denied }), location.KindTimeout))
	assert.True(t, r.IsFailure())
}

func resolved[T any](r rop.Result[T]) mass.Op[T] {
	return mass.Lift(func(context.Context) rop.Result[T] { return r })
}
