package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeBound(t *testing.T) {
	t.Parallel()

	assert.True(t, TimeBound{}.IsZero())
	assert.Equal(t, 30*time.Minute, Within(30, time.Minute).Duration())
	assert.Equal(t, 15*time.Second, Bound(15*time.Second).Duration())
	assert.True(t, Bound(0).IsZero())
	assert.Equal(t, "none", TimeBound{}.String())

	huge := Within(math.MaxInt64/1000, time.Hour)
	assert.Equal(t, time.Duration(math.MaxInt64), huge.Duration(), "overflow saturates")
	assert.Greater(t, huge.Duration(), Within(1, time.Hour).Duration())
	assert.Equal(t, time.Duration(math.MaxInt64), Within(math.MaxInt64, time.Nanosecond).Duration())
}

func TestPosition_IsStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Position{Provider: "network", Time: now.Add(-2 * time.Minute)}

	assert.True(t, p.IsStale(Within(1, time.Minute), now))
	assert.False(t, p.IsStale(Within(5, time.Minute), now))
	assert.False(t, p.IsStale(TimeBound{}, now), "zero bound never makes a fix stale")
	assert.False(t, p.IsStale(Within(2, time.Minute), now), "age equal to the bound is not stale")
	assert.False(t, p.IsStale(Within(math.MaxInt64/1000, time.Hour), now), "a huge bound is never stricter")
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindProviderDisabled, KindOf(ProviderDisabled("gps")))
	assert.Equal(t, KindResultTooOld, KindOf(fmt.Errorf("wrap: %w", ResultTooOld(Position{Provider: "gps"}))))
	assert.Equal(t, KindTimeout, KindOf(Timeout("gps")))
	assert.Equal(t, KindCancelled, KindOf(context.Canceled))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.True(t, IsKind(PermissionDenied([]string{"fine"}), KindPermissionDenied))
}

func TestKindSet_Matches(t *testing.T) {
	t.Parallel()

	all := Kinds()
	assert.True(t, all.IsEmpty())
	assert.True(t, all.Matches(errors.New("anything")))
	assert.False(t, all.Matches(nil))

	only := Kinds(KindIgnorable)
	assert.True(t, only.Matches(Ignorable(errors.New("x"))))
	assert.False(t, only.Matches(Timeout("gps")))
	assert.False(t, only.Matches(errors.New("plain")))
}

func TestParseKind_RoundTrip(t *testing.T) {
	t.Parallel()

	for k := KindUnknown; k <= KindCancelled; k++ {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("nope")
	assert.Error(t, err)
}

func TestError_Messages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "the gps provider is disabled", ProviderDisabled("gps").Error())
	assert.Equal(t, "user denied permissions: [fine]", PermissionDenied([]string{"fine"}).Error())

	inner := errors.New("backend down")
	wrapped := &Error{Kind: KindUnknown, Err: inner}
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "backend down", wrapped.Error())
}
