package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/simsource"
)

func TestBreakerPassesThrough(t *testing.T) {
	src := simsource.New()
	want := location.Position{Provider: "network", Latitude: 1, Longitude: 2, Time: time.Now()}
	src.SetLast(want)
	src.SetEnabled("network", true)

	b := Wrap(src, "sim", Config{}, nil)

	pos, ok, err := b.LastPosition(context.Background(), "network")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, pos)
	assert.True(t, b.IsProviderEnabled("network"))

	sub, err := b.RequestSingleUpdate("network", location.Listener{})
	require.NoError(t, err)
	assert.Equal(t, 1, src.Active())
	b.RemoveUpdates(sub)
	assert.Zero(t, src.Active())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	src := simsource.New()
	boom := errors.New("backend down")
	src.SetLastError("network", boom)

	b := Wrap(src, "sim", Config{MaxFailures: 3, Timeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, _, err := b.LastPosition(context.Background(), "network")
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	src.SetLast(location.Position{Provider: "network"})
	_, _, err := b.LastPosition(context.Background(), "network")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "circuit open")
}

func TestBreakerIgnoresMissingFix(t *testing.T) {
	src := simsource.New()
	src.SetLastError("gps", location.NoLastResult("gps"))

	b := Wrap(src, "sim", Config{MaxFailures: 2}, nil)
	for i := 0; i < 5; i++ {
		_, _, err := b.LastPosition(context.Background(), "gps")
		assert.True(t, location.IsKind(err, location.KindNoLastResult))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	src := simsource.New()
	src.SetLastError("gps", context.Canceled)

	b := Wrap(src, "sim", Config{MaxFailures: 1}, nil)
	_, _, err := b.LastPosition(context.Background(), "gps")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
