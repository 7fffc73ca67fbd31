package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/locchain/internal/config"
	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/chain"
)

func fastConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Simulation.AnswerDelay = time.Millisecond
	for i := range cfg.Simulation.Providers {
		if live := cfg.Simulation.Providers[i].Live; live != nil {
			live.Delay = 5 * time.Millisecond
		}
	}
	return cfg
}

func TestRunDefaultChainWalksThroughGates(t *testing.T) {
	a, err := New(fastConfig(), nil)
	require.NoError(t, err)

	r, err := a.Run(context.Background())
	require.NoError(t, err)
	require.True(t, r.IsSuccess(), r.String())
	assert.Equal(t, "gps", r.Result().Provider)

	prompts := a.Host().Prompts()
	require.Len(t, prompts, 2, "permission then settings")
	assert.Equal(t, []string{"ACCESS_FINE_LOCATION"}, prompts[0].Permissions)
	require.NotNil(t, prompts[1].Settings)
	assert.Equal(t, []string{"gps"}, prompts[1].Settings.Providers)
}

func TestRunDeniedPermissionFailsChain(t *testing.T) {
	cfg := fastConfig()
	cfg.Simulation.Permissions = "deny"
	a, err := New(cfg, nil)
	require.NoError(t, err)

	r, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, location.KindPermissionDenied, location.KindOf(r.Err()))
}

func TestRunIgnoredDenialFallsThrough(t *testing.T) {
	cfg := fastConfig()
	cfg.Simulation.Permissions = "deny"
	cfg.Chain.Entries = []config.EntryConfig{
		{Type: config.EntryLiveRequest, Provider: "gps", Bound: time.Second,
			Behaviors: []string{"ignore:permission_denied", "permission"}},
	}
	cfg.Chain.Default = &config.PositionConfig{Provider: "home", Latitude: 1, Longitude: 2}
	a, err := New(cfg, nil)
	require.NoError(t, err)

	r, err := a.Run(context.Background())
	require.NoError(t, err)
	require.True(t, r.IsSuccess())
	assert.Equal(t, "home", r.Result().Provider)
}

func TestChainMirrorsConfig(t *testing.T) {
	a, err := New(fastConfig(), nil)
	require.NoError(t, err)

	b, err := a.Chain()
	require.NoError(t, err)

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, chain.LastResult, entries[0].Kind)
	assert.Equal(t, 30*time.Minute, entries[0].Bound.Duration())
	assert.Equal(t, []string{"permission", "settings"}, entries[1].Behaviors)
	_, ok := b.Default()
	assert.False(t, ok)
}

func TestLastAndRequest(t *testing.T) {
	a, err := New(fastConfig(), nil)
	require.NoError(t, err)

	r, err := a.Last(context.Background(), "network", time.Hour, nil)
	require.NoError(t, err)
	assert.True(t, r.IsSuccess())

	r, err = a.Last(context.Background(), "network", time.Minute, []string{"ignore:result_too_old"})
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	r, err = a.Request(context.Background(), "network", time.Second, []string{"throttle"})
	require.NoError(t, err)
	assert.True(t, r.IsSuccess())

	_, err = a.Request(context.Background(), "network", time.Second, []string{"teleport"})
	assert.ErrorIs(t, err, config.ErrUnknownBehavior)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.Chain.Entries = nil
	_, err := New(cfg, nil)
	assert.Error(t, err)
}
