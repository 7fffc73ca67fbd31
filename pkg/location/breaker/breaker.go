// Package breaker guards a location.Source with circuit breakers so a
// failing backend is not hammered by every chain entry.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/rop"
)

const (
	defaultMaxFailures uint32        = 5
	defaultTimeout     time.Duration = 30 * time.Second
	defaultInterval    time.Duration = 60 * time.Second
)

type Config struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is let through.
	Timeout time.Duration `yaml:"timeout"`
	// Interval clears failure counts while closed. Zero keeps them until the
	// circuit opens.
	Interval time.Duration `yaml:"interval"`
}

type fix struct {
	pos location.Position
	ok  bool
}

// Source is a location.Source whose backend calls go through breakers.
// Listener callbacks are not guarded: once registered, a request belongs to
// the backend.
type Source struct {
	inner    location.Source
	last     *gobreaker.CircuitBreaker[fix]
	register *gobreaker.CircuitBreaker[location.Subscription]
	logger   *slog.Logger
}

var _ location.Source = (*Source)(nil)

// Wrap guards inner. Zero fields of cfg take defaults.
func Wrap(inner location.Source, name string, cfg Config, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}

	return &Source{
		inner:    inner,
		last:     gobreaker.NewCircuitBreaker[fix](settings("last:"+name, cfg, logger)),
		register: gobreaker.NewCircuitBreaker[location.Subscription](settings("register:"+name, cfg, logger)),
		logger:   logger,
	}
}

func settings(name string, cfg Config, logger *slog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: healthy,
	}
}

// healthy reports errors that say nothing about the backend's health.
func healthy(err error) bool {
	return err == nil ||
		location.IsKind(err, location.KindNoLastResult) ||
		rop.IsCancellationError(err)
}

func (s *Source) IsProviderEnabled(provider string) bool {
	return s.inner.IsProviderEnabled(provider)
}

func (s *Source) LastPosition(ctx context.Context, provider string) (location.Position, bool, error) {
	f, err := s.last.Execute(func() (fix, error) {
		pos, ok, err := s.inner.LastPosition(ctx, provider)
		return fix{pos: pos, ok: ok}, err
	})
	if err != nil {
		return location.Position{}, false, circuitErr(provider, err)
	}
	return f.pos, f.ok, nil
}

func (s *Source) RequestSingleUpdate(provider string, l location.Listener) (location.Subscription, error) {
	sub, err := s.register.Execute(func() (location.Subscription, error) {
		return s.inner.RequestSingleUpdate(provider, l)
	})
	if err != nil {
		return 0, circuitErr(provider, err)
	}
	return sub, nil
}

func (s *Source) RemoveUpdates(sub location.Subscription) {
	s.inner.RemoveUpdates(sub)
}

// State reports the state of the last-position breaker.
func (s *Source) State() gobreaker.State {
	return s.last.State()
}

func circuitErr(provider string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("provider %q circuit open: %w", provider, err)
	}
	return err
}
