package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/behavior"
	"github.com/ib-77/locchain/pkg/location/suppress"
	"github.com/ib-77/locchain/pkg/rop"
	"github.com/ib-77/locchain/pkg/rop/mass"
	"github.com/ib-77/locchain/pkg/rop/solo"
)

// Manager performs single-provider requests against a location.Source.
type Manager struct {
	source location.Source
	now    location.Clock
	logger *slog.Logger
}

type Option func(*Manager)

func WithClock(now location.Clock) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func New(source location.Source, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Source() location.Source { return m.source }

func (m *Manager) Now() time.Time { return m.now() }

// LastResult fetches the cached fix of provider. No cached fix yields an
// empty result. A fix older than staleBound fails with KindResultTooOld.
func (m *Manager) LastResult(provider string, staleBound location.TimeBound) mass.Op[location.Position] {
	return mass.Lift(func(ctx context.Context) rop.Result[location.Position] {
		pos, ok, err := m.source.LastPosition(ctx, provider)
		switch {
		case location.IsKind(err, location.KindNoLastResult):
			return rop.Empty[location.Position]()
		case err != nil:
			return rop.FromError[location.Position](fmt.Errorf("last position of %s: %w", provider, err))
		case !ok:
			m.logger.Debug("no last position", "provider", provider)
			return rop.Empty[location.Position]()
		}

		return solo.FailOnError(ctx, rop.Success(pos), func(ctx context.Context, p location.Position) error {
			if p.IsStale(staleBound, m.now()) {
				m.logger.Debug("last position too old", "provider", provider,
					"age", p.Age(m.now()), "bound", staleBound)
				return location.ResultTooOld(p)
			}
			return nil
		})
	})
}

// RequestLive asks provider for one fresh fix. A disabled provider fails at
// once with KindProviderDisabled and no listener is registered. A non-zero
// timeout fails the request with KindTimeout when it elapses first.
func (m *Manager) RequestLive(provider string, timeout location.TimeBound) mass.Op[location.Position] {
	return mass.Lift(func(ctx context.Context) rop.Result[location.Position] {
		return m.requestLive(ctx, provider, timeout)
	})
}

type update struct {
	pos      location.Position
	disabled bool
}

func (m *Manager) requestLive(ctx context.Context, provider string, timeout location.TimeBound) rop.Result[location.Position] {
	if !m.source.IsProviderEnabled(provider) {
		return rop.Fail[location.Position](location.ProviderDisabled(provider))
	}

	// one slot: the first outcome wins, later callbacks are dropped
	updates := make(chan update, 1)
	offer := func(u update) {
		select {
		case updates <- u:
		default:
		}
	}

	sub, err := m.source.RequestSingleUpdate(provider, location.Listener{
		OnPosition: func(p location.Position) { offer(update{pos: p}) },
		OnProviderDisabled: func(p string) {
			if p == provider {
				offer(update{disabled: true})
			}
		},
	})
	if err != nil {
		return rop.FromError[location.Position](fmt.Errorf("request %s update: %w", provider, err))
	}
	defer m.source.RemoveUpdates(sub)

	var expired <-chan time.Time
	if !timeout.IsZero() {
		timer := time.NewTimer(timeout.Duration())
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case u := <-updates:
		if u.disabled {
			return rop.Fail[location.Position](location.ProviderDisabled(provider))
		}
		return solo.Tee(ctx, rop.Success(u.pos), func(_ context.Context, p location.Position) {
			m.logger.Debug("live position", "provider", provider, "position", p)
		})
	case <-expired:
		m.logger.Debug("live request timed out", "provider", provider, "timeout", timeout)
		return rop.Fail[location.Position](location.Timeout(provider))
	case <-ctx.Done():
		return rop.Cancel[location.Position](ctx.Err())
	}
}

// GetLastLocation is LastResult behind behaviors. Ignorable failures come
// back as empty.
func (m *Manager) GetLastLocation(provider string, staleBound location.TimeBound,
	behaviors ...behavior.Behavior) mass.Op[location.Position] {
	return suppress.DropIgnorable(behavior.Apply(m.LastResult(provider, staleBound), behaviors...))
}

// RequestLocation is RequestLive behind behaviors. Ignorable failures come
// back as empty.
func (m *Manager) RequestLocation(provider string, timeout location.TimeBound,
	behaviors ...behavior.Behavior) mass.Op[location.Position] {
	return suppress.DropIgnorable(behavior.Apply(m.RequestLive(provider, timeout), behaviors...))
}
