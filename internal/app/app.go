// Package app wires configuration into a runnable chain over the simulated
// backend.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ib-77/locchain/internal/config"
	"github.com/ib-77/locchain/internal/tracer"
	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/behavior"
	"github.com/ib-77/locchain/pkg/location/breaker"
	"github.com/ib-77/locchain/pkg/location/chain"
	"github.com/ib-77/locchain/pkg/location/events"
	"github.com/ib-77/locchain/pkg/location/manager"
	"github.com/ib-77/locchain/pkg/location/simsource"
	"github.com/ib-77/locchain/pkg/rop"
	"github.com/ib-77/locchain/pkg/rop/mass"
)

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	sim     *simsource.Source
	backend location.Source
	hub     *events.Hub
	host    *simsource.Host
	limiter *rate.Limiter
	manager *manager.Manager
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		sim:    simulate(cfg.Simulation, time.Now()),
		hub:    events.NewHub(logger),
	}

	a.backend = a.sim
	if cfg.Breaker.Enabled {
		a.backend = breaker.Wrap(a.sim, "simulated", cfg.Breaker.Config, logger)
	}
	if cfg.Throttle.Rate > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.Throttle.Rate), cfg.Throttle.Burst)
	}

	a.host = simsource.NewHost(a.hub, a.sim)
	a.host.Grant(cfg.Simulation.Granted...)
	a.host.AnswerPermissions(answer(cfg.Simulation.Permissions))
	a.host.AnswerSettings(answer(cfg.Simulation.Settings))
	a.host.AnswerAfter(cfg.Simulation.AnswerDelay)

	a.manager = manager.New(a.backend, manager.WithLogger(logger))
	return a, nil
}

func simulate(cfg config.SimulationConfig, now time.Time) *simsource.Source {
	src := simsource.New()
	for _, p := range cfg.Providers {
		src.SetEnabled(p.Name, p.Enabled)
		if p.Last != nil {
			pos := p.Last.Position(now.Add(-p.Last.Age))
			pos.Provider = p.Name
			src.SetLast(pos)
		}
		if p.Live != nil {
			src.Schedule(p.Name, p.Live.Position(now), p.Live.Delay)
		}
	}
	return src
}

func answer(s string) simsource.Answer {
	switch s {
	case "grant":
		return simsource.AnswerGrant
	case "deny":
		return simsource.AnswerDeny
	default:
		return simsource.AnswerSilent
	}
}

func (a *App) Manager() *manager.Manager { return a.manager }

func (a *App) Host() *simsource.Host { return a.host }

// Behaviors resolves behavior names for an entry on provider.
func (a *App) Behaviors(provider string, names []string) ([]behavior.Behavior, error) {
	out := make([]behavior.Behavior, 0, len(names))
	for _, name := range names {
		spec, err := config.ParseBehavior(name)
		if err != nil {
			return nil, err
		}
		switch spec.Name {
		case config.BehaviorPermission:
			out = append(out, behavior.Permission(a.host, a.host, a.hub, a.cfg.Chain.Permissions,
				behavior.WithLogger(a.logger)))
		case config.BehaviorSettings:
			out = append(out, behavior.Settings(a.backend, a.host, a.hub, []string{provider},
				behavior.WithLogger(a.logger)))
		case config.BehaviorThrottle:
			if a.limiter == nil {
				return nil, fmt.Errorf("behavior %q: throttle is not configured", name)
			}
			out = append(out, behavior.Throttle(a.limiter))
		case config.BehaviorIgnore:
			out = append(out, behavior.IgnoreErrors(spec.Kinds...))
		}
	}
	return out, nil
}

// Chain builds the configured fallback chain.
func (a *App) Chain() (chain.Builder, error) {
	b := chain.New(a.manager, chain.WithLogger(a.logger))
	for i, e := range a.cfg.Chain.Entries {
		behaviors, err := a.Behaviors(e.Provider, e.Behaviors)
		if err != nil {
			return chain.Builder{}, fmt.Errorf("chain entry %d: %w", i, err)
		}
		bound := location.Bound(e.Bound)
		if e.Type == config.EntryLiveRequest {
			b = b.AddLiveRequest(e.Provider, bound, behaviors...)
		} else {
			b = b.AddLastResult(e.Provider, bound, behaviors...)
		}
	}
	if d := a.cfg.Chain.Default; d != nil {
		b = b.SetDefault(d.Position(time.Now()))
	}
	return b, nil
}

// Run builds the chain and runs it once.
func (a *App) Run(ctx context.Context) (rop.Result[location.Position], error) {
	b, err := a.Chain()
	if err != nil {
		return rop.Result[location.Position]{}, err
	}
	for i, e := range b.Entries() {
		a.logger.Debug("chain entry", "entry", i, "kind", e.Kind, "provider", e.Provider,
			"bound", e.Bound, "behaviors", e.Behaviors)
	}
	return a.traced(ctx, "locchain.run", b.Create()), nil
}

// Last fetches the cached fix of one provider.
func (a *App) Last(ctx context.Context, provider string, bound time.Duration, names []string) (rop.Result[location.Position], error) {
	behaviors, err := a.Behaviors(provider, names)
	if err != nil {
		return rop.Result[location.Position]{}, err
	}
	return a.traced(ctx, "locchain.last",
		a.manager.GetLastLocation(provider, location.Bound(bound), behaviors...)), nil
}

// Request asks one provider for a live fix.
func (a *App) Request(ctx context.Context, provider string, timeout time.Duration, names []string) (rop.Result[location.Position], error) {
	behaviors, err := a.Behaviors(provider, names)
	if err != nil {
		return rop.Result[location.Position]{}, err
	}
	return a.traced(ctx, "locchain.request",
		a.manager.RequestLocation(provider, location.Bound(timeout), behaviors...)), nil
}

func (a *App) traced(ctx context.Context, name string, op mass.Op[location.Position]) rop.Result[location.Position] {
	ctx, span := tracer.StartSpan(ctx, name)
	defer span.End()

	r := mass.Run(ctx, op)
	span.SetAttributes(tracer.StringAttr("result", r.String()))
	if r.IsFailure() {
		tracer.RecordError(span, r.Err())
	} else {
		tracer.SetOK(span)
	}
	return r
}
