package chain

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/behavior"
	"github.com/ib-77/locchain/pkg/location/manager"
	"github.com/ib-77/locchain/pkg/location/suppress"
	"github.com/ib-77/locchain/pkg/rop"
	"github.com/ib-77/locchain/pkg/rop/mass"
	"github.com/ib-77/locchain/pkg/rop/solo"
)

const tracerName = "github.com/ib-77/locchain/pkg/location/chain"

// EntryKind tells how an entry obtains its position.
type EntryKind int

const (
	LastResult EntryKind = iota
	LiveRequest
)

func (k EntryKind) String() string {
	if k == LiveRequest {
		return "live_request"
	}
	return "last_result"
}

// Entry describes one chain entry.
type Entry struct {
	Kind      EntryKind
	Provider  string
	Bound     location.TimeBound
	Behaviors []string
}

func (e Entry) suppressed() []location.Kind {
	if e.Kind == LiveRequest {
		return []location.Kind{location.KindTimeout, location.KindProviderDisabled}
	}
	return []location.Kind{location.KindResultTooOld}
}

type entry struct {
	Entry
	behaviors []behavior.Behavior
}

// Builder accumulates chain entries. The zero value is not usable; call New.
type Builder struct {
	manager *manager.Manager
	entries []entry
	def     *location.Position
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Builder) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

func New(m *manager.Manager, opts ...Option) Builder {
	b := Builder{
		manager: m,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// AddLastResult appends a last-known fetch. A fix older than staleBound makes
// the entry empty instead of failing the chain.
func (b Builder) AddLastResult(provider string, staleBound location.TimeBound, behaviors ...behavior.Behavior) Builder {
	return b.add(LastResult, provider, staleBound, behaviors)
}

// AddLiveRequest appends a live request. A timeout or a disabled provider
// makes the entry empty instead of failing the chain.
func (b Builder) AddLiveRequest(provider string, timeout location.TimeBound, behaviors ...behavior.Behavior) Builder {
	return b.add(LiveRequest, provider, timeout, behaviors)
}

func (b Builder) add(kind EntryKind, provider string, bound location.TimeBound, behaviors []behavior.Behavior) Builder {
	names := make([]string, 0, len(behaviors))
	for _, bh := range behaviors {
		names = append(names, bh.Name())
	}
	e := entry{
		Entry:     Entry{Kind: kind, Provider: provider, Bound: bound, Behaviors: names},
		behaviors: slices.Clone(behaviors),
	}
	b.entries = append(slices.Clip(b.entries), e)
	return b
}

// SetDefault records the position yielded when every entry is empty.
func (b Builder) SetDefault(pos location.Position) Builder {
	b.def = &pos
	return b
}

func (b Builder) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Entry
		out[i].Behaviors = slices.Clone(e.Behaviors)
	}
	return out
}

// Default returns the default position and whether one was set.
func (b Builder) Default() (location.Position, bool) {
	if b.def == nil {
		return location.Position{}, false
	}
	return *b.def, true
}

// Create turns the chain into a single operation. Entries run one after
// another, never concurrently, and an entry starts only after the previous
// one has released its listeners and subscriptions.
func (b Builder) Create() mass.Op[location.Position] {
	entries := slices.Clip(b.entries)
	def := b.def

	return mass.Lift(func(ctx context.Context) rop.Result[location.Position] {
		ctx, span := b.tracer.Start(ctx, "chain.create",
			trace.WithAttributes(attribute.Int("chain.entries", len(entries))))
		defer span.End()

		r := b.fold(ctx, entries, def)
		finish(span, r)
		return r
	})
}

func (b Builder) fold(ctx context.Context, entries []entry, def *location.Position) rop.Result[location.Position] {
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return rop.Cancel[location.Position](err)
		}

		r := b.runEntry(ctx, i, e)
		switch {
		case r.IsSuccess():
			b.logger.Debug("chain resolved", "entry", i, "provider", e.Provider, "kind", e.Kind)
			return r
		case r.IsFailure():
			b.logger.Debug("chain aborted", "entry", i, "provider", e.Provider,
				"kind", e.Kind, "error", r.Err())
			return r
		}
	}

	exhausted := rop.Empty[location.Position]()
	if def != nil {
		b.logger.Debug("chain exhausted, using default")
		return solo.DefaultIfEmpty(exhausted, *def)
	}
	return exhausted
}

func (b Builder) runEntry(ctx context.Context, i int, e entry) rop.Result[location.Position] {
	ctx, span := b.tracer.Start(ctx, "chain.entry", trace.WithAttributes(
		attribute.Int("chain.entry.index", i),
		attribute.String("chain.entry.kind", e.Kind.String()),
		attribute.String("chain.entry.provider", e.Provider),
	))
	defer span.End()

	r := mass.Run(ctx, b.entryOp(e))
	finish(span, r)
	return r
}

func (b Builder) entryOp(e entry) mass.Op[location.Position] {
	var op mass.Op[location.Position]
	if e.Kind == LiveRequest {
		op = b.manager.RequestLocation(e.Provider, e.Bound, e.behaviors...)
	} else {
		op = b.manager.GetLastLocation(e.Provider, e.Bound, e.behaviors...)
	}
	return suppress.Maybe(op, e.suppressed()...)
}

func finish(span trace.Span, r rop.Result[location.Position]) {
	switch {
	case r.IsSuccess():
		span.SetAttributes(attribute.String("chain.outcome", "success"))
		span.SetStatus(codes.Ok, "")
	case r.IsEmpty():
		span.SetAttributes(attribute.String("chain.outcome", "empty"))
		span.SetStatus(codes.Ok, "")
	default:
		outcome := "fail"
		if r.IsCancel() {
			outcome = "cancel"
		}
		span.SetAttributes(
			attribute.String("chain.outcome", outcome),
			attribute.String("chain.error.kind", location.KindOf(r.Err()).String()),
		)
		span.RecordError(r.Err())
		span.SetStatus(codes.Error, r.Err().Error())
	}
}
