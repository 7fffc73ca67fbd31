package behavior

import (
	"context"

	"github.com/google/uuid"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/events"
)

// PermissionChecker reports the host's current grant for a permission.
type PermissionChecker interface {
	Granted(permission string) bool
}

// PermissionCaller asks the user for permissions. The host must answer via
// events.Hub.OnPermissionResult with the same token.
type PermissionCaller interface {
	RequestPermissions(ctx context.Context, token uuid.UUID, permissions []string) error
}

// PermissionGate lets an operation run only once every listed permission is
// granted, asking the user for the missing ones.
type PermissionGate struct {
	waiter[events.PermissionResult]
	checker     PermissionChecker
	permissions []string
}

func Permission(checker PermissionChecker, caller PermissionCaller, hub *events.Hub,
	permissions []string, opts ...Option) *PermissionGate {

	o := buildOptions(opts)
	g := &PermissionGate{
		checker:     checker,
		permissions: append([]string(nil), permissions...),
	}
	g.waiter = waiter[events.PermissionResult]{
		name:      "permission",
		stream:    hub.Permissions,
		satisfied: func(context.Context) bool { return len(g.denied()) == 0 },
		request: func(ctx context.Context, token uuid.UUID) error {
			return caller.RequestPermissions(ctx, token, g.denied())
		},
		evaluate: g.evaluate,
		logger:   o.logger,
	}
	return g
}

func (g *PermissionGate) Name() string { return "permission" }

func (g *PermissionGate) Await(ctx context.Context) error { return g.await(ctx) }

func (g *PermissionGate) denied() []string {
	var out []string
	for _, p := range g.permissions {
		if !g.checker.Granted(p) {
			out = append(out, p)
		}
	}
	return out
}

// evaluate requires a grant for every permission that was missing. One that
// the answer omits counts as refused.
func (g *PermissionGate) evaluate(_ context.Context, ev events.PermissionResult) error {
	granted := ev.Granted()
	var refused []string
	for _, p := range g.permissions {
		if g.checker.Granted(p) || granted[p] {
			continue
		}
		refused = append(refused, p)
	}
	if len(refused) > 0 {
		return location.PermissionDenied(refused)
	}
	return nil
}
