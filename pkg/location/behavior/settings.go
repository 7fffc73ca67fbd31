package behavior

import (
	"context"

	"github.com/google/uuid"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/events"
)

// ActionLocationSettings opens the system location settings screen.
const ActionLocationSettings = "android.settings.LOCATION_SOURCE_SETTINGS"

// SettingsRequest is what the host is asked to show. When Resolution is set
// the host launches that pending sender (a services resolution, say) in place
// of the Action screen.
type SettingsRequest struct {
	Action     string
	Providers  []string
	Resolution string
}

// ForResultCaller starts a host screen whose outcome comes back through
// events.Hub.OnActivityResult with the same token.
type ForResultCaller interface {
	StartForResult(ctx context.Context, token uuid.UUID, req SettingsRequest) error
}

// ProviderChecker is the part of location.Source the settings gate needs.
type ProviderChecker interface {
	IsProviderEnabled(provider string) bool
}

// SettingsGate lets an operation run only once one of its providers is
// enabled, sending the user to the settings screen otherwise.
type SettingsGate struct {
	waiter[events.ActivityResult]
	checker   ProviderChecker
	providers []string
}

// Settings builds a gate over providers; at least one must be enabled. With
// no providers there is nothing to enable and the gate never prompts.
func Settings(checker ProviderChecker, caller ForResultCaller, hub *events.Hub,
	providers []string, opts ...Option) *SettingsGate {

	o := buildOptions(opts)
	g := &SettingsGate{
		checker:   checker,
		providers: append([]string(nil), providers...),
	}
	g.waiter = waiter[events.ActivityResult]{
		name:      "settings",
		stream:    hub.Activities,
		satisfied: func(context.Context) bool { return len(g.providers) == 0 || g.anyEnabled() },
		request: func(ctx context.Context, token uuid.UUID) error {
			return caller.StartForResult(ctx, token, SettingsRequest{
				Action:     ActionLocationSettings,
				Providers:  g.providers,
				Resolution: o.resolution,
			})
		},
		evaluate: func(_ context.Context, ev events.ActivityResult) error {
			// the settings screen reports canceled on back, so re-check too
			if ev.ResultCode == events.ResultOK || g.anyEnabled() {
				return nil
			}
			return location.SettingsDeclined()
		},
		logger: o.logger,
	}
	return g
}

func (g *SettingsGate) Name() string { return "settings" }

func (g *SettingsGate) Await(ctx context.Context) error { return g.await(ctx) }

func (g *SettingsGate) anyEnabled() bool {
	for _, p := range g.providers {
		if g.checker.IsProviderEnabled(p) {
			return true
		}
	}
	return false
}
