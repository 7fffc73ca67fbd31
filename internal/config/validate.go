package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ib-77/locchain/pkg/location"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

var ErrUnknownBehavior = errors.New("unknown behavior")

const (
	BehaviorPermission = "permission"
	BehaviorSettings   = "settings"
	BehaviorThrottle   = "throttle"
	BehaviorIgnore     = "ignore"
)

// BehaviorSpec is a parsed entry behavior: "permission", "settings",
// "throttle", "ignore" (every error) or "ignore:kind[,kind...]".
type BehaviorSpec struct {
	Name  string
	Kinds []location.Kind
}

func ParseBehavior(s string) (BehaviorSpec, error) {
	name, args, hasArgs := strings.Cut(strings.TrimSpace(s), ":")
	switch name {
	case BehaviorPermission, BehaviorSettings, BehaviorThrottle:
		if hasArgs {
			return BehaviorSpec{}, fmt.Errorf("%w: %q takes no arguments", ErrUnknownBehavior, s)
		}
		return BehaviorSpec{Name: name}, nil
	case BehaviorIgnore:
		spec := BehaviorSpec{Name: name}
		if !hasArgs {
			return spec, nil
		}
		for _, part := range strings.Split(args, ",") {
			k, err := location.ParseKind(strings.TrimSpace(part))
			if err != nil {
				return BehaviorSpec{}, fmt.Errorf("behavior %q: %w", s, err)
			}
			spec.Kinds = append(spec.Kinds, k)
		}
		return spec, nil
	default:
		return BehaviorSpec{}, fmt.Errorf("%w: %q", ErrUnknownBehavior, s)
	}
}

// Validate checks cfg for structural correctness. It returns a
// *ValidationError listing every problem found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateThrottle(cfg, ve)
	validateChain(cfg, ve)
	validateSimulation(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q must be text or json", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q must be noop or stdout", cfg.Tracer.Exporter)
	}
}

func validateThrottle(cfg *Config, ve *ValidationError) {
	if cfg.Throttle.Rate < 0 {
		ve.Add("throttle.rate must be >= 0")
	}
	if cfg.Throttle.Rate > 0 && cfg.Throttle.Burst <= 0 {
		ve.Add("throttle.burst must be > 0 when throttle.rate is set")
	}
}

func validateChain(cfg *Config, ve *ValidationError) {
	if len(cfg.Chain.Entries) == 0 && cfg.Chain.Default == nil {
		ve.Add("chain needs at least one entry or a default")
	}
	for i, e := range cfg.Chain.Entries {
		if e.Type != EntryLastResult && e.Type != EntryLiveRequest {
			ve.Add("chain.entries[%d].type %q must be %s or %s", i, e.Type, EntryLastResult, EntryLiveRequest)
		}
		if e.Provider == "" {
			ve.Add("chain.entries[%d].provider must not be empty", i)
		}
		if e.Bound < 0 {
			ve.Add("chain.entries[%d].bound must be >= 0", i)
		}
		for _, b := range e.Behaviors {
			spec, err := ParseBehavior(b)
			if err != nil {
				ve.Add("chain.entries[%d]: %v", i, err)
				continue
			}
			if spec.Name == BehaviorPermission && len(cfg.Chain.Permissions) == 0 {
				ve.Add("chain.entries[%d]: permission behavior needs chain.permissions", i)
			}
			if spec.Name == BehaviorThrottle && cfg.Throttle.Rate == 0 {
				ve.Add("chain.entries[%d]: throttle behavior needs throttle.rate", i)
			}
		}
	}
}

func validateSimulation(cfg *Config, ve *ValidationError) {
	validateAnswer("simulation.permissions", cfg.Simulation.Permissions, ve)
	validateAnswer("simulation.settings", cfg.Simulation.Settings, ve)
	seen := make(map[string]bool)
	for i, p := range cfg.Simulation.Providers {
		if p.Name == "" {
			ve.Add("simulation.providers[%d].name must not be empty", i)
		}
		if seen[p.Name] {
			ve.Add("simulation.providers[%d]: duplicate provider %q", i, p.Name)
		}
		seen[p.Name] = true
	}
}

func validateAnswer(field, answer string, ve *ValidationError) {
	switch answer {
	case "", "grant", "deny", "silent":
	default:
		ve.Add("%s %q must be grant, deny or silent", field, answer)
	}
}
