package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/location/breaker"
)

// Config is the top-level configuration of the locchain CLI.
type Config struct {
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Breaker    BreakerConfig    `yaml:"breaker"`
	Throttle   ThrottleConfig   `yaml:"throttle"`
	Chain      ChainConfig      `yaml:"chain"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

type BreakerConfig struct {
	Enabled        bool `yaml:"enabled"`
	breaker.Config `yaml:",inline"`
}

// ThrottleConfig limits how often gated requests reach the backend.
type ThrottleConfig struct {
	Rate  float64 `yaml:"rate"` // requests per second
	Burst int     `yaml:"burst"`
}

// ChainConfig describes the fallback chain.
type ChainConfig struct {
	Entries     []EntryConfig   `yaml:"entries"`
	Default     *PositionConfig `yaml:"default,omitempty"`
	Permissions []string        `yaml:"permissions"`
}

const (
	EntryLastResult  = "last_result"
	EntryLiveRequest = "live_request"
)

// EntryConfig is one chain entry. Bound is the staleness bound of a
// last_result entry and the timeout of a live_request entry; zero means none.
type EntryConfig struct {
	Type      string        `yaml:"type"`
	Provider  string        `yaml:"provider"`
	Bound     time.Duration `yaml:"bound"`
	Behaviors []string      `yaml:"behaviors,omitempty"`
}

type PositionConfig struct {
	Provider  string  `yaml:"provider"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Accuracy  float64 `yaml:"accuracy"`
}

func (p PositionConfig) Position(at time.Time) location.Position {
	return location.Position{
		Provider:  p.Provider,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Accuracy:  p.Accuracy,
		Time:      at,
	}
}

// SimulationConfig scripts the in-memory backend and host.
type SimulationConfig struct {
	Providers   []ProviderConfig `yaml:"providers"`
	Granted     []string         `yaml:"granted"`
	Permissions string           `yaml:"permissions"` // grant, deny or silent
	Settings    string           `yaml:"settings"`    // grant, deny or silent
	AnswerDelay time.Duration    `yaml:"answer_delay"`
}

type ProviderConfig struct {
	Name    string     `yaml:"name"`
	Enabled bool       `yaml:"enabled"`
	Last    *FixConfig `yaml:"last,omitempty"`
	Live    *FixConfig `yaml:"live,omitempty"`
}

// FixConfig is a simulated position. Age dates a cached fix; Delay is how
// long a live request waits for it.
type FixConfig struct {
	PositionConfig `yaml:",inline"`
	Age            time.Duration `yaml:"age"`
	Delay          time.Duration `yaml:"delay"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Breaker: BreakerConfig{
			Enabled: true,
			Config: breaker.Config{
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    time.Minute,
			},
		},
		Throttle: ThrottleConfig{
			Rate:  2,
			Burst: 1,
		},
		Chain: ChainConfig{
			Entries: []EntryConfig{
				{Type: EntryLastResult, Provider: "network", Bound: 30 * time.Minute},
				{Type: EntryLiveRequest, Provider: "gps", Bound: 10 * time.Second,
					Behaviors: []string{"permission", "settings"}},
				{Type: EntryLiveRequest, Provider: "network", Bound: 10 * time.Second,
					Behaviors: []string{"permission"}},
			},
			Permissions: []string{"ACCESS_FINE_LOCATION"},
		},
		Simulation: SimulationConfig{
			Providers: []ProviderConfig{
				{
					Name:    "network",
					Enabled: true,
					Last: &FixConfig{
						PositionConfig: PositionConfig{Latitude: 52.52, Longitude: 13.405, Accuracy: 150},
						Age:            45 * time.Minute,
					},
					Live: &FixConfig{
						PositionConfig: PositionConfig{Latitude: 52.5201, Longitude: 13.4049, Accuracy: 40},
						Delay:          300 * time.Millisecond,
					},
				},
				{
					Name: "gps",
					Live: &FixConfig{
						PositionConfig: PositionConfig{Latitude: 52.52003, Longitude: 13.40495, Accuracy: 5},
						Delay:          500 * time.Millisecond,
					},
				},
			},
			Permissions: "grant",
			Settings:    "grant",
			AnswerDelay: 100 * time.Millisecond,
		},
	}
}

// Load reads a YAML config file over the defaults and applies env overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// entries replace the default chain rather than merge into it
		cfg.Chain.Entries = nil
		cfg.Simulation.Providers = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps LOCCHAIN_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOCCHAIN_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LOCCHAIN_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("LOCCHAIN_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("LOCCHAIN_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("LOCCHAIN_PERMISSIONS"); v != "" {
		cfg.Simulation.Permissions = strings.ToLower(v)
	}
	if v := os.Getenv("LOCCHAIN_SETTINGS"); v != "" {
		cfg.Simulation.Settings = strings.ToLower(v)
	}
}
