package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "REHABSIM_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if REHABSIM_CONFIG is set
//  3. env (prefix REHABSIM_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	return LoadFile(os.Getenv(EnvConfig))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file
// layer. The command line's --config flag lands here.
func LoadFile(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// REHABSIM_QUEUE_SIZE -> queue_size
	// REHABSIM_REACTION_TAP__BASE_DELAY_MS -> reaction_tap.base_delay_ms
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the widgets cannot run without.
func (c *Config) Validate() error {
	switch c.Widget {
	case WidgetBalanceWalk, WidgetReachGrab, WidgetReactionTap:
	default:
		return fmt.Errorf("%w: unknown widget %q", ErrInvalidConfig, c.Widget)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.FrameIntervalMS <= 0 {
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}

	bw := c.BalanceWalk
	if bw.ContactMS >= bw.KickMS {
		return fmt.Errorf("%w: balance_walk.contact_ms must be before kick_ms", ErrInvalidConfig)
	}
	if bw.KickJitterMS < 0 || bw.KickMinDelayMS < 0 {
		return fmt.Errorf("%w: balance_walk kick delays must not be negative", ErrInvalidConfig)
	}

	rg := c.ReachGrab
	if _, ok := rg.Difficulties[rg.Difficulty]; !ok {
		return fmt.Errorf("%w: reach_grab.difficulty %q has no preset", ErrInvalidConfig, rg.Difficulty)
	}
	if rg.ROMSpanDeg <= 0 {
		return fmt.Errorf("%w: reach_grab.rom_span_deg must be positive", ErrInvalidConfig)
	}

	rt := c.ReactionTap
	if rt.Decay <= 0 || rt.Decay > 1 {
		return fmt.Errorf("%w: reaction_tap.decay must be in (0, 1]", ErrInvalidConfig)
	}
	if rt.MaxCombo < 1 {
		return fmt.Errorf("%w: reaction_tap.max_combo must be at least 1", ErrInvalidConfig)
	}
	if rt.JitterMS < 0 {
		return fmt.Errorf("%w: reaction_tap.jitter_ms must not be negative", ErrInvalidConfig)
	}
	if rt.GradeSMS <= 0 || rt.GradeAMS <= rt.GradeSMS || rt.GradeBMS <= rt.GradeAMS {
		return fmt.Errorf("%w: reaction_tap grade bounds must increase from grade_s_ms", ErrInvalidConfig)
	}
	return nil
}
