package autoplay

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/model"
)

// Default run parameters.
const (
	DefaultDuration    = 2 * time.Minute
	DefaultTick        = 10 * time.Millisecond
	DefaultMissRate    = 0.1
	DefaultMinLatency  = 180 * time.Millisecond
	DefaultMaxLatency  = 600 * time.Millisecond
	DefaultMinHesitate = 300 * time.Millisecond
	DefaultMaxHesitate = 900 * time.Millisecond
	DefaultToggleEvery = 20 * time.Second

	// duplicateTapRate is the chance a landed tap is sent a second time.
	duplicateTapRate = 0.05
	// difficultyEvery is how many reps pass between difficulty changes.
	difficultyEvery = 5

	directoryPermission = 0750
	filePermission      = 0640
)

// ErrInvalidConfig is returned for unusable run parameters.
var ErrInvalidConfig = errors.New("invalid autoplay config")

// Config holds the parameters of one autoplay run.
type Config struct {
	Widgets     []model.Widget // widgets to drive; all of them when empty
	Duration    time.Duration  // virtual time to simulate
	Tick        time.Duration  // virtual time between input decisions
	Seed        int64          // seeds the widgets and the input generator
	MissRate    float64        // chance a reaction-tap target is ignored
	MinLatency  time.Duration  // fastest simulated tap
	MaxLatency  time.Duration  // slowest simulated tap
	MinHesitate time.Duration  // shortest pause before a reach
	MaxHesitate time.Duration  // longest pause before a reach
	ToggleEvery time.Duration  // period of slow-mo, speed and insights toggles
	Report      string         // JSON report path; empty skips the file
	App         *config.Config // widget timings
	Verbose     bool           // log every synthetic input
}

// DefaultConfig returns a two minute run over every widget.
func DefaultConfig() Config {
	return Config{
		Widgets:     append([]model.Widget(nil), model.Widgets...),
		Duration:    DefaultDuration,
		Tick:        DefaultTick,
		Seed:        1,
		MissRate:    DefaultMissRate,
		MinLatency:  DefaultMinLatency,
		MaxLatency:  DefaultMaxLatency,
		MinHesitate: DefaultMinHesitate,
		MaxHesitate: DefaultMaxHesitate,
		ToggleEvery: DefaultToggleEvery,
		App:         config.New(),
	}
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	case c.Tick <= 0 || c.Tick > c.Duration:
		return fmt.Errorf("%w: tick must be in (0, duration]", ErrInvalidConfig)
	case c.MissRate < 0 || c.MissRate > 1:
		return fmt.Errorf("%w: miss rate must be in [0, 1]", ErrInvalidConfig)
	case c.MinLatency <= 0 || c.MaxLatency < c.MinLatency:
		return fmt.Errorf("%w: latency range is empty", ErrInvalidConfig)
	case c.MinHesitate < 0 || c.MaxHesitate < c.MinHesitate:
		return fmt.Errorf("%w: hesitation range is empty", ErrInvalidConfig)
	case c.ToggleEvery < 0:
		return fmt.Errorf("%w: toggle period must not be negative", ErrInvalidConfig)
	}
	for _, w := range c.Widgets {
		if _, err := model.ParseWidget(string(w)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// drives reports whether w is one of the widgets the run sends input to.
func (c *Config) drives(w model.Widget) bool {
	if len(c.Widgets) == 0 {
		return true
	}
	for _, x := range c.Widgets {
		if x == w {
			return true
		}
	}
	return false
}

// ParseWidgets turns a --widget flag value into a widget list. "all" and the
// empty string select every widget.
func ParseWidgets(names []string) ([]model.Widget, error) {
	var out []model.Widget
	for _, n := range names {
		if n == "" || n == "all" {
			return append([]model.Widget(nil), model.Widgets...), nil
		}
		w, err := model.ParseWidget(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return append([]model.Widget(nil), model.Widgets...), nil
	}
	return out, nil
}
