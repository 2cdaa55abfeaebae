// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Every timing constant of the widgets is a millisecond integer so it can be
//   overridden from YAML or the environment.
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Widget names accepted by the Widget field.
const (
	WidgetBalanceWalk = "balance-walk"
	WidgetReachGrab   = "reach-grab"
	WidgetReactionTap = "reaction-tap"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile receives logs when set. The interactive host always needs one
	// because it owns the terminal.
	LogFile string `koanf:"log_file"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// MetricsAddr enables the ops listener (/healthz, /stats) when non-empty.
	MetricsAddr string `koanf:"metrics_addr"`

	// Widget selects the widget shown first by the terminal host.
	Widget string `koanf:"widget"`

	// QueueSize bounds the event loop's command queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the set of target ids remembered for hit idempotence.
	DedupeSize int `koanf:"dedupe_size"`

	// Seed seeds the widgets' random source. Zero draws a fresh seed.
	Seed int64 `koanf:"seed"`

	// Sound enables audio cues.
	Sound bool `koanf:"sound"`

	// FrameIntervalMS is the terminal redraw period.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	BalanceWalk BalanceWalk `koanf:"balance_walk"`
	ReachGrab   ReachGrab   `koanf:"reach_grab"`
	ReactionTap ReactionTap `koanf:"reaction_tap"`
}

// BalanceWalk holds the balance-walk sequencer timings.
type BalanceWalk struct {
	KickMinDelayMS  int `koanf:"kick_min_delay_ms"`
	KickJitterMS    int `koanf:"kick_jitter_ms"`
	FreezeMS        int `koanf:"freeze_ms"`
	ContactMS       int `koanf:"contact_ms"`
	KickMS          int `koanf:"kick_ms"`
	CalibrateMS     int `koanf:"calibrate_ms"`
	RestartNoticeMS int `koanf:"restart_notice_ms"`
	SlowMoNoticeMS  int `koanf:"slow_mo_notice_ms"`
	CycleMS         int `koanf:"cycle_ms"`
	SlowCycleMS     int `koanf:"slow_cycle_ms"`
}

// Difficulty is one reach-and-grab difficulty preset. SpeedMS is carried for
// parity with the presets but spawn timing does not read it.
type Difficulty struct {
	Radius  float64 `koanf:"radius"`
	SpeedMS int     `koanf:"speed_ms"`
}

// ReachGrab holds the reach-and-grab trainer timings and presets.
type ReachGrab struct {
	Difficulty    string                `koanf:"difficulty"`
	Difficulties  map[string]Difficulty `koanf:"difficulties"`
	TravelMS      int                   `koanf:"travel_ms"`
	SlowTravelMS  int                   `koanf:"slow_travel_ms"`
	CleanupMS     int                   `koanf:"cleanup_ms"`
	RespawnMS     int                   `koanf:"respawn_ms"`
	SlowRespawnMS int                   `koanf:"slow_respawn_ms"`
	ResetSpawnMS  int                   `koanf:"reset_spawn_ms"`
	ROMMinDeg     int                   `koanf:"rom_min_deg"`
	ROMSpanDeg    int                   `koanf:"rom_span_deg"`
	MaxReachAngle float64               `koanf:"max_reach_angle"`
}

// ReactionTap holds the reaction-tap game timings.
type ReactionTap struct {
	BaseDelayMS     int     `koanf:"base_delay_ms"`
	SpeedDelayMS    int     `koanf:"speed_delay_ms"`
	Decay           float64 `koanf:"decay"`
	MinDelayMS      int     `koanf:"min_delay_ms"`
	JitterMS        int     `koanf:"jitter_ms"`
	LifetimeMS      int     `koanf:"lifetime_ms"`
	SpeedLifetimeMS int     `koanf:"speed_lifetime_ms"`
	MaxCombo        int     `koanf:"max_combo"`
	HitCleanupMS    int     `koanf:"hit_cleanup_ms"`
	MissNoticeMS    int     `koanf:"miss_notice_ms"`
	FlickMS         int     `koanf:"flick_ms"`
	GradeSMS        int     `koanf:"grade_s_ms"`
	GradeAMS        int     `koanf:"grade_a_ms"`
	GradeBMS        int     `koanf:"grade_b_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFile:         "rehabsim.log",
		LogFormat:       "text",
		MetricsAddr:     "",
		Widget:          WidgetBalanceWalk,
		QueueSize:       1024,
		DedupeSize:      4096,
		Seed:            0,
		Sound:           true,
		FrameIntervalMS: 33,
		BalanceWalk: BalanceWalk{
			KickMinDelayMS:  3000,
			KickJitterMS:    3000,
			FreezeMS:        300,
			ContactMS:       600,
			KickMS:          1400,
			CalibrateMS:     1000,
			RestartNoticeMS: 2000,
			SlowMoNoticeMS:  1500,
			CycleMS:         2000,
			SlowCycleMS:     4000,
		},
		ReachGrab: ReachGrab{
			Difficulty: "medium",
			Difficulties: map[string]Difficulty{
				"easy":   {Radius: 100, SpeedMS: 3000},
				"medium": {Radius: 150, SpeedMS: 2000},
				"hard":   {Radius: 180, SpeedMS: 1200},
			},
			TravelMS:      500,
			SlowTravelMS:  1000,
			CleanupMS:     500,
			RespawnMS:     800,
			SlowRespawnMS: 1500,
			ResetSpawnMS:  1000,
			ROMMinDeg:     90,
			ROMSpanDeg:    40,
			MaxReachAngle: 160,
		},
		ReactionTap: ReactionTap{
			BaseDelayMS:     2000,
			SpeedDelayMS:    800,
			Decay:           0.95,
			MinDelayMS:      0,
			JitterMS:        1000,
			LifetimeMS:      3000,
			SpeedLifetimeMS: 1500,
			MaxCombo:        10,
			HitCleanupMS:    200,
			MissNoticeMS:    500,
			FlickMS:         100,
			GradeSMS:        250,
			GradeAMS:        300,
			GradeBMS:        400,
		},
	}
}

// FrameInterval returns FrameIntervalMS as a duration.
func (c *Config) FrameInterval() time.Duration {
	return Millis(c.FrameIntervalMS)
}

// Millis converts a millisecond count to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
