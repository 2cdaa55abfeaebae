package autoplay_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rehabsim/internal/autoplay"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestAutoplay_Run(t *testing.T) {
	Convey("Given a two minute run over every widget", t, func() {
		cfg := autoplay.DefaultConfig()
		cfg.Seed = 7
		cfg.Report = filepath.Join(t.TempDir(), "reports", "run.json")

		report, err := autoplay.Run(context.Background(), cfg)

		Convey("Then it finishes without violations", func() {
			So(err, ShouldBeNil)
			So(report.Violations, ShouldBeEmpty)
			So(report.Passed, ShouldBeTrue)
			So(report.VirtualTime, ShouldEqual, "2m0s")
			So(report.Widgets, ShouldResemble, []string{"balance-walk", "reach-grab", "reaction-tap"})
		})

		Convey("Then every widget made progress", func() {
			So(err, ShouldBeNil)
			f := report.Final
			So(f.BalanceWalk.Kicks, ShouldBeGreaterThan, 0)
			So(f.ReachGrab.Reps, ShouldBeGreaterThan, 0)
			So(f.ReachGrab.Attempts, ShouldBeGreaterThanOrEqualTo, f.ReachGrab.Reps)
			So(f.ReactionTap.Active, ShouldBeTrue)
			So(f.ReactionTap.Hits, ShouldEqual, report.Inputs.Taps)
			So(f.ReactionTap.Grade, ShouldNotEqual, "-")
			So(report.Inputs.Starts, ShouldEqual, 1)
			So(report.Inputs.Reaches, ShouldBeGreaterThan, 0)
			So(report.Inputs.Toggles, ShouldBeGreaterThan, 0)
		})

		Convey("Then the saved report reads back", func() {
			So(err, ShouldBeNil)
			saved, err := autoplay.Load(cfg.Report)
			So(err, ShouldBeNil)
			So(saved.RunID, ShouldEqual, report.RunID)
			So(saved.Passed, ShouldBeTrue)
			So(saved.Final.ReactionTap.Score, ShouldEqual, report.Final.ReactionTap.Score)
		})
	})
}

func TestAutoplay_Deterministic(t *testing.T) {
	Convey("Given two runs with the same seed", t, func() {
		cfg := autoplay.DefaultConfig()
		cfg.Seed = 42
		cfg.Duration = time.Minute

		a, errA := autoplay.Run(context.Background(), cfg)
		b, errB := autoplay.Run(context.Background(), cfg)

		Convey("Then they produce the same input and the same readouts", func() {
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(a.RunID, ShouldNotEqual, b.RunID)
			So(a.Inputs, ShouldResemble, b.Inputs)
			So(a.Final, ShouldResemble, b.Final)
		})
	})
}

func TestAutoplay_SingleWidget(t *testing.T) {
	Convey("Given a run that only drives reach-grab", t, func() {
		cfg := autoplay.DefaultConfig()
		cfg.Seed = 3
		cfg.Duration = 30 * time.Second
		cfg.Widgets = []model.Widget{model.ReachGrab}

		report, err := autoplay.Run(context.Background(), cfg)

		Convey("Then the reaction game is never started", func() {
			So(err, ShouldBeNil)
			So(report.Passed, ShouldBeTrue)
			So(report.Widgets, ShouldResemble, []string{"reach-grab"})
			So(report.Inputs.Starts, ShouldEqual, 0)
			So(report.Final.ReactionTap.Active, ShouldBeFalse)
			So(report.Final.ReachGrab.Reps, ShouldBeGreaterThan, 0)
		})
	})
}

func TestAutoplay_NoMisses(t *testing.T) {
	Convey("Given a patient who never ignores a target", t, func() {
		cfg := autoplay.DefaultConfig()
		cfg.Seed = 11
		cfg.Duration = 30 * time.Second
		cfg.MissRate = 0
		cfg.Widgets = []model.Widget{model.ReactionTap}

		report, err := autoplay.Run(context.Background(), cfg)

		Convey("Then no target times out", func() {
			So(err, ShouldBeNil)
			So(report.Passed, ShouldBeTrue)
			So(report.Inputs.SkippedTargets, ShouldEqual, 0)
			So(report.Final.ReactionTap.Misses, ShouldEqual, 0)
			So(report.Final.ReactionTap.Hits, ShouldBeGreaterThan, 0)
		})
	})
}

func TestAutoplay_Cancelled(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := autoplay.Run(ctx, autoplay.DefaultConfig())

		Convey("Then the run stops with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	Convey("Given run parameters", t, func() {
		cfg := autoplay.DefaultConfig()

		Convey("When they are the defaults", func() {
			Convey("Then they are valid", func() {
				So(cfg.Validate(), ShouldBeNil)
			})
		})

		Convey("When the tick is longer than the run", func() {
			cfg.Tick = cfg.Duration + time.Second

			Convey("Then they are rejected", func() {
				So(errors.Is(cfg.Validate(), autoplay.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the miss rate is above one", func() {
			cfg.MissRate = 1.5

			Convey("Then they are rejected", func() {
				So(errors.Is(cfg.Validate(), autoplay.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the latency range is inverted", func() {
			cfg.MinLatency, cfg.MaxLatency = time.Second, time.Millisecond

			Convey("Then they are rejected", func() {
				So(errors.Is(cfg.Validate(), autoplay.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a widget is unknown", func() {
			cfg.Widgets = []model.Widget{"hopscotch"}

			Convey("Then Run refuses to start", func() {
				_, err := autoplay.Run(context.Background(), cfg)
				So(errors.Is(err, autoplay.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestParseWidgets(t *testing.T) {
	Convey("Given widget flag values", t, func() {
		Convey("Then all selects every widget", func() {
			ws, err := autoplay.ParseWidgets([]string{"all"})
			So(err, ShouldBeNil)
			So(ws, ShouldResemble, model.Widgets)
		})

		Convey("Then names select their widgets in order", func() {
			ws, err := autoplay.ParseWidgets([]string{"reaction-tap", "balance-walk"})
			So(err, ShouldBeNil)
			So(ws, ShouldResemble, []model.Widget{model.ReactionTap, model.BalanceWalk})
		})

		Convey("Then an unknown name is an error", func() {
			_, err := autoplay.ParseWidgets([]string{"reach-grab", "darts"})
			So(errors.Is(err, autoplay.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
