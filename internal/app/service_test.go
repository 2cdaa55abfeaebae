package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/reactiontap"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newInline(seed int64) (*service.Service, *scheduler.Manual) {
	clock := scheduler.NewManual(epoch)
	svc := service.New(
		service.WithScheduler(clock),
		service.WithSeed(seed),
		service.WithLogger(logger.Nop()),
	)
	return svc, clock
}

// play runs a fixed script: start the reaction game, hit three targets
// 250ms after they appear, then let one time out.
func play(svc *service.Service, clock *scheduler.Manual) {
	ctx := context.Background()
	game := svc.Widget(model.ReactionTap).(*reactiontap.Game)
	So(svc.Submit(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindStart}), ShouldBeNil)
	for i := 0; i < 3; i++ {
		for len(game.Targets()) == 0 || game.Targets()[len(game.Targets())-1].Hit {
			So(clock.RunNext(), ShouldBeTrue)
		}
		clock.Advance(250 * time.Millisecond)
		id := game.Targets()[len(game.Targets())-1].ID
		So(svc.Submit(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindTap, TargetID: id}), ShouldBeNil)
	}
	clock.Advance(10 * time.Second)
	svc.Refresh()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it has a seed and focuses the configured widget", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Seed(), ShouldNotEqual, 0)
			So(svc.Focused(), ShouldEqual, model.BalanceWalk)
			So(svc.Page(model.BalanceWalk), ShouldBeNil)
		})
	})

	Convey("Given a config that focuses reaction-tap and fixes the seed", t, func() {
		cfg := config.New()
		cfg.Widget = config.WidgetReactionTap
		cfg.Seed = 42
		svc := service.New(service.WithConfig(cfg), service.WithQueueSize(8), service.WithDedupeSize(16))

		Convey("Then both are honoured", func() {
			So(svc.Seed(), ShouldEqual, 42)
			So(svc.Focused(), ShouldEqual, model.ReactionTap)
			stats := svc.GetStats()
			So(stats["queueSize"], ShouldEqual, 8)
			So(stats["dedupeSize"], ShouldEqual, 16)
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When a command is submitted", func() {
			err := svc.Submit(context.Background(), model.Command{Kind: model.KindRestart})

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("Then stats and snapshot are empty", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Snapshot(), ShouldResemble, types.Snapshot{})
		})

		Convey("Then Stop is harmless", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestService_Inline(t *testing.T) {
	Convey("Given a started inline service", t, func() {
		svc, clock := newInline(7)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then every widget is mounted", func() {
			snap := svc.Snapshot()
			So(snap.Seq, ShouldBeGreaterThan, 0)
			So(snap.Focused, ShouldEqual, string(model.BalanceWalk))
			So(snap.BalanceWalk.Phase, ShouldEqual, "walking")
			So(snap.ReachGrab.Attempts, ShouldEqual, 1)
			So(snap.ReachGrab.TargetActive, ShouldBeTrue)
			So(snap.ReactionTap.Active, ShouldBeFalse)
			So(svc.GetStats()["inline"], ShouldEqual, true)
			for _, w := range model.Widgets {
				So(svc.Page(w), ShouldNotBeNil)
				So(svc.Widget(w), ShouldNotBeNil)
			}
		})

		Convey("When focus moves to reaction-tap and start is pressed", func() {
			So(svc.Submit(ctx, model.Command{Kind: model.KindFocus, Widget: model.ReactionTap}), ShouldBeNil)
			So(svc.Submit(ctx, model.Command{Kind: model.KindStart}), ShouldBeNil)

			Convey("Then the unaddressed command reaches the focused widget", func() {
				snap := svc.Snapshot()
				So(snap.Focused, ShouldEqual, string(model.ReactionTap))
				So(svc.Focused(), ShouldEqual, model.ReactionTap)
				So(snap.ReactionTap.Active, ShouldBeTrue)
			})
		})

		Convey("When a command names an unknown widget", func() {
			err := svc.Submit(ctx, model.Command{Kind: model.KindRestart, Widget: "tetris"})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrUnknownWidget), ShouldBeTrue)
			})
		})

		Convey("When the reaction game is played", func() {
			play(svc, clock)

			Convey("Then the snapshot reflects hits and the miss", func() {
				rt := svc.Snapshot().ReactionTap
				So(rt.Hits, ShouldEqual, 3)
				So(rt.Misses, ShouldBeGreaterThanOrEqualTo, 1)
				So(rt.Combo, ShouldEqual, 1)
				So(rt.AvgMS, ShouldEqual, 250)
				So(rt.Score, ShouldEqual, 40*2+40*3+40*4)
			})
		})

		Convey("When the balance walk is left running", func() {
			clock.Advance(7 * time.Second)
			svc.Refresh()

			Convey("Then at least one kick happened", func() {
				So(svc.Snapshot().BalanceWalk.Kicks, ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then no widget timer is left", func() {
				So(clock.Pending(), ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Deterministic(t *testing.T) {
	Convey("Given two inline services with the same seed", t, func() {
		a, clockA := newInline(99)
		b, clockB := newInline(99)
		So(a.Start(context.Background()), ShouldBeNil)
		So(b.Start(context.Background()), ShouldBeNil)
		defer a.Stop()
		defer b.Stop()

		Convey("When both run the same script", func() {
			play(a, clockA)
			play(b, clockB)

			Convey("Then their readouts match", func() {
				sa, sb := a.Snapshot(), b.Snapshot()
				So(sa.BalanceWalk, ShouldResemble, sb.BalanceWalk)
				So(sa.ReachGrab, ShouldResemble, sb.ReachGrab)
				So(sa.ReactionTap, ShouldResemble, sb.ReactionTap)
			})
		})
	})
}

func TestService_GradeBounds(t *testing.T) {
	Convey("Given reaction-tap grade bounds of 100/200/300ms", t, func() {
		cfg := config.New()
		cfg.ReactionTap.GradeSMS = 100
		cfg.ReactionTap.GradeAMS = 200
		cfg.ReactionTap.GradeBMS = 300
		clock := scheduler.NewManual(epoch)
		svc := service.New(
			service.WithConfig(cfg),
			service.WithScheduler(clock),
			service.WithSeed(7),
			service.WithLogger(logger.Nop()),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When targets are hit after 250ms on average", func() {
			play(svc, clock)

			Convey("Then the configured bounds grade it B", func() {
				rt := svc.Snapshot().ReactionTap
				So(rt.AvgMS, ShouldEqual, 250)
				So(rt.Grade, ShouldEqual, "B")
			})
		})
	})

	Convey("Given the default bounds", t, func() {
		svc, clock := newInline(7)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		play(svc, clock)

		Convey("Then a 250ms average grades A", func() {
			So(svc.Snapshot().ReactionTap.Grade, ShouldEqual, "A")
		})
	})
}

func TestNewSeed(t *testing.T) {
	Convey("Fresh seeds differ", t, func() {
		a, err := service.NewSeed()
		So(err, ShouldBeNil)
		b, err := service.NewSeed()
		So(err, ShouldBeNil)
		So(a, ShouldNotEqual, b)
	})
}
