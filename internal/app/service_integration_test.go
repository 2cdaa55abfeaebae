package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/model"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestServiceIntegration(t *testing.T) {
	defer goleak.VerifyNone(t)

	Convey("Given a service on the real event loop with fast timings", t, func() {
		cfg := config.New()
		cfg.ReactionTap.BaseDelayMS = 10
		cfg.ReactionTap.JitterMS = 5
		cfg.ReactionTap.LifetimeMS = 30
		svc := service.New(
			service.WithConfig(cfg),
			service.WithQueueSize(256),
			service.WithSeed(3),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the reaction game is started through the queue", func() {
			So(svc.Submit(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindStart}), ShouldBeNil)

			Convey("Then timers drive it on the loop until a target is missed", func() {
				So(waitFor(func() bool { return svc.Snapshot().ReactionTap.Misses > 0 }), ShouldBeTrue)
				snap := svc.Snapshot()
				So(snap.ReactionTap.Active, ShouldBeTrue)
				So(snap.ReactionTap.Combo, ShouldEqual, 1)
				So(snap.ReactionTap.Score, ShouldEqual, 0)
			})
		})

		Convey("When a frame command is submitted", func() {
			drawn := make(chan model.Widget, 1)
			So(svc.Submit(ctx, model.Command{Kind: model.KindFrame, Fire: func() {
				drawn <- svc.Focused()
			}}), ShouldBeNil)

			Convey("Then its closure runs on the loop", func() {
				var got model.Widget
				select {
				case got = <-drawn:
				case <-time.After(2 * time.Second):
				}
				So(got, ShouldEqual, model.BalanceWalk)
			})
		})

		Convey("Then ops stats show the live queue", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["inline"], ShouldEqual, false)
			So(stats, ShouldContainKey, "queueLength")
			So(stats, ShouldContainKey, "timers")
		})
	})
}
