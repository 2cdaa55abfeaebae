package config_test

import (
	"testing"
	"time"

	"github.com/okian/rehabsim/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then the widget timings match the demo defaults", func() {
			convey.So(cfg.Widget, convey.ShouldEqual, config.WidgetBalanceWalk)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.BalanceWalk.FreezeMS, convey.ShouldEqual, 300)
			convey.So(cfg.BalanceWalk.ContactMS, convey.ShouldEqual, 600)
			convey.So(cfg.BalanceWalk.KickMS, convey.ShouldEqual, 1400)
			convey.So(cfg.ReachGrab.Difficulties["hard"].Radius, convey.ShouldEqual, 180)
			convey.So(cfg.ReactionTap.Decay, convey.ShouldEqual, 0.95)
			convey.So(cfg.ReactionTap.MinDelayMS, convey.ShouldEqual, 0)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations convert from milliseconds", func() {
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, 33*time.Millisecond)
			convey.So(config.Millis(1500), convey.ShouldEqual, 1500*time.Millisecond)
		})
	})
}
