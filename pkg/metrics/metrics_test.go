package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every collector is registered under the rehabsim namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.kicks.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				found := false
				for _, f := range families {
					if f.GetName() == "rehabsim_widgets_kicks_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("demo"),
				WithSubsystem("sim"),
				WithMetricPrefix("kiosk"),
				WithReactionBuckets([]float64{100, 200}),
				WithLatencyBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"site": "clinic"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.kicks.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "demo_sim_kiosk_kicks_total")
				So(manager.refreshInterval, ShouldEqual, 3*time.Second)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When widget activity is recorded", func() {
			before := testutil.ToFloat64(globalManager.targetsHit.WithLabelValues(WidgetReactionTap))
			RecordTargetHit(WidgetReactionTap)
			RecordTargetHit(WidgetReactionTap)

			Convey("Then the labelled counter advances", func() {
				after := testutil.ToFloat64(globalManager.targetsHit.WithLabelValues(WidgetReactionTap))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateReactionScore(150, 3)
			UpdateReachAccuracy(75)
			UpdateReachROM(112)
			UpdatePendingTimers(WidgetBalanceWalk, 2)

			Convey("Then they hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.reactionScore), ShouldEqual, 150)
				So(testutil.ToFloat64(globalManager.reactionCombo), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.reachAccuracy), ShouldEqual, 75)
				So(testutil.ToFloat64(globalManager.reachROM), ShouldEqual, 112)
				So(testutil.ToFloat64(globalManager.pendingTimers.WithLabelValues(WidgetBalanceWalk)), ShouldEqual, 2)
			})
		})

		Convey("When loop, HTTP and system metrics are recorded", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordKick()
					RecordRestart(WidgetReachGrab)
					RecordTargetSpawned(WidgetReachGrab)
					RecordTargetMissed(WidgetReactionTap)
					RecordDuplicateHit()
					RecordReactionLatency(240)
					UpdateQueueSize(3)
					UpdateQueueCapacity(1024)
					RecordQueueEnqueueError("queue_full")
					RecordCommandHandled("tap", 0.2)
					RecordHTTPRequest("/stats", "GET", "200")
					RecordHTTPRequestDuration("/stats", "GET", "200", 1.5)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When the registry is requested", func() {
			Convey("Then the custom registry is returned", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
				So(Enabled(), ShouldBeTrue)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}
