package balancewalk_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/rehabsim/internal/domain/balancewalk"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

type cueRecorder struct {
	cues []model.Cue
}

func (r *cueRecorder) Play(c model.Cue) { r.cues = append(r.cues, c) }

const seed = 7

// firstKickDelay mirrors the sequencer's first draw from a source seeded
// with seed.
func firstKickDelay() time.Duration {
	r := rand.New(rand.NewSource(seed))
	return 3*time.Second + time.Duration(r.Int63n(int64(3*time.Second)))
}

func newSequencer() (*balancewalk.Sequencer, *view.Page, *scheduler.Manual, *cueRecorder) {
	page := balancewalk.NewPage()
	clock := scheduler.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sound := &cueRecorder{}
	w := balancewalk.New(page, clock,
		balancewalk.WithRand(rand.New(rand.NewSource(seed))),
		balancewalk.WithPlayer(sound),
	)
	return w, page, clock, sound
}

func TestSequencerStart(t *testing.T) {
	Convey("Given a started balance-walk sequencer", t, func() {
		w, page, clock, _ := newSequencer()
		w.Start()

		Convey("Then it walks and calibrates", func() {
			So(w.Phase(), ShouldEqual, balancewalk.PhaseWalking)
			So(page.ByID(balancewalk.IDStatusText).Text(), ShouldEqual, balancewalk.StatusWalking)
			stats := w.Stats()
			So(stats.Tooltip, ShouldEqual, balancewalk.TipCalibrating)
			So(stats.TooltipVisible, ShouldBeTrue)
			So(w.Pending(), ShouldEqual, 2)
		})

		Convey("When the calibration notice expires", func() {
			clock.Advance(time.Second)

			Convey("Then the tooltip hides and only the kick stays armed", func() {
				So(w.Stats().TooltipVisible, ShouldBeFalse)
				So(w.Pending(), ShouldEqual, 1)
			})
		})

		Convey("Then the first kick lands in [3s, 6s)", func() {
			d := firstKickDelay()
			So(d, ShouldBeGreaterThanOrEqualTo, 3*time.Second)
			So(d, ShouldBeLessThan, 6*time.Second)
		})
	})
}

func TestSequencerKickCycle(t *testing.T) {
	Convey("Given a walking sequencer", t, func() {
		w, page, clock, sound := newSequencer()
		human := page.ByID(balancewalk.IDHumanModel)
		ball := page.ByID(balancewalk.IDFootball)
		w.Start()

		Convey("When the random kick delay elapses", func() {
			clock.Advance(firstKickDelay())

			Convey("Then the avatar freezes", func() {
				So(w.Phase(), ShouldEqual, balancewalk.PhaseFreezing)
				So(human.HasClass(balancewalk.ClassFreezing), ShouldBeTrue)
				So(page.ByID(balancewalk.IDStatusText).Text(), ShouldEqual, balancewalk.StatusFreezing)
				So(w.Stats().Tooltip, ShouldEqual, balancewalk.TipStabilizing)
				So(w.Stats().Kicks, ShouldEqual, 1)
			})

			Convey("And 300ms pass", func() {
				clock.Advance(300 * time.Millisecond)

				Convey("Then the wind-up starts", func() {
					So(w.Phase(), ShouldEqual, balancewalk.PhaseKicking)
					So(human.HasClass(balancewalk.ClassFreezing), ShouldBeFalse)
					So(human.HasClass(balancewalk.ClassKicking), ShouldBeTrue)
					So(w.Stats().Tooltip, ShouldEqual, balancewalk.TipKicking)
					So(ball.HasClass(balancewalk.ClassKicked), ShouldBeFalse)
				})

				Convey("And contact is reached 600ms later", func() {
					clock.Advance(600 * time.Millisecond)

					Convey("Then the ball is kicked with a swish", func() {
						So(w.Phase(), ShouldEqual, balancewalk.PhaseContact)
						So(ball.HasClass(balancewalk.ClassKicked), ShouldBeTrue)
						So(sound.cues, ShouldResemble, []model.Cue{model.CueSwish})
					})

					Convey("And the 1400ms kick completes", func() {
						clock.Advance(800 * time.Millisecond)

						Convey("Then it walks again with a fresh kick armed", func() {
							So(w.Phase(), ShouldEqual, balancewalk.PhaseWalking)
							So(human.HasClass(balancewalk.ClassKicking), ShouldBeFalse)
							So(ball.HasClass(balancewalk.ClassKicked), ShouldBeFalse)
							So(ball.Style("opacity"), ShouldEqual, "1")
							So(w.Stats().Kicking, ShouldBeFalse)
							So(w.Pending(), ShouldEqual, 1)
						})
					})
				})
			})
		})
	})
}

func TestSequencerRestart(t *testing.T) {
	Convey("Given a sequencer in the middle of a kick", t, func() {
		w, page, clock, sound := newSequencer()
		human := page.ByID(balancewalk.IDHumanModel)
		ball := page.ByID(balancewalk.IDFootball)
		w.Start()
		clock.Advance(firstKickDelay() + 400*time.Millisecond)
		So(w.Phase(), ShouldEqual, balancewalk.PhaseKicking)

		Convey("When it is restarted", func() {
			w.Restart()

			Convey("Then the avatar is idle at once", func() {
				So(w.Phase(), ShouldEqual, balancewalk.PhaseWalking)
				So(human.HasClass(balancewalk.ClassKicking), ShouldBeFalse)
				So(human.HasClass(balancewalk.ClassFreezing), ShouldBeFalse)
				So(w.Stats().Tooltip, ShouldEqual, balancewalk.TipRestarted)
				So(w.Pending(), ShouldEqual, 2)
			})

			Convey("Then no stale contact or reset fires later", func() {
				clock.Advance(1400 * time.Millisecond)
				So(sound.cues, ShouldBeEmpty)
				So(ball.HasClass(balancewalk.ClassKicked), ShouldBeFalse)
				So(w.Phase(), ShouldEqual, balancewalk.PhaseWalking)
				So(w.Stats().Kicks, ShouldEqual, 1)
			})

			Convey("Then the notice hides after 2000ms", func() {
				clock.Advance(1999 * time.Millisecond)
				So(w.Stats().TooltipVisible, ShouldBeTrue)
				clock.Advance(time.Millisecond)
				So(w.Stats().TooltipVisible, ShouldBeFalse)
			})
		})
	})
}

func TestSequencerToggles(t *testing.T) {
	Convey("Given a started sequencer", t, func() {
		w, page, clock, _ := newSequencer()
		w.Start()
		parts := page.QueryAny("arm", "leg", "leg-right", "leg-left", "thigh", "calf")
		So(len(parts), ShouldEqual, 8)

		Convey("When slow motion is switched on", func() {
			w.ToggleSlowMo()

			Convey("Then every body part cycles in 4s", func() {
				for _, p := range parts {
					So(p.Style("animation-duration"), ShouldEqual, "4s")
				}
				So(page.ByID(balancewalk.IDBtnSlowMo).HasClass(balancewalk.ClassActive), ShouldBeTrue)
				So(w.Stats().Tooltip, ShouldEqual, balancewalk.TipSlowMo)
				So(w.Stats().SlowMo, ShouldBeTrue)
			})

			Convey("Then kick timing is unchanged", func() {
				clock.Advance(firstKickDelay())
				So(w.Phase(), ShouldEqual, balancewalk.PhaseFreezing)
			})

			Convey("And switched off again", func() {
				w.ToggleSlowMo()

				Convey("Then the 2s cycle returns", func() {
					for _, p := range parts {
						So(p.Style("animation-duration"), ShouldEqual, "2s")
					}
					So(page.ByID(balancewalk.IDBtnSlowMo).HasClass(balancewalk.ClassActive), ShouldBeFalse)
					So(w.Stats().Tooltip, ShouldEqual, balancewalk.TipNormal)
				})
			})
		})

		Convey("When a newer notice replaces an older one", func() {
			w.ToggleSlowMo()
			clock.Advance(time.Second)
			w.ToggleSlowMo()
			clock.Advance(1000 * time.Millisecond)

			Convey("Then the older hide no longer applies", func() {
				So(w.Stats().TooltipVisible, ShouldBeTrue)
				clock.Advance(500 * time.Millisecond)
				So(w.Stats().TooltipVisible, ShouldBeFalse)
			})
		})

		Convey("When insights are toggled through a command", func() {
			w.Handle(model.Command{Kind: model.KindInsights})

			Convey("Then the panel and button light up", func() {
				So(page.ByID(balancewalk.IDInsightsPanel).HasClass(balancewalk.ClassVisible), ShouldBeTrue)
				So(page.ByID(balancewalk.IDBtnInsights).HasClass(balancewalk.ClassActive), ShouldBeTrue)
				So(w.Stats().InsightsVisible, ShouldBeTrue)
			})

			Convey("And toggled back", func() {
				w.Handle(model.Command{Kind: model.KindInsights})
				So(w.Stats().InsightsVisible, ShouldBeFalse)
			})
		})

		Convey("When stopped", func() {
			w.Stop()

			Convey("Then nothing is pending", func() {
				So(w.Pending(), ShouldEqual, 0)
				So(clock.Pending(), ShouldEqual, 0)
			})
		})
	})
}
