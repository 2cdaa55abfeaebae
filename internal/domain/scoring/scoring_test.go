package scoring_test

import (
	"testing"
	"time"

	scoring "github.com/okian/rehabsim/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReactionPoints(t *testing.T) {
	Convey("Given reaction latencies", t, func() {
		Convey("When latency is 200ms at combo 3", func() {
			Convey("Then it scores round(50)*3 = 150", func() {
				So(scoring.ReactionPoints(200*time.Millisecond, 3), ShouldEqual, 150)
			})
		})

		Convey("When the division is not exact", func() {
			Convey("Then the base is rounded before the combo multiplies it", func() {
				// 10000/333 = 30.03 -> 30
				So(scoring.ReactionPoints(333*time.Millisecond, 2), ShouldEqual, 60)
				// 10000/400 = 25
				So(scoring.ReactionPoints(400*time.Millisecond, 1), ShouldEqual, 25)
			})
		})

		Convey("When latency is zero", func() {
			Convey("Then it is floored at one millisecond", func() {
				So(scoring.ReactionPoints(0, 1), ShouldEqual, 10000)
				So(scoring.ReactionPoints(-time.Second, 2), ShouldEqual, 20000)
			})
		})
	})
}

func TestGrade(t *testing.T) {
	Convey("Given the default grader", t, func() {
		Convey("Then averages map onto letters at the 250/300/400 bounds", func() {
			So(scoring.Grade(200*time.Millisecond), ShouldEqual, "S")
			So(scoring.Grade(249*time.Millisecond), ShouldEqual, "S")
			So(scoring.Grade(250*time.Millisecond), ShouldEqual, "A")
			So(scoring.Grade(299*time.Millisecond), ShouldEqual, "A")
			So(scoring.Grade(300*time.Millisecond), ShouldEqual, "B")
			So(scoring.Grade(399*time.Millisecond), ShouldEqual, "B")
			So(scoring.Grade(400*time.Millisecond), ShouldEqual, "C")
			So(scoring.Grade(2*time.Second), ShouldEqual, "C")
		})
	})

	Convey("Given a grader with custom thresholds", t, func() {
		g := scoring.NewGrader(scoring.WithThresholds(100*time.Millisecond, 200*time.Millisecond, 300*time.Millisecond))

		Convey("Then it uses them", func() {
			So(g.Grade(150*time.Millisecond), ShouldEqual, "A")
		})

		Convey("When thresholds are not increasing", func() {
			bad := scoring.NewGrader(scoring.WithThresholds(300*time.Millisecond, 200*time.Millisecond, 100*time.Millisecond))

			Convey("Then the defaults stay", func() {
				So(bad.Grade(200*time.Millisecond), ShouldEqual, "S")
			})
		})
	})
}

func TestAccuracy(t *testing.T) {
	Convey("Given rep and attempt counts", t, func() {
		Convey("When no attempt has been made", func() {
			Convey("Then accuracy reads 100", func() {
				So(scoring.Accuracy(0, 0), ShouldEqual, 100)
			})
		})

		Convey("When 3 of 4 attempts landed", func() {
			Convey("Then accuracy is 75", func() {
				So(scoring.Accuracy(3, 4), ShouldEqual, 75)
			})
		})

		Convey("When a target is up but not yet grabbed", func() {
			Convey("Then accuracy follows the ratio", func() {
				So(scoring.Accuracy(0, 1), ShouldEqual, 0)
				So(scoring.Accuracy(1, 2), ShouldEqual, 50)
				So(scoring.Accuracy(2, 3), ShouldEqual, 67)
			})
		})
	})
}

func TestMeters(t *testing.T) {
	Convey("Given the progress meters", t, func() {
		Convey("Then focus is combo*10 capped at 100", func() {
			So(scoring.Focus(1), ShouldEqual, 10)
			So(scoring.Focus(7), ShouldEqual, 70)
			So(scoring.Focus(10), ShouldEqual, 100)
			So(scoring.Focus(12), ShouldEqual, 100)
		})

		Convey("Then ROM fill is deg/180 capped at 100", func() {
			So(scoring.ROMFill(90), ShouldEqual, 50)
			So(scoring.ROMFill(0), ShouldEqual, 0)
			So(scoring.ROMFill(270), ShouldEqual, 100)
		})
	})
}

func TestAverageAndDecay(t *testing.T) {
	Convey("Given a latency history", t, func() {
		Convey("When it is empty", func() {
			Convey("Then the average is zero", func() {
				So(scoring.Average(nil), ShouldEqual, 0)
			})
		})

		Convey("When it has entries", func() {
			h := []time.Duration{200 * time.Millisecond, 250 * time.Millisecond, 301 * time.Millisecond}

			Convey("Then the mean is rounded to the millisecond", func() {
				So(scoring.Average(h), ShouldEqual, 250*time.Millisecond)
			})
		})
	})

	Convey("Given a spawn delay", t, func() {
		Convey("When decaying without a floor", func() {
			Convey("Then it shrinks by the factor", func() {
				So(scoring.Decay(2000*time.Millisecond, 0.95, 0), ShouldEqual, 1900*time.Millisecond)
			})
		})

		Convey("When decaying below a floor", func() {
			Convey("Then the floor holds", func() {
				So(scoring.Decay(500*time.Millisecond, 0.5, 400*time.Millisecond), ShouldEqual, 400*time.Millisecond)
			})
		})
	})
}
