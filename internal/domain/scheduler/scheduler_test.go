package scheduler_test

import (
	"testing"
	"time"

	"github.com/okian/rehabsim/internal/domain/scheduler"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		m := scheduler.NewManual(epoch)

		Convey("When nothing is scheduled", func() {
			ran := m.Advance(time.Second)

			Convey("Then only the clock moves", func() {
				So(ran, ShouldEqual, 0)
				So(m.Now(), ShouldEqual, epoch.Add(time.Second))
				So(m.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When callbacks are scheduled out of order", func() {
			var order []string
			m.After(300*time.Millisecond, func() { order = append(order, "c") })
			m.After(100*time.Millisecond, func() { order = append(order, "a") })
			m.After(200*time.Millisecond, func() { order = append(order, "b") })

			Convey("Then they run in due order", func() {
				So(m.Pending(), ShouldEqual, 3)
				So(m.Advance(time.Second), ShouldEqual, 3)
				So(order, ShouldResemble, []string{"a", "b", "c"})
			})

			Convey("Then a partial advance runs only what is due", func() {
				So(m.Advance(150*time.Millisecond), ShouldEqual, 1)
				So(order, ShouldResemble, []string{"a"})
				So(m.Pending(), ShouldEqual, 2)
			})
		})

		Convey("When two callbacks share a due time", func() {
			var order []int
			for i := 0; i < 5; i++ {
				m.After(50*time.Millisecond, func() { order = append(order, i) })
			}
			m.Advance(50 * time.Millisecond)

			Convey("Then they run in scheduling order", func() {
				So(order, ShouldResemble, []int{0, 1, 2, 3, 4})
			})
		})

		Convey("When a callback schedules another inside the window", func() {
			var at []time.Duration
			m.After(100*time.Millisecond, func() {
				at = append(at, m.Now().Sub(epoch))
				m.After(100*time.Millisecond, func() {
					at = append(at, m.Now().Sub(epoch))
				})
			})
			ran := m.Advance(250 * time.Millisecond)

			Convey("Then both run at their own virtual time", func() {
				So(ran, ShouldEqual, 2)
				So(at, ShouldResemble, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond})
				So(m.Now(), ShouldEqual, epoch.Add(250*time.Millisecond))
			})
		})

		Convey("When a pending callback is cancelled", func() {
			fired := false
			h := m.After(time.Second, func() { fired = true })

			Convey("Then it never runs", func() {
				So(m.Cancel(h), ShouldBeTrue)
				So(m.Cancel(h), ShouldBeFalse)
				m.Advance(2 * time.Second)
				So(fired, ShouldBeFalse)
			})
		})

		Convey("When a negative delay is given", func() {
			fired := false
			m.After(-time.Second, func() { fired = true })
			m.Advance(0)

			Convey("Then it runs immediately", func() {
				So(fired, ShouldBeTrue)
			})
		})

		Convey("When jumping to the next callback", func() {
			m.After(700*time.Millisecond, func() {})

			Convey("Then the clock lands on its due time", func() {
				So(m.RunNext(), ShouldBeTrue)
				So(m.Now(), ShouldEqual, epoch.Add(700*time.Millisecond))
				So(m.RunNext(), ShouldBeFalse)
			})
		})
	})
}

func TestGroup(t *testing.T) {
	Convey("Given a group over a manual scheduler", t, func() {
		m := scheduler.NewManual(epoch)
		g := scheduler.NewGroup(m)
		other := scheduler.NewGroup(m)

		Convey("When a callback runs", func() {
			g.After(10*time.Millisecond, func() {})
			So(g.Pending(), ShouldEqual, 1)
			m.Advance(10 * time.Millisecond)

			Convey("Then the group forgets it", func() {
				So(g.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When everything is cancelled", func() {
			fired := 0
			g.After(100*time.Millisecond, func() { fired++ })
			g.After(200*time.Millisecond, func() {
				fired++
				g.After(10*time.Millisecond, func() { fired++ })
			})
			other.After(150*time.Millisecond, func() { fired += 100 })

			n := g.CancelAll()
			m.Advance(time.Second)

			Convey("Then only the other group's callbacks run", func() {
				So(n, ShouldEqual, 2)
				So(fired, ShouldEqual, 100)
				So(g.Pending(), ShouldEqual, 0)
				So(m.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When cancelling a handle it does not own", func() {
			h := other.After(time.Second, func() {})

			Convey("Then the handle stays armed", func() {
				So(g.Cancel(h), ShouldBeFalse)
				So(g.Cancel(0), ShouldBeFalse)
				So(other.Pending(), ShouldEqual, 1)
				So(other.Cancel(h), ShouldBeTrue)
			})
		})
	})
}
