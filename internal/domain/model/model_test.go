package model_test

import (
	"testing"
	"time"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseWidget(t *testing.T) {
	convey.Convey("Given widget names", t, func() {
		convey.Convey("When the name is known", func() {
			w, err := model.ParseWidget("reach-grab")

			convey.Convey("Then it parses", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w, convey.ShouldEqual, model.ReachGrab)
			})
		})

		convey.Convey("When the name is unknown", func() {
			_, err := model.ParseWidget("pinball")

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "pinball")
			})
		})
	})
}

func TestCommand(t *testing.T) {
	convey.Convey("Given commands of every origin", t, func() {
		convey.Convey("Then only user input counts as input", func() {
			convey.So(model.Command{Kind: model.KindTap}.IsInput(), convey.ShouldBeTrue)
			convey.So(model.Command{Kind: model.KindRestart}.IsInput(), convey.ShouldBeTrue)
			convey.So(model.Command{Kind: model.KindFrame}.IsInput(), convey.ShouldBeFalse)
			convey.So(model.Command{Kind: model.KindTimer}.IsInput(), convey.ShouldBeFalse)
			convey.So(model.Command{Kind: model.KindFocus}.IsInput(), convey.ShouldBeFalse)
		})
	})
}

func TestTarget(t *testing.T) {
	convey.Convey("Given a new target", t, func() {
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		tg := model.NewTarget("tap-target", at, 25, 50)

		convey.Convey("Then its element carries id, class and position", func() {
			convey.So(tg.ID, convey.ShouldNotBeEmpty)
			convey.So(tg.El.ID(), convey.ShouldEqual, tg.ID)
			convey.So(tg.El.HasClass("tap-target"), convey.ShouldBeTrue)
			convey.So(tg.El.Style("left"), convey.ShouldEqual, "25%")
			convey.So(tg.El.Style("top"), convey.ShouldEqual, "50%")
		})

		convey.Convey("Then ids are unique", func() {
			other := model.NewTarget("tap-target", at, 25, 50)
			convey.So(other.ID, convey.ShouldNotEqual, tg.ID)
		})

		convey.Convey("When placed in a container", func() {
			tg.Place(view.Rect{X: 0, Y: 0, W: 800, H: 500}, 60)

			convey.Convey("Then its box follows the percentages", func() {
				convey.So(tg.El.Rect(), convey.ShouldResemble, view.Rect{X: 200, Y: 250, W: 60, H: 60})
			})
		})

		convey.Convey("Then its age is measured from spawn", func() {
			convey.So(tg.Age(at.Add(200*time.Millisecond)), convey.ShouldEqual, 200*time.Millisecond)
		})
	})
}
