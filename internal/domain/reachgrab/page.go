package reachgrab

import (
	"github.com/okian/rehabsim/internal/domain/view"
)

// Element ids and classes the trainer drives.
const (
	IDSimViewport     = "simViewport"
	IDArmLeft         = "armLeft"
	IDArmRight        = "armRight"
	IDTargetContainer = "targetContainer"
	IDStatusText      = "statusText"
	IDRepCount        = "repCount"
	IDAccuracyVal     = "accuracyVal"
	IDRomVal          = "romVal"
	IDBtnRestart      = "btnRestart"
	IDBtnSlowMo       = "btnSlowMo"

	ClassStatusDot = "status-dot"
	ClassRomFill   = "rom-fill"
	ClassBtnToggle = "btn-toggle"
	ClassHand      = "hand"
	ClassTarget    = "target-obj"
	ClassGrabbed   = "grabbed"
	ClassGrabbing  = "grabbing"
	ClassActive    = "active"

	// TargetSize is the edge of a target box in page pixels.
	TargetSize = 60
)

// DifficultyButtonID returns the id of the toggle for level.
func DifficultyButtonID(level string) string {
	return "btnDifficulty-" + level
}

// NewPage builds the reach-and-grab host page on an 800x500 viewport.
// levels lists the difficulty toggles in display order.
func NewPage(levels ...string) *view.Page {
	if len(levels) == 0 {
		levels = []string{"easy", "medium", "hard"}
	}
	p := view.NewPage("reach-grab", view.Rect{W: 800, H: 500})
	root := p.Root()
	add := func(parent *view.Element, id string, r view.Rect, classes ...string) *view.Element {
		e := view.NewElement(id, classes...)
		e.SetRect(r)
		parent.Append(e)
		return e
	}

	// The scene the arms reach into. The control bar sits below it.
	add(root, IDSimViewport, view.Rect{X: 0, Y: 0, W: 800, H: 448}, "sim-viewport")

	add(root, "", view.Rect{X: 16, Y: 22, W: 8, H: 8}, ClassStatusDot)
	add(root, IDStatusText, view.Rect{X: 32, Y: 16, W: 360, H: 20}, "status-text")

	add(root, IDTargetContainer, view.Rect{X: 0, Y: 0, W: 800, H: 500}, "target-container")

	add(root, "", view.Rect{X: 385, Y: 130, W: 30, H: 30}, "head")
	add(root, "", view.Rect{X: 396, Y: 160, W: 8, H: 120}, "torso")
	for _, arm := range []struct {
		id, side string
		x        float64
	}{{IDArmLeft, "arm-left", 370}, {IDArmRight, "arm-right", 422}} {
		a := add(root, arm.id, view.Rect{X: arm.x, Y: 170, W: 8, H: 90}, "arm", arm.side)
		a.SetStyle("transform", view.Rotate(0))
		add(a, "", view.Rect{X: arm.x - 2, Y: 256, W: 12, H: 12}, ClassHand)
	}

	add(root, "", view.Rect{X: 600, Y: 16, W: 80, H: 20}, "stat-label").SetText("Reps")
	add(root, IDRepCount, view.Rect{X: 690, Y: 16, W: 90, H: 20}, "stat-value").SetText("0")
	add(root, "", view.Rect{X: 600, Y: 40, W: 80, H: 20}, "stat-label").SetText("Accuracy")
	add(root, IDAccuracyVal, view.Rect{X: 690, Y: 40, W: 90, H: 20}, "stat-value").SetText("100%")
	add(root, "", view.Rect{X: 600, Y: 64, W: 80, H: 20}, "stat-label").SetText("ROM")
	add(root, IDRomVal, view.Rect{X: 690, Y: 64, W: 90, H: 20}, "stat-value").SetText("0°")
	bar := add(root, "", view.Rect{X: 600, Y: 88, W: 180, H: 8}, "rom-bar")
	add(bar, "", view.Rect{X: 600, Y: 88, W: 180, H: 8}, ClassRomFill).SetStyle("width", "0%")

	x := 16.0
	for _, level := range levels {
		b := add(root, DifficultyButtonID(level), view.Rect{X: x, Y: 460, W: 90, H: 24}, "btn", ClassBtnToggle)
		b.SetText(level)
		if level == "medium" {
			b.AddClass(ClassActive)
		}
		x += 100
	}
	add(root, IDBtnRestart, view.Rect{X: x + 20, Y: 460, W: 100, H: 24}, "btn").SetText("Restart")
	add(root, IDBtnSlowMo, view.Rect{X: x + 130, Y: 460, W: 100, H: 24}, "btn").SetText("Slow Mo")

	return p
}
