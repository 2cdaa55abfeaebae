package reactiontap

import (
	"github.com/okian/rehabsim/internal/domain/view"
)

// Element ids and classes the game drives.
const (
	IDTapLayer    = "tapLayer"
	IDGameOverlay = "gameOverlay"
	IDArmLeft     = "armLeft"
	IDArmRight    = "armRight"
	IDScoreVal    = "scoreVal"
	IDComboVal    = "comboVal"
	IDAvgTime     = "avgTime"
	IDFocusFill   = "focusFill"
	IDGradeVal    = "gradeVal"
	IDStatusMsg   = "statusMsg"
	IDBtnStart    = "btnStartGame"
	IDBtnRestart  = "btnRestart"
	IDBtnSpeed    = "btnSpeed"

	ClassTarget = "tap-target"
	ClassHit    = "hit"
	ClassHidden = "hidden"
	ClassActive = "active"

	// TargetSize is the edge of a tap target in page pixels.
	TargetSize = 56
)

// NewPage builds the reaction-tap host page on an 800x500 viewport.
func NewPage() *view.Page {
	p := view.NewPage("reaction-tap", view.Rect{W: 800, H: 500})
	root := p.Root()
	add := func(parent *view.Element, id string, r view.Rect, classes ...string) *view.Element {
		e := view.NewElement(id, classes...)
		e.SetRect(r)
		parent.Append(e)
		return e
	}

	add(root, IDTapLayer, view.Rect{X: 0, Y: 40, W: 800, H: 400}, "tap-layer")

	add(root, "", view.Rect{X: 385, Y: 300, W: 30, H: 30}, "head")
	add(root, "", view.Rect{X: 396, Y: 330, W: 8, H: 110}, "torso")
	add(root, IDArmLeft, view.Rect{X: 370, Y: 340, W: 8, H: 80}, "arm", "arm-left")
	add(root, IDArmRight, view.Rect{X: 422, Y: 340, W: 8, H: 80}, "arm", "arm-right")

	hud := []struct{ label, id, initial string }{
		{"Score", IDScoreVal, "0"},
		{"Combo", IDComboVal, "x1"},
		{"Avg", IDAvgTime, "-- ms"},
		{"Grade", IDGradeVal, "-"},
	}
	for i, h := range hud {
		x := 16 + float64(i)*150
		add(root, "", view.Rect{X: x, Y: 8, W: 60, H: 20}, "stat-label").SetText(h.label)
		add(root, h.id, view.Rect{X: x + 64, Y: 8, W: 80, H: 20}, "stat-value").SetText(h.initial)
	}
	bar := add(root, "", view.Rect{X: 616, Y: 14, W: 168, H: 8}, "focus-bar")
	add(bar, IDFocusFill, view.Rect{X: 616, Y: 14, W: 168, H: 8}, "focus-fill").SetStyle("width", "0%")

	add(root, IDStatusMsg, view.Rect{X: 250, Y: 444, W: 300, H: 16}, "status-msg").SetText("Press Start")

	overlay := add(root, IDGameOverlay, view.Rect{X: 250, Y: 180, W: 300, H: 120}, "game-overlay")
	overlay.SetText("Reaction Tap\nTap targets as fast as you can")

	for i, b := range []struct{ id, label string }{
		{IDBtnStart, "Start"},
		{IDBtnRestart, "Restart"},
		{IDBtnSpeed, "Speed Mode"},
	} {
		add(root, b.id, view.Rect{X: 16 + float64(i)*120, Y: 468, W: 110, H: 24}, "btn").SetText(b.label)
	}

	return p
}
