package balancewalk

import (
	"github.com/okian/rehabsim/internal/domain/view"
)

// Element ids and classes the sequencer drives.
const (
	IDHumanModel      = "humanModel"
	IDFootball        = "football"
	IDStatusText      = "statusText"
	IDFeedbackTooltip = "feedbackTooltip"
	IDBtnRestart      = "btnRestart"
	IDBtnSlowMo       = "btnSlowMo"
	IDBtnInsights     = "btnInsights"
	IDInsightsPanel   = "insightsPanel"

	ClassStatusDot = "status-dot"
	ClassFreezing  = "freezing"
	ClassKicking   = "kicking"
	ClassKicked    = "kicked"
	ClassActive    = "active"
	ClassVisible   = "visible"
)

// animatedParts are the body-part classes whose cycle slow motion rewrites.
var animatedParts = []string{"arm", "leg", "leg-right", "leg-left", "thigh", "calf"}

// NewPage builds the balance-walk host page on an 800x500 viewport.
func NewPage() *view.Page {
	p := view.NewPage("balance-walk", view.Rect{W: 800, H: 500})
	root := p.Root()

	dot := view.NewElement("", ClassStatusDot)
	dot.SetRect(view.Rect{X: 16, Y: 22, W: 8, H: 8})
	status := view.NewElement(IDStatusText, "status-text")
	status.SetRect(view.Rect{X: 32, Y: 16, W: 360, H: 20})
	root.Append(dot)
	root.Append(status)

	tip := view.NewElement(IDFeedbackTooltip, "feedback-tooltip")
	tip.SetRect(view.Rect{X: 300, Y: 70, W: 200, H: 20})
	tip.SetStyle("opacity", "0")
	root.Append(tip)

	human := view.NewElement(IDHumanModel, "human-model")
	human.SetRect(view.Rect{X: 340, Y: 110, W: 120, H: 300})
	part := func(id string, r view.Rect, classes ...string) *view.Element {
		e := view.NewElement(id, classes...)
		e.SetRect(r)
		return e
	}
	human.Append(part("", view.Rect{X: 385, Y: 110, W: 30, H: 30}, "head"))
	human.Append(part("", view.Rect{X: 396, Y: 140, W: 8, H: 110}, "torso"))
	human.Append(part("", view.Rect{X: 372, Y: 150, W: 8, H: 90}, "arm", "arm-left"))
	human.Append(part("", view.Rect{X: 420, Y: 150, W: 8, H: 90}, "arm", "arm-right"))
	for _, side := range []struct {
		class string
		x     float64
	}{{"leg-left", 388}, {"leg-right", 404}} {
		leg := part("", view.Rect{X: side.x, Y: 250, W: 8, H: 160}, "leg", side.class)
		leg.Append(part("", view.Rect{X: side.x, Y: 250, W: 8, H: 80}, "thigh"))
		leg.Append(part("", view.Rect{X: side.x, Y: 330, W: 8, H: 80}, "calf"))
		human.Append(leg)
	}
	root.Append(human)

	ball := part(IDFootball, view.Rect{X: 440, Y: 392, W: 18, H: 18}, "football")
	ball.SetStyle("opacity", "1")
	root.Append(ball)

	for i, b := range []struct{ id, label string }{
		{IDBtnRestart, "Restart"},
		{IDBtnSlowMo, "Slow Mo"},
		{IDBtnInsights, "Insights"},
	} {
		btn := part(b.id, view.Rect{X: 16 + float64(i)*120, Y: 460, W: 110, H: 24}, "btn")
		btn.SetText(b.label)
		root.Append(btn)
	}

	panel := part(IDInsightsPanel, view.Rect{X: 560, Y: 60, W: 224, H: 180}, "insights-panel")
	panel.SetText("Gait symmetry 94%\nStance time 0.62s\nCadence 104 spm\nSway index low")
	root.Append(panel)

	return p
}
