package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/view"
)

// Target is an ephemeral spawned entity the user must reach or tap before
// it times out. It is owned by the widget that spawned it.
type Target struct {
	ID        string
	SpawnedAt time.Time
	LeftPct   float64
	TopPct    float64
	El        *view.Element
	Timeout   scheduler.Handle
	Hit       bool
}

// NewTarget creates a target with a fresh id and a positioned element.
func NewTarget(class string, at time.Time, leftPct, topPct float64) *Target {
	t := &Target{
		ID:        uuid.NewString(),
		SpawnedAt: at,
		LeftPct:   leftPct,
		TopPct:    topPct,
	}
	t.El = view.NewElement(t.ID, class)
	t.El.SetStyle("left", view.Percent(leftPct))
	t.El.SetStyle("top", view.Percent(topPct))
	return t
}

// Place lays the element out inside container using its percentage offsets.
func (t *Target) Place(container view.Rect, size float64) {
	t.El.SetRect(view.PlaceInside(container, t.LeftPct, t.TopPct, size, size))
}

// Age returns how long the target has been alive at now.
func (t *Target) Age(now time.Time) time.Duration {
	return now.Sub(t.SpawnedAt)
}
