// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Widget names a simulation widget.
type Widget string

// Known widgets.
const (
	BalanceWalk Widget = "balance-walk"
	ReachGrab   Widget = "reach-grab"
	ReactionTap Widget = "reaction-tap"
)

// Widgets lists every widget in display order.
var Widgets = []Widget{BalanceWalk, ReachGrab, ReactionTap}

// ParseWidget validates a widget name.
func ParseWidget(s string) (Widget, error) {
	for _, w := range Widgets {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown widget %q", s)
}

// Kind is the type of a command.
type Kind string

// Command kinds. User input kinds map one to one onto widget controls.
const (
	KindRestart    Kind = "restart"    // balance-walk restart, reach-grab/reaction-tap reset
	KindSlowMo     Kind = "slowmo"     // balance-walk and reach-grab
	KindInsights   Kind = "insights"   // balance-walk
	KindDifficulty Kind = "difficulty" // reach-grab, Level set
	KindReach      Kind = "reach"      // reach-grab, pointer X/Y set
	KindStart      Kind = "start"      // reaction-tap
	KindSpeed      Kind = "speed"      // reaction-tap speed mode
	KindTap        Kind = "tap"        // reaction-tap, TargetID or pointer X/Y set
	KindFocus      Kind = "focus"      // host switches the visible widget
	KindFrame      Kind = "frame"      // host redraw tick, Fire set
	KindTimer      Kind = "timer"      // scheduler expiry, Fire set
)

// Command is one unit of work for the event loop: user input, a redraw tick
// or a timer expiry.
type Command struct {
	ID       string
	Widget   Widget
	Kind     Kind
	Level    string
	X, Y     float64
	TargetID string
	At       time.Time

	// Fire runs on the loop goroutine: a scheduler callback for KindTimer,
	// the host's redraw for KindFrame.
	Fire func()
}

// IsInput reports whether the command came from the user.
func (c Command) IsInput() bool {
	switch c.Kind {
	case KindFocus, KindFrame, KindTimer:
		return false
	default:
		return true
	}
}
