// Package types contains the JSON readouts the widgets publish.
package types

import "time"

// BalanceWalkStats is the balance-walk readout.
type BalanceWalkStats struct {
	Phase           string `json:"phase"`
	Kicking         bool   `json:"kicking"`
	SlowMo          bool   `json:"slow_mo"`
	InsightsVisible bool   `json:"insights_visible"`
	Kicks           int    `json:"kicks"`
	Status          string `json:"status"`
	Tooltip         string `json:"tooltip"`
	TooltipVisible  bool   `json:"tooltip_visible"`
}

// ReachGrabStats is the reach-and-grab readout.
type ReachGrabStats struct {
	Reps         int    `json:"reps"`
	Attempts     int    `json:"attempts"`
	Accuracy     int    `json:"accuracy"`
	ROM          int    `json:"rom_deg"`
	Difficulty   string `json:"difficulty"`
	SlowMo       bool   `json:"slow_mo"`
	Reaching     bool   `json:"reaching"`
	TargetActive bool   `json:"target_active"`
	Status       string `json:"status"`
}

// ReactionTapStats is the reaction-tap readout.
type ReactionTapStats struct {
	Active         bool    `json:"active"`
	SpeedMode      bool    `json:"speed_mode"`
	Score          int     `json:"score"`
	Combo          int     `json:"combo"`
	Hits           int     `json:"hits"`
	Misses         int     `json:"misses"`
	AvgMS          int     `json:"avg_ms"`
	Grade          string  `json:"grade"`
	Focus          int     `json:"focus"`
	CurrentDelayMS float64 `json:"current_delay_ms"`
	Targets        int     `json:"targets"`
	Status         string  `json:"status"`
}

// Snapshot is an immutable copy of every widget readout, published by the
// event loop after each command.
type Snapshot struct {
	Seq         uint64           `json:"seq"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Focused     string           `json:"focused"`
	BalanceWalk BalanceWalkStats `json:"balance_walk"`
	ReachGrab   ReachGrabStats   `json:"reach_grab"`
	ReactionTap ReactionTapStats `json:"reaction_tap"`
}
