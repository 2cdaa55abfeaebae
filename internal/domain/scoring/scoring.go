// Package scoring holds the arithmetic behind the widgets' readouts: reaction
// points, letter grades, accuracy and the progress meters.
package scoring

import (
	"math"
	"time"
)

// Default grading configuration constants.
const (
	defaultGradeS = 250 * time.Millisecond
	defaultGradeA = 300 * time.Millisecond
	defaultGradeB = 400 * time.Millisecond

	// MinLatency is the smallest latency points are computed from.
	MinLatency = time.Millisecond

	pointsNumerator = 1000 * 10
	maxMeter        = 100
	fullROMDegrees  = 180
)

// NoGrade is shown before any reaction has been recorded.
const NoGrade = "-"

// Option applies a configuration option to a Grader.
type Option func(*Grader)

// WithThresholds sets the upper average-latency bounds for S, A and B.
// Thresholds that are not strictly increasing are ignored.
func WithThresholds(s, a, b time.Duration) Option {
	return func(g *Grader) {
		if s > 0 && a > s && b > a {
			g.s, g.a, g.b = s, a, b
		}
	}
}

// Grader maps an average reaction latency to a letter.
type Grader struct {
	s, a, b time.Duration
}

// NewGrader creates a grader with the default 250/300/400 ms bounds.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{
		s: defaultGradeS,
		a: defaultGradeA,
		b: defaultGradeB,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade returns S, A, B or C for avg.
func (g *Grader) Grade(avg time.Duration) string {
	switch {
	case avg < g.s:
		return "S"
	case avg < g.a:
		return "A"
	case avg < g.b:
		return "B"
	default:
		return "C"
	}
}

var defaultGrader = NewGrader()

// Grade grades avg with the default bounds.
func Grade(avg time.Duration) string {
	return defaultGrader.Grade(avg)
}

// ReactionPoints returns round(1000/latencyMs*10) * combo. Latency is floored
// at MinLatency so an instant tap cannot divide by zero.
func ReactionPoints(latency time.Duration, combo int) int {
	ms := float64(max(latency, MinLatency)) / float64(time.Millisecond)
	return int(math.Round(pointsNumerator/ms)) * combo
}

// Accuracy returns round(reps/attempts*100), or 100 before any attempt.
func Accuracy(reps, attempts int) int {
	if attempts <= 0 {
		return maxMeter
	}
	return int(math.Round(float64(reps) / float64(attempts) * 100))
}

// Focus returns the focus meter fill for combo, capped at 100.
func Focus(combo int) int {
	return min(maxMeter, combo*10)
}

// ROMFill maps a range-of-motion sample onto a progress fill in [0, 100].
func ROMFill(deg int) float64 {
	return math.Min(maxMeter, float64(deg)/fullROMDegrees*100)
}

// Average returns the arithmetic mean of latencies rounded to the
// millisecond. It is zero for an empty history.
func Average(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	mean := float64(sum) / float64(len(latencies)) / float64(time.Millisecond)
	return time.Duration(math.Round(mean)) * time.Millisecond
}

// Decay multiplies delay by factor and clamps the result at floor. A zero
// floor leaves the decay unbounded.
func Decay(delay time.Duration, factor float64, floor time.Duration) time.Duration {
	next := time.Duration(math.Round(float64(delay) * factor))
	if floor > 0 && next < floor {
		return floor
	}
	return next
}
