package autoplay

import (
	"fmt"
	"time"

	"github.com/okian/rehabsim/internal/domain/balancewalk"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scoring"
	"github.com/okian/rehabsim/internal/domain/types"
)

// maxPending bounds the callbacks one widget may hold at once. A growing
// count means a chain was re-armed without cancelling its predecessor.
const maxPending = 8

// Violation is one broken property seen during a run.
type Violation struct {
	At     time.Duration `json:"at"`
	Widget string        `json:"widget"`
	Rule   string        `json:"rule"`
	Detail string        `json:"detail"`
}

// observation is what the runner saw after one tick.
type observation struct {
	elapsed   time.Duration
	snap      types.Snapshot
	pending   map[model.Widget]int
	liveTaps  int
	reachLive int
	resets    map[model.Widget]bool
}

// verifier checks the widget readouts tick by tick.
type verifier struct {
	maxCombo   int
	prev       types.Snapshot
	have       bool
	violations []Violation
}

func newVerifier(maxCombo int) *verifier {
	return &verifier{maxCombo: maxCombo}
}

func (v *verifier) fail(at time.Duration, w model.Widget, rule, format string, args ...any) {
	v.violations = append(v.violations, Violation{
		At:     at,
		Widget: string(w),
		Rule:   rule,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (v *verifier) observe(o *observation) {
	v.checkWalk(o)
	v.checkReach(o)
	v.checkTap(o)
	for w, n := range o.pending {
		if n > maxPending {
			v.fail(o.elapsed, w, "pending_bounded", "%d callbacks pending", n)
		}
	}
	v.prev = o.snap
	v.have = true
}

func (v *verifier) checkWalk(o *observation) {
	st := o.snap.BalanceWalk
	walking := st.Phase == balancewalk.PhaseWalking.String()
	if st.Kicking == walking {
		v.fail(o.elapsed, model.BalanceWalk, "phase_consistent", "phase %s with kicking=%t", st.Phase, st.Kicking)
	}
	if v.have && st.Kicks < v.prev.BalanceWalk.Kicks {
		v.fail(o.elapsed, model.BalanceWalk, "kicks_monotonic", "kicks fell from %d to %d", v.prev.BalanceWalk.Kicks, st.Kicks)
	}
}

func (v *verifier) checkReach(o *observation) {
	st := o.snap.ReachGrab
	if st.Reps > st.Attempts {
		v.fail(o.elapsed, model.ReachGrab, "reps_le_attempts", "%d reps over %d attempts", st.Reps, st.Attempts)
	}
	if want := scoring.Accuracy(st.Reps, st.Attempts); st.Accuracy != want {
		v.fail(o.elapsed, model.ReachGrab, "accuracy_formula", "accuracy %d, want %d", st.Accuracy, want)
	}
	if o.reachLive > 1 {
		v.fail(o.elapsed, model.ReachGrab, "single_target", "%d targets on screen", o.reachLive)
	}
	if v.have && !o.resets[model.ReachGrab] && st.Reps < v.prev.ReachGrab.Reps {
		v.fail(o.elapsed, model.ReachGrab, "reps_monotonic", "reps fell from %d to %d", v.prev.ReachGrab.Reps, st.Reps)
	}
}

func (v *verifier) checkTap(o *observation) {
	st := o.snap.ReactionTap
	if st.Combo < 1 || st.Combo > v.maxCombo {
		v.fail(o.elapsed, model.ReactionTap, "combo_range", "combo %d outside [1, %d]", st.Combo, v.maxCombo)
	}
	if o.liveTaps > 1 {
		v.fail(o.elapsed, model.ReactionTap, "single_target", "%d live targets", o.liveTaps)
	}
	if want := scoring.Focus(st.Combo); st.Focus != want {
		v.fail(o.elapsed, model.ReactionTap, "focus_formula", "focus %d, want %d", st.Focus, want)
	}
	if !v.have || o.resets[model.ReactionTap] {
		return
	}
	prev := v.prev.ReactionTap
	if st.Score < prev.Score {
		v.fail(o.elapsed, model.ReactionTap, "score_monotonic", "score fell from %d to %d", prev.Score, st.Score)
	}
	if st.Misses > prev.Misses && st.Hits == prev.Hits && st.Combo != 1 {
		v.fail(o.elapsed, model.ReactionTap, "miss_resets_combo", "combo %d after a miss", st.Combo)
	}
	if st.Hits > prev.Hits && st.Misses == prev.Misses && st.Combo <= prev.Combo && prev.Combo < v.maxCombo {
		v.fail(o.elapsed, model.ReactionTap, "hit_raises_combo", "combo %d after %d", st.Combo, prev.Combo)
	}
}

// finish checks the run totals against the input that produced them.
func (v *verifier) finish(elapsed time.Duration, snap types.Snapshot, in Inputs, drove func(model.Widget) bool) {
	if drove(model.ReactionTap) && snap.ReactionTap.Hits != in.Taps {
		v.fail(elapsed, model.ReactionTap, "hit_idempotent", "%d hits from %d distinct taps and %d duplicates",
			snap.ReactionTap.Hits, in.Taps, in.DuplicateTaps)
	}
}
