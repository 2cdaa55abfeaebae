// Package balancewalk drives the balance-walk avatar: it walks, pauses,
// kicks a ball on a randomized interval and returns to walking.
//
// Phases run Walking -> Freezing -> Kicking -> Contact -> Walking. Every
// transition is a single-shot callback armed through one scheduler.Group, so
// Restart can cancel the whole chain in one call.
package balancewalk

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

// Phase is the sequencer state.
type Phase int

// Phases in cycle order.
const (
	PhaseWalking Phase = iota
	PhaseFreezing
	PhaseKicking
	PhaseContact
)

func (p Phase) String() string {
	switch p {
	case PhaseWalking:
		return "walking"
	case PhaseFreezing:
		return "freezing"
	case PhaseKicking:
		return "kicking"
	case PhaseContact:
		return "contact"
	default:
		return "unknown"
	}
}

// Status line texts and dot colors.
const (
	StatusWalking  = "Walking - Acquiring Balance"
	StatusFreezing = "Gait Pause - Stabilizing"
	StatusKicking  = "Single Leg Stance - Kicking"

	TipCalibrating = "Calibrating Gait..."
	TipStabilizing = "Stabilizing..."
	TipKicking     = "Kicking Motion Detect"
	TipRestarted   = "Simulation Restarted"
	TipSlowMo      = "Slow Motion Active"
	TipNormal      = "Normal Speed"

	colorWalking  = "var(--accent-secondary)"
	colorFreezing = "var(--primary-light)"
	colorKicking  = "var(--primary-color)"
)

// Timings holds every delay the sequencer uses.
type Timings struct {
	KickMinDelay  time.Duration
	KickJitter    time.Duration
	Freeze        time.Duration
	Contact       time.Duration
	Kick          time.Duration
	Calibrate     time.Duration
	RestartNotice time.Duration
	SlowMoNotice  time.Duration
	Cycle         time.Duration
	SlowCycle     time.Duration
}

// DefaultTimings returns the stock demo timings.
func DefaultTimings() Timings {
	return Timings{
		KickMinDelay:  3000 * time.Millisecond,
		KickJitter:    3000 * time.Millisecond,
		Freeze:        300 * time.Millisecond,
		Contact:       600 * time.Millisecond,
		Kick:          1400 * time.Millisecond,
		Calibrate:     1000 * time.Millisecond,
		RestartNotice: 2000 * time.Millisecond,
		SlowMoNotice:  1500 * time.Millisecond,
		Cycle:         2 * time.Second,
		SlowCycle:     4 * time.Second,
	}
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithTimings overrides the default delays.
func WithTimings(t Timings) Option {
	return func(s *Sequencer) { s.t = t }
}

// WithRand injects the random source for kick delays.
func WithRand(r *rand.Rand) Option {
	return func(s *Sequencer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPlayer sets the sound cue player.
func WithPlayer(p model.Player) Option {
	return func(s *Sequencer) {
		if p != nil {
			s.sound = p
		}
	}
}

// Sequencer is the balance-walk widget. All methods must be called from the
// scheduler's goroutine.
type Sequencer struct {
	t      Timings
	timers *scheduler.Group
	rng    *rand.Rand
	log    logger.Logger
	sound  model.Player

	human, ball, status, dot, tooltip *view.Element
	btnSlowMo, btnInsights, insights  *view.Element
	parts                             []*view.Element

	phase           Phase
	isKicking       bool
	isSlowMo        bool
	insightsVisible bool
	kicks           int

	kickTimer    scheduler.Handle
	contactTimer scheduler.Handle
	tooltipTimer scheduler.Handle
}

// New binds a sequencer to page. It does not start walking until Start.
func New(page *view.Page, s scheduler.Scheduler, opts ...Option) *Sequencer {
	w := &Sequencer{
		t:      DefaultTimings(),
		timers: scheduler.NewGroup(s),
		rng:    rand.New(rand.NewSource(1)), //nolint:gosec // animation jitter, not security
		log:    logger.Nop(),
		sound:  model.Silent{},

		human:       page.MustByID(IDHumanModel),
		ball:        page.MustByID(IDFootball),
		status:      page.MustByID(IDStatusText),
		tooltip:     page.MustByID(IDFeedbackTooltip),
		btnSlowMo:   page.MustByID(IDBtnSlowMo),
		btnInsights: page.MustByID(IDBtnInsights),
		insights:    page.MustByID(IDInsightsPanel),
		parts:       page.QueryAny(animatedParts...),
	}
	if dots := page.QueryClass(ClassStatusDot); len(dots) > 0 {
		w.dot = dots[0]
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name identifies the widget.
func (w *Sequencer) Name() model.Widget { return model.BalanceWalk }

// Start enters Walking and shows the calibration tooltip.
func (w *Sequencer) Start() {
	w.startWalking()
	w.showTooltip(TipCalibrating, w.t.Calibrate)
}

// Mount starts the sequencer once its page is on screen.
func (w *Sequencer) Mount() { w.Start() }

// Stop cancels every pending callback.
func (w *Sequencer) Stop() {
	w.timers.CancelAll()
}

// Handle dispatches a user command. Kinds this widget has no control for are
// ignored.
func (w *Sequencer) Handle(cmd model.Command) {
	switch cmd.Kind {
	case model.KindRestart:
		w.Restart()
	case model.KindSlowMo:
		w.ToggleSlowMo()
	case model.KindInsights:
		w.ToggleInsights()
	default:
		w.log.Debug(context.Background(), "command ignored", logger.String("kind", string(cmd.Kind)))
	}
}

// Restart cancels the outstanding chain, resets the avatar to idle and walks
// again.
func (w *Sequencer) Restart() {
	n := w.timers.CancelAll()
	w.kickTimer, w.contactTimer, w.tooltipTimer = 0, 0, 0

	w.human.RemoveClass(ClassKicking)
	w.human.RemoveClass(ClassFreezing)
	w.ball.RemoveClass(ClassKicked)
	w.ball.SetStyle("opacity", "1")

	metrics.RecordRestart(metrics.WidgetBalanceWalk)
	w.log.Debug(context.Background(), "restarted", logger.Int("cancelled", n))

	w.showTooltip(TipRestarted, w.t.RestartNotice)
	w.startWalking()
}

// ToggleSlowMo switches the idle walking cycle between normal and slow.
// Kick timing is not affected.
func (w *Sequencer) ToggleSlowMo() {
	w.isSlowMo = !w.isSlowMo
	d := w.t.Cycle
	tip := TipNormal
	if w.isSlowMo {
		d = w.t.SlowCycle
		tip = TipSlowMo
	}
	cycle := seconds(d)
	for _, p := range w.parts {
		p.SetStyle("animation-duration", cycle)
	}
	w.btnSlowMo.ToggleClass(ClassActive)
	w.showTooltip(tip, w.t.SlowMoNotice)
}

// ToggleInsights shows or hides the insights panel.
func (w *Sequencer) ToggleInsights() {
	w.insightsVisible = w.insights.ToggleClass(ClassVisible)
	w.btnInsights.ToggleClass(ClassActive)
}

// Phase returns the current phase.
func (w *Sequencer) Phase() Phase { return w.phase }

// Pending returns how many callbacks the widget is waiting on.
func (w *Sequencer) Pending() int { return w.timers.Pending() }

// Stats returns the readout.
func (w *Sequencer) Stats() types.BalanceWalkStats {
	return types.BalanceWalkStats{
		Phase:           w.phase.String(),
		Kicking:         w.isKicking,
		SlowMo:          w.isSlowMo,
		InsightsVisible: w.insightsVisible,
		Kicks:           w.kicks,
		Status:          w.status.Text(),
		Tooltip:         w.tooltip.Text(),
		TooltipVisible:  w.tooltip.Style("opacity") == "1",
	}
}

func (w *Sequencer) startWalking() {
	w.isKicking = false
	w.phase = PhaseWalking
	w.human.RemoveClass(ClassKicking)
	w.ball.RemoveClass(ClassKicked)
	w.ball.SetStyle("opacity", "1")
	w.setStatus(StatusWalking, colorWalking)
	w.scheduleNextKick()
}

func (w *Sequencer) scheduleNextKick() {
	w.timers.Cancel(w.kickTimer)
	delay := w.t.KickMinDelay
	if w.t.KickJitter > 0 {
		delay += time.Duration(w.rng.Int63n(int64(w.t.KickJitter)))
	}
	w.kickTimer = w.timers.After(delay, w.performKick)
}

func (w *Sequencer) performKick() {
	if w.isKicking {
		w.log.Debug(context.Background(), "kick dropped, one is already in flight")
		return
	}
	w.isKicking = true
	w.kicks++
	metrics.RecordKick()

	w.phase = PhaseFreezing
	w.human.AddClass(ClassFreezing)
	w.setStatus(StatusFreezing, colorFreezing)
	w.showTooltip(TipStabilizing, 0)

	w.kickTimer = w.timers.After(w.t.Freeze, w.windUp)
}

func (w *Sequencer) windUp() {
	w.phase = PhaseKicking
	w.human.RemoveClass(ClassFreezing)
	w.human.AddClass(ClassKicking)
	w.setStatus(StatusKicking, colorKicking)
	w.showTooltip(TipKicking, 0)

	w.contactTimer = w.timers.After(w.t.Contact, w.contact)
	w.kickTimer = w.timers.After(w.t.Kick, w.finishKick)
}

func (w *Sequencer) contact() {
	w.contactTimer = 0
	w.phase = PhaseContact
	w.ball.AddClass(ClassKicked)
	w.sound.Play(model.CueSwish)
}

func (w *Sequencer) finishKick() {
	w.human.RemoveClass(ClassKicking)
	w.ball.RemoveClass(ClassKicked)
	w.ball.SetStyle("left", "")
	w.ball.SetStyle("opacity", "1")
	w.startWalking()
}

func (w *Sequencer) setStatus(text, color string) {
	w.status.SetText(text)
	if w.dot != nil {
		w.dot.SetStyle("background-color", color)
		w.dot.SetStyle("box-shadow", fmt.Sprintf("0 0 10px %s", color))
	}
}

// showTooltip shows text and, when hideAfter > 0, hides it later. A newer
// tooltip always cancels the pending hide of an older one.
func (w *Sequencer) showTooltip(text string, hideAfter time.Duration) {
	w.tooltip.SetText(text)
	w.tooltip.SetStyle("opacity", "1")
	w.timers.Cancel(w.tooltipTimer)
	w.tooltipTimer = 0
	if hideAfter > 0 {
		w.tooltipTimer = w.timers.After(hideAfter, func() {
			w.tooltip.SetStyle("opacity", "0")
		})
	}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
