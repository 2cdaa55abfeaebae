// Package reactiontap is the reaction-tap game: targets appear after a
// shrinking delay, the player taps them before they time out, and reaction
// latency, combo and score drive the HUD.
package reactiontap

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/rehabsim/internal/domain/dedupe"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/scoring"
	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

// Status messages.
const (
	StatusFocus      = "Focus..."
	StatusMissed     = "Missed!"
	StatusKeepGoing  = "Keep going!"
	StatusReset      = "Game Reset"
	StatusSpeedReady = "Speed Mode Ready!"
	StatusNormal     = "Normal Mode Ready"

	missColor = "red"
	flickBase = "scaleY(0.9) translateY(-10px) "
)

// Timings holds the game's delays and pacing.
type Timings struct {
	BaseDelay     time.Duration
	SpeedDelay    time.Duration
	MinDelay      time.Duration
	Jitter        time.Duration
	Lifetime      time.Duration
	SpeedLifetime time.Duration
	HitCleanup    time.Duration
	MissNotice    time.Duration
	Flick         time.Duration
	Decay         float64
	MaxCombo      int
}

// DefaultTimings returns the stock demo pacing. MinDelay is zero, which
// leaves the spawn delay decay unbounded.
func DefaultTimings() Timings {
	return Timings{
		BaseDelay:     2000 * time.Millisecond,
		SpeedDelay:    800 * time.Millisecond,
		Jitter:        1000 * time.Millisecond,
		Lifetime:      3000 * time.Millisecond,
		SpeedLifetime: 1500 * time.Millisecond,
		HitCleanup:    200 * time.Millisecond,
		MissNotice:    500 * time.Millisecond,
		Flick:         100 * time.Millisecond,
		Decay:         0.95,
		MaxCombo:      10,
	}
}

// Option configures a Game.
type Option func(*Game)

// WithTimings overrides the default pacing.
func WithTimings(t Timings) Option {
	return func(g *Game) { g.t = t }
}

// WithRand injects the random source for delays and positions.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithDeduper replaces the hit guard.
func WithDeduper(d dedupe.Deduper) Option {
	return func(g *Game) {
		if d != nil {
			g.seen = d
		}
	}
}

// WithGrader replaces the latency grader.
func WithGrader(gr *scoring.Grader) Option {
	return func(g *Game) {
		if gr != nil {
			g.grader = gr
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithPlayer sets the sound cue player.
func WithPlayer(p model.Player) Option {
	return func(g *Game) {
		if p != nil {
			g.sound = p
		}
	}
}

// Game is the reaction-tap widget. All methods must be called from the
// scheduler's goroutine.
type Game struct {
	t      Timings
	timers *scheduler.Group
	rng    *rand.Rand
	seen   dedupe.Deduper
	grader *scoring.Grader
	log    logger.Logger
	sound  model.Player
	num    *message.Printer

	surface  view.Surface
	layer    *view.Element
	overlay  *view.Element
	armLeft  *view.Element
	armRight *view.Element
	scoreVal *view.Element
	comboVal *view.Element
	avgTime  *view.Element
	focus    *view.Element
	gradeVal *view.Element
	status   *view.Element
	btnSpeed *view.Element

	active       bool
	isSpeedMode  bool
	score        int
	combo        int
	hits         int
	misses       int
	reactions    []time.Duration
	currentDelay time.Duration
	targets      map[string]*model.Target
	spawnTimer   scheduler.Handle
	statusTimer  scheduler.Handle
}

// New binds a game to page. The game stays idle until Start.
func New(page *view.Page, s scheduler.Scheduler, opts ...Option) *Game {
	g := &Game{
		t:      DefaultTimings(),
		timers: scheduler.NewGroup(s),
		rng:    rand.New(rand.NewSource(1)), //nolint:gosec // gameplay jitter, not security
		grader: scoring.NewGrader(),
		log:    logger.Nop(),
		sound:  model.Silent{},
		num:    message.NewPrinter(language.English),

		surface:  page,
		layer:    page.MustByID(IDTapLayer),
		overlay:  page.MustByID(IDGameOverlay),
		armLeft:  page.MustByID(IDArmLeft),
		armRight: page.MustByID(IDArmRight),
		scoreVal: page.MustByID(IDScoreVal),
		comboVal: page.MustByID(IDComboVal),
		avgTime:  page.MustByID(IDAvgTime),
		focus:    page.MustByID(IDFocusFill),
		gradeVal: page.MustByID(IDGradeVal),
		status:   page.MustByID(IDStatusMsg),
		btnSpeed: page.MustByID(IDBtnSpeed),

		combo:   1,
		targets: make(map[string]*model.Target),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seen == nil {
		g.seen = dedupe.NewInMemoryDeduper()
	}
	g.currentDelay = g.t.BaseDelay
	return g
}

// Name identifies the widget.
func (g *Game) Name() model.Widget { return model.ReactionTap }

// Mount draws the idle HUD. The game itself waits for Start.
func (g *Game) Mount() {
	g.updateHUD()
}

// Stop cancels every pending callback.
func (g *Game) Stop() {
	g.timers.CancelAll()
}

// Handle dispatches a user command.
func (g *Game) Handle(cmd model.Command) {
	switch cmd.Kind {
	case model.KindStart:
		g.Start()
	case model.KindRestart:
		g.Reset()
	case model.KindSpeed:
		g.ToggleSpeedMode()
	case model.KindTap:
		if cmd.TargetID != "" {
			g.HandleHit(cmd.TargetID)
			return
		}
		g.HandleTap(cmd.X, cmd.Y)
	default:
		g.log.Debug(context.Background(), "command ignored", logger.String("kind", string(cmd.Kind)))
	}
}

// Start activates the game and schedules the first spawn. Starting an
// active game is a no-op.
func (g *Game) Start() {
	if g.active {
		return
	}
	g.active = true
	g.overlay.AddClass(ClassHidden)
	g.setStatus(StatusFocus, "")
	g.currentDelay = g.t.BaseDelay
	if g.isSpeedMode {
		g.currentDelay = g.t.SpeedDelay
	}
	g.ScheduleNext()
}

// ScheduleNext arms the next spawn after currentDelay plus jitter. Only one
// spawn is ever pending.
func (g *Game) ScheduleNext() {
	if !g.active {
		return
	}
	delay := g.currentDelay
	if g.t.Jitter > 0 {
		delay += time.Duration(g.rng.Int63n(int64(g.t.Jitter)))
	}
	g.timers.Cancel(g.spawnTimer)
	g.spawnTimer = g.timers.After(delay, g.SpawnTarget)
}

// SpawnTarget places a target at a random spot in the safe area and arms its
// miss timeout.
func (g *Game) SpawnTarget() {
	if !g.active {
		return
	}
	left := 10 + g.rng.Float64()*80
	top := 10 + g.rng.Float64()*60

	t := model.NewTarget(ClassTarget, g.timers.Now(), left, top)
	t.Place(g.layer.Rect(), TargetSize)
	g.layer.Append(t.El)
	g.targets[t.ID] = t

	lifetime := g.t.Lifetime
	if g.isSpeedMode {
		lifetime = g.t.SpeedLifetime
	}
	t.Timeout = g.timers.After(lifetime, func() { g.handleMiss(t) })
	metrics.RecordTargetSpawned(metrics.WidgetReactionTap)
}

// HandleTap hits the topmost live target under (x, y). Taps on empty space
// are ignored.
func (g *Game) HandleTap(x, y float64) {
	var hit *model.Target
	for _, el := range g.layer.Children() {
		t := g.targets[el.ID()]
		if t != nil && !t.Hit && el.Rect().Contains(x, y) {
			hit = t
		}
	}
	if hit == nil {
		return
	}
	g.HandleHit(hit.ID)
}

// HandleHit scores a tap on target id. Unknown ids and repeated hits on the
// same target are ignored.
func (g *Game) HandleHit(id string) {
	t, ok := g.targets[id]
	if !ok {
		g.log.Debug(context.Background(), "hit on unknown target", logger.String("target", id))
		return
	}
	if g.seen.SeenAndRecord(id) || t.Hit {
		metrics.RecordDuplicateHit()
		return
	}
	t.Hit = true
	g.timers.Cancel(t.Timeout)

	latency := max(t.Age(g.timers.Now()), scoring.MinLatency)
	g.reactions = append(g.reactions, latency)
	g.combo = min(g.combo+1, g.t.MaxCombo)
	points := scoring.ReactionPoints(latency, g.combo)
	g.score += points
	g.hits++

	t.El.AddClass(ClassHit)
	g.flick(t)
	g.sound.Play(model.CueHit)
	metrics.RecordTargetHit(metrics.WidgetReactionTap)
	metrics.RecordReactionLatency(float64(latency) / float64(time.Millisecond))

	g.updateHUD()
	g.currentDelay = scoring.Decay(g.currentDelay, g.t.Decay, g.t.MinDelay)

	g.timers.After(g.t.HitCleanup, func() {
		t.El.Remove()
		delete(g.targets, t.ID)
	})
	g.ScheduleNext()
}

func (g *Game) handleMiss(t *model.Target) {
	if t.Hit || g.targets[t.ID] != t {
		return
	}
	t.El.Remove()
	delete(g.targets, t.ID)
	g.combo = 1
	g.misses++
	g.sound.Play(model.CueMiss)
	metrics.RecordTargetMissed(metrics.WidgetReactionTap)

	g.setStatus(StatusMissed, missColor)
	g.timers.Cancel(g.statusTimer)
	g.statusTimer = g.timers.After(g.t.MissNotice, func() {
		if g.active {
			g.setStatus(StatusKeepGoing, "")
		}
	})
	g.updateHUD()
	g.ScheduleNext()
}

// flick gives the arm on the target's side a short punch.
func (g *Game) flick(t *model.Target) {
	arm, tilt := g.armLeft, "rotate(10deg)"
	if t.El.Rect().CenterX() > g.surface.Viewport().CenterX() {
		arm, tilt = g.armRight, "rotate(-10deg)"
	}
	arm.SetStyle("transform", flickBase+tilt)
	g.timers.After(g.t.Flick, func() { arm.SetStyle("transform", "none") })
}

// ToggleSpeedMode switches between normal and speed pacing. It takes effect
// on the next Start and on the lifetime of later targets.
func (g *Game) ToggleSpeedMode() {
	g.isSpeedMode = !g.isSpeedMode
	g.btnSpeed.ToggleClass(ClassActive)
	if g.isSpeedMode {
		g.setStatus(StatusSpeedReady, "")
		return
	}
	g.setStatus(StatusNormal, "")
}

// Reset cancels every callback, clears the layer and returns to the idle
// overlay with zeroed stats.
func (g *Game) Reset() {
	g.timers.CancelAll()
	g.spawnTimer, g.statusTimer = 0, 0
	g.layer.Clear()
	clear(g.targets)
	g.seen.Reset()

	g.active = false
	g.score = 0
	g.combo = 1
	g.hits, g.misses = 0, 0
	g.reactions = nil
	g.currentDelay = g.t.BaseDelay
	g.armLeft.SetStyle("transform", "")
	g.armRight.SetStyle("transform", "")

	metrics.RecordRestart(metrics.WidgetReactionTap)
	g.updateHUD()
	g.overlay.RemoveClass(ClassHidden)
	g.setStatus(StatusReset, "")
}

// Active reports whether a game is running.
func (g *Game) Active() bool { return g.active }

// Targets returns the live targets in spawn order.
func (g *Game) Targets() []*model.Target {
	out := make([]*model.Target, 0, len(g.targets))
	for _, el := range g.layer.Children() {
		if t, ok := g.targets[el.ID()]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Reactions returns a copy of the latency history.
func (g *Game) Reactions() []time.Duration {
	return append([]time.Duration(nil), g.reactions...)
}

// CurrentDelay returns the base spawn delay before jitter.
func (g *Game) CurrentDelay() time.Duration { return g.currentDelay }

// Pending returns how many callbacks the widget is waiting on.
func (g *Game) Pending() int { return g.timers.Pending() }

// Stats returns the readout.
func (g *Game) Stats() types.ReactionTapStats {
	st := types.ReactionTapStats{
		Active:         g.active,
		SpeedMode:      g.isSpeedMode,
		Score:          g.score,
		Combo:          g.combo,
		Hits:           g.hits,
		Misses:         g.misses,
		Grade:          scoring.NoGrade,
		Focus:          scoring.Focus(g.combo),
		CurrentDelayMS: float64(g.currentDelay) / float64(time.Millisecond),
		Targets:        len(g.targets),
		Status:         g.status.Text(),
	}
	if len(g.reactions) > 0 {
		avg := scoring.Average(g.reactions)
		st.AvgMS = int(avg / time.Millisecond)
		st.Grade = g.grader.Grade(avg)
	}
	return st
}

func (g *Game) updateHUD() {
	st := g.Stats()
	g.scoreVal.SetText(g.num.Sprintf("%d", st.Score))
	g.comboVal.SetText(fmt.Sprintf("x%d", st.Combo))
	g.focus.SetStyle("width", view.Percent(float64(st.Focus)))
	if len(g.reactions) > 0 {
		g.avgTime.SetText(fmt.Sprintf("%d ms", st.AvgMS))
	} else {
		g.avgTime.SetText("-- ms")
	}
	g.gradeVal.SetText(st.Grade)
	metrics.UpdateReactionScore(st.Score, st.Combo)
}

func (g *Game) setStatus(text, color string) {
	g.status.SetText(text)
	g.status.SetStyle("color", color)
}
