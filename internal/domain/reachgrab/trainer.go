// Package reachgrab is the reach-and-grab trainer: it spawns one target at a
// time in the upper-front field, animates the nearer arm toward it on a
// reach, and tracks reps, accuracy and a simulated range of motion.
package reachgrab

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/scoring"
	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

// Status line texts.
const (
	StatusTargetAppeared = "Target Appeared - Reach!"
	StatusRestarted      = "Simulation Restarted"
	StatusSlowMo         = "Slow Motion Active"
	StatusNormal         = "Normal Speed"

	colorAccent  = "var(--accent-secondary)"
	colorPrimary = "var(--primary-color)"
)

// Level is one difficulty preset. Speed is carried with the preset but spawn
// timing does not read it.
type Level struct {
	Radius float64
	Speed  time.Duration
}

// DefaultLevels returns the easy, medium and hard presets.
func DefaultLevels() map[string]Level {
	return map[string]Level{
		"easy":   {Radius: 100, Speed: 3000 * time.Millisecond},
		"medium": {Radius: 150, Speed: 2000 * time.Millisecond},
		"hard":   {Radius: 180, Speed: 1200 * time.Millisecond},
	}
}

// Timings holds the trainer's delays and range-of-motion sampling bounds.
type Timings struct {
	Travel      time.Duration
	SlowTravel  time.Duration
	Cleanup     time.Duration
	Respawn     time.Duration
	SlowRespawn time.Duration
	ResetSpawn  time.Duration
	ROMMin      int
	ROMSpan     int
	MaxAngle    float64
}

// DefaultTimings returns the stock demo timings.
func DefaultTimings() Timings {
	return Timings{
		Travel:      500 * time.Millisecond,
		SlowTravel:  1000 * time.Millisecond,
		Cleanup:     500 * time.Millisecond,
		Respawn:     800 * time.Millisecond,
		SlowRespawn: 1500 * time.Millisecond,
		ResetSpawn:  1000 * time.Millisecond,
		ROMMin:      90,
		ROMSpan:     40,
		MaxAngle:    160,
	}
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithTimings overrides the default delays.
func WithTimings(t Timings) Option {
	return func(tr *Trainer) { tr.t = t }
}

// WithLevels replaces the difficulty presets.
func WithLevels(levels map[string]Level) Option {
	return func(tr *Trainer) {
		if len(levels) > 0 {
			tr.levels = levels
		}
	}
}

// WithDifficulty selects the starting difficulty.
func WithDifficulty(level string) Option {
	return func(tr *Trainer) { tr.difficulty = level }
}

// WithRand injects the random source for positions and ROM samples.
func WithRand(r *rand.Rand) Option {
	return func(tr *Trainer) {
		if r != nil {
			tr.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(tr *Trainer) {
		if l != nil {
			tr.log = l
		}
	}
}

// WithPlayer sets the sound cue player.
func WithPlayer(p model.Player) Option {
	return func(tr *Trainer) {
		if p != nil {
			tr.sound = p
		}
	}
}

// Trainer is the reach-and-grab widget. All methods must be called from the
// scheduler's goroutine.
type Trainer struct {
	t      Timings
	levels map[string]Level
	timers *scheduler.Group
	rng    *rand.Rand
	log    logger.Logger
	sound  model.Player

	viewport  *view.Element
	armLeft   *view.Element
	armRight  *view.Element
	container *view.Element
	status    *view.Element
	dot       *view.Element
	repCount  *view.Element
	accuracy  *view.Element
	romVal    *view.Element
	romFill   *view.Element
	btnSlowMo *view.Element
	toggles   []*view.Element

	reps       int
	attempts   int
	rom        int
	difficulty string
	isSlowMo   bool
	isReaching bool
	active     *model.Target
	lastAngle  float64
}

// New binds a trainer to page. It does not spawn until Start.
func New(page *view.Page, s scheduler.Scheduler, opts ...Option) *Trainer {
	tr := &Trainer{
		t:          DefaultTimings(),
		levels:     DefaultLevels(),
		difficulty: "medium",
		timers:     scheduler.NewGroup(s),
		rng:        rand.New(rand.NewSource(1)), //nolint:gosec // target placement, not security
		log:        logger.Nop(),
		sound:      model.Silent{},

		viewport:  page.MustByID(IDSimViewport),
		armLeft:   page.MustByID(IDArmLeft),
		armRight:  page.MustByID(IDArmRight),
		container: page.MustByID(IDTargetContainer),
		status:    page.MustByID(IDStatusText),
		repCount:  page.MustByID(IDRepCount),
		accuracy:  page.MustByID(IDAccuracyVal),
		romVal:    page.MustByID(IDRomVal),
		btnSlowMo: page.MustByID(IDBtnSlowMo),
		toggles:   page.QueryClass(ClassBtnToggle),
	}
	if dots := page.QueryClass(ClassStatusDot); len(dots) > 0 {
		tr.dot = dots[0]
	}
	if fills := page.QueryClass(ClassRomFill); len(fills) > 0 {
		tr.romFill = fills[0]
	}
	for _, opt := range opts {
		opt(tr)
	}
	if _, ok := tr.levels[tr.difficulty]; !ok {
		tr.difficulty = "medium"
	}
	tr.markDifficulty()
	return tr
}

// Name identifies the widget.
func (tr *Trainer) Name() model.Widget { return model.ReachGrab }

// Start spawns the first target.
func (tr *Trainer) Start() {
	tr.updateStats()
	tr.SpawnTarget()
}

// Mount is Start; the trainer runs as soon as it is shown.
func (tr *Trainer) Mount() { tr.Start() }

// Stop cancels every pending callback.
func (tr *Trainer) Stop() {
	tr.timers.CancelAll()
}

// Handle dispatches a user command.
func (tr *Trainer) Handle(cmd model.Command) {
	switch cmd.Kind {
	case model.KindRestart:
		tr.Reset()
	case model.KindSlowMo:
		tr.ToggleSlowMo()
	case model.KindDifficulty:
		tr.SetDifficulty(cmd.Level)
	case model.KindReach:
		tr.HandleReach(cmd.X, cmd.Y)
	default:
		tr.log.Debug(context.Background(), "command ignored", logger.String("kind", string(cmd.Kind)))
	}
}

// SpawnTarget places a new target unless one is already active.
func (tr *Trainer) SpawnTarget() {
	if tr.active != nil {
		tr.log.Debug(context.Background(), "spawn skipped, target already active")
		return
	}
	lv := tr.levels[tr.difficulty]
	angle := tr.rng.Float64() * math.Pi
	left := 50 + math.Cos(angle)*lv.Radius/5
	top := 40 - math.Sin(angle)*lv.Radius*2/15

	t := model.NewTarget(ClassTarget, tr.timers.Now(), left, top)
	t.Place(tr.container.Rect(), TargetSize)
	tr.container.Append(t.El)
	tr.active = t
	tr.attempts++

	metrics.RecordTargetSpawned(metrics.WidgetReachGrab)
	tr.updateStats()
	tr.setStatus(StatusTargetAppeared, colorAccent)
}

// HandleReach starts a reach toward the active target. Pointer coordinates
// outside the sim viewport are ignored, as are reaches without a target or while
// one is in flight.
func (tr *Trainer) HandleReach(x, y float64) {
	vp := tr.viewport.Rect()
	if !vp.Contains(x, y) {
		return
	}
	if tr.active == nil || tr.isReaching {
		tr.log.Debug(context.Background(), "reach ignored",
			logger.Bool("target", tr.active != nil),
			logger.Bool("reaching", tr.isReaching))
		return
	}
	tr.isReaching = true
	target := tr.active
	tRect := target.El.Rect()

	arm := tr.armLeft
	if tRect.CenterX() > vp.CenterX() {
		arm = tr.armRight
	}
	aRect := arm.Rect()
	angle := ReachAngle(aRect, tRect, tr.t.MaxAngle)
	tr.lastAngle = angle

	arm.SetStyle("transform", view.Rotate(angle))
	if hand := arm.FirstByClass(ClassHand); hand != nil {
		hand.AddClass(ClassGrabbing)
	}

	travel := tr.t.Travel
	if tr.isSlowMo {
		travel = tr.t.SlowTravel
	}
	tr.timers.After(travel, func() { tr.grab(target, arm) })
}

// ReachAngle returns the rotation in degrees that points a limb resting
// straight down from limb toward target, clamped to [-maxAngle, maxAngle].
// Both boxes are compared by their top-left corners.
func ReachAngle(limb, target view.Rect, maxAngle float64) float64 {
	dy := target.Y - limb.Y
	dx := target.X - limb.X
	deg := math.Atan2(dy, dx)*180/math.Pi - 90
	return math.Max(-maxAngle, math.Min(maxAngle, deg))
}

func (tr *Trainer) grab(target *model.Target, arm *view.Element) {
	target.El.AddClass(ClassGrabbed)
	target.Hit = true
	tr.reps++
	tr.updateStats()

	rom := tr.t.ROMMin
	if tr.t.ROMSpan > 0 {
		rom += tr.rng.Intn(tr.t.ROMSpan)
	}
	tr.updateROM(rom)
	tr.sound.Play(model.CueGrab)
	metrics.RecordTargetHit(metrics.WidgetReachGrab)

	tr.timers.After(tr.t.Cleanup, func() { tr.release(target, arm) })
}

func (tr *Trainer) release(target *model.Target, arm *view.Element) {
	target.El.Remove()
	if tr.active == target {
		tr.active = nil
	}
	arm.SetStyle("transform", view.Rotate(0))
	if hand := arm.FirstByClass(ClassHand); hand != nil {
		hand.RemoveClass(ClassGrabbing)
	}
	tr.isReaching = false

	next := tr.t.Respawn
	if tr.isSlowMo {
		next = tr.t.SlowRespawn
	}
	tr.timers.After(next, tr.SpawnTarget)
}

// SetDifficulty switches the preset used by later spawns. Unknown levels are
// ignored.
func (tr *Trainer) SetDifficulty(level string) {
	if _, ok := tr.levels[level]; !ok {
		tr.log.Debug(context.Background(), "unknown difficulty", logger.String("level", level))
		return
	}
	tr.difficulty = level
	tr.markDifficulty()
	tr.setStatus(fmt.Sprintf("Difficulty set to %s", strings.ToUpper(level)), colorPrimary)
}

// ToggleSlowMo switches between normal and slow reach timings.
func (tr *Trainer) ToggleSlowMo() {
	tr.isSlowMo = !tr.isSlowMo
	tr.btnSlowMo.ToggleClass(ClassActive)
	if tr.isSlowMo {
		tr.setStatus(StatusSlowMo, colorAccent)
		return
	}
	tr.setStatus(StatusNormal, colorAccent)
}

// Reset cancels everything in flight, clears the counters and spawns again
// after the reset delay.
func (tr *Trainer) Reset() {
	tr.timers.CancelAll()
	if tr.active != nil {
		tr.active.El.Remove()
		tr.active = nil
	}
	tr.reps, tr.attempts = 0, 0
	tr.isReaching = false
	tr.lastAngle = 0

	for _, arm := range []*view.Element{tr.armLeft, tr.armRight} {
		arm.SetStyle("transform", view.Rotate(0))
		if hand := arm.FirstByClass(ClassHand); hand != nil {
			hand.RemoveClass(ClassGrabbing)
		}
	}
	tr.updateStats()
	tr.updateROM(0)
	metrics.RecordRestart(metrics.WidgetReachGrab)

	tr.timers.After(tr.t.ResetSpawn, tr.SpawnTarget)
	tr.setStatus(StatusRestarted, colorPrimary)
}

// Accuracy returns round(reps/attempts*100), 100 before any attempt.
func (tr *Trainer) Accuracy() int {
	return scoring.Accuracy(tr.reps, tr.attempts)
}

// ActiveTarget returns the live target, or nil.
func (tr *Trainer) ActiveTarget() *model.Target { return tr.active }

// LastReachAngle returns the rotation applied by the latest reach.
func (tr *Trainer) LastReachAngle() float64 { return tr.lastAngle }

// Difficulty returns the selected level.
func (tr *Trainer) Difficulty() string { return tr.difficulty }

// Pending returns how many callbacks the widget is waiting on.
func (tr *Trainer) Pending() int { return tr.timers.Pending() }

// Stats returns the readout.
func (tr *Trainer) Stats() types.ReachGrabStats {
	return types.ReachGrabStats{
		Reps:         tr.reps,
		Attempts:     tr.attempts,
		Accuracy:     tr.Accuracy(),
		ROM:          tr.rom,
		Difficulty:   tr.difficulty,
		SlowMo:       tr.isSlowMo,
		Reaching:     tr.isReaching,
		TargetActive: tr.active != nil,
		Status:       tr.status.Text(),
	}
}

func (tr *Trainer) markDifficulty() {
	want := DifficultyButtonID(tr.difficulty)
	for _, b := range tr.toggles {
		b.SetClass(ClassActive, b.ID() == want)
	}
}

func (tr *Trainer) updateStats() {
	tr.repCount.SetText(strconv.Itoa(tr.reps))
	acc := tr.Accuracy()
	tr.accuracy.SetText(fmt.Sprintf("%d%%", acc))
	metrics.UpdateReachAccuracy(acc)
}

func (tr *Trainer) updateROM(deg int) {
	tr.rom = deg
	tr.romVal.SetText(fmt.Sprintf("%d°", deg))
	if tr.romFill != nil {
		tr.romFill.SetStyle("width", view.Percent(scoring.ROMFill(deg)))
	}
	metrics.UpdateReachROM(deg)
}

func (tr *Trainer) setStatus(text, color string) {
	tr.status.SetText(text)
	if tr.dot != nil {
		tr.dot.SetStyle("background-color", color)
		tr.dot.SetStyle("box-shadow", "0 0 10px "+color)
	}
}
