package autoplay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/reachgrab"
	"github.com/okian/rehabsim/internal/domain/reactiontap"
	"github.com/okian/rehabsim/pkg/logger"
)

// Inputs counts the synthetic input a run produced.
type Inputs struct {
	Reaches           int `json:"reaches"`
	Taps              int `json:"taps"`
	DuplicateTaps     int `json:"duplicate_taps"`
	SkippedTargets    int `json:"skipped_targets"`
	Starts            int `json:"starts"`
	Toggles           int `json:"toggles"`
	DifficultyChanges int `json:"difficulty_changes"`
	Restarts          int `json:"restarts"`
}

// plannedTap is the decision taken for one reaction-tap target.
type plannedTap struct {
	at   time.Time
	skip bool
	done bool
}

// generator plays a patient: it reaches for targets after a hesitation, taps
// targets after a sampled reaction time and flips the pacing toggles now and
// then.
type generator struct {
	cfg    *Config
	svc    *service.Service
	rng    *rand.Rand
	log    logger.Logger
	inputs Inputs

	reach *reachgrab.Trainer
	tap   *reactiontap.Game

	taps       map[string]*plannedTap
	reachFor   string
	reachAt    time.Time
	repsSeen   int
	levels     []string
	level      int
	nextToggle time.Time
	toggleTurn int
}

func newGenerator(cfg *Config, svc *service.Service, start time.Time, log logger.Logger) (*generator, error) {
	g := &generator{
		cfg:        cfg,
		svc:        svc,
		rng:        rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // synthetic input, not security sensitive
		log:        log,
		taps:       make(map[string]*plannedTap),
		levels:     svc.Levels(),
		nextToggle: start.Add(cfg.ToggleEvery),
	}

	if len(g.levels) == 0 {
		return nil, fmt.Errorf("%s has no difficulty levels", model.ReachGrab)
	}
	var ok bool
	if g.reach, ok = svc.Widget(model.ReachGrab).(*reachgrab.Trainer); !ok {
		return nil, fmt.Errorf("%s widget is not a trainer", model.ReachGrab)
	}
	if g.tap, ok = svc.Widget(model.ReactionTap).(*reactiontap.Game); !ok {
		return nil, fmt.Errorf("%s widget is not a game", model.ReactionTap)
	}
	return g, nil
}

// step issues every input due at now. It returns the widgets it reset, so the
// verifier accepts their counters dropping.
func (g *generator) step(ctx context.Context, now time.Time) (map[model.Widget]bool, error) {
	resets := map[model.Widget]bool{}
	if g.cfg.drives(model.ReachGrab) {
		if err := g.stepReach(ctx, now); err != nil {
			return nil, err
		}
	}
	if g.cfg.drives(model.ReactionTap) {
		if err := g.stepTap(ctx, now); err != nil {
			return nil, err
		}
	}
	if g.cfg.ToggleEvery > 0 && !now.Before(g.nextToggle) {
		g.nextToggle = now.Add(g.cfg.ToggleEvery)
		w, err := g.toggle(ctx)
		if err != nil {
			return nil, err
		}
		if w != "" {
			resets[w] = true
		}
	}
	return resets, nil
}

func (g *generator) stepReach(ctx context.Context, now time.Time) error {
	st := g.reach.Stats()
	if st.Reps >= g.repsSeen+difficultyEvery {
		g.repsSeen = st.Reps
		g.level = (g.level + 1) % len(g.levels)
		if err := g.submit(ctx, model.Command{Widget: model.ReachGrab, Kind: model.KindDifficulty, Level: g.levels[g.level]}); err != nil {
			return err
		}
		g.inputs.DifficultyChanges++
	}

	t := g.reach.ActiveTarget()
	if t == nil || st.Reaching {
		return nil
	}
	if t.ID != g.reachFor {
		g.reachFor = t.ID
		g.reachAt = now.Add(g.between(g.cfg.MinHesitate, g.cfg.MaxHesitate))
		return nil
	}
	if now.Before(g.reachAt) {
		return nil
	}
	r := t.El.Rect()
	if err := g.submit(ctx, model.Command{Widget: model.ReachGrab, Kind: model.KindReach, X: r.CenterX(), Y: r.CenterY()}); err != nil {
		return err
	}
	g.inputs.Reaches++
	return nil
}

func (g *generator) stepTap(ctx context.Context, now time.Time) error {
	if !g.tap.Active() {
		if err := g.submit(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindStart}); err != nil {
			return err
		}
		g.inputs.Starts++
	}

	for _, t := range g.tap.Targets() {
		if t.Hit {
			continue
		}
		p, ok := g.taps[t.ID]
		if !ok {
			p = &plannedTap{
				at:   t.SpawnedAt.Add(g.between(g.cfg.MinLatency, g.cfg.MaxLatency)),
				skip: g.rng.Float64() < g.cfg.MissRate,
			}
			g.taps[t.ID] = p
			if p.skip {
				g.inputs.SkippedTargets++
			}
		}
		if p.skip || p.done || now.Before(p.at) {
			continue
		}
		p.done = true

		// Alternate between pointer taps and taps naming the target.
		cmd := model.Command{Widget: model.ReactionTap, Kind: model.KindTap, TargetID: t.ID}
		if g.rng.Intn(2) == 0 {
			r := t.El.Rect()
			cmd = model.Command{Widget: model.ReactionTap, Kind: model.KindTap, X: r.CenterX(), Y: r.CenterY()}
		}
		if err := g.submit(ctx, cmd); err != nil {
			return err
		}
		g.inputs.Taps++

		if g.rng.Float64() < duplicateTapRate {
			dup := model.Command{Widget: model.ReactionTap, Kind: model.KindTap, TargetID: t.ID}
			if err := g.submit(ctx, dup); err != nil {
				return err
			}
			g.inputs.DuplicateTaps++
		}
	}

	for id := range g.taps {
		if !g.live(id) {
			delete(g.taps, id)
		}
	}
	return nil
}

// toggle flips one pacing control, cycling through the driven widgets. It
// returns the widget it reset, if any.
func (g *generator) toggle(ctx context.Context) (model.Widget, error) {
	g.toggleTurn++
	switch g.toggleTurn % 5 {
	case 0:
		if g.cfg.drives(model.BalanceWalk) {
			g.inputs.Restarts++
			return model.BalanceWalk, g.submit(ctx, model.Command{Widget: model.BalanceWalk, Kind: model.KindRestart})
		}
	case 1:
		if g.cfg.drives(model.BalanceWalk) {
			g.inputs.Toggles++
			return "", g.submit(ctx, model.Command{Widget: model.BalanceWalk, Kind: model.KindSlowMo})
		}
	case 2:
		if g.cfg.drives(model.ReachGrab) {
			g.inputs.Toggles++
			return "", g.submit(ctx, model.Command{Widget: model.ReachGrab, Kind: model.KindSlowMo})
		}
	case 3:
		if g.cfg.drives(model.ReactionTap) {
			g.inputs.Toggles++
			return "", g.submit(ctx, model.Command{Widget: model.ReactionTap, Kind: model.KindSpeed})
		}
	default:
		if g.cfg.drives(model.BalanceWalk) {
			g.inputs.Toggles++
			return "", g.submit(ctx, model.Command{Widget: model.BalanceWalk, Kind: model.KindInsights})
		}
	}
	return "", nil
}

func (g *generator) live(id string) bool {
	for _, t := range g.tap.Targets() {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (g *generator) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(g.rng.Int63n(int64(hi-lo)))
}

func (g *generator) submit(ctx context.Context, cmd model.Command) error { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	if g.cfg.Verbose {
		g.log.Debug(ctx, "synthetic input",
			logger.String("widget", string(cmd.Widget)),
			logger.String("kind", string(cmd.Kind)),
			logger.String("level", cmd.Level),
			logger.String("target", cmd.TargetID),
		)
	}
	if err := g.svc.Submit(ctx, cmd); err != nil {
		return fmt.Errorf("submit %s to %s: %w", cmd.Kind, cmd.Widget, err)
	}
	return nil
}
