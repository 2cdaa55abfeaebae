package service

import (
	"math/rand"
	"sort"

	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/balancewalk"
	"github.com/okian/rehabsim/internal/domain/dedupe"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/reachgrab"
	"github.com/okian/rehabsim/internal/domain/reactiontap"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/scoring"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

// Widget is what the service drives. All methods run on the loop goroutine.
type Widget interface {
	Name() model.Widget
	Mount()
	Stop()
	Handle(cmd model.Command)
	Pending() int
}

var metricLabels = map[model.Widget]string{
	model.BalanceWalk: metrics.WidgetBalanceWalk,
	model.ReachGrab:   metrics.WidgetReachGrab,
	model.ReactionTap: metrics.WidgetReactionTap,
}

// set holds the three widgets and their pages.
type set struct {
	walk  *balancewalk.Sequencer
	reach *reachgrab.Trainer
	tap   *reactiontap.Game

	pages   map[model.Widget]*view.Page
	widgets map[model.Widget]Widget
}

// buildWidgets binds a page and a widget per name, each with its own
// random stream derived from seed.
func buildWidgets(cfg *config.Config, sched scheduler.Scheduler, seed int64, dedupeSize int, sound model.Player, log logger.Logger) *set {
	rng := func(i int64) *rand.Rand {
		return rand.New(rand.NewSource(seed + i)) //nolint:gosec // gameplay randomness, reproducible by seed
	}

	walkPage := balancewalk.NewPage()
	walk := balancewalk.New(walkPage, sched,
		balancewalk.WithTimings(balanceWalkTimings(cfg.BalanceWalk)),
		balancewalk.WithRand(rng(0)),
		balancewalk.WithLogger(log.Named(string(model.BalanceWalk))),
		balancewalk.WithPlayer(sound),
	)

	levels := reachLevels(cfg.ReachGrab)
	reachPage := reachgrab.NewPage(levelNames(levels)...)
	reach := reachgrab.New(reachPage, sched,
		reachgrab.WithTimings(reachGrabTimings(cfg.ReachGrab)),
		reachgrab.WithLevels(levels),
		reachgrab.WithDifficulty(cfg.ReachGrab.Difficulty),
		reachgrab.WithRand(rng(1)),
		reachgrab.WithLogger(log.Named(string(model.ReachGrab))),
		reachgrab.WithPlayer(sound),
	)

	tapPage := reactiontap.NewPage()
	tap := reactiontap.New(tapPage, sched,
		reactiontap.WithTimings(reactionTapTimings(cfg.ReactionTap)),
		reactiontap.WithGrader(reactionTapGrader(cfg.ReactionTap)),
		reactiontap.WithRand(rng(2)),
		reactiontap.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(dedupeSize))),
		reactiontap.WithLogger(log.Named(string(model.ReactionTap))),
		reactiontap.WithPlayer(sound),
	)

	return &set{
		walk:  walk,
		reach: reach,
		tap:   tap,
		pages: map[model.Widget]*view.Page{
			model.BalanceWalk: walkPage,
			model.ReachGrab:   reachPage,
			model.ReactionTap: tapPage,
		},
		widgets: map[model.Widget]Widget{
			model.BalanceWalk: walk,
			model.ReachGrab:   reach,
			model.ReactionTap: tap,
		},
	}
}

func balanceWalkTimings(c config.BalanceWalk) balancewalk.Timings {
	return balancewalk.Timings{
		KickMinDelay:  config.Millis(c.KickMinDelayMS),
		KickJitter:    config.Millis(c.KickJitterMS),
		Freeze:        config.Millis(c.FreezeMS),
		Contact:       config.Millis(c.ContactMS),
		Kick:          config.Millis(c.KickMS),
		Calibrate:     config.Millis(c.CalibrateMS),
		RestartNotice: config.Millis(c.RestartNoticeMS),
		SlowMoNotice:  config.Millis(c.SlowMoNoticeMS),
		Cycle:         config.Millis(c.CycleMS),
		SlowCycle:     config.Millis(c.SlowCycleMS),
	}
}

func reachGrabTimings(c config.ReachGrab) reachgrab.Timings {
	return reachgrab.Timings{
		Travel:      config.Millis(c.TravelMS),
		SlowTravel:  config.Millis(c.SlowTravelMS),
		Cleanup:     config.Millis(c.CleanupMS),
		Respawn:     config.Millis(c.RespawnMS),
		SlowRespawn: config.Millis(c.SlowRespawnMS),
		ResetSpawn:  config.Millis(c.ResetSpawnMS),
		ROMMin:      c.ROMMinDeg,
		ROMSpan:     c.ROMSpanDeg,
		MaxAngle:    c.MaxReachAngle,
	}
}

func reactionTapTimings(c config.ReactionTap) reactiontap.Timings {
	return reactiontap.Timings{
		BaseDelay:     config.Millis(c.BaseDelayMS),
		SpeedDelay:    config.Millis(c.SpeedDelayMS),
		MinDelay:      config.Millis(c.MinDelayMS),
		Jitter:        config.Millis(c.JitterMS),
		Lifetime:      config.Millis(c.LifetimeMS),
		SpeedLifetime: config.Millis(c.SpeedLifetimeMS),
		HitCleanup:    config.Millis(c.HitCleanupMS),
		MissNotice:    config.Millis(c.MissNoticeMS),
		Flick:         config.Millis(c.FlickMS),
		Decay:         c.Decay,
		MaxCombo:      c.MaxCombo,
	}
}

func reactionTapGrader(c config.ReactionTap) *scoring.Grader {
	return scoring.NewGrader(scoring.WithThresholds(
		config.Millis(c.GradeSMS),
		config.Millis(c.GradeAMS),
		config.Millis(c.GradeBMS),
	))
}

func reachLevels(c config.ReachGrab) map[string]reachgrab.Level {
	if len(c.Difficulties) == 0 {
		return reachgrab.DefaultLevels()
	}
	out := make(map[string]reachgrab.Level, len(c.Difficulties))
	for name, d := range c.Difficulties {
		out[name] = reachgrab.Level{Radius: d.Radius, Speed: config.Millis(d.SpeedMS)}
	}
	return out
}

// levelNames orders presets from the smallest reach radius to the largest.
func levelNames(levels map[string]reachgrab.Level) []string {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := levels[names[i]], levels[names[j]]
		if li.Radius != lj.Radius {
			return li.Radius < lj.Radius
		}
		return names[i] < names[j]
	})
	return names
}
