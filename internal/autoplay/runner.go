// Package autoplay drives the widgets headlessly with synthetic patient input
// on virtual time and checks their readouts as it goes.
package autoplay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/reachgrab"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/pkg/logger"
)

// epoch is where virtual time starts.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Run executes one autoplay session and returns its report. The report is
// also written to cfg.Report when set.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.App == nil {
		cfg.App = DefaultConfig().App
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		seed, err := service.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("seed autoplay: %w", err)
		}
		cfg.Seed = seed
	}
	log := logger.Get().Named("autoplay")

	report := &Report{
		RunID:     uuid.NewString(),
		Seed:      cfg.Seed,
		Duration:  cfg.Duration.String(),
		StartedAt: time.Now(),
	}
	for _, w := range model.Widgets {
		if cfg.drives(w) {
			report.Widgets = append(report.Widgets, string(w))
		}
	}

	log.Info(ctx, "starting autoplay",
		logger.String("runID", report.RunID),
		logger.Int64("seed", cfg.Seed),
		logger.String("duration", cfg.Duration.String()),
		logger.String("tick", cfg.Tick.String()),
		logger.Any("widgets", report.Widgets),
	)

	clock := scheduler.NewManual(epoch)
	svc := service.New(
		service.WithConfig(cfg.App),
		service.WithScheduler(clock),
		service.WithSeed(cfg.Seed),
		service.WithLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	gen, err := newGenerator(&cfg, svc, epoch, log)
	if err != nil {
		return nil, err
	}
	ver := newVerifier(cfg.App.ReactionTap.MaxCombo)

	// Step 1: play until the virtual clock runs out
	for clock.Now().Sub(epoch) < cfg.Duration {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("autoplay interrupted: %w", err)
		}
		resets, err := gen.step(ctx, clock.Now())
		if err != nil {
			return nil, err
		}
		clock.Advance(cfg.Tick)
		svc.Refresh()
		ver.observe(observe(svc, gen, clock.Now().Sub(epoch), resets))
	}

	// Step 2: check the totals
	elapsed := clock.Now().Sub(epoch)
	final := svc.Snapshot()
	ver.finish(elapsed, final, gen.inputs, cfg.drives)

	report.FinishedAt = time.Now()
	report.VirtualTime = elapsed.String()
	report.Inputs = gen.inputs
	report.Final = final
	report.Violations = ver.violations
	report.Passed = len(ver.violations) == 0

	// Step 3: save and summarize
	if cfg.Report != "" {
		if err := report.Save(cfg.Report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err), logger.String("path", cfg.Report))
		} else {
			log.Info(ctx, "report saved", logger.String("path", cfg.Report))
		}
	}
	report.Log(ctx, log)
	return report, nil
}

func observe(svc *service.Service, gen *generator, elapsed time.Duration, resets map[model.Widget]bool) *observation {
	o := &observation{
		elapsed: elapsed,
		snap:    svc.Snapshot(),
		pending: make(map[model.Widget]int, len(model.Widgets)),
		resets:  resets,
	}
	for _, w := range model.Widgets {
		o.pending[w] = svc.Widget(w).Pending()
	}
	for _, t := range gen.tap.Targets() {
		if !t.Hit {
			o.liveTaps++
		}
	}
	if page := svc.Page(model.ReachGrab); page != nil {
		o.reachLive = len(page.QueryClass(reachgrab.ClassTarget))
	}
	return o
}
