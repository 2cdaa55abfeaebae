package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rehabsim/internal/autoplay"
	"github.com/okian/rehabsim/pkg/logger"
)

type autoplayOptions struct {
	widgets  []string
	duration time.Duration
	tick     time.Duration
	seed     int64
	missRate float64
	report   string
	verbose  bool
}

func newAutoplayCmd(root *rootOptions) *cobra.Command {
	o := &autoplayOptions{}
	cmd := &cobra.Command{
		Use:   "autoplay",
		Short: "Drive the widgets with synthetic input on virtual time",
		Long: `autoplay plays a simulated patient against the widgets without a terminal.
Time is virtual, so a ten minute session finishes in moments. Readouts are
checked after every tick and the run fails if any check breaks.`,
		Example: `  rehabsim autoplay --duration 5m --seed 42
  rehabsim autoplay --widget reaction-tap --miss-rate 0 --report out/run.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAutoplay(cmd.Context(), root, o, cmd.OutOrStdout())
		},
	}

	def := autoplay.DefaultConfig()
	f := cmd.Flags()
	f.StringSliceVarP(&o.widgets, "widget", "w", []string{"all"}, "widgets to drive")
	f.DurationVarP(&o.duration, "duration", "d", def.Duration, "virtual session length")
	f.DurationVar(&o.tick, "tick", def.Tick, "virtual time step")
	f.Int64Var(&o.seed, "seed", def.Seed, "random seed, 0 picks one")
	f.Float64Var(&o.missRate, "miss-rate", def.MissRate, "share of reaction targets left untapped")
	f.StringVarP(&o.report, "report", "o", "", "write the JSON report here")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log every synthetic input")
	return cmd
}

func runAutoplay(ctx context.Context, root *rootOptions, o *autoplayOptions, out io.Writer) error {
	app, err := loadConfig(ctx, root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogging(ctx, app, out); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if o.verbose {
		_ = logger.SetLevelString("debug")
	}

	widgets, err := autoplay.ParseWidgets(o.widgets)
	if err != nil {
		return err
	}

	cfg := autoplay.DefaultConfig()
	cfg.App = app
	cfg.Widgets = widgets
	cfg.Duration = o.duration
	cfg.Tick = o.tick
	cfg.Seed = o.seed
	cfg.MissRate = o.missRate
	cfg.Report = o.report
	cfg.Verbose = o.verbose

	report, err := autoplay.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if !report.Passed {
		return fmt.Errorf("%w: %d in run %s", errViolations, len(report.Violations), report.RunID)
	}
	if o.report != "" {
		fmt.Fprintf(out, "report written to %s\n", o.report)
	}
	return nil
}
