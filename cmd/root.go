package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/rehabsim/internal/adapters/audio"
	"github.com/okian/rehabsim/internal/adapters/http/api"
	"github.com/okian/rehabsim/internal/adapters/terminal"
	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/pkg/logger"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath  string
	widget      string
	metricsAddr string
	mute        bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "rehabsim",
		Short: "Rehabilitation exercise widgets in the terminal",
		Long: `rehabsim runs three exercise widgets in the terminal: a balance walk that
pauses for kicks, a reach-and-grab trainer and a reaction tap game.
Tab switches widgets, the mouse reaches and taps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), o)
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "YAML config file (default: $"+config.EnvConfig+")")
	root.Flags().StringVar(&o.widget, "widget", "", "widget shown first (balance-walk, reach-grab, reaction-tap)")
	root.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve /healthz and /stats on this address")
	root.Flags().BoolVar(&o.mute, "mute", false, "disable sound cues")

	root.AddCommand(newAutoplayCmd(o))
	return root
}

// loadConfig layers the file named by --config, or $REHABSIM_CONFIG, under
// the environment.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		return config.Load(ctx)
	}
	return config.LoadFile(path)
}

// initLogging points the global logger at w, or at cfg.LogFile when w is nil.
func initLogging(ctx context.Context, cfg *config.Config, w io.Writer) error {
	opts := []logger.Option{logger.WithJSON(cfg.LogFormat == "json")}
	if w != nil {
		opts = append(opts, logger.WithWriter(w))
	} else {
		opts = append(opts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(opts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func runInteractive(ctx context.Context, o *rootOptions) error {
	cfg, err := loadConfig(ctx, o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.widget != "" {
		if _, err := model.ParseWidget(o.widget); err != nil {
			return err
		}
		cfg.Widget = o.widget
	}
	if o.metricsAddr != "" {
		cfg.MetricsAddr = o.metricsAddr
	}
	if o.mute {
		cfg.Sound = false
	}

	// The terminal owns stdout; without a log file logs are dropped.
	var sink io.Writer
	if cfg.LogFile == "" {
		sink = io.Discard
	}
	if err := initLogging(ctx, cfg, sink); err != nil {
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to close log: " + err.Error() + "\n")
		}
	}()
	log := logger.Get()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sound model.Player = model.Silent{}
	if cfg.Sound {
		player := audio.New(audio.WithLogger(log.Named("audio")))
		if err := player.Init(); err != nil {
			log.Warn(ctx, "sound disabled", logger.Error(err))
		} else {
			defer player.Close()
			sound = player
		}
	}

	svc := service.New(
		service.WithConfig(cfg),
		service.WithLogger(log),
		service.WithSound(sound),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	if cfg.MetricsAddr != "" {
		done := serveOps(ctx, cfg.MetricsAddr, svc, log)
		defer func() {
			cancel()
			<-done
		}()
	}

	host, err := terminal.New(svc,
		terminal.WithFrameInterval(cfg.FrameInterval()),
		terminal.WithLevels(svc.Levels()),
		terminal.WithLogger(log.Named("terminal")),
	)
	if err != nil {
		return err
	}
	defer host.Close()

	log.Info(ctx, "terminal host running", logger.String("widget", cfg.Widget))
	return host.Run(ctx)
}

// serveOps runs the ops HTTP listener until ctx ends. The returned channel
// closes once the listener has shut down.
func serveOps(ctx context.Context, addr string, svc *service.Service, log logger.Logger) <-chan struct{} {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := api.ListenAndServe(ctx, addr, mux, log.Named("http")); err != nil {
			log.Error(ctx, "ops listener failed", logger.Error(err))
		}
	}()
	return done
}
