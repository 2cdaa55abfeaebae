// Package service wires the widgets to the event loop, the scheduler and the
// sound player, and publishes their readouts for other goroutines.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/rehabsim/internal/adapters/mq/queue"
	eventloop "github.com/okian/rehabsim/internal/adapters/mq/worker"
	"github.com/okian/rehabsim/internal/config"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/scheduler"
	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
	"github.com/okian/rehabsim/pkg/metrics"
)

const loopShutdownTimeout = 5 * time.Second

// Service owns the widgets. With the default real-time clock it runs them on
// an event loop goroutine and Submit enqueues. With an injected scheduler it
// runs inline: Submit dispatches on the caller's goroutine, which must then
// be the only one touching the service.
type Service struct {
	mu sync.RWMutex

	// Configuration
	cfg        *config.Config
	queueSize  int
	dedupeSize int
	seed       int64
	sound      model.Player
	sched      scheduler.Scheduler
	logger     logger.Logger

	// Runtime
	queue  *eventqueue.InMemoryQueue
	loop   *eventloop.Loop
	clock  *eventloop.Clock
	cancel context.CancelFunc
	inline bool

	widgets *set
	focused model.Widget
	now     func() time.Time

	snap    atomic.Pointer[types.Snapshot]
	seq     atomic.Uint64
	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the widget timings and defaults.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithQueueSize sets the capacity of the command queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many target ids the hit guard remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSeed fixes the random seed. Zero keeps a fresh crypto seed.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		if seed != 0 {
			s.seed = seed
		}
	}
}

// WithSound sets the sound cue player.
func WithSound(p model.Player) Option {
	return func(s *Service) {
		if p != nil {
			s.sound = p
		}
	}
}

// WithScheduler runs the service inline on sched instead of the event loop.
func WithScheduler(sched scheduler.Scheduler) Option {
	return func(s *Service) {
		s.sched = sched
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Options left unset fall back to cfg.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:   config.New(),
		sound: model.Silent{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.queueSize == 0 {
		s.queueSize = s.cfg.QueueSize
	}
	if s.dedupeSize == 0 {
		s.dedupeSize = s.cfg.DedupeSize
	}
	if s.seed == 0 {
		s.seed = s.cfg.Seed
	}
	if s.seed == 0 {
		if seed, err := NewSeed(); err == nil {
			s.seed = seed
		} else {
			s.seed = time.Now().UnixNano()
		}
	}
	s.focused = model.BalanceWalk
	if w, err := model.ParseWidget(s.cfg.Widget); err == nil {
		s.focused = w
	}
	return s
}

// Start builds the widgets, mounts them and, unless running inline, starts
// the event loop. Starting twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting simulation service...")

	sched := s.sched
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inline = sched != nil
	if !s.inline {
		s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
		s.clock = eventloop.NewClock(runCtx, s.queue, eventloop.WithClockLogger(s.logger.Named("clock")))
		s.loop = eventloop.NewLoop(s.queue, eventloop.HandlerFunc(s.Dispatch),
			eventloop.WithName("loop"),
			eventloop.WithLogger(s.logger),
		)
		sched = s.clock
	}

	s.now = sched.Now
	s.widgets = buildWidgets(s.cfg, sched, s.seed, s.dedupeSize, s.sound, s.logger)
	for _, w := range model.Widgets {
		s.widgets.widgets[w].Mount()
	}
	s.publish(time.Time{})

	if s.loop != nil {
		go s.loop.Run(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Bool("inline", s.inline),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int64("seed", s.seed),
		logger.String("focused", string(s.focused)),
	)
	return nil
}

// Stop halts the loop, cancels every widget timer and closes the queue.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping simulation service...")

	s.cancel()
	if s.loop != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, loopShutdownTimeout)
		if err := s.loop.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "event loop did not stop", logger.Error(err))
		}
		cancel()
	}
	if s.clock != nil {
		s.clock.Stop()
	}
	for _, w := range s.widgets.widgets {
		w.Stop()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "simulation service stopped")
}

// Submit hands a command to the widgets. Input commands without an id get
// one. Commands naming an unknown widget are rejected.
func (s *Service) Submit(ctx context.Context, cmd model.Command) error { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	s.mu.RLock()
	started, inline, q := s.started, s.inline, s.queue
	s.mu.RUnlock()

	if !started {
		return ErrNotStarted
	}
	if cmd.Widget != "" {
		if _, err := model.ParseWidget(string(cmd.Widget)); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownWidget, cmd.Widget)
		}
	}
	if cmd.ID == "" && cmd.IsInput() {
		cmd.ID = uuid.NewString()
	}

	if inline {
		s.Dispatch(ctx, cmd)
		return nil
	}
	if err := q.Enqueue(ctx, cmd); err != nil {
		return fmt.Errorf("submit %s: %w", cmd.Kind, err)
	}
	return nil
}

// Dispatch runs one command against the widgets and publishes a fresh
// snapshot. It is the loop's handler and must only run on the loop
// goroutine, or inline on the single caller.
func (s *Service) Dispatch(ctx context.Context, cmd model.Command) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	switch cmd.Kind {
	case model.KindTimer, model.KindFrame:
		if cmd.Fire != nil {
			cmd.Fire()
		}
	case model.KindFocus:
		if _, ok := s.widgets.widgets[cmd.Widget]; ok {
			s.focused = cmd.Widget
		}
	default:
		target := cmd.Widget
		if target == "" {
			target = s.focused
		}
		w, ok := s.widgets.widgets[target]
		if !ok {
			s.logger.Warn(ctx, "command for unknown widget", logger.String("widget", string(target)))
			return
		}
		s.logger.Debug(ctx, "dispatching command",
			logger.String("id", cmd.ID),
			logger.String("kind", string(cmd.Kind)),
			logger.String("widget", string(target)),
		)
		w.Handle(cmd)
	}
	s.publish(cmd.At)
}

// Refresh republishes the snapshot. Inline drivers call it after advancing
// their scheduler, since timer callbacks bypass Dispatch there.
func (s *Service) Refresh() {
	s.publish(time.Time{})
}

// publish records a snapshot of every widget. Loop goroutine only.
func (s *Service) publish(at time.Time) {
	if at.IsZero() {
		at = s.now()
	}
	snap := &types.Snapshot{
		Seq:         s.seq.Add(1),
		UpdatedAt:   at,
		Focused:     string(s.focused),
		BalanceWalk: s.widgets.walk.Stats(),
		ReachGrab:   s.widgets.reach.Stats(),
		ReactionTap: s.widgets.tap.Stats(),
	}
	s.snap.Store(snap)

	for name, w := range s.widgets.widgets {
		metrics.UpdatePendingTimers(metricLabels[name], w.Pending())
	}
}

// Snapshot returns the latest published readouts. Safe from any goroutine.
func (s *Service) Snapshot() types.Snapshot {
	if p := s.snap.Load(); p != nil {
		return *p
	}
	return types.Snapshot{}
}

// Focused returns the widget the host shows. Loop goroutine only.
func (s *Service) Focused() model.Widget {
	return s.focused
}

// Page returns the page of w. Its elements may only be read on the loop
// goroutine, which is where hosts render from.
func (s *Service) Page(w model.Widget) *view.Page {
	if s.widgets == nil {
		return nil
	}
	return s.widgets.pages[w]
}

// Widget returns the running widget named w, or nil.
func (s *Service) Widget(w model.Widget) Widget {
	if s.widgets == nil {
		return nil
	}
	return s.widgets.widgets[w]
}

// Seed returns the seed the widgets' random streams derive from.
func (s *Service) Seed() int64 {
	return s.seed
}

// Levels returns the reach-grab difficulty names, easiest first.
func (s *Service) Levels() []string {
	return levelNames(reachLevels(s.cfg.ReachGrab))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"inline":     s.inline,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
		"seed":       s.seed,
	}
	if s.started && s.queue != nil {
		stats["queueLength"] = s.queue.Len()
	}
	if s.started && s.clock != nil {
		stats["timers"] = s.clock.Pending()
	}
	return stats
}
