// Package terminal shows the focused widget page in a terminal and turns key
// presses and mouse clicks into widget commands.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	eventqueue "github.com/okian/rehabsim/internal/adapters/mq/queue"
	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/internal/domain/view"
	"github.com/okian/rehabsim/pkg/logger"
)

const (
	defaultFrame = 33 * time.Millisecond
	eventBuffer  = 100
)

// Service is the part of the simulation service the host drives. Focused and
// Page are only called from frame callbacks, which run on the event loop.
type Service interface {
	Submit(ctx context.Context, cmd model.Command) error
	Focused() model.Widget
	Page(w model.Widget) *view.Page
}

// Host owns the terminal.
type Host struct {
	svc    Service
	screen tcell.Screen
	frame  time.Duration
	levels []string
	logger logger.Logger

	// layout is written by draw on the loop goroutine and read by input
	// handling on the host goroutine.
	layout  atomic.Pointer[layout]
	buttons tcell.ButtonMask
	focus   model.Widget

	// drawn is touched by draw only, on the loop goroutine.
	drawn frameKey

	evs       chan tcell.Event
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New opens the terminal, or the screen given with WithScreen, and enables
// mouse reporting.
func New(svc Service, opts ...Option) (*Host, error) {
	h := &Host{
		svc:    svc,
		frame:  defaultFrame,
		levels: []string{"easy", "medium", "hard"},
		logger: logger.Nop(),
		evs:    make(chan tcell.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScreenInit, err)
		}
		h.screen = screen
	}
	if err := h.screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScreenInit, err)
	}
	h.screen.EnableMouse()
	h.screen.HideCursor()
	h.screen.SetStyle(tcell.StyleDefault)
	h.screen.Clear()

	h.wg.Add(1)
	go h.poll()
	return h, nil
}

// Run redraws every frame interval and feeds input to the service until ctx
// ends or the user quits.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.frame)
	defer ticker.Stop()

	h.Frame(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-h.evs:
			if !ok {
				return nil
			}
			if quit := h.Handle(ctx, ev); quit {
				h.logger.Info(ctx, "quit requested")
				return nil
			}
		case <-ticker.C:
			h.Frame(ctx)
		}
	}
}

// Frame asks the loop to redraw. A full queue drops the frame.
func (h *Host) Frame(ctx context.Context) {
	err := h.svc.Submit(ctx, model.Command{Kind: model.KindFrame, Fire: h.draw})
	switch {
	case err == nil:
	case errors.Is(err, eventqueue.ErrQueueFull):
		h.logger.Debug(ctx, "frame dropped, queue full")
	default:
		h.logger.Warn(ctx, "frame not submitted", logger.Error(err))
	}
}

// Close restores the terminal and stops the event reader.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.screen.Fini()
		h.wg.Wait()
	})
}

// poll forwards terminal events until the screen is finalized.
func (h *Host) poll() {
	defer h.wg.Done()
	defer close(h.evs)
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case h.evs <- ev:
		case <-h.done:
			return
		}
	}
}
