package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/rehabsim/pkg/logger"
)

// Option applies a configuration option to a Host.
type Option func(*Host)

// WithScreen draws on s instead of opening the real terminal.
func WithScreen(s tcell.Screen) Option {
	return func(h *Host) {
		if s != nil {
			h.screen = s
		}
	}
}

// WithFrameInterval sets the redraw period.
func WithFrameInterval(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.frame = d
		}
	}
}

// WithLevels sets the reach-grab difficulty names bound to the 1, 2, 3 keys.
func WithLevels(levels []string) Option {
	return func(h *Host) {
		if len(levels) > 0 {
			h.levels = append([]string(nil), levels...)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}
