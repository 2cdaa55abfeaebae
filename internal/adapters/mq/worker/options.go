package worker

import (
	"time"

	"github.com/okian/rehabsim/pkg/logger"
)

// Option applies a configuration option to a Loop.
type Option func(*Loop)

// WithName sets the loop name used in logs.
func WithName(name string) Option {
	return func(l *Loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}

// ClockOption applies a configuration option to a Clock.
type ClockOption func(*Clock)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// WithClockLogger sets the logger for dropped timer expiries.
func WithClockLogger(log logger.Logger) ClockOption {
	return func(c *Clock) {
		if log != nil {
			c.logger = log
		}
	}
}
