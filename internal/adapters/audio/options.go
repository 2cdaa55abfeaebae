package audio

import (
	"github.com/gopxl/beep"

	"github.com/okian/rehabsim/pkg/logger"
)

// Option applies a configuration option to a Player.
type Option func(*Player)

// WithSampleRate sets the output sample rate.
func WithSampleRate(rate int) Option {
	return func(p *Player) {
		if rate > 0 {
			p.rate = beep.SampleRate(rate)
		}
	}
}

// WithVolume sets the master volume in [0, 1].
func WithVolume(v float64) Option {
	return func(p *Player) {
		if v >= 0 && v <= 1 {
			p.volume = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}
