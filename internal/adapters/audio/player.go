// Package audio plays the widgets' sound cues through the system speaker.
package audio

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/okian/rehabsim/internal/domain/model"
	"github.com/okian/rehabsim/pkg/logger"
)

const (
	defaultSampleRate = beep.SampleRate(44100)
	defaultVolume     = 0.6
	speakerBuffer     = 100 * time.Millisecond
)

// Player mixes cues into one speaker stream. It satisfies model.Player and
// is safe for concurrent use. Until Init succeeds every Play is dropped.
type Player struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	rate   beep.SampleRate
	volume float64
	ready  bool
	logger logger.Logger

	open  func(beep.SampleRate, int) error
	start func(...beep.Streamer)
}

var _ model.Player = (*Player)(nil)

// New creates a silent player. Call Init to open the speaker.
func New(opts ...Option) *Player {
	p := &Player{
		mixer:  &beep.Mixer{},
		rate:   defaultSampleRate,
		volume: defaultVolume,
		logger: logger.Nop(),
		open:   speaker.Init,
		start:  speaker.Play,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init opens the speaker. Calling it again after success is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := p.open(p.rate, p.rate.N(speakerBuffer)); err != nil {
		return fmt.Errorf("%w: %w", ErrAudioInit, err)
	}
	p.start(p.mixer)
	p.ready = true
	p.logger.Debug(context.Background(), "speaker ready", logger.Int("sample_rate", int(p.rate)))
	return nil
}

// Play queues the sound for c. Unknown cues are ignored.
func (p *Player) Play(c model.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	s := Streamer(c, p.rate)
	if s == nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(volume(s, p.volume))
	speaker.Unlock()
}

// Close drops every queued sound. The speaker itself stays open.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.ready = false
}

// Streamer builds the finite sound for c at rate, or nil for unknown cues.
func Streamer(c model.Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case model.CueSwish:
		// Ball contact: a short falling noise sweep.
		return newEnvelope(&noise{rng: rand.New(rand.NewSource(1))}, 180*time.Millisecond, 10*time.Millisecond, 150*time.Millisecond, rate) //nolint:gosec // sound texture
	case model.CueHit:
		return tone(rate, 880, 60*time.Millisecond)
	case model.CueMiss:
		return beep.Seq(
			tone(rate, 220, 90*time.Millisecond),
			tone(rate, 165, 120*time.Millisecond),
		)
	case model.CueGrab:
		return beep.Mix(
			volume(tone(rate, 660, 120*time.Millisecond), 0.7),
			volume(tone(rate, 1320, 120*time.Millisecond), 0.3),
		)
	default:
		return nil
	}
}

func tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return generators.Silence(rate.N(d))
	}
	return newEnvelope(beep.Take(rate.N(d), sine), d, 5*time.Millisecond, d/2, rate)
}

// volume scales s linearly. math.Log2(0) is -Inf, so zero means silent.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// noise is white noise in [-1, 1).
type noise struct {
	rng *rand.Rand
}

func (n *noise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := n.rng.Float64()*2 - 1
		samples[i][0], samples[i][1] = v, v
	}
	return len(samples), true
}

func (n *noise) Err() error { return nil }

// envelope limits s to a duration with a linear attack and release.
type envelope struct {
	s                      beep.Streamer
	pos, total, att, relAt int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(d)
	return &envelope{
		s:     s,
		total: total,
		att:   rate.N(attack),
		relAt: max(0, total-rate.N(release)),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	if e.pos >= e.total {
		return 0, false
	}
	if left := e.total - e.pos; len(samples) > left {
		samples = samples[:left]
	}
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.att {
			vol = float64(e.pos) / float64(e.att)
		}
		if e.pos >= e.relAt && e.total > e.relAt {
			vol = float64(e.total-e.pos) / float64(e.total-e.relAt)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok && n > 0
}

func (e *envelope) Err() error { return e.s.Err() }
