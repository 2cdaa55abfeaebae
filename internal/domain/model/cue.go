package model

// Cue names a sound effect.
type Cue string

// Sound cues.
const (
	CueSwish Cue = "swish"
	CueHit   Cue = "hit"
	CueMiss  Cue = "miss"
	CueGrab  Cue = "grab"
)

// Player plays sound cues. Play must not block the caller.
type Player interface {
	Play(c Cue)
}

// Silent is a Player that plays nothing.
type Silent struct{}

// Play does nothing.
func (Silent) Play(Cue) {}
