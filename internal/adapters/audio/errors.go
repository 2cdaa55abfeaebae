package audio

import "errors"

// ErrAudioInit is returned when the speaker cannot be opened.
var ErrAudioInit = errors.New("audio init failed")
