package terminal

import "errors"

// ErrScreenInit is returned when the terminal cannot be opened.
var ErrScreenInit = errors.New("terminal init failed")
