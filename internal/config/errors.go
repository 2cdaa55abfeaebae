package config

import "errors"

var (
	// ErrInvalidConfig marks a value the widgets cannot run with.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks an unreadable file, environment or decode step.
	ErrLoadConfig = errors.New("load config failed")
)
