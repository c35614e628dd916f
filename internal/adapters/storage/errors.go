package storage

import "errors"

// Sentinel error kinds for this package.
var (
	ErrJobNotFound   = errors.New("job not found")
	ErrTerminalState = errors.New("job already in a terminal state")
)
