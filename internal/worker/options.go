package worker

import (
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithMaxJobs caps the number of jobs one run records before draining.
func WithMaxJobs(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxJobs = n
		}
	}
}

// WithMaxRuntime caps the run's wall-clock time.
func WithMaxRuntime(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.maxRuntime = d
		}
	}
}

// WithIdleSleep sets the pause between claims on an empty queue.
func WithIdleSleep(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.idleSleep = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}
