package runner

import (
	"time"

	command "github.com/goliatone/go-command-queue"
)

type Option func(*Executor)

func WithLogger(l command.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDelay pauses for d between iterations.
func WithDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.pacer = FixedDelay{Interval: d}
	}
}

// WithPacer lets you define a custom pacing approach.
func WithPacer(p Pacer) Option {
	return func(e *Executor) {
		if p == nil {
			p = NoDelay{}
		}
		e.pacer = p
	}
}

func WithPanicLogger(l command.PanicLogger) Option {
	return func(e *Executor) {
		e.panicLogger = l
	}
}

// WithObserver registers a callback invoked after every execution.
func WithObserver(fn func(Event)) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, fn)
	}
}
