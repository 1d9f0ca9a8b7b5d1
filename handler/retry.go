package handler

import (
	"context"

	command "github.com/goliatone/go-command-queue"
)

// RetryMode selects where a retried command is placed.
type RetryMode string

const (
	// RetryFront makes the retry the very next command.
	RetryFront RetryMode = "front"
	// RetryBack defers the retry behind the pending commands.
	RetryBack RetryMode = "back"
)

type RetryOption func(*RetryOnceThenAbort)

// WithDeferredRetry places retries at the back of the queue.
func WithDeferredRetry() RetryOption {
	return func(r *RetryOnceThenAbort) {
		r.mode = RetryBack
	}
}

// WithRetryMode sets the retry placement. Unknown modes keep the default.
func WithRetryMode(mode RetryMode) RetryOption {
	return func(r *RetryOnceThenAbort) {
		switch mode {
		case RetryFront, RetryBack:
			r.mode = mode
		}
	}
}

func WithRetryLogger(logger command.Logger) RetryOption {
	return func(r *RetryOnceThenAbort) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// RetryOnceThenAbort requeues a failed command once, wrapped in a
// command.Repeat. A failure of the retry is fatal, so a logical unit of work
// runs at most twice.
type RetryOnceThenAbort struct {
	queue  Requeuer
	mode   RetryMode
	logger command.Logger
}

func NewRetryOnceThenAbort(q Requeuer, opts ...RetryOption) *RetryOnceThenAbort {
	r := &RetryOnceThenAbort{
		queue:  q,
		mode:   RetryFront,
		logger: command.NewFmtLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *RetryOnceThenAbort) Mode() RetryMode { return r.mode }

func (r *RetryOnceThenAbort) Handle(ctx context.Context, cmd command.Command, err error) error {
	logger := command.WithLoggerFields(r.logger.WithContext(ctx), failureFields(cmd, err))

	_, isRetry := cmd.(*command.Repeat)
	if command.IsRepeatFailed(err) || isRetry {
		logger.Error("retried once, still failing: %v", err)
		return command.Aborted(cmd, err)
	}

	retry := command.NewRepeat(cmd)
	if r.mode == RetryBack {
		r.queue.PushBack(retry)
	} else {
		r.queue.PushFront(retry)
	}
	logger.Warn("command failed, retry %d scheduled (%s): %v", retry.Attempt(), r.mode, err)
	return nil
}
