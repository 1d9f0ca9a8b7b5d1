// Package runner drains a command queue, routing each failure to an error
// handler.
package runner

import (
	"context"
	"time"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-command-queue/handler"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Queue is the part of a command queue the executor drains.
type Queue interface {
	PopFront() (command.Command, bool)
	Len() int
}

// Stats summarizes a run.
type Stats struct {
	RunID     string
	Executed  int
	Succeeded int
	Failed    int
}

// Event describes one execution, passed to observers.
type Event struct {
	RunID     string
	Iteration int
	Command   command.Command
	Err       error
	Duration  time.Duration
}

// Executor is the single point of control of a run: it pops one command at
// a time, executes it, and hands failures to the error handler before
// looking at the queue again.
type Executor struct {
	logger      command.Logger
	pacer       Pacer
	panicLogger command.PanicLogger
	observers   []func(Event)
}

// New constructs an Executor, applying defaults if unset.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:      command.NewFmtLogger(nil),
		pacer:       NoDelay{},
		panicLogger: command.DefaultPanicLogger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Run drains q. It returns nil once q is empty, the handler's fatal error if
// the handler aborts, or a cancellation error if ctx ends between iterations.
func (e *Executor) Run(ctx context.Context, q Queue, h handler.ErrorHandler) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	logger := command.WithLoggerFields(e.logger.WithContext(ctx), map[string]any{
		"run_id": stats.RunID,
	})

	if h == nil {
		h = handler.NewReport(logger)
	}

	logger.Debug("run started with %d queued commands", q.Len())

	for iteration := 0; q.Len() > 0; iteration++ {
		if ctx.Err() != nil {
			return stats, e.cancelled(ctx, stats, q)
		}

		cmd, ok := q.PopFront()
		if !ok {
			break
		}

		start := time.Now()
		err := command.Normalize(e.execute(ctx, cmd))
		stats.Executed++

		e.notify(Event{
			RunID:     stats.RunID,
			Iteration: iteration,
			Command:   cmd,
			Err:       err,
			Duration:  time.Since(start),
		})

		if err == nil {
			stats.Succeeded++
			logger.Trace("executed %s", command.CommandType(cmd))
		} else {
			stats.Failed++
			if herr := h.Handle(ctx, cmd, err); herr != nil {
				logger.Debug("run aborted after %d commands, %d pending", stats.Executed, q.Len())
				return stats, herr
			}
		}

		if q.Len() > 0 {
			if err := e.pause(ctx, iteration); err != nil {
				return stats, e.cancelled(ctx, stats, q)
			}
		}
	}

	logger.Debug("run completed: executed=%d succeeded=%d failed=%d", stats.Executed, stats.Succeeded, stats.Failed)
	return stats, nil
}

func (e *Executor) execute(ctx context.Context, cmd command.Command) (err error) {
	defer command.RecoverExecution(cmd, &err, e.panicLogger)
	return cmd.Execute(ctx)
}

func (e *Executor) pause(ctx context.Context, iteration int) error {
	delay := e.pacer.Delay(iteration)
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (e *Executor) notify(evt Event) {
	for _, fn := range e.observers {
		if fn != nil {
			fn(evt)
		}
	}
}

func (e *Executor) cancelled(ctx context.Context, stats Stats, q Queue) error {
	return errors.Wrap(ctx.Err(), errors.CategoryExternal, "context canceled or deadline exceeded").
		WithTextCode(command.CodeExecutionCancelled).
		WithMetadata(map[string]any{
			"run_id":   stats.RunID,
			"executed": stats.Executed,
			"pending":  q.Len(),
		})
}
