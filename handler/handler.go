// Package handler holds the policies that decide what happens to a command
// after it fails.
package handler

import (
	"context"
	"strings"

	command "github.com/goliatone/go-command-queue"
	"github.com/goliatone/go-errors"
)

const (
	NameReport = "report"
	NameAbort  = "abort"
	NameRetry  = "retry"

	CodeUnknownHandler = "UNKNOWN_HANDLER"
)

// ErrorHandler receives each failed command exactly once. A non-nil return
// is fatal and stops the run.
type ErrorHandler interface {
	Handle(ctx context.Context, cmd command.Command, err error) error
}

// HandlerFunc is an adapter that lets you use a function as an ErrorHandler
type HandlerFunc func(ctx context.Context, cmd command.Command, err error) error

func (f HandlerFunc) Handle(ctx context.Context, cmd command.Command, err error) error {
	return f(ctx, cmd, err)
}

// Requeuer is the part of a queue the retry policy needs.
type Requeuer interface {
	PushFront(cmd command.Command)
	PushBack(cmd command.Command)
}

// ByName builds a handler from its configuration name. The queue is only
// used by the retry policy.
func ByName(name string, q Requeuer, logger command.Logger, opts ...RetryOption) (ErrorHandler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameReport, "":
		return NewReport(logger), nil
	case NameAbort:
		return NewAbort(logger), nil
	case NameRetry:
		if q == nil {
			return nil, errors.New("retry handler requires a queue", errors.CategoryBadInput).
				WithTextCode(CodeUnknownHandler)
		}
		opts = append([]RetryOption{WithRetryLogger(logger)}, opts...)
		return NewRetryOnceThenAbort(q, opts...), nil
	default:
		return nil, errors.New("unknown error handler", errors.CategoryBadInput).
			WithTextCode(CodeUnknownHandler).
			WithMetadata(map[string]any{
				"handler": name,
				"valid":   []string{NameReport, NameAbort, NameRetry},
			})
	}
}

func failureFields(cmd command.Command, err error) map[string]any {
	return map[string]any{
		"command": command.CommandType(cmd),
		"code":    string(command.KindOf(err)),
	}
}
