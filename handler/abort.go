package handler

import (
	"context"

	command "github.com/goliatone/go-command-queue"
)

// Abort stops the run on the first failure.
type Abort struct {
	logger command.Logger
}

func NewAbort(logger command.Logger) *Abort {
	return &Abort{logger: command.NormalizeLogger(logger)}
}

func (a *Abort) Handle(ctx context.Context, cmd command.Command, err error) error {
	command.WithLoggerFields(a.logger.WithContext(ctx), failureFields(cmd, err)).
		Error("command failed, aborting: %v", err)
	return command.Aborted(cmd, err)
}
