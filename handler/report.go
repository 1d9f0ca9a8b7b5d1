package handler

import (
	"context"

	command "github.com/goliatone/go-command-queue"
)

// Report logs the failure and drops the command.
type Report struct {
	logger command.Logger
}

func NewReport(logger command.Logger) *Report {
	return &Report{logger: command.NormalizeLogger(logger)}
}

func (r *Report) Handle(ctx context.Context, cmd command.Command, err error) error {
	command.WithLoggerFields(r.logger.WithContext(ctx), failureFields(cmd, err)).
		Error("command failed: %v", err)
	return nil
}
