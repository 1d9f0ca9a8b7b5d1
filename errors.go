package command

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	CodeExecutionFailed    = "EXECUTION_FAILED"
	CodeRepeatFailed       = "REPEAT_FAILED"
	CodeExecutionAborted   = "EXECUTION_ABORTED"
	CodeExecutionCancelled = "EXECUTION_CANCELLED"
)

var (
	// ErrExecutionFailed is the first-time failure of a command.
	ErrExecutionFailed = errors.New("execution failed", errors.CategoryHandler).
				WithTextCode(CodeExecutionFailed)
	// ErrRepeatFailed is a failure of a command that was already a retry attempt.
	ErrRepeatFailed = errors.New("repetition failed", errors.CategoryHandler).
			WithTextCode(CodeRepeatFailed)
	// ErrExecutionAborted marks a run terminated by its error handler.
	ErrExecutionAborted = errors.New("execution aborted", errors.CategoryHandler).
				WithTextCode(CodeExecutionAborted)
	ErrExecutionCancelled = errors.New("context canceled or deadline exceeded", errors.CategoryExternal).
				WithTextCode(CodeExecutionCancelled)
)

// Kind classifies command errors by their text code.
type Kind string

const (
	KindNone            Kind = ""
	KindExecutionFailed Kind = CodeExecutionFailed
	KindRepeatFailed    Kind = CodeRepeatFailed
	KindAborted         Kind = CodeExecutionAborted
	KindCancelled       Kind = CodeExecutionCancelled
	KindUntagged        Kind = "UNTAGGED"
)

// ExecutionFailed builds a first-time failure with the given reason.
func ExecutionFailed(reason string, source error) *errors.Error {
	return cloneError(ErrExecutionFailed, reason, source, nil)
}

// RepeatFailed re-tags the failure of a retried command. The inner error is
// kept as the source.
func RepeatFailed(inner error) *errors.Error {
	if inner == nil {
		return nil
	}
	return cloneError(ErrRepeatFailed, reasonOf(inner), inner, nil)
}

// Aborted builds the fatal error returned by a handler that stops the run.
func Aborted(cmd Command, cause error) *errors.Error {
	return cloneError(ErrExecutionAborted, "", cause, map[string]any{
		"command":    CommandType(cmd),
		"cause_code": string(KindOf(cause)),
	})
}

// Normalize makes sure err carries one of the command error codes. Errors
// without a code become ExecutionFailed with err as source.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) == KindUntagged {
		return ExecutionFailed(err.Error(), err)
	}
	return err
}

// KindOf reports the kind of the outermost command error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ge *errors.Error
	if !stderrors.As(err, &ge) {
		return KindUntagged
	}
	switch ge.TextCode {
	case CodeExecutionFailed, CodeRepeatFailed, CodeExecutionAborted, CodeExecutionCancelled:
		return Kind(ge.TextCode)
	}
	return KindUntagged
}

func IsExecutionFailed(err error) bool { return KindOf(err) == KindExecutionFailed }

func IsRepeatFailed(err error) bool { return KindOf(err) == KindRepeatFailed }

// IsFatal reports whether err terminated a run.
func IsFatal(err error) bool { return KindOf(err) == KindAborted }

func cloneError(base *errors.Error, message string, source error, metadata map[string]any) *errors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if source != nil {
		err.Source = source
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func reasonOf(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return err.Error()
}
