package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeMissingAttribute indicates an instruction reached execution
	// without an attribute its handler requires. Assembly validates shapes,
	// but the registry may have been extended after assembly, so the engine
	// re-checks defensively.
	ErrCodeMissingAttribute RuntimeErrorCode = "MISSING_ATTRIBUTE"

	// ErrCodeUnknownCommand indicates no handler is registered for the
	// instruction's command.
	ErrCodeUnknownCommand RuntimeErrorCode = "UNKNOWN_COMMAND"

	// ErrCodeUnknownScene indicates a transition to a scene absent from the
	// loaded Program.
	ErrCodeUnknownScene RuntimeErrorCode = "UNKNOWN_SCENE"

	// ErrCodeStepsExceeded indicates a single step run executed more
	// instructions than the configured limit: a scene cycle with no await
	// point in it.
	ErrCodeStepsExceeded RuntimeErrorCode = "STEPS_EXCEEDED"

	// ErrCodeNotAwaiting indicates Advance or Rewind outside AwaitingInput.
	ErrCodeNotAwaiting RuntimeErrorCode = "NOT_AWAITING"

	// ErrCodeNoHistory indicates Rewind with no earlier dialogue to return to.
	ErrCodeNoHistory RuntimeErrorCode = "NO_HISTORY"

	// ErrCodeNoProgram indicates Start with no Program loaded.
	ErrCodeNoProgram RuntimeErrorCode = "NO_PROGRAM"

	// ErrCodeReentrant indicates the engine was driven from inside one of
	// its own handlers. Handlers must communicate through Outcomes, never
	// by calling back into the engine.
	ErrCodeReentrant RuntimeErrorCode = "REENTRANT"

	// ErrCodeFinished indicates an operation on an engine whose playthrough
	// already ended.
	ErrCodeFinished RuntimeErrorCode = "FINISHED"

	// ErrCodeHandler wraps an error returned by a command handler.
	ErrCodeHandler RuntimeErrorCode = "HANDLER_FAILED"
)

// RuntimeError is an error detected during engine execution. Runtime
// errors halt the current playthrough: the engine moves to Finished and
// surfaces the error to the host rather than silently skipping.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	Scene   string // scene active when the error occurred
	Line    int    // source line of the offending instruction
	Command string // command of the offending instruction
	Key     string // attribute key, for MISSING_ATTRIBUTE

	Err error // wrapped cause, for HANDLER_FAILED
}

func (e *RuntimeError) Error() string {
	where := ""
	if e.Scene != "" {
		where = fmt.Sprintf(" (scene=%s, line=%d)", e.Scene, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Code, e.Message, where, e.Err)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, where)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError reports whether err is (or wraps) a RuntimeError with the
// given code.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == code
}
