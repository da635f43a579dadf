package coach

import (
	"errors"
	"fmt"

	"github.com/edspark/coach/src/content"
)

// Sentinel errors for the orchestration core. Callers branch with errors.Is.
// The lookup sentinels are the content package's own, re-exported so HTTP and
// driver code can branch without importing it.
var (
	// ErrInvalidQuery means a content lookup was attempted with an empty parameter.
	ErrInvalidQuery = content.ErrInvalidQuery

	// ErrLookupUnavailable means the content search service was unreachable or
	// answered with a non-success status.
	ErrLookupUnavailable = content.ErrUnavailable

	// ErrUnknownTool means the assistant requested a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolExecutionFailed means a registered tool returned an error.
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrNoAssistantMessage means a run completed but produced no assistant
	// message associated with it.
	ErrNoAssistantMessage = errors.New("run completed without an assistant message")

	// ErrRunAlreadyActive means a turn was started while a prior run for the
	// same session was still non-terminal.
	ErrRunAlreadyActive = errors.New("a run is already active for this session")

	// ErrSessionCreationFailed means the assistant service refused to create a
	// conversation thread.
	ErrSessionCreationFailed = errors.New("session creation failed")
)

// RunIncompleteError is returned by Drive when a run reaches a terminal state
// other than completed, or when the polling ceiling expires. It carries the
// last observed status for diagnostics.
type RunIncompleteError struct {
	RunID      string
	LastStatus string
	Cause      error
}

func (e *RunIncompleteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("run %s did not complete (last status %q): %v", e.RunID, e.LastStatus, e.Cause)
	}
	return fmt.Sprintf("run %s did not complete (last status %q)", e.RunID, e.LastStatus)
}

func (e *RunIncompleteError) Unwrap() error { return e.Cause }

// ErrRunDidNotComplete matches any RunIncompleteError via errors.Is.
var ErrRunDidNotComplete = errors.New("run did not complete")

// Is lets errors.Is(err, ErrRunDidNotComplete) succeed for RunIncompleteError.
func (e *RunIncompleteError) Is(target error) bool { return target == ErrRunDidNotComplete }
