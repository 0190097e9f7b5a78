package job

import (
	"errors"
	"fmt"

	"github.com/coderunr/judgeproxy/internal/judge"
)

var (
	// ErrSubmissionFailed is matched by every SubmissionError
	ErrSubmissionFailed = errors.New("failed to submit code for execution")

	// ErrExecutionTimeout means no terminal status was seen within the poll budget
	ErrExecutionTimeout = errors.New("execution timed out before the judge finished")
)

// SubmissionError wraps a failure to create the submission on the judge.
// It is never retried.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSubmissionFailed, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSubmissionFailed) hold
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// Details describes the upstream failure for diagnostics
func (e *SubmissionError) Details() string {
	var statusErr *judge.StatusError
	if errors.As(e.Err, &statusErr) {
		if statusErr.Body == "" {
			return fmt.Sprintf("judge responded %s", statusErr.Status)
		}
		return fmt.Sprintf("judge responded %s: %s", statusErr.Status, statusErr.Body)
	}
	return e.Err.Error()
}
