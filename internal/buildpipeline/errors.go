package buildpipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout is wrapped by errors of processes killed for exceeding their timeout.
var ErrTimeout = errors.New("process timed out")

// BatchError reports a failed compilation batch. Later batches are not attempted.
type BatchError struct {
	Batch   int // 1-based
	Total   int
	Modules []string
	Files   []string
	Stderr  string
	Timeout time.Duration // non-zero when the compiler was killed for running too long
	Err     error
}

func (e *BatchError) Error() string {
	what := "javac failed"
	if e.Timeout > 0 {
		what = fmt.Sprintf("javac did not finish within %s", e.Timeout)
	}
	msg := fmt.Sprintf("batch %d/%d (%s): %s", e.Batch, e.Total, summarizeModules(e.Modules, 4), what)
	if e.Err != nil && e.Timeout == 0 {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BatchError) Unwrap() error {
	if e.Timeout > 0 {
		return ErrTimeout
	}
	return e.Err
}

func summarizeModules(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
