package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"jmake/internal/buildpipeline"
)

// TextSink prints one line per finished or failed batch. It is used when
// stdout is not a terminal or the interactive UI is off.
type TextSink struct {
	mu    sync.Mutex
	w     io.Writer
	total int
}

// NewTextSink returns a sink writing to w for a plan with total batches.
func NewTextSink(w io.Writer, total int) *TextSink {
	return &TextSink{w: w, total: total}
}

func (s *TextSink) OnEvent(evt buildpipeline.Event) {
	if evt.Batch == 0 || evt.Stage != buildpipeline.StageCompile {
		return
	}
	var status string
	switch evt.Status {
	case buildpipeline.StatusDone:
		status = color.GreenString("ok")
	case buildpipeline.StatusError:
		status = color.RedString("FAIL")
	default:
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%d/%d] %-4s %s (%s)\n", evt.Batch, s.total, status,
		BatchLabel(evt.Batch, evt.Modules), evt.Elapsed.Round(time.Millisecond))
}
