package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"jmake/internal/ctxlog"
	"jmake/internal/project"
	"jmake/internal/project/dag"
)

// DefaultCompileTimeout bounds a single javac invocation when none is configured.
const DefaultCompileTimeout = 5 * time.Minute

// CompileRequest describes one build of a plan.
type CompileRequest struct {
	Layout   project.Layout
	Index    *dag.ModuleIndex
	Plan     *dag.Plan
	Javac    string
	Debug    bool // pass -g
	Flags    []string
	Timeout  time.Duration
	Progress ProgressSink
	// PrintCommands echoes every javac command line to Stdout before running it.
	PrintCommands bool
	Stdout        io.Writer
}

// CompileResult summarises a finished build.
type CompileResult struct {
	Batches int
	Modules int
	Timings Timings
}

// Compile runs javac once per batch, in plan order, and stops at the first failure.
// A failed batch is returned as *BatchError.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if req == nil || req.Plan == nil || req.Index == nil {
		return result, errors.New("compile request requires a plan and an index")
	}
	javac := req.Javac
	if javac == "" {
		javac = "javac"
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(req.Layout.OutputDir, 0o750); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := req.Plan.Len()
	names := req.Plan.Names(req.Index)
	for i := range req.Plan.Batches {
		emit(req.Progress, Event{Batch: i + 1, Modules: names[i], Stage: StageCompile, Status: StatusQueued})
	}

	started := time.Now()
	for i, batch := range req.Plan.Batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		files := make([]string, len(batch))
		for j, id := range batch {
			files[j] = req.Index.PathOf(id)
		}
		argv := CompileCommand(javac, req.Layout, req.Debug, req.Flags, files)
		if req.PrintCommands {
			if err := printCommand(req.Stdout, argv); err != nil {
				return result, err
			}
		}

		evt := Event{Batch: i + 1, Modules: names[i], Stage: StageCompile, Status: StatusWorking}
		emit(req.Progress, evt)
		logger.Debug("compiling batch", "batch", i+1, "of", total, "modules", len(batch))

		batchStart := time.Now()
		stderr, timedOut, err := runJavac(ctx, argv, timeout, req.Stdout)
		evt.Elapsed = time.Since(batchStart)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && !timedOut {
				evt.Status, evt.Err = StatusError, ctxErr
				emit(req.Progress, evt)
				return result, ctxErr
			}
			berr := &BatchError{
				Batch:   i + 1,
				Total:   total,
				Modules: names[i],
				Files:   files,
				Stderr:  stderr,
				Err:     err,
			}
			if timedOut {
				berr.Timeout = timeout
			}
			evt.Status, evt.Err = StatusError, berr
			emit(req.Progress, evt)
			result.Timings.Add(StageCompile, time.Since(started))
			return result, berr
		}
		evt.Status = StatusDone
		emit(req.Progress, evt)
		result.Batches++
		result.Modules += len(batch)
	}
	result.Timings.Add(StageCompile, time.Since(started))
	emit(req.Progress, Event{Stage: StageCompile, Status: StatusDone, Elapsed: result.Timings.Duration(StageCompile)})
	logger.Info("compiled", "batches", result.Batches, "modules", result.Modules)
	return result, nil
}

// CompileCommand builds the javac argv for one batch.
func CompileCommand(javac string, layout project.Layout, debug bool, flags, files []string) []string {
	argv := make([]string, 0, 6+len(flags)+len(files))
	argv = append(argv, javac, "-d", layout.OutputDir, "-cp", layout.Classpath())
	if debug {
		argv = append(argv, "-g")
	}
	argv = append(argv, flags...)
	argv = append(argv, files...)
	return argv
}

func runJavac(ctx context.Context, argv []string, timeout time.Duration, stdout io.Writer) (stderr string, timedOut bool, err error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 -- argv is built from configured compiler and indexed paths
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if stdout != nil {
		cmd.Stdout = stdout
	}
	cmd.WaitDelay = time.Second

	err = cmd.Run()
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		timedOut = true
	}
	return errBuf.String(), timedOut, err
}
