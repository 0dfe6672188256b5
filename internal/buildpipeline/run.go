package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"jmake/internal/ctxlog"
	"jmake/internal/project"
)

// DefaultDebugPort is the JDWP port used when none is configured.
const DefaultDebugPort = 5005

// RunRequest describes one launch of the compiled program.
type RunRequest struct {
	Layout    project.Layout
	Java      string
	MainClass string
	Args      []string
	Debug     bool
	DebugPort int
	Timeout   time.Duration // zero means no limit
	Progress  ProgressSink
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

// RunResult reports how the program ended.
type RunResult struct {
	ExitCode int
	Elapsed  time.Duration
}

// DebugAgent returns the -agentlib option that makes the JVM wait for a debugger on port.
func DebugAgent(port int) string {
	return "-agentlib:jdwp=transport=dt_socket,server=y,suspend=y,address=*:" + strconv.Itoa(port)
}

// RunCommand builds the java argv for req.
func RunCommand(req *RunRequest) []string {
	java := req.Java
	if java == "" {
		java = "java"
	}
	argv := []string{java, "-cp", req.Layout.Classpath()}
	if req.Debug {
		port := req.DebugPort
		if port <= 0 {
			port = DefaultDebugPort
		}
		argv = append(argv, DebugAgent(port))
	}
	argv = append(argv, req.MainClass)
	return append(argv, req.Args...)
}

// Run starts the program and waits for it. A non-zero exit status is not an
// error; it is returned in RunResult.ExitCode.
func Run(ctx context.Context, req *RunRequest) (RunResult, error) {
	var result RunResult
	if req == nil || req.MainClass == "" {
		return result, errors.New("run request requires a main class")
	}
	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	argv := RunCommand(req)
	// #nosec G204 -- argv is built from configured runtime and indexed module names
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Stdin = orReader(req.Stdin, os.Stdin)
	cmd.Stdout = orWriter(req.Stdout, os.Stdout)
	cmd.Stderr = orWriter(req.Stderr, os.Stderr)
	cmd.WaitDelay = time.Second

	logger := ctxlog.FromContext(ctx)
	logger.Debug("running", "main", req.MainClass, "debug", req.Debug)
	emit(req.Progress, Event{Stage: StageRun, Status: StatusWorking, Modules: []string{req.MainClass}})

	start := time.Now()
	err := cmd.Run()
	result.Elapsed = time.Since(start)

	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%s did not finish within %s: %w", req.MainClass, req.Timeout, ErrTimeout)
		emit(req.Progress, Event{Stage: StageRun, Status: StatusError, Err: err, Elapsed: result.Elapsed})
		return result, err
	}
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		err = fmt.Errorf("failed to start %s: %w", argv[0], err)
		emit(req.Progress, Event{Stage: StageRun, Status: StatusError, Err: err, Elapsed: result.Elapsed})
		return result, err
	}
	emit(req.Progress, Event{Stage: StageRun, Status: StatusDone, Elapsed: result.Elapsed})
	logger.Info("program exited", "code", result.ExitCode, "elapsed", result.Elapsed)
	return result, nil
}

func orReader(r, def io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func orWriter(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
