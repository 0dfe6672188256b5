package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jmake/internal/buildpipeline"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [FILE] [-- args...]",
		Short: "Build an entry file and run its main class",
		Long: `Build an entry file and run it with java. Arguments after -- are passed
to the program; without them the [run] args of jmake.toml are used.
With --debug the JVM waits for a debugger on --debug-port.`,
		RunE: runExecution,
	}
	addCompileFlags(cmd)
	cmd.Flags().String("java", "java", "java launcher to invoke")
	cmd.Flags().Int("debug-port", buildpipeline.DefaultDebugPort, "JDWP port used with --debug")
	cmd.Flags().Duration("run-timeout", 0, "time limit for the program (0 = none)")
	return cmd
}

// splitArgsAtDash separates jmake's own arguments from the program's.
func splitArgsAtDash(cmd *cobra.Command, args []string) (before, after []string) {
	at := cmd.ArgsLenAtDash()
	if at < 0 {
		return args, nil
	}
	return args[:at], args[at:]
}

func runExecution(cmd *cobra.Command, args []string) error {
	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	own, programArgs := splitArgsAtDash(cmd, args)
	if len(own) > 1 {
		return fmt.Errorf("run accepts at most one entry file, got %d (pass program arguments after --)", len(own))
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx, s, sessionStart(own))
	if err != nil {
		return err
	}
	defer printDiagnostics(cmd.ErrOrStderr(), sess, s)

	entry, err := resolveEntry(sess, own)
	if err != nil {
		return err
	}
	res, err := sess.Plan(ctx, entry)
	if err != nil {
		return err
	}
	compiled, err := compilePlan(ctx, cmd, sess, res, s, opts)
	if err != nil {
		return err
	}
	if programArgs == nil {
		programArgs = sess.Layout.RunArgs
	}

	req := &buildpipeline.RunRequest{
		Layout:    sess.Layout,
		Java:      s.cfg.Java,
		MainClass: res.EntryName(sess.Index),
		Args:      programArgs,
		Debug:     opts.debug,
		DebugPort: s.cfg.DebugPort,
		Timeout:   s.cfg.RunTimeout,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	}
	if opts.debug && !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "waiting for a debugger on port %d\n", req.DebugPort)
	}

	var result buildpipeline.RunResult
	err = sess.Timer.Measure("run", func() error {
		var runErr error
		result, runErr = buildpipeline.Run(ctx, req)
		return runErr
	})
	printTimings(cmd.ErrOrStderr(), sess, s)
	printStageTimings(cmd.ErrOrStderr(), compiled.Timings, s)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return &exitError{code: result.ExitCode}
	}
	return nil
}
