package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jmake/internal/buildpipeline"
	"jmake/internal/ctxlog"
	"jmake/internal/driver"
	"jmake/internal/ui"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [FILE]",
		Short: "Compile an entry file and everything it imports",
		Long: `Compile an entry file and every project module it transitively imports.
Each batch of the plan is one javac invocation; the first failing batch
stops the build.`,
		Args: cobra.MaximumNArgs(1),
		RunE: buildExecution,
	}
	addCompileFlags(cmd)
	return cmd
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().BoolP("debug", "g", false, "emit debug information (javac -g)")
	cmd.Flags().Bool("print-commands", false, "print every javac command before running it")
	cmd.Flags().String("javac", "javac", "java compiler to invoke")
	cmd.Flags().Duration("compile-timeout", buildpipeline.DefaultCompileTimeout, "time limit for a single javac invocation")
}

type compileOptions struct {
	debug         bool
	printCommands bool
}

// readCompileOptions reads the per-command flags. --ui is bound to the config
// key and already validated, see settings.useTUI.
func readCompileOptions(cmd *cobra.Command) (compileOptions, error) {
	var opts compileOptions
	var err error
	if opts.debug, err = cmd.Flags().GetBool("debug"); err != nil {
		return opts, err
	}
	if opts.printCommands, err = cmd.Flags().GetBool("print-commands"); err != nil {
		return opts, err
	}
	return opts, nil
}

func buildExecution(cmd *cobra.Command, args []string) error {
	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	opts, err := readCompileOptions(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, err := openSession(ctx, s, sessionStart(args))
	if err != nil {
		return err
	}
	defer printDiagnostics(cmd.ErrOrStderr(), sess, s)

	entry, err := resolveEntry(sess, args)
	if err != nil {
		return err
	}
	res, err := sess.Plan(ctx, entry)
	if err != nil {
		return err
	}
	result, err := compilePlan(ctx, cmd, sess, res, s, opts)
	if err != nil {
		return err
	}
	if !s.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %s: %d modules in %d batches -> %s\n",
			res.EntryName(sess.Index), result.Modules, result.Batches, relToRoot(sess.Root, sess.Layout.OutputDir))
	}
	printTimings(cmd.ErrOrStderr(), sess, s)
	printStageTimings(cmd.ErrOrStderr(), result.Timings, s)
	return nil
}

// compilePlan runs javac over res, with the progress UI when enabled.
func compilePlan(ctx context.Context, cmd *cobra.Command, sess *driver.Session, res *driver.PlanResult, s *settings, opts compileOptions) (buildpipeline.CompileResult, error) {
	req := &buildpipeline.CompileRequest{
		Layout:        sess.Layout,
		Index:         sess.Index,
		Plan:          res.Plan,
		Javac:         s.cfg.Javac,
		Debug:         opts.debug,
		Flags:         sess.Layout.CompileFlags,
		Timeout:       s.cfg.CompileTimeout,
		PrintCommands: opts.printCommands,
		Stdout:        cmd.OutOrStdout(),
	}
	batches := res.Plan.Names(sess.Index)

	var result buildpipeline.CompileResult
	err := sess.Timer.Measure("compile", func() error {
		var compileErr error
		switch {
		case s.useTUI(opts.printCommands):
			result, compileErr = runCompileWithUI(ctx, "compiling "+res.EntryName(sess.Index), batches, req)
		default:
			if !s.quiet {
				req.Progress = ui.NewTextSink(cmd.ErrOrStderr(), len(batches))
			}
			result, compileErr = buildpipeline.Compile(ctx, req)
		}
		return compileErr
	})
	if err != nil {
		ctxlog.FromContext(ctx).Debug("compile failed", "err", err)
		return result, reportBatchError(sess, err, cmd.ErrOrStderr())
	}
	return result, nil
}

func relToRoot(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
