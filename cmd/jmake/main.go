// Package main implements the jmake CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jmake/internal/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jmake",
		Short: "Build and run Java programs from a single entry file",
		Long: `jmake follows the imports of a Java entry file through the project's
source roots, groups import cycles into joint compilation batches and
runs javac on each batch in dependency order.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupCommand,
	}

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "concurrent file inspections (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("config", "", "path to a config file")

	addProfilingFlags(rootCmd)

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newModulesCmd())
	rootCmd.AddCommand(newMainClassCmd())
	rootCmd.AddCommand(newClasspathCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// main executes the root command under a context cancelled by SIGINT/SIGTERM.
// A program started by `jmake run` passes its exit status through.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := newRootCmd().ExecuteContextC(ctx)
	finish(cmd)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

// errReported marks failures whose details were already printed as diagnostics.
var errReported = errors.New("failed")

// exitError carries the exit status of the user's program.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("program exited with status %d", e.code)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
