package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jmake/internal/planfmt"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [flags] [FILE]",
		Short: "Print the compilation batches for an entry file",
		Long: `Print the compilation batches for an entry file in dependency order.
Modules that import each other share a batch. Without FILE the [run] main
module of jmake.toml is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: planExecution,
	}
	cmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	cmd.Flags().BoolP("verbose", "v", false, "also list every module with its edges and external imports")
	cmd.Flags().StringP("output", "o", "", "write the plan to a file instead of stdout")
	return cmd
}

func planExecution(cmd *cobra.Command, args []string) error {
	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := planfmt.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
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
	doc := planfmt.Build(sess.Layout, sess.Index, res.Graph, res.Plan, verbose)

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, createErr := os.Create(outPath) // #nosec G304 -- user-selected output path
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, createErr)
		}
		defer f.Close()
		out = f
	}
	if err := planfmt.Write(out, doc, format); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	printTimings(cmd.ErrOrStderr(), sess, s)
	return nil
}
