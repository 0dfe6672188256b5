package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type moduleEntry struct {
	Name    string `json:"name"`
	Package string `json:"package"`
	Path    string `json:"path"`
}

func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules [flags] [PATH]",
		Short: "List every module found under the project's source roots",
		Args:  cobra.MaximumNArgs(1),
		RunE:  modulesExecution,
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}

func modulesExecution(cmd *cobra.Command, args []string) error {
	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	sess, err := openSession(cmd.Context(), s, sessionStart(args))
	if err != nil {
		return err
	}
	defer printDiagnostics(cmd.ErrOrStderr(), sess, s)

	entries := make([]moduleEntry, 0, sess.Index.Len())
	for _, meta := range sess.Index.Metas {
		entries = append(entries, moduleEntry{
			Name:    meta.Name,
			Package: meta.Package,
			Path:    relToRoot(sess.Root, meta.Path),
		})
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tPACKAGE\tPATH")
	for _, e := range entries {
		pkg := e.Package
		if pkg == "" {
			pkg = "(default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, pkg, e.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printTimings(cmd.ErrOrStderr(), sess, s)
	return nil
}
