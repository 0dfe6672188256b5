package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// main-class and classpath serve editor debug integrations, which need the
// class to launch and the classpath to attach with.

func newMainClassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "main-class FILE",
		Short: "Print the main class name of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			id, err := sess.EntryModule(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sess.Index.NameOf(id))
			return err
		},
	}
}

func newClasspathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classpath [FILE]",
		Short: "Print the runtime classpath of the project containing FILE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFrom(cmd)
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), s, sessionStart(args))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sess.Layout.Classpath())
			return err
		},
	}
}
