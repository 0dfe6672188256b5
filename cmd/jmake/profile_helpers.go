package main

import (
	"github.com/spf13/cobra"

	"jmake/internal/prof"
)

func addProfilingFlags(root *cobra.Command) {
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// setupProfiling starts the profilers selected by the root flags.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPUProfile, err = flags.GetString("cpu-profile"); err != nil {
		return nil, err
	}
	if opts.MemProfile, err = flags.GetString("mem-profile"); err != nil {
		return nil, err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, err
	}
	if opts == (prof.Options{}) {
		return nil, nil
	}
	return prof.Start(opts)
}

// finish stops profiling for the command that ran, if any.
func finish(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	s, err := settingsFrom(cmd)
	if err != nil || s.profile == nil {
		return
	}
	if err := s.profile.Stop(); err != nil {
		s.log.Warn("failed to write profiles", "err", err)
	}
}
