package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jmake/internal/config"
	"jmake/internal/ctxlog"
	"jmake/internal/prof"
)

type settingsKey struct{}

// settings is what every subcommand needs after the root flags and the
// user config have been merged.
type settings struct {
	cfg        *config.Config
	configPath string
	quiet      bool
	timings    bool
	color      bool
	profile    *prof.Session
	log        *log.Logger
}

// useTUI reports whether compile progress goes to the interactive view.
// The view would interleave with echoed commands, so those force text output.
func (s *settings) useTUI(printCommands bool) bool {
	if s.quiet || printCommands {
		return false
	}
	switch s.cfg.UI {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, resolved, err := config.Load(config.LoadOptions{
		ConfigFilePath: configPath,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}

	s := &settings{cfg: cfg, configPath: resolved, quiet: quiet, timings: timings}
	switch cfg.Color {
	case "on":
		s.color = true
	case "off":
		s.color = false
	default:
		s.color = !color.NoColor && isTerminal(os.Stderr)
	}
	color.NoColor = !s.color

	logger, err := ctxlog.New(os.Stderr, ctxlog.Options{Level: cfg.LogLevel, Prefix: "jmake"})
	if err != nil {
		return err
	}
	if resolved != "" {
		logger.Debug("config loaded", "path", resolved)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ctxlog.WithLogger(ctx, logger)
	s.log = logger
	if s.profile, err = setupProfiling(cmd); err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(ctx, settingsKey{}, s))
	return nil
}

func settingsFrom(cmd *cobra.Command) (*settings, error) {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*settings); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%s: command settings are not initialised", cmd.Name())
}
