package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/dseframe"
	"github.com/alexshd/dseframe/internal/settings"
)

var (
	configPath   string
	settingsPath string
	xVar, yVar   string
	policy       dseframe.RecordPolicy
	logLevel     string

	cfg    dseframe.Config
	logger *slog.Logger
	prefs  settings.Settings
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	policy = dseframe.PolicyAbort

	root := &cobra.Command{
		Use:           "dseframe",
		Short:         "Compare design space exploration methods by their Pareto frontiers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if logger, err = newLogger(logLevel); err != nil {
				return err
			}
			slog.SetDefault(logger)

			prefs = settings.Settings{}
			if settingsPath == "" {
				if settingsPath, err = settings.DefaultPath(); err != nil {
					logger.Warn("no settings directory, nothing will be remembered", "error", err)
				}
			}
			if settingsPath != "" {
				if prefs, err = settings.Load(settingsPath); err != nil {
					logger.Warn("ignoring unreadable settings", "path", settingsPath, "error", err)
				}
			}

			cfg, err = resolveConfig(cmd)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (x_var, y_var, record_policy)")
	pf.StringVar(&settingsPath, "settings", "", "settings file (default <user config dir>/dseframe/settings.yaml)")
	pf.StringVar(&xVar, "x-var", "", "objective column on the X axis (default Latency)")
	pf.StringVar(&yVar, "y-var", "", "objective column on the Y axis (default AREA)")
	pf.Var(&policy, "policy", "malformed record policy: abort, skip-one or skip-all")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(analyzeCmd(), watchCmd(), runCmd(), columnsCmd())
	return root
}

// resolveConfig layers remembered axes, the config file, the environment and
// flags.
func resolveConfig(cmd *cobra.Command) (dseframe.Config, error) {
	base := dseframe.DefaultConfig()
	if prefs.XVar != "" && prefs.YVar != "" {
		base.XVar, base.YVar = prefs.XVar, prefs.YVar
	}

	c, err := dseframe.LoadConfigOnto(base, configPath)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("x-var") {
		c.XVar = xVar
	}
	if flags.Changed("y-var") {
		c.YVar = yVar
	}
	if flags.Changed("policy") {
		c.RecordPolicy = policy
	}
	if err := c.Validate(); err != nil {
		return c, err
	}

	logger.Debug("configuration resolved",
		"x_var", c.XVar,
		"y_var", c.YVar,
		"record_policy", c.RecordPolicy.String(),
	)
	return c, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
	})), nil
}

// resultsPath returns the file named on the command line, or the remembered
// one.
func resultsPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if p := prefs.ResultsPath(); p != "" {
		logger.Info("using remembered results file", "path", p)
		return p, nil
	}
	return "", fmt.Errorf("no results file given and none remembered")
}

// remember stores path and the active axes for the next run.
func remember(path string) {
	if settingsPath == "" {
		return
	}
	if err := prefs.Remember(path); err != nil {
		logger.Warn("cannot remember results file", "path", path, "error", err)
		return
	}
	prefs.XVar, prefs.YVar = cfg.XVar, cfg.YVar

	if err := settings.Save(settingsPath, prefs); err != nil {
		logger.Warn("cannot save settings", "path", settingsPath, "error", err)
	}
}
