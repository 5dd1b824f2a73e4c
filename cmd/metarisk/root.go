package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/metarisk/internal/config"
	"github.com/okian/metarisk/pkg/logger"
)

// env carries what every subcommand needs after the root pre-run.
type env struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:          "metarisk",
		Short:        "Metabolic risk assessment",
		Long:         "metarisk scores the 3-year risk of a first new-onset metabolic abnormality with one of four pre-trained models.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}
	root.PersistentFlags().String("config", "", "YAML config file (overrides "+config.EnvConfig+")")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("artifact-dir", "", "directory holding the scoring artifacts")

	root.AddCommand(newServeCmd(e))
	root.AddCommand(newModelsCmd(e))
	root.AddCommand(newScoreCmd(e))
	return root
}

// load resolves configuration with flags taking precedence over file and env,
// then configures the global logger.
func (e *env) load(cmd *cobra.Command) error {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv(config.EnvConfig, p); err != nil {
			return err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if dir, _ := cmd.Flags().GetString("artifact-dir"); dir != "" {
		cfg.ArtifactDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Only the server logs to stdout; other commands keep it for results.
	var out io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		out = cmd.OutOrStdout()
	}
	if err := logger.Configure(cfg.LogFormat, out); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	e.cfg = cfg
	e.log = logger.Get()
	return nil
}
