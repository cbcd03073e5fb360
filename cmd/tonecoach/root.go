package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/telemetry/logging"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tonecoach",
	Short: "Tonecoach - email reply coaching with a language model",
	Long: `Tonecoach reads a Gmail thread and asks a language model to coach your
reply draft or to infer what the sender wants.

The model output is streamed to the browser while it arrives, and its
actionable section (the rewritten reply, or a fill-in-the-blank template)
is filed as a Gmail draft in the same thread. Token usage and cost are
recorded for every request.

Models are reached through OpenAI-compatible endpoints: a local one
(Ollama, LM Studio) by default, or the hosted OpenAI API.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("TONECOACH_CONFIG"), "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default .env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadEnvFile loads the --env-file, or .env when it exists. Variables
// already set in the environment win.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cli.NewConfigError("env-file", err.Error())
		}
		return nil
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cli.NewConfigError("env-file", err.Error())
	}
	return nil
}

// loadConfig loads the process configuration and builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, nil, cli.NewConfigError("config", err.Error())
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	return cfg, logger, nil
}
