package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/server"
	"mercator-hq/tonecoach/pkg/usage/ledger"
	"mercator-hq/tonecoach/pkg/web/handlers"
	"mercator-hq/tonecoach/pkg/web/ui"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	useHosted     bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tonecoach web UI",
	Long: `Start the tonecoach HTTP server with the specified configuration.

The server serves the browser page, the thread API and the streaming
/coach and /madlibs endpoints. Mail calls fail with 503 until the account
has been authorized with "tonecoach auth".

Examples:
  # Start with defaults (127.0.0.1:7860, local model)
  tonecoach run

  # Start with custom config
  tonecoach run --config tonecoach.yaml

  # Use the hosted OpenAI model by default
  OPENAI_API_KEY=sk-... tonecoach run --hosted

  # Validate config and probe the model endpoints without serving
  tonecoach run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.useHosted, "hosted", false, "use the hosted model unless a request says otherwise")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and probe models without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if runFlags.logLevel != "" {
		if err := applyLogLevel(runFlags.logLevel); err != nil {
			return err
		}
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if cmd.Flags().Changed("hosted") {
		cfg.Model.UseHosted = runFlags.useHosted
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		probeModels(ctx, a, out)
		return nil
	}

	printBanner(cmd, cfg)

	page, err := ui.NewPage(cfg.Web.TemplateFile, logger)
	if err != nil {
		return cli.NewConfigError("web.template_file", err.Error())
	}
	if cfg.Web.Watch && cfg.Web.TemplateFile != "" {
		startPageWatcher(ctx, page, logger)
	}

	if a.ledger != nil {
		pruner := ledger.NewPruner(a.ledger, cfg.Usage.Retention)
		if pruner.Enabled() {
			scheduler := ledger.NewScheduler(pruner, cfg.Usage.Retention.Schedule)
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
				if next := scheduler.NextRun(); next != nil {
					logger.Debug("usage retention scheduler started", "next_run", next)
				}
			}
		}
	}

	checker := a.healthChecker()
	go func() {
		// Populate the provider health gauge before the first probe.
		status := checker.CheckReadiness(ctx)
		for name, result := range status.Checks {
			if result.Status != "ok" {
				logger.Warn("component not ready", "check", name, "error", result.Message)
			}
		}
	}()

	h := handlers.New(a.coach, page, handlers.Options{
		DefaultQuery: cfg.Mail.DefaultQuery,
		MaxResults:   cfg.Mail.MaxResults,
	}, a.metrics, logger)

	routes := server.Routes{
		Handlers: h,
		Health:   checker,
		Tracer:   a.tracer,
	}
	if cfg.Telemetry.Metrics.Enabled {
		routes.Metrics = a.metrics.Handler()
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	srv := server.New(&cfg.Server, routes, logger)

	fmt.Fprintf(out, "✓ Listening on http://%s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// applyLogLevel sets the level override through the environment so it
// survives config loading like every other override.
func applyLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return cli.NewConfigError("log-level", fmt.Sprintf("invalid log level %q", level))
	}
	return os.Setenv("TONECOACH_LOG_LEVEL", level)
}

func startPageWatcher(ctx context.Context, page *ui.Page, logger *slog.Logger) {
	watcher, err := ui.NewWatcher(page, ui.DefaultDebounceInterval)
	if err != nil {
		logger.Warn("template watching disabled", "error", err)
		return
	}
	go func() {
		err := watcher.Watch(ctx, func(err error) {
			if err != nil {
				logger.Warn("template reload failed, keeping previous page", "path", page.Path(), "error", err)
				return
			}
			logger.Info("template reloaded", "path", page.Path())
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("template watcher stopped", "error", err)
		}
	}()
}

// probeModels checks both model endpoints and prints the results.
func probeModels(ctx context.Context, a *app, out io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results := a.selector.HealthCheck(ctx)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := results[name]; err != nil {
			fmt.Fprintf(out, "✗ Model %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "✓ Model %s reachable\n", name)
	}
	if _, err := a.auth.Token(); err != nil {
		fmt.Fprintf(out, "✗ Mail: %v\n", err)
	} else {
		fmt.Fprintln(out, "✓ Mail token present")
	}
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tonecoach v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintln(out, "✓ Configuration loaded")

	model := cfg.Model.Local
	if cfg.Model.UseHosted {
		model = cfg.Model.Hosted
	}
	fmt.Fprintf(out, "✓ Default model: %s at %s\n", model.Model, model.BaseURL)

	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(out, "✓ Tracing to %s (sampler: %s)\n", cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.Sampler)
	}
	if cfg.Usage.Ledger.Enabled {
		slog.Debug("usage ledger enabled", "driver", cfg.Usage.Ledger.Driver, "path", cfg.Usage.Ledger.Path)
	}
}
