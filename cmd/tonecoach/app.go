package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/tonecoach/pkg/coach"
	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/mail/gmail"
	"mercator-hq/tonecoach/pkg/processing/costs"
	"mercator-hq/tonecoach/pkg/processing/tokens"
	"mercator-hq/tonecoach/pkg/providerfactory"
	"mercator-hq/tonecoach/pkg/relay"
	"mercator-hq/tonecoach/pkg/telemetry/health"
	"mercator-hq/tonecoach/pkg/telemetry/metrics"
	"mercator-hq/tonecoach/pkg/telemetry/tracing"
	"mercator-hq/tonecoach/pkg/usage"
	"mercator-hq/tonecoach/pkg/usage/ledger"
)

// app holds the components shared by the commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	auth     *gmail.Authenticator
	mail     *gmail.Client
	selector *providerfactory.Selector
	ledger   *ledger.Store
	usage    *usage.Recorder
	coach    *coach.Service
}

// newApp wires the request path: mail, models, usage accounting and the
// relay. The ledger is opened only when enabled.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.tracer = tracer

	counter := tokens.NewCounter(&cfg.Processing.Tokens, logger)
	a.metrics.SetTokenizerDisabled(!counter.Enabled())
	calculator := costs.NewCalculator(&cfg.Processing.Costs)

	recorderOpts := []usage.Option{
		usage.WithObserver(a.metrics),
		usage.WithLogger(logger),
	}
	if cfg.Usage.Ledger.Enabled {
		store, err := ledger.Open(&cfg.Usage.Ledger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open usage ledger: %w", err)
		}
		a.ledger = store
		recorderOpts = append(recorderOpts, usage.WithStore(store))
	}
	a.usage = usage.NewRecorder(counter, calculator, recorderOpts...)

	selector, err := providerfactory.NewSelector(&cfg.Model)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create model providers: %w", err)
	}
	a.selector = selector

	a.auth = gmail.NewAuthenticator(&cfg.Mail)
	a.mail = gmail.NewClient(&cfg.Mail, a.auth.Service, logger)

	r := &relay.Relay{
		Usage:   a.usage,
		Drafts:  a.mail,
		Metrics: a.metrics,
		Logger:  logger,
	}
	a.coach = coach.NewService(a.mail, a.selector, r, coach.Options{
		UseHosted:    cfg.Model.UseHosted,
		Temperature:  cfg.Model.Temperature,
		RequestUsage: cfg.Model.RequestUsage,
	}, a.metrics)

	return a, nil
}

// healthChecker registers a check per usable provider, the mail token and
// the ledger. Provider results feed the provider health gauge.
func (a *app) healthChecker() *health.Checker {
	checker := health.New(Version, 0)

	for name, p := range a.selector.Providers() {
		if name == providerfactory.NameHosted && p.GetConfig().APIKey == "" {
			continue
		}
		checker.RegisterCheck("provider."+name, p.HealthCheck)
	}
	checker.RegisterCheck("mail", func(ctx context.Context) error {
		_, err := a.auth.Token()
		return err
	})
	if a.ledger != nil {
		checker.RegisterCheck("ledger", func(ctx context.Context) error {
			_, err := a.ledger.Count(ctx)
			return err
		})
	}

	checker.OnResult(func(name string, err error) {
		if provider, ok := strings.CutPrefix(name, "provider."); ok {
			a.metrics.UpdateProviderHealth(provider, err == nil)
		}
	})
	return checker
}

// Close flushes pending spans and releases the providers and the ledger.
func (a *app) Close() error {
	var errs []error
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancel()
	}
	if a.selector != nil {
		errs = append(errs, a.selector.Close())
	}
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	return errors.Join(errs...)
}

// openLedger opens the ledger for the offline commands.
func openLedger(cfg *config.Config) (*ledger.Store, error) {
	if !cfg.Usage.Ledger.Enabled {
		return nil, fmt.Errorf("the usage ledger is disabled; set usage.ledger.enabled")
	}
	return ledger.Open(&cfg.Usage.Ledger)
}
