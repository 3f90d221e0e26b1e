package main

import (
	"fmt"
	"os"

	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/gymlog/page"
	"github.com/2beens/gymlog/internal/gymlog/remote"
	"github.com/2beens/gymlog/internal/logging"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const serviceName = "gymlog-cli"

type rootOptions struct {
	env         string
	configPath  string
	backendURL  string
	dumpMetrics bool
}

// app holds everything a subcommand needs to drive the page.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	page     *page.Page
	shutdown func()
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.backendURL != "" {
		cfg.BackendURL = opts.backendURL
	}

	err = logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: serviceName,
		Console:          os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("running in [%s] environment, backend: %s", cfg.Environment, cfg.BackendURL)

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled && os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}
	shutdown, err := tracing.HoneycombSetup(honeycombEnabled, serviceName)
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	strategy, err := page.ParseSyncStrategy(cfg.SyncStrategy)
	if err != nil {
		shutdown()
		return nil, err
	}

	registry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymlog", "cli", registry)
	client := remote.NewClient(
		cfg.BackendURL,
		tracing.NewHTTPClient(cfg.RequestTimeout.Duration),
		metricsManager,
	)

	return &app{
		cfg:      cfg,
		registry: registry,
		page: page.New(page.Params{
			Backend:  client,
			Metrics:  metricsManager,
			Strategy: strategy,
		}),
		shutdown: shutdown,
	}, nil
}

func (a *app) close(dumpMetrics bool) {
	a.page.Close()
	if dumpMetrics {
		if err := metrics.WriteText(os.Stderr, a.registry); err != nil {
			log.Errorf("dump metrics: %s", err)
		}
	}
	a.shutdown()
}
