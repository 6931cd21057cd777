package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/config"
	"git.home.luguber.info/inful/pagesync/internal/contentreader"
	"git.home.luguber.info/inful/pagesync/internal/httpapi"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/manifest"
	"git.home.luguber.info/inful/pagesync/internal/metrics"
	"git.home.luguber.info/inful/pagesync/internal/notifier"
	"git.home.luguber.info/inful/pagesync/internal/repository"
	"git.home.luguber.info/inful/pagesync/internal/sync"
	"git.home.luguber.info/inful/pagesync/internal/watcher"
)

// app bundles the constructed collaborators shared by serve and sync.
type app struct {
	cfg          config.Config
	repo         *repository.SQLiteStore
	orchestrator *sync.Orchestrator
	metrics      *metrics.Metrics
}

// buildApp loads configuration and performs the startup sequence common to
// both subcommands: open the repository, build the orchestrator (which
// loads every persisted page into the manifest and cache once).
func buildApp(ctx context.Context, g *Global) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	repo, err := repository.NewSQLiteStore(cfg.DatabaseURL, cfg.MaxConnections)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.CategoryStartupFailure, "open repository").Build()
	}

	m := metrics.New()
	reader := contentreader.NewOSReader()
	notif := notifier.New(cfg.WebhookURL, cfg.WebhookSecret, m, g.Logger)

	syncCfg := sync.Config{
		ContentDir:     cfg.ContentDir,
		StripExtension: cfg.StripExtension,
		Manifest: manifest.Config{
			ServeHome:      cfg.ServeHome,
			HomeIdentifier: cfg.HomeIdentifier,
		},
	}

	orch, err := sync.New(ctx, repo, reader, notif, syncCfg, m, g.Logger)
	if err != nil {
		_ = repo.Close()
		return nil, apperrors.WrapError(err, apperrors.CategoryStartupFailure, "build sync orchestrator").Build()
	}

	return &app{cfg: cfg, repo: repo, orchestrator: orch, metrics: m}, nil
}

// SyncCmd runs a single full_sync and exits — useful for CI.
type SyncCmd struct{}

// Run implements the one-shot sync subcommand.
func (SyncCmd) Run(g *Global, _ *CLI) error {
	ctx := context.Background()
	a, err := buildApp(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.repo.Close() }()

	changed, err := a.orchestrator.FullSync(ctx)
	if err != nil {
		// Returned unwrapped: FullSync already surfaces a *apperrors.ClassifiedError
		// where applicable, and wrapping it here would hide that classification
		// from main's CLI error adapter.
		return err
	}
	if changed {
		a.orchestrator.NotifyBuild(ctx)
	}
	return nil
}

// ServeCmd runs the full daemon per spec.md's Open Questions resolution:
// an unconditional full_sync at startup, then the watcher and HTTP server
// for the process lifetime.
type ServeCmd struct {
	Addr        string `help:"HTTP listen address for the read API and static frontend" default:":8080"`
	MetricsAddr string `name:"metrics-addr" help:"HTTP listen address for the Prometheus /metrics endpoint" default:":9090"`
}

// Run implements the serve subcommand.
func (s ServeCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.repo.Close() }()

	if _, err := a.orchestrator.FullSync(ctx); err != nil {
		// See SyncCmd.Run: returned unwrapped to preserve any classification.
		return err
	}

	osWatcher, err := watcher.NewOSWatcher(a.cfg.ContentDir, a.metrics, g.Logger)
	if err != nil {
		return apperrors.WrapError(err, apperrors.CategoryStartupFailure, "start content watcher").Build()
	}
	defer osWatcher.Close()

	worker := watcher.NewWorker(osWatcher.Events(), osWatcher, a.orchestrator, a.cfg.DebounceWindow, a.metrics, g.Logger)
	go func() {
		if err := worker.Run(ctx); err != nil {
			g.Logger.Error("watcher worker stopped", logfields.Error(err))
		}
	}()

	scheduler, err := startSafetyNetScheduler(ctx, a, g)
	if err != nil {
		return apperrors.WrapError(err, apperrors.CategoryStartupFailure, "start scheduler").Build()
	}
	defer func() { _ = scheduler.Shutdown() }()

	readAPI := httpapi.NewServer(a.orchestrator, httpapi.Config{
		ServeHome:      a.cfg.ServeHome,
		HomeIdentifier: a.cfg.HomeIdentifier,
	}, g.Logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", readAPI.Handler())
	mux.Handle("/", http.FileServer(http.Dir(a.cfg.FrontendDist)))

	httpServer := &http.Server{
		Addr:         s.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:    s.MetricsAddr,
		Handler: metrics.Handler(a.metrics),
	}

	go func() {
		g.Logger.Info("metrics server listening", "addr", s.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.Logger.Error("metrics server failed", logfields.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	g.Logger.Info("http server listening", "addr", s.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// startSafetyNetScheduler registers a periodic full_sync job, in the
// teacher's gocron.Scheduler registration style, as a defense against a
// missed or garbled watcher event (§9 rationale: the watcher is not the
// only path to consistency).
func startSafetyNetScheduler(ctx context.Context, a *app, g *Global) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			changed, err := a.orchestrator.FullSync(ctx)
			if err != nil {
				g.Logger.Warn("scheduled safety-net full sync failed", logfields.Error(err))
				return
			}
			if changed {
				a.orchestrator.NotifyBuild(ctx)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
