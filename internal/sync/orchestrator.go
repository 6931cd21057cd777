package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/pagesync/internal/cache"
	"git.home.luguber.info/inful/pagesync/internal/contentreader"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/manifest"
	"git.home.luguber.info/inful/pagesync/internal/markdown"
	"git.home.luguber.info/inful/pagesync/internal/metrics"
	"git.home.luguber.info/inful/pagesync/internal/notifier"
	"git.home.luguber.info/inful/pagesync/internal/page"
	"git.home.luguber.info/inful/pagesync/internal/repository"
)

// Orchestrator is the process-wide sync engine: it owns the manifest and
// read cache behind their own RWMutexes and drives the five-pass batch
// ingestion pipeline (§4.6). A single instance is constructed at startup
// and shared between the watcher worker and the HTTP read surface.
type Orchestrator struct {
	repo     repository.Repository
	reader   contentreader.Reader
	notifier notifier.Notifier
	compiler *markdown.Compiler
	cfg      Config
	metrics  *metrics.Metrics
	logger   *slog.Logger

	manifestMu sync.RWMutex
	manifest   *manifest.Manifest

	cacheMu sync.RWMutex
	cache   *cache.Cache
}

// New constructs an Orchestrator and performs the one-time startup load:
// every persisted page is read once, and the manifest and cache are
// populated from it. It fails only if that initial load fails.
func New(ctx context.Context, repo repository.Repository, reader contentreader.Reader, notif notifier.Notifier, cfg Config, m *metrics.Metrics, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		repo:     repo,
		reader:   reader,
		notifier: notif,
		compiler: markdown.NewCompiler(),
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		manifest: manifest.New(),
		cache:    cache.New(),
	}

	pages, err := repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pages at startup: %w", err)
	}
	for _, p := range pages {
		o.manifest.Insert(p.Filename, p.Identifier)
		o.cache.Insert(p)
	}
	logger.Info("loaded pages at startup", logfields.PageCount(len(pages)))
	return o, nil
}

// FullSync enumerates every Markdown file under the content root and
// processes it as a single batch with no deletions.
func (o *Orchestrator) FullSync(ctx context.Context) (bool, error) {
	paths, err := o.reader.ListMarkdown(ctx, o.cfg.ContentDir)
	if err != nil {
		return false, fmt.Errorf("list markdown files: %w", err)
	}
	if o.metrics != nil {
		o.metrics.FullSyncsRun.Inc()
	}
	return o.ProcessBatch(ctx, paths, nil)
}

// HandleFileDeleted is a single-deletion convenience wrapper equivalent to
// ProcessBatch(ctx, nil, []string{path}).
func (o *Orchestrator) HandleFileDeleted(ctx context.Context, path string) error {
	_, err := o.ProcessBatch(ctx, nil, []string{path})
	return err
}

// GetAllPages returns an independent snapshot of every cached page.
func (o *Orchestrator) GetAllPages() []page.Page {
	o.cacheMu.RLock()
	defer o.cacheMu.RUnlock()
	return o.cache.SnapshotAll()
}

// GetPageByIdentifier resolves identifier through the manifest, then reads
// the matching cache entry. The home-identifier aliasing (empty, "/", or
// home_identifier all mean home_identifier when serve_home is enabled) is
// the caller's (httpapi's) responsibility, not the orchestrator's.
func (o *Orchestrator) GetPageByIdentifier(identifier string) (page.Page, bool) {
	o.manifestMu.RLock()
	filename, ok := o.manifest.GetFilenameForIdentifier(identifier)
	o.manifestMu.RUnlock()
	if !ok {
		return page.Page{}, false
	}

	o.cacheMu.RLock()
	defer o.cacheMu.RUnlock()
	return o.cache.GetByFilename(filename)
}

// NotifyBuild fires the build webhook exactly once. It never returns an
// error; notifier failures are logged by the notifier itself.
func (o *Orchestrator) NotifyBuild(ctx context.Context) {
	o.notifier.Notify(ctx)
}
