package sync

import (
	"context"
	"fmt"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/page"
)

// ProcessBatch is the atomic five-pass ingestion pipeline (§4.6): deletion,
// discovery, validation, manifest update, ingestion. It reports whether
// anything actually changed, so the caller (the watcher worker) knows
// whether to fire the notifier.
//
// A single failed deletion aborts the entire batch before discovery ever
// runs; every other per-item failure is logged and skipped, letting the
// rest of the batch proceed.
func (o *Orchestrator) ProcessBatch(ctx context.Context, changes, deletions []string) (bool, error) {
	if len(changes) == 0 && len(deletions) == 0 {
		return false, nil
	}
	if o.metrics != nil {
		o.metrics.BatchesProcessed.Inc()
		o.metrics.BatchSize.Observe(float64(len(changes) + len(deletions)))
	}

	changed := false

	if err := o.runDeletionPass(ctx, deletions); err != nil {
		return changed, err
	}
	changed = changed || len(deletions) > 0

	drafts := o.runDiscoveryPass(ctx, changes)

	o.manifestMu.RLock()
	validDrafts := o.validateDrafts(drafts)
	o.manifestMu.RUnlock()

	o.manifestMu.Lock()
	for _, d := range validDrafts {
		o.manifest.Insert(d.Filename, d.Identifier)
	}
	o.manifestMu.Unlock()

	ingested := o.runIngestionPass(ctx, validDrafts)
	changed = changed || ingested > 0

	o.logger.Info("batch processed",
		logfields.ChangeCount(len(changes)), logfields.DeleteCount(len(deletions)),
		logfields.DraftCount(len(validDrafts)))
	return changed, nil
}

// runDeletionPass removes each deleted path from the repository, cache,
// and manifest. The first failing deletion aborts the whole batch.
func (o *Orchestrator) runDeletionPass(ctx context.Context, deletions []string) error {
	for _, absPath := range deletions {
		filename, err := relativeFilename(o.cfg.ContentDir, absPath)
		if err != nil {
			clsErr := apperrors.WrapError(err, apperrors.CategoryContentOutsideRoot, "deletion path outside content root, skipping").
				WithContext("path", absPath).Build()
			o.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())), logfields.Path(absPath), logfields.Error(err))
			continue
		}

		if err := o.repo.Delete(ctx, filename); err != nil {
			if o.metrics != nil {
				o.metrics.DeletionErrors.Inc()
			}
			return apperrors.WrapError(err, apperrors.CategoryRepositoryWriteFailure, fmt.Sprintf("delete %s", filename)).
				WithContext("filename", filename).Build()
		}

		o.manifestMu.Lock()
		o.manifest.RemoveByFilename(filename)
		o.manifestMu.Unlock()

		o.cacheMu.Lock()
		o.cache.Remove(filename)
		o.cacheMu.Unlock()
	}
	return nil
}

// runDiscoveryPass materializes a Draft for every change path. A failing
// discovery is logged and skipped; it never aborts the batch.
func (o *Orchestrator) runDiscoveryPass(ctx context.Context, changes []string) []page.Draft {
	drafts := make([]page.Draft, 0, len(changes))
	for _, absPath := range changes {
		draft, err := o.discoverDraft(ctx, absPath)
		if err != nil {
			clsErr := apperrors.WrapError(err, apperrors.CategoryReadFailure, "discovery failed, skipping file").
				WithContext("path", absPath).Build()
			o.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())), logfields.Path(absPath), logfields.Error(err))
			continue
		}
		drafts = append(drafts, draft)
	}
	if o.metrics != nil {
		o.metrics.DraftsDiscovered.Add(float64(len(drafts)))
	}
	return drafts
}

// runIngestionPass compiles and persists each valid draft in turn,
// returning how many were successfully ingested. A save failure is logged
// and the pass continues with the next draft.
func (o *Orchestrator) runIngestionPass(ctx context.Context, drafts []page.Draft) int {
	ingested := 0
	for _, draft := range drafts {
		o.manifestMu.RLock()
		resolver := func(link string) string {
			return o.manifest.ResolveLink(link, draft.Filename, o.cfg.Manifest)
		}
		html, err := o.compiler.CompileToHTML(draft.Body, resolver)
		o.manifestMu.RUnlock()
		if err != nil {
			o.logger.Warn("markdown compilation failed, skipping file", logfields.Filename(draft.Filename), logfields.Error(err))
			continue
		}

		p := draft.ToPage(html)
		if err := o.repo.Save(ctx, p); err != nil {
			clsErr := apperrors.WrapError(err, apperrors.CategoryRepositoryWriteFailure, "repository save failed, skipping file").
				WithContext("filename", draft.Filename).Build()
			o.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())), logfields.Filename(draft.Filename), logfields.Error(err))
			if o.metrics != nil {
				o.metrics.IngestionErrors.Inc()
			}
			continue
		}

		o.cacheMu.Lock()
		o.cache.Insert(p)
		o.cacheMu.Unlock()
		ingested++
	}
	return ingested
}
