package sync

import (
	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/page"
)

// validateDrafts implements the collision policy (§4.6 Validation pass). It
// must be called while holding at least the manifest read lock, and is a
// pure function of its inputs: it performs no I/O and mutates neither the
// manifest nor the drafts.
//
// Within the batch, any identifier claimed by two or more drafts rejects
// ALL of them — symmetric rejection, not first-wins, so the outcome never
// depends on directory traversal order. Against existing state, a
// surviving draft whose identifier is already bound to a different
// filename is also rejected.
func (o *Orchestrator) validateDrafts(drafts []page.Draft) []page.Draft {
	byIdentifier := make(map[string][]page.Draft, len(drafts))
	for _, d := range drafts {
		byIdentifier[d.Identifier] = append(byIdentifier[d.Identifier], d)
	}

	valid := make([]page.Draft, 0, len(drafts))
	for identifier, claimants := range byIdentifier {
		if len(claimants) > 1 {
			clsErr := apperrors.IdentifierCollisionError("identifier claimed by multiple drafts in batch, rejecting all").
				WithContext("identifier", identifier).WithContext("claimant_count", len(claimants)).Build()
			o.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())),
				logfields.Identifier(identifier), "claimant_count", len(claimants))
			if o.metrics != nil {
				o.metrics.DraftsRejected.WithLabelValues("in_batch_collision").Add(float64(len(claimants)))
			}
			continue
		}

		draft := claimants[0]
		if existingFilename, ok := o.manifest.GetFilenameForIdentifier(identifier); ok && existingFilename != draft.Filename {
			clsErr := apperrors.IdentifierCollisionError("identifier already bound to a different filename, rejecting draft").
				WithContext("identifier", identifier).WithContext("filename", draft.Filename).
				WithContext("existing_filename", existingFilename).Build()
			o.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())),
				logfields.Identifier(identifier), logfields.Filename(draft.Filename), "existing_filename", existingFilename)
			if o.metrics != nil {
				o.metrics.DraftsRejected.WithLabelValues("existing_binding").Inc()
			}
			continue
		}
		valid = append(valid, draft)
	}
	return valid
}
