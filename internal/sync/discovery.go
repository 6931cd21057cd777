package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesync/internal/markdown"
	"git.home.luguber.info/inful/pagesync/internal/page"
	"git.home.luguber.info/inful/pagesync/internal/pathverify"
)

// dateOnlyLayout is the fallback frontmatter date format, resolved to
// midnight UTC of that date.
const dateOnlyLayout = "2006-01-02"

// discoverDraft materializes one Draft from an absolute path beneath the
// content root. Failure aborts only this draft; the caller logs and skips
// it so the rest of the batch continues (§4.6 Discovery, §7).
func (o *Orchestrator) discoverDraft(ctx context.Context, absPath string) (page.Draft, error) {
	filename, err := relativeFilename(o.cfg.ContentDir, absPath)
	if err != nil {
		return page.Draft{}, err
	}

	raw, err := o.reader.Read(ctx, absPath)
	if err != nil {
		return page.Draft{}, fmt.Errorf("read %s: %w", filename, err)
	}

	meta, err := o.reader.Metadata(ctx, absPath)
	if err != nil {
		return page.Draft{}, fmt.Errorf("metadata %s: %w", filename, err)
	}

	fm, body := markdown.ExtractFrontmatter(string(raw), filename)

	identifier := filename
	if fm.Identifier != nil && *fm.Identifier != "" {
		identifier = *fm.Identifier
	} else {
		identifier = defaultIdentifier(filename, o.cfg.StripExtension)
	}

	var tags []string
	if fm.Tags != nil {
		tags = fm.Tags
	} else {
		tags = []string{}
	}

	return page.Draft{
		Filename:         filename,
		Identifier:       identifier,
		Name:             fm.Name,
		Body:             body,
		MDContentHash:    page.ComputeContentHash(raw),
		Tags:             tags,
		ModifiedDatetime: resolveTieredDatetime(fm.ModifiedDatetime, meta.Modified),
		CreatedDatetime:  resolveTieredDatetime(fm.CreatedDatetime, meta.Created),
	}, nil
}

// defaultIdentifier derives the default identifier from a content-root
// relative filename: the full path, with ".md" dropped only when
// stripExtension is set.
func defaultIdentifier(filename string, stripExtension bool) string {
	if !stripExtension {
		return filename
	}
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext)
}

// resolveTieredDatetime implements the tiered datetime resolution: an
// explicit frontmatter value wins if it parses, first as RFC-3339, then as
// a bare YYYY-MM-DD date resolved to midnight UTC; otherwise it falls back
// to the OS-metadata value, which may itself be absent.
func resolveTieredDatetime(fmValue *string, fallback *time.Time) *time.Time {
	if fmValue != nil {
		if t, err := time.Parse(time.RFC3339, *fmValue); err == nil {
			u := t.UTC()
			return &u
		}
		if t, err := time.Parse(dateOnlyLayout, *fmValue); err == nil {
			return &t
		}
	}
	return fallback
}

// relativeFilename converts an absolute path beneath root into a
// content-root-relative, forward-slash, non-leading-slash filename
// (invariant 3), failing with ContentOutsideRoot semantics when it is not
// actually contained.
func relativeFilename(root, absPath string) (string, error) {
	if _, err := pathverify.VerifyAbsolute(root, absPath); err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", fmt.Errorf("relativize %s against %s: %w", absPath, root, err)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimPrefix(rel, "/"), nil
}
