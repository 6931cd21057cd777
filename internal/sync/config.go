// Package sync implements the sync orchestrator: the component that owns
// the manifest and read cache and drives discovery, validation, manifest
// update, and ingestion for every batch of filesystem changes.
package sync

import "git.home.luguber.info/inful/pagesync/internal/manifest"

// Config carries the orchestrator's static configuration, threaded through
// discovery (default-identifier derivation) and the manifest's resolve_link
// policy.
type Config struct {
	// ContentDir is the absolute content root every filename is made
	// relative to.
	ContentDir string

	// StripExtension, when true, drops ".md" from a default identifier
	// derived from a file's relative path (DEFAULT_IDENTIFIER_STRIP_EXTENSION).
	StripExtension bool

	// Manifest carries the serve_home / home_identifier knobs used by
	// resolve_link.
	Manifest manifest.Config
}
