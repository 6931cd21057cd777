// Package contentreader defines the abstracted-filesystem contract the sync
// orchestrator depends on (read, metadata, enumerate) plus the production
// OS-filesystem implementation. Paths passed to Reader methods are always
// absolute, rooted beneath the content directory.
package contentreader

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Metadata carries the optional OS-reported timestamps for a file.
type Metadata struct {
	Modified *time.Time
	Created  *time.Time
}

// Reader is the content-reader contract: read, metadata, enumerate.
type Reader interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Metadata(ctx context.Context, path string) (Metadata, error)
	ListMarkdown(ctx context.Context, root string) ([]string, error)
}

// OSReader implements Reader over the local filesystem.
type OSReader struct{}

// NewOSReader returns a Reader backed by the local filesystem.
func NewOSReader() *OSReader {
	return &OSReader{}
}

// Read returns the raw bytes of path.
func (OSReader) Read(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Metadata returns the OS-reported modification time for path. Go's
// standard library exposes no portable creation time, so Created mirrors
// Modified — the tiered datetime resolution in the discovery pass falls
// back to this value only when frontmatter supplies nothing, and it is
// re-read fresh on every discovery pass, not only on first sight of path.
func (OSReader) Metadata(_ context.Context, path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	modified := info.ModTime().UTC()
	created := modified
	return Metadata{Modified: &modified, Created: &created}, nil
}

// ListMarkdown walks root and returns every Markdown file's absolute path,
// applying the same extension/dotfile/backup filter as the watcher's event
// filter (§4.7): extension "md", basename neither dotfile-prefixed nor
// "~"-suffixed.
func (OSReader) ListMarkdown(_ context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsMarkdownPath(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsMarkdownPath reports whether path should be considered a content file:
// extension "md", basename not a dotfile, basename not "~"-suffixed.
func IsMarkdownPath(path string) bool {
	if strings.ToLower(filepath.Ext(path)) != ".md" {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, "~") {
		return false
	}
	return true
}
