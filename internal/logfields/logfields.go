// Package logfields provides canonical log field names and helpers for structured logging.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFilename    = "filename"
	KeyIdentifier  = "identifier"
	KeyPath        = "path"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyBatchSize   = "batch_size"
	KeyChangeCount = "change_count"
	KeyDeleteCount = "delete_count"
	KeyDraftCount  = "draft_count"
	KeyPageCount   = "page_count"
	KeyError       = "error"
	KeyCategory    = "category"
	KeyMethod      = "method"
	KeyRemoteAddr  = "remote_addr"
	KeyRequestID   = "request_id"
	KeyStatus      = "status"
	KeyURL         = "url"
)

// Filename returns a slog.Attr for a content-root-relative filename.
func Filename(f string) slog.Attr { return slog.String(KeyFilename, f) }

// Identifier returns a slog.Attr for a page identifier.
func Identifier(id string) slog.Attr { return slog.String(KeyIdentifier, id) }

// Path returns a slog.Attr for a filesystem path.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Stage returns a slog.Attr for a named pass within the sync orchestrator.
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }

// DurationMS returns a slog.Attr for a duration in milliseconds.
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// BatchSize returns a slog.Attr for the combined size of a batch.
func BatchSize(n int) slog.Attr { return slog.Int(KeyBatchSize, n) }

// ChangeCount returns a slog.Attr for the number of changed paths in a batch.
func ChangeCount(n int) slog.Attr { return slog.Int(KeyChangeCount, n) }

// DeleteCount returns a slog.Attr for the number of deleted paths in a batch.
func DeleteCount(n int) slog.Attr { return slog.Int(KeyDeleteCount, n) }

// DraftCount returns a slog.Attr for the number of drafts surviving validation.
func DraftCount(n int) slog.Attr { return slog.Int(KeyDraftCount, n) }

// PageCount returns a slog.Attr for a page count.
func PageCount(n int) slog.Attr { return slog.Int(KeyPageCount, n) }

// Method returns a slog.Attr for an HTTP method.
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// RemoteAddr returns a slog.Attr for a remote address.
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }

// RequestID returns a slog.Attr for a request ID.
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

// Status returns a slog.Attr for an HTTP status code.
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }

// URL returns a slog.Attr for a URL field.
func URL(u string) slog.Attr { return slog.String(KeyURL, u) }

// Category returns a slog.Attr for an apperrors classification category.
func Category(c string) slog.Attr { return slog.String(KeyCategory, c) }

// Error returns a slog.Attr for an error, or an empty string if nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
