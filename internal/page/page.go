// Package page defines the canonical page entity and its total conversions
// to and from the persisted row shape and the HTTP wire shape.
package page

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// wireTimeLayout is the UTC, no-timezone-suffix format used on the wire.
const wireTimeLayout = "2006-01-02 15:04:05"

// Page is the canonical domain entity: a single synced Markdown file.
type Page struct {
	Identifier       string
	Filename         string
	Name             *string
	HTMLContent      string
	MDContent        string
	MDContentHash    string
	Tags             []string
	ModifiedDatetime *time.Time
	CreatedDatetime  *time.Time
}

// StoredRow is the shape persisted by the repository: tags is a JSON array
// string (or nil when empty), matching the persisted page table schema.
type StoredRow struct {
	Identifier       string
	Filename         string
	Name             *string
	HTMLContent      string
	MDContent        string
	MDContentHash    string
	Tags             *string
	ModifiedDatetime *time.Time
	CreatedDatetime  *time.Time
}

// WireRow is the JSON shape served by the HTTP read surface.
type WireRow struct {
	Identifier       string   `json:"identifier"`
	Filename         string   `json:"filename"`
	Name             *string  `json:"name,omitempty"`
	HTMLContent      string   `json:"html_content"`
	MDContent        string   `json:"md_content"`
	MDContentHash    string   `json:"md_content_hash"`
	Tags             []string `json:"tags"`
	ModifiedDatetime *string  `json:"modified_datetime,omitempty"`
	CreatedDatetime  *string  `json:"created_datetime,omitempty"`
}

// FromStoredRow converts a persisted row into a Page. It fails only when
// Tags is present but not a well-formed JSON array of strings.
func FromStoredRow(row StoredRow) (Page, error) {
	tags, err := decodeTags(row.Tags)
	if err != nil {
		return Page{}, fmt.Errorf("decode tags for %s: %w", row.Filename, err)
	}
	return Page{
		Identifier:       row.Identifier,
		Filename:         row.Filename,
		Name:             row.Name,
		HTMLContent:      row.HTMLContent,
		MDContent:        row.MDContent,
		MDContentHash:    row.MDContentHash,
		Tags:             tags,
		ModifiedDatetime: row.ModifiedDatetime,
		CreatedDatetime:  row.CreatedDatetime,
	}, nil
}

// ToStoredRow converts a Page into its persisted row shape. An empty tag
// sequence is emitted as an absent (nil) column rather than "[]".
func (p Page) ToStoredRow() StoredRow {
	var tags *string
	if len(p.Tags) > 0 {
		b, err := json.Marshal(p.Tags)
		if err == nil {
			s := string(b)
			tags = &s
		}
	}
	return StoredRow{
		Identifier:       p.Identifier,
		Filename:         p.Filename,
		Name:             p.Name,
		HTMLContent:      p.HTMLContent,
		MDContent:        p.MDContent,
		MDContentHash:    p.MDContentHash,
		Tags:             tags,
		ModifiedDatetime: p.ModifiedDatetime,
		CreatedDatetime:  p.CreatedDatetime,
	}
}

// ToWireRow converts a Page into the HTTP wire shape. Timestamps are
// formatted "YYYY-MM-DD HH:MM:SS" UTC with no timezone suffix; absent
// timestamps remain absent.
func (p Page) ToWireRow() WireRow {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return WireRow{
		Identifier:       p.Identifier,
		Filename:         p.Filename,
		Name:             p.Name,
		HTMLContent:      p.HTMLContent,
		MDContent:        p.MDContent,
		MDContentHash:    p.MDContentHash,
		Tags:             tags,
		ModifiedDatetime: formatWireTime(p.ModifiedDatetime),
		CreatedDatetime:  formatWireTime(p.CreatedDatetime),
	}
}

// Clone returns a deep copy of p: Tags and the Name/timestamp pointers are
// independent of p's, so mutating the result never affects p.
func (p Page) Clone() Page {
	clone := p
	if p.Tags != nil {
		clone.Tags = append([]string(nil), p.Tags...)
	}
	clone.Name = clonePtr(p.Name)
	clone.ModifiedDatetime = clonePtr(p.ModifiedDatetime)
	clone.CreatedDatetime = clonePtr(p.CreatedDatetime)
	return clone
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

func formatWireTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(wireTimeLayout)
	return &s
}

func decodeTags(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(*raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ComputeContentHash returns the 16-character lowercase hex XXH64 digest of
// raw, the entire raw file content including any frontmatter fence. It is a
// pure function of its input: identical bytes always yield identical output.
func ComputeContentHash(raw []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}
