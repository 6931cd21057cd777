// Package markdown implements the two pieces of the content pipeline
// specified at the interface level: YAML frontmatter extraction and
// GitHub-flavoured Markdown compilation with a pluggable link resolver.
package markdown

import (
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
)

// Frontmatter is the optional YAML metadata block bounded by leading "---"
// fences. Every field is a pointer/slice so that "absent" is representable;
// a zero-value Frontmatter means every field is absent.
type Frontmatter struct {
	Identifier       *string  `yaml:"identifier"`
	Name             *string  `yaml:"name"`
	Tags             []string `yaml:"tags"`
	ModifiedDatetime *string  `yaml:"modified_datetime"`
	CreatedDatetime  *string  `yaml:"created_datetime"`
}

const fenceDelimiter = "---"

// ExtractFrontmatter splits text into a parsed Frontmatter and the
// remaining body. If text does not begin with "---", or no closing fence
// is found, it returns a default (all-absent) Frontmatter and the
// unmodified text. A malformed YAML block logs a warning and likewise
// falls back to a default Frontmatter, trimming the body to start after
// the (still-located) closing fence.
func ExtractFrontmatter(text, filename string) (Frontmatter, string) {
	if !strings.HasPrefix(text, fenceDelimiter) {
		return Frontmatter{}, text
	}

	closingOffset := strings.Index(text[len(fenceDelimiter):], fenceDelimiter)
	if closingOffset == -1 {
		return Frontmatter{}, text
	}
	closingStart := len(fenceDelimiter) + closingOffset
	yamlBlock := text[len(fenceDelimiter):closingStart]
	body := strings.TrimLeft(text[closingStart+len(fenceDelimiter):], " \t\r\n")

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		clsErr := apperrors.WrapError(err, apperrors.CategoryFrontmatterMalformed, "frontmatter malformed, treating as absent").
			WithContext("filename", filename).Build()
		slog.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())),
			logfields.Filename(filename), logfields.Error(err))
		return Frontmatter{}, body
	}
	return fm, body
}
