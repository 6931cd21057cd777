package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFrontmatterNoLeadingFence(t *testing.T) {
	fm, body := ExtractFrontmatter("# Hello", "post.md")
	assert.Equal(t, Frontmatter{}, fm)
	assert.Equal(t, "# Hello", body)
}

func TestExtractFrontmatterParsesYAML(t *testing.T) {
	text := "---\nidentifier: hello\ntags:\n  - a\n  - b\n---\n# World"
	fm, body := ExtractFrontmatter(text, "post1.md")
	require.NotNil(t, fm.Identifier)
	assert.Equal(t, "hello", *fm.Identifier)
	assert.Equal(t, []string{"a", "b"}, fm.Tags)
	assert.Equal(t, "# World", body)
}

func TestExtractFrontmatterMissingClosingFenceReturnsDefault(t *testing.T) {
	text := "---\nidentifier: hello\n# World"
	fm, body := ExtractFrontmatter(text, "post1.md")
	assert.Equal(t, Frontmatter{}, fm)
	assert.Equal(t, text, body)
}

func TestExtractFrontmatterMalformedYAMLReturnsDefault(t *testing.T) {
	text := "---\n:::not yaml:::\n---\nbody text"
	fm, body := ExtractFrontmatter(text, "post1.md")
	assert.Equal(t, Frontmatter{}, fm)
	assert.Equal(t, "body text", body)
}

func TestExtractFrontmatterTrailingFenceNoBody(t *testing.T) {
	text := "---\nidentifier: x\n---"
	fm, body := ExtractFrontmatter(text, "post1.md")
	require.NotNil(t, fm.Identifier)
	assert.Equal(t, "", body)
}

func TestCompileToHTMLRewritesLinkDestinations(t *testing.T) {
	c := NewCompiler()
	html, err := c.CompileToHTML("[Go to B](b.md)", func(dest string) string {
		if dest == "b.md" {
			return "/b"
		}
		return dest
	})
	require.NoError(t, err)
	assert.Contains(t, html, `href="/b"`)
}

func TestCompileToHTMLPreservesBrokenLinksVerbatim(t *testing.T) {
	c := NewCompiler()
	html, err := c.CompileToHTML("[Nowhere](void.md)", func(dest string) string { return dest })
	require.NoError(t, err)
	assert.Contains(t, html, `href="void.md"`)
}

func TestCompileToHTMLSupportsStrikethroughAndTables(t *testing.T) {
	c := NewCompiler()
	html, err := c.CompileToHTML("~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |", func(dest string) string { return dest })
	require.NoError(t, err)
	assert.Contains(t, html, "<del>gone</del>")
	assert.Contains(t, html, "<table>")
}
