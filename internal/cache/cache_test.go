package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesync/internal/page"
)

func TestInsertAndGetByFilename(t *testing.T) {
	c := New()
	p := page.Page{Filename: "a.md", Identifier: "a"}
	c.Insert(p)

	got, ok := c.GetByFilename("a.md")
	require.True(t, ok)
	assert.Equal(t, "a", got.Identifier)
}

func TestRemove(t *testing.T) {
	c := New()
	c.Insert(page.Page{Filename: "a.md", Identifier: "a"})
	c.Remove("a.md")

	_, ok := c.GetByFilename("a.md")
	assert.False(t, ok)
}

func TestSnapshotAllIsIndependentCopy(t *testing.T) {
	c := New()
	c.Insert(page.Page{Filename: "a.md", Identifier: "a", Tags: []string{"x"}})

	snap := c.SnapshotAll()
	require.Len(t, snap, 1)
	snap[0].Tags[0] = "mutated"

	got, _ := c.GetByFilename("a.md")
	assert.Equal(t, "x", got.Tags[0], "mutating a snapshot entry must not affect the live cache")
}

func TestLen(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())
	c.Insert(page.Page{Filename: "a.md", Identifier: "a"})
	assert.Equal(t, 1, c.Len())
}
