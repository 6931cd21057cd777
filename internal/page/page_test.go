package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRoundTripPreservesFields(t *testing.T) {
	modified := time.Date(2026, 3, 4, 12, 30, 0, 0, time.UTC)
	original := Page{
		Identifier:       "hello",
		Filename:         "post1.md",
		Name:             strPtr("Hello World"),
		HTMLContent:      "<h1>World</h1>",
		MDContent:        "# World",
		MDContentHash:    "0123456789abcdef",
		Tags:             []string{"a", "b"},
		ModifiedDatetime: &modified,
	}

	row := original.ToStoredRow()
	roundTripped, err := FromStoredRow(row)
	require.NoError(t, err)

	assert.Equal(t, original, roundTripped)
}

func TestRoundTripCanonicalizesAbsentTags(t *testing.T) {
	original := Page{Identifier: "x", Filename: "x.md", MDContentHash: "ffffffffffffffff"}

	row := original.ToStoredRow()
	assert.Nil(t, row.Tags, "empty tag sequence must be emitted as an absent column")

	roundTripped, err := FromStoredRow(row)
	require.NoError(t, err)
	assert.Equal(t, []string{}, roundTripped.Tags)
}

func TestFromStoredRowRejectsMalformedTags(t *testing.T) {
	bad := "not json"
	_, err := FromStoredRow(StoredRow{Filename: "x.md", Tags: &bad})
	assert.Error(t, err)
}

func TestToWireRowFormatsTimestamps(t *testing.T) {
	modified := time.Date(2026, 3, 4, 12, 30, 0, 0, time.UTC)
	p := Page{Identifier: "x", Filename: "x.md", ModifiedDatetime: &modified}

	wire := p.ToWireRow()
	require.NotNil(t, wire.ModifiedDatetime)
	assert.Equal(t, "2026-03-04 12:30:00", *wire.ModifiedDatetime)
	assert.Nil(t, wire.CreatedDatetime)
	assert.Equal(t, []string{}, wire.Tags)
}

func TestComputeContentHashIsDeterministicAnd16Hex(t *testing.T) {
	raw := []byte("---\nidentifier: hello\n---\n# World")
	h1 := ComputeContentHash(raw)
	h2 := ComputeContentHash(raw)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}
