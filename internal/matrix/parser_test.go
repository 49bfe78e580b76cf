package matrix

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeager/tp-stats/internal/domain"
)

// TestParse_Fixture parses a recorded sample of the hub's matrix format and
// checks the normalized snapshot against it.
func TestParse_Fixture(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "matrix.html"))
	require.NoError(t, err)
	defer f.Close()

	snap, err := Parse(f)
	require.NoError(t, err)

	assert.Equal(t, []string{"sv", "de", "fr"}, snap.Languages)
	assert.Equal(t, []string{"coreutils", "grep", "tar"}, snap.Packages)

	// Whitespace around tokens is stripped.
	cell, ok := snap.Cell("sv", "tar")
	require.True(t, ok)
	assert.Equal(t, "fuzzy", cell.RawToken)

	// A non-breaking-space cell means the pair is not tracked.
	_, ok = snap.Cell("fr", "grep")
	assert.False(t, ok)

	// The "hello" row has too few cells and is recorded as malformed.
	var malformed []domain.Warning
	for _, w := range snap.Warnings {
		if w.Kind == domain.WarnMalformedRow {
			malformed = append(malformed, w)
		}
	}
	require.Len(t, malformed, 1)
	assert.Equal(t, "hello", malformed[0].Package)
	assert.False(t, snap.HasPackage("hello"))
}

func TestParse_NoStructure(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "plain text",
			content: "503 Service Unavailable",
		},
		{
			name:    "html without team columns",
			content: `<html><body><table><tr><td>nothing here</td></tr></table></body></html>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := Parse(strings.NewReader(tc.content))
			assert.Nil(t, snap)
			assert.ErrorIs(t, err, ErrNoStructure)
		})
	}
}

// TestParse_HeaderOnly checks that a matrix with structural markers but no
// data rows is a valid empty result, not a parse failure.
func TestParse_HeaderOnly(t *testing.T) {
	content := `<table><thead><tr>
		<th>Domain</th><th>Pct</th>
		<th><a href="../team/sv.html">sv</a></th>
	</tr></thead><tbody></tbody></table>`

	snap, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"sv"}, snap.Languages)
	assert.Empty(t, snap.Packages)
	assert.Empty(t, snap.Cells)
	assert.Empty(t, snap.Warnings)
}

func TestParse_DuplicateCellLaterWins(t *testing.T) {
	content := `<table><thead><tr>
		<th>Domain</th><th>Pct</th>
		<th><a href="../team/sv.html">sv</a></th>
	</tr></thead><tbody>
	<tr><td><a href="../domain/grep.html">grep</a></td><td>50%</td><td>50%</td></tr>
	<tr><td><a href="../domain/grep.html">grep</a></td><td>100%</td><td>100%</td></tr>
	</tbody></table>`

	snap, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"grep"}, snap.Packages)
	cell, ok := snap.Cell("sv", "grep")
	require.True(t, ok)
	assert.Equal(t, "100%", cell.RawToken)

	require.Len(t, snap.Warnings, 1)
	assert.Equal(t, domain.WarnDuplicateCell, snap.Warnings[0].Kind)
	assert.Equal(t, "sv", snap.Warnings[0].Language)
	assert.Equal(t, "grep", snap.Warnings[0].Package)
}

// TestParse_DuplicateHeaderColumn checks that a repeated language column does
// not shift the columns after it: every cell stays aligned with its header
// column, and the duplicated column's later cell wins.
func TestParse_DuplicateHeaderColumn(t *testing.T) {
	content := `<table><thead><tr>
		<th>Domain</th><th>Pct</th>
		<th><a href="../team/sv.html">sv</a></th>
		<th><a href="../team/sv.html">sv</a></th>
		<th><a href="../team/de.html">de</a></th>
	</tr></thead><tbody>
	<tr><td><a href="../domain/grep.html">grep</a></td><td>50%</td><td>100%</td><td>0%</td><td>50%</td></tr>
	</tbody></table>`

	snap, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"sv", "de"}, snap.Languages)

	// de keeps the token from its own column.
	cell, ok := snap.Cell("de", "grep")
	require.True(t, ok)
	assert.Equal(t, "50%", cell.RawToken)

	// The repeated sv column's later cell wins.
	cell, ok = snap.Cell("sv", "grep")
	require.True(t, ok)
	assert.Equal(t, "0%", cell.RawToken)

	// Both the header duplication and the overwritten cell are recorded.
	kinds := make(map[domain.WarningKind]int)
	for _, w := range snap.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 2, kinds[domain.WarnDuplicateCell])
}

func TestParse_LanguageCodesAreNormalized(t *testing.T) {
	content := `<table><thead><tr>
		<th>Domain</th><th>Pct</th>
		<th><a href="../team/PT_BR.html">pt_BR</a></th>
	</tr></thead><tbody></tbody></table>`

	snap, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"pt_br"}, snap.Languages)
}

func TestBuild_ClassifiesCells(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "matrix.html"))
	require.NoError(t, err)
	defer f.Close()

	snap, err := Build(f, DefaultVocabulary())
	require.NoError(t, err)

	expected := map[domain.CellKey]domain.CoverageState{
		{Language: "sv", Package: "coreutils"}: domain.Complete,
		{Language: "de", Package: "coreutils"}: domain.Partial,
		{Language: "sv", Package: "grep"}:      domain.Missing,
		{Language: "sv", Package: "tar"}:       domain.Partial,
		{Language: "de", Package: "tar"}:       domain.NotApplicable,
		{Language: "fr", Package: "tar"}:       domain.Missing, // "??" falls back to missing
	}
	for key, state := range expected {
		cell, ok := snap.Cells[key]
		require.True(t, ok, "cell %v missing", key)
		assert.Equal(t, state, cell.State, "cell %v", key)
	}

	// The unrecognized "??" token surfaces exactly one warning with its location.
	var unknown []domain.Warning
	for _, w := range snap.Warnings {
		if w.Kind == domain.WarnUnknownToken {
			unknown = append(unknown, w)
		}
	}
	require.Len(t, unknown, 1)
	assert.Equal(t, "fr", unknown[0].Language)
	assert.Equal(t, "tar", unknown[0].Package)
	assert.Contains(t, unknown[0].Detail, `"??"`)
}
