package lint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageFromFilename(t *testing.T) {
	testCases := []struct {
		filename string
		want     string
	}{
		{"coreutils-9.4.sv.po", "coreutils"},
		{"gnulib-4.0.0.2567.sv.po", "gnulib"},
		{"wget.sv.po", "wget"},
		{"tar.po", "tar"},
		{"README", "README"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, PackageFromFilename(tc.filename), tc.filename)
	}
}

func TestFileResultCounts(t *testing.T) {
	fr := FileResult{
		File: "coreutils-9.4.sv.po",
		Issues: []Issue{
			{Rule: "untranslated", Severity: "error", Message: "empty msgstr"},
			{Rule: "fuzzy", Severity: "warning", Message: "fuzzy entry"},
			{Rule: "fuzzy", Severity: "warning", Message: "fuzzy entry"},
			{Rule: "trailing-space", Severity: "warning", Message: "trailing whitespace"},
		},
	}
	errors, warnings, fuzzy := fr.Counts()
	assert.Equal(t, 1, errors)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 2, fuzzy)
}

func TestFileResult_ParsesLintJSON(t *testing.T) {
	raw := `{"file": "grep-3.11.sv.po", "issues": [
		{"rule": "printf-format", "severity": "error", "message": "format mismatch", "line": 42},
		{"rule": "fuzzy", "severity": "warning", "message": "fuzzy entry"}
	]}`
	var fr FileResult
	require.NoError(t, json.Unmarshal([]byte(raw), &fr))
	require.Len(t, fr.Issues, 2)
	assert.Equal(t, 42, fr.Issues[0].Line)
	assert.True(t, fr.Issues[1].Fuzzy())
}

func TestGroupByTranslator(t *testing.T) {
	results := []FileResult{
		{File: "coreutils-9.4.sv.po", Issues: []Issue{
			{Rule: "untranslated", Severity: "error"},
		}},
		{File: "grep-3.11.sv.po", Issues: []Issue{
			{Rule: "fuzzy", Severity: "warning"},
			{Rule: "trailing-space", Severity: "warning"},
		}},
		{File: "mystery-1.0.sv.po", Issues: nil},
	}
	assignments := map[string]string{
		"coreutils": "Anna Andersson",
		"grep":      "Anna Andersson",
	}

	summaries := GroupByTranslator(results, assignments)
	require.Len(t, summaries, 2)

	// Sorted by translator name.
	anna := summaries[0]
	assert.Equal(t, "Anna Andersson", anna.Translator)
	assert.Equal(t, []string{"coreutils-9.4.sv.po", "grep-3.11.sv.po"}, anna.Files)
	assert.Equal(t, 1, anna.Errors)
	assert.Equal(t, 1, anna.Warnings)
	assert.Equal(t, 1, anna.Fuzzy)

	unknown := summaries[1]
	assert.Equal(t, "Unknown", unknown.Translator)
	assert.Equal(t, []string{"mystery-1.0.sv.po"}, unknown.Files)
	assert.Zero(t, unknown.Errors)
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name                    string
		errors, warnings, fuzzy int
		strict                  bool
		want                    int
	}{
		{"clean", 0, 0, 0, false, 0},
		{"errors win", 3, 5, 2, false, 2},
		{"warnings only", 0, 1, 0, false, 1},
		{"fuzzy ignored without strict", 0, 0, 4, false, 0},
		{"fuzzy fails under strict", 0, 0, 4, true, 1},
		{"errors outrank strict fuzzy", 1, 0, 4, true, 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.errors, tc.warnings, tc.fuzzy, tc.strict))
		})
	}
}
