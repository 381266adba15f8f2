package repoquery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		mode     SearchMode
		expected string
	}{
		{
			name:     "Filename with spaces is quoted",
			query:    "OKR 2025",
			mode:     SearchModeFilename,
			expected: `filename:"OKR 2025" repo:acme/docs`,
		},
		{
			name:     "Filename without spaces is not quoted",
			query:    "README.md",
			mode:     SearchModeFilename,
			expected: "filename:README.md repo:acme/docs",
		},
		{
			name:     "Path mode leaves query unmodified",
			query:    "src/api",
			mode:     SearchModePath,
			expected: "src/api in:path repo:acme/docs",
		},
		{
			name:     "Content mode adds only the repository scope",
			query:    "TODO",
			mode:     SearchModeContent,
			expected: "TODO repo:acme/docs",
		},
		{
			name:     "All mode combines file and path",
			query:    "notes",
			mode:     SearchModeAll,
			expected: "notes in:file,path repo:acme/docs",
		},
		{
			name:     "Empty content query degenerates to scope only",
			query:    "",
			mode:     SearchModeContent,
			expected: "repo:acme/docs",
		},
		{
			name:     "Empty all query keeps qualifiers",
			query:    "",
			mode:     SearchModeAll,
			expected: "in:file,path repo:acme/docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchQuery(tt.query, tt.mode, "acme", "docs")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildSearchQueryQualifierCounts(t *testing.T) {
	modes := []SearchMode{SearchModeFilename, SearchModePath, SearchModeContent, SearchModeAll}

	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			got := BuildSearchQuery("term", mode, "acme", "docs")

			assert.Equal(t, 1, strings.Count(got, "repo:"), "exactly one repository scope qualifier")
			assert.Equal(t, mode == SearchModeFilename, strings.Count(got, "filename:") == 1)
			assert.Equal(t, mode == SearchModePath, strings.Count(got, "in:path") == 1)
			assert.Equal(t, mode == SearchModeAll, strings.Count(got, "in:file,path") == 1)

			if mode == SearchModeContent {
				assert.Equal(t, "term repo:acme/docs", got, "content mode carries no extra qualifier")
			}
		})
	}
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		input       string
		expected    SearchMode
		shouldError bool
	}{
		{input: "filename", expected: SearchModeFilename},
		{input: "path", expected: SearchModePath},
		{input: "content", expected: SearchModeContent},
		{input: "all", expected: SearchModeAll},
		{input: "", expected: SearchModeAll},
		{input: "regex", shouldError: true},
		{input: "FILENAME", shouldError: true},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			mode, err := ParseSearchMode(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, mode)
			}
		})
	}
}
