package repoquery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchReason(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		mode     SearchMode
		itemName string
		itemPath string
		expected string
	}{
		{
			name:     "Explicit filename mode",
			query:    "notes",
			mode:     SearchModeFilename,
			itemName: "notes.md",
			itemPath: "docs/notes.md",
			expected: "filename match",
		},
		{
			name:     "Explicit path mode",
			query:    "docs",
			mode:     SearchModePath,
			itemName: "index.md",
			itemPath: "docs/index.md",
			expected: "path match",
		},
		{
			name:     "Explicit content mode",
			query:    "TODO",
			mode:     SearchModeContent,
			itemName: "main.go",
			itemPath: "cmd/main.go",
			expected: "content match",
		},
		{
			name:     "All mode, query in filename",
			query:    "Notes",
			mode:     SearchModeAll,
			itemName: "meeting-notes.md",
			itemPath: "docs/meeting-notes.md",
			expected: "filename match (heuristic)",
		},
		{
			name:     "All mode, query only in path",
			query:    "archive",
			mode:     SearchModeAll,
			itemName: "q3.md",
			itemPath: "archive/2025/q3.md",
			expected: "path match (heuristic)",
		},
		{
			name:     "All mode, query in neither field",
			query:    "quarterly goals",
			mode:     SearchModeAll,
			itemName: "q3.md",
			itemPath: "archive/2025/q3.md",
			expected: "content match or unknown (heuristic)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchReason(tt.query, tt.mode, tt.itemName, tt.itemPath)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatSearchResult(t *testing.T) {
	result := &SearchResult{
		TotalCount: 2,
		Items: []SearchItem{
			{Name: "notes.md", Path: "docs/notes.md"},
			{Name: "todo.md", Path: "todo.md"},
		},
	}

	report := FormatSearchResult("notes", SearchModeAll, result)

	assert.Contains(t, report, "Total matches: 2")
	assert.Contains(t, report, "1. `docs/notes.md`")
	assert.Contains(t, report, "2. `todo.md`")
	assert.Contains(t, report, "heuristic", "all mode reports are labelled heuristic")

	// Explicit modes carry no heuristic disclaimer.
	report = FormatSearchResult("notes", SearchModeFilename, result)
	assert.False(t, strings.Contains(report, "heuristic: GitHub does not report"))
}

func TestFormatCodeSearchResult(t *testing.T) {
	result := &SearchResult{
		TotalCount: 1,
		Items: []SearchItem{
			{Name: "parser.go", Path: "internal/parser.go", Fragments: []string{"func Parse(input string)"}},
		},
	}

	report := FormatCodeSearchResult("Parse", "go", 1, result)

	assert.Contains(t, report, "language: go")
	assert.Contains(t, report, "relevance order")
	assert.Contains(t, report, "`internal/parser.go`")
	assert.Contains(t, report, "func Parse(input string)")
}

func TestFormatIssueResult(t *testing.T) {
	items := []IssueItem{
		{Number: 12, Title: "Crash on empty query", State: "open", IsPullRequest: false, URL: "https://github.com/acme/docs/issues/12", CreatedAt: "2026-08-01"},
		{Number: 15, Title: "Fix crash on empty query", State: "open", IsPullRequest: true, URL: "https://github.com/acme/docs/pull/15", CreatedAt: "2026-08-03"},
	}

	report := FormatIssueResult("crash", items, 2)

	assert.Contains(t, report, "#12 [issue, open]")
	assert.Contains(t, report, "#15 [PR, open]")

	empty := FormatIssueResult("nothing", nil, 0)
	assert.Contains(t, empty, "No issues or pull requests matched")
}

func TestFormatFileContents(t *testing.T) {
	report := FormatFileContents("docs/readme.md", "main", "# Hello")

	assert.Contains(t, report, "## docs/readme.md @ main")
	assert.Contains(t, report, "# Hello")
	assert.True(t, strings.HasSuffix(report, "```\n"))
}

func TestFormatDirectoryListing(t *testing.T) {
	items := []DirectoryItem{
		{Name: "docs", Path: "docs", Type: "dir"},
		{Name: "go.mod", Path: "go.mod", Type: "file", Size: 310},
	}

	report := FormatDirectoryListing("", items)

	assert.Contains(t, report, "## Directory /")
	assert.Contains(t, report, "- docs/")
	assert.Contains(t, report, "- go.mod (310 bytes)")
}
