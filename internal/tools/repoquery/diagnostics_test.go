package repoquery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const gb = int64(1024 * 1024 * 1024)

func TestDiagnosisIsOversized(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes int64
		oversized bool
	}{
		{name: "Small repository", sizeBytes: 2 * gb, oversized: false},
		{name: "Exactly at the 50 GB ceiling", sizeBytes: 50 * gb, oversized: false},
		{name: "Just over the ceiling", sizeBytes: 50*gb + 1, oversized: true},
		{name: "Well over the ceiling", sizeBytes: 60 * gb, oversized: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Diagnosis{RepoSizeBytes: tt.sizeBytes}
			assert.Equal(t, tt.oversized, d.IsOversized())
		})
	}
}

func TestDiagnosisIsIndexed(t *testing.T) {
	tests := []struct {
		name    string
		worked  bool
		matches int
		indexed bool
	}{
		{name: "Baseline worked with matches", worked: true, matches: 12, indexed: true},
		{name: "Baseline worked but empty", worked: true, matches: 0, indexed: false},
		{name: "Baseline failed", worked: false, matches: 0, indexed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Diagnosis{BaselineSearchWorked: tt.worked, BaselineMatchCount: tt.matches}
			assert.Equal(t, tt.indexed, d.IsIndexed())
		})
	}
}

func TestFormatDiagnosisInfrastructureErrorTakesPriority(t *testing.T) {
	d := &Diagnosis{
		DiagnosticError: "GitHub API rate limit exceeded - wait a minute and retry (no automatic retry is performed)",
	}

	report := FormatDiagnosis(d, "notes", SearchModeAll)

	assert.Contains(t, report, "Infrastructure error")
	assert.Contains(t, report, "rate limit")
	assert.NotContains(t, report, "Repository size", "size details are skipped when the diagnosis itself failed")
}

func TestFormatDiagnosisOversizedRepository(t *testing.T) {
	d := &Diagnosis{
		RepoSizeBytes:        60 * gb,
		DefaultBranch:        "main",
		BaselineSearchWorked: true,
		BaselineMatchCount:   0,
	}

	report := FormatDiagnosis(d, "notes", SearchModeAll)

	assert.Contains(t, report, "Within size limit (50 GB): No")
	assert.Contains(t, report, "does not appear to be indexed")
	assert.Contains(t, report, "list_directory", "recommends path navigation as the alternative")
	assert.Contains(t, report, "get_file_contents")
}

func TestFormatDiagnosisIndexedButNoMatch(t *testing.T) {
	d := &Diagnosis{
		RepoSizeBytes:        2 * gb,
		DefaultBranch:        "develop",
		BaselineSearchWorked: true,
		BaselineMatchCount:   40,
	}

	tests := []struct {
		mode       SearchMode
		suggestion string
	}{
		{mode: SearchModeFilename, suggestion: "search_in=path"},
		{mode: SearchModePath, suggestion: "search_in=filename"},
		{mode: SearchModeContent, suggestion: "search_in=all"},
		{mode: SearchModeAll, suggestion: "Simplify the query"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			report := FormatDiagnosis(d, "missing-term", tt.mode)

			assert.Contains(t, report, "matched nothing")
			assert.Contains(t, report, tt.suggestion)
			assert.Contains(t, report, "develop", "names the default branch")
			assert.Contains(t, report, "384 KB", "mentions the per-file indexing limit")
		})
	}
}

func TestFormatDiagnosisPrivateUnindexed(t *testing.T) {
	d := &Diagnosis{
		RepoSizeBytes:        1 * gb,
		IsPrivate:            true,
		DefaultBranch:        "main",
		BaselineSearchWorked: true,
		BaselineMatchCount:   0,
	}

	report := FormatDiagnosis(d, "", SearchModeAll)

	assert.Contains(t, report, "Private: Yes")
	assert.Contains(t, report, "Within size limit (50 GB): Yes")
	assert.True(t, strings.Contains(report, "Private repositories"))
}
