package repoquery

import "time"

const (
	// repoSizeIndexLimitGB is GitHub's documented repository size ceiling
	// for code search indexing. Repositories above it are not indexed.
	repoSizeIndexLimitGB = 50.0

	// fileIndexLimitKB is GitHub's per-file size limit for content
	// indexing. Larger files never appear in content search results.
	fileIndexLimitKB = 384

	// maxPatchChars caps the diff text displayed per file.
	maxPatchChars = 8000

	// patchTruncationMarker is appended when a diff is cut at maxPatchChars.
	patchTruncationMarker = "\n... [diff truncated]"
)

// RepoQueryRequest is the unified request structure for all functions
type RepoQueryRequest struct {
	Function string         `json:"function"`
	Options  map[string]any `json:"options,omitempty"`
}

// SearchRequest describes one file/code search
type SearchRequest struct {
	Query   string     `json:"query"`
	Mode    SearchMode `json:"mode"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// SearchItem is a single search match
type SearchItem struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Fragments []string `json:"fragments,omitempty"`
}

// SearchResult is the outcome of one search call
type SearchResult struct {
	Items      []SearchItem `json:"items"`
	TotalCount int          `json:"total_count"`
}

// RepoMetadata is the subset of repository metadata diagnostics needs
type RepoMetadata struct {
	SizeBytes     int64  `json:"size_bytes"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// Diagnosis is the structured outcome of a search-eligibility probe
type Diagnosis struct {
	RepoSizeBytes        int64  `json:"repo_size_bytes"`
	IsPrivate            bool   `json:"is_private"`
	DefaultBranch        string `json:"default_branch"`
	BaselineSearchWorked bool   `json:"baseline_search_worked"`
	BaselineMatchCount   int    `json:"baseline_match_count"`
	DiagnosticError      string `json:"diagnostic_error,omitempty"`
}

// RepoSizeGB returns the repository size in gigabytes
func (d *Diagnosis) RepoSizeGB() float64 {
	return float64(d.RepoSizeBytes) / (1024 * 1024 * 1024)
}

// IsIndexed reports whether the search backend has indexed the
// repository: the baseline query must both succeed and match something.
func (d *Diagnosis) IsIndexed() bool {
	return d.BaselineSearchWorked && d.BaselineMatchCount > 0
}

// IsOversized reports whether the repository exceeds the indexing
// ceiling. Exactly at the limit still counts as within it.
func (d *Diagnosis) IsOversized() bool {
	return d.RepoSizeGB() > repoSizeIndexLimitGB
}

// CommitHistoryRequest describes one commit-history report
type CommitHistoryRequest struct {
	SinceDays    int    `json:"since_days"`
	IncludeDiffs bool   `json:"include_diffs"`
	Author       string `json:"author,omitempty"`
	MaxCommits   int    `json:"max_commits"`
	Page         int    `json:"page"`
}

// CommitSummary is one commit's metadata
type CommitSummary struct {
	SHA         string    `json:"sha"`
	ShortSHA    string    `json:"short_sha"`
	Message     string    `json:"message"` // first line only
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Date        time.Time `json:"date"`
	URL         string    `json:"url"`
}

// CommitFile is one changed file within a commit
type CommitFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// CommitDetail is a commit summary joined with its file diffs
type CommitDetail struct {
	CommitSummary
	Files []CommitFile `json:"files,omitempty"`
}

// CommitHistory is the assembled report input
type CommitHistory struct {
	Since        time.Time      `json:"since"`
	IncludeDiffs bool           `json:"include_diffs"`
	Commits      []CommitDetail `json:"commits"`
}

// IssueItem is one issue or pull request search match
type IssueItem struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	State         string `json:"state"`
	IsPullRequest bool   `json:"is_pull_request"`
	URL           string `json:"url"`
	CreatedAt     string `json:"created_at"`
}

// DirectoryItem is one entry in a directory listing
type DirectoryItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file", "dir", "symlink", etc.
	Size int    `json:"size,omitempty"`
}
