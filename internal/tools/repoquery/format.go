package repoquery

import (
	"fmt"
	"strings"
)

// Formatting is deterministic: the same structures always render to the
// same report text.

// FormatSearchResult renders a ranked file-search listing, annotating
// each item with an inferred match reason.
func FormatSearchResult(query string, mode SearchMode, result *SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## File search results\n\n")
	fmt.Fprintf(&b, "Query: `%s` (search_in: %s)\n", query, mode)
	fmt.Fprintf(&b, "Total matches: %d\n\n", result.TotalCount)

	for i, item := range result.Items {
		fmt.Fprintf(&b, "%d. `%s` — %s\n", i+1, item.Path, matchReason(query, mode, item.Name, item.Path))
	}

	if mode == SearchModeAll {
		b.WriteString("\nMatch reasons for search_in=all are heuristic: GitHub does not report which field matched.\n")
	}
	return b.String()
}

// matchReason attributes a match to a field. For explicit modes the
// mode itself is the reason; for "all" it is reconstructed post hoc by
// substring, defaulting to unknown when neither name nor path contains
// the query.
func matchReason(query string, mode SearchMode, name, path string) string {
	switch mode {
	case SearchModeFilename:
		return "filename match"
	case SearchModePath:
		return "path match"
	case SearchModeContent:
		return "content match"
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "qualifier match"
	}
	if strings.Contains(strings.ToLower(name), q) {
		return "filename match (heuristic)"
	}
	if strings.Contains(strings.ToLower(path), q) {
		return "path match (heuristic)"
	}
	return "content match or unknown (heuristic)"
}

// FormatCodeSearchResult renders a relevance-ordered code-search
// listing with matched text fragments.
func FormatCodeSearchResult(query, language string, page int, result *SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Code search results\n\n")
	fmt.Fprintf(&b, "Query: `%s`", query)
	if language != "" {
		fmt.Fprintf(&b, " (language: %s)", language)
	}
	fmt.Fprintf(&b, "\nTotal matches: %d (page %d, relevance order)\n\n", result.TotalCount, page)

	for i, item := range result.Items {
		fmt.Fprintf(&b, "### %d. `%s`\n", i+1, item.Path)
		for _, frag := range item.Fragments {
			fmt.Fprintf(&b, "```\n%s\n```\n", frag)
		}
	}
	return b.String()
}

// FormatIssueResult renders an issue/PR search listing
func FormatIssueResult(query string, items []IssueItem, totalCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Issue search results\n\n")
	fmt.Fprintf(&b, "Query: `%s`\n", query)
	fmt.Fprintf(&b, "Total matches: %d\n\n", totalCount)

	if len(items) == 0 {
		b.WriteString("No issues or pull requests matched.\n")
		return b.String()
	}

	for _, item := range items {
		kind := "issue"
		if item.IsPullRequest {
			kind = "PR"
		}
		fmt.Fprintf(&b, "- #%d [%s, %s] %s (%s)\n  %s\n", item.Number, kind, item.State, item.Title, item.CreatedAt, item.URL)
	}
	return b.String()
}

// FormatDiagnosis renders a prioritised diagnosis report:
// infrastructure error > not indexed > indexed but no match.
func FormatDiagnosis(d *Diagnosis, query string, mode SearchMode) string {
	var b strings.Builder
	b.WriteString("## Search diagnosis\n\n")
	if query != "" {
		fmt.Fprintf(&b, "The search `%s` (search_in: %s) returned no results.\n\n", query, mode)
	}

	if d.DiagnosticError != "" {
		b.WriteString("**Infrastructure error** — the diagnosis itself could not complete:\n\n")
		fmt.Fprintf(&b, "    %s\n\n", d.DiagnosticError)
		b.WriteString("Next steps:\n")
		b.WriteString("- Retry in a minute (rate limits reset quickly)\n")
		b.WriteString("- Check that GITHUB_TOKEN is valid and can see the repository\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Repository size: %.2f GB\n", d.RepoSizeGB())
	fmt.Fprintf(&b, "- Within size limit (%.0f GB): %s\n", repoSizeIndexLimitGB, yesNo(!d.IsOversized()))
	fmt.Fprintf(&b, "- Private: %s\n", yesNo(d.IsPrivate))
	fmt.Fprintf(&b, "- Default branch: %s\n", d.DefaultBranch)
	fmt.Fprintf(&b, "- Baseline search (markdown files): worked=%s, matches=%d\n", yesNo(d.BaselineSearchWorked), d.BaselineMatchCount)
	fmt.Fprintf(&b, "- Indexed by code search: %s\n\n", yesNo(d.IsIndexed()))

	if !d.IsIndexed() {
		b.WriteString("**The repository does not appear to be indexed by GitHub code search.** Likely causes:\n")
		if d.IsOversized() {
			fmt.Fprintf(&b, "- The repository exceeds the %.0f GB indexing ceiling, so content search will never work here\n", repoSizeIndexLimitGB)
		}
		if d.IsPrivate {
			b.WriteString("- Private repositories are only indexed once someone with access has used code search on them\n")
		}
		b.WriteString("- Recently pushed repositories can take a while to be indexed\n\n")
		b.WriteString("Alternatives that do not depend on the search index:\n")
		b.WriteString("- Navigate by path instead: list_directory to explore, then get_file_contents for specific files\n")
		b.WriteString("- get_commit_history to find recently changed files\n")
		return b.String()
	}

	b.WriteString("**The repository is indexed — the query simply matched nothing.** Suggestions:\n")
	switch mode {
	case SearchModeFilename:
		b.WriteString("- Try search_in=path (the term may appear in a directory name) or search_in=content\n")
	case SearchModePath:
		b.WriteString("- Try search_in=filename or search_in=content\n")
	case SearchModeContent:
		b.WriteString("- Try search_in=all to also match file and directory names\n")
	default:
		b.WriteString("- Simplify the query to a single distinctive term\n")
	}
	fmt.Fprintf(&b, "- Only the default branch (%s) is indexed — content on other branches will not match\n", d.DefaultBranch)
	fmt.Fprintf(&b, "- Files larger than %d KB are not content-indexed\n", fileIndexLimitKB)
	return b.String()
}

// FormatCommitHistory renders a per-commit markdown report. An empty
// window yields an explicit "no commits" statement, never a bare list.
func FormatCommitHistory(h *CommitHistory) string {
	var b strings.Builder
	b.WriteString("## Commit history\n\n")

	if len(h.Commits) == 0 {
		fmt.Fprintf(&b, "No commits found since %s.\n", h.Since.Format("2006-01-02"))
		b.WriteString("Try a larger `days` window, another `page`, or drop the `author` filter.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d commit(s) since %s:\n\n", len(h.Commits), h.Since.Format("2006-01-02"))

	for _, commit := range h.Commits {
		fmt.Fprintf(&b, "### %s %s\n", commit.ShortSHA, commit.Message)
		fmt.Fprintf(&b, "- Author: %s <%s>\n", commit.AuthorName, commit.AuthorEmail)
		fmt.Fprintf(&b, "- Date: %s\n", commit.Date.Format("2006-01-02 15:04 MST"))
		fmt.Fprintf(&b, "- URL: %s\n", commit.URL)

		if h.IncludeDiffs {
			fmt.Fprintf(&b, "\nFiles changed (%d):\n", len(commit.Files))
			for _, f := range commit.Files {
				fmt.Fprintf(&b, "- `%s` (+%d / -%d)\n", f.Filename, f.Additions, f.Deletions)
				if f.Patch == "" {
					b.WriteString("  (no diff available)\n")
				} else {
					fmt.Fprintf(&b, "```diff\n%s\n```\n", f.Patch)
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatFileContents renders one file fetch
func FormatFileContents(path, ref, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s", path)
	if ref != "" {
		fmt.Fprintf(&b, " @ %s", ref)
	}
	b.WriteString("\n\n```\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

// FormatDirectoryListing renders one directory listing
func FormatDirectoryListing(path string, items []DirectoryItem) string {
	var b strings.Builder
	if path == "" {
		path = "/"
	}
	fmt.Fprintf(&b, "## Directory %s\n\n", path)
	for _, item := range items {
		if item.Type == "dir" {
			fmt.Fprintf(&b, "- %s/\n", item.Name)
		} else {
			fmt.Fprintf(&b, "- %s (%d bytes)\n", item.Name, item.Size)
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
