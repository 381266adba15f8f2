package repoquery

import (
	"fmt"
	"strings"
)

// SearchMode selects which field of a file a search query targets
type SearchMode string

const (
	SearchModeFilename SearchMode = "filename"
	SearchModePath     SearchMode = "path"
	SearchModeContent  SearchMode = "content"
	SearchModeAll      SearchMode = "all"
)

// ParseSearchMode validates a search_in argument
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case SearchModeFilename, SearchModePath, SearchModeContent, SearchModeAll:
		return SearchMode(s), nil
	case "":
		return SearchModeAll, nil
	default:
		return "", fmt.Errorf("invalid search_in value %q (expected filename, path, content, or all)", s)
	}
}

// BuildSearchQuery maps a (query, mode) pair onto GitHub's code search
// grammar, always scoped to a single repository.
//
// The grammar has no OR operator across distinct field qualifiers, so
// "all" uses in:file,path as the closest attainable approximation.
// An empty query is permitted: it degenerates to listing files that
// match only the qualifiers.
func BuildSearchQuery(query string, mode SearchMode, owner, repo string) string {
	scope := fmt.Sprintf("repo:%s/%s", owner, repo)

	var q string
	switch mode {
	case SearchModeFilename:
		q = fmt.Sprintf("filename:%s %s", quoteIfSpaced(query), scope)
	case SearchModePath:
		q = fmt.Sprintf("%s in:path %s", query, scope)
	case SearchModeContent:
		// Content is GitHub's default match target; scope is enough.
		q = fmt.Sprintf("%s %s", query, scope)
	default: // SearchModeAll
		q = fmt.Sprintf("%s in:file,path %s", query, scope)
	}

	return strings.TrimSpace(q)
}

// quoteIfSpaced wraps a term in quotes when it contains whitespace, so
// GitHub treats it as a single filename token.
func quoteIfSpaced(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
