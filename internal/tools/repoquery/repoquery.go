// Package repoquery implements the repoquery MCP tool: read-only file
// retrieval, multi-mode search, commit-history reports, and search
// diagnostics against the single configured GitHub repository.
package repoquery

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repolens/mcp-repolens/internal/registry"
	"github.com/repolens/mcp-repolens/internal/tools"
	"github.com/sirupsen/logrus"
)

// RepoQueryTool implements the repoquery MCP tool
type RepoQueryTool struct{}

// init registers the tool
func init() {
	registry.Register(&RepoQueryTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *RepoQueryTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"repoquery",
		mcp.WithDescription(`Read-only access to the configured GitHub repository: files, search, commit history and search diagnostics.

Functions and their parameters:

• get_file_contents: options.file_path (r), options.ref (o)
• search_files: options.query (r, may be empty), options.search_in (o: filename|path|content|all, default all), options.page (o, 0-based, default 0), options.per_page (o, default 100)
• search_code: options.query (r), options.language (o), options.page (o, 1-based, default 1), options.per_page (o, default 30)
• search_issues: options.query (r), options.include_closed (o, default false)
• get_commit_history: options.days (r, 1-365), options.include_diffs (o, default true), options.author (o), options.max_commits (o, 1-50, default 25), options.page (o, 0-based, default 0)
• diagnose_search: no options
• list_directory: options.path (o, defaults to root), options.ref (o)

(r) = required, (o) = optional.
Note the historical pagination quirk: search_files pages are 0-based, search_code pages are 1-based.
A search that returns zero matches automatically includes a diagnosis of the repository's search-index eligibility.`),
		mcp.WithString("function",
			mcp.Required(),
			mcp.Description("Function to execute"),
			mcp.Enum("get_file_contents", "search_files", "search_code", "search_issues", "get_commit_history", "diagnose_search", "list_directory"),
		),
		mcp.WithObject("options",
			mcp.Description("Function-specific options - see function description for parameters"),
			mcp.Properties(map[string]any{
				"file_path": map[string]any{
					"type":        "string",
					"description": "Path of the file to retrieve (for get_file_contents)",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Directory path to list (for list_directory, defaults to root)",
				},
				"ref": map[string]any{
					"type":        "string",
					"description": "Git reference - branch, tag, or commit SHA (for get_file_contents, list_directory)",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Search query (for search_files, search_code, search_issues)",
				},
				"search_in": map[string]any{
					"type":        "string",
					"description": "Which field search_files matches against: filename, path, content, or all",
					"default":     "all",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Language qualifier for search_code (e.g. go, python)",
				},
				"page": map[string]any{
					"type":        "number",
					"description": "Result page. 0-based for search_files and get_commit_history, 1-based for search_code",
				},
				"per_page": map[string]any{
					"type":        "number",
					"description": "Results per page, max 100",
				},
				"include_closed": map[string]any{
					"type":        "boolean",
					"description": "Include closed issues/PRs in search_issues results (default: false)",
					"default":     false,
				},
				"days": map[string]any{
					"type":        "number",
					"description": "History window in days for get_commit_history (1-365)",
				},
				"include_diffs": map[string]any{
					"type":        "boolean",
					"description": "Fetch per-file diffs for each commit (default: true)",
					"default":     true,
				},
				"author": map[string]any{
					"type":        "string",
					"description": "Filter commits to one author (GitHub login or email)",
				},
				"max_commits": map[string]any{
					"type":        "number",
					"description": "Maximum commits in the report (1-50, default: 25)",
					"default":     25,
				},
			}),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false), // results track the live repository
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute runs the requested function
func (t *RepoQueryTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	request, err := t.parseRequest(args)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	// Config completeness is checked here, before any network attempt.
	client, err := NewClient(ctx, logger)
	if err != nil {
		return nil, err
	}

	switch request.Function {
	case "get_file_contents":
		return t.handleGetFileContents(ctx, client, request)
	case "search_files":
		return t.handleSearchFiles(ctx, client, request)
	case "search_code":
		return t.handleSearchCode(ctx, client, request)
	case "search_issues":
		return t.handleSearchIssues(ctx, client, request)
	case "get_commit_history":
		return t.handleGetCommitHistory(ctx, client, request)
	case "diagnose_search":
		return t.handleDiagnoseSearch(ctx, client)
	case "list_directory":
		return t.handleListDirectory(ctx, client, request)
	default:
		return nil, fmt.Errorf("unsupported function: %s", request.Function)
	}
}

// parseRequest parses and validates the request parameters
func (t *RepoQueryTool) parseRequest(args map[string]any) (*RepoQueryRequest, error) {
	function, ok := args["function"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required parameter: function")
	}

	options := make(map[string]any)
	if opts, ok := args["options"].(map[string]any); ok {
		options = opts
	}

	return &RepoQueryRequest{Function: function, Options: options}, nil
}

func (t *RepoQueryTool) handleGetFileContents(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	filePath := optString(request.Options, "file_path")
	if filePath == "" {
		return nil, fmt.Errorf("options.file_path is required for get_file_contents")
	}
	ref := optString(request.Options, "ref")

	content, err := client.GetFileContents(ctx, filePath, ref)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(FormatFileContents(filePath, ref, content)), nil
}

func (t *RepoQueryTool) handleSearchFiles(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	query, ok := request.Options["query"].(string)
	if !ok {
		return nil, fmt.Errorf("options.query is required for search_files (an empty string is allowed)")
	}

	mode, err := ParseSearchMode(optString(request.Options, "search_in"))
	if err != nil {
		return nil, err
	}

	page := optInt(request.Options, "page", 0) // 0-based
	if page < 0 {
		return nil, fmt.Errorf("options.page must not be negative")
	}
	perPage := clampPerPage(optInt(request.Options, "per_page", 100))

	result, err := client.SearchFiles(ctx, SearchRequest{
		Query:   query,
		Mode:    mode,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	if result.TotalCount == 0 {
		diagnosis := client.Diagnose(ctx)
		return mcp.NewToolResultText(FormatDiagnosis(diagnosis, query, mode)), nil
	}

	return mcp.NewToolResultText(FormatSearchResult(query, mode, result)), nil
}

func (t *RepoQueryTool) handleSearchCode(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	query := optString(request.Options, "query")
	if query == "" {
		return nil, fmt.Errorf("options.query is required for search_code")
	}

	language := optString(request.Options, "language")

	page := optInt(request.Options, "page", 1) // 1-based, historical quirk
	if page < 1 {
		return nil, fmt.Errorf("options.page for search_code is 1-based and must be at least 1")
	}
	perPage := clampPerPage(optInt(request.Options, "per_page", 30))

	built := strings.TrimSpace(fmt.Sprintf("%s repo:%s/%s", query, client.Owner(), client.Repo()))
	if language != "" {
		built += " language:" + language
	}

	result, err := client.SearchCode(ctx, built, page, perPage)
	if err != nil {
		return nil, err
	}

	if result.TotalCount == 0 {
		diagnosis := client.Diagnose(ctx)
		return mcp.NewToolResultText(FormatDiagnosis(diagnosis, query, SearchModeContent)), nil
	}

	return mcp.NewToolResultText(FormatCodeSearchResult(query, language, page, result)), nil
}

func (t *RepoQueryTool) handleSearchIssues(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	query := optString(request.Options, "query")
	if query == "" {
		return nil, fmt.Errorf("options.query is required for search_issues")
	}
	includeClosed := optBool(request.Options, "include_closed", false)

	items, total, err := client.SearchIssues(ctx, query, includeClosed)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(FormatIssueResult(query, items, total)), nil
}

func (t *RepoQueryTool) handleGetCommitHistory(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	days, ok := request.Options["days"].(float64)
	if !ok {
		return nil, fmt.Errorf("options.days is required for get_commit_history")
	}

	page := optInt(request.Options, "page", 0)
	if page < 0 {
		return nil, fmt.Errorf("options.page must not be negative")
	}

	req := CommitHistoryRequest{
		SinceDays:    clampSinceDays(int(days)),
		IncludeDiffs: optBool(request.Options, "include_diffs", true),
		Author:       optString(request.Options, "author"),
		MaxCommits:   clampMaxCommits(optInt(request.Options, "max_commits", defaultCommits)),
		Page:         page,
	}

	history, err := client.CommitHistory(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(FormatCommitHistory(history)), nil
}

func (t *RepoQueryTool) handleDiagnoseSearch(ctx context.Context, client *Client) (*mcp.CallToolResult, error) {
	diagnosis := client.Diagnose(ctx)
	return mcp.NewToolResultText(FormatDiagnosis(diagnosis, "", SearchModeAll)), nil
}

func (t *RepoQueryTool) handleListDirectory(ctx context.Context, client *Client, request *RepoQueryRequest) (*mcp.CallToolResult, error) {
	path := optString(request.Options, "path")
	ref := optString(request.Options, "ref")

	items, err := client.ListDirectory(ctx, path, ref)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(FormatDirectoryListing(path, items)), nil
}

// optString reads an optional string option
func optString(options map[string]any, key string) string {
	if v, ok := options[key].(string); ok {
		return v
	}
	return ""
}

// optInt reads an optional numeric option (JSON numbers arrive as float64)
func optInt(options map[string]any, key string, def int) int {
	if v, ok := options[key].(float64); ok {
		return int(v)
	}
	return def
}

// optBool reads an optional boolean option
func optBool(options map[string]any, key string, def bool) bool {
	if v, ok := options[key].(bool); ok {
		return v
	}
	return def
}

// clampPerPage folds a per-page value into the API's accepted range
func clampPerPage(perPage int) int {
	if perPage < 1 {
		return 1
	}
	if perPage > 100 {
		return 100 // GitHub API limit
	}
	return perPage
}

// ProvideExtendedInfo provides detailed usage information for the repoquery tool
func (t *RepoQueryTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Find a file by name, including names with spaces",
				Arguments: map[string]any{
					"function": "search_files",
					"options": map[string]any{
						"query":     "OKR 2025",
						"search_in": "filename",
					},
				},
				ExpectedResult: "Files whose name contains 'OKR 2025', or a diagnosis report if nothing matched",
			},
			{
				Description: "Search file content and paths at once",
				Arguments: map[string]any{
					"function": "search_files",
					"options": map[string]any{
						"query": "notes",
					},
				},
				ExpectedResult: "Matches across filenames, paths and content, each annotated with a heuristic match reason",
			},
			{
				Description: "Recent commit activity without diffs",
				Arguments: map[string]any{
					"function": "get_commit_history",
					"options": map[string]any{
						"days":          30,
						"include_diffs": false,
						"max_commits":   5,
					},
				},
				ExpectedResult: "Up to 5 commit summary blocks from the last 30 days, no diff sections",
			},
			{
				Description: "Check why searches come back empty",
				Arguments: map[string]any{
					"function": "diagnose_search",
				},
				ExpectedResult: "Report on repository size, visibility, and whether GitHub code search has indexed it",
			},
		},
		CommonPatterns: []string{
			"When search_files returns a diagnosis instead of matches, follow its suggestions before retrying",
			"Use list_directory + get_file_contents when the repository is too large to be search-indexed",
			"Prefer search_in=filename for exact file lookups; the default 'all' mode casts the widest net",
			"Keep get_commit_history windows small when include_diffs is on - each commit costs an extra API call",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Every call fails with 'configuration incomplete'",
				Solution: "Set GITHUB_TOKEN, REPOLENS_OWNER and REPOLENS_REPO in the environment or a .env file. The error names exactly which ones are missing.",
			},
			{
				Problem:  "Searches return nothing for content that definitely exists",
				Solution: "Run diagnose_search. Repositories over 50 GB, files over 384 KB, and non-default branches are not indexed by GitHub code search.",
			},
			{
				Problem:  "Rate limit errors during commit history with diffs",
				Solution: "Lower max_commits or set include_diffs=false. Detail fetches are capped at 5 in flight but each commit is still one API call.",
			},
		},
		ParameterDetails: map[string]string{
			"function": "The operation to perform. search_files is the general entry point; diagnose_search explains empty results.",
			"options":  "Function-specific parameters. Watch the pagination bases: search_files counts pages from 0, search_code from 1.",
		},
		WhenToUse:    "Use to explore, search and audit the one repository this server is configured for: finding files, reading them, and reporting recent changes.",
		WhenNotToUse: "Not for repositories other than the configured one, and not for any write operation - this tool is strictly read-only.",
	}
}
