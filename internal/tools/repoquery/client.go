package repoquery

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v76/github"
	"github.com/repolens/mcp-repolens/internal/config"
	"github.com/repolens/mcp-repolens/internal/utils/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// Client-side request shaping, kept under GitHub's documented limits
	// (5000/hour core, 30/minute search). These never retry a failed call.
	DefaultCoreAPIRateLimit   = 80 // requests per minute
	DefaultSearchAPIRateLimit = 25 // requests per minute

	CoreAPIRateLimitEnvVar   = "REPOLENS_CORE_API_RATE_LIMIT"
	SearchAPIRateLimitEnvVar = "REPOLENS_SEARCH_API_RATE_LIMIT"
)

// Client is the single gateway through which every remote call passes.
// It verifies configuration completeness before dispatch, applies
// client-side rate limiting, and maps failures into RemoteError.
type Client struct {
	gh               *github.Client
	cfg              *config.Config
	logger           *logrus.Logger
	coreAPILimiter   *rate.Limiter
	searchAPILimiter *rate.Limiter
	mu               sync.Mutex
}

// NewClient creates a gateway from the process-wide configuration
func NewClient(ctx context.Context, logger *logrus.Logger) (*Client, error) {
	return NewClientWithConfig(ctx, config.Load(), logger)
}

// NewClientWithConfig creates a gateway from an explicit configuration.
// It fails with ErrConfigIncomplete before any network attempt if the
// triple is not complete.
func NewClientWithConfig(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if missing := cfg.MissingFields(); len(missing) > 0 {
		return nil, newConfigIncompleteError(missing)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, ts)
	// Honour HTTPS_PROXY/HTTP_PROXY for the token transport too.
	if httpclient.IsProxyConfigured() {
		base := httpclient.NewHTTPClientWithProxyAndLogger(30*time.Second, logger)
		httpClient.Transport.(*oauth2.Transport).Base = base.Transport
	}

	return &Client{
		gh:               github.NewClient(httpClient),
		cfg:              cfg,
		logger:           logger,
		coreAPILimiter:   newRateLimiter(CoreAPIRateLimitEnvVar, DefaultCoreAPIRateLimit),
		searchAPILimiter: newRateLimiter(SearchAPIRateLimitEnvVar, DefaultSearchAPIRateLimit),
	}, nil
}

// Owner returns the configured repository owner
func (c *Client) Owner() string { return c.cfg.Owner }

// Repo returns the configured repository name
func (c *Client) Repo() string { return c.cfg.Repo }

// GetRepository fetches the repository metadata diagnostics relies on
func (c *Client) GetRepository(ctx context.Context) (*RepoMetadata, error) {
	if err := c.waitCore(ctx); err != nil {
		return nil, classifyError("repository metadata", err)
	}

	repo, _, err := c.gh.Repositories.Get(ctx, c.cfg.Owner, c.cfg.Repo)
	if err != nil {
		return nil, classifyError("repository metadata", err)
	}

	return &RepoMetadata{
		// The API reports size in kilobytes.
		SizeBytes:     int64(repo.GetSize()) * 1024,
		Private:       repo.GetPrivate(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// SearchCode runs one code search. The query must already carry its
// qualifiers (see BuildSearchQuery); page is 1-based per the GitHub API.
func (c *Client) SearchCode(ctx context.Context, query string, page, perPage int) (*SearchResult, error) {
	if err := c.waitSearch(ctx); err != nil {
		return nil, classifyError("code search", err)
	}

	opts := &github.SearchOptions{
		TextMatch: true,
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, _, err := c.gh.Search.Code(ctx, query, opts)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("code search %q", query), err)
	}

	items := make([]SearchItem, len(result.CodeResults))
	for i, cr := range result.CodeResults {
		item := SearchItem{
			Name: cr.GetName(),
			Path: cr.GetPath(),
		}
		for _, tm := range cr.TextMatches {
			if frag := strings.TrimSpace(tm.GetFragment()); frag != "" {
				item.Fragments = append(item.Fragments, frag)
			}
		}
		items[i] = item
	}

	return &SearchResult{
		Items:      items,
		TotalCount: result.GetTotal(),
	}, nil
}

// SearchFiles runs one file search described by req. Unlike SearchCode,
// req.Page is 0-based (the surface this server inherited); the +1 here
// is the only place the two bases meet.
func (c *Client) SearchFiles(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	built := BuildSearchQuery(req.Query, req.Mode, c.cfg.Owner, c.cfg.Repo)
	return c.SearchCode(ctx, built, req.Page+1, req.PerPage)
}

// SearchIssues searches issues and pull requests in the configured repository
func (c *Client) SearchIssues(ctx context.Context, query string, includeClosed bool) ([]IssueItem, int, error) {
	if err := c.waitSearch(ctx); err != nil {
		return nil, 0, classifyError("issue search", err)
	}

	searchQuery := strings.TrimSpace(fmt.Sprintf("%s repo:%s/%s", query, c.cfg.Owner, c.cfg.Repo))
	if !includeClosed {
		searchQuery += " state:open"
	}

	result, _, err := c.gh.Search.Issues(ctx, searchQuery, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 30},
	})
	if err != nil {
		return nil, 0, classifyError(fmt.Sprintf("issue search %q", query), err)
	}

	items := make([]IssueItem, len(result.Issues))
	for i, issue := range result.Issues {
		items[i] = IssueItem{
			Number:        issue.GetNumber(),
			Title:         issue.GetTitle(),
			State:         issue.GetState(),
			IsPullRequest: issue.IsPullRequest(),
			URL:           issue.GetHTMLURL(),
			CreatedAt:     issue.GetCreatedAt().Format("2006-01-02"),
		}
	}

	return items, result.GetTotal(), nil
}

// ListCommits fetches one page of commits since a cutoff, optionally
// filtered to a single author (login or email, applied server-side).
func (c *Client) ListCommits(ctx context.Context, since time.Time, author string, page, perPage int) ([]CommitSummary, error) {
	if err := c.waitCore(ctx); err != nil {
		return nil, classifyError("commit list", err)
	}

	opts := &github.CommitsListOptions{
		Since:  since,
		Author: author,
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, c.cfg.Owner, c.cfg.Repo, opts)
	if err != nil {
		return nil, classifyError("commit list", err)
	}

	summaries := make([]CommitSummary, len(commits))
	for i, rc := range commits {
		summaries[i] = summariseCommit(rc)
	}
	return summaries, nil
}

// GetCommitDetail fetches one commit with its per-file diffs
func (c *Client) GetCommitDetail(ctx context.Context, sha string) (*CommitDetail, error) {
	if err := c.waitCore(ctx); err != nil {
		return nil, classifyError("commit detail", err)
	}

	rc, _, err := c.gh.Repositories.GetCommit(ctx, c.cfg.Owner, c.cfg.Repo, sha, nil)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("commit detail %s", shortSHA(sha)), err)
	}

	detail := &CommitDetail{CommitSummary: summariseCommit(rc)}
	for _, f := range rc.Files {
		detail.Files = append(detail.Files, CommitFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     f.GetPatch(),
		})
	}
	return detail, nil
}

// GetFileContents fetches one file as raw text. A path that resolves to
// a directory, or content that cannot be decoded as text, is an
// ErrUnexpectedFormat.
func (c *Client) GetFileContents(ctx context.Context, path, ref string) (string, error) {
	if err := c.waitCore(ctx); err != nil {
		return "", classifyError("file contents", err)
	}

	opts := &github.RepositoryContentGetOptions{}
	if ref != "" {
		opts.Ref = ref
	}

	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	if err != nil {
		return "", classifyError(fmt.Sprintf("file contents %s", path), err)
	}

	if fileContent == nil {
		return "", &RemoteError{
			Kind:   ErrUnexpectedFormat,
			Detail: fmt.Sprintf("%q resolved to a directory, not a file - use list_directory instead", path),
		}
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", &RemoteError{
			Kind:   ErrUnexpectedFormat,
			Detail: fmt.Sprintf("could not decode %q as text: %v", path, err),
			Err:    err,
		}
	}
	if !isText(content) {
		return "", &RemoteError{
			Kind:   ErrUnexpectedFormat,
			Detail: fmt.Sprintf("%q is not a text file", path),
		}
	}
	return content, nil
}

// isText checks for null bytes in the leading window, the same cheap
// binary sniff git itself uses.
func isText(content string) bool {
	check := content
	if len(check) > 512 {
		check = check[:512]
	}
	return !strings.ContainsRune(check, 0)
}

// ListDirectory lists one directory of the repository tree
func (c *Client) ListDirectory(ctx context.Context, path, ref string) ([]DirectoryItem, error) {
	if err := c.waitCore(ctx); err != nil {
		return nil, classifyError("directory listing", err)
	}

	opts := &github.RepositoryContentGetOptions{}
	if ref != "" {
		opts.Ref = ref
	}

	_, entries, _, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("directory listing %s", path), err)
	}

	if entries == nil {
		return nil, &RemoteError{
			Kind:   ErrUnexpectedFormat,
			Detail: fmt.Sprintf("%q resolved to a file, not a directory - use get_file_contents instead", path),
		}
	}

	items := make([]DirectoryItem, len(entries))
	for i, entry := range entries {
		items[i] = DirectoryItem{
			Name: entry.GetName(),
			Path: entry.GetPath(),
			Type: entry.GetType(),
			Size: entry.GetSize(),
		}
	}
	return items, nil
}

// summariseCommit extracts the summary fields from an API commit
func summariseCommit(rc *github.RepositoryCommit) CommitSummary {
	summary := CommitSummary{
		SHA:      rc.GetSHA(),
		ShortSHA: shortSHA(rc.GetSHA()),
		URL:      rc.GetHTMLURL(),
	}
	if commit := rc.GetCommit(); commit != nil {
		summary.Message = firstLine(commit.GetMessage())
		if author := commit.GetAuthor(); author != nil {
			summary.AuthorName = author.GetName()
			summary.AuthorEmail = author.GetEmail()
			summary.Date = author.GetDate().Time
		}
	}
	return summary
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// newRateLimiter builds a per-minute limiter with an env override
func newRateLimiter(envVar string, defaultPerMinute int) *rate.Limiter {
	perMinute := defaultPerMinute
	if v := os.Getenv(envVar); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			perMinute = parsed
		}
	}
	return rate.NewLimiter(rate.Limit(perMinute)/60, 1)
}

func (c *Client) waitCore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coreAPILimiter.Wait(ctx)
}

func (c *Client) waitSearch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchAPILimiter.Wait(ctx)
}
