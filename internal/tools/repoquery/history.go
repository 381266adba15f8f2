package repoquery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	minSinceDays     = 1
	maxSinceDays     = 365
	minCommits       = 1
	maxCommits       = 50
	defaultCommits   = 25
	detailFetchLimit = 5 // concurrent per-commit detail fetches
)

// CommitHistory assembles a commit-history report: one page of commits
// since the cutoff, optionally joined with per-commit file diffs.
//
// Detail fetches are independent, so they run concurrently (bounded by
// detailFetchLimit to stay friendly to rate limits), then join before
// formatting. A failure on any one of them fails the whole assembly;
// no partial report is produced. Output order always matches the
// commit list's order regardless of fetch completion order.
func (c *Client) CommitHistory(ctx context.Context, req CommitHistoryRequest) (*CommitHistory, error) {
	since := cutoffTime(time.Now().UTC(), req.SinceDays)

	summaries, err := c.ListCommits(ctx, since, req.Author, req.Page+1, req.MaxCommits)
	if err != nil {
		return nil, err
	}

	history := &CommitHistory{
		Since:        since,
		IncludeDiffs: req.IncludeDiffs,
	}

	if len(summaries) == 0 {
		return history, nil
	}

	if !req.IncludeDiffs {
		history.Commits = make([]CommitDetail, len(summaries))
		for i, s := range summaries {
			history.Commits[i] = CommitDetail{CommitSummary: s}
		}
		return history, nil
	}

	details := make([]CommitDetail, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i, s := range summaries {
		g.Go(func() error {
			detail, err := c.GetCommitDetail(gctx, s.SHA)
			if err != nil {
				return err
			}
			for fi := range detail.Files {
				detail.Files[fi].Patch = truncatePatch(detail.Files[fi].Patch)
			}
			details[i] = *detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	history.Commits = details
	return history, nil
}

// cutoffTime computes the history window's start as now minus sinceDays
func cutoffTime(now time.Time, sinceDays int) time.Time {
	return now.AddDate(0, 0, -sinceDays)
}

// truncatePatch caps diff text at maxPatchChars, appending a visible
// marker rather than dropping the tail silently. Text at exactly the
// cap is left untouched.
func truncatePatch(patch string) string {
	if len(patch) <= maxPatchChars {
		return patch
	}
	return patch[:maxPatchChars] + patchTruncationMarker
}

// clampSinceDays folds an out-of-range window into the supported range
func clampSinceDays(days int) int {
	if days < minSinceDays {
		return minSinceDays
	}
	if days > maxSinceDays {
		return maxSinceDays
	}
	return days
}

// clampMaxCommits folds an out-of-range commit cap into the supported range
func clampMaxCommits(n int) int {
	if n < minCommits {
		return minCommits
	}
	if n > maxCommits {
		return maxCommits
	}
	return n
}
