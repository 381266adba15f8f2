package repoquery

import (
	"context"
	"fmt"
)

// baselineQueryPattern is a fixed, known-indexable probe: essentially
// every repository contains markdown, so zero matches here means the
// search backend has not indexed the repository at all.
const baselineQueryPattern = "extension:md"

// Diagnose probes why a search against the configured repository might
// return nothing. It never fails: sub-call errors are captured in the
// DiagnosticError field instead of being propagated.
//
// Step 1 fetches repository metadata (size, visibility, default
// branch). If that fails the baseline probe is skipped entirely. Step 2
// runs the baseline search to separate "not indexed" from "query
// matched nothing".
func (c *Client) Diagnose(ctx context.Context) *Diagnosis {
	diagnosis := &Diagnosis{}

	meta, err := c.GetRepository(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Diagnosis metadata fetch failed")
		diagnosis.DiagnosticError = err.Error()
		return diagnosis
	}

	diagnosis.RepoSizeBytes = meta.SizeBytes
	diagnosis.IsPrivate = meta.Private
	diagnosis.DefaultBranch = meta.DefaultBranch

	baseline := fmt.Sprintf("repo:%s/%s %s", c.cfg.Owner, c.cfg.Repo, baselineQueryPattern)
	result, err := c.SearchCode(ctx, baseline, 1, 1)
	if err != nil {
		c.logger.WithError(err).Debug("Diagnosis baseline search failed")
		diagnosis.DiagnosticError = err.Error()
		return diagnosis
	}

	diagnosis.BaselineSearchWorked = true
	diagnosis.BaselineMatchCount = result.TotalCount
	return diagnosis
}
