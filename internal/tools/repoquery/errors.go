package repoquery

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v76/github"
)

// ErrorKind classifies a failed remote call
type ErrorKind int

const (
	// ErrConfigIncomplete means required configuration is missing; no network attempt was made
	ErrConfigIncomplete ErrorKind = iota
	// ErrValidationFailed means GitHub rejected the query as malformed
	ErrValidationFailed
	// ErrRateLimited means a primary or secondary rate limit was hit
	ErrRateLimited
	// ErrForbidden means the credential was rejected or lacks scope
	ErrForbidden
	// ErrTransport is any other failure of the underlying call
	ErrTransport
	// ErrUnexpectedFormat means the payload did not match the expected shape
	ErrUnexpectedFormat
)

// RemoteError is the typed error every remote failure is mapped to.
// It is never retried internally; callers surface its message as-is.
type RemoteError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *RemoteError) Error() string {
	switch e.Kind {
	case ErrConfigIncomplete:
		return fmt.Sprintf("configuration incomplete: missing %s (set them in the environment or a .env file)", e.Detail)
	case ErrValidationFailed:
		return fmt.Sprintf("GitHub rejected the search query (%s) - try simplifying the query or removing special characters", e.Detail)
	case ErrRateLimited:
		return "GitHub API rate limit exceeded - wait a minute and retry (no automatic retry is performed)"
	case ErrForbidden:
		return fmt.Sprintf("GitHub denied access (%s) - check that GITHUB_TOKEN is valid and has 'repo' scope for private repositories", e.Detail)
	case ErrUnexpectedFormat:
		return fmt.Sprintf("unexpected response shape from GitHub: %s", e.Detail)
	default:
		return fmt.Sprintf("GitHub request failed: %s", e.Detail)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// newConfigIncompleteError names exactly the missing configuration fields
func newConfigIncompleteError(missing []string) *RemoteError {
	return &RemoteError{
		Kind:   ErrConfigIncomplete,
		Detail: strings.Join(missing, ", "),
	}
}

// classifyError maps a go-github failure into a RemoteError. It prefers
// the client's typed errors and falls back to message-substring matching
// only for errors the client does not type. The mapping is deliberately
// kept in this single function so it can be swapped wholesale if
// GitHub's error surface changes.
func classifyError(op string, err error) *RemoteError {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RemoteError{Kind: ErrRateLimited, Detail: op, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RemoteError{Kind: ErrRateLimited, Detail: op, Err: err}
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnprocessableEntity:
			return &RemoteError{Kind: ErrValidationFailed, Detail: fmt.Sprintf("%s: %s", op, ghErr.Message), Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &RemoteError{Kind: ErrForbidden, Detail: fmt.Sprintf("%s: %s", op, ghErr.Message), Err: err}
		}
		return &RemoteError{Kind: ErrTransport, Detail: fmt.Sprintf("%s: %s", op, ghErr.Message), Err: err}
	}

	// Untyped errors: best-effort substring matching against current
	// GitHub error phrasing.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "validation failed") || strings.Contains(msg, "422"):
		return &RemoteError{Kind: ErrValidationFailed, Detail: fmt.Sprintf("%s: %v", op, err), Err: err}
	case strings.Contains(msg, "rate limit"):
		return &RemoteError{Kind: ErrRateLimited, Detail: op, Err: err}
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return &RemoteError{Kind: ErrForbidden, Detail: fmt.Sprintf("%s: %v", op, err), Err: err}
	default:
		return &RemoteError{Kind: ErrTransport, Detail: fmt.Sprintf("%s: %v", op, err), Err: err}
	}
}
