package repoquery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-github/v76/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyErrorTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{
			name:     "Primary rate limit",
			err:      &github.RateLimitError{Message: "API rate limit exceeded"},
			expected: ErrRateLimited,
		},
		{
			name:     "Secondary rate limit",
			err:      &github.AbuseRateLimitError{Message: "You have exceeded a secondary rate limit"},
			expected: ErrRateLimited,
		},
		{
			name: "Validation failure (422)",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
				Message:  "Validation Failed",
			},
			expected: ErrValidationFailed,
		},
		{
			name: "Unauthorised (401)",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusUnauthorized},
				Message:  "Bad credentials",
			},
			expected: ErrForbidden,
		},
		{
			name: "Forbidden (403)",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusForbidden},
				Message:  "Resource not accessible by integration",
			},
			expected: ErrForbidden,
		},
		{
			name: "Server error (502)",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusBadGateway},
				Message:  "Server Error",
			},
			expected: ErrTransport,
		},
		{
			name:     "Wrapped typed error still classifies",
			err:      fmt.Errorf("code search: %w", &github.RateLimitError{}),
			expected: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remoteErr := classifyError("test op", tt.err)
			require.NotNil(t, remoteErr)
			assert.Equal(t, tt.expected, remoteErr.Kind)
			assert.ErrorIs(t, remoteErr, tt.err, "original error stays in the chain")
		})
	}
}

func TestClassifyErrorStringFallback(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{name: "rate limit phrasing", err: errors.New("API rate limit exceeded for user"), expected: ErrRateLimited},
		{name: "validation phrasing", err: errors.New("Validation Failed: query malformed"), expected: ErrValidationFailed},
		{name: "forbidden phrasing", err: errors.New("403 Forbidden"), expected: ErrForbidden},
		{name: "unknown error", err: errors.New("connection reset by peer"), expected: ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyError("op", tt.err).Kind)
		})
	}
}

func TestClassifyErrorPassesThroughRemoteError(t *testing.T) {
	original := &RemoteError{Kind: ErrUnexpectedFormat, Detail: "not a file"}
	assert.Same(t, original, classifyError("op", original))
	assert.Same(t, original, classifyError("op", fmt.Errorf("wrapped: %w", original)))
}

func TestConfigIncompleteErrorNamesFields(t *testing.T) {
	err := newConfigIncompleteError([]string{"GITHUB_TOKEN", "REPOLENS_REPO"})

	assert.Equal(t, ErrConfigIncomplete, err.Kind)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "REPOLENS_REPO")
	assert.NotContains(t, err.Error(), "REPOLENS_OWNER")
}

func TestRemoteErrorMessages(t *testing.T) {
	rateLimited := &RemoteError{Kind: ErrRateLimited}
	assert.Contains(t, rateLimited.Error(), "wait")
	assert.Contains(t, rateLimited.Error(), "no automatic retry")

	validation := &RemoteError{Kind: ErrValidationFailed, Detail: `code search "???"`}
	assert.Contains(t, validation.Error(), "???", "offending query is surfaced")
	assert.Contains(t, validation.Error(), "simplifying")

	forbidden := &RemoteError{Kind: ErrForbidden, Detail: "repository metadata"}
	assert.Contains(t, forbidden.Error(), "scope")
}
