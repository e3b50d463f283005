// Package search retrieves evidence for a query from web search sources.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// ErrQuotaExceeded is returned when a search API rejects a call for quota
// or rate reasons (HTTP 403 or 429)
var ErrQuotaExceeded = errors.New("search quota exceeded")

// ErrDisallowed is returned when robots.txt forbids querying an endpoint
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Searcher returns raw results for one query
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// SearcherFunc adapts a function to the Searcher interface
type SearcherFunc func(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)

// Search calls f
func (f SearcherFunc) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	return f(ctx, query, maxResults)
}

// StatusError is an HTTP-level search failure
type StatusError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s search error (%d): %s", e.Source, e.StatusCode, e.Message)
}

// Retryable reports whether the failure is a server-side error
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// TransientError marks a network failure that may succeed on retry
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string   { return e.Err.Error() }
func (e *TransientError) Unwrap() error   { return e.Err }
func (e *TransientError) Retryable() bool { return true }

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// getJSON performs a GET request and decodes a JSON body into v, mapping
// quota and server failures onto the package error types
func getJSON(ctx context.Context, client *http.Client, source, rawURL, userAgent string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransientError{Err: fmt.Errorf("%s request: %w", source, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransientError{Err: fmt.Errorf("%s read body: %w", source, err)}
	}

	if err := checkStatus(source, resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s decode response: %w", source, err)
	}
	return nil
}

func checkStatus(source string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := apiErrorMessage(body)
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s (status: %d)", ErrQuotaExceeded, msg, status)
	}
	return &StatusError{Source: source, StatusCode: status, Message: msg}
}

// apiErrorMessage extracts {"error": {"message": ...}} when present
func apiErrorMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "unknown error"
	}
	return msg
}

// Dedupe removes results whose URL (compared case-insensitively) was seen
// earlier, keeping the first occurrence
func Dedupe(results []model.SearchResult) []model.SearchResult {
	seen := make(map[string]bool, len(results))
	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		key := strings.ToLower(strings.TrimSpace(r.URL))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
