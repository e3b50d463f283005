package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/util"
	"github.com/ppiankov/factcheck/internal/worker"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoSearcher scrapes the DuckDuckGo HTML endpoint. It needs no API
// key and serves as the quota fallback.
type DuckDuckGoSearcher struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	robots     *util.RobotsChecker // Optional
	limiter    *worker.Limiter     // Optional, keyed by host; honours robots.txt crawl delay
}

// NewDuckDuckGoSearcher creates a DuckDuckGo searcher. robots and limiter
// may be nil.
func NewDuckDuckGoSearcher(baseURL, userAgent string, client *http.Client, robots *util.RobotsChecker, limiter *worker.Limiter) *DuckDuckGoSearcher {
	if baseURL == "" {
		baseURL = defaultDuckDuckGoURL
	}
	return &DuckDuckGoSearcher{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: client,
		robots:     robots,
		limiter:    limiter,
	}
}

// Search runs one query against the HTML endpoint
func (d *DuckDuckGoSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	var delay time.Duration
	if d.robots != nil {
		allowed, crawlDelay, err := d.robots.CanFetch(ctx, d.baseURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("duckduckgo %s: %w", d.baseURL, ErrDisallowed)
		}
		delay = crawlDelay
	}
	if err := d.limiter.WaitURL(ctx, d.baseURL, delay); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: fmt.Errorf("duckduckgo request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, checkStatus("duckduckgo", resp.StatusCode, body)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}
	return parseDuckDuckGo(doc, maxResults), nil
}

// parseDuckDuckGo extracts organic results from a results page, skipping ads
func parseDuckDuckGo(doc *html.Node, maxResults int) []model.SearchResult {
	var results []model.SearchResult
	for _, node := range findAll(doc, byClass("result")) {
		if hasClass(node, "result--ad") {
			continue
		}
		link := findFirst(node, byClass("result__a"))
		if link == nil {
			continue
		}
		target := resolveDuckDuckGoLink(attr(link, "href"))
		if target == "" {
			continue
		}

		r := model.SearchResult{
			Title: textContent(link),
			URL:   target,
		}
		if snippet := findFirst(node, byClass("result__snippet")); snippet != nil {
			r.Snippet = textContent(snippet)
		}
		if u, err := url.Parse(target); err == nil {
			r.DisplayDomain = strings.TrimPrefix(u.Host, "www.")
		}

		results = append(results, r)
		if len(results) == maxResults {
			break
		}
	}
	return results
}

// resolveDuckDuckGoLink unwraps /l/?uddg= redirect links to the target URL
func resolveDuckDuckGoLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
