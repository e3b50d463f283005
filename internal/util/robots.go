package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL bounds how long a host's rules are trusted
const robotsTTL = 6 * time.Hour

// RobotsChecker answers whether the search user agent may request a URL.
// Rules are fetched once per host and kept for robotsTTL.
type RobotsChecker struct {
	rules  *gocache.Cache
	client *http.Client
	agent  string
}

// NewRobotsCheckerWithClient creates a checker that fetches robots.txt with
// client. The user agent is matched by its product token only.
func NewRobotsCheckerWithClient(userAgent string, client *http.Client) *RobotsChecker {
	return &RobotsChecker{
		rules:  gocache.New(robotsTTL, time.Hour),
		client: client,
		agent:  productToken(userAgent),
	}
}

// CanFetch reports whether rawURL may be requested and the crawl delay the
// host asks for. An unreachable robots.txt allows the request.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.hostRules(ctx, u)
	if err != nil {
		return true, 0, nil
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	var delay time.Duration
	if g := data.FindGroup(r.agent); g != nil {
		delay = g.CrawlDelay
	}
	return data.TestAgent(path, r.agent), delay, nil
}

func (r *RobotsChecker) hostRules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if v, ok := r.rules.Get(u.Host); ok {
		return v.(*robotstxt.RobotsData), nil
	}

	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse treats 4xx as allow-all and 5xx as disallow-all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	r.rules.SetDefault(u.Host, data)
	return data, nil
}

// productToken returns the product name of a user agent,
// e.g. "factcheck" for "factcheck/0.1 (+https://...)"
func productToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(fields[0], "/")
	return product
}
