package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

const defaultGoogleURL = "https://www.googleapis.com/customsearch/v1"

// googleMaxResults is the Custom Search API page size limit
const googleMaxResults = 10

// GoogleSearcher queries the Google Custom Search JSON API
type GoogleSearcher struct {
	apiKey     string
	engineID   string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type googleResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

// NewGoogleSearcher creates a Custom Search client. baseURL may be empty.
func NewGoogleSearcher(apiKey, engineID, baseURL, userAgent string, client *http.Client) (*GoogleSearcher, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("google search requires an API key and engine id (GOOGLE_API_KEY, GOOGLE_CSE_ID)")
	}
	if baseURL == "" {
		baseURL = defaultGoogleURL
	}
	return &GoogleSearcher{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: client,
	}, nil
}

// Search runs one Custom Search query
func (g *GoogleSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 || maxResults > googleMaxResults {
		maxResults = googleMaxResults
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))

	var resp googleResponse
	if err := getJSON(ctx, g.httpClient, "google", g.baseURL+"?"+params.Encode(), g.userAgent, &resp); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, model.SearchResult{
			Title:         strings.TrimSpace(item.Title),
			Snippet:       strings.TrimSpace(item.Snippet),
			URL:           item.Link,
			DisplayDomain: item.DisplayLink,
		})
	}
	return results, nil
}
