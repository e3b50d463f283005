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

const defaultFactCheckURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// FactCheckTitlePrefix marks results that come from professional
// fact-checkers
const FactCheckTitlePrefix = "[FACT-CHECK]"

// FactCheckSearcher queries the Google Fact Check Tools API for published
// ClaimReview records
type FactCheckSearcher struct {
	apiKey     string
	language   string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// NewFactCheckSearcher creates a Fact Check Tools client
func NewFactCheckSearcher(apiKey, language, baseURL, userAgent string, client *http.Client) (*FactCheckSearcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("fact check API requires an API key (GOOGLE_API_KEY)")
	}
	if language == "" {
		language = "en"
	}
	if baseURL == "" {
		baseURL = defaultFactCheckURL
	}
	return &FactCheckSearcher{
		apiKey:     apiKey,
		language:   language,
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: client,
	}, nil
}

// Search returns fact-check reviews matching query. Titles carry the
// FactCheckTitlePrefix.
func (f *FactCheckSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("key", f.apiKey)
	params.Set("query", query)
	params.Set("languageCode", f.language)
	params.Set("pageSize", strconv.Itoa(maxResults))

	var resp factCheckResponse
	if err := getJSON(ctx, f.httpClient, "factcheck", f.baseURL+"?"+params.Encode(), f.userAgent, &resp); err != nil {
		return nil, err
	}

	var results []model.SearchResult
	for _, claim := range resp.Claims {
		if claim.Text == "" || len(claim.ClaimReview) == 0 {
			continue
		}
		review := claim.ClaimReview[0]
		if review.URL == "" {
			continue
		}

		rating := review.TextualRating
		if rating == "" {
			rating = "Unknown"
		}
		detail := review.Title
		if detail == "" {
			detail = truncateRunes(claim.Text, 200)
		}

		domain := review.Publisher.Site
		if domain == "" {
			if u, err := url.Parse(review.URL); err == nil {
				domain = u.Host
			}
		}
		if domain == "" {
			domain = review.Publisher.Name
		}

		results = append(results, model.SearchResult{
			Title:         FactCheckTitlePrefix + " " + truncateRunes(claim.Text, 100),
			Snippet:       "Rating: " + rating + " | " + detail,
			URL:           review.URL,
			DisplayDomain: domain,
		})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
