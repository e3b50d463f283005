package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

func TestGoogleSearcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("cx") != "cx" || q.Get("num") != "10" {
			t.Errorf("unexpected params: %v", q)
		}
		if q.Get("q") != "moon landing 1969" {
			t.Errorf("unexpected query: %s", q.Get("q"))
		}
		_, _ = w.Write([]byte(`{"items": [
			{"title": "Apollo 11", "link": "https://www.nasa.gov/apollo11", "snippet": "Landed July 20, 1969.", "displayLink": "www.nasa.gov"},
			{"title": "No link", "snippet": "dropped"}
		]}`))
	}))
	defer server.Close()

	g, err := NewGoogleSearcher("k", "cx", server.URL, "test-agent", server.Client())
	if err != nil {
		t.Fatalf("NewGoogleSearcher: %v", err)
	}
	results, err := g.Search(context.Background(), "moon landing 1969", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://www.nasa.gov/apollo11" || results[0].DisplayDomain != "www.nasa.gov" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestGoogleSearcher_Errors(t *testing.T) {
	tests := []struct {
		status    int
		quota     bool
		retryable bool
	}{
		{http.StatusForbidden, true, false},
		{http.StatusTooManyRequests, true, false},
		{http.StatusInternalServerError, false, true},
		{http.StatusBadRequest, false, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope"}}`))
			}))
			defer server.Close()

			g, _ := NewGoogleSearcher("k", "cx", server.URL, "", server.Client())
			_, err := g.Search(context.Background(), "q", 10)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrQuotaExceeded) != tt.quota {
				t.Errorf("quota = %v, want %v (%v)", !tt.quota, tt.quota, err)
			}
			if IsTransient(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v (%v)", !tt.retryable, tt.retryable, err)
			}
			if !strings.Contains(err.Error(), "nope") {
				t.Errorf("error should carry API message: %v", err)
			}
		})
	}
}

func TestNewGoogleSearcher_RequiresCredentials(t *testing.T) {
	if _, err := NewGoogleSearcher("", "cx", "", "", http.DefaultClient); err == nil {
		t.Error("expected error without API key")
	}
}

func TestFactCheckSearcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("languageCode") != "en" {
			t.Errorf("unexpected language: %s", r.URL.Query().Get("languageCode"))
		}
		_, _ = w.Write([]byte(`{"claims": [
			{"text": "Napoleon was very short", "claimReview": [
				{"publisher": {"name": "Snopes", "site": "snopes.com"}, "url": "https://www.snopes.com/napoleon", "title": "Was Napoleon Short?", "textualRating": "False"}
			]},
			{"text": "no reviews", "claimReview": []},
			{"text": "", "claimReview": [{"url": "https://x.org"}]}
		]}`))
	}))
	defer server.Close()

	f, err := NewFactCheckSearcher("k", "", server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("NewFactCheckSearcher: %v", err)
	}
	results, err := f.Search(context.Background(), "napoleon height", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %+v", results)
	}
	r := results[0]
	if r.Title != "[FACT-CHECK] Napoleon was very short" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Snippet != "Rating: False | Was Napoleon Short?" || r.DisplayDomain != "snopes.com" {
		t.Errorf("unexpected result: %+v", r)
	}
}

const ddgPage = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.example.com">Ad</a>
</div>
<div class="result results_links web-result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fen.wikipedia.org%2Fwiki%2FBerlin_Wall&rut=abc">Berlin <b>Wall</b></a></h2>
  <a class="result__snippet" href="#">The wall fell on   9 November 1989.</a>
</div>
<div class="result results_links web-result">
  <a class="result__a" href="https://www.britannica.com/topic/Berlin-Wall">Berlin Wall | Britannica</a>
  <div class="result__snippet">Barrier that divided Berlin.</div>
</div>
<div class="result"><a class="result__a" href="javascript:void(0)">bad</a></div>
</body></html>`

func TestDuckDuckGoSearcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("q") != "berlin wall" {
			t.Errorf("unexpected form: %v %v", r.PostForm, err)
		}
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGoSearcher(server.URL, "test-agent", server.Client(), nil, nil)
	results, err := d.Search(context.Background(), "berlin wall", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 organic results, got %+v", results)
	}
	if results[0].URL != "https://en.wikipedia.org/wiki/Berlin_Wall" || results[0].Title != "Berlin Wall" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[0].Snippet != "The wall fell on 9 November 1989." || results[0].DisplayDomain != "en.wikipedia.org" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].DisplayDomain != "britannica.com" {
		t.Errorf("unexpected second result: %+v", results[1])
	}

	limited, err := d.Search(context.Background(), "berlin wall", 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("expected 1 result with max 1, got %d (%v)", len(limited), err)
	}
}

func TestDuckDuckGoSearcher_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	d := NewDuckDuckGoSearcher(server.URL, "", server.Client(), nil, nil)
	if _, err := d.Search(context.Background(), "q", 10); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestDuckDuckGoSearcher_WaitsOnHostLimiter(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGoSearcher(server.URL, "", server.Client(), nil, worker.NewLimiter(0.001, 1))
	if _, err := d.Search(context.Background(), "q", 10); err != nil {
		t.Fatalf("first search should pass the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := d.Search(ctx, "q", 10); err == nil {
		t.Error("expected the host limiter to refuse a second search")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestDedupe(t *testing.T) {
	in := []model.SearchResult{
		{Title: "a", URL: "https://Example.com/A"},
		{Title: "b", URL: "https://example.com/a"},
		{Title: "c", URL: "https://example.com/c"},
		{Title: "empty", URL: ""},
	}
	out := Dedupe(in)
	if len(out) != 2 || out[0].Title != "a" || out[1].Title != "c" {
		t.Errorf("unexpected dedupe: %+v", out)
	}
}

func TestTransientError(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("wrapped: %w", &TransientError{Err: base})
	if !IsTransient(err) || !errors.Is(err, base) {
		t.Errorf("expected transient wrapping %v", base)
	}
	if IsTransient(errors.New("plain")) {
		t.Error("plain errors are not transient")
	}
}
