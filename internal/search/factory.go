package search

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ppiankov/factcheck/internal/cache"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/util"
	"github.com/ppiankov/factcheck/internal/worker"
)

// NewFromConfig assembles the configured searcher stack: the provider, its
// quota fallback, the optional fact-check source, caching and rate limiting.
// c and limiter may be nil.
func NewFromConfig(cfg model.SearchConfig, httpCfg model.HTTPConfig, c cache.Cache, limiter *worker.Limiter, logger *slog.Logger) (Searcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := util.NewHTTPClient(cfg.Timeout, httpCfg)

	primary, err := newProvider(cfg.Provider, cfg, cfg.BaseURL, client, limiter)
	if err != nil {
		return nil, err
	}

	var s Searcher = primary
	if fb := strings.ToLower(cfg.Fallback); fb != "" && fb != strings.ToLower(cfg.Provider) {
		secondary, err := newProvider(fb, cfg, "", client, limiter)
		if err != nil {
			return nil, fmt.Errorf("search fallback: %w", err)
		}
		s = &FallbackSearcher{Primary: s, Secondary: secondary, Logger: logger}
	}

	if cfg.FactCheck {
		fc, err := NewFactCheckSearcher(cfg.APIKey, cfg.Language, cfg.FactCheckURL, cfg.UserAgent, client)
		if err != nil {
			logger.Warn("fact check source disabled", slog.String("error", err.Error()))
		} else {
			s = &MergedSearcher{Sources: []Searcher{fc, s}, Logger: logger}
		}
	}

	if limiter != nil {
		s = &RateLimitedSearcher{Searcher: s, Limiter: limiter, Key: "search"}
	}
	if c != nil {
		s = &CachedSearcher{Searcher: s, Cache: c, Namespace: cacheNamespace(cfg)}
	}
	return s, nil
}

func newProvider(name string, cfg model.SearchConfig, baseURL string, client *http.Client, limiter *worker.Limiter) (Searcher, error) {
	switch strings.ToLower(name) {
	case "google":
		return NewGoogleSearcher(cfg.APIKey, cfg.EngineID, baseURL, cfg.UserAgent, client)
	case "duckduckgo", "ddg", "":
		var robots *util.RobotsChecker
		if cfg.RespectRobots {
			robots = util.NewRobotsCheckerWithClient(cfg.UserAgent, client)
		}
		return NewDuckDuckGoSearcher(baseURL, cfg.UserAgent, client, robots, limiter), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: google, duckduckgo)", name)
	}
}

func cacheNamespace(cfg model.SearchConfig) string {
	ns := strings.ToLower(cfg.Provider)
	if cfg.FactCheck {
		ns += "+factcheck"
	}
	if cfg.TrustedOnly {
		ns += "+trusted"
	}
	return ns
}
