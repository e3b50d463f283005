package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	Router      RouterConfig      `yaml:"router" mapstructure:"router"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Evaluator   EvaluatorConfig   `yaml:"evaluator" mapstructure:"evaluator"`
	Workflow    WorkflowConfig    `yaml:"workflow" mapstructure:"workflow"`
	Checkpoint  CheckpointConfig  `yaml:"checkpoint" mapstructure:"checkpoint"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Credibility CredibilityConfig `yaml:"credibility" mapstructure:"credibility"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
}

// RouterConfig tunes the underspecified-query thresholds
type RouterConfig struct {
	MinWords int `yaml:"min_words" mapstructure:"min_words"`
	MinChars int `yaml:"min_chars" mapstructure:"min_chars"`
}

// SearchConfig configures evidence retrieval
type SearchConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // google, duckduckgo
	Fallback          string        `yaml:"fallback" mapstructure:"fallback"` // used on quota exhaustion
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	EngineID          string        `yaml:"engine_id,omitempty" mapstructure:"engine_id"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxResults        int           `yaml:"max_results" mapstructure:"max_results"`
	MaxQueries        int           `yaml:"max_queries" mapstructure:"max_queries"`
	Concurrency       int           `yaml:"concurrency" mapstructure:"concurrency"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TrustedOnly       bool          `yaml:"trusted_only" mapstructure:"trusted_only"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	FactCheck         bool          `yaml:"fact_check" mapstructure:"fact_check"` // also query the Google Fact Check Tools API
	FactCheckURL      string        `yaml:"fact_check_url,omitempty" mapstructure:"fact_check_url"`
	Language          string        `yaml:"language" mapstructure:"language"`
}

// LLMConfig configures the judgment and generation model
type LLMConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // openai, ollama, "" (disabled)
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64       `yaml:"temperature" mapstructure:"temperature"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// EvaluatorConfig bounds the per-pair evaluation fan-out
type EvaluatorConfig struct {
	MaxEvidence    int           `yaml:"max_evidence" mapstructure:"max_evidence"`
	Workers        int           `yaml:"workers" mapstructure:"workers"`
	PairTimeout    time.Duration `yaml:"pair_timeout" mapstructure:"pair_timeout"`
	ReasoningLimit int           `yaml:"reasoning_limit" mapstructure:"reasoning_limit"`
}

// WorkflowConfig configures the stage retry policy
type WorkflowConfig struct {
	RetryAttempts int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// CheckpointConfig selects the checkpoint backend
type CheckpointConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, badger, redis, none
	Path      string        `yaml:"path" mapstructure:"path"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// CacheConfig configures caching of search and model responses
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// CredibilityConfig holds the domain lists used to weight sources
type CredibilityConfig struct {
	FactCheckDomains  []string          `yaml:"fact_check_domains" mapstructure:"fact_check_domains"`
	NewsDomains       []string          `yaml:"news_domains" mapstructure:"news_domains"`
	LowQualityDomains []string          `yaml:"low_quality_domains" mapstructure:"low_quality_domains"`
	DomainMap         map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"` // host -> tier name
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// HTTPConfig holds proxy settings shared by all outbound clients
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Router: RouterConfig{
			MinWords: 2,
			MinChars: 8,
		},
		Search: SearchConfig{
			Provider:          "duckduckgo",
			Fallback:          "",
			MaxResults:        10,
			MaxQueries:        3,
			Concurrency:       3,
			Timeout:           30 * time.Second,
			UserAgent:         "factcheck/0.1 (+https://github.com/ppiankov/factcheck)",
			RespectRobots:     false,
			RequestsPerSecond: 2,
			Burst:             2,
			Language:          "en",
		},
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           30 * time.Second,
			MaxTokens:         800,
			Temperature:       0.1,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Evaluator: EvaluatorConfig{
			MaxEvidence:    5,
			Workers:        4,
			PairTimeout:    20 * time.Second,
			ReasoningLimit: 280,
		},
		Workflow: WorkflowConfig{
			RetryAttempts: 2,
			RetryDelay:    time.Second,
		},
		Checkpoint: CheckpointConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Credibility: DefaultCredibilityConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultCredibilityConfig returns the built-in source lists
func DefaultCredibilityConfig() CredibilityConfig {
	return CredibilityConfig{
		FactCheckDomains: []string{
			"snopes.com",
			"politifact.com",
			"factcheck.org",
			"fullfact.org",
			"checkyourfact.com",
			"leadstories.com",
		},
		NewsDomains: []string{
			"reuters.com",
			"apnews.com",
			"bbc.com",
			"bbc.co.uk",
			"npr.org",
			"theguardian.com",
			"nytimes.com",
			"wsj.com",
			"washingtonpost.com",
			"bloomberg.com",
			"cnn.com",
			"dw.com",
			"france24.com",
			"wikipedia.org",
			"britannica.com",
			"history.com",
		},
		LowQualityDomains: []string{
			"reddit.com",
			"quora.com",
			"facebook.com",
			"twitter.com",
			"x.com",
			"tiktok.com",
			"pinterest.com",
			"medium.com",
			"blogspot.com",
			"wordpress.com",
		},
	}
}
