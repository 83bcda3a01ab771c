package model

import "time"

// Version metadata reported in every AnalysisResult
const (
	AppVersion   = "v1.0.0-beta"
	ModelType    = "nli-distilroberta+heuristics"
	IndexVersion = "weaviate-v1"
)

// Config is the complete runtime configuration.
// Hierarchy: CLI flags > CLAIMLENS_* env vars > config file > defaults.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Infer    InferConfig    `yaml:"infer" mapstructure:"infer"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Workers  int            `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP job surface
type ServerConfig struct {
	Addr             string `yaml:"addr" mapstructure:"addr"`
	AnalyzePerMinute int    `yaml:"analyze_per_minute" mapstructure:"analyze_per_minute"`
}

// StoreConfig configures the vector evidence store
type StoreConfig struct {
	Scheme string `yaml:"scheme" mapstructure:"scheme"`
	Host   string `yaml:"host" mapstructure:"host"`
	Class  string `yaml:"class" mapstructure:"class"`
	// ConsistencyTimeout bounds the wait for backfilled evidence to become
	// queryable. It is a tunable delay, not a correctness guarantee.
	ConsistencyTimeout time.Duration `yaml:"consistency_timeout" mapstructure:"consistency_timeout"`
}

// CacheConfig configures the result cache layers
type CacheConfig struct {
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	ResultTTL time.Duration `yaml:"result_ttl" mapstructure:"result_ttl"`
}

// FetchConfig configures the backfill fetchers
type FetchConfig struct {
	FactCheckAPIKey   string        `yaml:"fact_check_api_key" mapstructure:"fact_check_api_key"`
	FactCheckURL      string        `yaml:"fact_check_url" mapstructure:"fact_check_url"`
	FactCheckTimeout  time.Duration `yaml:"fact_check_timeout" mapstructure:"fact_check_timeout"`
	NewsRSSURL        string        `yaml:"news_rss_url" mapstructure:"news_rss_url"`
	NewsTimeout       time.Duration `yaml:"news_timeout" mapstructure:"news_timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// InferConfig configures the stance/safety/saliency classifier backend
type InferConfig struct {
	// Provider selects the backend: "server" (inference server) or "openai"
	Provider string        `yaml:"provider" mapstructure:"provider"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PipelineConfig holds the retrieval and ranking constants
type PipelineConfig struct {
	RetrieveK   int     `yaml:"retrieve_k" mapstructure:"retrieve_k"`
	SoftGate    float64 `yaml:"soft_gate" mapstructure:"soft_gate"`
	WeakBest    float64 `yaml:"weak_best" mapstructure:"weak_best"`
	MaxEvidence int     `yaml:"max_evidence" mapstructure:"max_evidence"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8090",
			AnalyzePerMinute: 5,
		},
		Store: StoreConfig{
			Scheme:             "http",
			Host:               "localhost:8080",
			Class:              "ClaimEvidence",
			ConsistencyTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Dir:       "",
			ResultTTL: time.Hour,
		},
		Fetch: FetchConfig{
			FactCheckURL:      "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			FactCheckTimeout:  5 * time.Second,
			NewsRSSURL:        "https://news.google.com/rss/search",
			NewsTimeout:       10 * time.Second,
			UserAgent:         "claimlens/1.0 (+https://github.com/claimlens)",
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Infer: InferConfig{
			Provider: "server",
			BaseURL:  "http://localhost:9000",
			Timeout:  10 * time.Second,
		},
		Pipeline: PipelineConfig{
			RetrieveK:   50,
			SoftGate:    1.4,
			WeakBest:    0.8,
			MaxEvidence: 8,
		},
		Workers: 4,
	}
}
