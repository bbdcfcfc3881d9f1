package model

import "time"

// Config is the full runtime configuration, loaded from
// ~/.factsumm/config.yaml, FACTSUMM_* environment variables and CLI flags.
// The mapstructure tags mirror the yaml ones so viper decodes the same
// snake_case keys the yaml marshaling writes.
type Config struct {
	Adapters    AdapterConfig     `yaml:"adapters" json:"adapters" mapstructure:"adapters"`
	OpenAI      OpenAIConfig      `yaml:"openai" json:"openai" mapstructure:"openai"`
	HTTP        HTTPConfig        `yaml:"http" json:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output" mapstructure:"output"`
}

// AdapterConfig names the extraction backends. A name is either "prose"
// (local), "rule" (segmenter only), "openai/<model>" or an inference-server
// base URL ("http://host:port"). Adapters are materialized lazily, on first
// use, with Device passed through to the loader.
type AdapterConfig struct {
	Segmenter string `yaml:"segmenter" json:"segmenter" mapstructure:"segmenter"`
	NER       string `yaml:"ner" json:"ner" mapstructure:"ner"`
	Rel       string `yaml:"rel" json:"rel" mapstructure:"rel"`
	QG        string `yaml:"qg" json:"qg" mapstructure:"qg"`
	QA        string `yaml:"qa" json:"qa" mapstructure:"qa"`
	OpenIE    string `yaml:"openie" json:"openie" mapstructure:"openie"`
	Embedder  string `yaml:"embedder" json:"embedder" mapstructure:"embedder"`
	Device    string `yaml:"device" json:"device" mapstructure:"device"`
}

// OpenAIConfig configures the OpenAI-backed adapters.
type OpenAIConfig struct {
	APIKey    string `yaml:"api_key,omitempty" json:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
}

// HTTPConfig configures outbound HTTP for URL sources and remote adapters.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures caching of fetched documents and embeddings.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" json:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures batch processing and remote-call politeness.
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" json:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Adapters: AdapterConfig{
			Segmenter: "prose",
			NER:       "prose",
			Rel:       "openai/gpt-4o-mini",
			QG:        "openai/gpt-4o-mini",
			QA:        "openai/gpt-4o-mini",
			OpenIE:    "openai/gpt-4o-mini",
			Embedder:  "openai/text-embedding-3-small",
			Device:    "cpu",
		},
		OpenAI: OpenAIConfig{
			Timeout:   30,
			MaxTokens: 1000,
		},
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "factsumm/0.1 (+https://github.com/aic-factcheck/factsumm)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
