package model

import "time"

// Config holds the complete boxcheck configuration
type Config struct {
	Data         DataConfig         `yaml:"data" mapstructure:"data"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Corruption   CorruptionConfig   `yaml:"corruption" mapstructure:"corruption"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	NER          ServiceConfig      `yaml:"ner" mapstructure:"ner"`
	Tokenizer    TokenizerConfig    `yaml:"tokenizer" mapstructure:"tokenizer"`
	Predictor    ServiceConfig      `yaml:"predictor" mapstructure:"predictor"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
}

// DataConfig locates the input corpora
type DataConfig struct {
	TemplatesDir string `yaml:"templates_dir" mapstructure:"templates_dir"` // log_<split>.txt files
	RotowireDir  string `yaml:"rotowire_dir" mapstructure:"rotowire_dir"`   // <split>.json files
	CitiesFile   string `yaml:"cities_file" mapstructure:"cities_file"`     // Empty = built-in list
	Labels       string `yaml:"labels" mapstructure:"labels"`               // basic, extended
	Separator    string `yaml:"separator" mapstructure:"separator"`         // Separator token between context and hypothesis
}

// RetrievalConfig controls context retrieval
type RetrievalConfig struct {
	ContextCount int `yaml:"context_count" mapstructure:"context_count"`
	Hypotheses   int `yaml:"hypotheses" mapstructure:"hypotheses"` // Sentences sampled per game
}

// CorruptionConfig controls entity corruption
type CorruptionConfig struct {
	Rate        float64 `yaml:"rate" mapstructure:"rate"`
	MaxRatio    float64 `yaml:"max_ratio" mapstructure:"max_ratio"`
	StdDev      float64 `yaml:"std_dev" mapstructure:"std_dev"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	Seed        uint64  `yaml:"seed" mapstructure:"seed"`
}

// EmbeddingConfig selects the sentence-embedding backend
type EmbeddingConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model    string        `yaml:"model" mapstructure:"model"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `yaml:"-" mapstructure:"api_key"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServiceConfig locates an HTTP collaborator
type ServiceConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TokenizerConfig locates the subword tokenizer service
type TokenizerConfig struct {
	Endpoint  string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxLength int           `yaml:"max_length" mapstructure:"max_length"`
}

// CacheConfig controls the embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig limits calls to remote collaborators
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls shard parallelism
type ConcurrencyConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	ShardSize int `yaml:"shard_size" mapstructure:"shard_size"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			TemplatesDir: "generated/simple_templates",
			RotowireDir:  "data/rotowire",
			Labels:       "basic",
			Separator:    "</s>",
		},
		Retrieval: RetrievalConfig{
			ContextCount: 5,
			Hypotheses:   3,
		},
		Corruption: CorruptionConfig{
			Rate:        0.5,
			MaxRatio:    0.5,
			StdDev:      3,
			MaxAttempts: 1000,
			Seed:        42,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
			Timeout:  30 * time.Second,
		},
		NER: ServiceConfig{
			Timeout: 30 * time.Second,
		},
		Tokenizer: TokenizerConfig{
			Endpoint:  "http://localhost:8081",
			Timeout:   30 * time.Second,
			MaxLength: 512,
		},
		Predictor: ServiceConfig{
			Endpoint: "http://localhost:8082",
			Timeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".boxcheck/cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 20,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers:   4,
			ShardSize: 100,
		},
	}
}
