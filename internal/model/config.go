package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Strictness controls how LOW-confidence blanks affect the validation status
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// Config is the complete gapfill configuration
type Config struct {
	Exercise     ExerciseConfig     `yaml:"exercise" mapstructure:"exercise"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ExerciseConfig controls the blanking pipeline
type ExerciseConfig struct {
	Density         float64    `yaml:"density" mapstructure:"density"`                   // Target fraction of turns with a blank
	Difficulty      CEFR       `yaml:"difficulty" mapstructure:"difficulty"`             // Target CEFR level
	MinAlternatives int        `yaml:"min_alternatives" mapstructure:"min_alternatives"` // Fallback threshold per blank
	Strictness      Strictness `yaml:"strictness" mapstructure:"strictness"`
	IncludeDeepDive bool       `yaml:"include_deep_dive" mapstructure:"include_deep_dive"`
	KnowledgeFile   string     `yaml:"knowledge_file,omitempty" mapstructure:"knowledge_file"` // Optional YAML replacing built-in tables
}

// CacheConfig controls the exercise result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

// RateLimitingConfig throttles LLM review calls per provider and dialogue
// fetches per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LLMConfig configures the optional review provider
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, gemini, anthropic, ollama or "" (disabled)
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Preview bool `yaml:"preview" mapstructure:"preview"` // Render Markdown to the terminal
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "gapfill-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".gapfill", "cache")
	}

	return &Config{
		Exercise: ExerciseConfig{
			Density:         0.25,
			Difficulty:      CEFRB2,
			MinAlternatives: 3,
			Strictness:      StrictnessStandard,
			IncludeDeepDive: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			FetchTimeout: 30 * time.Second,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 800,
		},
	}
}

// Validate checks the exercise options
func (c ExerciseConfig) Validate() error {
	if c.Density < 0.05 || c.Density > 1.0 {
		return fmt.Errorf("density %.2f out of range [0.05, 1.0]", c.Density)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("difficulty %q is not a CEFR level (A1-C2)", c.Difficulty)
	}
	if c.MinAlternatives < 1 || c.MinAlternatives > 5 {
		return fmt.Errorf("min_alternatives %d out of range [1, 5]", c.MinAlternatives)
	}
	switch c.Strictness {
	case StrictnessLenient, StrictnessStandard, StrictnessStrict:
	default:
		return fmt.Errorf("unknown strictness %q (lenient, standard, strict)", c.Strictness)
	}
	return nil
}
