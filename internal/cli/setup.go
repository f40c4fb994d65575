package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/gapfill/internal/cache"
	"github.com/ppiankov/gapfill/internal/extract"
	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/llm"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/pipeline"
	"github.com/ppiankov/gapfill/internal/worker"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// setDefaults registers every config key so env vars and Unmarshal see it
func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("exercise.density", d.Exercise.Density)
	v.SetDefault("exercise.difficulty", string(d.Exercise.Difficulty))
	v.SetDefault("exercise.min_alternatives", d.Exercise.MinAlternatives)
	v.SetDefault("exercise.strictness", string(d.Exercise.Strictness))
	v.SetDefault("exercise.include_deep_dive", d.Exercise.IncludeDeepDive)
	v.SetDefault("exercise.knowledge_file", d.Exercise.KnowledgeFile)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("concurrency.fetch_timeout", d.Concurrency.FetchTimeout)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)
	v.SetDefault("llm.no_proxy", d.LLM.NoProxy)

	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.preview", d.Output.Preview)
}

// bindFlags binds the command's flags to config keys. Binding happens when
// the command runs so commands sharing a key never steal each other's flags.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// exerciseFlags are shared by generate, batch and watch
var exerciseFlags = map[string]string{
	"density":          "exercise.density",
	"difficulty":       "exercise.difficulty",
	"min-alternatives": "exercise.min_alternatives",
	"strictness":       "exercise.strictness",
	"knowledge":        "exercise.knowledge_file",
	"llm":              "llm.provider",
	"llm-model":        "llm.model",
	"workers":          "concurrency.workers",
}

func addExerciseFlags(flags *pflag.FlagSet) {
	d := model.DefaultConfig()

	flags.Float64("density", d.Exercise.Density, "target fraction of turns with a blank (0.05-1.0)")
	flags.String("difficulty", string(d.Exercise.Difficulty), "target CEFR level (A1-C2)")
	flags.Int("min-alternatives", d.Exercise.MinAlternatives, "alternatives per blank before fallback kicks in (1-5)")
	flags.String("strictness", string(d.Exercise.Strictness), "validation strictness (lenient, standard, strict)")
	flags.Bool("no-deep-dive", false, "skip deep-dive insights")
	flags.String("knowledge", "", "YAML knowledge file replacing the built-in tables")
	flags.Bool("no-cache", false, "disable cache (force regeneration)")
	flags.String("llm", "", "LLM provider for teacher review notes (openai, gemini, anthropic, ollama)")
	flags.String("llm-model", "", "LLM model name (provider default if empty)")
	flags.Int("workers", d.Concurrency.Workers, "number of concurrent workers")
}

// loadConfig merges defaults, config file, env and bound flags
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	if err := bindFlags(cmd, exerciseFlags); err != nil {
		return nil, err
	}

	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Inverted and one-shot flags are applied directly
	if noDeepDive, _ := cmd.Flags().GetBool("no-deep-dive"); noDeepDive {
		cfg.Exercise.IncludeDeepDive = false
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	cfg.Exercise.Difficulty = model.CEFR(strings.ToUpper(string(cfg.Exercise.Difficulty)))
	cfg.Exercise.Strictness = model.Strictness(strings.ToLower(string(cfg.Exercise.Strictness)))

	if err := cfg.Exercise.Validate(); err != nil {
		return nil, err
	}

	resolveAPIKey(&cfg.LLM)
	return cfg, nil
}

// resolveAPIKey fills the key from the provider's conventional env var
func resolveAPIKey(c *model.LLMConfig) {
	if c.APIKey != "" {
		return
	}
	switch strings.ToLower(c.Provider) {
	case "openai":
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	case "gemini", "google":
		c.APIKey = os.Getenv("GEMINI_API_KEY")
		if c.APIKey == "" {
			c.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case "anthropic", "claude":
		c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "ollama":
		// Ollama doesn't need an API key
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// newLogger builds the CLI logger: production config, debug when verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// app bundles what every generating command needs
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
	cache    *cache.LayeredCache // nil when caching is off
}

// newApp loads configuration and wires the pipeline
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	kb, err := knowledge.Resolve(cfg.Exercise.KnowledgeFile)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	var layered *cache.LayeredCache
	if cfg.Cache.Enabled {
		layered = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, pipeline.WithCache(layered, cfg.Cache.DiskTTL))
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	opts = append(opts, pipeline.WithFetcher(
		extract.NewFetcher(nil, cfg.Concurrency.FetchTimeout, "gapfill/"+buildVersion(), 0, extract.WithThrottle(limiter)),
	))

	if cfg.LLM.Provider != "" {
		reviewer, err := llm.NewReviewer(llm.ConfigFromModel(cfg.LLM), limiter, logger)
		if err != nil {
			// Review is optional; generation continues without it
			logger.Warn("LLM review disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithReviewer(reviewer))
		}
	}

	p, err := pipeline.NewPipeline(cfg.Exercise, kb, opts...)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		renderer: pipeline.NewRenderer("", logger),
		cache:    layered,
	}, nil
}
