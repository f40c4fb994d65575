package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/gapfill/internal/model"
)

type constructor func(Config) (Provider, error)

// registry maps each accepted provider name, aliases included, to its constructor
var registry = map[string]constructor{
	"openai":    func(c Config) (Provider, error) { return NewOpenAIProvider(c) },
	"gemini":    func(c Config) (Provider, error) { return NewGeminiProvider(c) },
	"google":    func(c Config) (Provider, error) { return NewGeminiProvider(c) },
	"anthropic": func(c Config) (Provider, error) { return NewAnthropicProvider(c) },
	"claude":    func(c Config) (Provider, error) { return NewAnthropicProvider(c) },
	"ollama":    func(c Config) (Provider, error) { return NewOllamaProvider(c) },
}

// Providers lists the accepted provider names, sorted
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds the configured provider. An empty name means review is
// disabled and yields a nil provider.
func NewProvider(config Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(config.Provider))
	if name == "" {
		return nil, nil
	}
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: %s)", config.Provider, strings.Join(Providers(), ", "))
	}
	p, err := build(config)
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", name, err)
	}
	return p, nil
}

// ConfigFromModel converts the file/env configuration into provider
// settings, keeping defaults for unset limits
func ConfigFromModel(mc model.LLMConfig) Config {
	config := DefaultConfig()
	config.Provider = mc.Provider
	config.Model = mc.Model
	config.APIKey = mc.APIKey
	config.BaseURL = mc.BaseURL
	config.HTTPProxy = mc.HTTPProxy
	config.HTTPSProxy = mc.HTTPSProxy
	config.NoProxy = mc.NoProxy
	if mc.Timeout > 0 {
		config.Timeout = mc.Timeout
	}
	if mc.MaxTokens > 0 {
		config.MaxTokens = mc.MaxTokens
	}
	return config
}
