package ai

import (
	"fmt"

	"github.com/DachengChen/paiAnalyst/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{
	config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini,
	config.ProviderGrok, config.ProviderOllama, config.ProviderPlaceholder,
}

// DisplayName is the model label used in answers and the answer log.
func DisplayName(name string) string {
	switch name {
	case config.ProviderOpenAI:
		return "ChatGPT"
	case config.ProviderAnthropic:
		return "Claude"
	case config.ProviderGemini:
		return "Gemini"
	case config.ProviderGrok:
		return "Grok"
	case config.ProviderOllama:
		return "Ollama"
	case config.ProviderPlaceholder:
		return "Placeholder"
	}
	return name
}

// NewProvider creates the named AI provider from the application config.
// An empty name yields ErrNotConfigured.
func NewProvider(cfg config.AIConfig, name string) (Provider, error) {
	switch name {
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OpenAI API key not set. Set OPENAI_API_KEY env var or add it to ~/.paianalyst/config.json", ErrNotConfigured)
		}
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil

	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("%w: Anthropic API key not set. Set ANTHROPIC_API_KEY env var or add it to ~/.paianalyst/config.json", ErrNotConfigured)
		}
		return NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil

	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: Gemini API key not set. Set GEMINI_API_KEY env var or add it to ~/.paianalyst/config.json", ErrNotConfigured)
		}
		return NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model), nil

	case config.ProviderGrok:
		if cfg.Grok.APIKey == "" {
			return nil, fmt.Errorf("%w: xAI API key not set. Set XAI_API_KEY env var or add it to ~/.paianalyst/config.json", ErrNotConfigured)
		}
		return NewGrok(cfg.Grok.APIKey, cfg.Grok.Model), nil

	case config.ProviderOllama:
		return NewOllama(cfg.Ollama.Host, cfg.Ollama.Model), nil

	case config.ProviderPlaceholder:
		return NewPlaceholder(), nil

	case "":
		return nil, ErrNotConfigured

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: %v", name, SupportedProviders)
	}
}

// Named pairs a provider with the label its answers are filed under.
type Named struct {
	Label    string
	Provider Provider
}

// NewProviders builds one provider per name, in order. A name that
// cannot be built becomes an Unavailable provider carrying the error.
func NewProviders(cfg config.AIConfig, names []string) []Named {
	out := make([]Named, 0, len(names))
	for _, name := range names {
		label := DisplayName(name)
		p, err := NewProvider(cfg, name)
		if err != nil {
			p = &Unavailable{name: label, err: err}
		}
		out = append(out, Named{Label: label, Provider: p})
	}
	return out
}

// Optional builds a provider for a secondary feature and returns nil,
// not an error, when it is not configured.
func Optional(cfg config.AIConfig, name string) Provider {
	p, err := NewProvider(cfg, name)
	if err != nil {
		return nil
	}
	return p
}
