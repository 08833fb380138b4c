package config

// AI provider configuration. API keys can be set in the config file or via
// environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY,
// XAI_API_KEY).

// Provider names accepted by ai.NewProvider.
const (
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderGrok        = "grok"
	ProviderOllama      = "ollama"
	ProviderPlaceholder = "placeholder"
)

// AIConfig holds the AI provider credentials and which provider serves
// which job.
type AIConfig struct {
	Enhancer   string `json:"enhancer"`   // provider used to rewrite questions; "" disables it
	Summarizer string `json:"summarizer"` // provider used for result summaries; "" disables it

	OpenAI    OpenAIConfig    `json:"openai"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Gemini    GeminiConfig    `json:"gemini"`
	Grok      GrokConfig      `json:"grok"`
	Ollama    OllamaConfig    `json:"ollama"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// GrokConfig holds xAI Grok settings. The API is OpenAI-compatible.
type GrokConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Enhancer:   ProviderOpenAI,
		Summarizer: ProviderOpenAI,
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o",
			EmbeddingModel: "text-embedding-3-small",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Grok: GrokConfig{
			Model: "grok-3",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
	}
}
