package llm

import "fmt"

// OpenAI-compatible providers and their base URLs.
var openAICompatibleProviders = map[string]string{
	"openrouter": "https://openrouter.ai/api/v1",
	"mistral":    "https://api.mistral.ai/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"together":   "https://api.together.xyz/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"fireworks":  "https://api.fireworks.ai/inference/v1",
}

func New(cfg Config) (LLM, error) {
	switch cfg.Provider {
	case "claude":
		return newClaude(cfg.APIKey, cfg.Model), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}

		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}

		return newOpenAICompatible(cfg.Provider, cfg.APIKey, baseURL, model), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}

		model := cfg.Model
		if model == "" {
			model = "qwen2:0.5b"
		}

		return newOpenAICompatible(cfg.Provider, "ollama", baseURL+"/v1", model), nil
	default:
		if baseURL, ok := openAICompatibleProviders[cfg.Provider]; ok {
			if cfg.BaseURL != "" {
				baseURL = cfg.BaseURL
			}

			model := cfg.Model
			if model == "" && cfg.Provider == "openrouter" {
				model = "meta-llama/llama-3.2-3b-instruct:free"
			}

			return newOpenAICompatible(cfg.Provider, cfg.APIKey, baseURL, model), nil
		}
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// KnownProviders returns all recognized provider IDs.
func KnownProviders() []string {
	providers := []string{"claude", "openai", "ollama"}
	for p := range openAICompatibleProviders {
		providers = append(providers, p)
	}
	return providers
}
