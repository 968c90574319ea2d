package llm

import (
	"fmt"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderStub   Provider = "stub"
)

// Settings selects a provider and holds its credentials.
type Settings struct {
	Provider Provider

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicAPIKey  string
	ClaudeModel      string
	AnthropicBaseURL string
}

// Factory creates LLM instances based on provider
type Factory struct {
	settings Settings
}

// NewFactory creates a new LLM factory
func NewFactory(settings Settings) *Factory {
	return &Factory{settings: settings}
}

// Create builds the configured provider. It is called once per request, so a
// credential missing from the environment fails that request only.
func (f *Factory) Create() (LLM, error) {
	return f.CreateLLM(f.settings.Provider)
}

// CreateLLM creates an LLM instance for the given provider
func (f *Factory) CreateLLM(provider Provider) (LLM, error) {
	s := f.settings
	switch provider {
	case ProviderOpenAI, "":
		if s.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
		}
		model := s.OpenAIModel
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIWithModel(s.OpenAIAPIKey, model).WithBaseURL(s.OpenAIBaseURL), nil

	case ProviderClaude:
		if s.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}
		model := s.ClaudeModel
		if model == "" {
			model = DefaultClaudeModel
		}
		return NewClaudeWithModel(s.AnthropicAPIKey, model).WithBaseURL(s.AnthropicBaseURL), nil

	case ProviderStub:
		return NewStub(), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// ParseProvider normalizes a provider name.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return ProviderOpenAI, nil
	}
	for _, known := range GetAvailableProviders() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported LLM_PROVIDER: %s (supported: openai, claude, stub)", name)
}

// GetAvailableProviders returns a list of available LLM providers
func GetAvailableProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderClaude, ProviderStub}
}
