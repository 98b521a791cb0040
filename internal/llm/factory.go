package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider for the named backend. Supported values are
// "openai", "gemini" and "mock".
func NewProvider(ctx context.Context, provider, baseURL, apiKey, model string) (Provider, error) {
	switch provider {
	case "openai":
		return NewOpenAIProvider(baseURL, apiKey, model)
	case "gemini":
		return NewGeminiProvider(ctx, apiKey, model)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
