package llm

import (
	"errors"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer        = "https://github.com/abhisek/adaptutor"
	openRouterTitle          = "adaptutor"
)

// OpenRouterProvider is a Chat Completions client pointed at OpenRouter.
// Model names are passed through untouched since OpenRouter namespaces
// them by vendor.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	transport := &attributionTransport{base: http.DefaultTransport}
	return &OpenRouterProvider{
		OpenAIProvider: newChatProvider("openrouter", cfg.APIKey, baseURL, cfg.Model, transport),
	}, nil
}

// attributionTransport adds the app attribution headers OpenRouter uses
// for its rankings.
type attributionTransport struct {
	base http.RoundTripper
}

func (t *attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(r)
}
