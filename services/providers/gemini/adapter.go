// Package gemini implements the Google Gemini adapter using the genai SDK.
package gemini

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/upb/genproxy/services/providers"
)

const (
	defaultAPIVersion = "v1beta"

	topP = 0.95
	topK = 40
)

// DefaultModels is the Gemini fallback chain, best first.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-1.5-pro-latest",
	"gemini-pro",
}

// GeminiAdapter implements the Provider interface for Google Gemini
type GeminiAdapter struct {
	config providers.ProviderConfig
}

// NewGeminiAdapter creates a new Gemini adapter. An empty BaseURL keeps the SDK default endpoint.
func NewGeminiAdapter(config providers.ProviderConfig) *GeminiAdapter {
	config.Timeout = config.TimeoutOrDefault()
	config.Models = config.ModelsOrDefault(DefaultModels)
	return &GeminiAdapter{config: config}
}

// Name returns the provider name
func (a *GeminiAdapter) Name() providers.Name {
	return providers.Gemini
}

// Models returns the model chain in attempt order
func (a *GeminiAdapter) Models() []string {
	return append([]string(nil), a.config.Models...)
}

// Generate runs the prompt through the model chain with the given API key
func (a *GeminiAdapter) Generate(ctx context.Context, prompt, credential string) (*providers.Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    a.config.BaseURL,
			APIVersion: defaultAPIVersion,
		},
	})
	if err != nil {
		return nil, providers.NewProviderError(providers.Gemini, "", providers.KindFatal, "", "failed to initialize client", 0, err)
	}

	generation := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](providers.DefaultTemperature),
		TopP:            genai.Ptr[float32](topP),
		TopK:            genai.Ptr[float32](topK),
		MaxOutputTokens: providers.DefaultMaxTokens,
	}

	chain := providers.Chain{
		Provider: providers.Gemini,
		Models:   a.config.Models,
		Timeout:  a.config.Timeout,
		Logger:   a.config.Logger,
	}

	return chain.Run(ctx, func(ctx context.Context, model string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), generation)
		if err != nil {
			return "", classifyError(model, err)
		}
		return responseText(resp), nil
	})
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text += part.Text
		}
	}
	return text
}

// classifyError maps a genai error to a ProviderError. A 404 status or the
// NOT_FOUND status string means the model is unavailable; everything else is fatal.
func classifyError(model string, err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return providers.NewProviderError(providers.Gemini, model, providers.KindFatal, "", "request failed", 0, err)
	}

	kind := providers.KindFatal
	if apiErr.Code == http.StatusNotFound || apiErr.Status == "NOT_FOUND" {
		kind = providers.KindModelUnavailable
	}
	return providers.NewProviderError(providers.Gemini, model, kind, apiErr.Status, apiErr.Message, apiErr.Code, err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

var _ providers.Provider = (*GeminiAdapter)(nil)
