package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/upb/genproxy/services/providers"
)

const defaultBaseURL = "https://api.openai.com/v1"

// DefaultModels is the OpenAI fallback chain, best first.
var DefaultModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

// OpenAIAdapter implements the Provider interface for OpenAI and for any
// vendor that speaks the chat completions protocol.
type OpenAIAdapter struct {
	name   providers.Name
	config providers.ProviderConfig
	strict bool
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(config providers.ProviderConfig) *OpenAIAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.Models = config.ModelsOrDefault(DefaultModels)
	return NewCompatibleAdapter(providers.OpenAI, config, false)
}

// NewCompatibleAdapter creates an adapter for an OpenAI-compatible vendor.
// config.BaseURL and config.Models must be set. A strict adapter gives up on
// the first failed model.
func NewCompatibleAdapter(name providers.Name, config providers.ProviderConfig, strict bool) *OpenAIAdapter {
	config.Timeout = config.TimeoutOrDefault()
	return &OpenAIAdapter{
		name:   name,
		config: config,
		strict: strict,
	}
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() providers.Name {
	return a.name
}

// Models returns the model chain in attempt order
func (a *OpenAIAdapter) Models() []string {
	return append([]string(nil), a.config.Models...)
}

// Generate runs the prompt through the model chain with the given API key
func (a *OpenAIAdapter) Generate(ctx context.Context, prompt, credential string) (*providers.Result, error) {
	clientConfig := goopenai.DefaultConfig(credential)
	clientConfig.BaseURL = a.config.BaseURL
	client := goopenai.NewClientWithConfig(clientConfig)

	chain := providers.Chain{
		Provider: a.name,
		Models:   a.config.Models,
		Timeout:  a.config.Timeout,
		Strict:   a.strict,
		Logger:   a.config.Logger,
	}

	return chain.Run(ctx, func(ctx context.Context, model string) (string, error) {
		resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model: model,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   providers.DefaultMaxTokens,
			Temperature: providers.DefaultTemperature,
		})
		if err != nil {
			return "", ClassifyError(a.name, model, err)
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// ClassifyError maps a go-openai error to a ProviderError. Only a 404 or an
// explicit model error code lets the chain move on; anything else is fatal.
func ClassifyError(name providers.Name, model string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		kind := providers.KindFatal
		if apiErr.HTTPStatusCode == http.StatusNotFound || isModelCode(code) {
			kind = providers.KindModelUnavailable
		}
		return providers.NewProviderError(name, model, kind, code, apiErr.Message, apiErr.HTTPStatusCode, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		kind := providers.KindFatal
		if reqErr.HTTPStatusCode == http.StatusNotFound {
			kind = providers.KindModelUnavailable
		}
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if msg == "" {
			msg = "request failed"
		}
		return providers.NewProviderError(name, model, kind, "", msg, reqErr.HTTPStatusCode, err)
	}

	return providers.NewProviderError(name, model, providers.KindFatal, "", "request failed", 0, err)
}

func isModelCode(code string) bool {
	switch code {
	case "model_not_found", "model_decommissioned":
		return true
	}
	return false
}

var _ providers.Provider = (*OpenAIAdapter)(nil)
