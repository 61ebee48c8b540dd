// Package claude implements the Claude adapter using the official anthropic-sdk-go.
package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/upb/genproxy/services/providers"
)

// DefaultModels is the Claude fallback chain, best first.
var DefaultModels = []string{
	"claude-3-5-sonnet-latest",
	"claude-3-5-haiku-latest",
	"claude-3-haiku-20240307",
}

// ClaudeAdapter implements the Provider interface for Anthropic Claude
type ClaudeAdapter struct {
	config providers.ProviderConfig
}

// NewClaudeAdapter creates a new Claude adapter. An empty BaseURL keeps the SDK default endpoint.
func NewClaudeAdapter(config providers.ProviderConfig) *ClaudeAdapter {
	config.Timeout = config.TimeoutOrDefault()
	config.Models = config.ModelsOrDefault(DefaultModels)
	return &ClaudeAdapter{config: config}
}

// Name returns the provider name
func (a *ClaudeAdapter) Name() providers.Name {
	return providers.Claude
}

// Models returns the model chain in attempt order
func (a *ClaudeAdapter) Models() []string {
	return append([]string(nil), a.config.Models...)
}

// Generate runs the prompt through the model chain with the given API key
func (a *ClaudeAdapter) Generate(ctx context.Context, prompt, credential string) (*providers.Result, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		// The chain decides what happens after a failure.
		option.WithMaxRetries(0),
	}
	if a.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.config.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	chain := providers.Chain{
		Provider: providers.Claude,
		Models:   a.config.Models,
		Timeout:  a.config.Timeout,
		Logger:   a.config.Logger,
	}

	return chain.Run(ctx, func(ctx context.Context, model string) (string, error) {
		message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: providers.DefaultMaxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
			Temperature: anthropic.Float(providers.DefaultTemperature),
		})
		if err != nil {
			return "", classifyError(model, err)
		}

		var text strings.Builder
		for _, block := range message.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				text.WriteString(variant.Text)
			}
		}
		return text.String(), nil
	})
}

// classifyError maps an SDK error to a ProviderError. Only a 404 lets the
// chain advance; every other status and transport failure is fatal.
func classifyError(model string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := providers.KindFatal
		if apiErr.StatusCode == http.StatusNotFound {
			kind = providers.KindModelUnavailable
		}
		return providers.NewProviderError(providers.Claude, model, kind, "", http.StatusText(apiErr.StatusCode), apiErr.StatusCode, err)
	}
	return providers.NewProviderError(providers.Claude, model, providers.KindFatal, "", "request failed", 0, err)
}

var _ providers.Provider = (*ClaudeAdapter)(nil)
