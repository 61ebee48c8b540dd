// Package groq serves Groq's OpenAI-compatible endpoint with a single model.
package groq

import (
	"github.com/upb/genproxy/services/providers"
	"github.com/upb/genproxy/services/providers/openai"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the only model Groq is asked for.
	DefaultModel = "llama-3.3-70b-versatile"
)

// NewGroqAdapter creates the Groq adapter. Groq has no fallback chain: one
// attempt, and any failure or empty answer ends it. If config.Models is set
// only its first entry is used.
func NewGroqAdapter(config providers.ProviderConfig) *openai.OpenAIAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.Models = config.ModelsOrDefault([]string{DefaultModel})[:1]
	return openai.NewCompatibleAdapter(providers.Groq, config, true)
}
