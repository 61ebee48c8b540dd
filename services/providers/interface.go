package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Name identifies one of the supported vendors.
type Name string

const (
	Groq   Name = "groq"
	OpenAI Name = "openai"
	Gemini Name = "gemini"
	Claude Name = "claude"
)

// String returns the wire name of the vendor.
func (n Name) String() string {
	return string(n)
}

// Sampling parameters shared by every adapter.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// DefaultAttemptTimeout bounds a model attempt when ProviderConfig.Timeout is unset
const DefaultAttemptTimeout = 30 * time.Second

// Provider represents a unified text generation backend
type Provider interface {
	// Name returns the vendor name (e.g., "groq", "openai", "gemini", "claude")
	Name() Name

	// Models returns the model candidates in the order they are attempted
	Models() []string

	// Generate turns a prompt into text using the given credential, falling
	// back across Models() when the vendor reports a model as unavailable.
	Generate(ctx context.Context, prompt, credential string) (*Result, error)
}

// ProviderConfig holds adapter settings. Credentials are not part of it:
// they are resolved per dispatch and passed to Generate.
type ProviderConfig struct {
	// BaseURL overrides the vendor endpoint, mainly for tests and proxies
	BaseURL string

	// Models overrides the vendor's default model chain
	Models []string

	// Timeout bounds every single model attempt
	Timeout time.Duration

	Logger *zap.Logger
}

// ModelsOrDefault returns the configured models, or defaults when none are set.
func (c ProviderConfig) ModelsOrDefault(defaults []string) []string {
	if len(c.Models) > 0 {
		return append([]string(nil), c.Models...)
	}
	return append([]string(nil), defaults...)
}

// TimeoutOrDefault returns the configured attempt timeout, or DefaultAttemptTimeout.
func (c ProviderConfig) TimeoutOrDefault() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultAttemptTimeout
}

// Result is the normalized output of a successful generation
type Result struct {
	// Text is the trimmed, non-empty generated text
	Text string `json:"text"`

	// Model that produced Text
	Model string `json:"model"`

	// Provider that produced Text
	Provider Name `json:"provider"`

	// Attempts lists the model trials that failed before the successful one
	Attempts []ModelAttempt `json:"-"`

	// Latency of the successful attempt
	Latency time.Duration `json:"-"`
}

// ModelAttempt records one (provider, model) trial
type ModelAttempt struct {
	Provider Name
	Model    string
	Err      error
	Duration time.Duration
}

// ErrorKind classifies a vendor failure at the adapter boundary
type ErrorKind int

const (
	// KindFatal aborts the vendor's remaining models. Unclassified errors land here.
	KindFatal ErrorKind = iota

	// KindModelUnavailable lets the adapter advance to its next model
	KindModelUnavailable

	// KindTimeout means the per-attempt deadline expired
	KindTimeout

	// KindEmptyResponse means the vendor answered without usable text
	KindEmptyResponse

	// KindExhausted means every model was tried without a usable answer
	KindExhausted
)

// String returns a stable label for logs.
func (k ErrorKind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindModelUnavailable:
		return "model_unavailable"
	case KindTimeout:
		return "timeout"
	case KindEmptyResponse:
		return "empty_response"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider Name

	// Model being attempted, empty for vendor-level errors
	Model string

	// Kind drives the fallback decision
	Kind ErrorKind

	// Code is the vendor error code or type, if any
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.Model != "" {
		msg = fmt.Sprintf("%s (%s): %s", e.Provider, e.Model, e.Message)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider Name, model string, kind ErrorKind, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Model:      model,
		Kind:       kind,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// KindOf returns the classification of err. Errors that are not
// ProviderErrors are fatal.
func KindOf(err error) ErrorKind {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind
	}
	return KindFatal
}

// IsModelUnavailable checks if an error allows advancing to the next model
func IsModelUnavailable(err error) bool {
	return err != nil && KindOf(err) == KindModelUnavailable
}
