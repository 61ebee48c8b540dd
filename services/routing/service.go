package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/genproxy/services"
	"github.com/upb/genproxy/services/providers"
)

// PreferenceAuto selects the full fallback chain.
const PreferenceAuto = "auto"

// NoCredentialsMessage is the last error reported when no candidate could be attempted.
const NoCredentialsMessage = "no provider credentials configured"

// ErrNoProviderAvailable is wrapped by the exhaustion error
var ErrNoProviderAvailable = errors.New("no provider available")

// RoutingConfig holds configuration for the dispatcher
type RoutingConfig struct {
	// Chain is the candidate order used for the auto preference
	Chain []providers.Name
}

// DefaultRoutingConfig returns the fixed vendor priority chain
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		Chain: append([]providers.Name(nil), providers.DefaultChain...),
	}
}

// Request is one generation call
type Request struct {
	Prompt     string
	Preference string
}

// Outcome is the accumulated state of one dispatch
type Outcome struct {
	ID         uuid.UUID
	Candidates []providers.Name
	Tried      []providers.Name
	Skipped    []providers.Name
	LastErr    error
	Result     *providers.Result
}

// LastErrorMessage returns the message reported to callers on exhaustion
func (o *Outcome) LastErrorMessage() string {
	if o.LastErr == nil {
		return NoCredentialsMessage
	}
	return o.LastErr.Error()
}

// Dispatcher tries vendor candidates in order until one returns text
type Dispatcher struct {
	config      RoutingConfig
	registry    *providers.Registry
	credentials providers.CredentialSource
	logger      *zap.Logger
}

// NewDispatcher creates a new dispatcher. Credentials are looked up on every dispatch.
func NewDispatcher(config RoutingConfig, registry *providers.Registry, credentials providers.CredentialSource, logger *zap.Logger) *Dispatcher {
	if len(config.Chain) == 0 {
		config = DefaultRoutingConfig()
	}
	if credentials == nil {
		credentials = providers.EnvSource{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		config:      config,
		registry:    registry,
		credentials: credentials,
		logger:      logger,
	}
}

// Candidates returns the ordered vendor names for a preference. Anything other
// than empty or "auto" yields exactly that name, lowercased, known or not.
func (d *Dispatcher) Candidates(preference string) []providers.Name {
	pref := strings.ToLower(strings.TrimSpace(preference))
	if pref == "" || pref == PreferenceAuto {
		return append([]providers.Name(nil), d.config.Chain...)
	}
	return []providers.Name{providers.Name(pref)}
}

// Dispatch runs one generation request through the candidate list. It returns
// the outcome in every case; err is a validation error, an exhaustion error,
// or the caller's context error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	outcome := &Outcome{ID: uuid.New()}
	logger := d.logger.With(zap.String("dispatch_id", outcome.ID.String()))

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return outcome, services.NewDomainError(services.ErrorTypeValidation, services.MissingPromptMessage, nil)
	}

	outcome.Candidates = d.Candidates(req.Preference)
	logger.Info("dispatching generation",
		zap.String("preference", req.Preference),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("candidates", len(outcome.Candidates)))

	for _, name := range outcome.Candidates {
		if err := ctx.Err(); err != nil {
			logger.Info("dispatch cancelled", zap.Error(err))
			return outcome, err
		}

		candidate, ok := d.registry.Lookup(name.String())
		if !ok {
			logger.Info("skipping unknown provider", zap.String("provider", name.String()))
			outcome.Skipped = append(outcome.Skipped, name)
			continue
		}

		credential, ok := candidate.Credential(d.credentials)
		if !ok {
			logger.Info("skipping provider without credential",
				zap.String("provider", name.String()),
				zap.Strings("credential_keys", candidate.CredentialKeys))
			outcome.Skipped = append(outcome.Skipped, name)
			continue
		}

		outcome.Tried = append(outcome.Tried, name)
		start := time.Now()
		result, err := candidate.Provider.Generate(ctx, prompt, credential)
		if err == nil {
			outcome.Result = result
			logger.Info("generation succeeded",
				zap.String("provider", result.Provider.String()),
				zap.String("model", result.Model),
				zap.Int("failed_models", len(result.Attempts)),
				zap.Duration("duration", time.Since(start)))
			return outcome, nil
		}

		outcome.LastErr = err
		logger.Warn("provider failed",
			zap.String("provider", name.String()),
			zap.String("kind", providers.KindOf(err).String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}

	logger.Error("all providers failed",
		zap.Int("tried", len(outcome.Tried)),
		zap.Int("skipped", len(outcome.Skipped)),
		zap.String("last_error", outcome.LastErrorMessage()))

	cause := outcome.LastErr
	if cause == nil {
		cause = ErrNoProviderAvailable
	}
	return outcome, services.NewDomainError(services.ErrorTypeExhausted, FailureMessage(outcome.LastErrorMessage()), cause).
		WithDetail("tried", outcome.Tried).
		WithDetail("skipped", outcome.Skipped)
}

// FailureMessage builds the client-facing text for a fully exhausted dispatch
func FailureMessage(lastErr string) string {
	return fmt.Sprintf("All providers failed. Last error: %s. Configure at least one of %s",
		lastErr, strings.Join(providers.PrimaryCredentialKeys(), ", "))
}

// Providers describes every registered vendor and whether its credential currently resolves
func (d *Dispatcher) Providers() []ProviderStatus {
	candidates := d.registry.Candidates()
	statuses := make([]ProviderStatus, 0, len(candidates))
	for _, c := range candidates {
		_, configured := c.Credential(d.credentials)
		statuses = append(statuses, ProviderStatus{
			Name:           c.Name,
			Models:         c.Provider.Models(),
			CredentialKeys: c.CredentialKeys,
			Configured:     configured,
		})
	}
	return statuses
}

// Configured lists vendors whose credential currently resolves, in chain order
func (d *Dispatcher) Configured() []providers.Name {
	return d.registry.Configured(d.credentials)
}

// ProviderStatus is the public view of one registry entry
type ProviderStatus struct {
	Name           providers.Name `json:"name"`
	Models         []string       `json:"models"`
	CredentialKeys []string       `json:"credential_keys"`
	Configured     bool           `json:"configured"`
}
