package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/genproxy/config"
	"github.com/upb/genproxy/services/providers"
	"github.com/upb/genproxy/services/providers/claude"
	"github.com/upb/genproxy/services/providers/gemini"
	"github.com/upb/genproxy/services/providers/groq"
	"github.com/upb/genproxy/services/providers/openai"
	"github.com/upb/genproxy/services/routing"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Providers
	Credentials providers.CredentialSource
	Registry    *providers.Registry
	Dispatcher  *routing.Dispatcher
}

// Option customizes NewDependencies
type Option func(*Dependencies)

// WithCredentials replaces the process environment as credential source
func WithCredentials(src providers.CredentialSource) Option {
	return func(d *Dependencies) {
		d.Credentials = src
	}
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dependencies, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Credentials: providers.EnvSource{},
	}
	for _, opt := range opts {
		opt(deps)
	}

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	configured := deps.Dispatcher.Configured()
	if len(configured) == 0 {
		logger.Warn("no provider credentials configured; /generate will fail until one is set",
			zap.Strings("credential_keys", providers.PrimaryCredentialKeys()))
	}
	logger.Info("all dependencies initialized successfully",
		zap.Int("providers", deps.Registry.Count()),
		zap.Int("configured", len(configured)))
	return deps, nil
}

// initProviders builds one adapter per vendor, in chain order
func (d *Dependencies) initProviders(cfg *config.Config) error {
	vendor := func(vc config.VendorConfig) providers.ProviderConfig {
		return providers.ProviderConfig{
			BaseURL: vc.BaseURL,
			Models:  vc.Models,
			Timeout: cfg.Providers.AttemptTimeout,
			Logger:  d.Logger,
		}
	}

	registry, err := providers.NewRegistry(
		providers.Candidate{Provider: groq.NewGroqAdapter(vendor(cfg.Providers.Groq))},
		providers.Candidate{Provider: openai.NewOpenAIAdapter(vendor(cfg.Providers.OpenAI))},
		providers.Candidate{Provider: gemini.NewGeminiAdapter(vendor(cfg.Providers.Gemini))},
		providers.Candidate{Provider: claude.NewClaudeAdapter(vendor(cfg.Providers.Claude))},
	)
	if err != nil {
		return err
	}

	for _, c := range registry.Candidates() {
		d.Logger.Debug("registered provider",
			zap.String("provider", c.Name.String()),
			zap.Strings("models", c.Provider.Models()))
	}

	d.Registry = registry
	d.Dispatcher = routing.NewDispatcher(routing.DefaultRoutingConfig(), registry, d.Credentials, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	if d.Logger == nil {
		return nil
	}
	d.Logger.Info("shutting down dependencies")
	// Sync fails on stdout/stderr for some platforms; nothing to act on
	_ = d.Logger.Sync()
	return nil
}
