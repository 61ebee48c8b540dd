package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AttemptFunc issues one request for a single model and returns the raw
// response text. Vendor errors must already be classified as ProviderErrors.
type AttemptFunc func(ctx context.Context, model string) (string, error)

// Chain walks a vendor's model list until one model answers with text.
//
// Model-unavailable and empty answers advance to the next model. Any other
// error, including a per-attempt timeout, stops the chain and is returned
// as is. With Strict set, the first failure of any kind is returned.
type Chain struct {
	Provider Name
	Models   []string
	Timeout  time.Duration
	Strict   bool
	Logger   *zap.Logger
}

// Run executes the chain.
func (c Chain) Run(ctx context.Context, attempt AttemptFunc) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(c.Models) == 0 {
		return nil, NewProviderError(c.Provider, "", KindFatal, "", "no models configured", 0, nil)
	}

	var attempts []ModelAttempt
	var lastErr error

	for _, model := range c.Models {
		start := time.Now()
		text, err := c.try(ctx, model, attempt)
		elapsed := time.Since(start)

		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				logger.Debug("model attempt succeeded",
					zap.String("provider", c.Provider.String()),
					zap.String("model", model),
					zap.Duration("latency", elapsed))
				return &Result{
					Text:     text,
					Model:    model,
					Provider: c.Provider,
					Attempts: attempts,
					Latency:  elapsed,
				}, nil
			}
			err = NewProviderError(c.Provider, model, KindEmptyResponse, "", "empty response text", 0, nil)
		}

		attempts = append(attempts, ModelAttempt{Provider: c.Provider, Model: model, Err: err, Duration: elapsed})
		lastErr = err
		kind := KindOf(err)

		if c.Strict || (kind != KindModelUnavailable && kind != KindEmptyResponse) {
			logger.Warn("model attempt failed, abandoning provider",
				zap.String("provider", c.Provider.String()),
				zap.String("model", model),
				zap.String("kind", kind.String()),
				zap.Error(err))
			return nil, err
		}

		logger.Debug("model attempt failed, trying next model",
			zap.String("provider", c.Provider.String()),
			zap.String("model", model),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}

	exhausted := NewProviderError(c.Provider, "", KindExhausted, "",
		fmt.Sprintf("all %s models failed", c.Provider), 0, lastErr)
	return nil, exhausted
}

// try runs one attempt under the per-attempt deadline.
func (c Chain) try(ctx context.Context, model string, attempt AttemptFunc) (string, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	}
	defer cancel()

	text, err := attempt(attemptCtx, model)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return "", NewProviderError(c.Provider, model, KindTimeout, "",
			fmt.Sprintf("attempt timed out after %s", c.Timeout), 0, err)
	}
	return text, err
}
