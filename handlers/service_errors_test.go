package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/upb/genproxy/services"
	"github.com/upb/genproxy/utils"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "validation error",
			err:             services.NewDomainError(services.ErrorTypeValidation, services.MissingPromptMessage, nil),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: services.MissingPromptMessage,
		},
		{
			name:            "exhausted error",
			err:             services.NewDomainError(services.ErrorTypeExhausted, "All providers failed. Last error: x.", errors.New("x")),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "All providers failed. Last error: x.",
		},
		{
			name: "exhausted error with dispatch details",
			err: services.NewDomainError(services.ErrorTypeExhausted, "All providers failed. Last error: y.", errors.New("y")).
				WithDetail("tried", []string{"groq"}).
				WithDetail("skipped", []string{"openai"}),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "All providers failed. Last error: y.",
		},
		{
			name:            "domain error of unknown type keeps raw text",
			err:             services.NewDomainError(services.ErrorType("other"), "broken", errors.New("nil map")),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "other: broken (nil map)",
		},
		{
			name:            "plain error",
			err:             errors.New("something odd"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMessage, decodeErrorBody(t, w))
		})
	}

	t.Run("exhaustion logs tried and skipped vendors", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		err := services.NewDomainError(services.ErrorTypeExhausted, "All providers failed. Last error: z.", nil).
			WithDetail("tried", []string{"groq", "openai"}).
			WithDetail("skipped", []string{"gemini"})

		w := httptest.NewRecorder()
		HandleServiceError(w, err, zap.New(core))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		entries := logs.FilterMessage("generation exhausted").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, []interface{}{"groq", "openai"}, fields["tried"])
		assert.Equal(t, []interface{}{"gemini"}, fields["skipped"])
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, nil, logger)
		assert.Empty(t, w.Body.String())
	})
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("prompt field", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"prompt": "prompt is required"},
		}, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, services.MissingPromptMessage, decodeErrorBody(t, w))
	})

	t.Run("other field", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"provider": "provider must be at most 8"},
		}, logger)

		assert.Equal(t, "provider must be at most 8", decodeErrorBody(t, w))
	})

	t.Run("several fields report the first by name", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			w := httptest.NewRecorder()
			HandleValidationError(w, &utils.ValidationError{
				Message: "Validation failed",
				Fields: map[string]string{
					"provider": "provider is invalid",
					"model":    "model is invalid",
					"stream":   "stream is invalid",
				},
			}, logger)

			assert.Equal(t, "model is invalid", decodeErrorBody(t, w))
		}
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("bad"), logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad", decodeErrorBody(t, w))
	})
}
