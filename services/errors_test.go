package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeExhausted, "all providers failed", baseErr)

	assert.Equal(t, ErrorTypeExhausted, domainErr.Type)
	assert.Equal(t, "all providers failed", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeExhausted,
				Message: "all providers failed",
				Err:     errors.New("groq: 401"),
			},
			wantMsg: "exhausted: all providers failed (groq: 401)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: MissingPromptMessage,
			},
			wantMsg: "validation: Missing prompt in request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeExhausted, "all providers failed", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same error type", NewDomainError(ErrorTypeValidation, "blank", nil), ErrMissingPrompt, true},
		{"different error type", NewDomainError(ErrorTypeExhausted, "boom", nil), ErrMissingPrompt, false},
		{"not a domain error", NewDomainError(ErrorTypeExhausted, "x", nil), errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeExhausted, "all providers failed", nil)

	err.WithDetail("tried", []string{"groq"}).WithDetail("skipped", []string{"openai"})

	assert.Equal(t, []string{"groq"}, err.Details["tried"])
	assert.Equal(t, []string{"openai"}, err.Details["skipped"])
	assert.Equal(t, err.Details, GetErrorDetails(fmt.Errorf("ctx: %w", err)))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		exhausted  bool
	}{
		{"validation", ErrMissingPrompt, true, false},
		{"wrapped validation", fmt.Errorf("wrapped: %w", ErrMissingPrompt), true, false},
		{"exhausted", ErrAllProvidersFailed, false, true},
		{"regular error", errors.New("regular"), false, false},
		{"nil error", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.exhausted, IsExhaustedError(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, MissingPromptMessage, GetErrorMessage(ErrMissingPrompt))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
	assert.Equal(t, ErrorTypeExhausted, GetErrorType(fmt.Errorf("ctx: %w", ErrAllProvidersFailed)))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}
