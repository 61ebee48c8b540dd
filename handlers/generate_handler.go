package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/genproxy/internal/observability"
	"github.com/upb/genproxy/models"
	"github.com/upb/genproxy/services/routing"
	"github.com/upb/genproxy/utils"
)

// InvalidBodyMessage is returned when the request body is not a JSON object
const InvalidBodyMessage = "Invalid request body"

// maxBodyBytes caps the generate request body
const maxBodyBytes = 1 << 20

// GenerationService dispatches a prompt to the provider chain
type GenerationService interface {
	Dispatch(ctx context.Context, req routing.Request) (*routing.Outcome, error)
}

// GenerateHandler serves POST /generate
type GenerateHandler struct {
	service GenerationService
	logger  *zap.Logger
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(service GenerationService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		service: service,
		logger:  logger,
	}
}

// Generate handles POST /generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx, h.logger)

	// An empty body decodes to an empty request so it fails on the prompt
	var req models.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("undecodable generate body", zap.Error(err))
		if err := utils.WriteBadRequest(w, InvalidBodyMessage); err != nil {
			logger.Error("failed to write response", zap.Error(err))
		}
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	outcome, err := h.service.Dispatch(ctx, routing.Request{
		Prompt:     req.Prompt,
		Preference: req.Provider,
	})
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	result := outcome.Result
	if err := utils.WriteOK(w, models.NewGenerateResponse(result.Text, result.Provider.String(), result.Model)); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
