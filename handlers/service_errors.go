package handlers

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/upb/genproxy/services"
	"github.com/upb/genproxy/utils"
)

// HandleServiceError maps domain errors to HTTP responses.
// Validation is a 400, provider exhaustion a 500 with its aggregate message,
// anything else a 500 carrying the raw error text.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var writeErr error
	switch {
	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, services.GetErrorMessage(err))

	case services.IsExhaustedError(err):
		details := services.GetErrorDetails(err)
		logger.Warn("generation exhausted",
			zap.Any("tried", details["tried"]),
			zap.Any("skipped", details["skipped"]))
		writeErr = utils.WriteInternalServerError(w, services.GetErrorMessage(err))

	default:
		logger.Error("unhandled error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, err.Error())
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing.
// A failure on the prompt field always reports the missing prompt message,
// otherwise the first failing field in name order is reported.
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := err.Error()
	if utils.HasField(err, "prompt") {
		message = services.MissingPromptMessage
	} else if fields := utils.GetValidationFields(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		message = fields[names[0]]
	}

	if err := utils.WriteBadRequest(w, message); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
