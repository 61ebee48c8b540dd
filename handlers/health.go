package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/genproxy/models"
	"github.com/upb/genproxy/services/providers"
	"github.com/upb/genproxy/services/routing"
	"github.com/upb/genproxy/utils"
)

// ProviderInspector reports the registry state
type ProviderInspector interface {
	Providers() []routing.ProviderStatus
	Configured() []providers.Name
}

// HealthHandler serves the liveness, readiness and inventory endpoints
type HealthHandler struct {
	inspector ProviderInspector
	logger    *zap.Logger
	now       func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(inspector ProviderInspector, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		inspector: inspector,
		logger:    logger,
		now:       time.Now,
	}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.logWrite(utils.WriteOK(w, models.NewPingResponse(h.now())))
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.logWrite(utils.WriteOK(w, map[string]string{"status": "ok"}))
}

// Readyz handles GET /readyz. Ready means at least one vendor has a credential.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	configured := h.inspector.Configured()
	names := make([]string, len(configured))
	for i, n := range configured {
		names[i] = n.String()
	}

	if len(names) == 0 {
		h.logWrite(utils.WriteServiceUnavailable(w, map[string]interface{}{
			"status":    "not_ready",
			"providers": names,
			"error":     routing.NoCredentialsMessage,
		}))
		return
	}
	h.logWrite(utils.WriteOK(w, map[string]interface{}{
		"status":    "ready",
		"providers": names,
	}))
}

// Providers handles GET /providers
func (h *HealthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	h.logWrite(utils.WriteOK(w, map[string]interface{}{
		"providers": h.inspector.Providers(),
	}))
}

func (h *HealthHandler) logWrite(err error) {
	if err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
