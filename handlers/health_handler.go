package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthChecker is implemented by backing stores that can report connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db        HealthChecker
	providers repositories.ProviderRepository
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
// db may be nil when the provider registry is kept in memory.
func NewHealthHandler(db HealthChecker, providers repositories.ProviderRepository, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		providers: providers,
		logger:    logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Readiness check - validates that the provider registry can be read
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.db == nil {
		checks["database"] = "not_configured"
	} else if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		allHealthy = false
	} else {
		checks["database"] = "healthy"
	}

	switch {
	case h.providers == nil:
		checks["providers"] = "not_configured"
		allHealthy = false
	default:
		active, err := h.providers.ListActive(ctx)
		switch {
		case err != nil:
			h.logger.Warn("provider registry check failed", zap.Error(err))
			checks["providers"] = "unhealthy"
			allHealthy = false
		case len(active) == 0:
			checks["providers"] = "none_configured"
		default:
			checks["providers"] = strconv.Itoa(len(active)) + " active"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
