package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/upb/capability-resolver/middleware"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
)

func init() {
	// capability accepts a known capability tag in any case
	if err := utils.RegisterValidation("capability", func(fl validator.FieldLevel) bool {
		_, ok := catalog.ParseCapability(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
}

// ProviderRequest is the body of PUT /api/v1/providers/{id}
type ProviderRequest struct {
	ProviderType string   `json:"provider_type" validate:"required"`
	ModelID      string   `json:"model_id" validate:"required"`
	Capabilities []string `json:"capabilities" validate:"required,min=1,dive,capability"`
	Active       *bool    `json:"active,omitempty"`
}

// toCandidate converts the request to a provider candidate with the given id
func (r ProviderRequest) toCandidate(id int64) *models.ProviderCandidate {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &models.ProviderCandidate{
		ID:           id,
		Family:       r.ProviderType,
		ModelID:      r.ModelID,
		Capabilities: catalog.ParseCapabilitySet(r.Capabilities...),
		Active:       active,
	}
}

// ProviderHandler exposes the provider registry
type ProviderHandler struct {
	providers repositories.ProviderRepository
	logger    *zap.Logger
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(providers repositories.ProviderRepository, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		providers: providers,
		logger:    logger,
	}
}

// HandleListProviders handles GET /api/v1/providers
func (h *ProviderHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providers, err := h.providers.ListActive(ctx)
	if err != nil {
		h.logger.Error("failed to list providers",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, providers)
}

// HandleGetProvider handles GET /api/v1/providers/{id}
func (h *ProviderHandler) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	id, err := providerIDParam(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	provider, err := h.providers.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, provider)
}

// HandlePutProvider handles PUT /api/v1/providers/{id}
func (h *ProviderHandler) HandlePutProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := providerIDParam(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	var req ProviderRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	provider := req.toCandidate(id)
	if err := h.providers.Upsert(ctx, provider); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("provider registered",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.Int64("provider_id", id),
		zap.String("provider_type", provider.Family),
		zap.Strings("capabilities", provider.Capabilities.Strings()))

	stored, err := h.providers.GetByID(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, stored)
}

// HandleDeactivateProvider handles DELETE /api/v1/providers/{id}
func (h *ProviderHandler) HandleDeactivateProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := providerIDParam(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.providers.Deactivate(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("provider deactivated",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.Int64("provider_id", id))

	utils.WriteNoContent(w)
}

func providerIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid provider id: %q", raw)
	}
	return id, nil
}
