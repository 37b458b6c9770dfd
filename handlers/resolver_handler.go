package handlers

import (
	"net/http"

	"github.com/upb/capability-resolver/middleware"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/requirements"
	"github.com/upb/capability-resolver/services/routing"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
)

// RequirementsRequest is the body of POST /api/v1/requirements
type RequirementsRequest struct {
	ContentCategories []string `json:"content_categories" validate:"required"`
}

// RequirementsResponse lists the derived requirements
type RequirementsResponse struct {
	Requirements      requirements.Requirements `json:"requirements"`
	Capabilities      []catalog.Capability      `json:"capabilities"`
	UnknownCategories []string                  `json:"unknown_categories"`
}

// CandidateRequest is a caller-supplied provider candidate
type CandidateRequest struct {
	ID           int64    `json:"id" validate:"required,gt=0"`
	ProviderType string   `json:"provider_type" validate:"required"`
	ModelID      string   `json:"model_id" validate:"required"`
	Capabilities []string `json:"capabilities" validate:"required,dive,capability"`
	Active       *bool    `json:"active,omitempty"`
}

// ResolveRequest is the body of POST /api/v1/resolutions
type ResolveRequest struct {
	Scenario          string              `json:"scenario,omitempty" validate:"max=128"`
	ContentCategories []string            `json:"content_categories" validate:"required"`
	Strategy          string              `json:"strategy,omitempty"`
	ProviderIDs       []int64             `json:"provider_ids,omitempty" validate:"omitempty,dive,gt=0"`
	Providers         []*CandidateRequest `json:"providers,omitempty" validate:"omitempty,dive,required"`
	IncludeReport     bool                `json:"include_report,omitempty"`
}

// ResolveResponse is a resolution result with the optional diagnostic report
type ResolveResponse struct {
	*routing.ResolveResult
	Complete bool   `json:"complete"`
	Report   string `json:"report,omitempty"`
}

// StrategyRequest is the body of PUT /api/v1/strategy
type StrategyRequest struct {
	Strategy string `json:"strategy" validate:"required"`
}

// StrategyResponse reports the default strategy
type StrategyResponse struct {
	Strategy   routing.Strategy   `json:"strategy"`
	Strategies []routing.Strategy `json:"strategies"`
}

// CategoryResponse describes one known content category
type CategoryResponse struct {
	Category   requirements.ContentCategory `json:"category"`
	Capability catalog.Capability           `json:"capability"`
}

// ResolverHandler handles requirement derivation and capability resolution
type ResolverHandler struct {
	service *routing.RoutingService
	logger  *zap.Logger
}

// NewResolverHandler creates a new ResolverHandler
func NewResolverHandler(service *routing.RoutingService, logger *zap.Logger) *ResolverHandler {
	return &ResolverHandler{
		service: service,
		logger:  logger,
	}
}

// HandleDeriveRequirements handles POST /api/v1/requirements
func (h *ResolverHandler) HandleDeriveRequirements(w http.ResponseWriter, r *http.Request) {
	var req RequirementsRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	reqs := requirements.Derive(req.ContentCategories)
	unknown := []string{}
	for _, c := range req.ContentCategories {
		if _, ok := requirements.CapabilityFor(c); !ok {
			unknown = append(unknown, c)
		}
	}

	_ = utils.WriteOK(w, RequirementsResponse{
		Requirements:      reqs,
		Capabilities:      reqs.Capabilities(),
		UnknownCategories: unknown,
	})
}

// HandleResolve handles POST /api/v1/resolutions.
// With ?format=text the diagnostic report is returned as plain text.
func (h *ResolverHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ResolveRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	scenario := routing.Scenario{
		Name:              req.Scenario,
		ContentCategories: req.ContentCategories,
		ProviderIDs:       req.ProviderIDs,
	}

	switch {
	case req.Strategy != "":
		strategy, err := routing.ParseStrategy(req.Strategy)
		if err != nil {
			HandleServiceError(w, err, h.logger)
			return
		}
		scenario.Strategy = &strategy
	default:
		if strategy, ok := middleware.GetStrategyFromContext(ctx); ok {
			scenario.Strategy = &strategy
		}
	}

	if req.Providers != nil {
		scenario.Providers = make([]*models.ProviderCandidate, 0, len(req.Providers))
		for _, p := range req.Providers {
			scenario.Providers = append(scenario.Providers, p.toCandidate())
		}
	}

	h.logger.Debug("resolving scenario",
		zap.String("request_id", requestID),
		zap.Strings("content_categories", req.ContentCategories),
		zap.Bool("caller_providers", req.Providers != nil))

	result, err := h.service.ResolveScenario(ctx, scenario)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(result.Report))
		return
	}

	response := ResolveResponse{
		ResolveResult: result,
		Complete:      result.Complete(),
	}
	if req.IncludeReport {
		response.Report = result.Report
	}
	_ = utils.WriteOK(w, response)
}

// HandleListCategories handles GET /api/v1/categories
func (h *ResolverHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	known := requirements.KnownCategories()
	out := make([]CategoryResponse, 0, len(known))
	for _, c := range known {
		capability, _ := requirements.CapabilityFor(string(c))
		out = append(out, CategoryResponse{Category: c, Capability: capability})
	}
	_ = utils.WriteOK(w, out)
}

// HandleGetStats handles GET /api/v1/stats
func (h *ResolverHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.service.GetStats())
}

// HandleResetStats handles DELETE /api/v1/stats
func (h *ResolverHandler) HandleResetStats(w http.ResponseWriter, r *http.Request) {
	h.service.ResetStats()
	h.logger.Info("routing stats reset",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())))
	utils.WriteNoContent(w)
}

// HandleGetStrategy handles GET /api/v1/strategy
func (h *ResolverHandler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, StrategyResponse{
		Strategy:   h.service.GetStrategy(),
		Strategies: routing.Strategies(),
	})
}

// HandleSetStrategy handles PUT /api/v1/strategy
func (h *ResolverHandler) HandleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	strategy, err := routing.ParseStrategy(req.Strategy)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	previous := h.service.GetStrategy()
	h.service.SetStrategy(strategy)
	h.logger.Info("default strategy changed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("from", string(previous)),
		zap.String("to", string(strategy)))

	_ = utils.WriteOK(w, StrategyResponse{
		Strategy:   strategy,
		Strategies: routing.Strategies(),
	})
}

// toCandidate converts a caller-supplied candidate; candidates are active unless stated otherwise
func (c *CandidateRequest) toCandidate() *models.ProviderCandidate {
	active := true
	if c.Active != nil {
		active = *c.Active
	}
	return &models.ProviderCandidate{
		ID:           c.ID,
		Family:       c.ProviderType,
		ModelID:      c.ModelID,
		Capabilities: catalog.ParseCapabilitySet(c.Capabilities...),
		Active:       active,
	}
}
