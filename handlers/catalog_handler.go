package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
)

// CheapestModelResponse is the cheapest text model of a family
type CheapestModelResponse struct {
	Family string                  `json:"family"`
	Model  catalog.ModelDescriptor `json:"model"`
}

// CatalogHandler exposes read-only catalog queries
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(cat *catalog.Catalog, logger *zap.Logger) *CatalogHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &CatalogHandler{
		catalog: cat,
		logger:  logger,
	}
}

// HandleListFamilies handles GET /api/v1/catalog/providers
func (h *CatalogHandler) HandleListFamilies(w http.ResponseWriter, r *http.Request) {
	families := h.catalog.Families()
	out := make([]catalog.ProviderConfig, 0, len(families))
	for _, family := range families {
		out = append(out, h.catalog.ProviderConfig(family))
	}
	_ = utils.WriteOK(w, out)
}

// HandleGetFamily handles GET /api/v1/catalog/providers/{family}.
// Unknown families answer with the custom entry.
func (h *CatalogHandler) HandleGetFamily(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.catalog.ProviderConfig(chi.URLParam(r, "family")))
}

// HandleListModels handles GET /api/v1/catalog/providers/{family}/models.
// The optional capability query parameter filters to model ids supporting it.
func (h *CatalogHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")

	if capability := r.URL.Query().Get("capability"); capability != "" {
		if _, ok := catalog.ParseCapability(capability); !ok {
			err := services.ErrInvalidCapability.
				WithDetail("capability", capability).
				WithDetail("allowed", catalog.AllCapabilities())
			HandleServiceError(w, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, h.catalog.ModelsByCapabilityName(family, capability))
		return
	}

	models := h.catalog.AvailableModels(family)
	out := make([]catalog.ModelDescriptor, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	_ = utils.WriteOK(w, out)
}

// HandleGetModel handles GET /api/v1/catalog/providers/{family}/models/{model}
func (h *CatalogHandler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	modelID := chi.URLParam(r, "model")

	model, ok := h.catalog.ModelInfo(family, modelID)
	if !ok {
		HandleServiceError(w, fmt.Errorf("%w: %s/%s", services.ErrModelNotFound, family, modelID), h.logger)
		return
	}
	_ = utils.WriteOK(w, model)
}

// HandleCheapestTextModel handles GET /api/v1/catalog/providers/{family}/cheapest-text
func (h *CatalogHandler) HandleCheapestTextModel(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")

	modelID, ok := h.catalog.CheapestModelForText(family)
	if !ok {
		HandleServiceError(w, fmt.Errorf("%w: no text model for %s", services.ErrModelNotFound, family), h.logger)
		return
	}
	model, _ := h.catalog.ModelInfo(family, modelID)
	_ = utils.WriteOK(w, CheapestModelResponse{
		Family: h.catalog.ProviderConfig(family).Family,
		Model:  model,
	})
}

// HandleMultimodalModels handles GET /api/v1/catalog/multimodal
func (h *CatalogHandler) HandleMultimodalModels(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.catalog.MultimodalModels())
}

// HandleListCapabilities handles GET /api/v1/catalog/capabilities
func (h *CatalogHandler) HandleListCapabilities(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, catalog.AllCapabilities())
}
