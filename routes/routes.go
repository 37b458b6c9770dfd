package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upb/capability-resolver/app"
	"github.com/upb/capability-resolver/middleware"
	"github.com/upb/capability-resolver/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(deps.Middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.StrategyHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", deps.ResolverHandler.HandleListCategories)
		r.Post("/requirements", deps.ResolverHandler.HandleDeriveRequirements)

		r.With(deps.Middleware.ExtractStrategy).Post("/resolutions", deps.ResolverHandler.HandleResolve)

		r.Route("/strategy", func(r chi.Router) {
			r.Get("/", deps.ResolverHandler.HandleGetStrategy)
			r.Put("/", deps.ResolverHandler.HandleSetStrategy)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", deps.ResolverHandler.HandleGetStats)
			r.Delete("/", deps.ResolverHandler.HandleResetStats)
		})

		// Provider registry
		r.Route("/providers", func(r chi.Router) {
			r.Get("/", deps.ProviderHandler.HandleListProviders)
			r.Get("/{id}", deps.ProviderHandler.HandleGetProvider)
			r.Put("/{id}", deps.ProviderHandler.HandlePutProvider)
			r.Delete("/{id}", deps.ProviderHandler.HandleDeactivateProvider)
		})

		// Static catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/capabilities", deps.CatalogHandler.HandleListCapabilities)
			r.Get("/multimodal", deps.CatalogHandler.HandleMultimodalModels)
			r.Get("/providers", deps.CatalogHandler.HandleListFamilies)
			r.Route("/providers/{family}", func(r chi.Router) {
				r.Get("/", deps.CatalogHandler.HandleGetFamily)
				r.Get("/cheapest-text", deps.CatalogHandler.HandleCheapestTextModel)
				r.Get("/models", deps.CatalogHandler.HandleListModels)
				r.Get("/models/{model}", deps.CatalogHandler.HandleGetModel)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
