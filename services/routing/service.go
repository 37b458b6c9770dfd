package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/capability-resolver/internal/observability"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/requirements"
	"go.uber.org/zap"
)

// RoutingConfig holds configuration for the routing service
type RoutingConfig struct {
	// DefaultStrategy applies when a scenario does not name one
	DefaultStrategy Strategy

	// EnableFallbackWarnings logs a warning for every capability left unbound
	EnableFallbackWarnings bool
}

// DefaultRoutingConfig returns a sensible default configuration
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		DefaultStrategy:        StrategyMultimodal,
		EnableFallbackWarnings: true,
	}
}

// Scenario is one resolution request
type Scenario struct {
	Name              string
	ContentCategories []string

	// Strategy overrides the service default when set
	Strategy *Strategy

	// ProviderIDs restricts the candidate pool to these ids when non-empty
	ProviderIDs []int64

	// Providers supplies the candidate pool directly; nil reads the provider registry
	Providers []*models.ProviderCandidate
}

// ResolveResult is the outcome of a scenario resolution
type ResolveResult struct {
	ID           uuid.UUID                 `json:"id"`
	Scenario     string                    `json:"scenario,omitempty"`
	Strategy     Strategy                  `json:"strategy"`
	Requirements requirements.Requirements `json:"requirements"`
	Resolution   ResolutionMap             `json:"resolution"`
	Missing      []catalog.Capability      `json:"missing"`
	Report       string                    `json:"-"`
	ResolvedAt   time.Time                 `json:"resolved_at"`
}

// Complete reports whether every required capability was bound
func (r *ResolveResult) Complete() bool {
	return len(r.Missing) == 0
}

// RoutingStats summarises the resolutions served since the last reset
type RoutingStats struct {
	TotalResolutions int                        `json:"total_resolutions"`
	ByStrategy       map[Strategy]int           `json:"by_strategy"`
	Unresolved       map[catalog.Capability]int `json:"unresolved"`
	ProviderUsage    map[int64]int              `json:"provider_usage"`
	Since            time.Time                  `json:"since"`
}

// RoutingService resolves scenarios against the provider registry
type RoutingService struct {
	mu        sync.RWMutex
	config    RoutingConfig
	catalog   *catalog.Catalog
	providers repositories.ProviderRepository
	logger    *observability.ContextLogger
	metrics   observability.Metrics
	stats     RoutingStats
}

// NewRoutingService creates a new routing service
func NewRoutingService(config RoutingConfig, cat *catalog.Catalog, providers repositories.ProviderRepository, logger *zap.Logger) *RoutingService {
	if cat == nil {
		cat = catalog.Default()
	}
	return &RoutingService{
		config:    config,
		catalog:   cat,
		providers: providers,
		logger:    observability.NewContextLogger(logger),
		metrics:   observability.NopMetrics{},
		stats:     newStats(),
	}
}

// WithMetrics sets the metrics sink
func (s *RoutingService) WithMetrics(m observability.Metrics) *RoutingService {
	if m != nil {
		s.metrics = m
	}
	return s
}

func newStats() RoutingStats {
	return RoutingStats{
		ByStrategy:    make(map[Strategy]int),
		Unresolved:    make(map[catalog.Capability]int),
		ProviderUsage: make(map[int64]int),
		Since:         time.Now(),
	}
}

// ResolveScenario derives the scenario requirements and binds them to providers.
// Missing coverage is reported in the result; an error means the candidate pool
// could not be obtained or a caller-supplied pool repeats a provider id.
func (s *RoutingService) ResolveScenario(ctx context.Context, sc Scenario) (*ResolveResult, error) {
	start := time.Now()

	strategy := s.GetStrategy()
	if sc.Strategy != nil {
		strategy = *sc.Strategy
	}
	labels := observability.ResolutionLabels{Strategy: string(strategy)}

	if !strategy.IsValid() {
		s.logger.Warn(ctx, "unknown strategy, only the fallback pass will run",
			zap.String("strategy", string(strategy)))
	}

	if id, dup := models.DuplicateID(sc.Providers); dup {
		return nil, fmt.Errorf("%w: %d", services.ErrDuplicateProvider, id)
	}

	candidates, err := s.candidates(ctx, sc)
	if err != nil {
		labels.Status = observability.StatusFailed
		s.metrics.RecordResolution(ctx, labels)
		s.logger.Error(ctx, "failed to load provider candidates", zap.Error(err))
		return nil, err
	}

	reqs := requirements.Derive(sc.ContentCategories)
	resolution := ResolveRequirements(reqs, candidates, strategy)
	missing := resolution.Missing(reqs)

	result := &ResolveResult{
		ID:           uuid.New(),
		Scenario:     sc.Name,
		Strategy:     strategy,
		Requirements: reqs,
		Resolution:   resolution,
		Missing:      missing,
		Report:       FormatReport(reqs, resolution, s.catalog),
		ResolvedAt:   time.Now(),
	}

	labels.Status = observability.StatusComplete
	if !result.Complete() {
		labels.Status = observability.StatusPartial
	}
	s.record(ctx, result, labels)
	s.metrics.RecordLatency(ctx, time.Since(start).Seconds(), labels)

	s.logger.Info(ctx, "scenario resolved",
		zap.String("resolution_id", result.ID.String()),
		zap.String("scenario", sc.Name),
		zap.String("strategy", string(strategy)),
		zap.Int("candidates", len(candidates)),
		zap.Int("required", len(reqs)),
		zap.Int("resolved", len(resolution)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// candidates returns the provider pool for sc
func (s *RoutingService) candidates(ctx context.Context, sc Scenario) (map[int64]models.ProviderCandidate, error) {
	pool := sc.Providers
	if pool == nil {
		if s.providers == nil {
			return nil, services.ErrProviderStoreUnavailable
		}
		if err := ctx.Err(); err != nil {
			return nil, services.WrapUnavailable("resolution cancelled", err)
		}
		active, err := s.providers.ListActive(ctx)
		if err != nil {
			if services.GetErrorType(err) != "" {
				return nil, err
			}
			return nil, services.WrapUnavailable("failed to list active providers", err)
		}
		pool = active
	}

	candidates := models.ToCandidates(pool)
	if len(sc.ProviderIDs) == 0 {
		return candidates, nil
	}

	filtered := make(map[int64]models.ProviderCandidate, len(sc.ProviderIDs))
	for _, id := range sc.ProviderIDs {
		if c, ok := candidates[id]; ok {
			filtered[id] = c
		}
	}
	return filtered, nil
}

// record updates stats and metrics for a finished resolution
func (s *RoutingService) record(ctx context.Context, result *ResolveResult, labels observability.ResolutionLabels) {
	s.mu.Lock()
	s.stats.TotalResolutions++
	s.stats.ByStrategy[result.Strategy]++
	for _, c := range result.Missing {
		s.stats.Unresolved[c]++
	}
	seen := make(map[int64]bool, len(result.Resolution))
	for _, entry := range result.Resolution {
		if !seen[entry.ProviderID] {
			seen[entry.ProviderID] = true
			s.stats.ProviderUsage[entry.ProviderID]++
		}
	}
	warn := s.config.EnableFallbackWarnings
	s.mu.Unlock()

	s.metrics.RecordResolution(ctx, labels)
	for _, c := range result.Missing {
		s.metrics.RecordUnresolved(ctx, c.String(), labels)
		if warn {
			s.logger.Warn(ctx, "capability left unresolved",
				zap.String("resolution_id", result.ID.String()),
				zap.String("capability", c.String()),
				zap.Strings("categories", result.Requirements.Categories(c)))
		}
	}
}

// GetStats returns a snapshot of routing statistics
func (s *RoutingService) GetStats() RoutingStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := RoutingStats{
		TotalResolutions: s.stats.TotalResolutions,
		ByStrategy:       make(map[Strategy]int, len(s.stats.ByStrategy)),
		Unresolved:       make(map[catalog.Capability]int, len(s.stats.Unresolved)),
		ProviderUsage:    make(map[int64]int, len(s.stats.ProviderUsage)),
		Since:            s.stats.Since,
	}
	for k, v := range s.stats.ByStrategy {
		snapshot.ByStrategy[k] = v
	}
	for k, v := range s.stats.Unresolved {
		snapshot.Unresolved[k] = v
	}
	for k, v := range s.stats.ProviderUsage {
		snapshot.ProviderUsage[k] = v
	}
	return snapshot
}

// ResetStats resets all tracking statistics
func (s *RoutingService) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = newStats()
}

// SetStrategy updates the default strategy
func (s *RoutingService) SetStrategy(strategy Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.DefaultStrategy = strategy
}

// GetStrategy returns the current default strategy
func (s *RoutingService) GetStrategy() Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.DefaultStrategy
}

// Catalog returns the catalog used for reports
func (s *RoutingService) Catalog() *catalog.Catalog {
	return s.catalog
}
