// Package memory holds the in-process provider registry used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ProviderRepository is a mutex-guarded, map-backed provider registry
type ProviderRepository struct {
	mu        sync.RWMutex
	providers map[int64]*models.ProviderCandidate
	logger    *zap.Logger
}

// NewProviderRepository creates an empty registry
func NewProviderRepository(logger *zap.Logger) *ProviderRepository {
	return &ProviderRepository{
		providers: make(map[int64]*models.ProviderCandidate),
		logger:    logger,
	}
}

var _ repositories.ProviderRepository = (*ProviderRepository)(nil)

// ListActive returns copies of every active provider ordered by id
func (r *ProviderRepository) ListActive(ctx context.Context) ([]*models.ProviderCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.ProviderCandidate{}
	for _, p := range r.providers {
		if p.Active {
			out = append(out, copyProvider(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns a copy of the provider with the given id
func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*models.ProviderCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", services.ErrProviderNotFound, id)
	}
	return copyProvider(p), nil
}

// Upsert stores a copy of provider
func (r *ProviderRepository) Upsert(ctx context.Context, provider *models.ProviderCandidate) error {
	if err := utils.ValidateStruct(provider); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation, err.Error(), services.ErrInvalidInput)
	}

	stored := copyProvider(provider)

	r.mu.Lock()
	now := time.Now()
	if existing, ok := r.providers[stored.ID]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.providers[stored.ID] = stored
	r.mu.Unlock()

	r.logger.Debug("provider upserted",
		zap.Int64("id", stored.ID),
		zap.String("provider_type", stored.Family),
		zap.String("model_id", stored.ModelID))
	return nil
}

// Deactivate marks a provider inactive
func (r *ProviderRepository) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return fmt.Errorf("%w: %d", services.ErrProviderNotFound, id)
	}
	p.Active = false
	p.UpdatedAt = time.Now()

	r.logger.Debug("provider deactivated", zap.Int64("id", id))
	return nil
}

func copyProvider(p *models.ProviderCandidate) *models.ProviderCandidate {
	c := *p
	c.Capabilities = p.Capabilities.Clone()
	return &c
}

// ParseProviders decodes a YAML (or JSON) provider list.
// Entries without an explicit active flag are treated as active.
func ParseProviders(data []byte) ([]*models.ProviderCandidate, error) {
	var raw struct {
		Providers []yaml.Node `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}

	providers := make([]*models.ProviderCandidate, 0, len(raw.Providers))
	seen := make(map[int64]int, len(raw.Providers))
	for i := range raw.Providers {
		p := &models.ProviderCandidate{Active: true}
		if err := raw.Providers[i].Decode(p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		if err := utils.ValidateStruct(p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		if first, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("provider[%d]: %w: %d already used by provider[%d]", i, services.ErrDuplicateProvider, p.ID, first)
		}
		seen[p.ID] = i
		providers = append(providers, p)
	}
	return providers, nil
}

// LoadFile reads a provider seed file
func LoadFile(path string) ([]*models.ProviderCandidate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	return ParseProviders(b)
}

// Seed upserts every provider into the registry
func (r *ProviderRepository) Seed(ctx context.Context, providers []*models.ProviderCandidate) error {
	for _, p := range providers {
		if err := r.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seed provider %d: %w", p.ID, err)
		}
	}
	r.logger.Info("provider registry seeded", zap.Int("count", len(providers)))
	return nil
}
