package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"go.uber.org/zap"
)

// ProviderRepository implements the repositories.ProviderRepository interface
type ProviderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *DB, logger *zap.Logger) repositories.ProviderRepository {
	return &ProviderRepository{
		db:     db,
		logger: logger,
	}
}

const providerColumns = `id, provider_type, model_id, capabilities, active, created_at, updated_at`

// ListActive retrieves every active provider ordered by id
func (r *ProviderRepository) ListActive(ctx context.Context) ([]*models.ProviderCandidate, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM analysis_providers
		WHERE active = true
		ORDER BY id ASC
	`

	executor := querierFor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, services.WrapUnavailable("failed to list active providers", err)
	}
	defer rows.Close()

	providers := []*models.ProviderCandidate{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan provider: %w", services.ErrDatabaseError, err)
		}
		providers = append(providers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapUnavailable("error iterating provider rows", err)
	}

	return providers, nil
}

// GetByID retrieves a provider by id
func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*models.ProviderCandidate, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM analysis_providers
		WHERE id = $1
	`

	executor := querierFor(ctx, r.db)
	p, err := scanProvider(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", services.ErrProviderNotFound, id)
		}
		return nil, services.WrapUnavailable("failed to get provider", err)
	}

	return p, nil
}

// Upsert inserts a provider or replaces the one with the same id
func (r *ProviderRepository) Upsert(ctx context.Context, provider *models.ProviderCandidate) error {
	query := `
		INSERT INTO analysis_providers (id, provider_type, model_id, capabilities, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET provider_type = EXCLUDED.provider_type,
		    model_id = EXCLUDED.model_id,
		    capabilities = EXCLUDED.capabilities,
		    active = EXCLUDED.active,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = now
	}
	provider.UpdatedAt = now

	executor := querierFor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		provider.ID,
		provider.Family,
		provider.ModelID,
		pq.Array(provider.Capabilities.Strings()),
		provider.Active,
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		return services.WrapUnavailable("failed to upsert provider", err)
	}

	r.logger.Debug("provider upserted",
		zap.Int64("id", provider.ID),
		zap.String("provider_type", provider.Family),
		zap.String("model_id", provider.ModelID))
	return nil
}

// Deactivate marks a provider inactive
func (r *ProviderRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE analysis_providers
		SET active = false,
		    updated_at = $2
		WHERE id = $1
	`

	executor := querierFor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return services.WrapUnavailable("failed to deactivate provider", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", services.ErrDatabaseError, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", services.ErrProviderNotFound, id)
	}

	r.logger.Debug("provider deactivated", zap.Int64("id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*models.ProviderCandidate, error) {
	p := &models.ProviderCandidate{}
	var capabilities []string
	if err := row.Scan(
		&p.ID,
		&p.Family,
		&p.ModelID,
		pq.Array(&capabilities),
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Capabilities = catalog.ParseCapabilitySet(capabilities...)
	return p, nil
}
