package postgres

import (
	"context"
	"fmt"

	"github.com/upb/capability-resolver/config"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory opens the database described by cfg
func NewRepositoryFactory(cfg config.DatabaseConfig, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewRepositoryFactoryFromDB(db, logger), nil
}

// NewRepositoryFactoryFromDB builds a factory around an existing pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Providers: NewProviderRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// SeedProviders upserts providers in a single transaction
func (f *RepositoryFactory) SeedProviders(ctx context.Context, providers []*models.ProviderCandidate) error {
	repo := NewProviderRepository(f.db, f.logger)
	err := f.GetTransactionManager().InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		for _, p := range providers {
			if err := repo.Upsert(ctx, p); err != nil {
				return fmt.Errorf("seed provider %d: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	f.logger.Info("provider registry seeded", zap.Int("count", len(providers)))
	return nil
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
