package repositories

import (
	"context"

	"github.com/upb/capability-resolver/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// ProviderRepository is the registry of analysis providers the resolver chooses from
type ProviderRepository interface {
	// ListActive retrieves every active provider ordered by id
	ListActive(ctx context.Context) ([]*models.ProviderCandidate, error)

	// GetByID retrieves a provider by id
	GetByID(ctx context.Context, id int64) (*models.ProviderCandidate, error)

	// Upsert inserts a provider or replaces the one with the same id
	Upsert(ctx context.Context, provider *models.ProviderCandidate) error

	// Deactivate marks a provider inactive so it is no longer offered as a candidate
	Deactivate(ctx context.Context, id int64) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Providers ProviderRepository
}
