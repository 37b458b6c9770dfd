package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"go.uber.org/zap"
)

var providerCols = []string{"id", "provider_type", "model_id", "capabilities", "active", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*ProviderRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewProviderRepository(WrapDB(db, zap.NewNop()), zap.NewNop()).(*ProviderRepository)
	return repo, mock, func() { db.Close() }
}

func TestProviderRepository_ListActive(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("returns active providers with parsed capabilities", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers WHERE active = true ORDER BY id ASC").
			WillReturnRows(sqlmock.NewRows(providerCols).
				AddRow(int64(1), "openai", "gpt-4o-mini", "{text,image}", true, now, now).
				AddRow(int64(2), "google", "gemini-1.5-pro", "{text,image,video,audio,smell}", true, now, now))

		got, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, "openai", got[0].Family)
		assert.Equal(t, []catalog.Capability{catalog.CapabilityText, catalog.CapabilityImage}, got[0].Capabilities.Sorted())
		assert.Equal(t, 4, got[1].Capabilities.Len())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers").
			WillReturnRows(sqlmock.NewRows(providerCols))

		got, err := repo.ListActive(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query failure is reported as unavailable", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers").
			WillReturnError(sql.ErrConnDone)

		_, err := repo.ListActive(ctx)
		require.Error(t, err)
		assert.True(t, services.IsUnavailableError(err))
		assert.True(t, errors.Is(err, sql.ErrConnDone))
	})

	t.Run("malformed row is a database error", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers").
			WillReturnRows(sqlmock.NewRows(providerCols).
				AddRow("not-an-id", "openai", "gpt-4o-mini", "{text}", true, now, now))

		_, err := repo.ListActive(ctx)
		require.Error(t, err)
		assert.True(t, services.IsInternalError(err))
		assert.ErrorIs(t, err, services.ErrDatabaseError)
		assert.Contains(t, err.Error(), "failed to scan provider")
	})
}

func TestProviderRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(providerCols).
				AddRow(int64(3), "openai", "whisper-1", "{audio}", false, now, now))

		got, err := repo.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "whisper-1", got.ModelID)
		assert.False(t, got.Active)
		assert.True(t, got.Capabilities.Has(catalog.CapabilityAudio))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery("SELECT (.+) FROM analysis_providers WHERE id = \\$1").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(providerCols))

		_, err := repo.GetByID(ctx, 99)
		require.Error(t, err)
		assert.True(t, services.IsNotFoundError(err))
	})
}

func TestProviderRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("writes capabilities as a text array", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		p := models.NewProviderCandidate(4, "mistral", "pixtral-large", catalog.CapabilityImage, catalog.CapabilityText)

		mock.ExpectExec("INSERT INTO analysis_providers (.+) ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs(int64(4), "mistral", "pixtral-large", `{"text","image"}`, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(ctx, p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sets timestamps when missing", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		p := &models.ProviderCandidate{ID: 5, Family: "ollama", ModelID: "llava", Active: true}

		mock.ExpectExec("INSERT INTO analysis_providers").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(ctx, p))
		assert.False(t, p.CreatedAt.IsZero())
		assert.False(t, p.UpdatedAt.IsZero())
	})

	t.Run("exec failure", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectExec("INSERT INTO analysis_providers").
			WillReturnError(sql.ErrConnDone)

		err := repo.Upsert(ctx, models.NewProviderCandidate(6, "openai", "gpt-4o"))
		assert.True(t, services.IsUnavailableError(err))
	})
}

func TestProviderRepository_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectExec("UPDATE analysis_providers SET active = false").
			WithArgs(int64(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Deactivate(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectExec("UPDATE analysis_providers SET active = false").
			WithArgs(int64(42), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Deactivate(ctx, 42)
		require.Error(t, err)
		assert.True(t, services.IsNotFoundError(err))
	})

	t.Run("rows affected failure is a database error", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		driverErr := errors.New("driver does not report affected rows")
		mock.ExpectExec("UPDATE analysis_providers SET active = false").
			WithArgs(int64(3), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewErrorResult(driverErr))

		err := repo.Deactivate(ctx, 3)
		require.Error(t, err)
		assert.True(t, services.IsInternalError(err))
		assert.ErrorIs(t, err, services.ErrDatabaseError)
		assert.ErrorIs(t, err, driverErr)
	})
}

func TestRepositoryFactory_SeedProviders(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when every upsert succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		factory := NewRepositoryFactoryFromDB(WrapDB(db, zap.NewNop()), zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO analysis_providers").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO analysis_providers").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = factory.SeedProviders(ctx, []*models.ProviderCandidate{
			models.NewProviderCandidate(1, "openai", "gpt-4o", catalog.CapabilityText),
			models.NewProviderCandidate(2, "google", "gemini-1.5-pro", catalog.CapabilityVideo),
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		factory := NewRepositoryFactoryFromDB(WrapDB(db, zap.NewNop()), zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO analysis_providers").WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err = factory.SeedProviders(ctx, []*models.ProviderCandidate{
			models.NewProviderCandidate(1, "openai", "gpt-4o", catalog.CapabilityText),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed provider 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDB_HealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, WrapDB(db, zap.NewNop()).HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
