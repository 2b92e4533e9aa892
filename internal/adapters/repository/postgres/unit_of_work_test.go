package postgres_test

import (
	"context"
	"quipt/internal/adapters/repository/postgres"
	"quipt/internal/core/domain"
	"quipt/internal/core/port"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlUnitOfWork_Execute(t *testing.T) {

	//Arrange
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	uow := postgres.NewUnitOfWork(dbConnection)
	registry := postgres.NewSQLHashRegistry(dbConnection)
	source := contentHash("source")
	rendition := contentHash("rendition")

	t.Run("Should commit when no error", func(t *testing.T) {
		defer truncate()
		_, _, err := registry.CreateIfAbsent(ctx, source, "id-1", "user-1")
		require.NoError(t, err)

		//act
		err = uow.Execute(ctx, func(u port.UnitOfWork) error {
			if _, err := u.HashRegistry().RecordDerivative(ctx, rendition, "id-1", "user-1"); err != nil {
				return err
			}
			return u.HashRegistry().MarkProcessed(ctx, source, "id-1")
		})

		//assert
		require.NoError(t, err)
		record, err := registry.Get(ctx, source)
		require.NoError(t, err)
		assert.True(t, record.Processed())
		_, err = registry.Get(ctx, rendition)
		require.NoError(t, err)
	})

	t.Run("Should rollback when error occurs", func(t *testing.T) {
		defer truncate()
		_, _, err := registry.CreateIfAbsent(ctx, source, "id-1", "user-1")
		require.NoError(t, err)

		//act
		err = uow.Execute(ctx, func(u port.UnitOfWork) error {
			_, _ = u.HashRegistry().RecordDerivative(ctx, rendition, "id-1", "user-1")
			return assert.AnError
		})

		//assert
		require.ErrorIs(t, err, assert.AnError)
		_, err = registry.Get(ctx, rendition)
		require.ErrorIs(t, err, domain.ErrHashNotFound)
		record, err := registry.Get(ctx, source)
		require.NoError(t, err)
		assert.True(t, record.UploadPending())
	})
}
