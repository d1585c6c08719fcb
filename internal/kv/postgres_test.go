package kv

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestPostgres_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
			WithArgs(uuid.Nil, "rotinaai_settings_v2").
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`{"privacy":{"analytics":false}}`))

		v, ok, err := store.Get(ctx, "rotinaai_settings_v2")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"privacy":{"analytics":false}}`, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
			WithArgs(uuid.Nil, "nope").
			WillReturnError(pgx.ErrNoRows)

		_, ok, err := store.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("backend error", func(t *testing.T) {
		store, mock := newMockStore(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
			WithArgs(uuid.Nil, "k").
			WillReturnError(dbErr)

		_, ok, err := store.Get(ctx, "k")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
			WithArgs(uuid.Nil, "k", "v").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.Set(ctx, "k", "v"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		dbErr := errors.New("disk full")
		mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
			WithArgs(uuid.Nil, "k", "v").
			WillReturnError(dbErr)

		err := store.Set(ctx, "k", "v")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "upserting k")
	})
}

func TestPostgres_Remove(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(deleteValueSQL)).
		WithArgs(uuid.Nil, "k").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, store.Remove(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ForUserBindsOwner(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)
	userID := uuid.New()
	scoped := store.ForUser(userID)

	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
		WithArgs(userID, "rotinaai:settings:appearance:density", "compact").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
		WithArgs(userID, "rotinaai:settings:appearance:density").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("compact"))
	mock.ExpectExec(regexp.QuoteMeta(deleteValueSQL)).
		WithArgs(userID, "rotinaai:settings:appearance:density").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, scoped.Set(ctx, "rotinaai:settings:appearance:density", "compact"))
	v, ok, err := scoped.Get(ctx, "rotinaai:settings:appearance:density")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "compact", v)
	require.NoError(t, scoped.Remove(ctx, "rotinaai:settings:appearance:density"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
