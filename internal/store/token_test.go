package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shoplite/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO tokens").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	repo := NewTokenRepository(db)
	token, err := repo.Create(context.Background(), types.Token{UserID: 1, SecretHash: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 5, token.ID)
	assert.False(t, token.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, secret_hash, created_at").
		WithArgs(7).
		WillReturnError(sql.ErrNoRows)

	repo := NewTokenRepository(db)
	_, err = repo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM tokens").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenRepository(db)
	err = repo.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
