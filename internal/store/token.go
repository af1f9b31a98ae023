package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shoplite/apiserver/types"
)

// TokenRepository handles persistence for bearer tokens.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Get(ctx context.Context, id int) (types.Token, error) {
	const query = `
		SELECT id, user_id, secret_hash, created_at
		FROM tokens
		WHERE id = $1`
	var token types.Token
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.SecretHash,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Token{}, ErrNotFound
		}
		return types.Token{}, err
	}
	return token, nil
}

func (r *TokenRepository) Create(ctx context.Context, token types.Token) (types.Token, error) {
	token.CreatedAt = time.Now()

	const query = `
		INSERT INTO tokens (user_id, secret_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		token.UserID,
		token.SecretHash,
		token.CreatedAt,
	).Scan(&token.ID); err != nil {
		return types.Token{}, err
	}
	return token, nil
}

func (r *TokenRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM tokens WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
