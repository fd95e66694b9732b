package apikey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"audit-portal-go/pkg/model"
)

// PostgresStore stores API keys in the api_keys table
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new API key store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, key *model.APIKey) error {
	err := s.db.QueryRowxContext(ctx, `
        INSERT INTO api_keys (id, user_id, name, secret_hash, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING created_at
    `, key.ID, key.UserID, key.Name, key.SecretHash).Scan(&key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.APIKey, error) {
	var key model.APIKey
	err := s.db.GetContext(ctx, &key, `
        SELECT id, user_id, name, secret_hash, created_at, last_used_at, revoked_at
        FROM api_keys
        WHERE id = $1
    `, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	return &key, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int) ([]model.APIKey, error) {
	keys := []model.APIKey{}
	err := s.db.SelectContext(ctx, &keys, `
        SELECT id, user_id, name, secret_hash, created_at, last_used_at, revoked_at
        FROM api_keys
        WHERE user_id = $1 AND revoked_at IS NULL
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

func (s *PostgresStore) CountActive(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND revoked_at IS NULL", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count API keys: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE api_keys SET revoked_at = NOW()
        WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL
    `, id, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TouchLastUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", id)
	return err
}
