package model

import (
	"database/sql"
	"time"
)

// APIKey is a dashboard-issued key. Only the bcrypt hash of the secret is stored.
type APIKey struct {
	ID         string       `json:"id" db:"id"`
	UserID     int          `json:"user_id" db:"user_id"`
	Name       string       `json:"name" db:"name"`
	SecretHash string       `json:"-" db:"secret_hash"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	LastUsedAt sql.NullTime `json:"-" db:"last_used_at"`
	RevokedAt  sql.NullTime `json:"-" db:"revoked_at"`
}

// Revoked reports whether the key has been revoked
func (k APIKey) Revoked() bool {
	return k.RevokedAt.Valid
}

// APIKeyCreateRequest is the payload for POST /api/keys
type APIKeyCreateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// APIKeyCreateResponse carries the plaintext key, shown exactly once
type APIKeyCreateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}
