package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"audit-portal-go/pkg/model"
)

// Store persists audit orders
type Store interface {
	Create(ctx context.Context, order *model.AuditOrder) error
	GetByAuditID(ctx context.Context, auditID string) (*model.AuditOrder, error)
	ListByUser(ctx context.Context, userID int, limit int) ([]model.AuditOrder, error)
	// UpdateStage moves an order from stage from to stage to. It returns
	// ErrInvalidTransition when the stored stage is no longer from.
	UpdateStage(ctx context.Context, auditID string, from, to model.AuditStage, message string) error
}

// PostgresStore stores audit orders in the audit_orders table
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new audit order store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new order and fills in its generated fields
func (s *PostgresStore) Create(ctx context.Context, order *model.AuditOrder) error {
	err := s.db.QueryRowxContext(ctx, `
        INSERT INTO audit_orders (audit_id, user_id, target_url, region, stage, message, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `, order.AuditID, order.UserID, order.TargetURL, order.Region, order.Stage, order.Message).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit order: %w", err)
	}
	return nil
}

// GetByAuditID retrieves an order by the scanning backend's audit ID
func (s *PostgresStore) GetByAuditID(ctx context.Context, auditID string) (*model.AuditOrder, error) {
	var order model.AuditOrder
	err := s.db.GetContext(ctx, &order, `
        SELECT id, audit_id, user_id, target_url, region, stage, message, created_at, updated_at
        FROM audit_orders
        WHERE audit_id = $1
    `, auditID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit order: %w", err)
	}
	return &order, nil
}

// ListByUser returns a user's most recent orders
func (s *PostgresStore) ListByUser(ctx context.Context, userID int, limit int) ([]model.AuditOrder, error) {
	orders := []model.AuditOrder{}
	err := s.db.SelectContext(ctx, &orders, `
        SELECT id, audit_id, user_id, target_url, region, stage, message, created_at, updated_at
        FROM audit_orders
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit orders: %w", err)
	}
	return orders, nil
}

// UpdateStage records a pipeline stage change, only if the stored stage
// still equals from
func (s *PostgresStore) UpdateStage(ctx context.Context, auditID string, from, to model.AuditStage, message string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE audit_orders
        SET stage = $1, message = $2, updated_at = NOW()
        WHERE audit_id = $3 AND stage = $4
    `, to, message, auditID, from)
	if err != nil {
		return fmt.Errorf("failed to update audit order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update audit order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: stage is no longer %s", ErrInvalidTransition, from)
	}
	return nil
}
