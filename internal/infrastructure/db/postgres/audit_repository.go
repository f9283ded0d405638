package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/99minutos/product-api/internal/core/domain"
)

const queryInsertAuthEvent = `INSERT INTO auth_events (type, username, role, occurred_at) VALUES ($1, $2, $3, $4)`

// AuditRepository appends authentication events to auth_events.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, e *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, queryInsertAuthEvent, string(e.Type), e.Username, e.Role.String(), e.OccurredAt); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
