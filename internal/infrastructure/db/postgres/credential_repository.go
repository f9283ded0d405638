package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/99minutos/product-api/internal/core/domain"
)

const (
	queryFindIdentity   = `SELECT id, username, password_digest, role, created_at FROM identities WHERE username = $1`
	queryInsertIdentity = `INSERT INTO identities (id, username, password_digest, role, created_at) VALUES ($1, $2, $3, $4, $5)`
)

// CredentialRepository stores identities in PostgreSQL. The UNIQUE constraint
// on username makes Save an atomic insert-if-absent.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		identity domain.Identity
		role     string
	)
	err := r.db.QueryRowContext(ctx, queryFindIdentity, username).
		Scan(&identity.ID, &identity.Username, &identity.PasswordDigest, &role, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	identity.Role = domain.Role(role)
	identity.CreatedAt = identity.CreatedAt.UTC()
	return &identity, nil
}

func (r *CredentialRepository) Save(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, queryInsertIdentity,
		identity.ID, identity.Username, identity.PasswordDigest, identity.Role.String(), identity.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return identity, nil
}
