package ports

import (
	"context"

	"github.com/99minutos/product-api/internal/core/domain"
)

// CredentialStore owns the persisted identities.
//
// FindByUsername returns domain.ErrIdentityNotFound when no identity matches.
// Save is insert-if-absent keyed on the username: when the username already
// exists it returns domain.ErrUsernameTaken and leaves the stored identity
// untouched. Implementations must enforce this atomically, concurrent saves of
// the same username yield exactly one success.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	Save(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
