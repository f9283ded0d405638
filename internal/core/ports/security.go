package ports

import (
	"time"

	"github.com/99minutos/product-api/internal/core/domain"
)

// PasswordHasher produces and checks one-way salted digests.
type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches digest. A malformed digest is
	// reported as a mismatch.
	Verify(plaintext string, digest []byte) bool
}

// IssuedToken is a signed bearer token and its expiry instant.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs session tokens for authenticated identities.
type TokenIssuer interface {
	Issue(identity *domain.Identity) (IssuedToken, error)
}

// TokenVerifier checks a bearer token and returns its claims. It fails with
// domain.ErrInvalidToken or domain.ErrTokenExpired.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
