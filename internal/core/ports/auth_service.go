package ports

import (
	"context"
	"time"

	"github.com/99minutos/product-api/internal/core/domain"
)

// LoginResult is returned to the caller after a successful login.
type LoginResult struct {
	Token     string
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, password string, role domain.Role) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Verify(token string) (*domain.Claims, error)
}

// LoginThrottle limits login attempts per username.
type LoginThrottle interface {
	// Allow reserves one attempt for username before the password is checked
	// and reports whether it is within the limit.
	Allow(ctx context.Context, username string) (bool, error)
	// Reset clears the attempts of username after a successful login.
	Reset(ctx context.Context, username string) error
}
