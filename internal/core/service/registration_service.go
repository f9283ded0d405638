package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// RegistrationService creates identities. Uniqueness of the username is
// ultimately enforced by the store's insert-if-absent Save; the lookup in
// Register only short-circuits the expensive hash for obvious duplicates.
type RegistrationService struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewRegistrationService(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{store: store, hasher: hasher, log: log, now: time.Now}
}

func (s *RegistrationService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.Identity, error) {
	var violations []domain.Violation
	if strings.TrimSpace(username) == "" {
		violations = append(violations, domain.Violation{Field: "username", Message: "The username is required."})
	}
	if password == "" {
		violations = append(violations, domain.Violation{Field: "password", Message: "The password is required."})
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("register: %w: %q", domain.ErrInvalidRole, role)
	}

	_, err := s.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrIdentityNotFound):
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	identity := &domain.Identity{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordDigest: digest,
		Role:           role,
		CreatedAt:      s.now().UTC(),
	}

	saved, err := s.store.Save(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("register: save identity: %w", err)
	}

	s.log.Info().Str("username", saved.Username).Str("role", saved.Role.String()).Msg("identity registered")
	return saved, nil
}

// BootstrapAdmin registers an ADMIN identity when none exists under username.
// Running it again against a populated store is a no-op.
func (s *RegistrationService) BootstrapAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.Register(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUsernameTaken) {
		s.log.Debug().Str("username", username).Msg("bootstrap admin already present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}
