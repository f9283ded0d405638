package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// Authenticator checks a username/password pair against the credential store.
//
// An unknown username and a wrong password both end in ErrInvalidCredentials,
// and both pay for one digest comparison: unknown usernames are checked
// against a throwaway digest computed at construction.
type Authenticator struct {
	store       ports.CredentialStore
	hasher      ports.PasswordHasher
	dummyDigest []byte
}

func NewAuthenticator(store ports.CredentialStore, hasher ports.PasswordHasher) (*Authenticator, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("authenticator: build dummy digest: %w", err)
	}
	return &Authenticator{store: store, hasher: hasher, dummyDigest: dummy}, nil
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	identity, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			a.hasher.Verify(password, a.dummyDigest)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !a.hasher.Verify(password, identity.PasswordDigest) {
		return nil, domain.ErrInvalidCredentials
	}
	return identity, nil
}
