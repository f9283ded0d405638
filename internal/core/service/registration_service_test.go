package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-api/internal/core/domain"
)

func newRegistration(store *stubCredentialStore, hasher *countingHasher) *RegistrationService {
	return NewRegistrationService(store, hasher, zerolog.Nop())
}

func TestRegistrationService_Register_HappyPath(t *testing.T) {
	store := newStubCredentialStore()
	hasher := newCountingHasher()
	svc := newRegistration(store, hasher)

	identity, err := svc.Register(context.Background(), "alice", "pw-alice", domain.RoleUser)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if identity.ID == "" {
		t.Error("expected an identity id to be assigned")
	}
	if identity.Role != domain.RoleUser {
		t.Errorf("expected role USER, got %s", identity.Role)
	}
	if string(identity.PasswordDigest) == "pw-alice" {
		t.Fatal("plaintext password stored as digest")
	}
	if !hasher.Verify("pw-alice", store.byName["alice"].PasswordDigest) {
		t.Error("stored digest does not verify the registered password")
	}
}

func TestRegistrationService_Register_DuplicateUsername(t *testing.T) {
	store := newStubCredentialStore()
	hasher := newCountingHasher()
	svc := newRegistration(store, hasher)

	if _, err := svc.Register(context.Background(), "alice", "first", domain.RoleAdmin); err != nil {
		t.Fatalf("first register: %v", err)
	}
	before := store.byName["alice"].PasswordDigest
	hashes := hasher.hashes.Load()

	_, err := svc.Register(context.Background(), "alice", "second", domain.RoleUser)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got: %v", err)
	}
	if hasher.hashes.Load() != hashes {
		t.Error("expected no hash computed for an existing username")
	}
	stored := store.byName["alice"]
	if string(stored.PasswordDigest) != string(before) || stored.Role != domain.RoleAdmin {
		t.Error("existing identity was modified by a rejected registration")
	}
}

func TestRegistrationService_Register_UsernameIsCaseSensitive(t *testing.T) {
	svc := newRegistration(newStubCredentialStore(), newCountingHasher())

	if _, err := svc.Register(context.Background(), "alice", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Alice", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register Alice: expected distinct identity, got: %v", err)
	}
}

func TestRegistrationService_Register_LostRaceAtSave(t *testing.T) {
	store := newStubCredentialStore()
	store.saveErr = domain.ErrUsernameTaken
	svc := newRegistration(store, newCountingHasher())

	_, err := svc.Register(context.Background(), "alice", "pw", domain.RoleUser)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got: %v", err)
	}
}

func TestRegistrationService_Register_ConcurrentSameUsername(t *testing.T) {
	store := newStubCredentialStore()
	svc := newRegistration(store, newCountingHasher())

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "race", "pw", domain.RoleUser)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrUsernameTaken):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly one success, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestRegistrationService_Register_RejectsInput(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		role     domain.Role
		wantRole bool
	}{
		{name: "empty username", username: "", password: "pw", role: domain.RoleUser},
		{name: "blank username", username: "   ", password: "pw", role: domain.RoleUser},
		{name: "empty password", username: "bob", password: "", role: domain.RoleUser},
		{name: "unknown role", username: "bob", password: "pw", role: "ROOT", wantRole: true},
		{name: "lowercase role", username: "bob", password: "pw", role: "admin", wantRole: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubCredentialStore()
			svc := newRegistration(store, newCountingHasher())

			_, err := svc.Register(context.Background(), tc.username, tc.password, tc.role)
			if tc.wantRole {
				if !errors.Is(err, domain.ErrInvalidRole) {
					t.Fatalf("expected ErrInvalidRole, got: %v", err)
				}
			} else {
				var verr *domain.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got: %v", err)
				}
			}
			if store.saves != 0 {
				t.Error("expected nothing saved")
			}
		})
	}
}

func TestRegistrationService_Register_StoreFailure(t *testing.T) {
	store := newStubCredentialStore()
	store.findErr = errors.New("connection refused")
	svc := newRegistration(store, newCountingHasher())

	_, err := svc.Register(context.Background(), "alice", "pw", domain.RoleUser)
	if err == nil || errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected wrapped store error, got: %v", err)
	}
}

func TestRegistrationService_BootstrapAdmin_Idempotent(t *testing.T) {
	store := newStubCredentialStore()
	svc := newRegistration(store, newCountingHasher())

	for i := 0; i < 2; i++ {
		if err := svc.BootstrapAdmin(context.Background(), "root", "root-pw"); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
	}
	if store.byName["root"].Role != domain.RoleAdmin {
		t.Errorf("expected bootstrap identity to be ADMIN")
	}
	if len(store.byName) != 1 {
		t.Errorf("expected one identity, got %d", len(store.byName))
	}
}

func TestRegistrationService_BootstrapAdmin_SkippedWhenUnset(t *testing.T) {
	store := newStubCredentialStore()
	svc := newRegistration(store, newCountingHasher())

	if err := svc.BootstrapAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.saves != 0 {
		t.Error("expected no identity saved")
	}
}
