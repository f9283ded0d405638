package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Credential store
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	mu      sync.Mutex
	byName  map[string]*domain.Identity
	findErr error
	saveErr error
	saves   int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{byName: make(map[string]*domain.Identity)}
}

func (s *stubCredentialStore) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	id, ok := s.byName[username]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *id
	return &clone, nil
}

func (s *stubCredentialStore) Save(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if _, ok := s.byName[identity.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	clone := *identity
	s.byName[identity.Username] = &clone
	return identity, nil
}

// ---------------------------------------------------------------------------
// Hasher that counts comparisons
// ---------------------------------------------------------------------------

type countingHasher struct {
	inner    ports.PasswordHasher
	hashes   atomic.Int32
	verifies atomic.Int32
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: NewBcryptHasher(4)}
}

func (h *countingHasher) Hash(plaintext string) ([]byte, error) {
	h.hashes.Add(1)
	return h.inner.Hash(plaintext)
}

func (h *countingHasher) Verify(plaintext string, digest []byte) bool {
	h.verifies.Add(1)
	return h.inner.Verify(plaintext, digest)
}

// ---------------------------------------------------------------------------
// Throttle and audit
// ---------------------------------------------------------------------------

type stubThrottle struct {
	mu       sync.Mutex
	allowed  bool
	allowErr error
	limit    int // when positive, Allow admits the first limit attempts per username
	attempts map[string]int
	resets   []string
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{allowed: true, attempts: make(map[string]int)}
}

func (t *stubThrottle) Allow(_ context.Context, username string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[username]++
	if t.allowErr != nil {
		return false, t.allowErr
	}
	if t.limit > 0 {
		return t.attempts[username] <= t.limit, nil
	}
	return t.allowed, nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resets = append(t.resets, username)
	delete(t.attempts, username)
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.AuthEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Product repository
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	byID      map[string]*domain.Product
	createErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

// List applies the same filters the real repositories use.
func (r *stubProductRepo) List(_ context.Context, f ports.ListProductsFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.byID {
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}
