// Package memory provides process-local stores for development and tests.
// Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// CredentialStore keeps identities in a sync.Map keyed by username.
type CredentialStore struct {
	byUsername sync.Map
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	v, ok := s.byUsername.Load(username)
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(v.(*domain.Identity)), nil
}

// Save stores identity unless its username is already present.
func (s *CredentialStore) Save(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if _, loaded := s.byUsername.LoadOrStore(identity.Username, cloneIdentity(identity)); loaded {
		return nil, domain.ErrUsernameTaken
	}
	return identity, nil
}

func cloneIdentity(in *domain.Identity) *domain.Identity {
	out := *in
	out.PasswordDigest = append([]byte(nil), in.PasswordDigest...)
	return &out
}

// ProductStore keeps products in a map guarded by a RWMutex.
type ProductStore struct {
	mu   sync.RWMutex
	byID map[string]domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{byID: make(map[string]domain.Product)}
}

func (s *ProductStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = *p
	return nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *ProductStore) List(_ context.Context, f ports.ListProductsFilter) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(f.Name)
	out := make([]*domain.Product, 0, len(s.byID))
	for _, p := range s.byID {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *ProductStore) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.byID, id)
	return nil
}

// AuditStore appends auth events to a slice.
type AuditStore struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

// Events returns a copy of every recorded event in insertion order.
func (s *AuditStore) Events() []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuthEvent(nil), s.events...)
}
