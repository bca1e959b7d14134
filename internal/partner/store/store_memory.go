package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// InMemoryStore keeps partners in a map. It is the early-iteration store;
// atomicity of balance mutations is provided by the engine's sharded locks,
// not here.
type InMemoryStore struct {
	mu       sync.RWMutex
	partners map[uuid.UUID]partner.Partner
	byCoupon map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		partners: make(map[uuid.UUID]partner.Partner),
		byCoupon: make(map[string]uuid.UUID),
	}
}

// Save upserts a partner. Inserting a coupon owned by another partner fails
// with sentinel.ErrConflict.
func (s *InMemoryStore) Save(_ context.Context, p *partner.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byCoupon[p.Coupon]; ok && owner != p.ID {
		return sentinel.ErrConflict
	}
	if prev, ok := s.partners[p.ID]; ok && prev.Coupon != p.Coupon {
		delete(s.byCoupon, prev.Coupon)
	}
	s.partners[p.ID] = *p
	s.byCoupon[p.Coupon] = p.ID
	return nil
}

func (s *InMemoryStore) FindByCoupon(_ context.Context, coupon string) (*partner.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCoupon[coupon]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p := s.partners[id]
	return &p, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*partner.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partners[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*partner.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*partner.Partner, 0, len(s.partners))
	for id := range s.partners {
		p := s.partners[id]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
