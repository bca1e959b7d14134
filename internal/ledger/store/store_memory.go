package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// InMemoryStore keeps ledger entries in a map. Writes come only from the
// engine, which serializes them per partner; reads may observe a snapshot
// that is about to change, which is acceptable for display.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]ledger.Transaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[uuid.UUID]ledger.Transaction)}
}

func (s *InMemoryStore) Append(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tx.ID] = tx
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.entries[id]
	if !ok {
		return ledger.Transaction{}, sentinel.ErrNotFound
	}
	return tx, nil
}

func (s *InMemoryStore) Update(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[tx.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.entries[tx.ID] = tx
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Transaction, 0, len(s.entries))
	for _, tx := range s.entries {
		out = append(out, tx)
	}
	sortByDateDesc(out)
	return out, nil
}

func (s *InMemoryStore) ListForPartner(_ context.Context, partnerID uuid.UUID, from, to *time.Time) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Transaction
	for _, tx := range s.entries {
		if tx.PartnerID != partnerID {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && tx.Date.After(*to) {
			continue
		}
		out = append(out, tx)
	}
	sortByDateDesc(out)
	return out, nil
}

func sortByDateDesc(txs []ledger.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
