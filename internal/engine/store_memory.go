package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	ledgerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger/store"
	partnerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/partner/store"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// Mutations for the same partner are serialized by sharded mutexes keyed on
// the partner ID. 128 shards keep contention low without a lock per partner.
const numShards = 128

// rewriteAttempts bounds the re-read loop when a transaction's partner is
// being reassigned concurrently.
const rewriteAttempts = 3

// InMemoryStore applies balance mutations against the in-memory partner and
// ledger stores. It is the early-iteration backend; the stored-procedure
// Postgres store replaces it in production.
type InMemoryStore struct {
	shards   [numShards]sync.Mutex
	partners *partnerstore.InMemoryStore
	entries  *ledgerstore.InMemoryStore
}

func NewInMemoryStore(partners *partnerstore.InMemoryStore, entries *ledgerstore.InMemoryStore) *InMemoryStore {
	return &InMemoryStore{partners: partners, entries: entries}
}

func (s *InMemoryStore) ApplySale(ctx context.Context, tx ledger.Transaction) error {
	unlock := s.lock(tx.PartnerID)
	defer unlock()

	p, err := s.partners.FindByID(ctx, tx.PartnerID)
	if err != nil {
		return err
	}
	p.Points = Round2(p.Points.Add(tx.Amount))
	if err := s.partners.Save(ctx, p); err != nil {
		return err
	}
	return s.entries.Append(ctx, tx)
}

func (s *InMemoryStore) ApplyRedemption(ctx context.Context, tx ledger.Transaction) error {
	unlock := s.lock(tx.PartnerID)
	defer unlock()

	p, err := s.partners.FindByID(ctx, tx.PartnerID)
	if err != nil {
		return err
	}
	if p.Points.LessThan(tx.Amount) {
		return sentinel.ErrInsufficientBalance
	}
	p.Points = Round2(p.Points.Sub(tx.Amount))
	if err := s.partners.Save(ctx, p); err != nil {
		return err
	}
	return s.entries.Append(ctx, tx)
}

func (s *InMemoryStore) RewriteSale(ctx context.Context, next ledger.Transaction) error {
	return s.rewrite(ctx, next, ledger.TypeSale)
}

func (s *InMemoryStore) RewriteRedemption(ctx context.Context, next ledger.Transaction) error {
	return s.rewrite(ctx, next, ledger.TypeRedemption)
}

// rewrite reverses the old entry's delta and applies the recomputed one
// under the locks of every affected partner. The old entry is re-read after
// locking; if a concurrent rewrite moved it to another partner, the lock set
// is stale and the operation retries.
func (s *InMemoryStore) rewrite(ctx context.Context, next ledger.Transaction, want ledger.Type) error {
	for attempt := 0; attempt < rewriteAttempts; attempt++ {
		old, err := s.entries.FindByID(ctx, next.ID)
		if err != nil {
			return err
		}
		if old.Type != want {
			return sentinel.ErrNotFound
		}

		unlock := s.lockAll(old.PartnerID, next.PartnerID)

		current, err := s.entries.FindByID(ctx, next.ID)
		if err != nil {
			unlock()
			return err
		}
		if current.PartnerID != old.PartnerID {
			unlock()
			continue
		}

		err = s.rewriteLocked(ctx, current, next)
		unlock()
		return err
	}
	return fmt.Errorf("%w: rewrite contention", sentinel.ErrConflict)
}

// rewriteLocked validates both balance steps before saving anything so a
// rejected rewrite leaves every balance untouched, matching the transaction
// rollback in the stored-procedure store.
func (s *InMemoryStore) rewriteLocked(ctx context.Context, old, next ledger.Transaction) error {
	source, err := s.partners.FindByID(ctx, old.PartnerID)
	if err != nil {
		return err
	}

	// Reverse the old delta on the source partner. Reversals are checked
	// against zero even when the same partner nets positive afterwards,
	// matching the stored-procedure behavior.
	reversed := Round2(source.Points.Sub(old.SignedAmount()))
	if reversed.IsNegative() {
		return sentinel.ErrInsufficientBalance
	}

	if old.PartnerID == next.PartnerID {
		applied := Round2(reversed.Add(next.SignedAmount()))
		if applied.IsNegative() {
			return sentinel.ErrInsufficientBalance
		}
		source.Points = applied
		if err := s.partners.Save(ctx, source); err != nil {
			return err
		}
		return s.entries.Update(ctx, next)
	}

	target, err := s.partners.FindByID(ctx, next.PartnerID)
	if err != nil {
		return err
	}
	applied := Round2(target.Points.Add(next.SignedAmount()))
	if applied.IsNegative() {
		return sentinel.ErrInsufficientBalance
	}

	source.Points = reversed
	if err := s.partners.Save(ctx, source); err != nil {
		return err
	}
	target.Points = applied
	if err := s.partners.Save(ctx, target); err != nil {
		return err
	}
	return s.entries.Update(ctx, next)
}

func (s *InMemoryStore) Reverse(ctx context.Context, txID uuid.UUID) error {
	for attempt := 0; attempt < rewriteAttempts; attempt++ {
		old, err := s.entries.FindByID(ctx, txID)
		if err != nil {
			return err
		}

		unlock := s.lock(old.PartnerID)

		current, err := s.entries.FindByID(ctx, txID)
		if err != nil {
			unlock()
			return err
		}
		if current.PartnerID != old.PartnerID {
			unlock()
			continue
		}

		err = s.reverseLocked(ctx, current)
		unlock()
		return err
	}
	return fmt.Errorf("%w: reverse contention", sentinel.ErrConflict)
}

func (s *InMemoryStore) reverseLocked(ctx context.Context, old ledger.Transaction) error {
	p, err := s.partners.FindByID(ctx, old.PartnerID)
	if err != nil {
		return err
	}
	reversed := Round2(p.Points.Sub(old.SignedAmount()))
	if reversed.IsNegative() {
		return sentinel.ErrInsufficientBalance
	}
	p.Points = reversed
	if err := s.partners.Save(ctx, p); err != nil {
		return err
	}
	return s.entries.Delete(ctx, old.ID)
}

func (s *InMemoryStore) lock(partnerID uuid.UUID) func() {
	shard := shardOf(partnerID)
	s.shards[shard].Lock()
	return s.shards[shard].Unlock
}

// lockAll acquires the shards of every given partner in index order so two
// rewrites touching the same pair cannot deadlock.
func (s *InMemoryStore) lockAll(ids ...uuid.UUID) func() {
	seen := make(map[int]bool, len(ids))
	shards := make([]int, 0, len(ids))
	for _, id := range ids {
		shard := shardOf(id)
		if !seen[shard] {
			seen[shard] = true
			shards = append(shards, shard)
		}
	}
	for i := 1; i < len(shards); i++ {
		for j := i; j > 0 && shards[j] < shards[j-1]; j-- {
			shards[j], shards[j-1] = shards[j-1], shards[j]
		}
	}
	for _, shard := range shards {
		s.shards[shard].Lock()
	}
	return func() {
		for i := len(shards) - 1; i >= 0; i-- {
			s.shards[shards[i]].Unlock()
		}
	}
}

// shardOf hashes the partner ID with FNV-1a for even shard distribution.
func shardOf(id uuid.UUID) int {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range id {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return int(h % numShards)
}
