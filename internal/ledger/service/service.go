package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// Store is the ledger read boundary.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	ListAll(ctx context.Context) ([]ledger.Transaction, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) ([]ledger.Transaction, error)
}

// Service exposes ledger queries for the transactions table and reports.
// It has no invariants of its own; mutations belong to the engine.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ByID resolves a single transaction.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	tx, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ledger.Transaction{}, domerrors.New(domerrors.CodeNotFound, "transaction not found")
		}
		return ledger.Transaction{}, translate(err, "find transaction")
	}
	return tx, nil
}

// ListAll returns every transaction, date descending, with partner details
// joined for display.
func (s *Service) ListAll(ctx context.Context) ([]ledger.Transaction, error) {
	txs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, translate(err, "list transactions")
	}
	return txs, nil
}

// ListForPartner returns a partner's transactions, date descending, bounded
// by an optional inclusive date range.
func (s *Service) ListForPartner(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) ([]ledger.Transaction, error) {
	txs, err := s.store.ListForPartner(ctx, partnerID, from, to)
	if err != nil {
		return nil, translate(err, "list partner transactions")
	}
	return txs, nil
}

func translate(err error, op string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return domerrors.Wrap(err, domerrors.CodeBackendUnavailable, op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domerrors.Wrap(err, domerrors.CodeTimeout, op)
	}
	return domerrors.Wrap(err, domerrors.CodeInternal, op)
}
