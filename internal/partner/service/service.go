package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// Store is the persistence boundary the directory needs. Implementations
// report duplicates via sentinel.ErrConflict and misses via
// sentinel.ErrNotFound.
type Store interface {
	Save(ctx context.Context, p *partner.Partner) error
	FindByCoupon(ctx context.Context, coupon string) (*partner.Partner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error)
	List(ctx context.Context) ([]*partner.Partner, error)
}

// Service is the partner directory: registration and lookups. Coupon
// normalization to uppercase happens here so stores can rely on exact
// matches.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add registers a new partner with a zero balance.
func (s *Service) Add(ctx context.Context, name, coupon string) (*partner.Partner, error) {
	name = strings.TrimSpace(name)
	coupon = strings.ToUpper(strings.TrimSpace(coupon))

	if len(name) < 3 {
		return nil, domerrors.New(domerrors.CodeInvalidInput, "name must have at least 3 characters")
	}
	if !partner.ValidCoupon(coupon) {
		return nil, domerrors.New(domerrors.CodeInvalidInput, "coupon must be uppercase letters and digits, at least 3 characters")
	}

	p := &partner.Partner{
		ID:        uuid.New(),
		Name:      name,
		Coupon:    coupon,
		Points:    decimal.Zero,
		CreatedAt: time.Now(),
	}
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, domerrors.New(domerrors.CodeDuplicateCoupon, "coupon already exists")
		}
		return nil, translate(err, "save partner")
	}
	return p, nil
}

// ByCoupon resolves a partner from a coupon code, case-insensitively.
func (s *Service) ByCoupon(ctx context.Context, coupon string) (*partner.Partner, error) {
	coupon = strings.ToUpper(strings.TrimSpace(coupon))
	p, err := s.store.FindByCoupon(ctx, coupon)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeUnknownCoupon, "unknown coupon")
		}
		return nil, translate(err, "find partner by coupon")
	}
	return p, nil
}

// ByID resolves a partner by its identifier.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerrors.New(domerrors.CodeNotFound, "partner not found")
		}
		return nil, translate(err, "find partner by id")
	}
	return p, nil
}

// List returns all partners ordered by name ascending.
func (s *Service) List(ctx context.Context) ([]*partner.Partner, error) {
	partners, err := s.store.List(ctx)
	if err != nil {
		return nil, translate(err, "list partners")
	}
	return partners, nil
}

// translate converts infrastructure failures into domain errors, keeping
// backend/configuration problems distinguishable from user-input problems.
func translate(err error, op string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return domerrors.Wrap(err, domerrors.CodeBackendUnavailable, op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domerrors.Wrap(err, domerrors.CodeTimeout, op)
	}
	return domerrors.Wrap(err, domerrors.CodeInternal, op)
}
