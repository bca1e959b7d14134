package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/metrics"
	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// Directory resolves partners for mutations. The partner service satisfies
// this.
type Directory interface {
	ByCoupon(ctx context.Context, coupon string) (*partner.Partner, error)
	ByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error)
}

// Store executes each balance mutation as a single atomic unit: read
// balance, validate, write balance, write ledger row. Implementations
// serialize concurrent mutations for the same partner (sharded locks in
// memory, row locks inside stored procedures in Postgres) and report
// failures via sentinel errors.
type Store interface {
	ApplySale(ctx context.Context, tx ledger.Transaction) error
	ApplyRedemption(ctx context.Context, tx ledger.Transaction) error
	RewriteSale(ctx context.Context, next ledger.Transaction) error
	RewriteRedemption(ctx context.Context, next ledger.Transaction) error
	Reverse(ctx context.Context, txID uuid.UUID) error
}

// Receipt is returned to the caller after a sale is registered.
type Receipt struct {
	PointsGenerated decimal.Decimal `json:"pointsGenerated"`
	DiscountedValue decimal.Decimal `json:"discountedValue"`
}

// Service validates mutation requests, computes deltas, and delegates the
// atomic apply/reverse step to the store. It performs no in-process locking
// of its own.
type Service struct {
	directory Directory
	store     Store
	metrics   *metrics.Metrics
}

func NewService(directory Directory, store Store, m *metrics.Metrics) *Service {
	return &Service{directory: directory, store: store, metrics: m}
}

// RegisterSale computes the discount/points for a gross sale value and
// atomically credits the partner identified by coupon, appending a SALE
// ledger entry. A zero saleDate defaults to now.
func (s *Service) RegisterSale(ctx context.Context, coupon string, saleValue decimal.Decimal, externalSaleID string, saleDate time.Time) (Receipt, error) {
	if !saleValue.IsPositive() {
		return Receipt{}, s.fail("register_sale", domerrors.New(domerrors.CodeInvalidAmount, "sale value must be positive"))
	}
	p, err := s.directory.ByCoupon(ctx, coupon)
	if err != nil {
		return Receipt{}, s.fail("register_sale", err)
	}

	quote := ComputeQuote(saleValue)
	original := Round2(saleValue)
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	tx := ledger.Transaction{
		ID:                uuid.New(),
		PartnerID:         p.ID,
		PartnerName:       p.Name,
		PartnerCoupon:     p.Coupon,
		Type:              ledger.TypeSale,
		Amount:            quote.PointsGenerated,
		OriginalSaleValue: &original,
		DiscountedValue:   &quote.DiscountedValue,
		ExternalSaleID:    externalSaleID,
		Date:              saleDate,
	}
	if err := s.store.ApplySale(ctx, tx); err != nil {
		return Receipt{}, s.fail("register_sale", translateStoreErr(err))
	}
	s.metrics.IncrementSales()
	return Receipt{PointsGenerated: quote.PointsGenerated, DiscountedValue: quote.DiscountedValue}, nil
}

// RedeemPoints atomically debits the partner identified by coupon, failing
// with InsufficientPoints when the balance cannot cover the redemption. The
// check happens inside the same atomic unit as the write so two concurrent
// redemptions cannot both pass a pre-check and overdraw.
func (s *Service) RedeemPoints(ctx context.Context, coupon string, points decimal.Decimal) error {
	if !points.IsPositive() {
		return s.fail("redeem_points", domerrors.New(domerrors.CodeInvalidAmount, "points to redeem must be positive"))
	}
	p, err := s.directory.ByCoupon(ctx, coupon)
	if err != nil {
		return s.fail("redeem_points", err)
	}

	tx := ledger.Transaction{
		ID:            uuid.New(),
		PartnerID:     p.ID,
		PartnerName:   p.Name,
		PartnerCoupon: p.Coupon,
		Type:          ledger.TypeRedemption,
		Amount:        Round2(points),
		Date:          time.Now(),
	}
	if err := s.store.ApplyRedemption(ctx, tx); err != nil {
		return s.fail("redeem_points", translateStoreErr(err))
	}
	s.metrics.IncrementRedemptions()
	return nil
}

// UpdateSale rewrites an existing SALE transaction: the old delta is
// reversed on its partner and the recomputed delta applied to the (possibly
// different) target partner, all in one atomic unit.
func (s *Service) UpdateSale(ctx context.Context, txID, partnerID uuid.UUID, saleValue decimal.Decimal, externalSaleID string, saleDate time.Time) error {
	if !saleValue.IsPositive() {
		return s.fail("update_sale", domerrors.New(domerrors.CodeInvalidAmount, "sale value must be positive"))
	}
	p, err := s.directory.ByID(ctx, partnerID)
	if err != nil {
		return s.fail("update_sale", err)
	}

	quote := ComputeQuote(saleValue)
	original := Round2(saleValue)
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	next := ledger.Transaction{
		ID:                txID,
		PartnerID:         p.ID,
		PartnerName:       p.Name,
		PartnerCoupon:     p.Coupon,
		Type:              ledger.TypeSale,
		Amount:            quote.PointsGenerated,
		OriginalSaleValue: &original,
		DiscountedValue:   &quote.DiscountedValue,
		ExternalSaleID:    externalSaleID,
		Date:              saleDate,
	}
	if err := s.store.RewriteSale(ctx, next); err != nil {
		return s.fail("update_sale", translateStoreErr(err))
	}
	return nil
}

// UpdateRedemption rewrites an existing REDEMPTION transaction, reversing
// the old debit and applying the new one atomically.
func (s *Service) UpdateRedemption(ctx context.Context, txID, partnerID uuid.UUID, points decimal.Decimal, date time.Time) error {
	if !points.IsPositive() {
		return s.fail("update_redemption", domerrors.New(domerrors.CodeInvalidAmount, "points to redeem must be positive"))
	}
	p, err := s.directory.ByID(ctx, partnerID)
	if err != nil {
		return s.fail("update_redemption", err)
	}
	if date.IsZero() {
		date = time.Now()
	}

	next := ledger.Transaction{
		ID:            txID,
		PartnerID:     p.ID,
		PartnerName:   p.Name,
		PartnerCoupon: p.Coupon,
		Type:          ledger.TypeRedemption,
		Amount:        Round2(points),
		Date:          date,
	}
	if err := s.store.RewriteRedemption(ctx, next); err != nil {
		return s.fail("update_redemption", translateStoreErr(err))
	}
	return nil
}

// DeleteTransaction reverses a transaction's effect on its partner balance
// and removes the row, atomically.
func (s *Service) DeleteTransaction(ctx context.Context, txID uuid.UUID) error {
	if err := s.store.Reverse(ctx, txID); err != nil {
		return s.fail("delete_transaction", translateStoreErr(err))
	}
	return nil
}

func (s *Service) fail(operation string, err error) error {
	s.metrics.IncrementMutationError(operation, string(domerrors.CodeOf(err)))
	return err
}

// translateStoreErr maps sentinel store failures to domain errors. Errors
// that already carry a domain code pass through unchanged.
func translateStoreErr(err error) error {
	var de *domerrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrInsufficientBalance):
		return domerrors.New(domerrors.CodeInsufficientPoints, "insufficient points")
	case errors.Is(err, sentinel.ErrNotFound):
		return domerrors.New(domerrors.CodeNotFound, "transaction not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return domerrors.Wrap(err, domerrors.CodeBackendUnavailable, "store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return domerrors.Wrap(err, domerrors.CodeTimeout, "mutation timed out")
	default:
		return domerrors.Wrap(err, domerrors.CodeInternal, "balance mutation failed")
	}
}
