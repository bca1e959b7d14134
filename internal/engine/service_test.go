package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	ledgerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger/store"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	partnerservice "github.com/felipebelchiorpro/sistema-de-pontos/internal/partner/service"
	partnerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/partner/store"
	domerrors "github.com/felipebelchiorpro/sistema-de-pontos/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite

	partners  *partnerstore.InMemoryStore
	entries   *ledgerstore.InMemoryStore
	directory *partnerservice.Service
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.partners = partnerstore.NewInMemoryStore()
	s.entries = ledgerstore.NewInMemoryStore()
	s.directory = partnerservice.NewService(s.partners)
	s.service = NewService(s.directory, NewInMemoryStore(s.partners, s.entries), nil)
}

func (s *ServiceSuite) addPartner(name, coupon string) *partner.Partner {
	p, err := s.directory.Add(context.Background(), name, coupon)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) balance(id uuid.UUID) decimal.Decimal {
	p, err := s.partners.FindByID(context.Background(), id)
	s.Require().NoError(err)
	return p.Points
}

func (s *ServiceSuite) assertDecimal(want string, got decimal.Decimal) {
	s.True(got.Equal(decimal.RequireFromString(want)), "want %s got %s", want, got)
}

func (s *ServiceSuite) TestRegisterSale() {
	ctx := context.Background()
	p := s.addPartner("Ana Clara", "ANA10")

	s.Run("credits points and appends a ledger entry", func() {
		receipt, err := s.service.RegisterSale(ctx, "ANA10", decimal.RequireFromString("100"), "", time.Time{})
		s.Require().NoError(err)
		s.assertDecimal("7.5", receipt.PointsGenerated)
		s.assertDecimal("92.5", receipt.DiscountedValue)
		s.assertDecimal("7.5", s.balance(p.ID))

		txs, err := s.entries.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(txs, 1)
		s.Equal(ledger.TypeSale, txs[0].Type)
		s.Equal(p.ID, txs[0].PartnerID)
		s.Equal("Ana Clara", txs[0].PartnerName)
		s.Equal("ANA10", txs[0].PartnerCoupon)
		s.assertDecimal("7.5", txs[0].Amount)
		s.Require().NotNil(txs[0].OriginalSaleValue)
		s.assertDecimal("100", *txs[0].OriginalSaleValue)
		s.Require().NotNil(txs[0].DiscountedValue)
		s.assertDecimal("92.5", *txs[0].DiscountedValue)
	})

	s.Run("coupon lookup is case insensitive", func() {
		_, err := s.service.RegisterSale(ctx, "ana10", decimal.RequireFromString("40"), "", time.Time{})
		s.Require().NoError(err)
	})

	s.Run("unknown coupon is rejected", func() {
		_, err := s.service.RegisterSale(ctx, "NOPE99", decimal.RequireFromString("100"), "", time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeUnknownCoupon))
	})

	s.Run("non positive sale value is rejected", func() {
		_, err := s.service.RegisterSale(ctx, "ANA10", decimal.Zero, "", time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInvalidAmount))

		_, err = s.service.RegisterSale(ctx, "ANA10", decimal.RequireFromString("-5"), "", time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInvalidAmount))
	})

	s.Run("explicit sale date and external id are persisted", func() {
		saleDate := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
		_, err := s.service.RegisterSale(ctx, "ANA10", decimal.RequireFromString("10"), "order-77", saleDate)
		s.Require().NoError(err)

		txs, err := s.entries.ListAll(ctx)
		s.Require().NoError(err)
		var found bool
		for _, tx := range txs {
			if tx.ExternalSaleID == "order-77" {
				found = true
				s.True(tx.Date.Equal(saleDate))
			}
		}
		s.True(found, "sale with external id not found")
	})
}

func (s *ServiceSuite) TestRedeemPoints() {
	ctx := context.Background()
	p := s.addPartner("Bruno Dias", "BRUNO")

	_, err := s.service.RegisterSale(ctx, "BRUNO", decimal.RequireFromString("1000"), "", time.Time{})
	s.Require().NoError(err)
	s.assertDecimal("75", s.balance(p.ID))

	s.Run("debits the balance and appends a redemption", func() {
		s.Require().NoError(s.service.RedeemPoints(ctx, "BRUNO", decimal.RequireFromString("30")))
		s.assertDecimal("45", s.balance(p.ID))

		txs, err := s.entries.ListAll(ctx)
		s.Require().NoError(err)
		var redemptions int
		for _, tx := range txs {
			if tx.Type == ledger.TypeRedemption {
				redemptions++
				s.assertDecimal("30", tx.Amount)
			}
		}
		s.Equal(1, redemptions)
	})

	s.Run("redeeming the exact balance leaves zero", func() {
		s.Require().NoError(s.service.RedeemPoints(ctx, "BRUNO", decimal.RequireFromString("45")))
		s.assertDecimal("0", s.balance(p.ID))
	})

	s.Run("overdraw is rejected and balance untouched", func() {
		err := s.service.RedeemPoints(ctx, "BRUNO", decimal.RequireFromString("0.01"))
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInsufficientPoints))
		s.assertDecimal("0", s.balance(p.ID))
	})

	s.Run("non positive points are rejected", func() {
		err := s.service.RedeemPoints(ctx, "BRUNO", decimal.Zero)
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInvalidAmount))
	})
}

func (s *ServiceSuite) TestUpdateSale() {
	ctx := context.Background()
	p := s.addPartner("Carla Souza", "CARLA")

	_, err := s.service.RegisterSale(ctx, "CARLA", decimal.RequireFromString("100"), "", time.Time{})
	s.Require().NoError(err)

	txs, err := s.entries.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	txID := txs[0].ID

	s.Run("recomputes the delta from the new sale value", func() {
		err := s.service.UpdateSale(ctx, txID, p.ID, decimal.RequireFromString("200"), "", time.Time{})
		s.Require().NoError(err)
		s.assertDecimal("15", s.balance(p.ID))

		tx, err := s.entries.FindByID(ctx, txID)
		s.Require().NoError(err)
		s.assertDecimal("15", tx.Amount)
		s.Require().NotNil(tx.OriginalSaleValue)
		s.assertDecimal("200", *tx.OriginalSaleValue)
	})

	s.Run("reassigns the sale to another partner", func() {
		other := s.addPartner("Davi Lima", "DAVI")

		err := s.service.UpdateSale(ctx, txID, other.ID, decimal.RequireFromString("200"), "", time.Time{})
		s.Require().NoError(err)
		s.assertDecimal("0", s.balance(p.ID))
		s.assertDecimal("15", s.balance(other.ID))

		tx, err := s.entries.FindByID(ctx, txID)
		s.Require().NoError(err)
		s.Equal(other.ID, tx.PartnerID)
		s.Equal("Davi Lima", tx.PartnerName)
	})

	s.Run("unknown transaction returns not found", func() {
		err := s.service.UpdateSale(ctx, uuid.New(), p.ID, decimal.RequireFromString("10"), "", time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeNotFound))
	})

	s.Run("shrinking a spent sale is rejected", func() {
		spender := s.addPartner("Elisa Prado", "ELISA")
		_, err := s.service.RegisterSale(ctx, "ELISA", decimal.RequireFromString("1000"), "", time.Time{})
		s.Require().NoError(err)
		s.Require().NoError(s.service.RedeemPoints(ctx, "ELISA", decimal.RequireFromString("70")))

		spent, err := s.entries.ListForPartner(ctx, spender.ID, nil, nil)
		s.Require().NoError(err)
		var saleID uuid.UUID
		for _, tx := range spent {
			if tx.IsSale() {
				saleID = tx.ID
			}
		}
		s.Require().NotEqual(uuid.Nil, saleID)

		// Balance is 5; reversing the 75-point sale would go negative.
		err = s.service.UpdateSale(ctx, saleID, spender.ID, decimal.RequireFromString("10"), "", time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInsufficientPoints))
		s.assertDecimal("5", s.balance(spender.ID))
	})
}

func (s *ServiceSuite) TestUpdateRedemption() {
	ctx := context.Background()
	p := s.addPartner("Fabio Reis", "FABIO")

	_, err := s.service.RegisterSale(ctx, "FABIO", decimal.RequireFromString("1000"), "", time.Time{})
	s.Require().NoError(err)
	s.Require().NoError(s.service.RedeemPoints(ctx, "FABIO", decimal.RequireFromString("20")))
	s.assertDecimal("55", s.balance(p.ID))

	txs, err := s.entries.ListForPartner(ctx, p.ID, nil, nil)
	s.Require().NoError(err)
	var redemptionID uuid.UUID
	for _, tx := range txs {
		if tx.Type == ledger.TypeRedemption {
			redemptionID = tx.ID
		}
	}
	s.Require().NotEqual(uuid.Nil, redemptionID)

	s.Run("replaces the debit with the new amount", func() {
		err := s.service.UpdateRedemption(ctx, redemptionID, p.ID, decimal.RequireFromString("50"), time.Time{})
		s.Require().NoError(err)
		s.assertDecimal("25", s.balance(p.ID))
	})

	s.Run("growing the debit past the balance is rejected", func() {
		err := s.service.UpdateRedemption(ctx, redemptionID, p.ID, decimal.RequireFromString("100"), time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInsufficientPoints))
		s.assertDecimal("25", s.balance(p.ID))
	})

	s.Run("updating a sale through the redemption path is not found", func() {
		sales, err := s.entries.ListForPartner(ctx, p.ID, nil, nil)
		s.Require().NoError(err)
		var saleID uuid.UUID
		for _, tx := range sales {
			if tx.IsSale() {
				saleID = tx.ID
			}
		}
		s.Require().NotEqual(uuid.Nil, saleID)

		err = s.service.UpdateRedemption(ctx, saleID, p.ID, decimal.RequireFromString("1"), time.Time{})
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDeleteTransaction() {
	ctx := context.Background()
	p := s.addPartner("Gina Costa", "GINA1")

	_, err := s.service.RegisterSale(ctx, "GINA1", decimal.RequireFromString("100"), "", time.Time{})
	s.Require().NoError(err)
	s.Require().NoError(s.service.RedeemPoints(ctx, "GINA1", decimal.RequireFromString("2.5")))
	s.assertDecimal("5", s.balance(p.ID))

	txs, err := s.entries.ListForPartner(ctx, p.ID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)

	s.Run("deleting a redemption restores the points", func() {
		var redemptionID uuid.UUID
		for _, tx := range txs {
			if tx.Type == ledger.TypeRedemption {
				redemptionID = tx.ID
			}
		}
		s.Require().NoError(s.service.DeleteTransaction(ctx, redemptionID))
		s.assertDecimal("7.5", s.balance(p.ID))
	})

	s.Run("deleting a sale removes the points", func() {
		var saleID uuid.UUID
		for _, tx := range txs {
			if tx.IsSale() {
				saleID = tx.ID
			}
		}
		s.Require().NoError(s.service.DeleteTransaction(ctx, saleID))
		s.assertDecimal("0", s.balance(p.ID))

		_, err := s.entries.FindByID(ctx, saleID)
		s.Require().Error(err)
	})

	s.Run("deleting a spent sale is rejected", func() {
		_, err := s.service.RegisterSale(ctx, "GINA1", decimal.RequireFromString("100"), "", time.Time{})
		s.Require().NoError(err)
		s.Require().NoError(s.service.RedeemPoints(ctx, "GINA1", decimal.RequireFromString("7")))

		remaining, err := s.entries.ListForPartner(ctx, p.ID, nil, nil)
		s.Require().NoError(err)
		var saleID uuid.UUID
		for _, tx := range remaining {
			if tx.IsSale() {
				saleID = tx.ID
			}
		}

		err = s.service.DeleteTransaction(ctx, saleID)
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeInsufficientPoints))
		s.assertDecimal("0.5", s.balance(p.ID))
	})

	s.Run("unknown transaction returns not found", func() {
		err := s.service.DeleteTransaction(ctx, uuid.New())
		s.Require().Error(err)
		s.True(domerrors.Is(err, domerrors.CodeNotFound))
	})
}

// Concurrent mutations for one partner must serialize so the final balance
// equals the sum of all applied deltas.
func (s *ServiceSuite) TestConcurrentMutations() {
	ctx := context.Background()
	p := s.addPartner("Hugo Melo", "HUGO1")

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.service.RegisterSale(ctx, "HUGO1", decimal.RequireFromString("50"), "", time.Time{})
			s.NoError(err)
		}()
	}
	wg.Wait()

	// 20 sales of 50 each generate 3.75 points apiece.
	s.assertDecimal("75", s.balance(p.ID))

	txs, err := s.entries.ListForPartner(ctx, p.ID, nil, nil)
	s.Require().NoError(err)
	s.Len(txs, workers)
}

// Two concurrent redemptions that each fit the balance alone must not both
// succeed when together they overdraw it.
func (s *ServiceSuite) TestConcurrentOverdraw() {
	ctx := context.Background()
	p := s.addPartner("Iris Nunes", "IRIS1")

	_, err := s.service.RegisterSale(ctx, "IRIS1", decimal.RequireFromString("100"), "", time.Time{})
	s.Require().NoError(err)

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			results <- s.service.RedeemPoints(ctx, "IRIS1", decimal.RequireFromString("5"))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.True(domerrors.Is(err, domerrors.CodeInsufficientPoints))
		}
	}
	// 7.5 points cover exactly one 5-point redemption.
	s.Equal(1, succeeded)
	s.assertDecimal("2.5", s.balance(p.ID))
}
