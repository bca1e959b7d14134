package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
)

// topPartnerLimit caps the top-partners chart.
const topPartnerLimit = 5

// Directory is the slice of the partner service the reports need.
type Directory interface {
	List(ctx context.Context) ([]*partner.Partner, error)
	ByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error)
}

// Ledger is the slice of the ledger service the reports need.
type Ledger interface {
	ListAll(ctx context.Context) ([]ledger.Transaction, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) ([]ledger.Transaction, error)
}

// Service aggregates directory and ledger data into report documents.
type Service struct {
	directory Directory
	ledger    Ledger
	cache     *SummaryCache
}

func NewService(directory Directory, ledger Ledger, cache *SummaryCache) *Service {
	return &Service{directory: directory, ledger: ledger, cache: cache}
}

// Summary builds the dashboard aggregate, serving a cached copy when one is
// fresh enough. Directory and ledger reads fan out concurrently.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	var (
		partners []*partner.Partner
		txs      []ledger.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		partners, err = s.directory.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.ledger.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := buildSummary(partners, txs)
	s.cache.Set(ctx, summary)
	return summary, nil
}

// Statement builds the individual partner report for an optional inclusive
// date range.
func (s *Service) Statement(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) (*Statement, error) {
	p, err := s.directory.ByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.ListForPartner(ctx, partnerID, from, to)
	if err != nil {
		return nil, err
	}

	st := &Statement{Partner: p, Transactions: txs}
	for _, tx := range txs {
		if tx.IsSale() {
			st.TotalGenerated = st.TotalGenerated.Add(tx.Amount)
		} else {
			st.TotalRedeemed = st.TotalRedeemed.Add(tx.Amount)
		}
	}
	return st, nil
}

func buildSummary(partners []*partner.Partner, txs []ledger.Transaction) *Summary {
	summary := &Summary{
		PartnerCount: len(partners),
		GeneratedAt:  time.Now(),
	}

	byDay := make(map[string]*DaySales)
	for _, tx := range txs {
		if tx.IsSale() {
			summary.SaleCount++
			summary.TotalGenerated = summary.TotalGenerated.Add(tx.Amount)

			day := tx.Date.Format("2006-01-02")
			bucket, ok := byDay[day]
			if !ok {
				bucket = &DaySales{Day: day}
				byDay[day] = bucket
			}
			bucket.SaleCount++
			bucket.Points = bucket.Points.Add(tx.Amount)
		} else {
			summary.RedemptionCount++
			summary.TotalRedeemed = summary.TotalRedeemed.Add(tx.Amount)
		}
	}

	summary.SalesByDay = make([]DaySales, 0, len(byDay))
	for _, bucket := range byDay {
		summary.SalesByDay = append(summary.SalesByDay, *bucket)
	}
	sort.Slice(summary.SalesByDay, func(i, j int) bool {
		return summary.SalesByDay[i].Day < summary.SalesByDay[j].Day
	})

	totals := make([]PartnerTotal, 0, len(partners))
	outstanding := decimal.Zero
	for _, p := range partners {
		outstanding = outstanding.Add(p.Points)
		totals = append(totals, PartnerTotal{
			PartnerID: p.ID,
			Name:      p.Name,
			Coupon:    p.Coupon,
			Points:    p.Points,
		})
	}
	summary.OutstandingPoints = outstanding

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Points.GreaterThan(totals[j].Points)
	})
	if len(totals) > topPartnerLimit {
		totals = totals[:topPartnerLimit]
	}
	summary.TopPartners = totals

	return summary
}
