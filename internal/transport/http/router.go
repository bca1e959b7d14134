// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/engine"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/metrics"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/middleware"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/report"
)

// PartnerService is the directory surface the transport needs.
type PartnerService interface {
	Add(ctx context.Context, name, coupon string) (*partner.Partner, error)
	List(ctx context.Context) ([]*partner.Partner, error)
}

// EngineService is the balance mutation surface.
type EngineService interface {
	RegisterSale(ctx context.Context, coupon string, saleValue decimal.Decimal, externalSaleID string, saleDate time.Time) (engine.Receipt, error)
	RedeemPoints(ctx context.Context, coupon string, points decimal.Decimal) error
	UpdateSale(ctx context.Context, txID, partnerID uuid.UUID, saleValue decimal.Decimal, externalSaleID string, saleDate time.Time) error
	UpdateRedemption(ctx context.Context, txID, partnerID uuid.UUID, points decimal.Decimal, date time.Time) error
	DeleteTransaction(ctx context.Context, txID uuid.UUID) error
}

// LedgerService is the transaction lookup surface. The update handler reads
// the existing row to learn its type before dispatching the rewrite.
type LedgerService interface {
	ListAll(ctx context.Context) ([]ledger.Transaction, error)
	ByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
}

// ReportService builds the dashboard and partner reports.
type ReportService interface {
	Summary(ctx context.Context) (*report.Summary, error)
	Statement(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) (*report.Statement, error)
}

// HealthChecker reports backing-store reachability.
type HealthChecker func(ctx context.Context) error

// Handler wires domain services to routes.
type Handler struct {
	logger       *slog.Logger
	metrics      *metrics.Metrics
	partners     PartnerService
	engine       EngineService
	ledger       LedgerService
	reports      ReportService
	summaryCache *report.SummaryCache
	health       HealthChecker
}

func NewHandler(
	logger *slog.Logger,
	m *metrics.Metrics,
	partners PartnerService,
	eng EngineService,
	ledgerSvc LedgerService,
	reports ReportService,
	summaryCache *report.SummaryCache,
	health HealthChecker,
) *Handler {
	return &Handler{
		logger:       logger,
		metrics:      m,
		partners:     partners,
		engine:       eng,
		ledger:       ledgerSvc,
		reports:      reports,
		summaryCache: summaryCache,
		health:       health,
	}
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(h.metrics))

	r.Post("/partners", h.handleAddPartner)
	r.Get("/partners", h.handleListPartners)

	r.Post("/sales", h.handleRegisterSale)
	r.Post("/redemptions", h.handleRedeemPoints)

	r.Get("/transactions", h.handleListTransactions)
	r.Put("/transactions/{id}", h.handleUpdateTransaction)
	r.Delete("/transactions/{id}", h.handleDeleteTransaction)

	r.Get("/reports/summary", h.handleSummary)
	r.Get("/partners/{id}/statement", h.handleStatement)
	r.Get("/calculator/quote", h.handleQuote)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
