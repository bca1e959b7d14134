// Command server runs the points administration HTTP service.
//
// With DATABASE_URL set it persists to Postgres and applies the embedded
// migrations on boot; without it everything lives in memory, which is enough
// for local development and the test suites. REDIS_URL optionally enables
// the report summary cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/engine"
	ledgerservice "github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger/service"
	ledgerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger/store"
	partnerservice "github.com/felipebelchiorpro/sistema-de-pontos/internal/partner/service"
	partnerstore "github.com/felipebelchiorpro/sistema-de-pontos/internal/partner/store"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/config"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/httpserver"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/logger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/metrics"
	pgplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/postgres"
	redisplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/redis"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/report"
	httptransport "github.com/felipebelchiorpro/sistema-de-pontos/internal/transport/http"
)

func main() {
	log := logger.New()
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		partnerSvc   *partnerservice.Service
		ledgerSvc    *ledgerservice.Service
		engineStore  engine.Store
		healthCheck  httptransport.HealthChecker
		reportLedger report.Ledger
	)

	if cfg.DatabaseURL != "" {
		db, err := pgplatform.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := pgplatform.Migrate(db); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		partnerSvc = partnerservice.NewService(partnerstore.NewPostgresStore(db))
		ledgerSvc = ledgerservice.NewService(ledgerstore.NewPostgresStore(db))
		engineStore = engine.NewPostgresStore(db)
		healthCheck = func(ctx context.Context) error { return pgplatform.Health(ctx, db) }
		log.Info("using postgres stores")
	} else {
		partners := partnerstore.NewInMemoryStore()
		entries := ledgerstore.NewInMemoryStore()
		partnerSvc = partnerservice.NewService(partners)
		ledgerSvc = ledgerservice.NewService(entries)
		engineStore = engine.NewInMemoryStore(partners, entries)
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}
	reportLedger = ledgerSvc

	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("report summary cache enabled")
	}
	summaryCache := report.NewSummaryCache(redisClient, config.SummaryCacheTTL)

	engineSvc := engine.NewService(partnerSvc, engineStore, m)
	reportSvc := report.NewService(partnerSvc, reportLedger, summaryCache)

	handler := httptransport.NewHandler(log, m, partnerSvc, engineSvc, ledgerSvc, reportSvc, summaryCache, healthCheck)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
