package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	pgplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/postgres"
	"github.com/felipebelchiorpro/sistema-de-pontos/pkg/sentinel"
)

// PostgresStore delegates each mutation to a stored procedure so the
// read-validate-write-append sequence runs inside a single database
// transaction with row-level locking. Procedure failures arrive as raised
// exceptions with stable messages and are mapped back to sentinel errors.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ApplySale(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`SELECT register_sale($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.PartnerID, tx.Amount, tx.OriginalSaleValue, tx.DiscountedValue,
		nullString(tx.ExternalSaleID), tx.Date,
	)
	if err != nil {
		return fmt.Errorf("register sale: %w", mapProcError(err))
	}
	return nil
}

func (s *PostgresStore) ApplyRedemption(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`SELECT redeem_points($1, $2, $3, $4)`,
		tx.ID, tx.PartnerID, tx.Amount, tx.Date,
	)
	if err != nil {
		return fmt.Errorf("redeem points: %w", mapProcError(err))
	}
	return nil
}

func (s *PostgresStore) RewriteSale(ctx context.Context, next ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`SELECT update_sale_transaction($1, $2, $3, $4, $5, $6, $7)`,
		next.ID, next.PartnerID, next.Amount, next.OriginalSaleValue, next.DiscountedValue,
		nullString(next.ExternalSaleID), next.Date,
	)
	if err != nil {
		return fmt.Errorf("update sale transaction: %w", mapProcError(err))
	}
	return nil
}

func (s *PostgresStore) RewriteRedemption(ctx context.Context, next ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`SELECT update_redemption_transaction($1, $2, $3, $4)`,
		next.ID, next.PartnerID, next.Amount, next.Date,
	)
	if err != nil {
		return fmt.Errorf("update redemption transaction: %w", mapProcError(err))
	}
	return nil
}

func (s *PostgresStore) Reverse(ctx context.Context, txID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `SELECT delete_transaction($1)`, txID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", mapProcError(err))
	}
	return nil
}

// mapProcError translates raised procedure exceptions into sentinel errors;
// everything else goes through the shared driver classification.
func mapProcError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "P0001" {
		switch pgErr.Message {
		case "INSUFFICIENT_POINTS":
			return sentinel.ErrInsufficientBalance
		case "PARTNER_NOT_FOUND", "TRANSACTION_NOT_FOUND":
			return sentinel.ErrNotFound
		}
	}
	return pgplatform.ClassifyError(err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
