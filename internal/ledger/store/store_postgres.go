package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	pgplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/postgres"
)

// PostgresStore is the read side over the transactions table. Partner name
// and coupon are joined in for display; mutations go through the engine's
// stored procedures, never through this store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `
	t.id, t.partner_id, p.name, p.coupon, t.type, t.amount,
	t.original_sale_value, t.discounted_value, t.external_sale_id, t.date
`

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM transactions t
		JOIN partners p ON p.id = t.partner_id
		WHERE t.id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	tx, err := scanTransaction(row)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("find transaction: %w", pgplatform.ClassifyError(err))
	}
	return tx, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]ledger.Transaction, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM transactions t
		JOIN partners p ON p.id = t.partner_id
		ORDER BY t.date DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", pgplatform.ClassifyError(err))
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *PostgresStore) ListForPartner(ctx context.Context, partnerID uuid.UUID, from, to *time.Time) ([]ledger.Transaction, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM transactions t
		JOIN partners p ON p.id = t.partner_id
		WHERE t.partner_id = $1
		  AND ($2::timestamptz IS NULL OR t.date >= $2)
		  AND ($3::timestamptz IS NULL OR t.date <= $3)
		ORDER BY t.date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list partner transactions: %w", pgplatform.ClassifyError(err))
	}
	defer rows.Close()
	return scanTransactions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (ledger.Transaction, error) {
	var (
		tx         ledger.Transaction
		original   decimal.NullDecimal
		discounted decimal.NullDecimal
		externalID sql.NullString
	)
	err := row.Scan(
		&tx.ID, &tx.PartnerID, &tx.PartnerName, &tx.PartnerCoupon, &tx.Type,
		&tx.Amount, &original, &discounted, &externalID, &tx.Date,
	)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if original.Valid {
		tx.OriginalSaleValue = &original.Decimal
	}
	if discounted.Valid {
		tx.DiscountedValue = &discounted.Decimal
	}
	tx.ExternalSaleID = externalID.String
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	var txs []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", pgplatform.ClassifyError(err))
	}
	return txs, nil
}
