package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
	pgplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/postgres"
)

// PostgresStore persists partners in the partners table. Coupon uniqueness
// is enforced by the unique index and surfaces as sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *partner.Partner) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO partners (id, name, coupon, points, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, coupon = EXCLUDED.coupon, points = EXCLUDED.points
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Coupon, p.Points, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save partner: %w", pgplatform.ClassifyError(err))
	}
	return nil
}

func (s *PostgresStore) FindByCoupon(ctx context.Context, coupon string) (*partner.Partner, error) {
	query := `SELECT id, name, coupon, points, created_at FROM partners WHERE coupon = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, coupon))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	query := `SELECT id, name, coupon, points, created_at FROM partners WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) List(ctx context.Context) ([]*partner.Partner, error) {
	query := `SELECT id, name, coupon, points, created_at FROM partners ORDER BY lower(name) ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", pgplatform.ClassifyError(err))
	}
	defer rows.Close()

	var partners []*partner.Partner
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Coupon, &p.Points, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partners: %w", pgplatform.ClassifyError(err))
	}
	return partners, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*partner.Partner, error) {
	var p partner.Partner
	if err := row.Scan(&p.ID, &p.Name, &p.Coupon, &p.Points, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("find partner: %w", pgplatform.ClassifyError(err))
	}
	return &p, nil
}
