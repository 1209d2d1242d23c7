package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcoelho/order-fulfillment-saga/internal/inventory/domain"
)

type Store struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewStore(log *slog.Logger, pool *pgxpool.Pool) *Store {
	return &Store{log: log, pool: pool}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS inventory (
		product_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit_price_cents BIGINT NOT NULL,
		quantity_on_hand INT NOT NULL CHECK (quantity_on_hand >= 0)
	)`)
	return err
}

func (s *Store) GetRecord(ctx context.Context, productID string) (domain.Record, error) {
	var rec domain.Record
	err := s.pool.QueryRow(ctx, `SELECT product_id, name, unit_price_cents, quantity_on_hand
		FROM inventory WHERE product_id=$1`, productID).
		Scan(&rec.ProductID, &rec.Name, &rec.UnitPriceCents, &rec.QuantityOnHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// ConditionalDecrement takes quantity out of stock only when the row still
// holds at least that much. The precondition lives in the UPDATE itself, so
// concurrent reservations for the same product serialize at the database and
// the quantity can never go negative.
func (s *Store) ConditionalDecrement(ctx context.Context, productID string, quantity int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE inventory
		SET quantity_on_hand = quantity_on_hand - $2
		WHERE product_id = $1 AND quantity_on_hand >= $2`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Increment returns quantity to stock with no precondition. Used for
// compensation only.
func (s *Store) Increment(ctx context.Context, productID string, quantity int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE inventory
		SET quantity_on_hand = quantity_on_hand + $2
		WHERE product_id = $1`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// Seed inserts catalog rows, keeping existing quantities. Meant for dev and
// demo bootstrap.
func (s *Store) Seed(ctx context.Context, records []domain.Record) error {
	for _, rec := range records {
		_, err := s.pool.Exec(ctx, `INSERT INTO inventory (product_id, name, unit_price_cents, quantity_on_hand)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (product_id) DO UPDATE SET name=$2, unit_price_cents=$3`,
			rec.ProductID, rec.Name, rec.UnitPriceCents, rec.QuantityOnHand)
		if err != nil {
			return err
		}
	}
	return nil
}
