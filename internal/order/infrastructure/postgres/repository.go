package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcoelho/order-fulfillment-saga/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		customer JSONB,
		payment JSONB,
		items JSONB NOT NULL,
		total_cents BIGINT NOT NULL,
		status TEXT NOT NULL,
		canceled BOOLEAN NOT NULL,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

// Upsert overwrites the stored snapshot unconditionally (last write wins),
// which is what makes step redelivery safe to persist.
func (r *Repository) Upsert(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO orders
			(id, customer, payment, items, total_cents, status, canceled, cancellation_reason, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			customer=$2, payment=$3, items=$4, total_cents=$5, status=$6,
			canceled=$7, cancellation_reason=$8, updated_at=$10`,
		o.ID, o.Customer, o.Payment, items, o.TotalCents, string(o.Status),
		o.Canceled, o.CancellationReason, o.CreatedAt, time.Now().UTC())
	if err != nil {
		r.log.Error("order upsert failed", "order_id", o.ID, "err", err)
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, customer, payment, items, total_cents,
			status, canceled, cancellation_reason, created_at, updated_at
		FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

// ListCanceledWithReservedItems returns canceled orders that still hold stock,
// i.e. orders whose compensation did not complete.
func (r *Repository) ListCanceledWithReservedItems(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer, payment, items, total_cents,
			status, canceled, cancellation_reason, created_at, updated_at
		FROM orders
		WHERE canceled AND items @> '[{"reserved": true}]'::jsonb
		ORDER BY updated_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	var items []byte
	err := row.Scan(&o.ID, &o.Customer, &o.Payment, &items, &o.TotalCents,
		&status, &o.Canceled, &o.CancellationReason, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}
