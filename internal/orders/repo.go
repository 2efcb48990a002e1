package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo persists orders. The engine creates an order exactly once and then
// only updates its status fields; orders are never deleted. UpdateStatus is
// a compare-and-set: it writes only while the row is still in the from state
// the transition was validated against, and reports InvalidTransitionError
// when a concurrent writer got there first.
type Repo interface {
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, number string) (*Order, error)
	UpdateStatus(ctx context.Context, o *Order, from Status) error
}

type PGRepo struct{ DB *pgxpool.Pool }

func (r *PGRepo) NextNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.DB.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%06d", n), nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(number, user_id, subtotal_cents, tax_cents, shipping_cents,
		                   total_cents, status, payment_status, shipping_method,
		                   created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.Number, o.UserID, o.SubtotalCents, o.TaxCents, o.ShippingCents,
		o.TotalCents, o.Status, o.PaymentStatus, o.Shipping,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_number, position, sku, qty, unit_price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.Number, i, it.SKU, it.Qty, it.UnitPriceCents, it.SubtotalCents); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) Get(ctx context.Context, number string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT number, user_id, subtotal_cents, tax_cents, shipping_cents,
		       total_cents, status, payment_status, shipping_method,
		       created_at, updated_at
		FROM orders WHERE number=$1`, number).
		Scan(&o.Number, &o.UserID, &o.SubtotalCents, &o.TaxCents, &o.ShippingCents,
			&o.TotalCents, &o.Status, &o.PaymentStatus, &o.Shipping,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT sku, qty, unit_price_cents, subtotal_cents
		FROM order_items WHERE order_number=$1 ORDER BY position`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.SKU, &it.Qty, &it.UnitPriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, o *Order, from Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, payment_status=$3, updated_at=$4
		WHERE number=$1 AND status=$5`,
		o.Number, o.Status, o.PaymentStatus, o.UpdatedAt, from)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// no row matched: either the order is gone or its status moved under us
	var current Status
	err = r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE number=$1`, o.Number).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return &InvalidTransitionError{From: current, To: o.Status}
}
