package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is the postgres-backed ledger. One transaction covers the whole SKU set:
// rows are locked FOR UPDATE in ascending SKU order (two overlapping reserves
// always take their locks in the same order, so they cannot deadlock), every
// quantity is pre-checked before any decrement, and a short SKU rolls the
// whole transaction back.
type PG struct{ DB *pgxpool.Pool }

func (p *PG) Reserve(ctx context.Context, orderNumber string, deltas []Delta) error {
	if len(deltas) == 0 {
		return fmt.Errorf("reserve %s: empty delta set", orderNumber)
	}
	ds := sortDeltas(deltas)

	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// idempotency short-circuit: this order's reservation already held
	var n int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE order_number=$1 AND status='RESERVED'`, orderNumber).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, d := range ds {
		var avail int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE sku=$1 FOR UPDATE`, d.SKU).Scan(&avail)
		if errors.Is(err, pgx.ErrNoRows) {
			return &InsufficientStockError{SKU: d.SKU, Requested: d.Qty, Available: 0}
		}
		if err != nil {
			return err
		}
		if avail < d.Qty {
			return &InsufficientStockError{SKU: d.SKU, Requested: d.Qty, Available: avail}
		}
	}

	for _, d := range ds {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE sku=$1`, d.SKU, d.Qty); err != nil {
			return err
		}
		// a RELEASED row from an earlier reservation flips back to RESERVED,
		// so this fresh hold stays restorable
		if _, err := tx.Exec(ctx, `
			INSERT INTO reservations(order_number, sku, qty, status)
			VALUES ($1,$2,$3,'RESERVED')
			ON CONFLICT (order_number, sku)
			DO UPDATE SET status='RESERVED', qty=EXCLUDED.qty`, orderNumber, d.SKU, d.Qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *PG) Restore(ctx context.Context, orderNumber string) ([]Delta, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT sku, qty FROM reservations
		WHERE order_number=$1 AND status='RESERVED'
		ORDER BY sku FOR UPDATE`, orderNumber)
	if err != nil {
		return nil, err
	}
	var ds []Delta
	for rows.Next() {
		var d Delta
		if err := rows.Scan(&d.SKU, &d.Qty); err != nil {
			rows.Close()
			return nil, err
		}
		ds = append(ds, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, nil // never reserved, or already released
	}

	for _, d := range ds {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE sku=$1`, d.SKU, d.Qty); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE reservations SET status='RELEASED'
		WHERE order_number=$1 AND status='RESERVED'`, orderNumber); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}
