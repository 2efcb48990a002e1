package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG reads catalog rows from postgres. Combos carry their component list in
// combo_components; individual items have none.
type PG struct{ DB *pgxpool.Pool }

func (p *PG) Lookup(ctx context.Context, sku string) (Item, error) {
	var it Item
	err := p.DB.QueryRow(ctx, `
		SELECT sku, name, price_cents, kind, stock, updated_at
		FROM products WHERE sku=$1`, sku).
		Scan(&it.SKU, &it.Name, &it.PriceCents, &it.Kind, &it.Stock, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	if it.Kind != KindCombo {
		return it, nil
	}

	rows, err := p.DB.Query(ctx, `
		SELECT component_sku, qty FROM combo_components WHERE combo_sku=$1`, sku)
	if err != nil {
		return Item{}, err
	}
	defer rows.Close()

	it.Components = map[string]int{}
	for rows.Next() {
		var comp string
		var qty int
		if err := rows.Scan(&comp, &qty); err != nil {
			return Item{}, err
		}
		it.Components[comp] = qty
	}
	return it, rows.Err()
}
