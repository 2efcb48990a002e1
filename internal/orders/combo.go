package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChristianDiazS/miappventas-sub002/internal/catalog"
	"github.com/ChristianDiazS/miappventas-sub002/internal/stock"
)

// Resolved is a cart after combo expansion. Lines are what gets priced and
// frozen into the order; Deltas are what the ledger reserves. For individual
// items the two coincide. A combo contributes one priced line for its own
// SKU (the bundle price, charged once) and one delta per component (the
// component stock, consumed per unit of the bundle).
type Resolved struct {
	Lines  []LineItem
	Deltas []stock.Delta
}

// Resolver expands cart lines against the catalog.
type Resolver struct {
	Catalog catalog.Catalog
}

func (r *Resolver) Resolve(ctx context.Context, cart []CartLine) (Resolved, error) {
	var out Resolved
	deltas := map[string]int{} // same SKU across cart lines accumulates
	var order []string         // first-seen ordering of delta SKUs

	add := func(sku string, qty int) {
		if _, ok := deltas[sku]; !ok {
			order = append(order, sku)
		}
		deltas[sku] += qty
	}

	for _, line := range cart {
		if line.Qty <= 0 {
			return Resolved{}, fmt.Errorf("invalid qty %d for sku %s", line.Qty, line.SKU)
		}
		it, err := r.Catalog.Lookup(ctx, line.SKU)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return Resolved{}, fmt.Errorf("unknown sku %s", line.SKU)
			}
			return Resolved{}, err
		}

		out.Lines = append(out.Lines, LineItem{
			SKU:            it.SKU,
			Qty:            line.Qty,
			UnitPriceCents: it.PriceCents,
			SubtotalCents:  line.Qty * it.PriceCents,
		})

		if it.Kind != catalog.KindCombo {
			add(it.SKU, line.Qty)
			continue
		}
		if err := r.expandCombo(ctx, it, line.Qty, add); err != nil {
			return Resolved{}, err
		}
	}

	out.Deltas = make([]stock.Delta, 0, len(order))
	for _, sku := range order {
		out.Deltas = append(out.Deltas, stock.Delta{SKU: sku, Qty: deltas[sku]})
	}
	return out, nil
}

// expandCombo walks a combo's components and accumulates stock deltas. Combos
// are not nestable; a component that is itself a combo, or a component chain
// that reaches the combo again, is a data-integrity fault.
func (r *Resolver) expandCombo(ctx context.Context, combo catalog.Item, qty int, add func(string, int)) error {
	seen := map[string]bool{combo.SKU: true}

	type frame struct {
		item catalog.Item
		mult int
	}
	stack := []frame{{item: combo, mult: qty}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// a combo that consumes no stock would create an unrestorable order
		if len(f.item.Components) == 0 {
			return fmt.Errorf("combo %s has no components", f.item.SKU)
		}

		for compSKU, reqQty := range f.item.Components {
			if reqQty <= 0 {
				return &UnknownComponentError{Combo: combo.SKU, Component: compSKU}
			}
			comp, err := r.Catalog.Lookup(ctx, compSKU)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return &UnknownComponentError{Combo: combo.SKU, Component: compSKU}
				}
				return err
			}
			if comp.Kind == catalog.KindCombo {
				if seen[comp.SKU] {
					return &CircularComboError{Combo: combo.SKU}
				}
				seen[comp.SKU] = true
				stack = append(stack, frame{item: comp, mult: f.mult * reqQty})
				continue
			}
			add(comp.SKU, f.mult*reqQty)
		}
	}
	return nil
}
