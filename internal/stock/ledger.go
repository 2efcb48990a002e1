// Package stock owns the authoritative available-quantity counters. Nothing
// else in the engine mutates stock.
package stock

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InsufficientStockError names the first SKU found short, with enough detail
// for the caller to adjust the cart and retry.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.SKU, e.Requested, e.Available)
}

// Delta is one SKU's reservation quantity, post combo expansion.
type Delta struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// Ledger reserves and restores stock for whole orders. Reserve is
// all-or-nothing across the SKU set; Restore is idempotent per order and
// reports which deltas it credited back (empty on a repeat).
type Ledger interface {
	Reserve(ctx context.Context, orderNumber string, deltas []Delta) error
	Restore(ctx context.Context, orderNumber string) ([]Delta, error)
}

// Memory is an in-process ledger. A single mutex serializes reservations;
// SKUs are pre-checked in ascending order before any counter moves, so a
// failed reserve leaves every counter untouched and the reported short SKU
// is deterministic.
type Memory struct {
	mu       sync.Mutex
	counts   map[string]int
	held     map[string][]Delta // order number -> deltas currently held
	released map[string]bool    // orders whose reservation was given back
}

func NewMemory(initial map[string]int) *Memory {
	counts := make(map[string]int, len(initial))
	for sku, n := range initial {
		counts[sku] = n
	}
	return &Memory{
		counts:   counts,
		held:     make(map[string][]Delta),
		released: make(map[string]bool),
	}
}

func sortDeltas(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	copy(out, deltas)
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

func (m *Memory) Reserve(_ context.Context, orderNumber string, deltas []Delta) error {
	if len(deltas) == 0 {
		return fmt.Errorf("reserve %s: empty delta set", orderNumber)
	}
	ds := sortDeltas(deltas)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[orderNumber]; ok {
		return nil // already reserved for this order
	}

	for _, d := range ds {
		if avail := m.counts[d.SKU]; avail < d.Qty {
			return &InsufficientStockError{SKU: d.SKU, Requested: d.Qty, Available: avail}
		}
	}
	for _, d := range ds {
		m.counts[d.SKU] -= d.Qty
	}
	m.held[orderNumber] = ds
	delete(m.released, orderNumber)
	return nil
}

func (m *Memory) Restore(_ context.Context, orderNumber string) ([]Delta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.held[orderNumber]
	if !ok || m.released[orderNumber] {
		return nil, nil // nothing held, or already given back
	}
	for _, d := range ds {
		m.counts[d.SKU] += d.Qty
	}
	m.released[orderNumber] = true
	delete(m.held, orderNumber)
	return ds, nil
}

// Available reports the current counter for a SKU.
func (m *Memory) Available(sku string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[sku]
}
