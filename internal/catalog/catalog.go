package catalog

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Kind string

const (
	KindIndividual Kind = "INDIVIDUAL"
	KindCombo      Kind = "COMBO"
)

var ErrNotFound = errors.New("catalog item not found")

// Item is a read-only view of a catalog entry. For combos, Components maps
// component SKU to required quantity and Stock is not authoritative.
type Item struct {
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	PriceCents int            `json:"price_cents"`
	Kind       Kind           `json:"kind"`
	Stock      int            `json:"stock"`
	Components map[string]int `json:"components,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Available is the effective sellable quantity: own stock for individual
// items, min over components of stock/requiredQty for combos.
func (it Item) Available(lookup func(sku string) (Item, bool)) int {
	if it.Kind != KindCombo {
		return it.Stock
	}
	avail := -1
	for sku, req := range it.Components {
		c, ok := lookup(sku)
		if !ok || req <= 0 {
			return 0
		}
		n := c.Stock / req
		if avail < 0 || n < avail {
			avail = n
		}
	}
	if avail < 0 {
		return 0
	}
	return avail
}

// Catalog is the engine's read surface over the product table. The catalog
// itself is owned by the admin surface; the order engine only reads it.
type Catalog interface {
	Lookup(ctx context.Context, sku string) (Item, error)
}

// Memory is a map-backed catalog used in tests and local runs.
type Memory struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewMemory(items ...Item) *Memory {
	m := &Memory{items: make(map[string]Item, len(items))}
	for _, it := range items {
		m.items[it.SKU] = it
	}
	return m
}

func (m *Memory) Lookup(_ context.Context, sku string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[sku]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (m *Memory) Put(it Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.SKU] = it
}
