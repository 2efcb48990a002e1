package orders

import (
	"context"
	"fmt"
	"sync"
)

// MemRepo keeps orders in a map; used in tests and local runs without
// postgres.
type MemRepo struct {
	mu     sync.RWMutex
	seq    int64
	byNum  map[string]Order
	failOn map[string]error // number -> error injected on Create
}

func NewMemRepo() *MemRepo {
	return &MemRepo{byNum: make(map[string]Order), failOn: make(map[string]error)}
}

func (r *MemRepo) NextNumber(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("ORD-%06d", r.seq), nil
}

func (r *MemRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failOn[o.Number]; ok {
		return err
	}
	if _, exists := r.byNum[o.Number]; exists {
		return fmt.Errorf("order %s already exists", o.Number)
	}
	r.byNum[o.Number] = cloneOrder(o)
	return nil
}

func (r *MemRepo) Get(_ context.Context, number string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byNum[number]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := cloneOrder(&o)
	return &cp, nil
}

func (r *MemRepo) UpdateStatus(_ context.Context, o *Order, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byNum[o.Number]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Status != from {
		return &InvalidTransitionError{From: stored.Status, To: o.Status}
	}
	stored.Status = o.Status
	stored.PaymentStatus = o.PaymentStatus
	stored.UpdatedAt = o.UpdatedAt
	r.byNum[o.Number] = stored
	return nil
}

// FailNextCreate makes the next Create for the given number fail with err.
func (r *MemRepo) FailNextCreate(number string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[number] = err
}

func cloneOrder(o *Order) Order {
	cp := *o
	cp.Items = make([]LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	return cp
}
