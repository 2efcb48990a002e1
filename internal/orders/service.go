package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChristianDiazS/miappventas-sub002/internal/stock"
)

// CacheInvalidator drops cached catalog entries after a stock mutation. The
// cached catalog decorator implements it; tests pass nil.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, skus ...string)
}

// Service turns carts into priced, stock-safe orders and drives them through
// the lifecycle. It is the only constructor of Orders; stock counters move
// only through the Ledger.
type Service struct {
	Resolver  *Resolver
	Calc      *Calculator
	Ledger    stock.Ledger
	Repo      Repo
	Publisher Publisher
	Cache     CacheInvalidator
}

// CreateOrder resolves combos, reserves stock for the whole cart, prices it
// and persists the order in the initial state. Reservation and persistence
// form one logical unit: a persistence failure rolls the reservation back
// before the error reaches the caller.
func (s *Service) CreateOrder(ctx context.Context, userID string, cart []CartLine, method ShippingMethod) (*Order, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	if !ValidShippingMethod(method) {
		return nil, fmt.Errorf("unknown shipping method %q", method)
	}

	resolved, err := s.Resolver.Resolve(ctx, cart)
	if err != nil {
		return nil, err
	}
	totals, err := s.Calc.Price(resolved.Lines, method)
	if err != nil {
		return nil, err
	}

	number, err := s.Repo.NextNumber(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "order number", Err: err}
	}

	if err := s.Ledger.Reserve(ctx, number, resolved.Deltas); err != nil {
		return nil, err
	}
	s.invalidate(ctx, resolved.Deltas)

	now := time.Now().UTC()
	o := &Order{
		Number:        number,
		UserID:        userID,
		Items:         resolved.Lines,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		ShippingCents: totals.ShippingCents,
		TotalCents:    totals.TotalCents,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Shipping:      method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, o); err != nil {
		// no order may be left half-created with stock consumed
		if _, rerr := s.Ledger.Restore(ctx, number); rerr != nil {
			slog.Error("reservation rollback failed", "order", number, "err", rerr)
		}
		s.invalidate(ctx, resolved.Deltas)
		return nil, &PersistenceError{Op: "create order", Err: err}
	}

	s.Publisher.Publish(ctx, EventOrderCreated, number, OrderCreatedPayload{
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Items:         o.Items,
		SubtotalCents: o.SubtotalCents,
		TaxCents:      o.TaxCents,
		ShippingCents: o.ShippingCents,
		TotalCents:    o.TotalCents,
	})
	return o, nil
}

// CancelOrder transitions an order to CANCELLED and gives its reserved stock
// back. Legal from PENDING and CONFIRMED only; the ledger's held/released
// flag makes the restore a no-op on any repeat.
func (s *Service) CancelOrder(ctx context.Context, number string) (*Order, error) {
	return s.AdvanceOrder(ctx, number, StatusCancelled)
}

// AdvanceOrder applies one lifecycle transition. Shipping progression never
// touches stock; cancellation restores it exactly once.
func (s *Service) AdvanceOrder(ctx context.Context, number string, to Status) (*Order, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("unknown status %q", to)
	}
	o, err := s.Repo.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	from := o.Status
	next, err := Transition(from, to)
	if err != nil {
		return nil, err
	}

	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, o, from); err != nil {
		return nil, updateErr("update status", err)
	}

	if next == StatusCancelled {
		restored, err := s.Ledger.Restore(ctx, number)
		if err != nil {
			slog.Error("stock restore on cancel failed", "order", number, "err", err)
		}
		s.invalidate(ctx, restored)
		s.Publisher.Publish(ctx, EventOrderCancelled, number,
			OrderCancelledPayload{OrderNumber: number, From: from})
	} else {
		s.Publisher.Publish(ctx, EventOrderStatusChanged, number,
			OrderStatusChangedPayload{OrderNumber: number, From: from, To: next})
	}
	return o, nil
}

// OnPaymentResult applies an asynchronous payment outcome. Completed payment
// confirms a pending order; a failed payment leaves it pending so payment
// can be retried. Stock was reserved at creation and is never touched here.
func (s *Service) OnPaymentResult(ctx context.Context, number string, result PaymentStatus) (*Order, error) {
	if result != PaymentCompleted && result != PaymentFailed {
		return nil, fmt.Errorf("unknown payment result %q", result)
	}
	o, err := s.Repo.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == result {
		return o, nil // duplicate webhook delivery
	}

	from := o.Status
	o.PaymentStatus = result
	if result == PaymentCompleted && o.Status == StatusPending {
		next, err := Transition(o.Status, StatusConfirmed)
		if err != nil {
			return nil, err
		}
		o.Status = next
	}

	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, o, from); err != nil {
		return nil, updateErr("update payment", err)
	}
	s.Publisher.Publish(ctx, EventPaymentUpdated, number, PaymentUpdatedPayload{
		OrderNumber:   number,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.Status,
	})
	return o, nil
}

// GetOrder reads one order; the HTTP layer caches the response.
func (s *Service) GetOrder(ctx context.Context, number string) (*Order, error) {
	return s.Repo.Get(ctx, number)
}

// updateErr keeps lost compare-and-set races and missing orders as domain
// errors; anything else is infrastructure and retryable.
func updateErr(op string, err error) error {
	var te *InvalidTransitionError
	if errors.As(err, &te) || errors.Is(err, ErrOrderNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (s *Service) invalidate(ctx context.Context, deltas []stock.Delta) {
	if s.Cache == nil || len(deltas) == 0 {
		return
	}
	skus := make([]string, len(deltas))
	for i, d := range deltas {
		skus[i] = d.SKU
	}
	s.Cache.Invalidate(ctx, skus...)
}
