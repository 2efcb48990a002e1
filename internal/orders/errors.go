package orders

import (
	"errors"
	"fmt"
)

// ErrEmptyCart and ErrInsufficientStock are the only errors expected under
// normal operation; everything else is a data-integrity or infrastructure
// fault and is surfaced generically to callers.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// UnknownComponentError: a combo references a SKU that does not exist.
// Data-integrity fault, never retried.
type UnknownComponentError struct {
	Combo     string
	Component string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("combo %s references unknown component %s", e.Combo, e.Component)
}

// CircularComboError: a combo reaches itself transitively. Combos are not
// nestable, so this is always a data-integrity fault.
type CircularComboError struct {
	Combo string
}

func (e *CircularComboError) Error() string {
	return fmt.Sprintf("combo %s references itself", e.Combo)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// PersistenceError wraps a store failure. The reservation has already been
// rolled back by the time the caller sees one; the operation is retryable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
