package orders

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "STANDARD"
	ShippingExpress  ShippingMethod = "EXPRESS"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Transition returns to if the move is legal, otherwise the unchanged from
// plus an InvalidTransitionError.
func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, &InvalidTransitionError{From: from, To: to}
	}
	return to, nil
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

func ValidShippingMethod(m ShippingMethod) bool {
	return m == ShippingStandard || m == ShippingExpress
}
