package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderStatus    = "order.status.changed"
	TopicOrderPayment   = "order.payment.updated"
)

// Partition key = order number, so all events of one order keep their order.
func PartitionKey(orderNumber string) []byte { return []byte(orderNumber) }
