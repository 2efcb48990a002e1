package orders

import (
	"context"
	"time"

	kafkax "github.com/ChristianDiazS/miappventas-sub002/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher emits lifecycle events. Publishing is best effort: the order is
// already committed when an event goes out, so a broker hiccup never fails
// the request.
type Publisher interface {
	Publish(ctx context.Context, eventType, orderNumber string, payload any)
}

// KafkaPublisher routes each event type to its producer.
type KafkaPublisher struct {
	Producers   map[string]*kafkax.Producer // event type -> producer
	ServiceName string
}

func (p *KafkaPublisher) Publish(_ context.Context, eventType, orderNumber string, payload any) {
	prod, ok := p.Producers[eventType]
	if !ok {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		CorrelationID: orderNumber,
		Payload:       kafkax.MustMarshal(payload),
	}
	prod.Publish(PartitionKey(orderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// NopPublisher drops everything; used in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) {}
