package orders

import (
	"context"
	"strconv"

	kafkax "github.com/ariefcatur/go-shop-services/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes order events to the orders topic, keyed by order id.
type KafkaPublisher struct {
	Producer *kafkax.Producer
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, orderID string, ev Event) error {
	return p.Producer.Publish(ctx, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(ev.Event)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(EventVersion))},
	)
}
