// Package orderevents follows the orders topic and logs every order event
// exactly once per consumer group, using Redis to drop redeliveries.
package orderevents

import (
	"context"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/go-shop-services/internal/kafka"
	"github.com/ariefcatur/go-shop-services/internal/orders"
	"github.com/ariefcatur/go-shop-services/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Tail struct {
	Redis       redis.Cmdable
	ServiceName string
	Log         *slog.Logger
}

// Handle is the consumer handler. Undecodable messages are logged and
// committed. A Redis failure is returned; the consumer retries the message
// and commits nothing past it on that partition.
func (t *Tail) Handle(ctx context.Context, m kafkago.Message) error {
	ev, err := kafkax.Decode[orders.Event](m.Value)
	if err != nil {
		t.Log.WarnContext(ctx, "skip undecodable order event", "partition", m.Partition, "offset", m.Offset, "error", err)
		return nil
	}
	if ev.EventID == "" {
		t.Log.WarnContext(ctx, "skip order event without id", "partition", m.Partition, "offset", m.Offset)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, t.ServiceName, ev.EventID)
	fresh, err := t.Redis.SetNX(ctx, dkey, "1", redisx.TTLDedup).Result()
	if err != nil {
		return fmt.Errorf("dedup %s: %w", ev.EventID, err)
	}
	if !fresh {
		return nil
	}

	attrs := []any{
		"event_id", ev.EventID,
		"event", ev.Event,
		"producer", ev.Producer,
		"occurred_at", ev.OccurredAt,
		"order_id", string(m.Key),
		"partition", m.Partition,
		"offset", m.Offset,
	}
	if ev.Order != nil {
		attrs = append(attrs, "user_id", ev.Order.UserID, "status", ev.Order.Status, "items", len(ev.Order.Items))
	}
	t.Log.InfoContext(ctx, "order event", attrs...)
	return nil
}
