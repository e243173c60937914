package orders

import (
	"time"
)

const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
	EventOrderDeleted = "order_deleted"

	EventVersion = 1
)

// Event is the message written to the orders topic. Order is the snapshot
// after the change; it is nil for a delete whose record vanished before it
// could be re-read.
type Event struct {
	EventID    string    `json:"event_id"`
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
	TraceID    string    `json:"trace_id,omitempty"`
	Order      *Order    `json:"order"`
}

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
