package redisx

import "time"

const (
	// Order record: order:{order_id} -> JSON blob
	KeyOrder = "order:%s"

	// Pattern for listing every order record.
	KeyOrderPattern = "order:*"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
