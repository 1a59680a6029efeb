package redisx

import "time"

const (
	// Cached GET /products body
	KeyProductsList = "cache:products"
	// Cached GET /orders body (items embed product names)
	KeyOrdersList = "cache:orders"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLListCache = 30 * time.Second
	TTLDedup     = 48 * time.Hour
)
