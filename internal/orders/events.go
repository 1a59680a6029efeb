package orders

import (
	"encoding/json"
	"time"
)

const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
	EventOrderCreated   = "OrderCreated"
	EventOrderUpdated   = "OrderUpdated"
)

const (
	ResourceProduct = "product"
	ResourceOrder   = "order"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "catalog-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // resource id
	Payload       json.RawMessage `json:"payload"`
}

// ResourceChanged is the payload of every catalog change event. Snapshot is
// the resource as stored after the change (empty on delete).
type ResourceChanged struct {
	Resource   string          `json:"resource"`
	ResourceID int64           `json:"resource_id"`
	Action     string          `json:"action"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
}

// EventType maps a resource/action pair to its event name.
func EventType(resource, action string) string {
	switch resource + "/" + action {
	case ResourceProduct + "/" + ActionCreated:
		return EventProductCreated
	case ResourceProduct + "/" + ActionUpdated:
		return EventProductUpdated
	case ResourceProduct + "/" + ActionDeleted:
		return EventProductDeleted
	case ResourceOrder + "/" + ActionCreated:
		return EventOrderCreated
	case ResourceOrder + "/" + ActionUpdated:
		return EventOrderUpdated
	}
	return ""
}
