package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one row of audit_events.
type Entry struct {
	EventID    string
	EventType  string
	Resource   string
	ResourceID int64
	Action     string
	Producer   string
	OccurredAt time.Time
	Snapshot   json.RawMessage
}

type Repo struct{ DB *pgxpool.Pool }

// Record inserts e. Replays of an already stored event are ignored.
func (r *Repo) Record(ctx context.Context, e Entry) error {
	var snap []byte
	if len(e.Snapshot) > 0 {
		snap = e.Snapshot
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO audit_events (event_id, event_type, resource, resource_id, action, producer, occurred_at, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.EventType, e.Resource, e.ResourceID, e.Action, e.Producer, e.OccurredAt, snap)
	return err
}
