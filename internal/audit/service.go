package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/orders-admin/internal/kafka"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Deduper is satisfied by *redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type Service struct {
	Repo  Recorder
	Dedup Deduper
	Log   *slog.Logger
}

// HandleChange stores one catalog change event. A nil return lets the
// consumer commit the offset, so malformed messages are logged and dropped
// while storage failures are returned for redelivery.
func (s *Service) HandleChange(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		s.Log.Warn("drop undecodable message", "topic", m.Topic, "offset", m.Offset, "err", err)
		return nil
	}
	if _, err := uuid.Parse(env.EventID); err != nil {
		s.Log.Warn("drop event without valid id", "topic", m.Topic, "event_id", env.EventID)
		return nil
	}
	ch, err := kafkax.UnwrapPayload[orders.ResourceChanged](env.Payload)
	if err != nil {
		s.Log.Warn("drop event with bad payload", "event_id", env.EventID, "err", err)
		return nil
	}
	if orders.EventType(ch.Resource, ch.Action) == "" {
		s.Log.Warn("drop unknown change", "event_id", env.EventID, "resource", ch.Resource, "action", ch.Action)
		return nil
	}

	// 2) dedup via Redis (event_id)
	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			return nil
		}
	}

	// 3) record
	err = s.Repo.Record(ctx, Entry{
		EventID:    env.EventID,
		EventType:  env.EventType,
		Resource:   ch.Resource,
		ResourceID: ch.ResourceID,
		Action:     ch.Action,
		Producer:   env.Producer,
		OccurredAt: env.OccurredAt,
		Snapshot:   ch.Snapshot,
	})
	if err != nil {
		if s.Dedup != nil {
			if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
				s.Log.Warn("dedup forget failed", "event_id", env.EventID, "err", ferr)
			}
		}
		return fmt.Errorf("record %s: %w", env.EventID, err)
	}
	s.Log.Info("change recorded", "event_id", env.EventID, "type", env.EventType, "resource_id", ch.ResourceID)
	return nil
}
