package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/google/uuid"
)

const sqlInsertEvent = `
	INSERT INTO events (id, stream_id, stream_type, version, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

type eventStore struct {
	q   database.Querier
	now func() time.Time
}

// NewEventStore creates an EventStore over q. Appends are atomic with the
// caller's other writes when q is a transaction.
func NewEventStore(q database.Querier) repository.EventStore {
	return &eventStore{q: q, now: time.Now}
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	var currentVersion int
	err := s.q.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1", streamID).Scan(&currentVersion)
	if err != nil {
		return mapErr(err, "get current stream version")
	}
	if currentVersion != expectedVersion {
		return fmt.Errorf("stream %s: expected version %d, got %d: %w",
			streamID, expectedVersion, currentVersion, repository.ErrVersionConflict)
	}

	version := expectedVersion
	now := s.now().UTC()
	for _, event := range events {
		version++

		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}

		_, err = s.q.Exec(ctx, sqlInsertEvent, uuid.NewString(), streamID, streamType, version, event.EventType(), string(payload), now)
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("stream %s at version %d: %w", streamID, version, repository.ErrVersionConflict)
		}
		if err != nil {
			return mapErr(err, "insert event "+event.EventType())
		}
	}
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	rows, err := s.q.Query(ctx, "SELECT id, stream_id, stream_type, version, event_type, payload, created_at FROM events WHERE stream_id = $1 ORDER BY version ASC", streamID)
	if err != nil {
		return nil, mapErr(err, "load events for stream "+streamID)
	}
	defer rows.Close()

	var events []entity.EventStoreRecord
	for rows.Next() {
		var record entity.EventStoreRecord
		if err := rows.Scan(&record.ID, &record.StreamID, &record.StreamType, &record.Version, &record.EventType, &record.Payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		events = append(events, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}
