package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// OrderAggregate rebuilds the history of an order by replaying its events.
// Deleted orders keep their last known state.
type OrderAggregate struct {
	AggregateBase
	ClientID  string
	SellerID  string
	Items     []LineItem
	Total     float64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

var _ Aggregate = (*OrderAggregate)(nil)

// NewOrderAggregate creates an empty aggregate for the given order id.
func NewOrderAggregate(id string) *OrderAggregate {
	return &OrderAggregate{
		AggregateBase: AggregateBase{ID: id, Version: 0},
	}
}

func (a *OrderAggregate) OwnerID() string { return a.SellerID }

// ApplyEvent mutates the aggregate state based on the event.
func (a *OrderAggregate) ApplyEvent(e Event) error {
	if a.Deleted {
		return fmt.Errorf("order %s already deleted, cannot apply %s", a.ID, e.EventType())
	}
	switch e := e.(type) {
	case OrderPlaced:
		a.ClientID = e.ClientID
		a.SellerID = e.SellerID
		a.Items = e.Items
		a.Total = e.Total
		a.Status = e.Status
		a.CreatedAt = e.PlacedAt
		a.UpdatedAt = e.PlacedAt
	case OrderRevised:
		a.ClientID = e.ClientID
		a.Items = e.Items
		a.Total = e.Total
		a.Status = e.Status
		a.UpdatedAt = e.RevisedAt
	case OrderDeleted:
		a.Deleted = true
		a.UpdatedAt = e.DeletedAt
	default:
		return fmt.Errorf("unknown event type for OrderAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *OrderAggregate) Rehydrate(records []EventStoreRecord) error {
	for _, rec := range records {
		e, err := decodeOrderEvent(rec)
		if err != nil {
			return err
		}
		if err := a.ApplyEvent(e); err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}

func decodeOrderEvent(rec EventStoreRecord) (Event, error) {
	var (
		e   Event
		err error
	)
	switch rec.EventType {
	case EventOrderPlaced:
		var ev OrderPlaced
		err = json.Unmarshal(rec.Payload, &ev)
		e = ev
	case EventOrderRevised:
		var ev OrderRevised
		err = json.Unmarshal(rec.Payload, &ev)
		e = ev
	case EventOrderDeleted:
		var ev OrderDeleted
		err = json.Unmarshal(rec.Payload, &ev)
		e = ev
	default:
		return nil, fmt.Errorf("unknown event type in stream: %s", rec.EventType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", rec.EventType, err)
	}
	return e, nil
}
