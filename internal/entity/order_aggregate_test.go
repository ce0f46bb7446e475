package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, version int, e entity.Event) entity.EventStoreRecord {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return entity.EventStoreRecord{
		StreamID:   "o-1",
		StreamType: entity.StreamTypeOrder,
		Version:    version,
		EventType:  e.EventType(),
		Payload:    payload,
	}
}

func TestOrderAggregate_Rehydrate(t *testing.T) {
	placedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	revisedAt := placedAt.Add(time.Hour)

	records := []entity.EventStoreRecord{
		record(t, 1, entity.OrderPlaced{
			OrderID:  "o-1",
			ClientID: "c-1",
			SellerID: "s-1",
			Items:    []entity.LineItem{{ProductID: "p-1", Quantity: 2}},
			Total:    40,
			Status:   entity.OrderStatusPending,
			PlacedAt: placedAt,
		}),
		record(t, 2, entity.OrderRevised{
			OrderID:   "o-1",
			ClientID:  "c-1",
			Items:     []entity.LineItem{{ProductID: "p-1", Quantity: 2}},
			Total:     40,
			Status:    entity.OrderStatusCompleted,
			RevisedBy: "s-1",
			RevisedAt: revisedAt,
		}),
	}

	agg := entity.NewOrderAggregate("o-1")
	require.NoError(t, agg.Rehydrate(records))

	assert.Equal(t, 2, agg.GetVersion())
	assert.Equal(t, "s-1", agg.OwnerID())
	assert.Equal(t, entity.OrderStatusCompleted, agg.Status)
	assert.True(t, agg.CreatedAt.Equal(placedAt))
	assert.True(t, agg.UpdatedAt.Equal(revisedAt))
	assert.False(t, agg.Deleted)
}

func TestOrderAggregate_RejectsEventsAfterDelete(t *testing.T) {
	agg := entity.NewOrderAggregate("o-1")
	require.NoError(t, agg.ApplyEvent(entity.OrderPlaced{OrderID: "o-1", SellerID: "s-1"}))
	require.NoError(t, agg.ApplyEvent(entity.OrderDeleted{OrderID: "o-1", DeletedBy: "s-1"}))

	err := agg.ApplyEvent(entity.OrderRevised{OrderID: "o-1"})
	require.Error(t, err)
	assert.True(t, agg.Deleted)
	assert.Equal(t, 2, agg.GetVersion())
}

func TestOrderAggregate_UnknownEventType(t *testing.T) {
	agg := entity.NewOrderAggregate("o-1")
	err := agg.Rehydrate([]entity.EventStoreRecord{{EventType: "OrderShipped", Payload: []byte(`{}`)}})
	require.Error(t, err)
}

func TestOrderAggregate_AppliesThroughAggregate(t *testing.T) {
	var agg entity.Aggregate = entity.NewOrderAggregate("o-1")

	require.NoError(t, agg.ApplyEvent(entity.OrderPlaced{OrderID: "o-1", SellerID: "s-1", Status: entity.OrderStatusPending}))
	require.NoError(t, agg.ApplyEvent(entity.OrderDeleted{OrderID: "o-1", DeletedBy: "s-1"}))

	assert.Equal(t, "o-1", agg.GetAggregateID())
	assert.Equal(t, 2, agg.GetVersion())
	assert.Error(t, agg.ApplyEvent(entity.OrderRevised{OrderID: "o-1"}))
	assert.Equal(t, 2, agg.GetVersion())
}
