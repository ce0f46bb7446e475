package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_DecrementsStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)

	order, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 2}},
		Total:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, e.stock(t, p1))
	assert.Equal(t, 20.0, order.Total)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, s.ID, order.SellerID)
	assert.False(t, order.CreatedAt.IsZero())

	stored, err := e.orders.Order(ctx, s.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Equal(t, 20.0, stored.Total)

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, "orders.events", e.publisher.events[0].topic)
	assert.Equal(t, order.ID, e.publisher.events[0].key)
	assert.Equal(t, entity.EventOrderPlaced, e.publisher.events[0].env.Type)
}

func TestPlaceOrder_LaterItemsSeeEarlierDecrements(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 5)

	_, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items: []entity.LineItem{
			{ProductID: p1, Quantity: 3},
			{ProductID: p1, Quantity: 3},
		},
	})
	var stockErr *entity.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "P1", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)

	assert.Equal(t, 5, e.stock(t, p1))
}

func TestPlaceOrder_InsufficientStockRollsBackEarlierItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)
	p2 := e.product(t, "P2", 1)

	_, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items: []entity.LineItem{
			{ProductID: p1, Quantity: 4},
			{ProductID: p2, Quantity: 2},
		},
		Total: 60,
	})
	require.ErrorIs(t, err, entity.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "P2")

	assert.Equal(t, 10, e.stock(t, p1))
	assert.Equal(t, 1, e.stock(t, p2))

	orders, err := e.orders.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, e.publisher.events)
}

func TestPlaceOrder_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s1 := e.seller(t, "s1@sales.test")
	s2 := e.seller(t, "s2@sales.test")
	c := e.client(t, s1.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)
	item := []entity.LineItem{{ProductID: p1, Quantity: 1}}

	tests := []struct {
		name   string
		seller string
		params service.PlaceOrderParams
		want   error
	}{
		{"unknown client", s1.ID, service.PlaceOrderParams{ClientID: "missing", Items: item}, entity.ErrClientNotFound},
		{"other seller's client", s2.ID, service.PlaceOrderParams{ClientID: c.ID, Items: item}, entity.ErrNotAuthorized},
		{"anonymous", "", service.PlaceOrderParams{ClientID: c.ID, Items: item}, entity.ErrNotAuthorized},
		{"unknown product", s1.ID, service.PlaceOrderParams{ClientID: c.ID, Items: []entity.LineItem{{ProductID: "missing", Quantity: 1}}}, entity.ErrProductNotFound},
		{"no items", s1.ID, service.PlaceOrderParams{ClientID: c.ID}, entity.ErrInvalidInput},
		{"zero quantity", s1.ID, service.PlaceOrderParams{ClientID: c.ID, Items: []entity.LineItem{{ProductID: p1}}}, entity.ErrInvalidInput},
		{"negative total", s1.ID, service.PlaceOrderParams{ClientID: c.ID, Items: item, Total: -1}, entity.ErrInvalidInput},
		{"bad status", s1.ID, service.PlaceOrderParams{ClientID: c.ID, Items: item, Status: statusPtr("SHIPPED")}, entity.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.orders.PlaceOrder(ctx, tt.seller, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, e.stock(t, p1))
}

func TestPlaceOrder_PublishFailureDoesNotFailRequest(t *testing.T) {
	e := newEnv(t)
	e.publisher.err = errors.New("broker down")
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 3)

	order, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 1}},
	})
	require.NoError(t, err)

	history, err := e.orders.History(ctx, s.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, history.Events, 1)
}

func TestReviseOrder_StatusHasNoTransitionGraph(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)

	order, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 1}},
		Total:    10,
	})
	require.NoError(t, err)

	for _, status := range []entity.OrderStatus{entity.OrderStatusCompleted, entity.OrderStatusPending, entity.OrderStatusCancelled, entity.OrderStatusCompleted} {
		updated, err := e.orders.ReviseOrder(ctx, s.ID, order.ID, service.ReviseOrderParams{Status: statusPtr(status)})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, 10.0, updated.Total)
		assert.Equal(t, order.Items, updated.Items)
	}
	assert.Equal(t, 9, e.stock(t, p1))

	history, err := e.orders.History(ctx, s.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, history.Events, 5)
	assert.Equal(t, 5, history.Order.GetVersion())
	assert.Equal(t, entity.OrderStatusCompleted, history.Order.Status)
}

func TestReviseOrder_NewItemsReserveStockAgain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.seller(t, "s1@sales.test")
	c := e.client(t, s.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)

	order, err := e.orders.PlaceOrder(ctx, s.ID, service.PlaceOrderParams{
		ClientID: c.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 2}},
	})
	require.NoError(t, err)

	total := 30.0
	updated, err := e.orders.ReviseOrder(ctx, s.ID, order.ID, service.ReviseOrderParams{
		Items: []entity.LineItem{{ProductID: p1, Quantity: 3}},
		Total: &total,
	})
	require.NoError(t, err)
	assert.Equal(t, []entity.LineItem{{ProductID: p1, Quantity: 3}}, updated.Items)
	assert.Equal(t, 30.0, updated.Total)
	// The first reservation of 2 is kept.
	assert.Equal(t, 5, e.stock(t, p1))

	_, err = e.orders.ReviseOrder(ctx, s.ID, order.ID, service.ReviseOrderParams{
		Items: []entity.LineItem{{ProductID: p1, Quantity: 6}},
	})
	require.ErrorIs(t, err, entity.ErrInsufficientStock)
	assert.Equal(t, 5, e.stock(t, p1))

	stored, err := e.orders.Order(ctx, s.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []entity.LineItem{{ProductID: p1, Quantity: 3}}, stored.Items)
}

func TestReviseOrder_AuthorizesAgainstClientOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s1 := e.seller(t, "s1@sales.test")
	s2 := e.seller(t, "s2@sales.test")
	c1 := e.client(t, s1.ID, "c1@client.test")
	c2 := e.client(t, s2.ID, "c2@client.test")
	p1 := e.product(t, "P1", 10)

	order, err := e.orders.PlaceOrder(ctx, s1.ID, service.PlaceOrderParams{
		ClientID: c1.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = e.orders.ReviseOrder(ctx, s2.ID, order.ID, service.ReviseOrderParams{Status: statusPtr(entity.OrderStatusCompleted)})
	assert.ErrorIs(t, err, entity.ErrNotAuthorized)

	// Moving the order to s2's client is checked against that client's owner.
	_, err = e.orders.ReviseOrder(ctx, s1.ID, order.ID, service.ReviseOrderParams{ClientID: &c2.ID})
	assert.ErrorIs(t, err, entity.ErrNotAuthorized)

	updated, err := e.orders.ReviseOrder(ctx, s2.ID, order.ID, service.ReviseOrderParams{ClientID: &c2.ID})
	require.NoError(t, err)
	assert.Equal(t, c2.ID, updated.ClientID)
	assert.Equal(t, s1.ID, updated.SellerID)

	missing := "missing"
	_, err = e.orders.ReviseOrder(ctx, s1.ID, order.ID, service.ReviseOrderParams{ClientID: &missing})
	assert.ErrorIs(t, err, entity.ErrClientNotFound)

	_, err = e.orders.ReviseOrder(ctx, s1.ID, "missing", service.ReviseOrderParams{})
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s1 := e.seller(t, "s1@sales.test")
	s2 := e.seller(t, "s2@sales.test")
	c1 := e.client(t, s1.ID, "c1@client.test")
	p1 := e.product(t, "P1", 10)

	order, err := e.orders.PlaceOrder(ctx, s1.ID, service.PlaceOrderParams{
		ClientID: c1.ID,
		Items:    []entity.LineItem{{ProductID: p1, Quantity: 4}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.orders.DeleteOrder(ctx, s2.ID, order.ID), entity.ErrNotAuthorized)
	require.NoError(t, e.orders.DeleteOrder(ctx, s1.ID, order.ID))
	assert.ErrorIs(t, e.orders.DeleteOrder(ctx, s1.ID, order.ID), entity.ErrOrderNotFound)

	_, err = e.orders.Order(ctx, s1.ID, order.ID)
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
	// Stock is not restored.
	assert.Equal(t, 6, e.stock(t, p1))

	history, err := e.orders.History(ctx, s1.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, history.Order.Deleted)
	_, err = e.orders.History(ctx, s2.ID, order.ID)
	assert.ErrorIs(t, err, entity.ErrNotAuthorized)

	assert.Equal(t, []string{entity.EventOrderPlaced, entity.EventOrderDeleted}, e.publisher.types())
}

func TestOrderReads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s1 := e.seller(t, "s1@sales.test")
	s2 := e.seller(t, "s2@sales.test")
	c1 := e.client(t, s1.ID, "c1@client.test")
	c2 := e.client(t, s2.ID, "c2@client.test")
	p1 := e.product(t, "P1", 10)
	item := []entity.LineItem{{ProductID: p1, Quantity: 1}}

	o1, err := e.orders.PlaceOrder(ctx, s1.ID, service.PlaceOrderParams{ClientID: c1.ID, Items: item})
	require.NoError(t, err)
	_, err = e.orders.PlaceOrder(ctx, s1.ID, service.PlaceOrderParams{ClientID: c1.ID, Items: item, Status: statusPtr(entity.OrderStatusCompleted)})
	require.NoError(t, err)
	_, err = e.orders.PlaceOrder(ctx, s2.ID, service.PlaceOrderParams{ClientID: c2.ID, Items: item})
	require.NoError(t, err)

	all, err := e.orders.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := e.orders.SellerOrders(ctx, s1.ID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	completed, err := e.orders.SellerOrders(ctx, s1.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, entity.OrderStatusCompleted, completed[0].Status)

	_, err = e.orders.SellerOrders(ctx, s1.ID, "SHIPPED")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = e.orders.Order(ctx, s2.ID, o1.ID)
	assert.ErrorIs(t, err, entity.ErrNotAuthorized)
	_, err = e.orders.Order(ctx, s1.ID, "missing")
	assert.ErrorIs(t, err, entity.ErrOrderNotFound)
}
