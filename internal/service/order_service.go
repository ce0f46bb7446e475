package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/egannguyen/sales-orders/internal/authz"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/messaging"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/google/uuid"
)

// DefaultOrderEventsTopic is the topic order events are published to.
const DefaultOrderEventsTopic = "orders.events"

// ReportInvalidator drops derived report data after an order change.
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// OrderService places, revises and deletes orders. Every mutation runs in
// one transaction that covers the stock reservations, the order row and the
// event appended to the order's stream. Events are published after commit.
type OrderService struct {
	repos       repository.Repositories
	tx          repository.Transactor
	publisher   messaging.Publisher
	topic       string
	invalidator ReportInvalidator
	now         func() time.Time
}

// OrderOption configures an OrderService.
type OrderOption func(*OrderService)

// WithReportInvalidation clears cached reports after every committed order
// change, independent of event delivery.
func WithReportInvalidation(inv ReportInvalidator) OrderOption {
	return func(s *OrderService) { s.invalidator = inv }
}

func NewOrderService(
	repos repository.Repositories,
	tx repository.Transactor,
	publisher messaging.Publisher,
	topic string,
	opts ...OrderOption,
) *OrderService {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if topic == "" {
		topic = DefaultOrderEventsTopic
	}
	s := &OrderService{
		repos:     repos,
		tx:        tx,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type PlaceOrderParams struct {
	ClientID string              `json:"client_id"`
	Items    []entity.LineItem   `json:"items"`
	Total    float64             `json:"total"`
	Status   *entity.OrderStatus `json:"status,omitempty"`
}

// ReviseOrderParams holds a partial revision. Nil fields keep their value;
// a non-nil Items replaces the line items and reserves stock for them.
type ReviseOrderParams struct {
	ClientID *string             `json:"client_id,omitempty"`
	Items    []entity.LineItem   `json:"items,omitempty"`
	Total    *float64            `json:"total,omitempty"`
	Status   *entity.OrderStatus `json:"status,omitempty"`
}

// OrderHistory is the replayed event stream of an order.
type OrderHistory struct {
	Order  *entity.OrderAggregate
	Events []entity.EventStoreRecord
}

// Orders lists every order regardless of owner.
func (s *OrderService) Orders(ctx context.Context) ([]entity.Order, error) {
	return s.repos.Orders.Find(ctx, repository.OrderFilter{})
}

// SellerOrders lists the orders owned by sellerID, optionally narrowed to
// one status.
func (s *OrderService) SellerOrders(ctx context.Context, sellerID string, status entity.OrderStatus) ([]entity.Order, error) {
	if err := requireSeller(sellerID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, entity.InvalidInputf("unknown order status %q", status)
	}
	return s.repos.Orders.Find(ctx, repository.OrderFilter{
		SellerID: strings.TrimSpace(sellerID),
		Status:   status,
	})
}

func (s *OrderService) Order(ctx context.Context, sellerID, id string) (*entity.Order, error) {
	o, err := s.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, entity.ErrOrderNotFound)
	}
	if err := authz.Authorize(sellerID, *o); err != nil {
		return nil, err
	}
	return o, nil
}

// PlaceOrder reserves stock for each line item in request order and stores
// the order. A line item asking for more than is left aborts the whole
// request and no stock changes.
func (s *OrderService) PlaceOrder(ctx context.Context, sellerID string, p PlaceOrderParams) (*entity.Order, error) {
	if err := validateItems(p.Items); err != nil {
		return nil, err
	}
	if p.Total < 0 {
		return nil, entity.InvalidInputf("total must not be negative")
	}
	status := entity.OrderStatusPending
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, entity.InvalidInputf("unknown order status %q", *p.Status)
		}
		status = *p.Status
	}

	var placed entity.OrderPlaced
	order := entity.Order{
		ID:        uuid.NewString(),
		Items:     p.Items,
		Total:     p.Total,
		ClientID:  p.ClientID,
		SellerID:  strings.TrimSpace(sellerID),
		Status:    status,
		CreatedAt: s.now().UTC(),
	}

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		client, err := repos.Clients.FindByID(ctx, p.ClientID)
		if err != nil {
			return notFound(err, entity.ErrClientNotFound)
		}
		if err := authz.Authorize(sellerID, *client); err != nil {
			return err
		}
		if err := reserveStock(ctx, repos.Products, p.Items); err != nil {
			return err
		}
		if _, err := repos.Orders.Insert(ctx, order); err != nil {
			return err
		}

		placed = entity.OrderPlaced{
			OrderID:  order.ID,
			ClientID: order.ClientID,
			SellerID: order.SellerID,
			Items:    order.Items,
			Total:    order.Total,
			Status:   order.Status,
			PlacedAt: order.CreatedAt,
		}
		return repos.Events.SaveEvents(ctx, order.ID, entity.StreamTypeOrder, 0, []entity.Event{placed})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Order placed", "order_id", order.ID, "seller_id", order.SellerID, "items", len(order.Items))
	s.committed(ctx, order.ID, placed)
	return &order, nil
}

// ReviseOrder applies a partial update. The acting seller must own the
// client the order will belong to. Stock reserved by the previous line
// items is not released.
func (s *OrderService) ReviseOrder(ctx context.Context, sellerID, orderID string, p ReviseOrderParams) (*entity.Order, error) {
	if p.Items != nil {
		if err := validateItems(p.Items); err != nil {
			return nil, err
		}
	}
	if p.Total != nil && *p.Total < 0 {
		return nil, entity.InvalidInputf("total must not be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, entity.InvalidInputf("unknown order status %q", *p.Status)
	}

	var (
		updated *entity.Order
		revised entity.OrderRevised
	)
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		current, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return notFound(err, entity.ErrOrderNotFound)
		}

		clientID := current.ClientID
		if p.ClientID != nil {
			clientID = *p.ClientID
		}
		client, err := repos.Clients.FindByID(ctx, clientID)
		if err != nil {
			return notFound(err, entity.ErrClientNotFound)
		}
		if err := authz.AuthorizeOrderRevision(sellerID, *client); err != nil {
			return err
		}

		if p.Items != nil {
			if err := reserveStock(ctx, repos.Products, p.Items); err != nil {
				return err
			}
		}

		updated, err = repos.Orders.Update(ctx, orderID, repository.OrderUpdate{
			ClientID: p.ClientID,
			Items:    p.Items,
			Total:    p.Total,
			Status:   p.Status,
		})
		if err != nil {
			return notFound(err, entity.ErrOrderNotFound)
		}

		revised = entity.OrderRevised{
			OrderID:   updated.ID,
			ClientID:  updated.ClientID,
			Items:     updated.Items,
			Total:     updated.Total,
			Status:    updated.Status,
			RevisedBy: strings.TrimSpace(sellerID),
			RevisedAt: s.now().UTC(),
		}
		return appendOrderEvent(ctx, repos.Events, orderID, revised)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Order revised", "order_id", orderID, "status", updated.Status)
	s.committed(ctx, orderID, revised)
	return updated, nil
}

// DeleteOrder removes an order owned by the acting seller. Stock is not
// restored.
func (s *OrderService) DeleteOrder(ctx context.Context, sellerID, orderID string) error {
	deleted := entity.OrderDeleted{
		OrderID:   orderID,
		DeletedBy: strings.TrimSpace(sellerID),
		DeletedAt: s.now().UTC(),
	}
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		order, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return notFound(err, entity.ErrOrderNotFound)
		}
		if err := authz.AuthorizeOrderDeletion(sellerID, *order); err != nil {
			return err
		}
		if err := repos.Orders.Delete(ctx, orderID); err != nil {
			return notFound(err, entity.ErrOrderNotFound)
		}
		return appendOrderEvent(ctx, repos.Events, orderID, deleted)
	})
	if err != nil {
		return err
	}

	slog.Info("Order deleted", "order_id", orderID)
	s.committed(ctx, orderID, deleted)
	return nil
}

// History replays the event stream of an order, including deleted ones.
func (s *OrderService) History(ctx context.Context, sellerID, orderID string) (*OrderHistory, error) {
	records, err := s.repos.Events.LoadEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	if len(records) == 0 {
		return nil, entity.ErrOrderNotFound
	}

	aggregate := entity.NewOrderAggregate(orderID)
	if err := aggregate.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate order aggregate: %w", err)
	}
	if err := authz.Authorize(sellerID, aggregate); err != nil {
		return nil, err
	}
	return &OrderHistory{Order: aggregate, Events: records}, nil
}

// committed runs the after-commit side effects of an order change. Neither
// can fail the request.
func (s *OrderService) committed(ctx context.Context, orderID string, e entity.Event) {
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateReports(ctx); err != nil {
			slog.Error("Failed to invalidate reports", "order_id", orderID, "event", e.EventType(), "err", err)
		}
	}

	env, err := messaging.NewEnvelope(e)
	if err == nil {
		err = s.publisher.PublishEvent(ctx, s.topic, orderID, env)
	}
	if err != nil {
		slog.Error("Failed to publish order event", "order_id", orderID, "event", e.EventType(), "err", err)
	}
}

// reserveStock checks and decrements stock item by item, so a product
// listed twice sees its first decrement.
func reserveStock(ctx context.Context, products repository.ProductRepository, items []entity.LineItem) error {
	for _, item := range items {
		p, err := products.FindByID(ctx, item.ProductID)
		if err != nil {
			return notFound(err, entity.ErrProductNotFound)
		}
		stockErr := &entity.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   item.Quantity,
			Available:   p.Stock,
		}
		if item.Quantity > p.Stock {
			return stockErr
		}
		if err := products.DecrementStock(ctx, p.ID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrStockConflict) {
				return stockErr
			}
			return err
		}
	}
	return nil
}

// appendOrderEvent appends e at the current end of the order's stream.
// Orders created before event recording start an empty stream.
func appendOrderEvent(ctx context.Context, events repository.EventStore, orderID string, e entity.Event) error {
	records, err := events.LoadEvents(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order events: %w", err)
	}
	version := 0
	if n := len(records); n > 0 {
		version = records[n-1].Version
	}
	return events.SaveEvents(ctx, orderID, entity.StreamTypeOrder, version, []entity.Event{e})
}

func validateItems(items []entity.LineItem) error {
	if len(items) == 0 {
		return entity.InvalidInputf("order must have at least one item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return entity.InvalidInputf("item %d: product_id is required", i)
		}
		if item.Quantity <= 0 {
			return entity.InvalidInputf("item %d: quantity must be positive", i)
		}
	}
	return nil
}
