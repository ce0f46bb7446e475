package entity

import "time"

const (
	EventOrderPlaced  = "OrderPlaced"
	EventOrderRevised = "OrderRevised"
	EventOrderDeleted = "OrderDeleted"

	// StreamTypeOrder tags event streams keyed by order id.
	StreamTypeOrder = "order"
)

// OrderPlaced is emitted once an order and its stock reservations are committed.
type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	ClientID string      `json:"client_id"`
	SellerID string      `json:"seller_id"`
	Items    []LineItem  `json:"items"`
	Total    float64     `json:"total"`
	Status   OrderStatus `json:"status"`
	PlacedAt time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return EventOrderPlaced }

// OrderRevised carries the state of an order after a revision.
type OrderRevised struct {
	OrderID   string      `json:"order_id"`
	ClientID  string      `json:"client_id"`
	Items     []LineItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	RevisedBy string      `json:"revised_by"`
	RevisedAt time.Time   `json:"revised_at"`
}

func (e OrderRevised) EventType() string { return EventOrderRevised }

// OrderDeleted is emitted when an order is removed. Stock is not restored.
type OrderDeleted struct {
	OrderID   string    `json:"order_id"`
	DeletedBy string    `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (e OrderDeleted) EventType() string { return EventOrderDeleted }
