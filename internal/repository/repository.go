package repository

import (
	"context"
	"errors"

	"github.com/egannguyen/sales-orders/internal/entity"
)

var (
	// ErrNotFound is returned when a lookup by id or key matches nothing.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrStockConflict is returned when a conditional stock decrement
	// matched no row because stock was lower than requested.
	ErrStockConflict = errors.New("repository: stock conflict")
	// ErrVersionConflict is returned when an event stream moved past the
	// expected version.
	ErrVersionConflict = errors.New("repository: version conflict")
)

// UserRepository handles persistence for Users.
type UserRepository interface {
	Insert(ctx context.Context, u entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// ProductUpdate holds the fields of a partial product update. Nil fields
// are left unchanged.
type ProductUpdate struct {
	Name  *string
	Stock *int
	Price *float64
}

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	Insert(ctx context.Context, p entity.Product) (*entity.Product, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
	// DecrementStock lowers stock by qty only if at least qty is left.
	DecrementStock(ctx context.Context, id string, qty int) error
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// ClientUpdate holds the fields of a partial client update.
type ClientUpdate struct {
	Name    *string
	Surname *string
	Company *string
	Email   *string
	Phone   *string
}

// ClientRepository handles persistence for Clients.
type ClientRepository interface {
	FindAll(ctx context.Context) ([]entity.Client, error)
	FindBySeller(ctx context.Context, sellerID string) ([]entity.Client, error)
	FindByID(ctx context.Context, id string) (*entity.Client, error)
	Insert(ctx context.Context, c entity.Client) (*entity.Client, error)
	Update(ctx context.Context, id string, upd ClientUpdate) (*entity.Client, error)
	Delete(ctx context.Context, id string) error
}

// OrderUpdate holds the fields of a partial order update. A non-nil Items
// replaces the stored line items.
type OrderUpdate struct {
	ClientID *string
	Items    []entity.LineItem
	Total    *float64
	Status   *entity.OrderStatus
}

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	SellerID string
	Status   entity.OrderStatus
}

// OrderRepository handles persistence for Orders and their line items.
type OrderRepository interface {
	Find(ctx context.Context, filter OrderFilter) ([]entity.Order, error)
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	Insert(ctx context.Context, o entity.Order) (*entity.Order, error)
	Update(ctx context.Context, id string, upd OrderUpdate) (*entity.Order, error)
	Delete(ctx context.Context, id string) error
}

// ReportRepository runs the fixed revenue aggregations over completed orders.
type ReportRepository interface {
	// ClientRevenue returns completed-order totals per client, highest first.
	ClientRevenue(ctx context.Context) ([]entity.ClientRevenue, error)
	// SellerRevenue returns completed-order totals per seller in seller id
	// order. Ranking is left to the caller.
	SellerRevenue(ctx context.Context) ([]entity.SellerRevenue, error)
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
}

// Repositories groups the repositories bound to one Querier.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Clients  ClientRepository
	Orders   OrderRepository
	Reports  ReportRepository
	Events   EventStore
}

// Transactor runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
