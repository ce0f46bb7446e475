package entity

import (
	"strings"
	"time"
)

// User is a seller account. Sellers own clients and orders.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccessUnscoped marks users as readable by their own identity without an owner check.
func (User) AccessUnscoped() {}

// Product is a sellable item with a live stock counter.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessUnscoped marks products as shared across all sellers.
func (Product) AccessUnscoped() {}

// Client is a customer account owned by the seller that created it.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	SellerID  string    `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Client) OwnerID() string { return c.SellerID }

// LineItem is a (product, quantity) pair within an order.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderStatus is the lifecycle state of an order. Any status may be set
// from any other.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus normalizes s and reports whether it names a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order links a client to the products it bought. Total is supplied by the
// caller and stored as-is.
type Order struct {
	ID        string      `json:"id"`
	Items     []LineItem  `json:"items"`
	Total     float64     `json:"total"`
	ClientID  string      `json:"client_id"`
	SellerID  string      `json:"seller_id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

func (o Order) OwnerID() string { return o.SellerID }

// ClientRevenue is a row of the top clients report.
type ClientRevenue struct {
	Total  float64 `json:"total"`
	Client Client  `json:"client"`
}

// SellerRevenue is a row of the top sellers report.
type SellerRevenue struct {
	Total  float64 `json:"total"`
	Seller User    `json:"seller"`
}
