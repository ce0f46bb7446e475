// Package authz decides whether a seller may act on a resource.
//
// Resources come in two kinds. OwnerScoped resources (clients, orders)
// belong to the seller that created them and only that seller may read or
// change them. Unscoped resources (products, the caller's own user) are
// shared: any authenticated seller may act on them.
package authz

import (
	"strings"

	"github.com/egannguyen/sales-orders/internal/entity"
)

// OwnerScoped is implemented by resources owned by a single seller.
type OwnerScoped interface {
	OwnerID() string
}

// Unscoped is implemented by resources shared by every seller.
type Unscoped interface {
	AccessUnscoped()
}

var (
	_ OwnerScoped = entity.Client{}
	_ OwnerScoped = entity.Order{}
	_ OwnerScoped = (*entity.OrderAggregate)(nil)
	_ Unscoped    = entity.Product{}
	_ Unscoped    = entity.User{}
)

// Authorize allows actingSellerID to act on resource only if it owns it.
func Authorize(actingSellerID string, resource OwnerScoped) error {
	acting := strings.TrimSpace(actingSellerID)
	if acting == "" || acting != strings.TrimSpace(resource.OwnerID()) {
		return entity.ErrNotAuthorized
	}
	return nil
}

// AuthorizeOrderRevision checks a revision against the owner of the client
// the order will belong to, not the order's stored owner.
func AuthorizeOrderRevision(actingSellerID string, target entity.Client) error {
	return Authorize(actingSellerID, target)
}

// AuthorizeOrderDeletion checks a deletion against the order's own owner.
func AuthorizeOrderDeletion(actingSellerID string, order entity.Order) error {
	return Authorize(actingSellerID, order)
}

// Permit dispatches on the resource kind. Unscoped resources only need an
// authenticated seller.
func Permit(actingSellerID string, resource any) error {
	switch r := resource.(type) {
	case OwnerScoped:
		return Authorize(actingSellerID, r)
	case Unscoped:
		if strings.TrimSpace(actingSellerID) == "" {
			return entity.ErrNotAuthorized
		}
		return nil
	}
	return entity.ErrNotAuthorized
}
