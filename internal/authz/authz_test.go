package authz_test

import (
	"testing"

	"github.com/egannguyen/sales-orders/internal/authz"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	client := entity.Client{ID: "c-1", SellerID: "seller-1"}

	tests := []struct {
		name    string
		acting  string
		wantErr bool
	}{
		{"owner", "seller-1", false},
		{"owner with whitespace", "  seller-1 ", false},
		{"other seller", "seller-2", true},
		{"anonymous", "", true},
		{"blank", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(tt.acting, client)
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrNotAuthorized)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderChecksUseDifferentOwners(t *testing.T) {
	// Order placed by seller-1 for a client since handed to seller-2.
	order := entity.Order{ID: "o-1", ClientID: "c-1", SellerID: "seller-1"}
	client := entity.Client{ID: "c-1", SellerID: "seller-2"}

	assert.NoError(t, authz.AuthorizeOrderRevision("seller-2", client))
	assert.ErrorIs(t, authz.AuthorizeOrderRevision("seller-1", client), entity.ErrNotAuthorized)

	assert.NoError(t, authz.AuthorizeOrderDeletion("seller-1", order))
	assert.ErrorIs(t, authz.AuthorizeOrderDeletion("seller-2", order), entity.ErrNotAuthorized)
}

func TestPermit(t *testing.T) {
	product := entity.Product{ID: "p-1"}
	client := entity.Client{ID: "c-1", SellerID: "seller-1"}

	assert.NoError(t, authz.Permit("seller-2", product))
	assert.ErrorIs(t, authz.Permit("", product), entity.ErrNotAuthorized)
	assert.NoError(t, authz.Permit("seller-1", client))
	assert.ErrorIs(t, authz.Permit("seller-2", client), entity.ErrNotAuthorized)
	assert.ErrorIs(t, authz.Permit("seller-1", struct{}{}), entity.ErrNotAuthorized)
}
