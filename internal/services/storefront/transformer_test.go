package storefront

import (
	"testing"

	"promocart/internal/offers"

	"github.com/stretchr/testify/assert"
)

func TestToSnapshot(t *testing.T) {
	cart := &Cart{
		ItemsSubtotalPrice: 5000,
		TotalPrice:         4500,
		Items: []LineItem{
			{ID: 111, VariantID: 111, ProductID: 1, Key: "111:a", Quantity: 2, OriginalPrice: 2500, LinePrice: 5000, FinalLinePrice: 5000, ProductType: "Shirt"},
			{ID: 222, Key: "222:b", Quantity: 1, OriginalPrice: 1000, LinePrice: 1000, FinalLinePrice: 0},
		},
	}

	assert.Equal(t, offers.Snapshot{
		SubtotalPrice: 5000,
		TotalPrice:    4500,
		Items: []offers.LineItem{
			{Key: "111:a", VariantID: 111, ProductID: 1, Quantity: 2, UnitPrice: 2500, LinePrice: 5000, ProductType: "Shirt"},
			{Key: "222:b", VariantID: 222, Quantity: 1, UnitPrice: 1000, LinePrice: 0},
		},
	}, ToSnapshot(cart))
}

func TestToSnapshotEmptyCart(t *testing.T) {
	snap := ToSnapshot(&Cart{})
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.SubtotalPrice)
}
