package storefront

import (
	"promocart/internal/offers"
)

// ToSnapshot converts a storefront cart to the reconciler's snapshot. The
// promo line is recognised by final_line_price, so that is the line price kept.
func ToSnapshot(cart *Cart) offers.Snapshot {
	items := make([]offers.LineItem, len(cart.Items))
	for i, item := range cart.Items {
		variantID := item.VariantID
		if variantID == 0 {
			variantID = item.ID
		}
		items[i] = offers.LineItem{
			Key:         item.Key,
			VariantID:   variantID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.OriginalPrice,
			LinePrice:   item.FinalLinePrice,
			ProductType: item.ProductType,
		}
	}

	return offers.Snapshot{
		Items:         items,
		SubtotalPrice: cart.ItemsSubtotalPrice,
		TotalPrice:    cart.TotalPrice,
	}
}
