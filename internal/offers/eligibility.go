package offers

import "strings"

// Evaluate computes the eligibility flags of cfg against snap. It has no side
// effects and may be called any number of times.
func Evaluate(snap Snapshot, cfg Config) Eligibility {
	var e Eligibility
	if cfg.Kind == KindMissingItem {
		e = evaluateMissingItem(snap, cfg)
	} else {
		e = evaluateGift(snap, cfg)
	}
	e.HasPromoItemInCart = hasPromoItem(snap, cfg.PromoVariantID)
	e.FulfillsAll = e.HasRequiredItems && e.HasRequiredQuantity && e.MeetsMinSpend
	return e
}

func evaluateGift(snap Snapshot, cfg Config) Eligibility {
	requiredQty := requiredItemsQuantity(snap, cfg)

	e := Eligibility{
		HasRequiredItems:    !cfg.hasVariantConstraint(),
		HasRequiredQuantity: true,
		MeetsMinSpend:       snap.SubtotalPrice >= cfg.MinSpend+extraPromoSurcharge(snap, cfg.PromoVariantID),
	}

	if cfg.hasVariantConstraint() {
		for _, item := range snap.Items {
			if cfg.requires(item.VariantID) {
				e.HasRequiredItems = true
				break
			}
		}
		if cfg.RequiredQuantity > 0 {
			e.HasRequiredQuantity = requiredQty >= cfg.RequiredQuantity
		}
		if cfg.IsBogo {
			e.BogoTarget = requiredQty
		}
	}
	return e
}

// A missing-item offer needs at least one paid line that is not the promo
// item and not an excluded product type, and a cart with something to pay.
func evaluateMissingItem(snap Snapshot, cfg Config) Eligibility {
	excluded := strings.ToLower(strings.TrimSpace(cfg.excludedProductType()))

	e := Eligibility{
		HasRequiredQuantity: true,
		MeetsMinSpend:       snap.TotalPrice > 0 && snap.TotalPrice >= cfg.MinSpend,
	}
	for _, item := range snap.Items {
		if item.VariantID == cfg.PromoVariantID || item.LinePrice == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(strings.TrimSpace(item.ProductType)), excluded) {
			continue
		}
		e.HasRequiredItems = true
		break
	}
	return e
}

func requiredItemsQuantity(snap Snapshot, cfg Config) int {
	total := 0
	for _, item := range snap.Items {
		if cfg.requires(item.VariantID) {
			total += item.Quantity
		}
	}
	return total
}

// extraPromoSurcharge is the unit price of every separately purchased promo
// line, so already-discounted promo units cannot count towards min spend.
func extraPromoSurcharge(snap Snapshot, promoVariantID int64) int64 {
	var extra int64
	for _, item := range snap.Items {
		if item.VariantID == promoVariantID && item.LinePrice != 0 {
			extra += item.UnitPrice
		}
	}
	return extra
}

func hasPromoItem(snap Snapshot, promoVariantID int64) bool {
	for _, item := range snap.Items {
		if item.VariantID == promoVariantID {
			return true
		}
	}
	return false
}

// promoLine returns the unpaid promo line and its 1-based index. Paid lines of
// the same variant are customer purchases and are never returned.
func promoLine(snap Snapshot, promoVariantID int64) (LineItem, int, bool) {
	for i, item := range snap.Items {
		if item.VariantID == promoVariantID && item.LinePrice == 0 {
			return item, i + 1, true
		}
	}
	return LineItem{}, 0, false
}
