package offers

// Decide picks the one mutation, if any, that brings the cart in line with
// cfg. Quantity is only raised to BOGO demand or forced to the exact offer
// quantity for exclusive offers; it is never lowered except by removal.
func Decide(snap Snapshot, cfg Config, e Eligibility) Decision {
	if !cfg.IsAvailable {
		return Decision{Action: NoAction(), Banner: BannerHide, Blocked: BlockedUnavailable}
	}

	claimedExclusive := cfg.WasPreviouslyClaimed && cfg.IsExclusive

	if !e.HasPromoItemInCart {
		switch {
		case claimedExclusive:
			return Decision{Action: NoAction(), Banner: BannerHide, Blocked: BlockedClaimed}
		case e.FulfillsAll:
			return Decision{Action: AddPromoItem(addQuantity(cfg, e)), Banner: BannerHide}
		default:
			return Decision{Action: NoAction(), Banner: BannerShow}
		}
	}

	banner := BannerShow
	if e.FulfillsAll {
		banner = BannerHide
	}

	item, line, ok := promoLine(snap, cfg.PromoVariantID)
	if !ok {
		// only separately purchased units are in the cart
		d := Decision{Action: NoAction(), Banner: banner}
		if wantsMutation(cfg, e) {
			d.Blocked = BlockedPaidPromoLine
		}
		return d
	}

	if !e.FulfillsAll {
		if cfg.IsExclusive {
			return Decision{Action: RemovePromoItem(line), Banner: BannerShow}
		}
		return Decision{Action: NoAction(), Banner: BannerShow}
	}

	switch {
	case claimedExclusive:
		return Decision{Action: RemovePromoItem(line), Banner: BannerHide, Blocked: BlockedClaimed}
	case !cfg.IsBogo && cfg.IsExclusive && item.Quantity != cfg.PromoQuantity:
		return Decision{Action: SetPromoQuantity(line, cfg.PromoQuantity), Banner: BannerHide}
	case cfg.IsBogo && e.BogoTarget > 0 && item.Quantity < e.BogoTarget:
		return Decision{Action: SetPromoQuantity(line, e.BogoTarget), Banner: BannerHide}
	}
	return Decision{Action: NoAction(), Banner: BannerHide}
}

func addQuantity(cfg Config, e Eligibility) int {
	if cfg.IsBogo && e.BogoTarget > 0 {
		return e.BogoTarget
	}
	return cfg.PromoQuantity
}

// wantsMutation reports whether the present-promo branch would mutate if an
// unpaid promo line existed.
func wantsMutation(cfg Config, e Eligibility) bool {
	if !e.FulfillsAll {
		return cfg.IsExclusive
	}
	return (cfg.WasPreviouslyClaimed && cfg.IsExclusive) || (!cfg.IsBogo && cfg.IsExclusive) || (cfg.IsBogo && e.BogoTarget > 0)
}
