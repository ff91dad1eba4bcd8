package offers

import (
	"fmt"
	"strconv"
	"strings"
)

// attribute names per kind, as rendered on the widget element
type attributeNames struct {
	variant, quantity, bogo, available, exclusive, claimed, bannerClass string
}

var kindAttributes = map[Kind]attributeNames{
	KindGiftWithPurchase: {
		variant:     "data-gift-variant",
		quantity:    "data-gift-quantity",
		bogo:        "data-gift-is-bogo",
		available:   "data-gift-is-available",
		exclusive:   "data-gift-is-exclusive",
		claimed:     "data-gift-was-claimed",
		bannerClass: "gwp-offer--in-cart",
	},
	KindMissingItem: {
		variant:     "data-mia-variant",
		quantity:    "data-mia-quantity",
		available:   "data-mia-is-available",
		exclusive:   "data-mia-is-exclusive",
		bannerClass: "mia-offer--in-cart",
	},
}

// DefaultBannerClass is the CSS class toggled on the offer banner when the
// promo item is in the cart.
func DefaultBannerClass(kind Kind) string {
	return kindAttributes[kind].bannerClass
}

// ParseAttributes builds a Config from widget markup attributes. Flags are
// presence attributes: any value, including empty, sets them.
func ParseAttributes(kind Kind, attrs map[string]string) (Config, error) {
	names, ok := kindAttributes[kind]
	if !ok {
		return Config{}, fmt.Errorf("unknown offer kind %q", kind)
	}

	cfg := Config{Kind: kind, BannerClass: names.bannerClass}
	var err error

	if v, ok := attrs["data-min-spend"]; ok {
		if cfg.MinSpend, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			return Config{}, fmt.Errorf("invalid data-min-spend %q: %w", v, err)
		}
	}
	if v, ok := attrs["data-required-variants"]; ok {
		if cfg.RequiredVariantIDs, err = parseIDList(v); err != nil {
			return Config{}, fmt.Errorf("invalid data-required-variants %q: %w", v, err)
		}
	}
	if v, ok := attrs["data-required-quantity"]; ok {
		if cfg.RequiredQuantity, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return Config{}, fmt.Errorf("invalid data-required-quantity %q: %w", v, err)
		}
	}
	if cfg.PromoVariantID, err = strconv.ParseInt(strings.TrimSpace(attrs[names.variant]), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", names.variant, attrs[names.variant], err)
	}
	if cfg.PromoQuantity, err = strconv.Atoi(strings.TrimSpace(attrs[names.quantity])); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", names.quantity, attrs[names.quantity], err)
	}
	if v, ok := attrs["data-excluded-product-type"]; ok {
		cfg.ExcludedProductType = strings.TrimSpace(v)
	}

	cfg.IsBogo = has(attrs, names.bogo)
	cfg.IsAvailable = has(attrs, names.available)
	cfg.IsExclusive = has(attrs, names.exclusive)
	cfg.WasPreviouslyClaimed = has(attrs, names.claimed)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func has(attrs map[string]string, name string) bool {
	if name == "" {
		return false
	}
	_, ok := attrs[name]
	return ok
}

func parseIDList(v string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
