// Package offers reconciles a storefront cart against a promotional offer:
// gift-with-purchase (GWP) and missing-item add-on (MIA). One engine serves
// both kinds; the kind only changes which eligibility rule runs.
package offers

import "fmt"

// LineItem is one cart line. Prices are in currency minor units.
type LineItem struct {
	Key         string `json:"key"`
	VariantID   int64  `json:"variant_id"`
	ProductID   int64  `json:"product_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LinePrice   int64  `json:"line_price"`
	ProductType string `json:"product_type"`
}

// Snapshot is the cart as last reported by the storefront. It is never
// mutated; a fresh fetch replaces it after every mutation.
type Snapshot struct {
	Items         []LineItem `json:"items"`
	SubtotalPrice int64      `json:"subtotal_price"`
	TotalPrice    int64      `json:"total_price"`
}

type Kind string

const (
	KindGiftWithPurchase Kind = "gwp"
	KindMissingItem      Kind = "mia"
)

// Valid reports whether k is a known offer kind.
func (k Kind) Valid() bool {
	return k == KindGiftWithPurchase || k == KindMissingItem
}

const defaultExcludedProductType = "donation"

// Config is the static description of one offer.
type Config struct {
	ID                   string  `json:"id"`
	Kind                 Kind    `json:"kind"`
	MinSpend             int64   `json:"min_spend"`
	RequiredVariantIDs   []int64 `json:"required_variant_ids,omitempty"`
	RequiredQuantity     int     `json:"required_quantity,omitempty"`
	PromoVariantID       int64   `json:"promo_variant_id"`
	PromoQuantity        int     `json:"promo_quantity"`
	IsBogo               bool    `json:"is_bogo"`
	IsAvailable          bool    `json:"is_available"`
	IsExclusive          bool    `json:"is_exclusive"`
	WasPreviouslyClaimed bool    `json:"was_previously_claimed"`
	ExcludedProductType  string  `json:"excluded_product_type,omitempty"`
	BannerClass          string  `json:"banner_class,omitempty"`
}

// Validate checks the fields every offer needs.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown offer kind %q", c.Kind)
	}
	if c.PromoVariantID <= 0 {
		return fmt.Errorf("promo variant id is required")
	}
	if c.PromoQuantity <= 0 {
		return fmt.Errorf("promo quantity must be positive")
	}
	if c.MinSpend < 0 {
		return fmt.Errorf("min spend must not be negative")
	}
	if c.RequiredQuantity < 0 {
		return fmt.Errorf("required quantity must not be negative")
	}
	return nil
}

func (c Config) excludedProductType() string {
	if c.ExcludedProductType != "" {
		return c.ExcludedProductType
	}
	return defaultExcludedProductType
}

func (c Config) hasVariantConstraint() bool {
	return len(c.RequiredVariantIDs) > 0
}

func (c Config) requires(variantID int64) bool {
	for _, id := range c.RequiredVariantIDs {
		if id == variantID {
			return true
		}
	}
	return false
}

// Eligibility is recomputed on every cycle and never stored.
type Eligibility struct {
	HasPromoItemInCart  bool `json:"has_promo_item_in_cart"`
	HasRequiredItems    bool `json:"has_required_items"`
	HasRequiredQuantity bool `json:"has_required_quantity"`
	MeetsMinSpend       bool `json:"meets_min_spend"`
	FulfillsAll         bool `json:"fulfills_all"`
	// BogoTarget is the qualifying purchased quantity for BOGO offers, zero otherwise.
	BogoTarget int `json:"bogo_target,omitempty"`
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionAddPromoItem
	ActionSetPromoQuantity
	ActionRemovePromoItem
)

var actionNames = map[ActionKind]string{
	ActionNone:             "none",
	ActionAddPromoItem:     "add_promo_item",
	ActionSetPromoQuantity: "set_promo_quantity",
	ActionRemovePromoItem:  "remove_promo_item",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(k))
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	for kind, name := range actionNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", string(text))
}

// Action is the single cart mutation chosen for a cycle. Line is the 1-based
// index of the unpaid promo line and is unset for adds.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Line     int        `json:"line,omitempty"`
	Quantity int        `json:"quantity,omitempty"`
}

func NoAction() Action { return Action{Kind: ActionNone} }

func AddPromoItem(qty int) Action {
	return Action{Kind: ActionAddPromoItem, Quantity: qty}
}

func SetPromoQuantity(line, qty int) Action {
	return Action{Kind: ActionSetPromoQuantity, Line: line, Quantity: qty}
}

func RemovePromoItem(line int) Action {
	return Action{Kind: ActionRemovePromoItem, Line: line}
}

// IsMutation reports whether applying a requires a storefront call.
func (a Action) IsMutation() bool {
	return a.Kind != ActionNone
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAddPromoItem:
		return fmt.Sprintf("%s(qty=%d)", a.Kind, a.Quantity)
	case ActionSetPromoQuantity:
		return fmt.Sprintf("%s(line=%d, qty=%d)", a.Kind, a.Line, a.Quantity)
	case ActionRemovePromoItem:
		return fmt.Sprintf("%s(line=%d)", a.Kind, a.Line)
	}
	return a.Kind.String()
}

// Banner is the requested state of the on-page offer banner.
type Banner int

const (
	BannerUnchanged Banner = iota
	BannerShow
	BannerHide
)

func (b Banner) String() string {
	switch b {
	case BannerShow:
		return "show"
	case BannerHide:
		return "hide"
	}
	return "unchanged"
}

func (b Banner) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Banner) UnmarshalText(text []byte) error {
	switch string(text) {
	case "show":
		*b = BannerShow
	case "hide":
		*b = BannerHide
	case "unchanged", "":
		*b = BannerUnchanged
	default:
		return fmt.Errorf("unknown banner state %q", string(text))
	}
	return nil
}

// Reasons a decision withholds a mutation that the rule would otherwise want.
const (
	BlockedUnavailable   = "promo_unavailable"
	BlockedClaimed       = "claimed_exclusive"
	BlockedPaidPromoLine = "promo_line_paid"
)

type Decision struct {
	Action  Action `json:"action"`
	Banner  Banner `json:"banner"`
	Blocked string `json:"blocked,omitempty"`
}

// Outcome is everything a caller needs to present one cycle.
type Outcome struct {
	OfferID      string            `json:"offer_id"`
	Kind         Kind              `json:"kind"`
	Decision     Decision          `json:"decision"`
	Eligibility  Eligibility       `json:"eligibility"`
	Sections     map[string]string `json:"sections,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}
