package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"promocart/internal/offers"
)

// Int64List is stored as a JSON array in a text column
type Int64List []int64

// Value implements the driver.Valuer interface
func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]int64(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *Int64List) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(raw, (*[]int64)(l))
}

type Offer struct {
	ID                  string      `json:"id" gorm:"type:uuid;primary_key"`
	Name                string      `json:"name" gorm:"not null"`
	Kind                offers.Kind `json:"kind" gorm:"type:varchar(8);not null;index"`
	Active              bool        `json:"active" gorm:"index"`
	MinSpend            int64       `json:"min_spend"`
	RequiredVariantIDs  Int64List   `json:"required_variant_ids" gorm:"type:text"`
	RequiredQuantity    int         `json:"required_quantity"`
	PromoVariantID      int64       `json:"promo_variant_id" gorm:"not null"`
	PromoProductHandle  string      `json:"promo_product_handle"`
	PromoQuantity       int         `json:"promo_quantity" gorm:"not null"`
	IsBogo              bool        `json:"is_bogo"`
	IsAvailable         bool        `json:"is_available"`
	IsExclusive         bool        `json:"is_exclusive"`
	ExcludedProductType string      `json:"excluded_product_type"`
	BannerClass         string      `json:"banner_class"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Config converts the stored offer for one customer's cycle. Only gift
// offers can be claimed; claimed is ignored for missing-item offers.
func (o *Offer) Config(claimed bool) offers.Config {
	return offers.Config{
		ID:                   o.ID,
		Kind:                 o.Kind,
		MinSpend:             o.MinSpend,
		RequiredVariantIDs:   []int64(o.RequiredVariantIDs),
		RequiredQuantity:     o.RequiredQuantity,
		PromoVariantID:       o.PromoVariantID,
		PromoQuantity:        o.PromoQuantity,
		IsBogo:               o.IsBogo,
		IsAvailable:          o.IsAvailable,
		IsExclusive:          o.IsExclusive,
		WasPreviouslyClaimed: claimed && o.Kind == offers.KindGiftWithPurchase,
		ExcludedProductType:  o.ExcludedProductType,
		BannerClass:          o.BannerClass,
	}
}

// Claimable reports whether receiving the promo item once blocks it for the
// customer afterwards.
func (o *Offer) Claimable() bool {
	return o.Kind == offers.KindGiftWithPurchase && o.IsExclusive
}

// OfferFromConfig builds an active offer from a parsed widget config.
func OfferFromConfig(name string, cfg offers.Config) *Offer {
	return &Offer{
		Name:                name,
		Kind:                cfg.Kind,
		Active:              true,
		MinSpend:            cfg.MinSpend,
		RequiredVariantIDs:  Int64List(cfg.RequiredVariantIDs),
		RequiredQuantity:    cfg.RequiredQuantity,
		PromoVariantID:      cfg.PromoVariantID,
		PromoQuantity:       cfg.PromoQuantity,
		IsBogo:              cfg.IsBogo,
		IsAvailable:         cfg.IsAvailable,
		IsExclusive:         cfg.IsExclusive,
		ExcludedProductType: cfg.ExcludedProductType,
		BannerClass:         cfg.BannerClass,
	}
}

// Validate checks the offer the same way a parsed widget config is checked.
func (o *Offer) Validate() error {
	if o.Name == "" {
		return errors.New("name is required")
	}
	return o.Config(false).Validate()
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
