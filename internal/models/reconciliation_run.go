package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"promocart/internal/offers"
)

// ReconciliationRun is the audit record of one cycle.
type ReconciliationRun struct {
	ID                  string    `json:"id" gorm:"type:uuid;primary_key"`
	OfferID             string    `json:"offer_id" gorm:"not null;index"`
	CartToken           string    `json:"cart_token" gorm:"index"`
	CustomerID          string    `json:"customer_id"`
	Action              string    `json:"action" gorm:"type:varchar(32);not null"`
	Line                int       `json:"line"`
	Quantity            int       `json:"quantity"`
	Banner              string    `json:"banner" gorm:"type:varchar(16)"`
	Blocked             string    `json:"blocked"`
	HasPromoItemInCart  bool      `json:"has_promo_item_in_cart"`
	HasRequiredItems    bool      `json:"has_required_items"`
	HasRequiredQuantity bool      `json:"has_required_quantity"`
	MeetsMinSpend       bool      `json:"meets_min_spend"`
	FulfillsAll         bool      `json:"fulfills_all"`
	Error               string    `json:"error"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewReconciliationRun flattens an outcome. cycleErr is the error returned
// with it, if any.
func NewReconciliationRun(cartToken, customerID string, o offers.Outcome, cycleErr error) *ReconciliationRun {
	run := &ReconciliationRun{
		OfferID:             o.OfferID,
		CartToken:           cartToken,
		CustomerID:          customerID,
		Action:              o.Decision.Action.Kind.String(),
		Line:                o.Decision.Action.Line,
		Quantity:            o.Decision.Action.Quantity,
		Banner:              o.Decision.Banner.String(),
		Blocked:             o.Decision.Blocked,
		HasPromoItemInCart:  o.Eligibility.HasPromoItemInCart,
		HasRequiredItems:    o.Eligibility.HasRequiredItems,
		HasRequiredQuantity: o.Eligibility.HasRequiredQuantity,
		MeetsMinSpend:       o.Eligibility.MeetsMinSpend,
		FulfillsAll:         o.Eligibility.FulfillsAll,
	}
	if cycleErr != nil {
		run.Error = cycleErr.Error()
	}
	return run
}

func (r *ReconciliationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
