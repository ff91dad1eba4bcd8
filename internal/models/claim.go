package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim records that a customer received an exclusive offer in an order.
type Claim struct {
	ID         string    `json:"id" gorm:"type:uuid;primary_key"`
	OfferID    string    `json:"offer_id" gorm:"not null;uniqueIndex:idx_claim_offer_customer"`
	CustomerID string    `json:"customer_id" gorm:"not null;uniqueIndex:idx_claim_offer_customer"`
	OrderID    string    `json:"order_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
