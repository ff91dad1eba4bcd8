package handlers

import (
	"net/http"

	"promocart/internal/logger"
	"promocart/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClaimHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewClaimHandler(db *gorm.DB, logger *logger.Logger) *ClaimHandler {
	return &ClaimHandler{
		db:     db,
		logger: logger,
	}
}

func (h *ClaimHandler) List(c *gin.Context) {
	var claims []models.Claim

	page, limit, offset := pagination(c)

	query := h.db.Model(&models.Claim{})

	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if offerID := c.Query("offer_id"); offerID != "" {
		query = query.Where("offer_id = ?", offerID)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&claims).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claims"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": claims,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Create records a claim made outside the order stream, e.g. a back-office import.
func (h *ClaimHandler) Create(c *gin.Context) {
	var request struct {
		OfferID    string `json:"offer_id" binding:"required"`
		CustomerID string `json:"customer_id" binding:"required"`
		OrderID    string `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim := models.Claim{OfferID: request.OfferID, CustomerID: request.CustomerID, OrderID: request.OrderID}
	if err := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim).Error; err != nil {
		h.logger.Error("Failed to create claim: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create claim"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": claim})
}
