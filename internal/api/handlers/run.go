package handlers

import (
	"net/http"

	"promocart/internal/logger"
	"promocart/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RunHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewRunHandler(db *gorm.DB, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		db:     db,
		logger: logger,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	var runs []models.ReconciliationRun

	page, limit, offset := pagination(c)

	// Filters
	query := h.db.Model(&models.ReconciliationRun{})

	if offerID := c.Query("offer_id"); offerID != "" {
		query = query.Where("offer_id = ?", offerID)
	}
	if cartToken := c.Query("cart_token"); cartToken != "" {
		query = query.Where("cart_token = ?", cartToken)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if failed := c.Query("failed"); failed == "true" {
		query = query.Where("error <> ''")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
