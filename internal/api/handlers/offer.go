package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"promocart/internal/logger"
	"promocart/internal/models"
	"promocart/internal/offers"
	"promocart/internal/services/reconcile"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AvailabilityRefresher re-reads an offer's promo availability from the storefront.
type AvailabilityRefresher interface {
	RefreshAvailability(ctx context.Context, offerID string) (*models.Offer, error)
}

type OfferHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	refresher AvailabilityRefresher
}

func NewOfferHandler(db *gorm.DB, logger *logger.Logger, refresher AvailabilityRefresher) *OfferHandler {
	return &OfferHandler{
		db:        db,
		logger:    logger,
		refresher: refresher,
	}
}

func (h *OfferHandler) List(c *gin.Context) {
	var list []models.Offer

	page, limit, offset := pagination(c)

	query := h.db.Model(&models.Offer{})

	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if active := c.Query("active"); active == "true" || active == "false" {
		query = query.Where("active = ?", active == "true")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": list,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *OfferHandler) Get(c *gin.Context) {
	offer, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offer})
}

func (h *OfferHandler) Create(c *gin.Context) {
	var offer models.Offer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer.ID = ""
	h.defaultBannerClass(&offer)

	if err := offer.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Create(&offer).Error; err != nil {
		h.logger.Error("Failed to create offer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": offer})
}

func (h *OfferHandler) Update(c *gin.Context) {
	offer, ok := h.find(c)
	if !ok {
		return
	}
	id := offer.ID

	if err := c.ShouldBindJSON(offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer.ID = id
	h.defaultBannerClass(offer)

	if err := offer.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Save(offer).Error; err != nil {
		h.logger.Error("Failed to update offer %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update offer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offer})
}

func (h *OfferHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.db.Delete(&models.Offer{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete offer"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Import creates an offer from the widget markup rendered by the theme.
func (h *OfferHandler) Import(c *gin.Context) {
	var request struct {
		Name          string `json:"name" binding:"required"`
		Markup        string `json:"markup" binding:"required"`
		ProductHandle string `json:"product_handle"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, attrs, err := widgetAttributes(request.Markup)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := offers.ParseAttributes(kind, attrs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer := models.OfferFromConfig(request.Name, cfg)
	offer.PromoProductHandle = request.ProductHandle

	if err := h.db.Create(offer).Error; err != nil {
		h.logger.Error("Failed to import offer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": offer})
}

// RefreshAvailability re-reads the promo variant's stock state.
func (h *OfferHandler) RefreshAvailability(c *gin.Context) {
	offer, err := h.refresher.RefreshAvailability(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, reconcile.ErrOfferNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
	case errors.Is(err, reconcile.ErrNoProductHandle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("Failed to refresh availability: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch product from storefront"})
	default:
		c.JSON(http.StatusOK, gin.H{"data": offer})
	}
}

func (h *OfferHandler) find(c *gin.Context) (*models.Offer, bool) {
	var offer models.Offer
	if err := h.db.First(&offer, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer"})
		return nil, false
	}
	return &offer, true
}

func (h *OfferHandler) defaultBannerClass(offer *models.Offer) {
	if offer.BannerClass == "" {
		offer.BannerClass = offers.DefaultBannerClass(offer.Kind)
	}
}

var widgetKinds = map[string]offers.Kind{
	"gift-with-purchase": offers.KindGiftWithPurchase,
	"missing-items":      offers.KindMissingItem,
}

// widgetAttributes finds the first offer widget element in markup and returns
// its kind and data attributes.
func widgetAttributes(markup string) (offers.Kind, map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", nil, err
	}

	el := doc.Find("gift-with-purchase, missing-items").First()
	if el.Length() == 0 {
		return "", nil, errors.New("markup contains no gift-with-purchase or missing-items element")
	}

	attrs := map[string]string{}
	for _, attr := range el.Nodes[0].Attr {
		attrs[attr.Key] = attr.Val
	}
	return widgetKinds[goquery.NodeName(el)], attrs, nil
}
