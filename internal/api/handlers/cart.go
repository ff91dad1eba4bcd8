package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"promocart/internal/logger"
	"promocart/internal/offers"
	"promocart/internal/presenter"
	"promocart/internal/sections"
	"promocart/internal/services/reconcile"
	"promocart/internal/services/storefront"

	"github.com/gin-gonic/gin"
)

// CartReconciler runs every active offer against a cart.
type CartReconciler interface {
	ReconcileCart(ctx context.Context, req reconcile.CartRequest, p offers.Presenter) ([]offers.Outcome, error)
}

type CartHandler struct {
	reconciler CartReconciler
	logger     *logger.Logger
}

func NewCartHandler(reconciler CartReconciler, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// PageRequest carries a server-rendered page to patch with the outcome.
// Banners maps offer ids to banner selectors.
type PageRequest struct {
	reconcile.CartRequest
	Page    string            `json:"page" binding:"required"`
	Banners map[string]string `json:"banners"`
}

// Reconcile runs a cycle for the posted cart and returns what the page
// should show: banner states, refreshed sections and the cart error text.
func (h *CartHandler) Reconcile(c *gin.Context) {
	var request reconcile.CartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := presenter.NewRecorder()
	outcomes, err := h.reconciler.ReconcileCart(c.Request.Context(), request, rec)

	h.respond(c, gin.H{
		"data":         outcomes,
		"presentation": rec.View(),
	}, err)
}

// ReconcilePage runs a cycle and returns the posted page with banners,
// sections and the error region updated.
func (h *CartHandler) ReconcilePage(c *gin.Context) {
	var request PageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := sections.CartIconBubble()
	if request.CartPage {
		list = sections.CartItems()
	}
	doc, err := presenter.NewDocument(strings.NewReader(request.Page), request.Banners, list)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page markup"})
		return
	}

	rec := presenter.NewRecorder()
	outcomes, cycleErr := h.reconciler.ReconcileCart(c.Request.Context(), request.CartRequest, presenter.Multi{rec, doc})

	page, err := doc.HTML()
	if err != nil {
		h.logger.Error("Failed to render page: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render page"})
		return
	}

	h.respond(c, gin.H{
		"data":         outcomes,
		"presentation": rec.View(),
		"page":         page,
	}, cycleErr)
}

// respond maps a reconciliation error to a status. A failed mutation is
// already in the presentation, so it is still a 200.
func (h *CartHandler) respond(c *gin.Context, body gin.H, err error) {
	var appErr *storefront.ApplicationError
	var transportErr *storefront.TransportError
	switch {
	case err == nil, errors.Is(err, offers.ErrMutationFailed):
		c.JSON(http.StatusOK, body)
	case errors.As(err, &appErr):
		body["error"] = appErr.UserMessage()
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &transportErr):
		h.logger.Error("Storefront unreachable for cart reconciliation: %v", err)
		body["error"] = "Failed to reach storefront"
		c.JSON(http.StatusBadGateway, body)
	default:
		h.logger.Error("Failed to reconcile cart: %v", err)
		body["error"] = "Failed to reconcile cart"
		c.JSON(http.StatusInternalServerError, body)
	}
}
