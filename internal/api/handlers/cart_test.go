package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"promocart/internal/logger"
	"promocart/internal/offers"
	"promocart/internal/services/reconcile"
	"promocart/internal/services/storefront"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCartReconciler struct {
	requests []reconcile.CartRequest
	outcome  offers.Outcome
	cfg      offers.Config
	err      error
}

func (f *fakeCartReconciler) ReconcileCart(ctx context.Context, req reconcile.CartRequest, p offers.Presenter) ([]offers.Outcome, error) {
	f.requests = append(f.requests, req)
	offers.Present(p, f.cfg, f.outcome)
	return []offers.Outcome{f.outcome}, f.err
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func addedOutcome() offers.Outcome {
	return offers.Outcome{
		OfferID:  "gwp",
		Kind:     offers.KindGiftWithPurchase,
		Decision: offers.Decision{Action: offers.AddPromoItem(1), Banner: offers.BannerHide},
		Sections: map[string]string{"cart-icon-bubble": "<span>2</span>"},
	}
}

func TestCartReconcile(t *testing.T) {
	rec := &fakeCartReconciler{outcome: addedOutcome(), cfg: offers.Config{ID: "gwp", Kind: offers.KindGiftWithPurchase}}
	h := NewCartHandler(rec, logger.Nop())

	w := postJSON(t, h.Reconcile, map[string]interface{}{"cart_token": "tok", "customer_id": "cust-1", "cart_page": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []reconcile.CartRequest{{CartToken: "tok", CustomerID: "cust-1", CartPage: true}}, rec.requests)

	body := decode(t, w)
	presentation := body["presentation"].(map[string]interface{})
	banner := presentation["banners"].(map[string]interface{})["gwp"].(map[string]interface{})
	assert.Equal(t, true, banner["in_cart"])
	assert.Equal(t, "gwp-offer--in-cart", banner["class"])
	assert.Equal(t, "<span>2</span>", presentation["sections"].(map[string]interface{})["cart-icon-bubble"])
	assert.Len(t, body["data"], 1)
}

func TestCartReconcileRequiresToken(t *testing.T) {
	h := NewCartHandler(&fakeCartReconciler{}, logger.Nop())
	w := postJSON(t, h.Reconcile, map[string]interface{}{"customer_id": "cust-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartReconcileErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:   "mutation failure is presented, not failed",
			err:    fmt.Errorf("%w: add: %w", offers.ErrMutationFailed, errors.New("422")),
			status: http.StatusOK,
		},
		{
			name:    "application error",
			err:     fmt.Errorf("failed to fetch cart: %w", &storefront.ApplicationError{Status: "422", Description: "Cart is locked"}),
			status:  http.StatusUnprocessableEntity,
			message: "Cart is locked",
		},
		{
			name:    "transport error",
			err:     fmt.Errorf("failed to fetch cart: %w", &storefront.TransportError{StatusCode: 503}),
			status:  http.StatusBadGateway,
			message: "Failed to reach storefront",
		},
		{
			name:    "anything else",
			err:     errors.New("db down"),
			status:  http.StatusInternalServerError,
			message: "Failed to reconcile cart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCartHandler(&fakeCartReconciler{err: tt.err}, logger.Nop())
			w := postJSON(t, h.Reconcile, map[string]interface{}{"cart_token": "tok"})
			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, w)["error"])
			}
		})
	}
}

func TestCartReconcilePage(t *testing.T) {
	outcome := addedOutcome()
	outcome.ErrorMessage = offers.GenericCartError
	rec := &fakeCartReconciler{outcome: outcome, cfg: offers.Config{ID: "gwp", Kind: offers.KindGiftWithPurchase}}
	h := NewCartHandler(rec, logger.Nop())

	w := postJSON(t, h.ReconcilePage, map[string]interface{}{
		"cart_token": "tok",
		"page": `<html><body><div id="gwp-banner">Free tote</div>` +
			`<div id="cart-icon-bubble"><span>1</span></div><p id="cart-errors"></p></body></html>`,
		"banners": map[string]string{"gwp": "#gwp-banner"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "tok", rec.requests[0].CartToken)

	page := decode(t, w)["page"].(string)
	assert.Contains(t, page, `<div id="gwp-banner" class="gwp-offer--in-cart">Free tote</div>`)
	assert.Contains(t, page, `<div id="cart-icon-bubble"><span>2</span></div>`)
	assert.Contains(t, page, `<p id="cart-errors">`+offers.GenericCartError+`</p>`)
}

func TestCartReconcilePageRequiresPage(t *testing.T) {
	h := NewCartHandler(&fakeCartReconciler{}, logger.Nop())
	w := postJSON(t, h.ReconcilePage, map[string]interface{}{"cart_token": "tok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
