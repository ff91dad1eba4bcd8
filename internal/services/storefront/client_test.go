package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"promocart/internal/config"
	"promocart/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		StorefrontURL: srv.URL + "/",
		Routes: config.Routes{
			Cart:       "/cart.js",
			CartAdd:    "/cart/add.js",
			CartChange: "/cart/change.js",
			Products:   "/products",
		},
		StorefrontTimeout: 5 * time.Second,
	}
	return NewClient(cfg, logger.Nop())
}

func TestGetCart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart.js", r.URL.Path)
		cookie, err := r.Cookie("cart")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", cookie.Value)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"token": "tok-1",
			"item_count": 3,
			"items_subtotal_price": 6000,
			"total_price": 6000,
			"currency": "USD",
			"items": [
				{"id": 111, "variant_id": 111, "key": "111:a", "quantity": 2, "original_price": 3000, "final_line_price": 6000, "product_type": "Shirt"},
				{"id": 222, "variant_id": 222, "key": "222:b", "quantity": 1, "original_price": 1000, "final_line_price": 0}
			]
		}`)
	})

	cart, err := client.GetCart(context.Background(), Session{CartToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cart.Token)
	assert.Equal(t, int64(6000), cart.ItemsSubtotalPrice)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(0), cart.Items[1].FinalLinePrice)
}

func TestAddItemPostsForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/add.js", r.URL.Path)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "222", r.PostForm.Get("id"))
		assert.Equal(t, "1", r.PostForm.Get("quantity"))
		assert.Equal(t, "main-cart-items,cart-icon-bubble", r.PostForm.Get("sections"))
		assert.Equal(t, "/cart", r.PostForm.Get("sections_url"))

		_, _ = io.WriteString(w, `{"id": 222, "quantity": 1, "sections": {"cart-icon-bubble": "<div>1</div>"}}`)
	})

	added, err := client.AddItem(context.Background(), Session{CartToken: "tok"}, AddRequest{
		VariantID:   222,
		Quantity:    1,
		Sections:    []string{"main-cart-items", "cart-icon-bubble"},
		SectionsURL: "/cart",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(222), added.ID)
	assert.Equal(t, "<div>1</div>", added.Sections["cart-icon-bubble"])
}

func TestChangeLinePostsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart/change.js", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var change ChangeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&change))
		assert.Equal(t, ChangeRequest{Line: 2, Quantity: 0, Sections: []string{"cart-icon-bubble"}, SectionsURL: "/"}, change)

		_, _ = io.WriteString(w, `{"token": "tok", "items": [], "sections": {"cart-icon-bubble": "<div>0</div>"}}`)
	})

	state, err := client.ChangeLine(context.Background(), Session{CartToken: "tok"}, ChangeRequest{
		Line: 2, Quantity: 0, Sections: []string{"cart-icon-bubble"}, SectionsURL: "/",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", state.Token)
	assert.Equal(t, "<div>0</div>", state.Sections["cart-icon-bubble"])
}

func TestGetProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/free-tote.js", r.URL.Path)
		_, err := r.Cookie("cart")
		assert.ErrorIs(t, err, http.ErrNoCookie)
		_, _ = io.WriteString(w, `{"id": 9, "handle": "free-tote", "available": true, "variants": [{"id": 222, "available": false}]}`)
	})

	product, err := client.GetProduct(context.Background(), "free-tote")
	require.NoError(t, err)
	v, ok := product.Variant(222)
	require.True(t, ok)
	assert.False(t, v.Available)
	_, ok = product.Variant(1)
	assert.False(t, ok)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "status field is an application error",
			status: http.StatusUnprocessableEntity,
			body:   `{"status": 422, "message": "Cart Error", "description": "You can only add 1 of this item."}`,
			check: func(t *testing.T, err error) {
				var appErr *ApplicationError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, "422", appErr.Status)
				assert.Equal(t, "You can only add 1 of this item.", appErr.UserMessage())
			},
		},
		{
			name:   "status field with 200 is still an application error",
			status: http.StatusOK,
			body:   `{"status": "bad_request", "message": "Invalid line"}`,
			check: func(t *testing.T, err error) {
				var appErr *ApplicationError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, "bad_request", appErr.Status)
				assert.Equal(t, "Invalid line", appErr.UserMessage())
			},
		},
		{
			name:   "server error without status field",
			status: http.StatusInternalServerError,
			body:   "upstream exploded",
			check: func(t *testing.T, err error) {
				var tErr *TransportError
				require.True(t, errors.As(err, &tErr))
				assert.Equal(t, http.StatusInternalServerError, tErr.StatusCode)
				assert.Equal(t, "API request failed: 500 - upstream exploded", err.Error())
			},
		},
		{
			name:   "undecodable body",
			status: http.StatusOK,
			body:   "<html>maintenance</html>",
			check: func(t *testing.T, err error) {
				var tErr *TransportError
				require.True(t, errors.As(err, &tErr))
				assert.Contains(t, err.Error(), "failed to decode response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.GetCart(context.Background(), Session{CartToken: "tok"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	cfg := &config.Config{StorefrontURL: "http://127.0.0.1:1", Routes: config.Routes{Cart: "/cart.js"}, StorefrontTimeout: time.Second}
	client := NewClient(cfg, logger.Nop())

	_, err := client.GetCart(context.Background(), Session{})
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Contains(t, err.Error(), "failed to make request")
}
