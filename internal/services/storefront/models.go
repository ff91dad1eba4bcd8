package storefront

import (
	"encoding/json"
)

// Session identifies the shopper's cart on the storefront.
type Session struct {
	CartToken string
}

// LineItem is a line of /cart.js. Id is the variant id; prices are in minor units.
type LineItem struct {
	ID                int64  `json:"id"`
	Key               string `json:"key"`
	VariantID         int64  `json:"variant_id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	Quantity          int    `json:"quantity"`
	Price             int64  `json:"price"`
	OriginalPrice     int64  `json:"original_price"`
	FinalPrice        int64  `json:"final_price"`
	LinePrice         int64  `json:"line_price"`
	OriginalLinePrice int64  `json:"original_line_price"`
	FinalLinePrice    int64  `json:"final_line_price"`
	ProductType       string `json:"product_type"`
	Handle            string `json:"handle"`
}

// Cart represents the response of the cart endpoint
type Cart struct {
	Token              string     `json:"token"`
	Note               *string    `json:"note"`
	ItemCount          int        `json:"item_count"`
	Items              []LineItem `json:"items"`
	TotalPrice         int64      `json:"total_price"`
	ItemsSubtotalPrice int64      `json:"items_subtotal_price"`
	OriginalTotalPrice int64      `json:"original_total_price"`
	TotalDiscount      int64      `json:"total_discount"`
	Currency           string     `json:"currency"`
}

// CartState is the cart returned by a change call, with rendered sections.
type CartState struct {
	Cart
	Sections map[string]string `json:"sections"`
}

// AddRequest is the form posted to the cart add endpoint.
type AddRequest struct {
	VariantID   int64
	Quantity    int
	Sections    []string
	SectionsURL string
}

// AddResponse echoes the added line item plus the requested sections.
type AddResponse struct {
	LineItem
	Sections map[string]string `json:"sections"`
}

// ChangeRequest is the JSON body of the cart change endpoint. Line is 1-based.
type ChangeRequest struct {
	Line        int      `json:"line"`
	Quantity    int      `json:"quantity"`
	Sections    []string `json:"sections,omitempty"`
	SectionsURL string   `json:"sections_url,omitempty"`
}

// Product represents the public product JSON
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	ProductType string    `json:"type"`
	Available   bool      `json:"available"`
	Variants    []Variant `json:"variants"`
}

// Variant represents a product variant
type Variant struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Sku       string `json:"sku"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

// Variant returns the variant with the given id.
func (p *Product) Variant(id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// errorPayload is what the cart endpoints send instead of a cart on failure.
type errorPayload struct {
	Status      json.RawMessage `json:"status"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

func (p errorPayload) present() bool {
	s := string(p.Status)
	return s != "" && s != "null" && s != "false" && s != `""`
}
