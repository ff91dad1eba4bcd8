// Package sections extracts the replaceable parts of server-rendered theme
// sections returned by the cart endpoints.
package sections

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Section names a rendered section and the element inside it whose inner
// HTML replaces the live page content. An empty Selector uses the whole body.
type Section struct {
	ID       string `json:"id"`
	Selector string `json:"selector,omitempty"`
}

const (
	IDCartIconBubble = "cart-icon-bubble"
	IDMainCartItems  = "main-cart-items"
	IDCartLiveRegion = "cart-live-region-text"
	IDMainCartFooter = "main-cart-footer"

	shopifySection = ".shopify-section"
)

// CartIconBubble is rendered when the shopper is not on the cart page.
func CartIconBubble() []Section {
	return []Section{{ID: IDCartIconBubble, Selector: shopifySection}}
}

// CartItems is rendered on the cart page.
func CartItems() []Section {
	return []Section{
		{ID: IDMainCartItems, Selector: ".js-contents"},
		{ID: IDCartIconBubble, Selector: shopifySection},
		{ID: IDCartLiveRegion, Selector: shopifySection},
		{ID: IDMainCartFooter, Selector: ".js-contents"},
	}
}

// IDs returns the section ids to request from the storefront.
func IDs(list []Section) []string {
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Extract returns, per requested section, the inner HTML of its selector in
// the rendered fragment. Sections the storefront did not render are skipped.
func Extract(rendered map[string]string, list []Section) (map[string]string, error) {
	out := make(map[string]string, len(list))
	for _, s := range list {
		raw, ok := rendered[s.ID]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		inner, err := InnerHTML(raw, s.Selector)
		if err != nil {
			return nil, fmt.Errorf("failed to extract section %s: %w", s.ID, err)
		}
		out[s.ID] = inner
	}
	return out, nil
}

// InnerHTML parses html and returns the inner HTML of the first match of
// selector, or of the body when selector is empty or matches nothing.
func InnerHTML(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	sel := doc.Find("body")
	if selector != "" {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			sel = match
		}
	}
	inner, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return strings.TrimSpace(inner), nil
}
