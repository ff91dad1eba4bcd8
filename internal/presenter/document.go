package presenter

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"promocart/internal/offers"
	"promocart/internal/sections"
)

const errorRegionSelector = "#cart-errors"

// Document applies presentation calls to a parsed HTML page.
type Document struct {
	doc       *goquery.Document
	banners   map[string]string
	selectors map[string]string
}

// NewDocument parses page. banners maps offer ids to the selector of their
// banner element; offers without an entry use [data-offer-id="<id>"].
// list gives the inner selector replaced for each section id.
func NewDocument(page io.Reader, banners map[string]string, list []sections.Section) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	selectors := make(map[string]string, len(list))
	for _, s := range list {
		selectors[s.ID] = s.Selector
	}
	if banners == nil {
		banners = map[string]string{}
	}
	return &Document{doc: doc, banners: banners, selectors: selectors}, nil
}

func (d *Document) SetBanner(offerID, class string, state offers.Banner) {
	selector, ok := d.banners[offerID]
	if !ok {
		selector = fmt.Sprintf(`[data-offer-id=%q]`, offerID)
	}

	sel := d.doc.Find(selector)
	switch state {
	case offers.BannerHide:
		sel.AddClass(class)
	case offers.BannerShow:
		sel.RemoveClass(class)
	}
}

func (d *Document) ReplaceSections(fragments map[string]string) {
	for id, html := range fragments {
		target := d.doc.Find("#" + id).First()
		if target.Length() == 0 {
			continue
		}
		if selector := d.selectors[id]; selector != "" {
			if inner := target.Find(selector).First(); inner.Length() > 0 {
				target = inner
			}
		}
		target.SetHtml(html)
	}
}

func (d *Document) ShowError(message string) {
	d.doc.Find(errorRegionSelector).SetText(message)
}

// HTML renders the whole page.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}
