package storefront

import (
	"context"
	"fmt"

	"promocart/internal/offers"
	"promocart/internal/sections"
)

// CartAPI is the part of the storefront a reconciliation cycle uses.
type CartAPI interface {
	GetCart(ctx context.Context, session Session) (*Cart, error)
	AddItem(ctx context.Context, session Session, add AddRequest) (*AddResponse, error)
	ChangeLine(ctx context.Context, session Session, change ChangeRequest) (*CartState, error)
}

// CartStrategy runs cycles for one cart session.
type CartStrategy struct {
	api         CartAPI
	session     Session
	sections    []sections.Section
	sectionsURL string
}

// NewCartStrategy binds api to session. On the cart page the cart-items
// sections are refreshed; elsewhere only the cart icon bubble is.
func NewCartStrategy(api CartAPI, session Session, onCartPage bool, sectionsURL string) *CartStrategy {
	list := sections.CartIconBubble()
	if onCartPage {
		list = sections.CartItems()
	}
	return &CartStrategy{api: api, session: session, sections: list, sectionsURL: sectionsURL}
}

func (s *CartStrategy) FetchSnapshot(ctx context.Context) (offers.Snapshot, error) {
	cart, err := s.api.GetCart(ctx, s.session)
	if err != nil {
		return offers.Snapshot{}, err
	}
	return ToSnapshot(cart), nil
}

func (s *CartStrategy) ApplyAction(ctx context.Context, cfg offers.Config, action offers.Action) (map[string]string, error) {
	switch action.Kind {
	case offers.ActionAddPromoItem:
		added, err := s.api.AddItem(ctx, s.session, AddRequest{
			VariantID:   cfg.PromoVariantID,
			Quantity:    action.Quantity,
			Sections:    sections.IDs(s.sections),
			SectionsURL: s.sectionsURL,
		})
		if err != nil {
			return nil, err
		}
		return added.Sections, nil

	case offers.ActionSetPromoQuantity, offers.ActionRemovePromoItem:
		qty := action.Quantity
		if action.Kind == offers.ActionRemovePromoItem {
			qty = 0
		}
		state, err := s.api.ChangeLine(ctx, s.session, ChangeRequest{
			Line:        action.Line,
			Quantity:    qty,
			Sections:    sections.IDs(s.sections),
			SectionsURL: s.sectionsURL,
		})
		if err != nil {
			return nil, err
		}
		return state.Sections, nil
	}
	return nil, fmt.Errorf("unsupported action %s", action)
}

func (s *CartStrategy) RenderSections(_ context.Context, rendered map[string]string) (map[string]string, error) {
	return sections.Extract(rendered, s.sections)
}
