// Package reconcile runs the offer engine for every active offer against a
// shopper's cart and keeps the claim and audit records.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"promocart/internal/logger"
	"promocart/internal/models"
	"promocart/internal/offers"
	"promocart/internal/services/storefront"
)

var ErrNoProductHandle = errors.New("offer has no promo product handle")

// ProductAPI reads public product JSON.
type ProductAPI interface {
	GetProduct(ctx context.Context, handle string) (*storefront.Product, error)
}

// Publisher receives every outcome after it is recorded.
type Publisher interface {
	Publish(ctx context.Context, cartToken string, outcome offers.Outcome) error
}

type CartRequest struct {
	CartToken   string `json:"cart_token" binding:"required"`
	CustomerID  string `json:"customer_id"`
	SectionsURL string `json:"sections_url"`
	CartPage    bool   `json:"cart_page"`
}

type OrderLine struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
	LinePrice int64 `json:"line_price"`
}

type OrderEvent struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Lines      []OrderLine `json:"lines"`
}

type Service struct {
	store     Store
	carts     storefront.CartAPI
	products  ProductAPI
	engine    *offers.Engine
	publisher Publisher
	logger    *logger.Logger
}

func NewService(store Store, carts storefront.CartAPI, products ProductAPI, logger *logger.Logger) *Service {
	return &Service{
		store:    store,
		carts:    carts,
		products: products,
		engine:   offers.NewEngine(logger),
		logger:   logger,
	}
}

// WithPublisher sets the outcome publisher.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

// ReconcileCart runs one cycle per active offer, in order, presenting each
// outcome to p. A failed mutation is recorded and the next offer still runs;
// any other failure means the cart cannot be read and stops the pass.
func (s *Service) ReconcileCart(ctx context.Context, req CartRequest, p offers.Presenter) ([]offers.Outcome, error) {
	if req.CartToken == "" {
		return nil, errors.New("cart token is required")
	}

	list, err := s.store.ActiveOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	claimed, err := s.store.ClaimedOfferIDs(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	strategy := storefront.NewCartStrategy(s.carts, storefront.Session{CartToken: req.CartToken}, req.CartPage, req.SectionsURL)

	outcomes := make([]offers.Outcome, 0, len(list))
	var mutationErr error
	for i := range list {
		cfg := list[i].Config(claimed[list[i].ID])

		outcome, cycleErr := s.engine.Reconcile(ctx, offers.CycleKey(cfg.ID, req.CartToken), cfg, strategy)
		if p != nil {
			offers.Present(p, cfg, outcome)
		}
		s.record(ctx, req, outcome, cycleErr)
		outcomes = append(outcomes, outcome)

		if cycleErr != nil {
			if !errors.Is(cycleErr, offers.ErrMutationFailed) {
				return outcomes, cycleErr
			}
			if mutationErr == nil {
				mutationErr = cycleErr
			}
		}
	}
	return outcomes, mutationErr
}

func (s *Service) record(ctx context.Context, req CartRequest, outcome offers.Outcome, cycleErr error) {
	run := models.NewReconciliationRun(req.CartToken, req.CustomerID, outcome, cycleErr)
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.logger.Error("Failed to save reconciliation run for offer %s: %v", outcome.OfferID, err)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, req.CartToken, outcome); err != nil {
		s.logger.Error("Failed to publish outcome for offer %s: %v", outcome.OfferID, err)
	}
}

// RecordClaims stores a claim for every exclusive gift offer whose promo item
// the order received for free. It returns the number of offers claimed.
func (s *Service) RecordClaims(ctx context.Context, order OrderEvent) (int, error) {
	if order.CustomerID == "" {
		return 0, nil
	}

	list, err := s.store.ActiveOffers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load offers: %w", err)
	}

	count := 0
	for _, offer := range list {
		if !offer.Claimable() || !receivedFree(order, offer.PromoVariantID) {
			continue
		}
		claim := &models.Claim{OfferID: offer.ID, CustomerID: order.CustomerID, OrderID: order.OrderID}
		if err := s.store.SaveClaim(ctx, claim); err != nil {
			return count, fmt.Errorf("failed to save claim for offer %s: %w", offer.ID, err)
		}
		s.logger.Info("Customer %s claimed offer %s in order %s", order.CustomerID, offer.ID, order.OrderID)
		count++
	}
	return count, nil
}

func receivedFree(order OrderEvent, variantID int64) bool {
	for _, line := range order.Lines {
		if line.VariantID == variantID && line.LinePrice == 0 && line.Quantity > 0 {
			return true
		}
	}
	return false
}

// RefreshAvailability re-reads the promo variant's availability from the
// storefront product JSON and stores it on the offer.
func (s *Service) RefreshAvailability(ctx context.Context, offerID string) (*models.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.PromoProductHandle == "" {
		return nil, ErrNoProductHandle
	}

	product, err := s.products.GetProduct(ctx, offer.PromoProductHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", offer.PromoProductHandle, err)
	}

	available := false
	if variant, ok := product.Variant(offer.PromoVariantID); ok {
		available = variant.Available
	} else {
		s.logger.Warn("Promo variant %d not found on product %s", offer.PromoVariantID, offer.PromoProductHandle)
	}

	if err := s.store.SetOfferAvailability(ctx, offer.ID, available); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}
	offer.IsAvailable = available
	return offer, nil
}
