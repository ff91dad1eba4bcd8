package offers

import (
	"context"
	"errors"
	"fmt"

	"promocart/internal/logger"

	"golang.org/x/sync/singleflight"
)

// GenericCartError is shown to the shopper when a mutation fails.
const GenericCartError = "There was an error while updating your cart. Please try again."

// ErrMutationFailed wraps the storefront error of a failed add or change call.
var ErrMutationFailed = errors.New("promo mutation failed")

// Strategy executes a cycle against one cart.
type Strategy interface {
	// FetchSnapshot reads the current cart.
	FetchSnapshot(ctx context.Context) (Snapshot, error)
	// ApplyAction issues exactly one storefront call and returns the rendered
	// section fragments from its response, keyed by section id.
	ApplyAction(ctx context.Context, cfg Config, action Action) (map[string]string, error)
	// RenderSections extracts the fragments that replace live page content.
	RenderSections(ctx context.Context, rendered map[string]string) (map[string]string, error)
}

// UserFacingError is implemented by storefront errors whose text may be shown
// to the shopper verbatim.
type UserFacingError interface {
	error
	UserMessage() string
}

// Engine runs reconciliation cycles. Cycles sharing a key never overlap: a
// trigger arriving mid-cycle joins the running cycle and receives its outcome.
type Engine struct {
	logger *logger.Logger
	group  singleflight.Group
}

func NewEngine(logger *logger.Logger) *Engine {
	return &Engine{logger: logger}
}

// CycleKey identifies the cart/offer pair guarded against overlapping cycles.
func CycleKey(offerID, cartToken string) string {
	return offerID + "|" + cartToken
}

// Reconcile runs fetch, evaluate, decide and apply for cfg. A non-nil error
// still comes with an outcome describing what should be presented.
// The cycle ignores cancellation of ctx: joined callers share it, and a
// cycle always runs to completion or failure. Storefront calls keep their
// own timeout.
func (e *Engine) Reconcile(ctx context.Context, key string, cfg Config, s Strategy) (Outcome, error) {
	cycleCtx := context.WithoutCancel(ctx)
	v, err, shared := e.group.Do(key, func() (interface{}, error) {
		return e.run(cycleCtx, cfg, s)
	})
	if shared {
		e.logger.Debug("%s: joined in-flight cycle %s", campaign(cfg), key)
	}
	outcome, _ := v.(Outcome)
	return outcome, err
}

func (e *Engine) run(ctx context.Context, cfg Config, s Strategy) (Outcome, error) {
	outcome := Outcome{OfferID: cfg.ID, Kind: cfg.Kind, Decision: Decision{Action: NoAction()}}

	if !cfg.IsAvailable {
		e.logger.Warn("%s: the promo item is not available, aborting", campaign(cfg))
		outcome.Decision = Decision{Action: NoAction(), Banner: BannerHide, Blocked: BlockedUnavailable}
		return outcome, nil
	}

	e.logger.Debug("%s: checking cart", campaign(cfg))

	snap, err := s.FetchSnapshot(ctx)
	if err != nil {
		var uf UserFacingError
		if errors.As(err, &uf) {
			outcome.ErrorMessage = uf.UserMessage()
		}
		e.logger.Error("%s: failed to fetch cart: %v", campaign(cfg), err)
		return outcome, fmt.Errorf("failed to fetch cart: %w", err)
	}

	outcome.Eligibility = Evaluate(snap, cfg)
	outcome.Decision = Decide(snap, cfg, outcome.Eligibility)
	e.logDecision(cfg, outcome)

	if !outcome.Decision.Action.IsMutation() {
		return outcome, nil
	}

	rendered, err := s.ApplyAction(ctx, cfg, outcome.Decision.Action)
	if err != nil {
		outcome.ErrorMessage = GenericCartError
		e.logger.Error("%s: %s failed: %v", campaign(cfg), outcome.Decision.Action, err)
		return outcome, fmt.Errorf("%w: %s: %w", ErrMutationFailed, outcome.Decision.Action, err)
	}

	sections, err := s.RenderSections(ctx, rendered)
	if err != nil {
		// the cart changed; only the fragment refresh is lost
		e.logger.Error("%s: failed to render sections: %v", campaign(cfg), err)
		return outcome, nil
	}
	outcome.Sections = sections
	return outcome, nil
}

func (e *Engine) logDecision(cfg Config, o Outcome) {
	el := o.Eligibility
	flags := fmt.Sprintf("has_required=%t has_required_quantity=%t has_min_spend=%t",
		el.HasRequiredItems, el.HasRequiredQuantity, el.MeetsMinSpend)

	switch {
	case o.Decision.Blocked == BlockedClaimed:
		e.logger.Warn("%s: offer can only be claimed once per customer, %s", campaign(cfg), o.Decision.Action)
	case o.Decision.Blocked == BlockedPaidPromoLine:
		e.logger.Warn("%s: promo variant is only in cart as paid units, leaving them untouched (%s)", campaign(cfg), flags)
	case o.Decision.Action.IsMutation():
		e.logger.Info("%s: %s (%s)", campaign(cfg), o.Decision.Action, flags)
	case el.HasPromoItemInCart && el.FulfillsAll:
		e.logger.Info("%s: promo item in cart and requirements met, discounts should apply", campaign(cfg))
	case el.HasPromoItemInCart:
		e.logger.Info("%s: promo item in cart but requirements not met, discounts will not apply (%s)", campaign(cfg), flags)
	default:
		e.logger.Info("%s: requirements not met yet (%s)", campaign(cfg), flags)
	}
}

func campaign(cfg Config) string {
	if cfg.Kind == KindMissingItem {
		return "MIA campaign " + cfg.ID
	}
	return "GWP campaign " + cfg.ID
}
