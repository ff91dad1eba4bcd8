package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func decide(snap Snapshot, cfg Config) Decision {
	return Decide(snap, cfg, Evaluate(snap, cfg))
}

func TestDecideScenarios(t *testing.T) {
	t.Run("requirements met adds the gift", func(t *testing.T) {
		snap := Snapshot{Items: []LineItem{{VariantID: 111, Quantity: 2, LinePrice: 6000}}, SubtotalPrice: 6000}
		d := decide(snap, giftConfig())
		assert.Equal(t, AddPromoItem(1), d.Action)
		assert.Equal(t, BannerHide, d.Banner)
	})

	t.Run("requirements not met shows the banner", func(t *testing.T) {
		snap := Snapshot{Items: []LineItem{{VariantID: 111, Quantity: 1, LinePrice: 3000}}, SubtotalPrice: 3000}
		d := decide(snap, giftConfig())
		assert.Equal(t, NoAction(), d.Action)
		assert.Equal(t, BannerShow, d.Banner)
	})

	t.Run("exclusive gift is removed when requirements drop", func(t *testing.T) {
		snap := Snapshot{Items: []LineItem{
			{VariantID: 111, Quantity: 1, LinePrice: 3000},
			{VariantID: 222, Quantity: 1, UnitPrice: 1000, LinePrice: 0},
		}, SubtotalPrice: 3000}
		d := decide(snap, giftConfig())
		assert.Equal(t, RemovePromoItem(2), d.Action)
		assert.Equal(t, BannerShow, d.Banner)
	})
}

func TestDecideTable(t *testing.T) {
	qualifying := LineItem{VariantID: 111, Quantity: 2, UnitPrice: 3000, LinePrice: 6000}
	short := LineItem{VariantID: 111, Quantity: 1, UnitPrice: 3000, LinePrice: 3000}
	gift := func(qty int) LineItem { return LineItem{VariantID: 222, Quantity: qty, UnitPrice: 1000, LinePrice: 0} }

	tests := []struct {
		name   string
		cfg    func(Config) Config
		items  []LineItem
		action Action
		banner Banner
		block  string
	}{
		{
			name:   "absent, claimed and exclusive",
			cfg:    func(c Config) Config { c.WasPreviouslyClaimed = true; return c },
			items:  []LineItem{qualifying},
			action: NoAction(), banner: BannerHide, block: BlockedClaimed,
		},
		{
			name:   "absent, claimed but not exclusive still adds",
			cfg:    func(c Config) Config { c.WasPreviouslyClaimed = true; c.IsExclusive = false; return c },
			items:  []LineItem{qualifying},
			action: AddPromoItem(1), banner: BannerHide,
		},
		{
			name:   "absent, bogo adds the target quantity",
			cfg:    func(c Config) Config { c.IsBogo = true; return c },
			items:  []LineItem{{VariantID: 111, Quantity: 3, LinePrice: 9000}},
			action: AddPromoItem(3), banner: BannerHide,
		},
		{
			name:   "present, claimed and exclusive is removed",
			cfg:    func(c Config) Config { c.WasPreviouslyClaimed = true; return c },
			items:  []LineItem{qualifying, gift(1)},
			action: RemovePromoItem(2), banner: BannerHide, block: BlockedClaimed,
		},
		{
			name:   "present, exclusive with wrong quantity is corrected",
			items:  []LineItem{gift(3), qualifying},
			action: SetPromoQuantity(1, 1), banner: BannerHide,
		},
		{
			name:   "present, non-exclusive with extra quantity is left alone",
			cfg:    func(c Config) Config { c.IsExclusive = false; return c },
			items:  []LineItem{qualifying, gift(3)},
			action: NoAction(), banner: BannerHide,
		},
		{
			name:   "present, bogo below target is raised",
			cfg:    func(c Config) Config { c.IsBogo = true; return c },
			items:  []LineItem{{VariantID: 111, Quantity: 4, LinePrice: 12000}, gift(2)},
			action: SetPromoQuantity(2, 4), banner: BannerHide,
		},
		{
			name:   "present, bogo above target is never lowered",
			cfg:    func(c Config) Config { c.IsBogo = true; return c },
			items:  []LineItem{qualifying, gift(5)},
			action: NoAction(), banner: BannerHide,
		},
		{
			name:   "present and fulfilled",
			items:  []LineItem{qualifying, gift(1)},
			action: NoAction(), banner: BannerHide,
		},
		{
			name:   "present, not fulfilled, non-exclusive",
			cfg:    func(c Config) Config { c.IsExclusive = false; return c },
			items:  []LineItem{short, gift(1)},
			action: NoAction(), banner: BannerShow,
		},
		{
			name:   "unavailable gift",
			cfg:    func(c Config) Config { c.IsAvailable = false; return c },
			items:  []LineItem{qualifying},
			action: NoAction(), banner: BannerHide, block: BlockedUnavailable,
		},
		{
			name:   "only paid promo units are never mutated",
			items:  []LineItem{short, {VariantID: 222, Quantity: 1, UnitPrice: 1000, LinePrice: 1000}},
			action: NoAction(), banner: BannerShow, block: BlockedPaidPromoLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := giftConfig()
			if tt.cfg != nil {
				cfg = tt.cfg(cfg)
			}
			snap := Snapshot{Items: tt.items}
			for _, item := range tt.items {
				snap.SubtotalPrice += item.LinePrice
			}

			d := decide(snap, cfg)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.banner, d.Banner)
			assert.Equal(t, tt.block, d.Blocked)
		})
	}
}

func TestDecideTargetsOnlyTheFreePromoLine(t *testing.T) {
	cfg := giftConfig()
	snap := Snapshot{Items: []LineItem{
		{VariantID: 222, Quantity: 1, UnitPrice: 1000, LinePrice: 1000},
		{VariantID: 111, Quantity: 1, UnitPrice: 3000, LinePrice: 3000},
		{VariantID: 222, Quantity: 2, UnitPrice: 1000, LinePrice: 0},
	}, SubtotalPrice: 4000}

	d := decide(snap, cfg)
	assert.Equal(t, RemovePromoItem(3), d.Action)

	snap.Items[1].Quantity = 2
	snap.Items[1].LinePrice = 6000
	snap.SubtotalPrice = 7000
	d = decide(snap, cfg)
	assert.Equal(t, SetPromoQuantity(3, 1), d.Action)
}

func TestDecideNeverAddsClaimedExclusive(t *testing.T) {
	cfg := giftConfig()
	cfg.WasPreviouslyClaimed = true

	carts := [][]LineItem{
		nil,
		{{VariantID: 111, Quantity: 1, LinePrice: 3000}},
		{{VariantID: 111, Quantity: 2, LinePrice: 6000}},
		{{VariantID: 111, Quantity: 10, LinePrice: 60000}},
		{{VariantID: 111, Quantity: 2, LinePrice: 6000}, {VariantID: 222, Quantity: 1, LinePrice: 0}},
	}
	for _, bogo := range []bool{false, true} {
		cfg.IsBogo = bogo
		for _, items := range carts {
			snap := Snapshot{Items: items}
			for _, item := range items {
				snap.SubtotalPrice += item.LinePrice
			}
			assert.NotEqual(t, ActionAddPromoItem, decide(snap, cfg).Action.Kind)
		}
	}
}

func TestDecideBogoNeverLowersQuantity(t *testing.T) {
	cfg := giftConfig()
	cfg.IsBogo = true
	cfg.RequiredQuantity = 1

	for required := 1; required <= 5; required++ {
		for current := 1; current <= 5; current++ {
			snap := Snapshot{Items: []LineItem{
				{VariantID: 111, Quantity: required, LinePrice: int64(required) * 6000},
				{VariantID: 222, Quantity: current, LinePrice: 0},
			}}
			snap.SubtotalPrice = snap.Items[0].LinePrice

			d := decide(snap, cfg)
			switch d.Action.Kind {
			case ActionNone:
				assert.GreaterOrEqual(t, current, required)
			case ActionSetPromoQuantity:
				assert.Equal(t, required, d.Action.Quantity)
				assert.Greater(t, d.Action.Quantity, current)
			default:
				t.Fatalf("unexpected %s for required=%d current=%d", d.Action, required, current)
			}
		}
	}
}

func TestDecideMissingItem(t *testing.T) {
	cfg := Config{ID: "mia-1", Kind: KindMissingItem, PromoVariantID: 500, PromoQuantity: 1, IsAvailable: true, IsExclusive: true}
	paid := LineItem{VariantID: 1, Quantity: 1, LinePrice: 1500, ProductType: "Shirt"}
	donation := LineItem{VariantID: 2, Quantity: 1, LinePrice: 500, ProductType: "Donation"}
	mia := func(qty int) LineItem { return LineItem{VariantID: 500, Quantity: qty, LinePrice: 0} }

	tests := []struct {
		name   string
		items  []LineItem
		total  int64
		action Action
		banner Banner
	}{
		{"adds to a paid cart", []LineItem{paid}, 1500, AddPromoItem(1), BannerHide},
		{"waits on a donation-only cart", []LineItem{donation}, 500, NoAction(), BannerShow},
		{"removes from a donation-only cart", []LineItem{donation, mia(1)}, 500, RemovePromoItem(2), BannerShow},
		{"corrects the quantity", []LineItem{paid, mia(2)}, 1500, SetPromoQuantity(2, 1), BannerHide},
		{"keeps a correct item", []LineItem{mia(1), paid}, 1500, NoAction(), BannerHide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(Snapshot{Items: tt.items, TotalPrice: tt.total}, cfg)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.banner, d.Banner)
		})
	}
}
