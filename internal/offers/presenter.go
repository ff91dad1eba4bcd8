package offers

// Presenter owns the page side effects of a cycle.
type Presenter interface {
	SetBanner(offerID string, class string, state Banner)
	ReplaceSections(fragments map[string]string)
	ShowError(message string)
}

// Present applies o to p. Applying the same outcome twice leaves p unchanged.
func Present(p Presenter, cfg Config, o Outcome) {
	if o.Decision.Banner != BannerUnchanged {
		class := cfg.BannerClass
		if class == "" {
			class = DefaultBannerClass(cfg.Kind)
		}
		p.SetBanner(o.OfferID, class, o.Decision.Banner)
	}
	if len(o.Sections) > 0 {
		p.ReplaceSections(o.Sections)
	}
	if o.ErrorMessage != "" {
		p.ShowError(o.ErrorMessage)
	}
}
