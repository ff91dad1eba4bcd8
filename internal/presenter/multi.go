package presenter

import "promocart/internal/offers"

// Multi forwards every call to each presenter in order.
type Multi []offers.Presenter

func (m Multi) SetBanner(offerID, class string, state offers.Banner) {
	for _, p := range m {
		p.SetBanner(offerID, class, state)
	}
}

func (m Multi) ReplaceSections(fragments map[string]string) {
	for _, p := range m {
		p.ReplaceSections(fragments)
	}
}

func (m Multi) ShowError(message string) {
	for _, p := range m {
		p.ShowError(message)
	}
}
