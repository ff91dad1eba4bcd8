// Package presenter implements offers.Presenter for API responses and for
// server-side rendered pages.
package presenter

import (
	"sync"

	"promocart/internal/offers"
)

// BannerView is the recorded state of one offer banner.
type BannerView struct {
	Class  string `json:"class"`
	InCart bool   `json:"in_cart"`
}

// View is a point-in-time copy of a Recorder.
type View struct {
	Banners  map[string]BannerView `json:"banners"`
	Sections map[string]string     `json:"sections"`
	Error    string                `json:"error,omitempty"`
}

// Recorder keeps the latest presentation calls. Later calls overwrite earlier ones.
type Recorder struct {
	mu       sync.Mutex
	banners  map[string]BannerView
	sections map[string]string
	err      string
}

func NewRecorder() *Recorder {
	return &Recorder{
		banners:  make(map[string]BannerView),
		sections: make(map[string]string),
	}
}

func (r *Recorder) SetBanner(offerID, class string, state offers.Banner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch state {
	case offers.BannerHide:
		r.banners[offerID] = BannerView{Class: class, InCart: true}
	case offers.BannerShow:
		r.banners[offerID] = BannerView{Class: class, InCart: false}
	}
}

func (r *Recorder) ReplaceSections(fragments map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, html := range fragments {
		r.sections[id] = html
	}
}

func (r *Recorder) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = message
}

func (r *Recorder) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := View{
		Banners:  make(map[string]BannerView, len(r.banners)),
		Sections: make(map[string]string, len(r.sections)),
		Error:    r.err,
	}
	for k, b := range r.banners {
		v.Banners[k] = b
	}
	for k, s := range r.sections {
		v.Sections[k] = s
	}
	return v
}
