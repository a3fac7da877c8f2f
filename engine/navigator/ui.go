package navigator

import (
	"fmt"

	"github.com/marroen/ImmersiveSeating/engine/status"
)

// UI is the display collaborator for the price/buy panel and the return-to-overview button.
type UI interface {
	// ShowPrice shows the price/buy panel.
	//
	// Parameters:
	//   - price: the seat price
	ShowPrice(price float32)

	// HidePrice hides the price/buy panel.
	HidePrice()

	// SetReturnVisible shows or hides the return-to-overview button.
	//
	// Parameters:
	//   - visible: true to show
	SetReturnVisible(visible bool)
}

// NopUI ignores every call.
type NopUI struct{}

func (NopUI) ShowPrice(float32)     {}
func (NopUI) HidePrice()            {}
func (NopUI) SetReturnVisible(bool) {}

// StatusUI reports UI changes as status messages, for frontends without widgets.
type StatusUI struct {
	Sink status.Sink
}

var _ UI = StatusUI{}

func (u StatusUI) ShowPrice(price float32) {
	u.Sink.Show(status.Info, fmt.Sprintf("€%.0f", price))
}

func (u StatusUI) HidePrice() {}

func (u StatusUI) SetReturnVisible(visible bool) {
	if visible {
		u.Sink.Show(status.Info, "Press Backspace to return to the overview")
	}
}
