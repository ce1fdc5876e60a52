package ports

import (
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// ErrPanelGone is returned by Edit when the panel message no longer
// exists (deleted externally). The synchronizer reacts by clearing the
// recorded handle and recreating.
var ErrPanelGone = errors.New("panel message gone")

// PanelView is a renderable snapshot of a session's visible state.
// Zero-value fields render as placeholders ("No track playing",
// "(empty)").
type PanelView struct {
	TrackTitle  string
	RequestedBy string
	Paused      bool
	Loop        bool
	Volume      string
	UpNext      []string
}

// PanelGateway renders a PanelView as the guild's status display.
type PanelGateway interface {
	// Create posts a new panel message and returns its ID.
	Create(channelID snowflake.ID, view PanelView) (snowflake.ID, error)

	// Edit updates an existing panel message in place.
	Edit(channelID, messageID snowflake.ID, view PanelView) error
}
