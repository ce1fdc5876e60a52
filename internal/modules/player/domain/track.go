package domain

// UnknownRequester is the display name used when the requester is not known.
const UnknownRequester = "Unknown"

// TrackRef is an immutable descriptor of a queued or playing item.
// SourceRef is a stable locator (the canonical watch page URL) and is
// re-resolved into a fresh stream URL before every playback start,
// since stream URLs expire.
type TrackRef struct {
	SourceRef   string
	Title       string
	RequestedBy string
}

// NewTrackRef creates a TrackRef, defaulting the requester display name.
func NewTrackRef(sourceRef, title, requestedBy string) TrackRef {
	if requestedBy == "" {
		requestedBy = UnknownRequester
	}
	return TrackRef{
		SourceRef:   sourceRef,
		Title:       title,
		RequestedBy: requestedBy,
	}
}
