package ports

import (
	"context"
	"fmt"
)

// ResolvedTrack is the resolver's answer for a query: display metadata
// plus a freshly issued, time-limited stream URL. The stream URL must be
// re-fetched before each playback start, never cached long-term.
type ResolvedTrack struct {
	SourceRef string // canonical page URL, stable across re-resolutions
	Title     string
	StreamURL string
}

// TrackResolver maps a direct URL or free-text search query to a
// playable track. Free-text queries return the top search match.
// Resolution is latency-bearing; callers bound it with the context.
type TrackResolver interface {
	Resolve(ctx context.Context, query string) (*ResolvedTrack, error)
}

// ResolveError covers every recoverable resolution failure: no match,
// network failure, malformed input, timeout. The orchestrator reacts to
// all of them the same way, by skipping to the next queue entry.
type ResolveError struct {
	Query  string
	Reason string
	Err    error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %q: %s: %v", e.Query, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %q: %s", e.Query, e.Reason)
}

func (e *ResolveError) Unwrap() error { return e.Err }
