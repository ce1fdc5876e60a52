package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/raitonoberu/ytsearch"

	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// YouTubeResolver resolves direct video URLs and free-text queries
// against YouTube. Free text goes through a search and takes the top
// match. Stream URLs expire, so every call fetches a fresh one; the
// canonical watch URL is the only thing stable enough to store.
type YouTubeResolver struct {
	client *youtube.Client

	// search returns the video ID of the top result for a free-text
	// query, or "" when the search comes back empty.
	search func(query string) (string, error)
}

// NewYouTubeResolver creates a resolver with its own HTTP client.
func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{
		client: &youtube.Client{
			HTTPClient: &http.Client{
				Timeout: 15 * time.Second,
			},
		},
		search: func(query string) (string, error) {
			results, err := ytsearch.VideoSearch(query).Next()
			if err != nil {
				return "", err
			}
			if len(results.Videos) == 0 {
				return "", nil
			}
			return results.Videos[0].ID, nil
		},
	}
}

// Resolve implements ports.TrackResolver.
func (r *YouTubeResolver) Resolve(
	ctx context.Context,
	query string,
) (*ports.ResolvedTrack, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ports.ResolveError{Query: query, Reason: "empty query"}
	}

	videoURL := query
	if isURL(query) {
		if !isYouTubeVideoURL(query) {
			return nil, &ports.ResolveError{Query: query, Reason: "not a YouTube video URL"}
		}
	} else {
		found, err := r.searchFirstVideoURL(ctx, query)
		if err != nil {
			return nil, &ports.ResolveError{Query: query, Reason: "search failed", Err: err}
		}
		if found == "" {
			return nil, &ports.ResolveError{Query: query, Reason: "no search results"}
		}
		videoURL = found
	}

	video, err := r.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, &ports.ResolveError{Query: query, Reason: "video lookup failed", Err: err}
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, &ports.ResolveError{Query: query, Reason: "no audio formats"}
	}

	streamURL, err := r.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, &ports.ResolveError{Query: query, Reason: "stream URL fetch failed", Err: err}
	}

	return &ports.ResolvedTrack{
		SourceRef: watchURL(video.ID),
		Title:     video.Title,
		StreamURL: streamURL,
	}, nil
}

// searchFirstVideoURL returns the watch URL of the top search result,
// or "" when the search comes back empty. ytsearch has no
// context-aware API, so the search runs on its own goroutine and the
// caller's deadline bounds the wait.
func (r *YouTubeResolver) searchFirstVideoURL(ctx context.Context, query string) (string, error) {
	type outcome struct {
		id  string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		id, err := r.search(query)
		ch <- outcome{id: id, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil || out.id == "" {
			return "", out.err
		}
		return watchURL(out.id), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// isYouTubeVideoURL accepts the watch, shorts, youtu.be and music
// frontends for a single video. Playlist-only URLs are rejected.
func isYouTubeVideoURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		return len(strings.Trim(u.Path, "/")) > 0
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if strings.HasPrefix(u.Path, "/shorts/") || strings.HasPrefix(u.Path, "/live/") {
			return true
		}
		return u.Path == "/watch" && u.Query().Get("v") != ""
	default:
		return false
	}
}

// Ensure YouTubeResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YouTubeResolver)(nil)
