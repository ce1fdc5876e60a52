package player

import "time"

// Config holds the player module configuration.
type Config struct {
	FFmpegPath     string        `env:"FFMPEG_PATH"            envDefault:"ffmpeg"`
	ResolveTimeout time.Duration `env:"PLAYER_RESOLVE_TIMEOUT" envDefault:"15s"`
	QueuePreview   int           `env:"PLAYER_QUEUE_PREVIEW"   envDefault:"6"`
}
