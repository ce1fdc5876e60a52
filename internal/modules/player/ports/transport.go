package ports

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// FinishedFunc is the completion notification for a started stream. It
// fires exactly once per stream, including after a forced Stop, and is
// invoked from the transport's own goroutine: implementations must not
// touch session state directly, only hand the continuation off to the
// owning dispatcher.
type FinishedFunc func(guildID snowflake.ID, playErr error)

// AudioTransport turns a stream URL into a platform audio feed. One
// voice connection and at most one active stream per guild.
type AudioTransport interface {
	// Join connects to the given voice channel, replacing any existing
	// connection for the guild.
	Join(ctx context.Context, guildID, channelID snowflake.ID) error

	// Leave stops any active stream and drops the guild's connection.
	Leave(guildID snowflake.ID) error

	// Connected reports whether the guild has a live voice connection.
	Connected(guildID snowflake.ID) bool

	// Start begins feeding audio from streamURL at the given volume.
	// It fails with *StartError if the stream cannot begin; once it
	// returns nil, the completion callback is guaranteed to fire.
	Start(ctx context.Context, guildID snowflake.ID, streamURL string, volume float64) error

	// Stop forces the active stream (if any) to terminate. The
	// completion callback still fires.
	Stop(guildID snowflake.ID)

	// Pause suspends the active stream.
	Pause(guildID snowflake.ID) error

	// Resume continues a paused stream.
	Resume(guildID snowflake.ID) error
}

// StartError means a stream could not begin. Recovered like a
// resolution failure: skip ahead to the next queue entry.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start stream: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }
