package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider answers which voice channel a user is in.
type VoiceStateProvider interface {
	// UserVoiceChannel returns the user's current voice channel in the
	// guild, or 0 if they are not in one.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
