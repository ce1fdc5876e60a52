package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/mizuki-ao/boombox/internal/modules/player/application"
)

// EventHandlers reacts to gateway events the player cares about.
type EventHandlers struct {
	orchestrator *application.Orchestrator
}

// NewEventHandlers creates new EventHandlers.
func NewEventHandlers(orchestrator *application.Orchestrator) *EventHandlers {
	return &EventHandlers{orchestrator: orchestrator}
}

// HandleVoiceStateUpdate watches for the bot itself losing its voice
// channel (kicked, channel deleted, manual disconnect) and tears down
// the guild's session.
func (h *EventHandlers) HandleVoiceStateUpdate(
	s *discordgo.Session,
	v *discordgo.VoiceStateUpdate,
) {
	if s.State.User == nil || v.UserID != s.State.User.ID {
		return
	}
	// Only a transition out of a channel matters.
	if v.ChannelID != "" || v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == "" {
		return
	}

	guildID, err := snowflake.Parse(v.GuildID)
	if err != nil {
		slog.Warn("voice state update with unparsable guild", "guild", v.GuildID)
		return
	}

	h.orchestrator.HandleVoiceDisconnect(guildID)
}
