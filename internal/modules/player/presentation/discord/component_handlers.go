package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/mizuki-ao/boombox/internal/bot"
	"github.com/mizuki-ao/boombox/internal/modules/player/application"
)

// ComponentHandlers routes the panel's button presses.
type ComponentHandlers struct {
	orchestrator *application.Orchestrator
}

// NewComponentHandlers creates new ComponentHandlers.
func NewComponentHandlers(orchestrator *application.Orchestrator) *ComponentHandlers {
	return &ComponentHandlers{orchestrator: orchestrator}
}

// HandleSkip handles the panel's Skip button.
func (h *ComponentHandlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.Skip(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	if output.Skipped.Title != "" {
		return respondSuccess(r, fmt.Sprintf("Skipped **%s**.", output.Skipped.Title))
	}
	return respondSuccess(r, "Skipped.")
}

// HandlePauseToggle handles the panel's Pause/Resume button.
func (h *ComponentHandlers) HandlePauseToggle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.PauseToggle(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	if output.Paused {
		return respondSuccess(r, "Paused playback.")
	}
	return respondSuccess(r, "Resumed playback.")
}
