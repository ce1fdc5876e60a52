package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/mizuki-ao/boombox/internal/bot"
	"github.com/mizuki-ao/boombox/internal/modules/player/application"
	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	orchestrator *application.Orchestrator
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(orchestrator *application.Orchestrator) *CommandHandlers {
	return &CommandHandlers{orchestrator: orchestrator}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	textChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel")
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	output, err := h.orchestrator.Play(application.PlayInput{
		GuildID:       guildID,
		UserID:        userID,
		TextChannelID: textChannelID,
		RequestedBy:   displayName(i.Member),
		Query:         query,
	})
	if err != nil {
		var resolveErr *ports.ResolveError
		if errors.As(err, &resolveErr) {
			return respondError(r, fmt.Sprintf("Could not find a track for **%s**.", query))
		}
		return respondError(r, err.Error())
	}

	description := fmt.Sprintf("Added **%s** to the queue.", output.Track.Title)
	if output.Started {
		description = fmt.Sprintf("Now playing **%s**.", output.Track.Title)
	}
	return respondSuccess(r, description)
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
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

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.orchestrator.Stop(guildID); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Stopped playback and cleared the queue.")
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.orchestrator.Pause(guildID); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.orchestrator.Resume(guildID); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Resumed playback.")
}

// HandleBack handles the /back command.
func (h *CommandHandlers) HandleBack(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.Back(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Going back to **%s**.", output.Track.Title))
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.LoopToggle(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	if output.Loop {
		return respondSuccess(r, "Now looping the current track.")
	}
	return respondSuccess(r, "Loop disabled.")
}

// HandleVolume handles the /volume command and its up/down subcommands.
func (h *CommandHandlers) HandleVolume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Missing volume direction")
	}

	steps := 1
	if options[0].Name == "down" {
		steps = -1
	}

	output, err := h.orchestrator.AdjustVolume(guildID, steps)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Volume set to **%s**.", output.Volume))
}

// displayName prefers the guild nickname over the account username.
func displayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

// respondSuccess sends a success embed response.
func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

// respondError sends an error embed response.
func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}
