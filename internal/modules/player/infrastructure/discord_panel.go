package infrastructure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// Component custom IDs emitted by the panel's buttons. The interaction
// router dispatches on these.
const (
	ComponentIDSkip        = "boombox:skip"
	ComponentIDPauseToggle = "boombox:pause"
)

// Embed colors.
const colorBlurple = 0x5865F2

// DiscordPanelGateway renders panel views as a Discord embed with Skip
// and Pause/Resume buttons attached.
type DiscordPanelGateway struct {
	session *discordgo.Session
}

// NewDiscordPanelGateway creates a new DiscordPanelGateway.
func NewDiscordPanelGateway(session *discordgo.Session) *DiscordPanelGateway {
	return &DiscordPanelGateway{session: session}
}

// Create implements ports.PanelGateway.
func (g *DiscordPanelGateway) Create(
	channelID snowflake.ID,
	view ports.PanelView,
) (snowflake.ID, error) {
	msg, err := g.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{panelEmbed(view)},
		Components: panelComponents(),
	})
	if err != nil {
		return 0, err
	}
	return snowflake.Parse(msg.ID)
}

// Edit implements ports.PanelGateway. A missing message is reported as
// ports.ErrPanelGone so the synchronizer recreates the panel.
func (g *DiscordPanelGateway) Edit(
	channelID, messageID snowflake.ID,
	view ports.PanelView,
) error {
	embeds := []*discordgo.MessageEmbed{panelEmbed(view)}
	components := panelComponents()

	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID.String(),
		Channel:    channelID.String(),
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil && isUnknownMessage(err) {
		return ports.ErrPanelGone
	}
	return err
}

// panelEmbed renders the view. Without a current track the embed shows
// a placeholder and only the queue preview.
func panelEmbed(view ports.PanelView) *discordgo.MessageEmbed {
	title := "\U0001F3B6 Now Playing"
	if view.Paused {
		title = "⏸ Paused"
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorBlurple,
	}

	if view.TrackTitle == "" {
		embed.Description = "No track playing"
	} else {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{
				Name:  "Track",
				Value: view.TrackTitle,
			},
			&discordgo.MessageEmbedField{
				Name:   "Volume",
				Value:  view.Volume,
				Inline: true,
			},
			&discordgo.MessageEmbedField{
				Name:   "Loop",
				Value:  onOff(view.Loop),
				Inline: true,
			},
		)
		if view.RequestedBy != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Requested by %s", view.RequestedBy),
			}
		}
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Up Next",
		Value: upNextValue(view.UpNext),
	})

	return embed
}

func upNextValue(titles []string) string {
	if len(titles) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, title := range titles {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, title)
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}

func panelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "⏭ Skip",
					Style:    discordgo.DangerButton,
					CustomID: ComponentIDSkip,
				},
				discordgo.Button{
					Label:    "⏸ Pause/Resume",
					Style:    discordgo.PrimaryButton,
					CustomID: ComponentIDPauseToggle,
				},
			},
		},
	}
}

func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMessage
	}
	return false
}

// Ensure DiscordPanelGateway implements ports.PanelGateway.
var _ ports.PanelGateway = (*DiscordPanelGateway)(nil)
