package player

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/mizuki-ao/boombox/internal/bot"
	"github.com/mizuki-ao/boombox/internal/modules/player/application"
	"github.com/mizuki-ao/boombox/internal/modules/player/infrastructure"
	"github.com/mizuki-ao/boombox/internal/modules/player/presentation"
	"github.com/mizuki-ao/boombox/internal/modules/player/presentation/discord"
)

func init() {
	bot.Register(&PlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*PlayerModule)(nil)

// PlayerModule provides music playback commands and the status panel.
type PlayerModule struct {
	config *Config

	dispatcher   *application.Dispatcher
	orchestrator *application.Orchestrator

	commandHandlers   *discord.CommandHandlers
	componentHandlers *discord.ComponentHandlers
	eventHandlers     *discord.EventHandlers
}

// Name returns the module name.
func (m *PlayerModule) Name() string {
	return "player"
}

// Commands returns the slash commands for this module.
func (m *PlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *PlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.commandHandlers.HandlePlay,
		"skip":   m.commandHandlers.HandleSkip,
		"stop":   m.commandHandlers.HandleStop,
		"pause":  m.commandHandlers.HandlePause,
		"resume": m.commandHandlers.HandleResume,
		"back":   m.commandHandlers.HandleBack,
		"loop":   m.commandHandlers.HandleLoop,
		"volume": m.commandHandlers.HandleVolume,
	}
}

// ComponentHandlers returns the panel button handlers for this module.
func (m *PlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		infrastructure.ComponentIDSkip:        m.componentHandlers.HandleSkip,
		infrastructure.ComponentIDPauseToggle: m.componentHandlers.HandlePauseToggle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *PlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.eventHandlers.HandleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *PlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *PlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("player module requires a Discord session")
	}

	sessions := application.NewSessions()
	m.dispatcher = application.NewDispatcher()

	resolver := infrastructure.NewYouTubeResolver()
	transport := infrastructure.NewFFmpegTransport(deps.Session, m.config.FFmpegPath)
	panelGateway := infrastructure.NewDiscordPanelGateway(deps.Session)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	panel := application.NewPanelSynchronizer(
		panelGateway,
		sessions,
		m.dispatcher,
		m.config.QueuePreview,
	)
	m.orchestrator = application.NewOrchestrator(
		sessions,
		m.dispatcher,
		resolver,
		transport,
		voiceState,
		panel,
		m.config.ResolveTimeout,
	)
	transport.SetOnFinished(m.orchestrator.HandleTrackEnd)

	m.commandHandlers = discord.NewCommandHandlers(m.orchestrator)
	m.componentHandlers = discord.NewComponentHandlers(m.orchestrator)
	m.eventHandlers = discord.NewEventHandlers(m.orchestrator)

	slog.Info("player module initialized")

	return nil
}

// Shutdown cleans up module resources.
func (m *PlayerModule) Shutdown() error {
	if m.dispatcher != nil {
		m.dispatcher.Close()
	}
	return nil
}
