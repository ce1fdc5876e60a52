package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/mizuki-ao/boombox/internal/modules/player/domain"
	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// Panel edit pacing. Discord tolerates bursts of message edits but not
// sustained churn; syncs beyond the budget are deferred, not dropped.
const (
	defaultPanelEvery = time.Second
	defaultPanelBurst = 3
	panelRetryDelay   = 2 * time.Second
)

// PanelSynchronizer keeps exactly one live status display per guild in
// step with its session. sync is idempotent: it edits the recorded
// panel message when a handle exists and creates one otherwise. Display
// failures are logged and the handle cleared so a later sync recreates
// it; they are never escalated.
type PanelSynchronizer struct {
	gateway  ports.PanelGateway
	sessions *Sessions
	dispatch *Dispatcher
	preview  int

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
	deferred map[snowflake.ID]bool
}

// NewPanelSynchronizer creates a synchronizer showing up to preview
// queued titles.
func NewPanelSynchronizer(
	gateway ports.PanelGateway,
	sessions *Sessions,
	dispatch *Dispatcher,
	preview int,
) *PanelSynchronizer {
	if preview <= 0 {
		preview = 6
	}
	return &PanelSynchronizer{
		gateway:  gateway,
		sessions: sessions,
		dispatch: dispatch,
		preview:  preview,
		limiters: make(map[snowflake.ID]*rate.Limiter),
		deferred: make(map[snowflake.ID]bool),
	}
}

// Sync refreshes the guild's panel on its dispatcher loop. Intended for
// callers outside an operation; operations themselves call sync after
// their mutation is fully applied.
func (p *PanelSynchronizer) Sync(guildID snowflake.ID) {
	p.dispatch.Submit(guildID, func(ctx context.Context) {
		if s := p.sessions.Peek(guildID); s != nil {
			p.sync(s)
		}
	})
}

// sync runs inside the guild's dispatcher task, after the mutation it
// reflects, so the session snapshot it reads is consistent.
func (p *PanelSynchronizer) sync(s *domain.Session) {
	if s.TextChannelID == 0 {
		return
	}

	if !p.limiter(s.GuildID).Allow() {
		// Over budget: schedule one deferred refresh so the panel still
		// converges, without ever blocking the dispatcher loop.
		p.deferSync(s.GuildID)
		return
	}

	view := p.render(s)

	if s.PanelMessageID != 0 {
		err := p.gateway.Edit(s.TextChannelID, s.PanelMessageID, view)
		if err == nil {
			return
		}
		slog.Warn("panel edit failed",
			"guild", s.GuildID,
			"message_id", s.PanelMessageID,
			"error", err,
		)
		s.PanelMessageID = 0
		if !errors.Is(err, ports.ErrPanelGone) {
			// Transient failure: leave recreation to a future sync.
			return
		}
	}

	messageID, err := p.gateway.Create(s.TextChannelID, view)
	if err != nil {
		slog.Warn("panel create failed", "guild", s.GuildID, "error", err)
		return
	}
	s.PanelMessageID = messageID
}

func (p *PanelSynchronizer) render(s *domain.Session) ports.PanelView {
	view := ports.PanelView{
		Paused: s.State == domain.StatePaused,
		Loop:   s.Loop,
		Volume: s.Volume.String(),
		UpNext: s.QueuePreview(p.preview),
	}
	if s.Current != nil {
		view.TrackTitle = s.Current.Track.Title
		view.RequestedBy = s.Current.Track.RequestedBy
	}
	return view
}

func (p *PanelSynchronizer) limiter(guildID snowflake.ID) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[guildID]
	if !ok {
		l = rate.NewLimiter(rate.Every(defaultPanelEvery), defaultPanelBurst)
		p.limiters[guildID] = l
	}
	return l
}

// deferSync arms at most one delayed refresh per guild.
func (p *PanelSynchronizer) deferSync(guildID snowflake.ID) {
	p.mu.Lock()
	if p.deferred[guildID] {
		p.mu.Unlock()
		return
	}
	p.deferred[guildID] = true
	p.mu.Unlock()

	time.AfterFunc(panelRetryDelay, func() {
		p.mu.Lock()
		delete(p.deferred, guildID)
		p.mu.Unlock()
		p.Sync(guildID)
	})
}
