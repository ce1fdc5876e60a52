package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/mizuki-ao/boombox/internal/modules/player/domain"
	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// DefaultResolveTimeout bounds a single resolver call. A timeout is
// treated like any other resolution failure: skip to the next entry.
const DefaultResolveTimeout = 15 * time.Second

// Orchestrator is the per-guild playback state machine. Every public
// operation executes on the guild's dispatcher loop, so two operations
// for the same guild never run concurrently and each runs to
// completion, suspension points included, before the next begins.
//
// Policy: an empty queue leaves the bot connected (connected-idle).
// The voice connection is only torn down by an external disconnect.
type Orchestrator struct {
	sessions  *Sessions
	dispatch  *Dispatcher
	resolver  ports.TrackResolver
	transport ports.AudioTransport
	voice     ports.VoiceStateProvider
	panel     *PanelSynchronizer

	resolveTimeout time.Duration
}

// NewOrchestrator wires the state machine to its collaborators.
func NewOrchestrator(
	sessions *Sessions,
	dispatch *Dispatcher,
	resolver ports.TrackResolver,
	transport ports.AudioTransport,
	voice ports.VoiceStateProvider,
	panel *PanelSynchronizer,
	resolveTimeout time.Duration,
) *Orchestrator {
	if resolveTimeout <= 0 {
		resolveTimeout = DefaultResolveTimeout
	}
	return &Orchestrator{
		sessions:       sessions,
		dispatch:       dispatch,
		resolver:       resolver,
		transport:      transport,
		voice:          voice,
		panel:          panel,
		resolveTimeout: resolveTimeout,
	}
}

// PlayInput carries a play request.
type PlayInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	TextChannelID snowflake.ID
	RequestedBy   string
	Query         string
}

// PlayOutput reports what was enqueued and whether it started
// immediately.
type PlayOutput struct {
	Track   domain.TrackRef
	Started bool
}

// Play resolves the query, enqueues the result and starts playback if
// nothing is current. The caller must be in a voice channel.
func (o *Orchestrator) Play(in PlayInput) (*PlayOutput, error) {
	var out *PlayOutput
	var opErr error

	if err := o.dispatch.Run(in.GuildID, func(ctx context.Context) {
		s := o.sessions.Get(in.GuildID)
		s.TextChannelID = in.TextChannelID

		channelID, err := o.voice.UserVoiceChannel(in.GuildID, in.UserID)
		if err != nil || channelID == 0 {
			opErr = ErrNotInVoice
			return
		}

		if !o.transport.Connected(in.GuildID) {
			if err := o.transport.Join(ctx, in.GuildID, channelID); err != nil {
				opErr = fmt.Errorf("join voice channel: %w", err)
				return
			}
			s.VoiceChannelID = channelID
			s.State = domain.StateConnectedIdle
		}

		resolved, err := o.resolve(ctx, in.Query)
		if err != nil {
			opErr = err
			return
		}

		track := domain.NewTrackRef(resolved.SourceRef, resolved.Title, in.RequestedBy)
		s.Enqueue(track)

		started := false
		if s.Current == nil {
			o.advance(ctx, s)
			started = s.Current != nil
		} else {
			o.panel.sync(s)
		}

		out = &PlayOutput{Track: track, Started: started}
	}); err != nil {
		return nil, err
	}

	return out, opErr
}

// SkipOutput reports the track that was skipped.
type SkipOutput struct {
	Skipped domain.TrackRef
}

// Skip stops the active stream; its completion notification performs
// the advance, keeping "stream ended" the single path into it. When
// nothing is active but the queue holds entries, it advances directly.
func (o *Orchestrator) Skip(guildID snowflake.ID) (*SkipOutput, error) {
	var out *SkipOutput
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		if s == nil || (!s.Active() && len(s.Queue) == 0) {
			opErr = ErrNothingToSkip
			return
		}

		if s.Active() {
			out = &SkipOutput{Skipped: s.Current.Track}
			s.SetEndReason(domain.EndSkipped)
			o.transport.Stop(guildID)
			return
		}

		// Connected-idle with a non-empty queue: kick it off directly.
		o.advance(ctx, s)
		out = &SkipOutput{}
	}); err != nil {
		return nil, err
	}

	return out, opErr
}

// Stop clears the queue and stops the active stream. The session stays
// connected and settles to connected-idle once the completion
// notification drains through.
func (o *Orchestrator) Stop(guildID snowflake.ID) error {
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		if s == nil || (!s.Active() && len(s.Queue) == 0) {
			opErr = ErrNothingToStop
			return
		}

		s.ClearQueue()
		if s.Active() {
			s.SetEndReason(domain.EndStopped)
			o.transport.Stop(guildID)
			return
		}
		o.panel.sync(s)
	}); err != nil {
		return err
	}

	return opErr
}

// Pause suspends the active stream.
func (o *Orchestrator) Pause(guildID snowflake.ID) error {
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		switch {
		case s == nil || !s.Active():
			opErr = ErrNothingPlaying
		case s.State == domain.StatePaused:
			opErr = ErrAlreadyPaused
		default:
			if err := o.transport.Pause(guildID); err != nil {
				opErr = err
				return
			}
			s.State = domain.StatePaused
			o.panel.sync(s)
		}
	}); err != nil {
		return err
	}

	return opErr
}

// Resume continues a paused stream.
func (o *Orchestrator) Resume(guildID snowflake.ID) error {
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		switch {
		case s == nil || !s.Active():
			opErr = ErrNothingPlaying
		case s.State != domain.StatePaused:
			opErr = ErrNotPaused
		default:
			if err := o.transport.Resume(guildID); err != nil {
				opErr = err
				return
			}
			s.State = domain.StatePlaying
			o.panel.sync(s)
		}
	}); err != nil {
		return err
	}

	return opErr
}

// PauseToggleOutput reports the state after the toggle.
type PauseToggleOutput struct {
	Paused bool
}

// PauseToggle flips between playing and paused; a no-op when nothing is
// active, reported as ErrNothingPlaying.
func (o *Orchestrator) PauseToggle(guildID snowflake.ID) (*PauseToggleOutput, error) {
	var out *PauseToggleOutput
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		if s == nil || !s.Active() {
			opErr = ErrNothingPlaying
			return
		}

		if s.State == domain.StatePlaying {
			if err := o.transport.Pause(guildID); err != nil {
				opErr = err
				return
			}
			s.State = domain.StatePaused
		} else {
			if err := o.transport.Resume(guildID); err != nil {
				opErr = err
				return
			}
			s.State = domain.StatePlaying
		}
		o.panel.sync(s)
		out = &PauseToggleOutput{Paused: s.State == domain.StatePaused}
	}); err != nil {
		return nil, err
	}

	return out, opErr
}

// BackOutput reports the track playback went back to.
type BackOutput struct {
	Track domain.TrackRef
}

// Back returns to the previous track. With history, the popped entry
// plays next and the current track is re-queued behind it. With no
// history but a current track, the same track restarts from the top.
func (o *Orchestrator) Back(guildID snowflake.ID) (*BackOutput, error) {
	var out *BackOutput
	var opErr error

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		if s == nil {
			opErr = ErrNothingToGoBack
			return
		}

		if prev, ok := s.PopHistory(); ok {
			if s.Current != nil {
				s.PushFront(s.Current.Track)
			}
			s.PushFront(prev)
			out = &BackOutput{Track: prev}

			if s.Active() {
				s.SetEndReason(domain.EndRestart)
				o.transport.Stop(guildID)
			} else {
				o.advance(ctx, s)
			}
			return
		}

		if s.Current != nil {
			// No history: restart the current track in place.
			track := s.Current.Track
			s.PushFront(track)
			s.SetEndReason(domain.EndRestart)
			o.transport.Stop(guildID)
			out = &BackOutput{Track: track}
			return
		}

		opErr = ErrNothingToGoBack
	}); err != nil {
		return nil, err
	}

	return out, opErr
}

// VolumeOutput reports the volume after the adjustment.
type VolumeOutput struct {
	Volume domain.Volume
}

// AdjustVolume moves the volume by the given number of 0.1 steps. When
// a track is active this hot-restarts it: the current track is
// re-queued at the front and the stream stopped, so the advance
// re-resolves and restarts it at the new volume. The brief audible gap
// and the extra resolve call are the accepted cost.
func (o *Orchestrator) AdjustVolume(guildID snowflake.ID, steps int) (*VolumeOutput, error) {
	var out *VolumeOutput

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Get(guildID)
		s.Volume = s.Volume.Adjust(steps)
		out = &VolumeOutput{Volume: s.Volume}

		if s.Active() {
			s.PushFront(s.Current.Track)
			s.SetEndReason(domain.EndRestart)
			o.transport.Stop(guildID)
			return
		}
		o.panel.sync(s)
	}); err != nil {
		return nil, err
	}

	return out, nil
}

// LoopOutput reports the loop flag after the toggle.
type LoopOutput struct {
	Loop bool
}

// LoopToggle flips the loop flag. Looping applies to natural track
// completions only, never to skips or stops.
func (o *Orchestrator) LoopToggle(guildID snowflake.ID) (*LoopOutput, error) {
	var out *LoopOutput

	if err := o.dispatch.Run(guildID, func(ctx context.Context) {
		s := o.sessions.Get(guildID)
		s.Loop = !s.Loop
		out = &LoopOutput{Loop: s.Loop}
		o.panel.sync(s)
	}); err != nil {
		return nil, err
	}

	return out, nil
}

// HandleTrackEnd is the transport's completion callback. It runs on the
// transport's goroutine and must only hand the continuation off to the
// guild's dispatcher loop; never mutate session state here.
func (o *Orchestrator) HandleTrackEnd(guildID snowflake.ID, playErr error) {
	o.dispatch.Submit(guildID, func(ctx context.Context) {
		o.finishTrack(ctx, guildID, playErr)
	})
}

// HandleVoiceDisconnect reacts to the platform reporting the bot was
// removed from voice (explicit leave, kick, channel deletion). The
// session resets fully to idle: queue, history, current and the panel
// handle are no longer valid.
func (o *Orchestrator) HandleVoiceDisconnect(guildID snowflake.ID) {
	o.dispatch.Submit(guildID, func(ctx context.Context) {
		s := o.sessions.Peek(guildID)
		if s == nil {
			return
		}

		if err := o.transport.Leave(guildID); err != nil {
			slog.Debug("voice teardown cleanup", "guild", guildID, "error", err)
		}
		s.Reset()
		slog.Info("voice disconnected, session reset", "guild", guildID)
	})
}

// Close releases the dispatcher. Outstanding tasks are discarded.
func (o *Orchestrator) Close() {
	o.dispatch.Close()
}

// finishTrack consumes a completion notification: it settles history
// and loop bookkeeping based on why the stream ended, then advances.
func (o *Orchestrator) finishTrack(ctx context.Context, guildID snowflake.ID, playErr error) {
	s := o.sessions.Peek(guildID)
	if s == nil {
		return
	}

	if playErr != nil {
		slog.Warn("stream ended with error", "guild", guildID, "error", playErr)
	}

	reason := s.TakeEndReason()
	finished := s.Current
	s.Current = nil
	if s.State != domain.StateIdle {
		s.State = domain.StateConnectedIdle
	}

	if finished != nil {
		switch reason {
		case domain.EndRestart:
			// The triggering operation already re-queued the track;
			// history must not grow.
		case domain.EndNatural:
			if s.Loop {
				s.PushFront(finished.Track)
			} else {
				s.PushHistory(finished.Track)
			}
		default: // EndSkipped, EndStopped
			s.PushHistory(finished.Track)
		}
	}

	o.advance(ctx, s)
}

// advance promotes the next queue entry into the active playback slot.
// It is iterative: each failed entry is consumed, so the retry count is
// naturally capped by the queue length at entry. When the queue
// exhausts, the session settles to connected-idle.
func (o *Orchestrator) advance(ctx context.Context, s *domain.Session) {
	if !s.Connected() || !o.transport.Connected(s.GuildID) {
		// Torn down while the notification was in flight.
		return
	}

	for {
		track, ok := s.PopFront()
		if !ok {
			break
		}

		resolved, err := o.resolve(ctx, track.SourceRef)
		if err != nil {
			slog.Warn("resolve failed, trying next entry",
				"guild", s.GuildID,
				"track", track.Title,
				"error", err,
			)
			continue
		}

		err = o.transport.Start(ctx, s.GuildID, resolved.StreamURL, s.Volume.Float64())
		if err != nil {
			slog.Warn("stream start failed, trying next entry",
				"guild", s.GuildID,
				"track", track.Title,
				"error", err,
			)
			continue
		}

		s.Current = &domain.NowPlaying{
			Track:      track,
			StreamURL:  resolved.StreamURL,
			ResolvedAt: time.Now(),
		}
		s.State = domain.StatePlaying
		slog.Info("now playing",
			"guild", s.GuildID,
			"track", track.Title,
			"volume", s.Volume.String(),
		)
		o.panel.sync(s)
		return
	}

	s.Current = nil
	s.State = domain.StateConnectedIdle
	o.panel.sync(s)
}

// resolve bounds a resolver call with the configured timeout and folds
// timeouts into the resolver's own error type.
func (o *Orchestrator) resolve(ctx context.Context, query string) (*ports.ResolvedTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, o.resolveTimeout)
	defer cancel()

	resolved, err := o.resolver.Resolve(ctx, query)
	if err != nil {
		var re *ports.ResolveError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &ports.ResolveError{Query: query, Reason: "resolution failed", Err: err}
	}
	return resolved, nil
}
