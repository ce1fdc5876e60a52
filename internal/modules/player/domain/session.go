package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// State is the playback state of a guild session.
type State int

const (
	// StateIdle means not connected to voice.
	StateIdle State = iota
	// StateConnectedIdle means connected with nothing playing.
	StateConnectedIdle
	// StatePlaying means a stream is actively feeding audio.
	StatePlaying
	// StatePaused means a stream exists but is paused.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateConnectedIdle:
		return "connected-idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// EndReason records why the next completion notification for a session
// will fire. It is set by the operation that forces a stream to stop and
// consumed exactly once by the advance path, which uses it to decide
// history and loop bookkeeping.
type EndReason int

const (
	// EndNatural is the default: the stream ran to its end.
	EndNatural EndReason = iota
	// EndSkipped means the stream was stopped by a skip.
	EndSkipped
	// EndStopped means the stream was stopped by an explicit stop.
	EndStopped
	// EndRestart means the stream was stopped for an in-place restart
	// (volume change, back-to-current). The triggering operation has
	// already re-queued the track; history must not grow.
	EndRestart
)

// NowPlaying is the active playback target: the track plus the transient
// stream URL it was last resolved to.
type NowPlaying struct {
	Track      TrackRef
	StreamURL  string
	ResolvedAt time.Time
}

// Session is the mutable per-guild playback record. It is owned
// exclusively by the orchestrator: every mutation happens inside that
// guild's serialized dispatcher task, so the struct itself carries no
// locking.
type Session struct {
	GuildID snowflake.ID
	State   State

	Queue   []TrackRef // FIFO, front = next to play
	History []TrackRef // most-recent-last
	Current *NowPlaying

	Loop   bool
	Volume Volume

	VoiceChannelID snowflake.ID
	TextChannelID  snowflake.ID // where the panel lives
	PanelMessageID snowflake.ID // 0 = no panel rendered

	endReason EndReason
}

// NewSession creates a session in its initial state.
func NewSession(guildID snowflake.ID) *Session {
	return &Session{
		GuildID: guildID,
		State:   StateIdle,
		Volume:  VolumeDefault,
	}
}

// Connected reports whether the session has a voice connection.
func (s *Session) Connected() bool {
	return s.State != StateIdle
}

// Active reports whether a stream exists (playing or paused).
func (s *Session) Active() bool {
	return s.State == StatePlaying || s.State == StatePaused
}

// Enqueue appends a track to the queue tail.
func (s *Session) Enqueue(t TrackRef) {
	s.Queue = append(s.Queue, t)
}

// PushFront inserts a track at the queue front.
func (s *Session) PushFront(t TrackRef) {
	s.Queue = append([]TrackRef{t}, s.Queue...)
}

// PopFront removes and returns the queue front.
func (s *Session) PopFront() (TrackRef, bool) {
	if len(s.Queue) == 0 {
		return TrackRef{}, false
	}
	t := s.Queue[0]
	s.Queue = s.Queue[1:]
	return t, true
}

// ClearQueue drops all queued tracks and returns how many were dropped.
func (s *Session) ClearQueue() int {
	n := len(s.Queue)
	s.Queue = nil
	return n
}

// PushHistory appends a track to the history tail.
func (s *Session) PushHistory(t TrackRef) {
	s.History = append(s.History, t)
}

// PopHistory removes and returns the most recent history entry.
func (s *Session) PopHistory() (TrackRef, bool) {
	if len(s.History) == 0 {
		return TrackRef{}, false
	}
	t := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return t, true
}

// QueuePreview returns up to n queued titles for display.
func (s *Session) QueuePreview(n int) []string {
	if n > len(s.Queue) {
		n = len(s.Queue)
	}
	titles := make([]string, 0, n)
	for _, t := range s.Queue[:n] {
		titles = append(titles, t.Title)
	}
	return titles
}

// SetEndReason marks why the in-flight stream is about to end.
func (s *Session) SetEndReason(r EndReason) {
	s.endReason = r
}

// TakeEndReason returns the pending end reason and resets it to
// EndNatural.
func (s *Session) TakeEndReason() EndReason {
	r := s.endReason
	s.endReason = EndNatural
	return r
}

// Reset returns the session to its initial state. The record itself is
// retained; this is the terminal transition taken when the voice
// connection drops for any reason.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Queue = nil
	s.History = nil
	s.Current = nil
	s.Loop = false
	s.Volume = VolumeDefault
	s.VoiceChannelID = 0
	s.TextChannelID = 0
	s.PanelMessageID = 0
	s.endReason = EndNatural
}
