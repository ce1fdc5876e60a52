package application

import "errors"

// User-facing operation results. Handlers map these directly to short
// acknowledgment messages; none of them is escalated further.
var (
	// ErrNotInVoice is returned when the caller is not in a voice channel.
	ErrNotInVoice = errors.New("you must be in a voice channel")

	// ErrNothingPlaying is returned when an operation needs an active track.
	ErrNothingPlaying = errors.New("nothing is playing")

	// ErrNothingToSkip is returned by Skip with no track and an empty queue.
	ErrNothingToSkip = errors.New("nothing to skip")

	// ErrNothingToStop is returned by Stop when the session is already idle.
	ErrNothingToStop = errors.New("nothing to stop")

	// ErrAlreadyPaused is returned by Pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned by Resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNothingToGoBack is returned by Back with no history and no track.
	ErrNothingToGoBack = errors.New("nothing to go back to")

	// ErrShuttingDown is returned when a command arrives after the
	// dispatcher has been closed. Its task never runs.
	ErrShuttingDown = errors.New("the bot is shutting down")
)
