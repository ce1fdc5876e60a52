package infrastructure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"layeh.com/gopus"

	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// PCM geometry expected by the Discord voice gateway.
const (
	sampleRate  = 48000
	channels    = 2
	frameSize   = 960 // 20ms at 48kHz
	frameBytes  = frameSize * channels * 2
	maxOpusSize = 4000
	opusBitrate = 128 * 1000
)

var errNoActiveStream = errors.New("no active stream")

// stream is one running ffmpeg -> opus pipeline. cancel tears it down;
// done closes once the feed goroutine has fully exited.
type stream struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	paused bool
}

func (s *stream) setPaused(v bool) {
	s.mu.Lock()
	s.paused = v
	s.mu.Unlock()
}

func (s *stream) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// FFmpegTransport feeds Discord voice from a stream URL by piping it
// through ffmpeg (s16le PCM) into an Opus encoder. One voice connection
// and at most one running pipeline per guild; a new Start waits for the
// previous pipeline to wind down before spawning the next.
//
// Pause works by not reading ffmpeg's stdout: the pipe fills and ffmpeg
// stalls on write, so no input is consumed while paused.
type FFmpegTransport struct {
	session    *discordgo.Session
	ffmpegPath string

	mu         sync.Mutex
	voice      map[snowflake.ID]*discordgo.VoiceConnection
	streams    map[snowflake.ID]*stream
	onFinished ports.FinishedFunc
}

// NewFFmpegTransport creates a transport using the given ffmpeg binary,
// or "ffmpeg" from PATH when empty.
func NewFFmpegTransport(session *discordgo.Session, ffmpegPath string) *FFmpegTransport {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegTransport{
		session:    session,
		ffmpegPath: ffmpegPath,
		voice:      make(map[snowflake.ID]*discordgo.VoiceConnection),
		streams:    make(map[snowflake.ID]*stream),
	}
}

// SetOnFinished installs the completion callback. Must be called before
// the first Start.
func (t *FFmpegTransport) SetOnFinished(fn ports.FinishedFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinished = fn
}

// Join implements ports.AudioTransport.
func (t *FFmpegTransport) Join(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) error {
	vc, err := t.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("join voice channel %s: %w", channelID, err)
	}

	t.mu.Lock()
	t.voice[guildID] = vc
	t.mu.Unlock()
	return nil
}

// Leave implements ports.AudioTransport. It waits for any running
// pipeline to exit before disconnecting.
func (t *FFmpegTransport) Leave(guildID snowflake.ID) error {
	t.mu.Lock()
	st := t.streams[guildID]
	vc := t.voice[guildID]
	delete(t.voice, guildID)
	t.mu.Unlock()

	if st != nil {
		st.cancel()
		<-st.done
	}
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// Connected implements ports.AudioTransport.
func (t *FFmpegTransport) Connected(guildID snowflake.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voice[guildID] != nil
}

// Start implements ports.AudioTransport.
func (t *FFmpegTransport) Start(
	ctx context.Context,
	guildID snowflake.ID,
	streamURL string,
	volume float64,
) error {
	t.mu.Lock()
	vc := t.voice[guildID]
	prev := t.streams[guildID]
	t.mu.Unlock()

	if vc == nil {
		return &ports.StartError{Err: errors.New("no voice connection")}
	}
	if prev != nil {
		// The previous pipeline already received its stop; give it a
		// moment to release the Opus send channel.
		prev.cancel()
		select {
		case <-prev.done:
		case <-time.After(5 * time.Second):
			return &ports.StartError{Err: errors.New("previous stream did not exit")}
		}
	}

	cmd := exec.Command(t.ffmpegPath, ffmpegArgs(streamURL, volume)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ports.StartError{Err: fmt.Errorf("ffmpeg stdout pipe: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		return &ports.StartError{Err: fmt.Errorf("ffmpeg start: %w", err)}
	}

	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return &ports.StartError{Err: fmt.Errorf("opus encoder: %w", err)}
	}
	enc.SetBitrate(opusBitrate)

	streamCtx, cancel := context.WithCancel(context.Background())
	st := &stream{cancel: cancel, done: make(chan struct{})}

	t.mu.Lock()
	t.streams[guildID] = st
	t.mu.Unlock()

	go t.feed(streamCtx, st, guildID, vc, cmd, stdout, enc)
	return nil
}

// Stop implements ports.AudioTransport. It signals the pipeline and
// returns; the completion callback fires once the feed goroutine exits.
func (t *FFmpegTransport) Stop(guildID snowflake.ID) {
	t.mu.Lock()
	st := t.streams[guildID]
	t.mu.Unlock()

	if st != nil {
		st.cancel()
	}
}

// Pause implements ports.AudioTransport.
func (t *FFmpegTransport) Pause(guildID snowflake.ID) error {
	t.mu.Lock()
	st := t.streams[guildID]
	t.mu.Unlock()

	if st == nil {
		return errNoActiveStream
	}
	st.setPaused(true)
	return nil
}

// Resume implements ports.AudioTransport.
func (t *FFmpegTransport) Resume(guildID snowflake.ID) error {
	t.mu.Lock()
	st := t.streams[guildID]
	t.mu.Unlock()

	if st == nil {
		return errNoActiveStream
	}
	st.setPaused(false)
	return nil
}

// feed reads PCM frames from ffmpeg, encodes them and pushes them onto
// the voice connection until the stream ends or is cancelled. It owns
// the pipeline teardown and fires the completion callback exactly once,
// as its final act.
func (t *FFmpegTransport) feed(
	ctx context.Context,
	st *stream,
	guildID snowflake.ID,
	vc *discordgo.VoiceConnection,
	cmd *exec.Cmd,
	stdout io.ReadCloser,
	enc *gopus.Encoder,
) {
	var playErr error

	defer func() {
		_ = vc.Speaking(false)
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		t.mu.Lock()
		if t.streams[guildID] == st {
			delete(t.streams, guildID)
		}
		fn := t.onFinished
		t.mu.Unlock()

		close(st.done)
		if fn != nil {
			fn(guildID, playErr)
		}
	}()

	if err := vc.Speaking(true); err != nil {
		slog.Warn("speaking state update failed", "guild", guildID, "error", err)
	}

	reader := bufio.NewReaderSize(stdout, 16384)
	raw := make([]byte, frameBytes)
	pcm := make([]int16, frameSize*channels)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if st.isPaused() {
			time.Sleep(20 * time.Millisecond)
			continue
		}

		n, err := io.ReadFull(reader, raw)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				playErr = fmt.Errorf("read pcm: %w", err)
			}
			// A trailing partial frame is dropped rather than padded.
			return
		}

		for i := 0; i < n/2; i++ {
			pcm[i] = int16(raw[i*2]) | int16(raw[i*2+1])<<8
		}

		opus, err := enc.Encode(pcm, frameSize, maxOpusSize)
		if err != nil {
			playErr = fmt.Errorf("opus encode: %w", err)
			return
		}

		select {
		case vc.OpusSend <- opus:
		case <-ctx.Done():
			return
		}
	}
}

// ffmpegArgs builds the decode command line: reconnect-tolerant HTTP
// input, audio only, a volume filter and raw little-endian PCM out on
// stdout at the gateway's sample geometry.
func ffmpegArgs(streamURL string, volume float64) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", streamURL,
		"-vn",
		"-filter:a", fmt.Sprintf("volume=%.2f", volume),
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	}
}

// Ensure FFmpegTransport implements ports.AudioTransport.
var _ ports.AudioTransport = (*FFmpegTransport)(nil)
