package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/mizuki-ao/boombox/internal/modules/player/ports"
)

// mockResolver maps free-text queries to fabricated canonical URLs and
// issues a fresh stream URL per call, mimicking expiring URLs.
type mockResolver struct {
	mu      sync.Mutex
	calls   []string
	issued  int
	failFor map[string]bool
}

func newMockResolver() *mockResolver {
	return &mockResolver{failFor: make(map[string]bool)}
}

func sourceRefFor(query string) string {
	if strings.HasPrefix(query, "http") {
		return query
	}
	return "https://yt.example/watch/" + query
}

func (m *mockResolver) Resolve(_ context.Context, query string) (*ports.ResolvedTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, query)
	if m.failFor[query] {
		return nil, &ports.ResolveError{Query: query, Reason: "no match"}
	}

	m.issued++
	ref := sourceRefFor(query)
	return &ports.ResolvedTrack{
		SourceRef: ref,
		Title:     "Track " + strings.TrimPrefix(ref, "https://yt.example/watch/"),
		StreamURL: fmt.Sprintf("%s?stream=%d", ref, m.issued),
	}, nil
}

type startCall struct {
	guildID   snowflake.ID
	streamURL string
	volume    float64
}

// mockTransport mimics the audio transport: Stop and Leave fire the
// completion callback synchronously from the caller's goroutine, which
// exercises the same submit-back handoff as the real streamer.
type mockTransport struct {
	mu          sync.Mutex
	onFinished  ports.FinishedFunc
	connected   map[snowflake.ID]bool
	active      map[snowflake.ID]bool
	starts      []startCall
	startErrFor map[string]bool
	joinErr     error
	pauseErr    error
	resumeErr   error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		connected:   make(map[snowflake.ID]bool),
		active:      make(map[snowflake.ID]bool),
		startErrFor: make(map[string]bool),
	}
}

func (m *mockTransport) SetOnFinished(fn ports.FinishedFunc) {
	m.onFinished = fn
}

func (m *mockTransport) Join(_ context.Context, guildID, _ snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected[guildID] = true
	return nil
}

func (m *mockTransport) Leave(guildID snowflake.ID) error {
	m.mu.Lock()
	wasActive := m.active[guildID]
	m.active[guildID] = false
	m.connected[guildID] = false
	m.mu.Unlock()

	if wasActive && m.onFinished != nil {
		m.onFinished(guildID, nil)
	}
	return nil
}

func (m *mockTransport) Connected(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected[guildID]
}

func (m *mockTransport) Start(
	_ context.Context,
	guildID snowflake.ID,
	streamURL string,
	volume float64,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.starts = append(m.starts, startCall{guildID: guildID, streamURL: streamURL, volume: volume})
	if m.startErrFor[streamURL] {
		return &ports.StartError{Err: fmt.Errorf("refused %s", streamURL)}
	}
	m.active[guildID] = true
	return nil
}

func (m *mockTransport) Stop(guildID snowflake.ID) {
	m.mu.Lock()
	wasActive := m.active[guildID]
	m.active[guildID] = false
	m.mu.Unlock()

	if wasActive && m.onFinished != nil {
		m.onFinished(guildID, nil)
	}
}

func (m *mockTransport) Pause(_ snowflake.ID) error  { return m.pauseErr }
func (m *mockTransport) Resume(_ snowflake.ID) error { return m.resumeErr }

// FireFinished simulates a stream reaching its natural end.
func (m *mockTransport) FireFinished(guildID snowflake.ID, playErr error) {
	m.mu.Lock()
	m.active[guildID] = false
	m.mu.Unlock()

	if m.onFinished != nil {
		m.onFinished(guildID, playErr)
	}
}

func (m *mockTransport) lastStart() startCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.starts) == 0 {
		return startCall{}
	}
	return m.starts[len(m.starts)-1]
}

func (m *mockTransport) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.starts)
}

// mockPanelGateway records renders. editGone forces ErrPanelGone once.
type mockPanelGateway struct {
	mu       sync.Mutex
	nextID   snowflake.ID
	creates  int
	edits    int
	editGone bool
	lastView ports.PanelView
}

func newMockPanelGateway() *mockPanelGateway {
	return &mockPanelGateway{nextID: 1000}
}

func (m *mockPanelGateway) Create(_ snowflake.ID, view ports.PanelView) (snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.lastView = view
	m.nextID++
	return m.nextID, nil
}

func (m *mockPanelGateway) Edit(_, _ snowflake.ID, view ports.PanelView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editGone {
		m.editGone = false
		return ports.ErrPanelGone
	}
	m.edits++
	m.lastView = view
	return nil
}

func (m *mockPanelGateway) counts() (creates, edits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates, m.edits
}

// mockVoiceState reports a fixed user -> voice channel mapping.
type mockVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
	err      error
}

func newMockVoiceState() *mockVoiceState {
	return &mockVoiceState{channels: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceState) UserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

// fixture bundles an orchestrator with all its mocks.
type fixture struct {
	orch      *Orchestrator
	sessions  *Sessions
	dispatch  *Dispatcher
	resolver  *mockResolver
	transport *mockTransport
	panel     *mockPanelGateway
	voice     *mockVoiceState
}

func newFixture() *fixture {
	sessions := NewSessions()
	dispatch := NewDispatcher()
	resolver := newMockResolver()
	transport := newMockTransport()
	panelGW := newMockPanelGateway()
	voice := newMockVoiceState()

	panel := NewPanelSynchronizer(panelGW, sessions, dispatch, 6)
	orch := NewOrchestrator(sessions, dispatch, resolver, transport, voice, panel, 0)
	transport.SetOnFinished(orch.HandleTrackEnd)

	return &fixture{
		orch:      orch,
		sessions:  sessions,
		dispatch:  dispatch,
		resolver:  resolver,
		transport: transport,
		panel:     panelGW,
		voice:     voice,
	}
}

// drain waits until every task queued for the guild so far has run.
func (f *fixture) drain(guildID snowflake.ID) {
	f.dispatch.Run(guildID, func(context.Context) {})
}

func (f *fixture) close() {
	f.dispatch.Close()
}
