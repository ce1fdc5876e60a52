package application

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/mizuki-ao/boombox/internal/modules/player/domain"
)

func TestSessions_GetCreatesLazily(t *testing.T) {
	r := NewSessions()

	if s := r.Peek(snowflake.ID(1)); s != nil {
		t.Fatalf("Peek before Get = %+v, want nil", s)
	}
	if r.Count() != 0 {
		t.Fatalf("Count = %d, want 0", r.Count())
	}

	s := r.Get(snowflake.ID(1))
	if s == nil {
		t.Fatal("Get returned nil")
	}
	if s.GuildID != snowflake.ID(1) {
		t.Errorf("GuildID = %d, want 1", s.GuildID)
	}
	if s.State != domain.StateIdle {
		t.Errorf("State = %v, want StateIdle", s.State)
	}
	if s.Volume != domain.VolumeDefault {
		t.Errorf("Volume = %v, want %v", s.Volume, domain.VolumeDefault)
	}
}

func TestSessions_GetReturnsSameSession(t *testing.T) {
	r := NewSessions()

	a := r.Get(snowflake.ID(1))
	b := r.Get(snowflake.ID(1))
	if a != b {
		t.Error("repeated Get returned distinct sessions")
	}
	if p := r.Peek(snowflake.ID(1)); p != a {
		t.Error("Peek returned a different session than Get")
	}
}

func TestSessions_GuildsIsolated(t *testing.T) {
	r := NewSessions()

	a := r.Get(snowflake.ID(1))
	b := r.Get(snowflake.ID(2))
	if a == b {
		t.Fatal("distinct guilds share a session")
	}

	a.Loop = true
	if b.Loop {
		t.Error("mutation of one guild's session leaked into another")
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
}
