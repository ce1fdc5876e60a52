package application

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/mizuki-ao/boombox/internal/modules/player/domain"
)

// Sessions is the owned registry of per-guild playback state, keyed by
// guild ID with lazy create-on-first-access. The map itself is locked;
// the sessions it holds are only ever touched from their guild's
// dispatcher loop.
type Sessions struct {
	mu      sync.RWMutex
	byGuild map[snowflake.ID]*domain.Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{
		byGuild: make(map[snowflake.ID]*domain.Session),
	}
}

// Get returns the guild's session, creating it on first access.
func (r *Sessions) Get(guildID snowflake.ID) *domain.Session {
	r.mu.RLock()
	s, ok := r.byGuild[guildID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byGuild[guildID]; ok {
		return s
	}
	s = domain.NewSession(guildID)
	r.byGuild[guildID] = s
	return s
}

// Peek returns the guild's session, or nil if none exists yet.
func (r *Sessions) Peek(guildID snowflake.ID) *domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byGuild[guildID]
}

// Count returns the number of tracked sessions.
func (r *Sessions) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byGuild)
}
