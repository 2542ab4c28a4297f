package store

import (
	"sync"

	"github.com/google/uuid"
)

// Session ties a reconnection token to a player identity within a room.
type Session struct {
	RoomCode string
	PlayerID string
}

// SessionStore manages session token storage. Tokens are opaque, issued once
// per player, never reused and never mutated; they live exactly as long as
// the owning room.
type SessionStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
	}
}

// Issue creates a fresh token for the given room and player.
func (s *SessionStore) Issue(roomCode, playerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.sessions[token] = Session{RoomCode: roomCode, PlayerID: playerID}
	return token
}

// Resolve looks a token up.
func (s *SessionStore) Resolve(token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[token]
	return sess, exists
}

// DropRoom removes every session belonging to the given room. Called when a
// room is evicted.
func (s *SessionStore) DropRoom(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.RoomCode == roomCode {
			delete(s.sessions, token)
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
