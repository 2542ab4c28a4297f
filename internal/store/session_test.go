package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionStore_IssueAndResolve(t *testing.T) {
	// Given two issued tokens for different players
	s := NewSessionStore()
	t1 := s.Issue("ABCDEF", "player-1")
	t2 := s.Issue("ABCDEF", "player-2")

	// Then each token resolves to its own identity
	require.NotEqual(t, t1, t2)
	sess, ok := s.Resolve(t1)
	require.True(t, ok)
	require.Equal(t, Session{RoomCode: "ABCDEF", PlayerID: "player-1"}, sess)

	// And an unknown token resolves to nothing
	_, ok = s.Resolve("bogus")
	require.False(t, ok)
}

func TestSessionStore_DropRoom(t *testing.T) {
	// Given sessions across two rooms
	s := NewSessionStore()
	kept := s.Issue("KEEPME", "player-1")
	dropped := s.Issue("BYEBYE", "player-2")

	// When one room's sessions are dropped
	s.DropRoom("BYEBYE")

	// Then only that room's tokens are gone
	_, ok := s.Resolve(dropped)
	require.False(t, ok)
	_, ok = s.Resolve(kept)
	require.True(t, ok)
	require.Equal(t, 1, s.Len())
}
