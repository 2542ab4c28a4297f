package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fakeout/internal/clock"
	"fakeout/internal/game"
	"fakeout/internal/models"
	"fakeout/internal/store"
)

func newTestRegistry(t *testing.T, grace time.Duration) (*Registry, *clock.Manual, *store.SessionStore) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 1, 1, 19, 0, 0, 0, time.UTC))
	tokens := store.NewSessionStore()
	reg := NewRegistry(game.DefaultCards(), clk, &captureCaster{}, tokens, grace, testLogger())
	t.Cleanup(reg.Close)
	return reg, clk, tokens
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg, _, _ := newTestRegistry(t, 2*time.Minute)

	code := reg.CreateRoom(0)
	require.Len(t, code, game.RoomCodeLength)

	rm, ok := reg.Get(code)
	require.True(t, ok)
	require.Equal(t, code, rm.Code())
	require.Equal(t, 1, reg.Len())

	_, ok = reg.Get("NOSUCH")
	require.False(t, ok)
}

func TestRegistry_Rejoin(t *testing.T) {
	// Given a player who joined and then dropped their connection
	reg, _, _ := newTestRegistry(t, 2*time.Minute)
	code := reg.CreateRoom(0)
	rm, _ := reg.Get(code)
	playerID, token, err := rm.Join("alice")
	require.NoError(t, err)
	rm.Disconnect(playerID)
	require.Equal(t, 0, rm.ConnectedCount())

	// When they rejoin with their session token
	got, snap, gotID, err := reg.Rejoin(code, token)
	require.NoError(t, err)

	// Then the same identity comes back on the same room
	require.Same(t, rm, got)
	require.Equal(t, playerID, gotID)
	require.Len(t, snap.Players, 1)
	require.Equal(t, 1, rm.ConnectedCount())
}

func TestRegistry_RejoinRejectsForeignToken(t *testing.T) {
	// Given a token issued for one room and a connection to another
	reg, _, _ := newTestRegistry(t, 2*time.Minute)
	first := reg.CreateRoom(0)
	second := reg.CreateRoom(0)
	rm, _ := reg.Get(first)
	_, token, err := rm.Join("alice")
	require.NoError(t, err)

	// Then the token does not open the other room, nor does garbage
	_, _, _, err = reg.Rejoin(second, token)
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, _, _, err = reg.Rejoin(first, "bogus")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_SweepEvictsIdleRooms(t *testing.T) {
	// Given one room left empty and one with a connected player
	reg, clk, tokens := newTestRegistry(t, 2*time.Minute)
	idle := reg.CreateRoom(0)
	busy := reg.CreateRoom(0)
	idleRoom, _ := reg.Get(idle)
	ghostID, idleToken, err := idleRoom.Join("ghost")
	require.NoError(t, err)
	busyRoom, _ := reg.Get(busy)
	_, _, err = busyRoom.Join("alice")
	require.NoError(t, err)

	// When the idle room's only player leaves and the grace window passes
	idleRoom.Disconnect(ghostID)
	clk.Advance(3 * time.Minute)
	reg.sweep()

	// Then only the idle room is gone, along with its session tokens
	_, ok := reg.Get(idle)
	require.False(t, ok)
	_, ok = reg.Get(busy)
	require.True(t, ok)
	_, ok = tokens.Resolve(idleToken)
	require.False(t, ok)

	// And commands racing the eviction see a missing room, not silence
	_, _, err = idleRoom.Join("latecomer")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_FreshEmptyRoomIsEvictable(t *testing.T) {
	// A room nobody ever joined counts as empty from creation
	reg, clk, _ := newTestRegistry(t, 2*time.Minute)
	code := reg.CreateRoom(0)

	clk.Advance(time.Minute)
	reg.sweep()
	_, ok := reg.Get(code)
	require.True(t, ok, "still inside the grace window")

	clk.Advance(2 * time.Minute)
	reg.sweep()
	_, ok = reg.Get(code)
	require.False(t, ok)
}

func TestRegistry_CloseShutsEveryRoom(t *testing.T) {
	reg, _, _ := newTestRegistry(t, 2*time.Minute)
	code := reg.CreateRoom(0)
	rm, _ := reg.Get(code)

	reg.Close()
	reg.Close()

	require.Equal(t, 0, reg.Len())
	_, _, err := rm.Join("alice")
	require.ErrorIs(t, err, ErrRoomNotFound)
	_, err = rm.Snapshot("")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_RoomsRunIndependently(t *testing.T) {
	// Two rooms progressing out of step never interfere
	reg, _, _ := newTestRegistry(t, 2*time.Minute)
	first := reg.CreateRoom(0)
	second := reg.CreateRoom(0)
	a, _ := reg.Get(first)
	b, _ := reg.Get(second)

	hostA, _, err := a.Join("alice")
	require.NoError(t, err)
	_, _, err = a.Join("bob")
	require.NoError(t, err)
	require.NoError(t, a.StartGame(hostA))

	snapB, err := b.Snapshot("")
	require.NoError(t, err)
	require.Equal(t, models.PhaseLobby, snapB.GameState)
	snapA, err := a.Snapshot("")
	require.NoError(t, err)
	require.Equal(t, models.PhasePlaying, snapA.GameState)
}
