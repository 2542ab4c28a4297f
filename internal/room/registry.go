package room

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fakeout/internal/broadcast"
	"fakeout/internal/clock"
	"fakeout/internal/game"
	"fakeout/internal/models"
	"fakeout/internal/store"
)

// sweepInterval is how often the janitor looks for evictable rooms.
const sweepInterval = 10 * time.Second

// Registry is the process-wide directory of rooms. It creates rooms with
// collision-free codes and evicts rooms that have sat with zero connected
// players for the grace window.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cards  []models.Card
	clk    clock.Clock
	caster broadcast.Broadcaster
	tokens *store.SessionStore
	grace  time.Duration
	log    *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry creates a registry and starts its eviction janitor.
func NewRegistry(cards []models.Card, clk clock.Clock, caster broadcast.Broadcaster, tokens *store.SessionStore, grace time.Duration, log *slog.Logger) *Registry {
	reg := &Registry{
		rooms:  make(map[string]*Room),
		cards:  cards,
		clk:    clk,
		caster: caster,
		tokens: tokens,
		grace:  grace,
		log:    log,
		done:   make(chan struct{}),
	}
	go reg.janitor()
	return reg
}

// CreateRoom registers a fresh lobby-phase room and returns its code. Each
// room gets its own shuffled deck.
func (reg *Registry) CreateRoom(maxPlayers int) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for {
		code := game.GenerateRoomCode()
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		rm := New(code, maxPlayers, game.NewDeck(reg.cards), reg.clk, reg.caster, reg.tokens, reg.log)
		reg.rooms[code] = rm
		reg.log.Info("room created", "room", code, "max_players", maxPlayers)
		return code
	}
}

// Get retrieves a room by code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rm, exists := reg.rooms[code]
	return rm, exists
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Rejoin resolves a session token and reconnects the player it names. The
// room code from the connection must match the token's room. On any miss the
// caller is expected to fall back to a fresh join or spectate.
func (reg *Registry) Rejoin(code, token string) (*Room, models.Snapshot, string, error) {
	sess, ok := reg.tokens.Resolve(token)
	if !ok || sess.RoomCode != code {
		return nil, models.Snapshot{}, "", fmt.Errorf("%w: unknown session token", ErrRoomNotFound)
	}
	rm, ok := reg.Get(sess.RoomCode)
	if !ok {
		return nil, models.Snapshot{}, "", ErrRoomNotFound
	}
	snap, err := rm.Reconnect(sess.PlayerID)
	if err != nil {
		return nil, models.Snapshot{}, "", err
	}
	return rm, snap, sess.PlayerID, nil
}

// Close stops the janitor and closes every room.
func (reg *Registry) Close() {
	reg.closeOnce.Do(func() {
		close(reg.done)
	})
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for code, rm := range reg.rooms {
		rm.Close()
		delete(reg.rooms, code)
	}
}

func (reg *Registry) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-reg.done:
			return
		case <-ticker.C:
			reg.sweep()
		}
	}
}

// sweep evicts rooms that have been empty past the grace window. Eviction is
// serialized against command delivery: Close flips the room's closed flag
// under the room lock, so a command racing the eviction either completes
// against the dying instance or sees ErrRoomNotFound, never silence.
func (reg *Registry) sweep() {
	now := reg.clk.Now()

	reg.mu.RLock()
	var evict []*Room
	for _, rm := range reg.rooms {
		if rm.Evictable(now, reg.grace) {
			evict = append(evict, rm)
		}
	}
	reg.mu.RUnlock()

	for _, rm := range evict {
		rm.Close()
		reg.tokens.DropRoom(rm.Code())
		reg.mu.Lock()
		delete(reg.rooms, rm.Code())
		reg.mu.Unlock()
		reg.log.Info("evicted idle room", "room", rm.Code())
	}
}
