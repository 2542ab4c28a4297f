// Package room implements the authoritative per-room game engine: the phase
// state machine, the round engine and the registry that owns room lifetimes.
//
// Each room is a single-writer serialization domain. Every command (joins,
// answers, votes, phase starts and timer-fired deadlines) runs the same
// lock -> validate -> mutate -> unlock -> broadcast sequence against the
// room's mutex, so no two commands ever observe overlapping state. Different
// rooms share nothing and run fully in parallel.
package room

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"fakeout/internal/broadcast"
	"fakeout/internal/clock"
	"fakeout/internal/game"
	"fakeout/internal/models"
	"fakeout/internal/store"
)

var errCorrupted = errors.New("room corrupted")

// Room is one game's top-level state machine.
type Room struct {
	mu sync.Mutex

	code       string
	maxPlayers int
	phase      models.Phase
	players    []*models.Player // insertion order = join order; ids unique
	roundNum   int
	current    *models.Round

	// Index into players of the current round's roundmaster, -1 before the
	// first round. Rotation is by join order with wrap-around; players are
	// never removed, so the index stays stable.
	roundmasterIdx int

	funniestTotals  map[string]int
	lastReasons     map[string][]string
	winners         []models.Player
	funniestWinners []models.Player

	deck   *game.Deck
	clk    clock.Clock
	caster broadcast.Broadcaster
	tokens *store.SessionStore
	log    *slog.Logger

	// Deadline timer for the active phase. The generation is bumped on every
	// phase change so a stale timer firing late is a no-op.
	timer    clock.Timer
	timerGen int

	closed     bool
	emptySince time.Time
}

// New creates an empty room in the lobby phase.
func New(code string, maxPlayers int, deck *game.Deck, clk clock.Clock, caster broadcast.Broadcaster, tokens *store.SessionStore, log *slog.Logger) *Room {
	if maxPlayers < game.MinPlayers {
		maxPlayers = game.DefaultMaxPlayers
	}
	return &Room{
		code:           code,
		maxPlayers:     maxPlayers,
		phase:          models.PhaseLobby,
		roundmasterIdx: -1,
		funniestTotals: make(map[string]int),
		lastReasons:    make(map[string][]string),
		deck:           deck,
		clk:            clk,
		caster:         caster,
		tokens:         tokens,
		log:            log.With("room", code),
		emptySince:     clk.Now(),
	}
}

// Code returns the room's immutable join code.
func (r *Room) Code() string {
	return r.code
}

// Join adds a player while the room is in the lobby. The first joiner
// becomes the host. Returns the new player's id and a session token for
// reconnecting.
func (r *Room) Join(name string) (playerID, token string, err error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > game.MaxNameLength {
		return "", "", fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidSubmission, game.MaxNameLength)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", "", ErrRoomNotFound
	}
	if r.phase != models.PhaseLobby {
		r.mu.Unlock()
		return "", "", ErrGameAlreadyStarted
	}
	if len(r.players) >= r.maxPlayers {
		r.mu.Unlock()
		return "", "", fmt.Errorf("%w: room holds at most %d players", ErrRoomFull, r.maxPlayers)
	}

	role := models.RoleGuest
	if len(r.players) == 0 {
		role = models.RoleHost
	}
	player := &models.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		Connected: true,
	}
	if r.findPlayerLocked(player.ID) != nil {
		err := r.failLocked("duplicate player id on join")
		r.mu.Unlock()
		return "", "", err
	}
	r.players = append(r.players, player)
	r.emptySince = time.Time{}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	token = r.tokens.Issue(r.code, player.ID)
	r.log.Info("player joined", "player", player.ID, "name", name, "role", role)
	r.publish(snap)
	return player.ID, token, nil
}

// Reconnect restores a player identified by a resolved session token: the
// same Player entry flips back to connected, nothing is created. Returns the
// player's personalized snapshot.
func (r *Room) Reconnect(playerID string) (models.Snapshot, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return models.Snapshot{}, ErrRoomNotFound
	}
	player := r.findPlayerLocked(playerID)
	if player == nil {
		r.mu.Unlock()
		return models.Snapshot{}, fmt.Errorf("%w: unknown player", ErrRoomNotFound)
	}
	player.Connected = true
	r.emptySince = time.Time{}
	personal := r.snapshotLocked(playerID)
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.log.Info("player reconnected", "player", playerID)
	r.publish(snap)
	return personal, nil
}

// Disconnect marks a player as gone without removing them; their identity,
// points and any submitted answer survive for a later Reconnect.
func (r *Room) Disconnect(playerID string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	player := r.findPlayerLocked(playerID)
	if player == nil || !player.Connected {
		r.mu.Unlock()
		return
	}
	player.Connected = false
	if r.connectedCountLocked() == 0 {
		r.emptySince = r.clk.Now()
	}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.log.Info("player disconnected", "player", playerID)
	r.publish(snap)
}

// StartGame moves lobby -> playing. Host only, needs at least two players.
// maxPlayers is fixed from the lobby configuration at this point.
func (r *Room) StartGame(callerID string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if r.phase != models.PhaseLobby {
		r.mu.Unlock()
		return ErrGameAlreadyStarted
	}
	caller := r.findPlayerLocked(callerID)
	if caller == nil || caller.Role != models.RoleHost {
		r.mu.Unlock()
		return fmt.Errorf("%w: only the host can start the game", ErrUnauthorized)
	}
	if len(r.players) < game.MinPlayers {
		r.mu.Unlock()
		return fmt.Errorf("%w: need at least %d players", ErrNotEnoughPlayers, game.MinPlayers)
	}
	r.phase = models.PhasePlaying
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.log.Info("game started", "players", len(snap.Players))
	r.publish(snap)
	return nil
}

// StartRound moves playing|results -> round_active. Only the designated next
// roundmaster may call it: the first player for the first round, then the
// player after the previous roundmaster in join order, wrapping.
func (r *Room) StartRound(callerID string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if r.phase != models.PhasePlaying && r.phase != models.PhaseResults {
		r.mu.Unlock()
		return fmt.Errorf("%w: no round can be started now", ErrUnauthorized)
	}
	next := r.nextRoundmasterLocked()
	if callerID != next.ID {
		r.mu.Unlock()
		return fmt.Errorf("%w: it is %s's turn to start the round", ErrUnauthorized, next.Name)
	}
	r.beginRoundLocked()
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.log.Info("round started", "round", snap.RoundNumber, "roundmaster", next.ID)
	r.publish(snap)
	return nil
}

// Snapshot returns the current state as seen by viewerID; an empty viewer id
// yields the spectator view. This backs get_state polling.
func (r *Room) Snapshot(viewerID string) (models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return models.Snapshot{}, ErrRoomNotFound
	}
	return r.snapshotLocked(viewerID), nil
}

// Close shuts the room down: pending timers are cancelled and every
// subsequent command is rejected with ErrRoomNotFound. Idempotent.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Evictable reports whether the room has had zero connected players for at
// least the grace window.
func (r *Room) Evictable(now time.Time, grace time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.emptySince.IsZero() && now.Sub(r.emptySince) >= grace
}

// ConnectedCount returns how many players are currently connected.
func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedCountLocked()
}

func (r *Room) connectedCountLocked() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) findPlayerLocked(id string) *models.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// nextRoundmasterLocked returns the player whose turn it is to run the next
// round. Must only be called with at least one player present.
func (r *Room) nextRoundmasterLocked() *models.Player {
	return r.players[(r.roundmasterIdx+1)%len(r.players)]
}

// failLocked handles a room-internal invariant violation: the room is fatal
// to itself only, so it closes and every later command sees ErrRoomNotFound.
func (r *Room) failLocked(msg string) error {
	r.log.Error("invariant violation, closing room", "reason", msg)
	r.closed = true
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return errCorrupted
}

// publish hands the snapshot to the broadcaster outside the room lock.
// Broadcasting is fire-and-forget and never rolls back a state change.
func (r *Room) publish(snap models.Snapshot) {
	r.caster.Publish(broadcast.Topic(r.code), snap)
}
