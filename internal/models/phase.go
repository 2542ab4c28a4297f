package models

// Phase represents the lifecycle stage of a room
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhasePlaying     Phase = "playing"
	PhaseRoundActive Phase = "round_active"
	PhaseVoting      Phase = "voting"
	PhaseResults     Phase = "results"
	PhaseGameOver    Phase = "game_over"
)
