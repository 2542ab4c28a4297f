package game

import "time"

const (
	// MinPlayers is the minimum number of players required to start a game
	MinPlayers = 2

	// DefaultMaxPlayers is used when a room is created without a limit
	DefaultMaxPlayers = 10

	// WinningScore ends the game once any player reaches it
	WinningScore = 6

	// AnswerTimeout is how long players have to submit a fake answer
	AnswerTimeout = 90 * time.Second

	// VotingTimeout is how long voters have to cast both votes
	VotingTimeout = 60 * time.Second

	// MaxAnswerLength is the fake-answer length cap in runes
	MaxAnswerLength = 200

	// MaxNameLength is the player-name length cap in runes
	MaxNameLength = 30

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
