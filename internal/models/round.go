package models

import (
	"strings"
	"time"
)

// TokenCorrect is the answer token voters pick when they believe they found
// the real answer among the fakes.
const TokenCorrect = "correct"

const answerTokenPrefix = "answer_"

// AnswerToken returns the vote token for a player's fake answer.
func AnswerToken(playerID string) string {
	return answerTokenPrefix + playerID
}

// AnswerAuthor extracts the submitting player id from an answer token.
// Returns false for the correct sentinel or anything malformed.
func AnswerAuthor(token string) (string, bool) {
	id, ok := strings.CutPrefix(token, answerTokenPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Choice is one entry on the voting ballot: a fake answer's token or the
// correct sentinel, with the text to display. The order is fixed server-side
// when voting opens so every client sees the same shuffled ballot.
type Choice struct {
	Token string `json:"token"`
	Text  string `json:"text"`
}

// Round holds one round's state from the card draw until scoring folds it
// into the room's history.
type Round struct {
	RoundmasterID string
	CardID        int
	DieRoll       int
	Category      Category

	Answers       map[string]string // submitting player id -> text
	VotesCorrect  map[string]string // voter id -> answer token
	VotesFunniest map[string]string // voter id -> answer token
	Choices       []Choice          // built when voting opens

	AnswerDeadline time.Time
	VotingDeadline time.Time
}

// NewRound creates a round for the given roundmaster with the rolled
// category of the drawn card.
func NewRound(roundmasterID string, card Card, dieRoll int) *Round {
	return &Round{
		RoundmasterID: roundmasterID,
		CardID:        card.ID,
		DieRoll:       dieRoll,
		Category:      card.Categories[dieRoll-1],
		Answers:       make(map[string]string),
		VotesCorrect:  make(map[string]string),
		VotesFunniest: make(map[string]string),
	}
}
