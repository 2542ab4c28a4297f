package models

// RoundView is the externally visible slice of the current round. What it
// contains depends on the phase and on who is looking: the real answer and
// the raw vote maps appear only once results are in, and the You* fields are
// filled only for snapshots requested by a specific player.
type RoundView struct {
	RoundmasterID    string   `json:"roundmaster_id"`
	CardID           int      `json:"card_id"`
	DieRoll          int      `json:"die_roll"`
	CategoryName     string   `json:"category_name"`
	Question         string   `json:"question"`
	Answer           string   `json:"answer,omitempty"`
	AnswersSubmitted int      `json:"answers_submitted"`
	YouSubmitted     bool     `json:"you_submitted,omitempty"`
	Choices          []Choice `json:"choices,omitempty"`

	// Who has voted, without revealing what they picked.
	VotedCorrect  map[string]bool `json:"voted_correct,omitempty"`
	VotedFunniest map[string]bool `json:"voted_funniest,omitempty"`

	// Full vote maps, revealed with the answer at results.
	VotesCorrect  map[string]string `json:"votes_correct,omitempty"`
	VotesFunniest map[string]string `json:"votes_funniest,omitempty"`

	YourVoteCorrect  string `json:"your_vote_correct,omitempty"`
	YourVoteFunniest string `json:"your_vote_funniest,omitempty"`

	// Whole seconds left on the phase deadline, 0 when no deadline is armed.
	TimerRemaining int `json:"timer_remaining"`
}

// Snapshot is the full state pushed to subscribers on every mutation and
// returned by get_state.
type Snapshot struct {
	RoomCode        string     `json:"room_code"`
	MaxPlayers      int        `json:"max_players"`
	Players         []Player   `json:"players"`
	GameState       Phase      `json:"game_state"`
	RoundNumber     int        `json:"round_number"`
	CurrentRound    *RoundView `json:"current_round"`
	Winners         []Player   `json:"winners,omitempty"`
	FunniestWinners []Player   `json:"funniest_winner,omitempty"`

	LastRoundScoreReasons map[string][]string `json:"last_round_score_reasons,omitempty"`
}
