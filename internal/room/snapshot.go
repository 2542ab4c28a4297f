package room

import (
	"maps"

	"fakeout/internal/models"
)

// snapshotLocked builds the state view for one viewer. Privileged data is
// masked by phase: the real answer and the raw vote maps stay hidden until
// results, the ballot appears when voting opens, and before then only the
// answer count is visible. The broadcast snapshot uses an empty viewer id;
// players get their own submission/vote state via get_state.
func (r *Room) snapshotLocked(viewerID string) models.Snapshot {
	snap := models.Snapshot{
		RoomCode:    r.code,
		MaxPlayers:  r.maxPlayers,
		Players:     r.playersValueLocked(),
		GameState:   r.phase,
		RoundNumber: r.roundNum,
	}
	if len(r.lastReasons) > 0 {
		snap.LastRoundScoreReasons = make(map[string][]string, len(r.lastReasons))
		maps.Copy(snap.LastRoundScoreReasons, r.lastReasons)
	}
	if r.phase == models.PhaseGameOver {
		snap.Winners = r.winners
		snap.FunniestWinners = r.funniestWinners
	}
	if r.current == nil {
		return snap
	}

	reveal := r.phase == models.PhaseResults || r.phase == models.PhaseGameOver
	rv := &models.RoundView{
		RoundmasterID:    r.current.RoundmasterID,
		CardID:           r.current.CardID,
		DieRoll:          r.current.DieRoll,
		CategoryName:     r.current.Category.Name,
		Question:         r.current.Category.Question,
		AnswersSubmitted: len(r.current.Answers),
		TimerRemaining:   r.timerRemainingLocked(),
	}
	if reveal {
		rv.Answer = r.current.Category.Answer
		rv.VotesCorrect = maps.Clone(r.current.VotesCorrect)
		rv.VotesFunniest = maps.Clone(r.current.VotesFunniest)
	}
	if r.phase != models.PhaseRoundActive {
		rv.Choices = r.current.Choices
	}
	if len(r.current.VotesCorrect) > 0 {
		rv.VotedCorrect = make(map[string]bool, len(r.current.VotesCorrect))
		for voter := range r.current.VotesCorrect {
			rv.VotedCorrect[voter] = true
		}
	}
	if len(r.current.VotesFunniest) > 0 {
		rv.VotedFunniest = make(map[string]bool, len(r.current.VotesFunniest))
		for voter := range r.current.VotesFunniest {
			rv.VotedFunniest[voter] = true
		}
	}
	if viewerID != "" {
		_, rv.YouSubmitted = r.current.Answers[viewerID]
		rv.YourVoteCorrect = r.current.VotesCorrect[viewerID]
		rv.YourVoteFunniest = r.current.VotesFunniest[viewerID]
	}
	snap.CurrentRound = rv
	return snap
}

// timerRemainingLocked returns whole seconds left on the active phase
// deadline, clamped at zero.
func (r *Room) timerRemainingLocked() int {
	var remaining float64
	switch r.phase {
	case models.PhaseRoundActive:
		remaining = r.current.AnswerDeadline.Sub(r.clk.Now()).Seconds()
	case models.PhaseVoting:
		remaining = r.current.VotingDeadline.Sub(r.clk.Now()).Seconds()
	default:
		return 0
	}
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}
