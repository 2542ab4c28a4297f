package room

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"fakeout/internal/game"
	"fakeout/internal/models"
)

// beginRoundLocked starts a round: rotates the roundmaster, draws a card,
// rolls the die for a category and arms the answer deadline.
func (r *Room) beginRoundLocked() {
	r.roundmasterIdx = (r.roundmasterIdx + 1) % len(r.players)
	card := r.deck.Draw()
	die := game.RollDie(len(card.Categories))
	r.current = models.NewRound(r.players[r.roundmasterIdx].ID, card, die)
	r.roundNum++
	r.phase = models.PhaseRoundActive
	r.current.AnswerDeadline = r.clk.Now().Add(game.AnswerTimeout)
	r.armTimerLocked(game.AnswerTimeout)
}

// SubmitAnswer records a fake answer during round_active. One immutable
// answer per connected non-roundmaster player, before the deadline, 1..200
// chars after trim. When the last eligible player submits, voting opens
// immediately instead of waiting out the deadline.
func (r *Room) SubmitAnswer(playerID, text string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	if r.phase != models.PhaseRoundActive {
		r.mu.Unlock()
		return fmt.Errorf("%w: answers are not being accepted right now", ErrInvalidSubmission)
	}
	player := r.findPlayerLocked(playerID)
	if player == nil || !player.Connected {
		r.mu.Unlock()
		return fmt.Errorf("%w: unknown or disconnected player", ErrInvalidSubmission)
	}
	if playerID == r.current.RoundmasterID {
		r.mu.Unlock()
		return fmt.Errorf("%w: the roundmaster does not submit an answer", ErrInvalidSubmission)
	}
	if _, dup := r.current.Answers[playerID]; dup {
		r.mu.Unlock()
		return fmt.Errorf("%w: answer already submitted", ErrInvalidSubmission)
	}
	if r.clk.Now().After(r.current.AnswerDeadline) {
		r.mu.Unlock()
		return fmt.Errorf("%w: the answer deadline has passed", ErrInvalidSubmission)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.mu.Unlock()
		return fmt.Errorf("%w: answer is empty", ErrInvalidSubmission)
	}
	if utf8.RuneCountInString(text) > game.MaxAnswerLength {
		r.mu.Unlock()
		return fmt.Errorf("%w: answer exceeds %d characters", ErrInvalidSubmission, game.MaxAnswerLength)
	}

	r.current.Answers[playerID] = text
	if r.allAnswersInLocked() {
		r.beginVotingLocked()
	}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.publish(snap)
	return nil
}

// allAnswersInLocked reports whether every currently-connected
// non-roundmaster player has submitted.
func (r *Room) allAnswersInLocked() bool {
	for _, p := range r.players {
		if !p.Connected || p.ID == r.current.RoundmasterID {
			continue
		}
		if _, ok := r.current.Answers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// beginVotingLocked opens voting: the ballot is built from the fake answers
// plus the real one and shuffled here, server-side, so every client sees the
// same order and the correct answer's position gives nothing away.
func (r *Room) beginVotingLocked() {
	choices := make([]models.Choice, 0, len(r.current.Answers)+1)
	for playerID, text := range r.current.Answers {
		choices = append(choices, models.Choice{Token: models.AnswerToken(playerID), Text: text})
	}
	choices = append(choices, models.Choice{Token: models.TokenCorrect, Text: r.current.Category.Answer})
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	r.current.Choices = choices

	r.phase = models.PhaseVoting
	r.current.VotingDeadline = r.clk.Now().Add(game.VotingTimeout)
	r.armTimerLocked(game.VotingTimeout)
}

// VoteCorrect records a voter's guess at the real answer. Voting phase only,
// connected non-roundmaster voters, one vote each, token must be on the
// ballot and must not be the voter's own answer.
func (r *Room) VoteCorrect(voterID, token string) error {
	r.mu.Lock()
	if err := r.voteEligibilityLocked(voterID); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, dup := r.current.VotesCorrect[voterID]; dup {
		r.mu.Unlock()
		return fmt.Errorf("%w: already voted for the correct answer", ErrInvalidVote)
	}
	if !r.tokenOnBallotLocked(token) {
		r.mu.Unlock()
		return fmt.Errorf("%w: unknown answer token", ErrInvalidVote)
	}
	if token == models.AnswerToken(voterID) {
		r.mu.Unlock()
		return fmt.Errorf("%w: you cannot vote for your own answer", ErrInvalidVote)
	}

	r.current.VotesCorrect[voterID] = token
	if r.allVotesInLocked() {
		r.finishVotingLocked()
	}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.publish(snap)
	return nil
}

// VoteFunniest records a voter's funniest pick. Same eligibility as the
// correct-vote plus the voter must have cast that one first; unlike it,
// picking your own answer is allowed since fooling is irrelevant here.
func (r *Room) VoteFunniest(voterID, token string) error {
	r.mu.Lock()
	if err := r.voteEligibilityLocked(voterID); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.current.VotesCorrect[voterID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: vote for the correct answer first", ErrInvalidVote)
	}
	if _, dup := r.current.VotesFunniest[voterID]; dup {
		r.mu.Unlock()
		return fmt.Errorf("%w: already voted for the funniest answer", ErrInvalidVote)
	}
	if !r.tokenOnBallotLocked(token) {
		r.mu.Unlock()
		return fmt.Errorf("%w: unknown answer token", ErrInvalidVote)
	}

	r.current.VotesFunniest[voterID] = token
	if r.allVotesInLocked() {
		r.finishVotingLocked()
	}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.publish(snap)
	return nil
}

func (r *Room) voteEligibilityLocked(voterID string) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if r.phase != models.PhaseVoting {
		return fmt.Errorf("%w: voting is not open", ErrInvalidVote)
	}
	voter := r.findPlayerLocked(voterID)
	if voter == nil || !voter.Connected {
		return fmt.Errorf("%w: unknown or disconnected player", ErrInvalidVote)
	}
	if voterID == r.current.RoundmasterID {
		return fmt.Errorf("%w: the roundmaster does not vote", ErrInvalidVote)
	}
	return nil
}

func (r *Room) tokenOnBallotLocked(token string) bool {
	if token == models.TokenCorrect {
		return true
	}
	author, ok := models.AnswerAuthor(token)
	if !ok {
		return false
	}
	_, exists := r.current.Answers[author]
	return exists
}

// allVotesInLocked reports whether every currently-connected non-roundmaster
// player has cast both votes.
func (r *Room) allVotesInLocked() bool {
	for _, p := range r.players {
		if !p.Connected || p.ID == r.current.RoundmasterID {
			continue
		}
		if _, ok := r.current.VotesCorrect[p.ID]; !ok {
			return false
		}
		if _, ok := r.current.VotesFunniest[p.ID]; !ok {
			return false
		}
	}
	return true
}

// finishVotingLocked tallies the round over whatever votes exist, applies
// point deltas and the game-long funniest counters, and decides between
// results and game_over. Winner sets are computed once, here, over the whole
// game's history.
func (r *Room) finishVotingLocked() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	res := game.TallyRound(game.TallyInput{
		RoundmasterID: r.current.RoundmasterID,
		Answers:       r.current.Answers,
		VotesCorrect:  r.current.VotesCorrect,
		VotesFunniest: r.current.VotesFunniest,
	})
	for _, p := range r.players {
		p.Points += res.Points[p.ID]
	}
	r.lastReasons = res.Reasons
	for id, n := range res.FunniestVotes {
		r.funniestTotals[id] += n
	}

	r.phase = models.PhaseResults
	for _, p := range r.players {
		if p.Points >= game.WinningScore {
			r.phase = models.PhaseGameOver
			snapshot := r.playersValueLocked()
			r.winners = game.Winners(snapshot)
			r.funniestWinners = game.FunniestWinners(snapshot, r.funniestTotals)
			break
		}
	}
}

func (r *Room) playersValueLocked() []models.Player {
	out := make([]models.Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

// armTimerLocked schedules the phase deadline. Bumping the generation first
// guarantees that a previously-armed timer firing late finds a stale
// generation and does nothing.
func (r *Room) armTimerLocked(d time.Duration) {
	r.timerGen++
	gen := r.timerGen
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = r.clk.AfterFunc(d, func() {
		r.deadline(gen)
	})
}

// deadline is the timer-injected command. It re-enters the room's
// serialization point like any client command and forces the pending phase
// transition with whatever partial data exists; forced transitions never
// fail.
func (r *Room) deadline(gen int) {
	r.mu.Lock()
	if r.closed || gen != r.timerGen {
		r.mu.Unlock()
		return
	}
	switch r.phase {
	case models.PhaseRoundActive:
		r.log.Info("answer deadline elapsed", "round", r.roundNum, "answers", len(r.current.Answers))
		r.beginVotingLocked()
	case models.PhaseVoting:
		r.log.Info("voting deadline elapsed", "round", r.roundNum, "votes", len(r.current.VotesCorrect))
		r.finishVotingLocked()
	default:
		r.mu.Unlock()
		return
	}
	snap := r.snapshotLocked("")
	r.mu.Unlock()

	r.publish(snap)
}
