package game

import (
	"fmt"

	"github.com/samber/lo"

	"fakeout/internal/models"
)

// TallyInput is everything the scoring needs from a finished round. Votes
// may be partial: voters who missed the deadline are simply absent.
type TallyInput struct {
	RoundmasterID string
	Answers       map[string]string
	VotesCorrect  map[string]string
	VotesFunniest map[string]string
}

// TallyResult carries per-player point deltas, the human-readable reason for
// every point earned, and the round's funniest-vote counts. Funniest votes
// never award points; they feed the game-long counters kept by the room.
type TallyResult struct {
	Points        map[string]int
	Reasons       map[string][]string
	FunniestVotes map[string]int
}

// TallyRound computes one round's score deltas:
//   - a voter who picked the correct sentinel earns 1 point
//   - a fake answer's author earns 1 point per correct-vote it received
//   - the roundmaster earns 1 point when votes were cast and nobody found
//     the correct answer
func TallyRound(in TallyInput) TallyResult {
	res := TallyResult{
		Points:        make(map[string]int),
		Reasons:       make(map[string][]string),
		FunniestVotes: make(map[string]int),
	}

	votesByToken := lo.CountValues(lo.Values(in.VotesCorrect))

	for voter, token := range in.VotesCorrect {
		if token == models.TokenCorrect {
			res.Points[voter]++
			res.Reasons[voter] = append(res.Reasons[voter], "guessed the correct answer")
		}
	}

	for author := range in.Answers {
		if n := votesByToken[models.AnswerToken(author)]; n > 0 {
			res.Points[author] += n
			res.Reasons[author] = append(res.Reasons[author], fmt.Sprintf("fooled %d %s", n, pluralPlayers(n)))
		}
	}

	if len(in.VotesCorrect) > 0 && votesByToken[models.TokenCorrect] == 0 {
		res.Points[in.RoundmasterID]++
		res.Reasons[in.RoundmasterID] = append(res.Reasons[in.RoundmasterID], "stumped everyone")
	}

	for _, token := range in.VotesFunniest {
		if author, ok := models.AnswerAuthor(token); ok {
			res.FunniestVotes[author]++
		}
	}

	return res
}

func pluralPlayers(n int) string {
	if n == 1 {
		return "player"
	}
	return "players"
}

// Winners returns every player tied at the maximum score. A 2-way tie yields
// a 2-element set, never an arbitrary single winner.
func Winners(players []models.Player) []models.Player {
	if len(players) == 0 {
		return nil
	}
	top := lo.MaxBy(players, func(a, b models.Player) bool {
		return a.Points > b.Points
	})
	return lo.Filter(players, func(p models.Player, _ int) bool {
		return p.Points == top.Points
	})
}

// FunniestWinners returns every player tied at the maximum cumulative
// funniest-vote count, or nothing when no funniest vote was ever cast.
func FunniestWinners(players []models.Player, counts map[string]int) []models.Player {
	max := lo.Max(lo.Values(counts))
	if max <= 0 {
		return nil
	}
	return lo.Filter(players, func(p models.Player, _ int) bool {
		return counts[p.ID] == max
	})
}
