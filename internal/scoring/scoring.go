// Package scoring computes round and game-end points. Every function is pure:
// results are returned and applied separately with ApplyRound and ApplyPudding.
package scoring

import (
	"fmt"
	"sort"

	"sushigo/internal/domain"
)

const (
	makiFirst    = 6
	makiSecond   = 3
	puddingBonus = 6
)

// dumplingTable maps dumpling counts to points; five or more score the last entry.
var dumplingTable = []int{0, 1, 3, 6, 10, 15}

// Breakdown is one participant's round score by category.
type Breakdown struct {
	Maki     int `json:"maki"`
	Tempura  int `json:"tempura"`
	Sashimi  int `json:"sashimi"`
	Dumpling int `json:"dumpling"`
	Sushi    int `json:"sushi"`
	Total    int `json:"total"`
}

// Ranking is one line of the final standings.
type Ranking struct {
	Rank          int                       `json:"rank"`
	ParticipantID string                    `json:"player_id"`
	Name          string                    `json:"name"`
	Score         int                       `json:"score"`
	Puddings      int                       `json:"pudding"`
	RoundScores   [domain.RoundsPerGame]int `json:"round_scores"`
}

// ScoreMaki awards 6 to the most maki symbols and 3 to the runner-up, splitting
// ties by integer division. A shared first place suppresses second place.
func ScoreMaki(ps []*domain.Participant) map[string]int {
	points := make(map[string]int, len(ps))
	counts := make(map[string]int, len(ps))
	first := 0
	for _, p := range ps {
		points[p.ID] = 0
		counts[p.ID] = p.MakiSymbols()
		if counts[p.ID] > first {
			first = counts[p.ID]
		}
	}
	if first == 0 {
		return points
	}

	var leaders []string
	second := 0
	for _, p := range ps {
		c := counts[p.ID]
		if c == first {
			leaders = append(leaders, p.ID)
		} else if c > second {
			second = c
		}
	}
	for _, id := range leaders {
		points[id] = makiFirst / len(leaders)
	}
	if len(leaders) > 1 || second == 0 {
		return points
	}

	var runnersUp []string
	for _, p := range ps {
		if counts[p.ID] == second {
			runnersUp = append(runnersUp, p.ID)
		}
	}
	for _, id := range runnersUp {
		points[id] = makiSecond / len(runnersUp)
	}
	return points
}

// ScoreTempura scores 5 per pair.
func ScoreTempura(p *domain.Participant) int {
	return p.CountKind(domain.KindTempura) / 2 * 5
}

// ScoreSashimi scores 10 per set of three.
func ScoreSashimi(p *domain.Participant) int {
	return p.CountKind(domain.KindSashimi) / 3 * 10
}

// ScoreDumpling applies the progressive dumpling table.
func ScoreDumpling(p *domain.Participant) int {
	return DumplingPoints(p.CountKind(domain.KindDumpling))
}

// DumplingPoints returns the table value for n dumplings.
func DumplingPoints(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= len(dumplingTable) {
		return dumplingTable[len(dumplingTable)-1]
	}
	return dumplingTable[n]
}

// ScoreSushi sums nigiri values, tripled when on wasabi.
func ScoreSushi(p *domain.Participant) int {
	total := 0
	for _, c := range p.Played {
		v := c.Kind.SushiValue()
		if c.OnWasabi {
			v *= 3
		}
		total += v
	}
	return total
}

// ScoreRound computes every participant's breakdown for the round just played.
func ScoreRound(ps []*domain.Participant) map[string]Breakdown {
	maki := ScoreMaki(ps)
	out := make(map[string]Breakdown, len(ps))
	for _, p := range ps {
		b := Breakdown{
			Maki:     maki[p.ID],
			Tempura:  ScoreTempura(p),
			Sashimi:  ScoreSashimi(p),
			Dumpling: ScoreDumpling(p),
			Sushi:    ScoreSushi(p),
		}
		b.Total = b.Maki + b.Tempura + b.Sashimi + b.Dumpling + b.Sushi
		out[p.ID] = b
	}
	return out
}

// ApplyRound adds each total to the cumulative score and records it in the round slot.
func ApplyRound(ps []*domain.Participant, scores map[string]Breakdown, round int) error {
	if round < 1 || round > domain.RoundsPerGame {
		return fmt.Errorf("round %d out of range", round)
	}
	for _, p := range ps {
		b := scores[p.ID]
		p.Score += b.Total
		p.RoundScores[round-1] = b.Total
	}
	return nil
}

// ScorePudding awards +6 to the most puddings and, outside two-player games,
// -6 to the fewest. Both are split among ties with floor division. Members of
// the most group are never counted in the least group.
func ScorePudding(ps []*domain.Participant, isTwoPlayer bool) map[string]int {
	points := make(map[string]int, len(ps))
	if len(ps) == 0 {
		return points
	}

	most, least := len(ps[0].Puddings), len(ps[0].Puddings)
	for _, p := range ps {
		points[p.ID] = 0
		n := len(p.Puddings)
		if n > most {
			most = n
		}
		if n < least {
			least = n
		}
	}
	if most == least {
		return points
	}

	inMost := make(map[string]bool)
	for _, p := range ps {
		if len(p.Puddings) == most {
			inMost[p.ID] = true
		}
	}
	for id := range inMost {
		points[id] = floorDiv(puddingBonus, len(inMost))
	}

	if isTwoPlayer {
		return points
	}

	var losers []string
	for _, p := range ps {
		if len(p.Puddings) == least && !inMost[p.ID] {
			losers = append(losers, p.ID)
		}
	}
	for _, id := range losers {
		points[id] = floorDiv(-puddingBonus, len(losers))
	}
	return points
}

// ApplyPudding adds pudding points to cumulative scores.
func ApplyPudding(ps []*domain.Participant, scores map[string]int) {
	for _, p := range ps {
		p.Score += scores[p.ID]
	}
}

// Rankings orders participants by score, then pudding count, both descending.
// Remaining ties keep the input order.
func Rankings(ps []*domain.Participant) []Ranking {
	sorted := append([]*domain.Participant(nil), ps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return len(sorted[i].Puddings) > len(sorted[j].Puddings)
	})

	out := make([]Ranking, len(sorted))
	for i, p := range sorted {
		out[i] = Ranking{
			Rank:          i + 1,
			ParticipantID: p.ID,
			Name:          p.Name,
			Score:         p.Score,
			Puddings:      len(p.Puddings),
			RoundScores:   p.RoundScores,
		}
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
