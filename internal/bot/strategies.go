package bot

import (
	"errors"
	"math/rand"
	"sort"

	"sushigo/internal/domain"
	"sushigo/internal/scoring"
)

// ErrEmptyHand is returned when asked to move for a participant with nothing to play.
var ErrEmptyHand = errors.New("participant has no cards to play")

// FirstCardBot always plays the first card in hand.
type FirstCardBot struct{}

func (b *FirstCardBot) CalculateMove(session *domain.Session, p *domain.Participant) (Move, error) {
	if p == nil || len(p.Hand) == 0 {
		return Move{}, ErrEmptyHand
	}
	return Move{Primary: p.Hand[0].ID}, nil
}

// RandomBot plays a uniformly random card and never uses chopsticks.
type RandomBot struct {
	rng *rand.Rand
}

func (b *RandomBot) CalculateMove(session *domain.Session, p *domain.Participant) (Move, error) {
	if p == nil || len(p.Hand) == 0 {
		return Move{}, ErrEmptyHand
	}
	return Move{Primary: p.Hand[b.rng.Intn(len(p.Hand))].ID}, nil
}

// GreedyBot plays the card with the highest immediate expected value and
// spends chopsticks when the runner-up card is worth it.
type GreedyBot struct {
	Tuning Tuning
}

type scoredCard struct {
	card  domain.Card
	value float64
}

func (b *GreedyBot) CalculateMove(session *domain.Session, p *domain.Participant) (Move, error) {
	if p == nil || len(p.Hand) == 0 {
		return Move{}, ErrEmptyHand
	}

	scored := make([]scoredCard, len(p.Hand))
	for i, c := range p.Hand {
		scored[i] = scoredCard{card: c, value: b.CardValue(p, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].value > scored[j].value
	})

	move := Move{Primary: scored[0].card.ID}
	if p.HasChopsticks() && len(scored) > 1 && scored[1].value >= b.Tuning.ChopsticksMargin {
		move.UseChopsticks = true
		move.Second = scored[1].card.ID
	}
	return move, nil
}

// CardValue estimates the points c adds to p's tableau if played now.
func (b *GreedyBot) CardValue(p *domain.Participant, c domain.Card) float64 {
	t := b.Tuning
	turnsLeft := len(p.Hand)
	early := turnsLeft >= t.EarlyTurnsLeft

	switch c.Kind {
	case domain.KindTempura:
		if gain := marginal(p, c, scoring.ScoreTempura); gain > 0 {
			return float64(gain)
		}
		if turnsLeft > 1 {
			return t.TempuraHalfPair
		}
		return 0
	case domain.KindSashimi:
		if gain := marginal(p, c, scoring.ScoreSashimi); gain > 0 {
			return float64(gain)
		}
		switch {
		case p.CountKind(domain.KindSashimi)%3 == 1 && turnsLeft > 1:
			return t.SashimiTwoOfThree
		case turnsLeft > 2:
			return t.SashimiOneOfThree
		}
		return 0
	case domain.KindDumpling:
		return float64(marginal(p, c, scoring.ScoreDumpling))
	case domain.KindSalmon, domain.KindSquid, domain.KindEgg:
		if p.EmptyWasabi() > 0 {
			return float64(c.Kind.SushiValue() * 3)
		}
		return float64(c.Kind.SushiValue())
	case domain.KindMaki:
		return float64(c.MakiCount) * t.MakiPerSymbol
	case domain.KindPudding:
		return t.Pudding
	case domain.KindWasabi:
		if early {
			return t.WasabiEarly
		}
		return t.WasabiLate
	case domain.KindChopsticks:
		if early && !p.HasChopsticks() {
			return t.ChopsticksEarly
		}
		return 0
	}
	return 0
}

// marginal is the change in score when c joins p's played cards.
func marginal(p *domain.Participant, c domain.Card, score func(*domain.Participant) int) int {
	with := *p
	with.Played = append(append([]domain.Card(nil), p.Played...), c)
	return score(&with) - score(p)
}
