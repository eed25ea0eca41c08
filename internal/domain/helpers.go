package domain

import "time"

// PendingTurn is a participant's committed but unrevealed selection.
type PendingTurn struct {
	Primary       string
	Second        string
	UseChopsticks bool
	Ready         bool
}

// Participant holds one player's state within a session.
type Participant struct {
	ID   string
	Name string

	Hand     []Card // private
	Played   []Card // visible to everyone, cleared each round
	Puddings []Card // kept for the whole game

	Score       int
	RoundScores [RoundsPerGame]int

	Pending PendingTurn

	Connected      bool
	DisconnectedAt time.Time
}

// NewParticipant returns a connected participant with empty piles.
func NewParticipant(id, name string) *Participant {
	return &Participant{ID: id, Name: name, Connected: true}
}

// HasChopsticks reports whether a chopsticks card is in the played area.
func (p *Participant) HasChopsticks() bool {
	return p.CountKind(KindChopsticks) > 0
}

// CountKind counts played cards of the given kind.
func (p *Participant) CountKind(kind CardKind) int {
	n := 0
	for _, c := range p.Played {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// MakiSymbols sums maki symbols across played maki cards.
func (p *Participant) MakiSymbols() int {
	n := 0
	for _, c := range p.Played {
		if c.Kind == KindMaki {
			n += c.MakiCount
		}
	}
	return n
}

// sushiOnWasabi counts played nigiri already attributed to a wasabi.
func (p *Participant) sushiOnWasabi() int {
	n := 0
	for _, c := range p.Played {
		if c.Kind.IsSushi() && c.OnWasabi {
			n++
		}
	}
	return n
}

// EmptyWasabi is the number of played wasabi cards with no nigiri on them.
func (p *Participant) EmptyWasabi() int {
	free := p.CountKind(KindWasabi) - p.sushiOnWasabi()
	if free < 0 {
		return 0
	}
	return free
}

// HandCard looks up a card in the hand by id.
func (p *Participant) HandCard(id string) (Card, bool) {
	for _, c := range p.Hand {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveCard removes the card with the given id from cards, preserving order.
func RemoveCard(cards []Card, id string) ([]Card, Card, bool) {
	for i, c := range cards {
		if c.ID == id {
			out := append(append([]Card(nil), cards[:i]...), cards[i+1:]...)
			return out, c, true
		}
	}
	return cards, Card{}, false
}

// play places a card into the pudding pile or played area, attaching nigiri to a free wasabi.
func (p *Participant) play(c Card) Card {
	if c.Kind == KindPudding {
		p.Puddings = append(p.Puddings, c)
		return c
	}
	if c.Kind.IsSushi() && p.EmptyWasabi() > 0 {
		c.OnWasabi = true
	}
	p.Played = append(p.Played, c)
	return c
}

// returnChopsticks moves the first played chopsticks card back to the hand.
func (p *Participant) returnChopsticks() bool {
	for _, c := range p.Played {
		if c.Kind == KindChopsticks {
			p.Played, _, _ = RemoveCard(p.Played, c.ID)
			p.Hand = append(p.Hand, c)
			return true
		}
	}
	return false
}

func (p *Participant) resetForTurn() {
	p.Pending = PendingTurn{}
}

func (p *Participant) resetForRound() {
	p.Hand = nil
	p.Played = nil
	p.Pending = PendingTurn{}
}

// WasabiConsistent reports whether no wasabi carries more than one nigiri.
func (p *Participant) WasabiConsistent() bool {
	return p.sushiOnWasabi() <= p.CountKind(KindWasabi)
}
