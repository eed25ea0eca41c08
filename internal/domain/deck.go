package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrInsufficientCards is returned when a deal would need more cards than the deck holds.
var ErrInsufficientCards = errors.New("not enough cards to deal")

// deckComposition is the fixed distribution of a 108 card deck.
var deckComposition = []struct {
	kind  CardKind
	maki  int
	count int
}{
	{KindTempura, 0, 14},
	{KindSashimi, 0, 14},
	{KindDumpling, 0, 14},
	{KindMaki, 1, 6},
	{KindMaki, 2, 12},
	{KindMaki, 3, 8},
	{KindSalmon, 0, 10},
	{KindSquid, 0, 5},
	{KindEgg, 0, 5},
	{KindPudding, 0, 10},
	{KindWasabi, 0, 6},
	{KindChopsticks, 0, 4},
}

// Deck is the shuffled card sequence for one round.
type Deck struct {
	cards []Card
}

// NewDeck builds the fixed distribution and shuffles it with rng (time-seeded when nil).
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cards := make([]Card, 0, DeckSize)
	for _, entry := range deckComposition {
		for i := 0; i < entry.count; i++ {
			cards = append(cards, Card{
				ID:        fmt.Sprintf("c%03d-%s", len(cards), entry.kind),
				Kind:      entry.kind,
				MakiCount: entry.maki,
			})
		}
	}

	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return &Deck{cards: cards}
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck in shuffled order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Deal partitions the deck into handCount contiguous hands sized for that many participants.
// Cards past the last hand are left undealt.
func (d *Deck) Deal(handCount int) ([][]Card, error) {
	size := HandSize(handCount)
	if size == 0 {
		return nil, fmt.Errorf("%w: %d hands", ErrInvalidPlayerCount, handCount)
	}
	if handCount*size > len(d.cards) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCards, handCount*size, len(d.cards))
	}

	hands := make([][]Card, handCount)
	for i := range hands {
		hands[i] = append([]Card(nil), d.cards[i*size:(i+1)*size]...)
	}
	return hands, nil
}
