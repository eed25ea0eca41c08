package domain

const (
	// MinParticipants is the smallest table a session can start with.
	MinParticipants = 2
	// MaxParticipants caps the lobby.
	MaxParticipants = 5
	// RoundsPerGame is the number of scoring rounds in a session.
	RoundsPerGame = 3
	// DeckSize is the number of cards in a freshly built deck.
	DeckSize = 108
)

// handSizes maps participant count to the number of cards dealt to each hand.
var handSizes = map[int]int{
	2: 10,
	3: 9,
	4: 8,
	5: 7,
}

// HandSize returns the per-hand deal size for n participants, or 0 if n is out of range.
func HandSize(n int) int {
	return handSizes[n]
}

// DirectionForRound returns the hand rotation direction used during the given round.
func DirectionForRound(round int) Direction {
	if round == 2 {
		return DirectionRight
	}
	return DirectionLeft
}
