package domain

import "fmt"

// Phase represents the lifecycle stage of a session.
type Phase string

const (
	// PhaseLobby is the pre-game state where participants can join.
	PhaseLobby Phase = "lobby"
	// PhaseSelecting waits for every participant to pick a card.
	PhaseSelecting Phase = "selecting"
	// PhaseRevealing is held only while selections are being applied.
	PhaseRevealing Phase = "revealing"
	// PhaseRoundEnd waits for the host to advance after round scoring.
	PhaseRoundEnd Phase = "round_end"
	// PhaseGameEnd is terminal.
	PhaseGameEnd Phase = "game_end"
)

// Direction is the whole-hand rotation applied between turns.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// CardKind is the closed set of card kinds in the deck.
type CardKind int

const (
	KindMaki CardKind = iota + 1
	KindTempura
	KindSashimi
	KindDumpling
	KindSalmon
	KindSquid
	KindEgg
	KindWasabi
	KindChopsticks
	KindPudding
)

// AllKinds lists every card kind in catalog order.
var AllKinds = []CardKind{
	KindMaki, KindTempura, KindSashimi, KindDumpling,
	KindSalmon, KindSquid, KindEgg,
	KindWasabi, KindChopsticks, KindPudding,
}

func (k CardKind) String() string {
	switch k {
	case KindMaki:
		return "maki"
	case KindTempura:
		return "tempura"
	case KindSashimi:
		return "sashimi"
	case KindDumpling:
		return "dumpling"
	case KindSalmon:
		return "salmon"
	case KindSquid:
		return "squid"
	case KindEgg:
		return "egg"
	case KindWasabi:
		return "wasabi"
	case KindChopsticks:
		return "chopsticks"
	case KindPudding:
		return "pudding"
	}
	return fmt.Sprintf("CardKind(%d)", int(k))
}

// IsSushi reports whether the kind is one of the nigiri that can sit on wasabi.
func (k CardKind) IsSushi() bool {
	switch k {
	case KindSalmon, KindSquid, KindEgg:
		return true
	case KindMaki, KindTempura, KindSashimi, KindDumpling, KindWasabi, KindChopsticks, KindPudding:
		return false
	}
	return false
}

// SushiValue is the base point value of a nigiri kind; zero for everything else.
func (k CardKind) SushiValue() int {
	switch k {
	case KindSalmon:
		return 2
	case KindSquid:
		return 3
	case KindEgg:
		return 1
	case KindMaki, KindTempura, KindSashimi, KindDumpling, KindWasabi, KindChopsticks, KindPudding:
		return 0
	}
	return 0
}

// Card is a single card instance. Only OnWasabi changes after creation, set once when played.
type Card struct {
	ID        string
	Kind      CardKind
	MakiCount int  // 1..3 for maki, 0 otherwise
	OnWasabi  bool // nigiri only
}

// DisplayName is the human readable card name.
func (c Card) DisplayName() string {
	switch c.Kind {
	case KindMaki:
		return fmt.Sprintf("Maki (%d)", c.MakiCount)
	case KindTempura:
		return "Tempura"
	case KindSashimi:
		return "Sashimi"
	case KindDumpling:
		return "Dumpling"
	case KindSalmon:
		return "Salmon Sushi"
	case KindSquid:
		return "Squid Sushi"
	case KindEgg:
		return "Egg Sushi"
	case KindWasabi:
		return "Wasabi"
	case KindChopsticks:
		return "Chopsticks"
	case KindPudding:
		return "Pudding"
	}
	return c.Kind.String()
}

// Image is the client asset name for the card.
func (c Card) Image() string {
	switch c.Kind {
	case KindMaki:
		return fmt.Sprintf("maki_%d.png", c.MakiCount)
	case KindSalmon, KindSquid, KindEgg:
		return c.Kind.String() + "_sushi.png"
	case KindTempura, KindSashimi, KindDumpling, KindWasabi, KindChopsticks, KindPudding:
		return c.Kind.String() + ".png"
	}
	return "placeholder.png"
}
