package ports

import "sushigo/internal/domain"

// Client action names.
const (
	ActionStartGame  = "start_game"
	ActionSelectCard = "select_card"
	ActionNextRound  = "next_round"
	ActionGetState   = "get_state"
)

// Action is an inbound client message. Nakama clients carry the action in the
// op code and send only the card fields.
type Action struct {
	Action        string `json:"action"`
	CardID        string `json:"card_id,omitempty"`
	UseChopsticks bool   `json:"use_chopsticks,omitempty"`
	SecondCardID  string `json:"second_card_id,omitempty"`
}

// Selection converts a select_card action into a domain selection.
func (a Action) Selection() domain.Selection {
	sel := domain.Selection{Primary: a.CardID}
	if a.UseChopsticks {
		sel.UseChopsticks = true
		sel.Second = a.SecondCardID
	}
	return sel
}
