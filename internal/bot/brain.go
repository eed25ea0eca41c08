package bot

import "sushigo/internal/domain"

// Move represents the decision made by the AI.
type Move struct {
	Primary       string
	UseChopsticks bool
	Second        string
}

// Selection converts the move into a session selection.
func (m Move) Selection() domain.Selection {
	return domain.Selection{Primary: m.Primary, UseChopsticks: m.UseChopsticks, Second: m.Second}
}

// Brain picks a card for a participant from the current session state.
type Brain interface {
	CalculateMove(session *domain.Session, participant *domain.Participant) (Move, error)
}
