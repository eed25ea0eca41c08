package bot

import (
	"fmt"
	"math/rand"

	"sushigo/internal/domain"
)

// Agent plays on behalf of one participant.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent creates an agent for participant id using the given level.
// rng drives random levels; nil seeds from the clock.
func NewAgent(id, name string, level BotLevel, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Strategy: brain}, nil
}

// Play asks the agent to calculate its move based on the current session state.
func (a *Agent) Play(session *domain.Session) (Move, error) {
	p, ok := session.Participant(a.ID)
	if !ok {
		return Move{}, fmt.Errorf("agent %s: %w", a.ID, domain.ErrUnknownParticipant)
	}
	return a.Strategy.CalculateMove(session, p)
}
