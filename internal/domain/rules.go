package domain

import "fmt"

// Selection is a participant's pick for the current turn.
type Selection struct {
	Primary       string
	UseChopsticks bool
	Second        string
}

// Play records what one participant revealed in a turn.
type Play struct {
	ParticipantID  string
	Cards          []Card
	UsedChopsticks bool
}

// RevealResult is the outcome of a reveal.
type RevealResult struct {
	Plays     []Play // seating order
	RoundOver bool
}

// Select records a participant's pending selection. It returns true when the
// selection completes the barrier and the turn is ready to reveal. An invalid
// selection leaves the session untouched.
func (s *Session) Select(participantID string, sel Selection) (bool, error) {
	if s.Phase != PhaseSelecting {
		return false, ErrWrongPhase
	}
	p, ok := s.participants[participantID]
	if !ok {
		return false, ErrUnknownParticipant
	}

	if _, ok := p.HandCard(sel.Primary); !ok {
		return false, fmt.Errorf("%w: card %q not in hand", ErrInvalidSelection, sel.Primary)
	}

	pending := PendingTurn{Primary: sel.Primary, Ready: true}
	if sel.UseChopsticks {
		if !p.HasChopsticks() {
			return false, fmt.Errorf("%w: no chopsticks in play", ErrInvalidSelection)
		}
		if sel.Second == "" || sel.Second == sel.Primary {
			return false, fmt.Errorf("%w: second card must differ from the first", ErrInvalidSelection)
		}
		if _, ok := p.HandCard(sel.Second); !ok {
			return false, fmt.Errorf("%w: card %q not in hand", ErrInvalidSelection, sel.Second)
		}
		pending.UseChopsticks = true
		pending.Second = sel.Second
	}

	p.Pending = pending
	return s.AllReady(), nil
}

// AllReady reports whether every participant has a pending selection.
func (s *Session) AllReady() bool {
	if len(s.order) == 0 {
		return false
	}
	for _, p := range s.participants {
		if !p.Pending.Ready {
			return false
		}
	}
	return true
}

// Waiting returns the ids of participants without a pending selection, in seating order.
func (s *Session) Waiting() []string {
	var out []string
	for _, p := range s.Participants() {
		if !p.Pending.Ready {
			out = append(out, p.ID)
		}
	}
	return out
}

// Reveal applies every pending selection at once, then either ends the round
// or rotates hands and opens the next turn.
func (s *Session) Reveal() (RevealResult, error) {
	if s.Phase != PhaseSelecting || !s.AllReady() {
		return RevealResult{}, ErrWrongPhase
	}
	s.Phase = PhaseRevealing

	result := RevealResult{Plays: make([]Play, 0, len(s.order))}
	for _, p := range s.Participants() {
		play := Play{ParticipantID: p.ID}

		var card Card
		p.Hand, card, _ = RemoveCard(p.Hand, p.Pending.Primary)
		play.Cards = append(play.Cards, p.play(card))

		if p.Pending.UseChopsticks {
			p.Hand, card, _ = RemoveCard(p.Hand, p.Pending.Second)
			play.Cards = append(play.Cards, p.play(card))
			p.returnChopsticks()
			play.UsedChopsticks = true
		}

		p.resetForTurn()
		result.Plays = append(result.Plays, play)
	}

	if len(s.participants[s.order[0]].Hand) == 0 {
		s.Phase = PhaseRoundEnd
		result.RoundOver = true
		return result, nil
	}

	s.Turn++
	s.rotate()
	s.Phase = PhaseSelecting
	return result, nil
}

func (s *Session) rotate() {
	ps := s.Participants()
	hands := make([][]Card, len(ps))
	for i, p := range ps {
		hands[i] = p.Hand
	}
	for i, h := range RotateHands(hands, s.Direction) {
		ps[i].Hand = h
	}
}

// RotateHands permutes whole hands one seat. Passing left moves hand i to
// seat i+1; passing right moves hand i+1 to seat i.
func RotateHands(hands [][]Card, dir Direction) [][]Card {
	n := len(hands)
	out := make([][]Card, n)
	for i := range hands {
		switch dir {
		case DirectionLeft:
			out[(i+1)%n] = hands[i]
		case DirectionRight:
			out[i] = hands[(i+1)%n]
		}
	}
	return out
}
