package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrWrongPhase           = errors.New("action not allowed in current phase")
	ErrNotHost              = errors.New("only the host can do that")
	ErrInvalidPlayerCount   = errors.New("participant count must be between 2 and 5")
	ErrSessionFull          = errors.New("session is full")
	ErrAlreadyStarted       = errors.New("session already started")
	ErrUnknownParticipant   = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant already joined")
	ErrInvalidSelection     = errors.New("invalid selection")
	ErrInvariant            = errors.New("session invariant violated")
)

// Session is the state machine for one game, from lobby to game end.
// It is not safe for concurrent use; callers serialize access per session.
type Session struct {
	Code      string
	HostID    string
	Phase     Phase
	Round     int
	Turn      int
	Direction Direction

	order        []string
	participants map[string]*Participant
	deck         *Deck
	rng          *rand.Rand
}

// NewSession creates an empty lobby. rng drives every deck shuffle of the session.
func NewSession(code string, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		Code:         code,
		Phase:        PhaseLobby,
		Direction:    DirectionLeft,
		participants: make(map[string]*Participant),
		rng:          rng,
	}
}

// ReserveHost names the host of an empty lobby before anyone is seated.
// The reserved host keeps a free seat and takes the first one on arrival.
func (s *Session) ReserveHost(id string) error {
	if s.Phase != PhaseLobby || len(s.order) > 0 {
		return ErrWrongPhase
	}
	s.HostID = id
	return nil
}

// hostPending reports whether a reserved host has not been seated yet.
func (s *Session) hostPending() bool {
	if s.HostID == "" {
		return false
	}
	_, seated := s.participants[s.HostID]
	return !seated
}

// Join seats a new participant at the end of the seating order. A reserved
// host is seated first; otherwise the first participant to join becomes host.
func (s *Session) Join(id, name string) (*Participant, error) {
	if s.Phase != PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if _, exists := s.participants[id]; exists {
		return nil, ErrDuplicateParticipant
	}
	pending := s.hostPending()
	limit := MaxParticipants
	if pending && id != s.HostID {
		limit--
	}
	if len(s.order) >= limit {
		return nil, ErrSessionFull
	}

	p := NewParticipant(id, name)
	s.participants[id] = p
	if pending && id == s.HostID {
		s.order = append([]string{id}, s.order...)
		return p, nil
	}
	s.order = append(s.order, id)
	if s.HostID == "" {
		s.HostID = id
	}
	return p, nil
}

// Remove drops a participant from the lobby. If the host leaves, the next
// participant in seating order takes over.
func (s *Session) Remove(id string) error {
	if s.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if _, ok := s.participants[id]; !ok {
		return ErrUnknownParticipant
	}

	delete(s.participants, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}

	if s.HostID == id {
		s.HostID = ""
		if len(s.order) > 0 {
			s.HostID = s.order[0]
		}
	}
	return nil
}

// Participant returns the participant with the given id.
func (s *Session) Participant(id string) (*Participant, bool) {
	p, ok := s.participants[id]
	return p, ok
}

// Participants returns participants in seating order.
func (s *Session) Participants() []*Participant {
	out := make([]*Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.participants[id])
	}
	return out
}

// Order returns a copy of the seating order.
func (s *Session) Order() []string {
	return append([]string(nil), s.order...)
}

// Len is the number of seated participants.
func (s *Session) Len() int {
	return len(s.order)
}

// IsOpen reports whether the lobby still accepts joins from anyone other
// than a reserved host.
func (s *Session) IsOpen() bool {
	seated := len(s.order)
	if s.hostPending() {
		seated++
	}
	return s.Phase == PhaseLobby && seated < MaxParticipants
}

// SetConnected flips the liveness flag. It never affects seating or turn flow.
func (s *Session) SetConnected(id string, connected bool, at time.Time) error {
	p, ok := s.participants[id]
	if !ok {
		return ErrUnknownParticipant
	}
	p.Connected = connected
	if connected {
		p.DisconnectedAt = time.Time{}
	} else {
		p.DisconnectedAt = at
	}
	return nil
}

// Start freezes the seating order and deals round one.
func (s *Session) Start(actorID string) error {
	if s.Phase != PhaseLobby {
		return ErrAlreadyStarted
	}
	if actorID != s.HostID {
		return ErrNotHost
	}
	if n := len(s.order); n < MinParticipants || n > MaxParticipants {
		return fmt.Errorf("%w: have %d", ErrInvalidPlayerCount, n)
	}

	s.Round = 1
	return s.startRound()
}

func (s *Session) startRound() error {
	deck := NewDeck(s.rng)
	hands, err := deck.Deal(len(s.order))
	if err != nil {
		return err
	}

	s.deck = deck
	for i, p := range s.Participants() {
		p.resetForRound()
		p.Hand = hands[i]
	}
	s.Direction = DirectionForRound(s.Round)
	s.Turn = 1
	s.Phase = PhaseSelecting
	return nil
}

// Deck returns the active deck for the current round, or nil before the first deal.
func (s *Session) Deck() *Deck {
	return s.deck
}

// AdvanceOutcome tells the caller what an advance out of ROUND_END produced.
type AdvanceOutcome int

const (
	AdvanceNewRound AdvanceOutcome = iota + 1
	AdvanceGameEnd
)

// Advance leaves ROUND_END, either dealing the next round or ending the game.
func (s *Session) Advance(actorID string) (AdvanceOutcome, error) {
	if s.Phase != PhaseRoundEnd {
		return 0, ErrWrongPhase
	}
	if actorID != s.HostID {
		return 0, ErrNotHost
	}

	if s.Round >= RoundsPerGame {
		s.Phase = PhaseGameEnd
		return AdvanceGameEnd, nil
	}

	s.Round++
	if err := s.startRound(); err != nil {
		return 0, err
	}
	return AdvanceNewRound, nil
}

// CheckInvariants verifies the structural invariants that must hold between actions.
func (s *Session) CheckInvariants() error {
	ps := s.Participants()
	for _, p := range ps {
		if !p.WasabiConsistent() {
			return fmt.Errorf("%w: participant %s has more nigiri on wasabi than wasabi", ErrInvariant, p.ID)
		}
	}
	if s.Phase == PhaseSelecting && len(ps) > 0 {
		size := len(ps[0].Hand)
		for _, p := range ps[1:] {
			if len(p.Hand) != size {
				return fmt.Errorf("%w: hand sizes differ (%d vs %d)", ErrInvariant, size, len(p.Hand))
			}
		}
	}
	return nil
}
