package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"sushigo/internal/bot"
	"sushigo/internal/config"
	"sushigo/internal/domain"
	"sushigo/internal/scoring"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Service contains the game use-cases operating on a session. Callers must
// serialize calls per session; independent sessions may be used concurrently.
type Service struct {
	cfg    config.GameConfig
	logger runtime.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	autoPick bot.Brain
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, cfg config.GameConfig, logger runtime.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{cfg: cfg, logger: logger, rng: rng}

	if cfg.AutoPickAfterSeconds > 0 {
		level, err := bot.ParseLevel(cfg.AutoPickLevel)
		if err != nil {
			logger.Warn("NewService: %v, falling back to greedy auto-pick", err)
			level = bot.BotLevelGreedy
		}
		brain, err := bot.NewBrain(level, rand.New(rand.NewSource(s.seed())))
		if err != nil {
			logger.Error("NewService: auto-pick disabled: %v", err)
		}
		s.autoPick = brain
	}
	return s
}

// Config returns the configuration the service was built with.
func (s *Service) Config() config.GameConfig {
	return s.cfg
}

func (s *Service) seed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Int63()
}

// NewCode draws a session code using the service rng.
func (s *Service) NewCode() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return NewSessionCode(s.rng, s.cfg.CodeLength)
}

// NewSession creates a lobby with its own rng derived from the service rng.
func (s *Service) NewSession(code string) *domain.Session {
	return domain.NewSession(code, rand.New(rand.NewSource(s.seed())))
}

// Join seats a participant in the lobby.
func (s *Service) Join(session *domain.Session, participantID, name string) ([]Event, error) {
	if _, err := session.Join(participantID, name); err != nil {
		return nil, err
	}
	seat := 0
	for i, id := range session.Order() {
		if id == participantID {
			seat = i
			break
		}
	}

	events := []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			ParticipantID: participantID,
			Name:          name,
			Seat:          seat,
		},
	}}
	return append(events, s.stateEvents(session, 0)...), nil
}

// Connect marks a participant live and sends them the current state.
func (s *Service) Connect(session *domain.Session, participantID string) ([]Event, error) {
	if err := session.SetConnected(participantID, true, time.Time{}); err != nil {
		return nil, err
	}
	p, _ := session.Participant(participantID)

	events := []Event{{
		Kind:    EventPlayerConnected,
		Payload: PlayerConnectionPayload{ParticipantID: participantID, Name: p.Name},
		Exclude: participantID,
	}}
	return append(events, s.stateEvents(session, 0)...), nil
}

// Disconnect removes a participant from the lobby, or only clears their
// liveness flag once the game has started.
func (s *Service) Disconnect(session *domain.Session, participantID string, now time.Time) ([]Event, error) {
	if session.Phase == domain.PhaseLobby {
		if err := session.Remove(participantID); err != nil {
			return nil, err
		}
		events := []Event{{
			Kind:    EventPlayerLeft,
			Payload: PlayerLeftPayload{ParticipantID: participantID, HostID: session.HostID},
		}}
		return append(events, s.stateEvents(session, 0)...), nil
	}

	if err := session.SetConnected(participantID, false, now); err != nil {
		return nil, err
	}
	events := []Event{{
		Kind:    EventPlayerDisconnected,
		Payload: PlayerConnectionPayload{ParticipantID: participantID},
	}}
	return append(events, s.stateEvents(session, 0)...), nil
}

// Start begins round one if actorID is the host and the table size is valid.
func (s *Service) Start(session *domain.Session, actorID string) ([]Event, error) {
	if err := session.Start(actorID); err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Round: session.Round, PassDirection: session.Direction},
	}}
	return append(events, s.stateEvents(session, 0)...), nil
}

// Select records a selection and, if it completes the barrier, reveals the turn.
func (s *Service) Select(session *domain.Session, actorID string, sel domain.Selection) ([]Event, error) {
	ready, err := session.Select(actorID, sel)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventPlayerReady,
		Payload: PlayerReadyPayload{ParticipantID: actorID},
	}}
	if !ready {
		return events, nil
	}

	revealed, err := s.reveal(session)
	if err != nil {
		return events, err
	}
	return append(events, revealed...), nil
}

func (s *Service) reveal(session *domain.Session) ([]Event, error) {
	res, err := session.Reveal()
	if err != nil {
		return nil, err
	}
	if err := session.CheckInvariants(); err != nil {
		s.logger.Error("Reveal: session %s round %d turn %d: %v", session.Code, session.Round, session.Turn, err)
	}

	events := []Event{{Kind: EventCardsRevealed, Payload: buildReveal(res)}}
	pause := s.cfg.RevealPause()

	if !res.RoundOver {
		return append(events, s.stateEvents(session, pause)...), nil
	}

	ps := session.Participants()
	scores := scoring.ScoreRound(ps)
	if err := scoring.ApplyRound(ps, scores, session.Round); err != nil {
		return events, err
	}
	events = append(events, Event{
		Kind:    EventRoundEnd,
		Payload: RoundEndPayload{Round: session.Round, Scores: scores},
		Delay:   pause,
	})
	events = append(events, s.stateEvents(session, 0)...)

	if session.Round >= domain.RoundsPerGame && s.cfg.AutoFinishGame {
		finished, err := s.advance(session, session.HostID, s.cfg.RoundEndPause())
		if err != nil {
			return events, err
		}
		events = append(events, finished...)
	}
	return events, nil
}

// Advance moves out of ROUND_END on the host's request.
func (s *Service) Advance(session *domain.Session, actorID string) (domain.AdvanceOutcome, []Event, error) {
	events, err := s.advance(session, actorID, 0)
	if err != nil {
		return 0, nil, err
	}
	if session.Phase == domain.PhaseGameEnd {
		return domain.AdvanceGameEnd, events, nil
	}
	return domain.AdvanceNewRound, events, nil
}

func (s *Service) advance(session *domain.Session, actorID string, delay time.Duration) ([]Event, error) {
	outcome, err := session.Advance(actorID)
	if err != nil {
		return nil, err
	}

	if outcome == domain.AdvanceGameEnd {
		return append([]Event{s.finish(session, delay)}, s.stateEvents(session, 0)...), nil
	}

	events := []Event{{
		Kind:    EventNewRound,
		Payload: NewRoundPayload{Round: session.Round, PassDirection: session.Direction},
		Delay:   delay,
	}}
	return append(events, s.stateEvents(session, 0)...), nil
}

// finish applies pudding scoring and produces the final standings.
func (s *Service) finish(session *domain.Session, delay time.Duration) Event {
	ps := session.Participants()
	puddings := scoring.ScorePudding(ps, len(ps) == 2)
	scoring.ApplyPudding(ps, puddings)
	rankings := scoring.Rankings(ps)

	payload := GameEndPayload{PuddingScores: puddings, Rankings: rankings}
	if len(rankings) > 0 {
		payload.Winner = rankings[0].Name
	}
	return Event{Kind: EventGameEnd, Payload: payload, Delay: delay}
}

// Snapshot projects the session for one viewer.
func (s *Service) Snapshot(session *domain.Session, viewerID string) Snapshot {
	return BuildSnapshot(session, viewerID)
}

// AutoPickDue reports whether any waiting participant has been disconnected
// long enough to be picked for.
func (s *Service) AutoPickDue(session *domain.Session, now time.Time) bool {
	return len(s.dueForAutoPick(session, now)) > 0
}

func (s *Service) dueForAutoPick(session *domain.Session, now time.Time) []*domain.Participant {
	if s.autoPick == nil || session.Phase != domain.PhaseSelecting {
		return nil
	}
	after := s.cfg.AutoPickAfter()

	var due []*domain.Participant
	for _, id := range session.Waiting() {
		p, _ := session.Participant(id)
		if !p.Connected && !p.DisconnectedAt.IsZero() && now.Sub(p.DisconnectedAt) >= after {
			due = append(due, p)
		}
	}
	return due
}

// AutoPick selects for participants who have been disconnected longer than
// the configured threshold while the turn waits on them.
func (s *Service) AutoPick(session *domain.Session, now time.Time) ([]Event, error) {
	var events []Event
	for _, p := range s.dueForAutoPick(session, now) {
		move, err := s.autoPick.CalculateMove(session, p)
		if err != nil {
			return events, err
		}
		picked, err := s.Select(session, p.ID, move.Selection())
		if errors.Is(err, domain.ErrInvalidSelection) && move.UseChopsticks {
			picked, err = s.Select(session, p.ID, domain.Selection{Primary: move.Primary})
		}
		if err != nil {
			return events, err
		}
		s.logger.Info("AutoPick: session %s picked %s for disconnected %s", session.Code, move.Primary, p.ID)
		events = append(events, picked...)
	}
	return events, nil
}

// stateEvents sends each participant their own snapshot.
func (s *Service) stateEvents(session *domain.Session, delay time.Duration) []Event {
	events := make([]Event, 0, session.Len())
	for i, id := range session.Order() {
		ev := Event{
			Kind:       EventGameState,
			Payload:    BuildSnapshot(session, id),
			Recipients: []string{id},
		}
		if i == 0 {
			ev.Delay = delay
		}
		events = append(events, ev)
	}
	return events
}
