package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"sushigo/internal/domain"
	"sushigo/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// ErrNoFreeCode is returned when no unused session code could be drawn.
var ErrNoFreeCode = errors.New("could not allocate a session code")

const (
	// outboxSize bounds queued event batches per session before publishers block.
	outboxSize = 64
	// finishedRetention keeps ended games readable before Sweep evicts them.
	finishedRetention = 5 * time.Minute
)

// Seat identifies a participant's place in a session.
type Seat struct {
	Code          string `json:"game_code"`
	ParticipantID string `json:"player_id"`
	Token         string `json:"token,omitempty"`
}

// Manager owns the live sessions of a standalone server. Each session is
// guarded by its own lock and drains its events through its own outbox
// goroutine, so events of one session are delivered in emission order.
type Manager struct {
	svc      *Service
	delivery ports.Delivery
	tokens   *TokenIssuer
	logger   runtime.Logger
	newID    func() string
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool

	quit chan struct{}
	wg   sync.WaitGroup
}

type entry struct {
	mu         sync.Mutex
	session    *domain.Session
	out        chan []Event
	closed     bool
	finishedAt time.Time
}

func NewManager(svc *Service, delivery ports.Delivery, tokens *TokenIssuer, logger runtime.Logger) *Manager {
	return &Manager{
		svc:      svc,
		delivery: delivery,
		tokens:   tokens,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
		sessions: make(map[string]*entry),
		quit:     make(chan struct{}),
	}
}

// CreateSession opens a lobby under a fresh code and seats hostName as host.
func (m *Manager) CreateSession(hostName string) (Seat, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return Seat{}, ErrInvalidName
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Seat{}, ErrSessionNotFound
	}
	code := ""
	for i := 0; i < maxCodeAttempts; i++ {
		candidate := m.svc.NewCode()
		if _, taken := m.sessions[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		m.mu.Unlock()
		return Seat{}, ErrNoFreeCode
	}
	e := &entry{session: m.svc.NewSession(code), out: make(chan []Event, outboxSize)}
	m.sessions[code] = e
	m.wg.Add(1)
	go m.drain(code, e.out)
	m.mu.Unlock()

	seat, err := m.seat(e, hostName)
	if err != nil {
		m.remove(code, e)
		return Seat{}, err
	}
	m.logger.Info("CreateSession: session %s created by %s", code, seat.ParticipantID)
	return seat, nil
}

// JoinSession seats name in the lobby identified by code.
func (m *Manager) JoinSession(code, name string) (Seat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Seat{}, ErrInvalidName
	}
	e, err := m.lookup(code)
	if err != nil {
		return Seat{}, err
	}
	seat, err := m.seat(e, name)
	if err != nil {
		return Seat{}, err
	}
	m.logger.Info("JoinSession: %s joined session %s", seat.ParticipantID, seat.Code)
	return seat, nil
}

func (m *Manager) seat(e *entry, name string) (Seat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Seat{}, ErrSessionNotFound
	}

	id := m.newID()
	events, err := m.svc.Join(e.session, id, name)
	if err != nil {
		return Seat{}, err
	}
	token, err := m.tokens.Issue(e.session.Code, id)
	if err != nil {
		return Seat{}, err
	}
	m.publish(e, events)
	return Seat{Code: e.session.Code, ParticipantID: id, Token: token}, nil
}

// VerifySeat checks a seat token presented by a connecting client.
func (m *Manager) VerifySeat(code, participantID, token string) error {
	return m.tokens.Verify(token, NormalizeCode(code), participantID)
}

// Connect marks a participant live and pushes them the current state.
func (m *Manager) Connect(code, participantID string) error {
	return m.act(code, participantID, func(s *domain.Session) ([]Event, error) {
		return m.svc.Connect(s, participantID)
	})
}

// Disconnect handles a dropped connection. An emptied lobby is closed.
func (m *Manager) Disconnect(code, participantID string) error {
	e, err := m.lookup(code)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrSessionNotFound
	}
	events, err := m.svc.Disconnect(e.session, participantID, m.now())
	if err != nil {
		e.mu.Unlock()
		return err
	}
	m.publish(e, events)
	empty := e.session.Len() == 0
	if empty {
		// Closed under the same lock so no join can slip in before removal.
		m.closeLocked(e)
	}
	e.mu.Unlock()

	if empty {
		m.remove(e.session.Code, e)
		m.logger.Info("Disconnect: session %s emptied and closed", e.session.Code)
	}
	return nil
}

// StartSession starts the game on the host's request.
func (m *Manager) StartSession(code, actorID string) error {
	return m.act(code, actorID, func(s *domain.Session) ([]Event, error) {
		return m.svc.Start(s, actorID)
	})
}

// SubmitSelection records a participant's pick for the current turn.
func (m *Manager) SubmitSelection(code, actorID string, sel domain.Selection) error {
	return m.act(code, actorID, func(s *domain.Session) ([]Event, error) {
		return m.svc.Select(s, actorID, sel)
	})
}

// AdvanceRound moves out of ROUND_END on the host's request.
func (m *Manager) AdvanceRound(code, actorID string) error {
	return m.act(code, actorID, func(s *domain.Session) ([]Event, error) {
		_, events, err := m.svc.Advance(s, actorID)
		return events, err
	})
}

// Snapshot returns the view of a session for viewerID; an empty viewer gets the public view.
func (m *Manager) Snapshot(code, viewerID string) (Snapshot, error) {
	e, err := m.lookup(code)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if viewerID != "" {
		if _, ok := e.session.Participant(viewerID); !ok {
			return Snapshot{}, domain.ErrUnknownParticipant
		}
	}
	return m.svc.Snapshot(e.session, viewerID), nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep auto-picks for stalled disconnected participants across all sessions
// and evicts games that ended more than finishedRetention ago.
// It returns the number of sessions that were unblocked.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	swept := 0
	var expired []*entry
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed && m.svc.AutoPickDue(e.session, now) {
			events, err := m.svc.AutoPick(e.session, now)
			if err != nil {
				m.logger.Error("Sweep: session %s auto-pick failed: %v", e.session.Code, err)
			}
			m.publish(e, events)
			m.markFinished(e, now)
			swept++
		}
		if !e.closed && !e.finishedAt.IsZero() && now.Sub(e.finishedAt) >= finishedRetention {
			m.closeLocked(e)
			expired = append(expired, e)
		}
		e.mu.Unlock()
	}

	for _, e := range expired {
		m.remove(e.session.Code, e)
		m.logger.Info("Sweep: evicted finished session %s", e.session.Code)
	}
	return swept
}

// Close stops accepting work and flushes every outbox without waiting out pauses.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.quit)
	entries := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		m.shut(e)
	}
	m.wg.Wait()
}

// act runs fn under the session lock. Rejections are also reported to the actor.
func (m *Manager) act(code, actorID string, fn func(*domain.Session) ([]Event, error)) error {
	e, err := m.lookup(code)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionNotFound
	}

	events, err := fn(e.session)
	m.publish(e, events)
	m.markFinished(e, m.now())
	if err != nil {
		if ClassOf(err) == ClassInternal {
			m.logger.Error("Session %s: action by %s failed: %v", e.session.Code, actorID, err)
		}
		if _, ok := e.session.Participant(actorID); ok {
			m.publish(e, []Event{ErrorEvent(actorID, err)})
		}
	}
	return err
}

func (m *Manager) lookup(code string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[NormalizeCode(code)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// publish queues a batch on the session outbox. Callers hold e.mu.
func (m *Manager) publish(e *entry, events []Event) {
	if len(events) == 0 || e.closed {
		return
	}
	e.out <- events
}

func (m *Manager) remove(code string, e *entry) {
	m.mu.Lock()
	if m.sessions[code] == e {
		delete(m.sessions, code)
	}
	m.mu.Unlock()
	m.shut(e)
}

func (m *Manager) shut(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m.closeLocked(e)
}

// closeLocked stops the session accepting work; its outbox still drains.
// Callers hold e.mu.
func (m *Manager) closeLocked(e *entry) {
	if !e.closed {
		e.closed = true
		close(e.out)
	}
}

// markFinished stamps the moment a session reached GAME_END. Callers hold e.mu.
func (m *Manager) markFinished(e *entry, now time.Time) {
	if e.session.Phase == domain.PhaseGameEnd && e.finishedAt.IsZero() {
		e.finishedAt = now
	}
}

// drain delivers a session's events in order, honoring each event's delay
// until the manager is closed.
func (m *Manager) drain(code string, out <-chan []Event) {
	defer m.wg.Done()
	ctx := context.Background()

	for batch := range out {
		for _, ev := range batch {
			if ev.Delay > 0 {
				m.wait(ev.Delay)
			}
			if err := Dispatch(ctx, m.delivery, code, ev); err != nil {
				m.logger.Warn("Outbox: session %s failed to deliver %s: %v", code, ev.Kind, err)
			}
		}
	}
}

func (m *Manager) wait(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-m.quit:
	}
}
