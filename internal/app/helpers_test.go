package app

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"sushigo/internal/config"
	"sushigo/internal/domain"
	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// sent is one message recorded by recordingDelivery. To is empty for broadcasts.
type sent struct {
	Session string
	To      string
	Exclude string
	Msg     ports.Message
}

// recordingDelivery records delivery calls for assertions.
type recordingDelivery struct {
	mu   sync.Mutex
	sent []sent
}

func (d *recordingDelivery) SendTo(ctx context.Context, sessionCode, participantID string, msg ports.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sent{Session: sessionCode, To: participantID, Msg: msg})
	return nil
}

func (d *recordingDelivery) Broadcast(ctx context.Context, sessionCode string, msg ports.Message, excludeID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sent{Session: sessionCode, Exclude: excludeID, Msg: msg})
	return nil
}

func (d *recordingDelivery) messages() []sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sent(nil), d.sent...)
}

func (d *recordingDelivery) countType(kind EventKind) int {
	n := 0
	for _, s := range d.messages() {
		if s.Msg.Type == string(kind) {
			n++
		}
	}
	return n
}

// fastConfig disables presentation pauses.
func fastConfig() config.GameConfig {
	cfg := config.Defaults()
	cfg.RevealPauseMs = 0
	cfg.RoundEndPauseMs = 0
	return cfg
}

func newTestService(cfg config.GameConfig, seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), cfg, noopLogger{})
}

// lobby creates a session seated with ids in order.
func lobby(t *testing.T, svc *Service, ids ...string) *domain.Session {
	t.Helper()
	s := svc.NewSession("ABC123")
	for _, id := range ids {
		if _, err := svc.Join(s, id, "Player "+id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return s
}

// playTurn has every waiting participant pick their first card.
func playTurn(t *testing.T, svc *Service, s *domain.Session) []Event {
	t.Helper()
	var events []Event
	for _, id := range s.Waiting() {
		p, _ := s.Participant(id)
		evs, err := svc.Select(s, id, domain.Selection{Primary: p.Hand[0].ID})
		if err != nil {
			t.Fatalf("select for %s: %v", id, err)
		}
		events = append(events, evs...)
	}
	return events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func hasKind(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}
