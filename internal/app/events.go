package app

import (
	"context"
	"time"

	"sushigo/internal/domain"
	"sushigo/internal/ports"
	"sushigo/internal/scoring"
)

// EventKind identifies emitted events; the value is also the wire message type.
type EventKind string

const (
	EventPlayerJoined       EventKind = "player_joined"
	EventPlayerLeft         EventKind = "player_left"
	EventGameStarted        EventKind = "game_started"
	EventPlayerReady        EventKind = "player_ready"
	EventCardsRevealed      EventKind = "cards_revealed"
	EventRoundEnd           EventKind = "round_end"
	EventNewRound           EventKind = "new_round"
	EventGameEnd            EventKind = "game_end"
	EventPlayerConnected    EventKind = "player_connected"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventGameState          EventKind = "game_state"
	EventError              EventKind = "error"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string      // participant IDs; empty means broadcast
	Exclude    string        // broadcast only: participant to skip
	Delay      time.Duration // minimum gap after the previous event of the session
}

type PlayerJoinedPayload struct {
	ParticipantID string `json:"player_id"`
	Name          string `json:"name"`
	Seat          int    `json:"seat"`
}

type PlayerLeftPayload struct {
	ParticipantID string `json:"player_id"`
	HostID        string `json:"host_id"`
}

type GameStartedPayload struct {
	Round         int              `json:"round"`
	PassDirection domain.Direction `json:"pass_direction"`
}

type PlayerReadyPayload struct {
	ParticipantID string `json:"player_id"`
}

type CardsRevealedPayload map[string]RevealView

type RoundEndPayload struct {
	Round  int                          `json:"round"`
	Scores map[string]scoring.Breakdown `json:"scores"`
}

type NewRoundPayload struct {
	Round         int              `json:"round"`
	PassDirection domain.Direction `json:"pass_direction"`
}

type GameEndPayload struct {
	PuddingScores map[string]int    `json:"pudding_scores"`
	Rankings      []scoring.Ranking `json:"rankings"`
	Winner        string            `json:"winner"`
}

type PlayerConnectionPayload struct {
	ParticipantID string `json:"player_id"`
	Name          string `json:"name,omitempty"`
}

type ErrorPayload struct {
	Class   ErrorClass `json:"class"`
	Message string     `json:"message"`
}

// Message converts the event into its wire envelope.
func (e Event) Message() ports.Message {
	return ports.Message{Type: string(e.Kind), Data: e.Payload}
}

// ErrorEvent builds the rejection notice for the participant whose action failed.
func ErrorEvent(participantID string, err error) Event {
	return Event{
		Kind:       EventError,
		Payload:    ErrorPayload{Class: ClassOf(err), Message: UserMessage(err)},
		Recipients: []string{participantID},
	}
}

// Dispatch hands one event to a delivery port, honoring its recipients.
// Delay is the caller's concern.
func Dispatch(ctx context.Context, d ports.Delivery, sessionCode string, ev Event) error {
	msg := ev.Message()
	if len(ev.Recipients) == 0 {
		return d.Broadcast(ctx, sessionCode, msg, ev.Exclude)
	}
	for _, id := range ev.Recipients {
		if err := d.SendTo(ctx, sessionCode, id, msg); err != nil {
			return err
		}
	}
	return nil
}
