package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchDelivery sends app events to the presences of one match. The session
// code is implied by the match, so it is ignored.
type matchDelivery struct {
	presences  map[string]runtime.Presence
	dispatcher runtime.MatchDispatcher
}

var _ ports.Delivery = (*matchDelivery)(nil)

func encode(msg ports.Message) (int64, []byte, error) {
	op, ok := OpCodeFor(msg.Type)
	if !ok {
		return 0, nil, fmt.Errorf("no op code for message type %q", msg.Type)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	return op, data, nil
}

func (d *matchDelivery) SendTo(ctx context.Context, sessionCode, participantID string, msg ports.Message) error {
	presence, ok := d.presences[participantID]
	if !ok {
		return nil
	}
	op, data, err := encode(msg)
	if err != nil {
		return err
	}
	return d.dispatcher.BroadcastMessage(op, data, []runtime.Presence{presence}, nil, true)
}

func (d *matchDelivery) Broadcast(ctx context.Context, sessionCode string, msg ports.Message, excludeID string) error {
	op, data, err := encode(msg)
	if err != nil {
		return err
	}
	if excludeID == "" {
		return d.dispatcher.BroadcastMessage(op, data, nil, nil, true)
	}

	recipients := make([]runtime.Presence, 0, len(d.presences))
	for id, p := range d.presences {
		if id != excludeID {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	return d.dispatcher.BroadcastMessage(op, data, recipients, nil, true)
}
