package nakama

import (
	"encoding/json"
	"fmt"

	"sushigo/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Label keys queried by the RPCs.
const (
	MatchLabelKeyGame    = "game"
	MatchLabelKeyCode    = "code"
	MatchLabelKeyPhase   = "phase"
	MatchLabelKeyOpen    = "open"
	MatchLabelKeyPlayers = "players"
)

// MatchLabel is the decoded form of a match label.
type MatchLabel struct {
	Game    string       `json:"game"`
	Code    string       `json:"code"`
	Phase   domain.Phase `json:"phase"`
	Open    bool         `json:"open"`
	Players int          `json:"players"`
}

func buildLabel(s *domain.Session) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKeyGame:    LabelGame,
		MatchLabelKeyCode:    s.Code,
		MatchLabelKeyPhase:   string(s.Phase),
		MatchLabelKeyOpen:    s.IsOpen(),
		MatchLabelKeyPlayers: s.Len(),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

// ParseLabel decodes a label produced by the match handler.
func ParseLabel(raw string) (MatchLabel, error) {
	var label MatchLabel
	if err := json.Unmarshal([]byte(raw), &label); err != nil {
		return MatchLabel{}, fmt.Errorf("invalid match label: %w", err)
	}
	return label, nil
}
