package app

import "sushigo/internal/domain"

// CardView is the client representation of a card.
type CardView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	MakiCount   int    `json:"maki_count"`
	OnWasabi    bool   `json:"on_wasabi"`
	DisplayName string `json:"display_name"`
	Image       string `json:"image"`
}

// PlayerView is the public projection of a participant, plus the hand for its owner.
type PlayerView struct {
	ParticipantID string     `json:"player_id"`
	Name          string     `json:"name"`
	Score         int        `json:"score"`
	RoundScores   []int      `json:"round_scores"`
	PlayedCards   []CardView `json:"played_cards"`
	PuddingCount  int        `json:"pudding_count"`
	HandCount     int        `json:"hand_count"`
	IsReady       bool       `json:"is_ready"`
	IsConnected   bool       `json:"is_connected"`
	HasChopsticks bool       `json:"has_chopsticks"`
	Hand          []CardView `json:"hand,omitempty"`
}

// Snapshot is a serializable view of a session for one viewer.
type Snapshot struct {
	GameCode      string           `json:"game_code"`
	Phase         domain.Phase     `json:"phase"`
	CurrentRound  int              `json:"current_round"`
	CurrentTurn   int              `json:"current_turn"`
	PassDirection domain.Direction `json:"pass_direction"`
	HostID        string           `json:"host_id"`
	PlayerCount   int              `json:"player_count"`
	Players       []PlayerView     `json:"players"`
}

// RevealView is what one participant put down in a turn.
type RevealView struct {
	CardsPlayed    []CardView `json:"cards_played"`
	UsedChopsticks bool       `json:"used_chopsticks"`
}

// ToCardView maps a domain card to its client representation.
func ToCardView(c domain.Card) CardView {
	return CardView{
		ID:          c.ID,
		Type:        c.Kind.String(),
		MakiCount:   c.MakiCount,
		OnWasabi:    c.OnWasabi,
		DisplayName: c.DisplayName(),
		Image:       c.Image(),
	}
}

func toCardViews(cards []domain.Card) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = ToCardView(c)
	}
	return out
}

// BuildSnapshot projects the session for viewerID. Only the viewer's own hand
// is included; an empty viewerID yields the public view.
func BuildSnapshot(s *domain.Session, viewerID string) Snapshot {
	snap := Snapshot{
		GameCode:      s.Code,
		Phase:         s.Phase,
		CurrentRound:  s.Round,
		CurrentTurn:   s.Turn,
		PassDirection: s.Direction,
		HostID:        s.HostID,
		PlayerCount:   s.Len(),
		Players:       make([]PlayerView, 0, s.Len()),
	}

	for _, p := range s.Participants() {
		view := PlayerView{
			ParticipantID: p.ID,
			Name:          p.Name,
			Score:         p.Score,
			RoundScores:   append([]int(nil), p.RoundScores[:]...),
			PlayedCards:   toCardViews(p.Played),
			PuddingCount:  len(p.Puddings),
			HandCount:     len(p.Hand),
			IsReady:       p.Pending.Ready,
			IsConnected:   p.Connected,
			HasChopsticks: p.HasChopsticks(),
		}
		if viewerID != "" && p.ID == viewerID {
			view.Hand = toCardViews(p.Hand)
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}

func buildReveal(res domain.RevealResult) CardsRevealedPayload {
	out := make(CardsRevealedPayload, len(res.Plays))
	for _, play := range res.Plays {
		out[play.ParticipantID] = RevealView{
			CardsPlayed:    toCardViews(play.Cards),
			UsedChopsticks: play.UsedChopsticks,
		}
	}
	return out
}
