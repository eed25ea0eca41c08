package bot

import (
	"math/rand"
	"testing"

	"sushigo/internal/domain"
)

func participantWith(hand, played []domain.Card) *domain.Participant {
	p := domain.NewParticipant("bot-1", "Bot")
	p.Hand = hand
	p.Played = played
	return p
}

func TestFirstCardBot(t *testing.T) {
	p := participantWith([]domain.Card{{ID: "a", Kind: domain.KindEgg}, {ID: "b", Kind: domain.KindSquid}}, nil)
	move, err := (&FirstCardBot{}).CalculateMove(nil, p)
	if err != nil {
		t.Fatalf("CalculateMove failed: %v", err)
	}
	if move.Primary != "a" || move.UseChopsticks {
		t.Fatalf("move = %+v, want a", move)
	}
}

func TestBotsRejectEmptyHand(t *testing.T) {
	brains := []Brain{&FirstCardBot{}, &RandomBot{rng: rand.New(rand.NewSource(1))}, &GreedyBot{Tuning: DefaultTuning}}
	for _, b := range brains {
		if _, err := b.CalculateMove(nil, participantWith(nil, nil)); err != ErrEmptyHand {
			t.Fatalf("%T err = %v, want ErrEmptyHand", b, err)
		}
	}
}

func TestRandomBotPicksFromHand(t *testing.T) {
	b := &RandomBot{rng: rand.New(rand.NewSource(5))}
	p := participantWith([]domain.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil)
	for i := 0; i < 20; i++ {
		move, err := b.CalculateMove(nil, p)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := p.HandCard(move.Primary); !ok {
			t.Fatalf("picked %s which is not in hand", move.Primary)
		}
	}
}

func TestGreedyBot(t *testing.T) {
	tests := []struct {
		name   string
		hand   []domain.Card
		played []domain.Card
		want   string
		chop   string
	}{
		{
			name: "CompletesTempuraPair",
			hand: []domain.Card{
				{ID: "egg", Kind: domain.KindEgg},
				{ID: "tmp", Kind: domain.KindTempura},
			},
			played: []domain.Card{{ID: "t0", Kind: domain.KindTempura}},
			want:   "tmp",
		},
		{
			name: "SquidOnWasabi",
			hand: []domain.Card{
				{ID: "d", Kind: domain.KindDumpling},
				{ID: "sq", Kind: domain.KindSquid},
			},
			played: []domain.Card{{ID: "w", Kind: domain.KindWasabi}},
			want:   "sq",
		},
		{
			name: "CompletesSashimi",
			hand: []domain.Card{
				{ID: "m", Kind: domain.KindMaki, MakiCount: 3},
				{ID: "sa", Kind: domain.KindSashimi},
			},
			played: []domain.Card{{ID: "s0", Kind: domain.KindSashimi}, {ID: "s1", Kind: domain.KindSashimi}},
			want:   "sa",
		},
		{
			name: "SpendsChopsticks",
			hand: []domain.Card{
				{ID: "sa", Kind: domain.KindSashimi},
				{ID: "sq", Kind: domain.KindSquid},
				{ID: "eg", Kind: domain.KindEgg},
			},
			played: []domain.Card{
				{ID: "s0", Kind: domain.KindSashimi},
				{ID: "s1", Kind: domain.KindSashimi},
				{ID: "c", Kind: domain.KindChopsticks},
			},
			want: "sa",
			chop: "sq",
		},
	}

	bot := &GreedyBot{Tuning: DefaultTuning}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := bot.CalculateMove(nil, participantWith(tt.hand, tt.played))
			if err != nil {
				t.Fatalf("CalculateMove failed: %v", err)
			}
			if move.Primary != tt.want {
				t.Fatalf("primary = %s, want %s", move.Primary, tt.want)
			}
			if move.Second != tt.chop || move.UseChopsticks != (tt.chop != "") {
				t.Fatalf("second = %q (chopsticks %t), want %q", move.Second, move.UseChopsticks, tt.chop)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want BotLevel
		err  bool
	}{
		{"first", BotLevelFirst, false},
		{"Random", BotLevelRandom, false},
		{"", BotLevelGreedy, false},
		{"god", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestAgentPlay(t *testing.T) {
	s := domain.NewSession("ABC123", rand.New(rand.NewSource(2)))
	for _, id := range []string{"h", "b"} {
		if _, err := s.Join(id, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Start("h"); err != nil {
		t.Fatal(err)
	}

	agent, err := NewAgent("b", "Bot", BotLevelGreedy, nil)
	if err != nil {
		t.Fatal(err)
	}
	move, err := agent.Play(s)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if _, err := s.Select("b", move.Selection()); err != nil {
		t.Fatalf("agent move rejected: %v", err)
	}

	stranger := &Agent{ID: "x", Strategy: &FirstCardBot{}}
	if _, err := stranger.Play(s); err == nil {
		t.Fatal("expected error for agent outside the session")
	}
}
