package nakama

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sushigo/internal/app"
	"sushigo/internal/domain"
	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
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

type dispatched struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastLabel      string
	messages       []dispatched
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.messages = append(md.messages, dispatched{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) countOp(op int64) int {
	n := 0
	for _, m := range md.messages {
		if m.opCode == op {
			n++
		}
	}
	return n
}

type testPresence struct {
	userID   string
	username string
}

func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return false }
func (p testPresence) GetUsername() string               { return p.username }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p testPresence) GetUserId() string                 { return p.userID }
func (p testPresence) GetSessionId() string              { return "session-" + p.userID }
func (p testPresence) GetNodeId() string                 { return "node" }

type testMatchData struct {
	testPresence
	opCode int64
	data   []byte
}

var (
	_ runtime.MatchData       = testMatchData{}
	_ runtime.Presence        = testPresence{}
	_ runtime.MatchDispatcher = (*mockDispatcher)(nil)
)

func (d testMatchData) GetOpCode() int64      { return d.opCode }
func (d testMatchData) GetData() []byte       { return d.data }
func (d testMatchData) GetReliable() bool     { return true }
func (d testMatchData) GetReceiveTime() int64 { return 0 }

func testContext(env map[string]string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, env)
}

func fastEnv() map[string]string {
	return map[string]string{
		"sushigo_reveal_pause_ms":    "0",
		"sushigo_round_end_pause_ms": "0",
		"sushigo_tick_rate":          "5",
	}
}

// newTestMatch initializes a match and seats the given users.
func newTestMatch(t *testing.T, env map[string]string, users ...string) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	mh := newMatchHandler()
	ctx := testContext(env)
	raw, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{"code": "abc123"})
	if raw == nil {
		t.Fatal("MatchInit returned nil state")
	}
	if tickRate != 5 {
		t.Fatalf("tick rate = %d, want 5", tickRate)
	}
	parsed, err := ParseLabel(label)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Code != "ABC123" || parsed.Game != LabelGame || !parsed.Open || parsed.Phase != domain.PhaseLobby {
		t.Fatalf("initial label = %+v", parsed)
	}

	state := raw.(*MatchState)
	dispatcher := &mockDispatcher{}
	for _, id := range users {
		p := testPresence{userID: id, username: "user-" + id}
		_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, p, map[string]string{"name": "Name " + id})
		if !ok {
			t.Fatalf("join attempt %s rejected: %s", id, reason)
		}
		mh.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	}
	return mh, state, dispatcher
}

func loop(mh *matchHandler, state *MatchState, dispatcher *mockDispatcher, tick int64, msgs ...runtime.MatchData) interface{} {
	return mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, msgs)
}

func selectMsg(t *testing.T, state *MatchState, userID string) runtime.MatchData {
	t.Helper()
	p, ok := state.Session.Participant(userID)
	if !ok {
		t.Fatalf("unknown participant %s", userID)
	}
	data, _ := json.Marshal(ports.Action{CardID: p.Hand[0].ID})
	return testMatchData{testPresence: testPresence{userID: userID}, opCode: OpSelectCard, data: data}
}

func TestMatchJoinSeatsWithMetadataName(t *testing.T) {
	_, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")

	if state.Session.Len() != 2 || state.Session.HostID != "u1" {
		t.Fatalf("len/host = %d/%s", state.Session.Len(), state.Session.HostID)
	}
	p, _ := state.Session.Participant("u2")
	if p.Name != "Name u2" {
		t.Fatalf("name = %q, want metadata name", p.Name)
	}
	if dispatcher.countOp(OpPlayerJoined) != 2 {
		t.Fatalf("player_joined sent %d times, want 2", dispatcher.countOp(OpPlayerJoined))
	}
	label, _ := ParseLabel(dispatcher.lastLabel)
	if label.Players != 2 {
		t.Fatalf("label players = %d, want 2", label.Players)
	}
}

func TestMatchJoinAttemptRejections(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")
	ctx := testContext(fastEnv())

	loop(mh, state, dispatcher, 1, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpStartGame})
	if state.Session.Phase != domain.PhaseSelecting {
		t.Fatalf("phase = %s, want selecting", state.Session.Phase)
	}

	_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, testPresence{userID: "late"}, nil)
	if ok || reason != "Game already started" {
		t.Fatalf("late join = %t %q", ok, reason)
	}

	_, ok, _ = mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, testPresence{userID: "u2"}, nil)
	if !ok {
		t.Fatal("seated participant must be able to rejoin")
	}
}

func TestMatchStartByGuestSendsPrivateError(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")

	loop(mh, state, dispatcher, 1, testMatchData{testPresence: testPresence{userID: "u2"}, opCode: OpStartGame})

	if state.Session.Phase != domain.PhaseLobby {
		t.Fatalf("phase = %s, want lobby", state.Session.Phase)
	}
	last := dispatcher.messages[len(dispatcher.messages)-1]
	if last.opCode != OpGameError {
		t.Fatalf("last op = %d, want %d", last.opCode, OpGameError)
	}
	if len(last.presences) != 1 || last.presences[0].GetUserId() != "u2" {
		t.Fatalf("error recipients = %v", last.presences)
	}
	var msg struct {
		Type string           `json:"type"`
		Data app.ErrorPayload `json:"data"`
	}
	if err := json.Unmarshal(last.data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "error" || msg.Data.Message != "Only host can start" {
		t.Fatalf("error message = %+v", msg)
	}
}

func TestMatchTurnRevealsWhenAllSelected(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")
	loop(mh, state, dispatcher, 1, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpStartGame})
	labelsAfterStart := dispatcher.labelUpdates

	loop(mh, state, dispatcher, 2, selectMsg(t, state, "u1"))
	if dispatcher.countOp(OpCardsRevealed) != 0 {
		t.Fatal("revealed before barrier")
	}
	loop(mh, state, dispatcher, 3, selectMsg(t, state, "u2"))

	if dispatcher.countOp(OpCardsRevealed) != 1 {
		t.Fatalf("cards_revealed sent %d times, want 1", dispatcher.countOp(OpCardsRevealed))
	}
	if state.Session.Turn != 2 {
		t.Fatalf("turn = %d, want 2", state.Session.Turn)
	}
	if dispatcher.labelUpdates != labelsAfterStart {
		t.Fatal("label should only change with phase or seating")
	}
}

func TestMatchRevealPauseDefersState(t *testing.T) {
	env := fastEnv()
	env["sushigo_reveal_pause_ms"] = "1000"
	mh, state, dispatcher := newTestMatch(t, env, "u1", "u2")
	loop(mh, state, dispatcher, 10, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpStartGame})

	loop(mh, state, dispatcher, 11, selectMsg(t, state, "u1"), selectMsg(t, state, "u2"))
	if state.PendingEvents() == 0 {
		t.Fatal("expected state updates to wait out the reveal pause")
	}
	statesBefore := dispatcher.countOp(OpGameState)

	loop(mh, state, dispatcher, 15)
	if dispatcher.countOp(OpGameState) != statesBefore {
		t.Fatal("state sent before pause elapsed")
	}
	loop(mh, state, dispatcher, 16)
	if state.PendingEvents() != 0 {
		t.Fatalf("pending = %d after pause, want 0", state.PendingEvents())
	}
	if dispatcher.countOp(OpGameState) != statesBefore+2 {
		t.Fatalf("game_state sent %d times after pause, want 2", dispatcher.countOp(OpGameState)-statesBefore)
	}
}

func TestMatchPlaysToGameEnd(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")
	tick := int64(1)
	loop(mh, state, dispatcher, tick, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpStartGame})

	for state.Session.Phase != domain.PhaseGameEnd {
		tick++
		if state.Session.Phase == domain.PhaseRoundEnd {
			loop(mh, state, dispatcher, tick, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpNextRound})
			continue
		}
		loop(mh, state, dispatcher, tick, selectMsg(t, state, "u1"), selectMsg(t, state, "u2"))
	}

	if dispatcher.countOp(OpGameEnd) != 1 {
		t.Fatalf("game_end sent %d times, want 1", dispatcher.countOp(OpGameEnd))
	}
	label, _ := ParseLabel(dispatcher.lastLabel)
	if label.Phase != domain.PhaseGameEnd || label.Open {
		t.Fatalf("final label = %+v", label)
	}

	ctx := testContext(fastEnv())
	for _, id := range []string{"u1", "u2"} {
		mh.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, tick, state, []runtime.Presence{testPresence{userID: id}})
	}
	if got := loop(mh, state, dispatcher, tick+1); got != nil {
		t.Fatal("abandoned finished match should terminate")
	}
}

func TestMatchLeave(t *testing.T) {
	ctx := testContext(fastEnv())

	t.Run("LobbyEmptiedTerminates", func(t *testing.T) {
		mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1")
		if got := mh.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{testPresence{userID: "u1"}}); got != nil {
			t.Fatal("empty lobby should terminate")
		}
	})

	t.Run("InGameKeepsSeatAndAutoPicks", func(t *testing.T) {
		env := fastEnv()
		env["sushigo_auto_pick_after_seconds"] = "30"
		mh, state, dispatcher := newTestMatch(t, env, "u1", "u2")
		at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		mh.now = func() time.Time { return at }

		loop(mh, state, dispatcher, 1, testMatchData{testPresence: testPresence{userID: "u1"}, opCode: OpStartGame})
		if got := mh.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{testPresence{userID: "u2"}}); got == nil {
			t.Fatal("match should survive a disconnect during play")
		}
		if state.Session.Len() != 2 {
			t.Fatalf("len = %d, want 2", state.Session.Len())
		}

		loop(mh, state, dispatcher, 3, selectMsg(t, state, "u1"))
		if state.Session.Turn != 1 {
			t.Fatal("auto-pick fired before threshold")
		}

		mh.now = func() time.Time { return at.Add(time.Minute) }
		loop(mh, state, dispatcher, 4)
		if state.Session.Turn != 2 {
			t.Fatalf("turn = %d, want 2 after auto-pick", state.Session.Turn)
		}
	})
}

func TestMatchReservedHostSurvivesEarlyJoiner(t *testing.T) {
	mh := newMatchHandler()
	ctx := testContext(fastEnv())
	params := map[string]interface{}{ParamCode: "HOST01", ParamHost: "creator", ParamHostName: "Cara"}
	raw, _, _ := mh.MatchInit(ctx, noopLogger{}, nil, nil, params)
	if raw == nil {
		t.Fatal("MatchInit returned nil state")
	}
	state := raw.(*MatchState)
	dispatcher := &mockDispatcher{}

	join := func(id string, metadata map[string]string) {
		t.Helper()
		p := testPresence{userID: id, username: "user-" + id}
		if _, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, p, metadata); !ok {
			t.Fatalf("join attempt %s rejected: %s", id, reason)
		}
		mh.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	}

	// A guest who learned the code arrives before the creator.
	join("guest", map[string]string{"name": "Gus"})
	if state.Session.HostID != "creator" {
		t.Fatalf("host = %q after early join, want creator", state.Session.HostID)
	}
	loop(mh, state, dispatcher, 1, testMatchData{testPresence: testPresence{userID: "guest"}, opCode: OpStartGame})
	if state.Session.Phase != domain.PhaseLobby {
		t.Fatalf("guest started the game: phase = %s", state.Session.Phase)
	}

	join("creator", nil)
	if got := state.Session.Order(); len(got) != 2 || got[0] != "creator" {
		t.Fatalf("order = %v, want creator first", got)
	}
	p, _ := state.Session.Participant("creator")
	if p.Name != "Cara" {
		t.Fatalf("host name = %q, want name from create_session", p.Name)
	}

	loop(mh, state, dispatcher, 2, testMatchData{testPresence: testPresence{userID: "creator"}, opCode: OpStartGame})
	if state.Session.Phase != domain.PhaseSelecting {
		t.Fatalf("phase = %s, want selecting", state.Session.Phase)
	}
}

func TestMatchReservedHostSeatStaysFree(t *testing.T) {
	mh := newMatchHandler()
	ctx := testContext(fastEnv())
	raw, _, _ := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{ParamCode: "HOST02", ParamHost: "creator"})
	state := raw.(*MatchState)
	dispatcher := &mockDispatcher{}

	for _, id := range []string{"g1", "g2", "g3", "g4"} {
		p := testPresence{userID: id}
		if _, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, p, nil); !ok {
			t.Fatalf("join attempt %s rejected: %s", id, reason)
		}
		mh.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	}

	if _, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, testPresence{userID: "g5"}, nil); ok || reason != "Could not join game (game may be full)" {
		t.Fatalf("fifth guest = %t %q, want rejected", ok, reason)
	}
	if _, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, testPresence{userID: "creator"}, nil); !ok {
		t.Fatalf("creator rejected: %s", reason)
	}
}

func TestMatchSignalSnapshot(t *testing.T) {
	mh, state, dispatcher := newTestMatch(t, fastEnv(), "u1", "u2")
	_, out := mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, SignalSnapshot)

	var snap app.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("snapshot json: %v", err)
	}
	if snap.GameCode != "ABC123" || snap.PlayerCount != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if _, other := mh.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, "other"); other != "" {
		t.Fatalf("unknown signal answered %q", other)
	}
}

func TestDelayTicks(t *testing.T) {
	tests := []struct {
		d    time.Duration
		rate int
		want int64
	}{
		{0, 5, 0},
		{time.Second, 5, 5},
		{2100 * time.Millisecond, 5, 11},
		{time.Second, 1, 1},
	}
	for _, tt := range tests {
		if got := delayTicks(tt.d, tt.rate); got != tt.want {
			t.Errorf("delayTicks(%v, %d) = %d, want %d", tt.d, tt.rate, got, tt.want)
		}
	}
}

// fakeNakama implements the parts of runtime.NakamaModule the RPCs use.
type fakeNakama struct {
	runtime.NakamaModule
	matches   []*api.Match
	created   []map[string]interface{}
	lastQuery string
	signal    string
}

func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.lastQuery = query
	var out []*api.Match
	for _, m := range f.matches {
		parsed, err := ParseLabel(m.GetLabel().GetValue())
		if err != nil {
			continue
		}
		if strings.Contains(query, "label.code:") && !strings.Contains(query, "label.code:"+parsed.Code) {
			continue
		}
		if strings.Contains(query, "label.open:T") && !parsed.Open {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return "match-new", nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	return f.signal, nil
}

func labelledMatch(t *testing.T, id, code string, phase domain.Phase, players int) *api.Match {
	t.Helper()
	s := domain.NewSession(code, nil)
	for i := 0; i < players; i++ {
		if _, err := s.Join(string(rune('a'+i)), "p"); err != nil {
			t.Fatal(err)
		}
	}
	s.Phase = phase
	label, err := buildLabel(s)
	if err != nil {
		t.Fatal(err)
	}
	return &api.Match{MatchId: id, Authoritative: true, Label: wrapperspb.String(label), Size: int32(players)}
}

func TestRpcJoinSession(t *testing.T) {
	nk := &fakeNakama{matches: []*api.Match{
		labelledMatch(t, "m-lobby", "LOBBY1", domain.PhaseLobby, 2),
		labelledMatch(t, "m-busy", "BUSY01", domain.PhaseSelecting, 3),
	}}
	ctx := context.Background()

	out, err := rpcJoinSession(ctx, noopLogger{}, nil, nk, `{"game_code":"lobby1"}`)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	var resp SessionResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MatchID != "m-lobby" || resp.GameCode != "LOBBY1" {
		t.Fatalf("resp = %+v", resp)
	}

	tests := []struct {
		name    string
		payload string
		code    int
		msg     string
	}{
		{"Unknown", `{"game_code":"NOPE00"}`, codeNotFound, "Game not found"},
		{"Started", `{"game_code":"BUSY01"}`, codeFailedPrecondition, "Game already started"},
		{"BadPayload", `not json`, codeNotFound, "Game not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rpcJoinSession(ctx, noopLogger{}, nil, nk, tt.payload)
			rtErr, ok := err.(*runtime.Error)
			if !ok {
				t.Fatalf("err = %v, want *runtime.Error", err)
			}
			if rtErr.Code != tt.code || rtErr.Message != tt.msg {
				t.Fatalf("err = %d %q, want %d %q", rtErr.Code, rtErr.Message, tt.code, tt.msg)
			}
		})
	}
}

func TestRpcQuickMatch(t *testing.T) {
	t.Run("JoinsOpenLobby", func(t *testing.T) {
		nk := &fakeNakama{matches: []*api.Match{labelledMatch(t, "m-1", "OPEN01", domain.PhaseLobby, 1)}}
		out, err := rpcQuickMatch(context.Background(), noopLogger{}, nil, nk, "")
		if err != nil {
			t.Fatal(err)
		}
		var resp SessionResponse
		_ = json.Unmarshal([]byte(out), &resp)
		if resp.MatchID != "m-1" || resp.IsNew {
			t.Fatalf("resp = %+v", resp)
		}
		if !strings.Contains(nk.lastQuery, "+label.game:sushigo") {
			t.Fatalf("query = %q", nk.lastQuery)
		}
	})

	t.Run("CreatesWhenNoneOpen", func(t *testing.T) {
		nk := &fakeNakama{}
		out, err := rpcQuickMatch(context.Background(), noopLogger{}, nil, nk, "")
		if err != nil {
			t.Fatal(err)
		}
		var resp SessionResponse
		_ = json.Unmarshal([]byte(out), &resp)
		if resp.MatchID != "match-new" || !resp.IsNew || resp.GameCode == "" {
			t.Fatalf("resp = %+v", resp)
		}
		if len(nk.created) != 1 || nk.created[0]["code"] != resp.GameCode {
			t.Fatalf("created = %v", nk.created)
		}
	})
}

func TestRpcCreateSessionReservesCaller(t *testing.T) {
	nk := &fakeNakama{}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "creator")

	out, err := rpcCreateSession(ctx, noopLogger{}, nil, nk, `{"name":" Cara "}`)
	if err != nil {
		t.Fatal(err)
	}
	var resp SessionResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.HostID != "creator" || !resp.IsNew || resp.GameCode == "" {
		t.Fatalf("resp = %+v", resp)
	}
	if len(nk.created) != 1 {
		t.Fatalf("created = %v", nk.created)
	}
	params := nk.created[0]
	if params[ParamHost] != "creator" || params[ParamHostName] != "Cara" || params[ParamCode] != resp.GameCode {
		t.Fatalf("params = %v", params)
	}
}

func TestRpcSessionSnapshot(t *testing.T) {
	nk := &fakeNakama{
		matches: []*api.Match{labelledMatch(t, "m-1", "SNAP01", domain.PhaseLobby, 2)},
		signal:  `{"game_code":"SNAP01"}`,
	}
	out, err := rpcSessionSnapshot(context.Background(), noopLogger{}, nil, nk, `{"game_code":"SNAP01"}`)
	if err != nil {
		t.Fatal(err)
	}
	if out != nk.signal {
		t.Fatalf("out = %q", out)
	}
}
