package nakama

import "sushigo/internal/app"

const (
	// RpcCreateSession creates a lobby match and returns its code.
	RpcCreateSession = "create_session"
	// RpcJoinSession resolves a session code to its match id.
	RpcJoinSession = "join_session"
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcSessionSnapshot returns the public view of a session.
	RpcSessionSnapshot = "session_snapshot"

	// MatchNameSushiGo is the authoritative match handler name registered with Nakama.
	MatchNameSushiGo = "sushigo_match"

	// LabelGame is the value of the "game" key in every match label.
	LabelGame = "sushigo"

	// EnvPrefix prefixes game config overrides in the Nakama runtime env.
	EnvPrefix = "sushigo_"

	// GameConfigPath is read once per process on first match init.
	GameConfigPath = "data/game_config.json"
)

// MatchCreate params understood by MatchInit.
const (
	ParamCode     = "code"
	ParamHost     = "host"
	ParamHostName = "host_name"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpSelectCard   int64 = 2
	OpNextRound    int64 = 3
	OpRequestState int64 = 4

	// Server -> Client events
	OpPlayerJoined       int64 = 101
	OpPlayerLeft         int64 = 102
	OpGameStarted        int64 = 103
	OpPlayerReady        int64 = 104
	OpCardsRevealed      int64 = 105
	OpRoundEnd           int64 = 106
	OpNewRound           int64 = 107
	OpGameEnd            int64 = 108
	OpPlayerConnected    int64 = 109
	OpPlayerDisconnected int64 = 110
	OpGameState          int64 = 111 // send privately
	OpGameError          int64 = 199 // send privately
)

var eventOpCodes = map[string]int64{
	string(app.EventPlayerJoined):       OpPlayerJoined,
	string(app.EventPlayerLeft):         OpPlayerLeft,
	string(app.EventGameStarted):        OpGameStarted,
	string(app.EventPlayerReady):        OpPlayerReady,
	string(app.EventCardsRevealed):      OpCardsRevealed,
	string(app.EventRoundEnd):           OpRoundEnd,
	string(app.EventNewRound):           OpNewRound,
	string(app.EventGameEnd):            OpGameEnd,
	string(app.EventPlayerConnected):    OpPlayerConnected,
	string(app.EventPlayerDisconnected): OpPlayerDisconnected,
	string(app.EventGameState):          OpGameState,
	string(app.EventError):              OpGameError,
}

// OpCodeFor returns the op code of a server message type.
func OpCodeFor(msgType string) (int64, bool) {
	op, ok := eventOpCodes[msgType]
	return op, ok
}
