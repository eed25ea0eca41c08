package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sushigo/internal/app"
	"sushigo/internal/config"
	"sushigo/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeFailedPrecondition = 9
	codeInternal           = 13
)

// createCodeAttempts bounds the search for a code no live match uses.
const createCodeAttempts = 8

// SessionRequest is the payload of join_session and session_snapshot.
type SessionRequest struct {
	GameCode string `json:"game_code"`
}

// CreateRequest is the optional payload of create_session.
type CreateRequest struct {
	Name string `json:"name"`
}

// SessionResponse is returned by create_session, join_session and quick_match.
type SessionResponse struct {
	MatchID  string `json:"match_id"`
	GameCode string `json:"game_code"`
	HostID   string `json:"host_id,omitempty"`
	IsNew    bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateSession:   rpcCreateSession,
		RpcJoinSession:     rpcJoinSession,
		RpcQuickMatch:      rpcQuickMatch,
		RpcSessionSnapshot: rpcSessionSnapshot,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}
	return nil
}

// toRuntimeError maps app errors to runtime errors carrying a gRPC code.
func toRuntimeError(err error) error {
	msg := app.UserMessage(err)
	switch app.ClassOf(err) {
	case app.ClassNotFound:
		return runtime.NewError(msg, codeNotFound)
	case app.ClassValidation:
		return runtime.NewError(msg, codeInvalidArgument)
	case app.ClassCapacity:
		return runtime.NewError(msg, codeFailedPrecondition)
	default:
		return runtime.NewError(msg, codeInternal)
	}
}

func marshalResponse(resp interface{}) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("failed to encode response", codeInternal)
	}
	return string(b), nil
}

// rpcCreateSession opens a lobby whose host seat is reserved for the caller,
// so nobody who learns the code first can take the host role.
func rpcCreateSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req CreateRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			logger.Warn("CreateSession [User:%s]: ignoring bad payload: %v", userID, err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	length := config.GetGameConfig().CodeLength

	for i := 0; i < createCodeAttempts; i++ {
		code := app.NewSessionCode(rng, length)
		existing, err := findByCode(ctx, nk, code)
		if err != nil {
			logger.Error("CreateSession [User:%s]: Failed to list matches: %v", userID, err)
			return "", toRuntimeError(err)
		}
		if existing != nil {
			continue
		}

		params := map[string]interface{}{ParamCode: code}
		if userID != "" {
			params[ParamHost] = userID
			params[ParamHostName] = strings.TrimSpace(req.Name)
		}
		matchID, err := nk.MatchCreate(ctx, MatchNameSushiGo, params)
		if err != nil {
			logger.Error("CreateSession [User:%s]: Failed to create match: %v", userID, err)
			return "", toRuntimeError(err)
		}
		logger.Info("CreateSession [User:%s]: Created session %s as match %s", userID, code, matchID)
		return marshalResponse(SessionResponse{MatchID: matchID, GameCode: code, HostID: userID, IsNew: true})
	}
	return "", toRuntimeError(app.ErrNoFreeCode)
}

func rpcJoinSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	match, label, err := resolveSession(ctx, nk, payload)
	if err != nil {
		logger.Warn("JoinSession [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	if !label.Open {
		logger.Warn("JoinSession [User:%s]: session %s is %s and not open", userID, label.Code, label.Phase)
		return "", runtime.NewError(app.UserMessage(errClosed(label)), codeFailedPrecondition)
	}
	return marshalResponse(SessionResponse{MatchID: match.GetMatchId(), GameCode: label.Code})
}

func rpcSessionSnapshot(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	match, _, err := resolveSession(ctx, nk, payload)
	if err != nil {
		return "", toRuntimeError(err)
	}
	out, err := nk.MatchSignal(ctx, match.GetMatchId(), SignalSnapshot)
	if err != nil {
		logger.Error("SessionSnapshot: Failed to signal match %s: %v", match.GetMatchId(), err)
		return "", toRuntimeError(err)
	}
	if out == "" {
		return "", toRuntimeError(app.ErrSessionNotFound)
	}
	return out, nil
}

func resolveSession(ctx context.Context, nk runtime.NakamaModule, payload string) (*api.Match, MatchLabel, error) {
	var req SessionRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, MatchLabel{}, fmt.Errorf("%w: bad payload", app.ErrSessionNotFound)
	}
	code := app.NormalizeCode(req.GameCode)
	if code == "" {
		return nil, MatchLabel{}, app.ErrSessionNotFound
	}

	match, err := findByCode(ctx, nk, code)
	if err != nil {
		return nil, MatchLabel{}, err
	}
	if match == nil {
		return nil, MatchLabel{}, app.ErrSessionNotFound
	}
	label, err := ParseLabel(match.GetLabel().GetValue())
	if err != nil {
		return nil, MatchLabel{}, err
	}
	return match, label, nil
}

// findByCode returns the live match labelled with code, or nil.
func findByCode(ctx context.Context, nk runtime.NakamaModule, code string) (*api.Match, error) {
	query := fmt.Sprintf("+label.%s:%s +label.%s:%s", MatchLabelKeyGame, LabelGame, MatchLabelKeyCode, code)
	matches, err := nk.MatchList(ctx, 1, true, "", nil, nil, query)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// errClosed explains why a labelled session refuses new participants.
func errClosed(label MatchLabel) error {
	if label.Phase != domain.PhaseLobby {
		return domain.ErrAlreadyStarted
	}
	return domain.ErrSessionFull
}
