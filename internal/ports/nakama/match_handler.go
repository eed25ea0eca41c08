package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"sushigo/internal/app"
	"sushigo/internal/config"
	"sushigo/internal/domain"
	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// SignalSnapshot asks a match for its public snapshot through MatchSignal.
const SignalSnapshot = "snapshot"

// deferredEvent is an app event waiting for its tick.
type deferredEvent struct {
	due int64
	ev  app.Event
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Session   *domain.Session             `json:"-"` // Session state machine for this match
	App       *app.Service                `json:"-"` // Game use-cases
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Names     map[string]string           `json:"-"` // Display names requested in join metadata
	Tick      int64                       `json:"tick"`
	TickRate  int                         `json:"tick_rate"`

	pending   []deferredEvent
	lastDue   int64
	lastLabel string
}

// PendingEvents reports how many events are waiting on a presentation pause.
func (ms *MatchState) PendingEvents() int {
	return len(ms.pending)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

type matchHandler struct {
	now func() time.Time
}

func newMatchHandler() *matchHandler {
	return &matchHandler{now: time.Now}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg.ApplyEnv(env, EnvPrefix)
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 1
	}

	svc := app.NewService(nil, cfg, logger)
	code, _ := params[ParamCode].(string)
	code = app.NormalizeCode(code)
	if code == "" {
		code = svc.NewCode()
	}

	state := &MatchState{
		Session:   svc.NewSession(code),
		App:       svc,
		Presences: make(map[string]runtime.Presence),
		Names:     make(map[string]string),
		TickRate:  cfg.TickRate,
	}
	if host, _ := params[ParamHost].(string); host != "" {
		if err := state.Session.ReserveHost(host); err != nil {
			logger.Error("MatchInit: Failed to reserve host %s: %v", host, err)
			return nil, 0, ""
		}
		if name, _ := params[ParamHostName].(string); name != "" {
			state.Names[host] = name
		}
	}

	label, err := buildLabel(state.Session)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.lastLabel = label

	logger.Debug("MatchInit: session %s created (tick rate %d).", code, cfg.TickRate)
	return state, cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated participants may always come back.
	if _, seated := matchState.Session.Participant(presence.GetUserId()); seated {
		return state, true, ""
	}
	if matchState.Session.Phase != domain.PhaseLobby {
		return state, false, app.UserMessage(domain.ErrAlreadyStarted)
	}
	// The reserved host seat is held open for its owner.
	if presence.GetUserId() != matchState.Session.HostID && !matchState.Session.IsOpen() {
		return state, false, app.UserMessage(domain.ErrSessionFull)
	}

	if name := metadata["name"]; name != "" {
		matchState.Names[presence.GetUserId()] = name
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.Tick = tick

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		var (
			events []app.Event
			err    error
		)
		if _, seated := matchState.Session.Participant(userID); seated {
			events, err = matchState.App.Connect(matchState.Session, userID)
		} else {
			name := matchState.Names[userID]
			if name == "" {
				name = p.GetUsername()
			}
			delete(matchState.Names, userID)
			events, err = matchState.App.Join(matchState.Session, userID, name)
		}
		if err != nil {
			logger.Warn("MatchJoin: User %s could not take a seat: %v", userID, err)
			mh.schedule(matchState, []app.Event{app.ErrorEvent(userID, err)})
			continue
		}
		mh.schedule(matchState, events)
	}

	mh.flush(ctx, matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	matchState.Tick = tick

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		events, err := matchState.App.Disconnect(matchState.Session, userID, mh.now())
		if err != nil {
			logger.Warn("MatchLeave: User %s: %v", userID, err)
			continue
		}
		logger.Debug("MatchLeave: User %s left session %s.", userID, matchState.Session.Code)
		mh.schedule(matchState, events)
	}

	if matchState.Session.Len() == 0 {
		logger.Info("MatchLeave: Terminating empty session %s.", matchState.Session.Code)
		return nil
	}

	mh.flush(ctx, matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handle(matchState, logger, "StartGame", msg.GetUserId(), func() ([]app.Event, error) {
				return matchState.App.Start(matchState.Session, msg.GetUserId())
			})
		case OpSelectCard:
			var action ports.Action
			if err := json.Unmarshal(msg.GetData(), &action); err != nil {
				logger.Warn("SelectCard: Invalid payload from %s: %v", msg.GetUserId(), err)
				mh.schedule(matchState, []app.Event{app.ErrorEvent(msg.GetUserId(), domain.ErrInvalidSelection)})
				continue
			}
			mh.handle(matchState, logger, "SelectCard", msg.GetUserId(), func() ([]app.Event, error) {
				return matchState.App.Select(matchState.Session, msg.GetUserId(), action.Selection())
			})
		case OpNextRound:
			mh.handle(matchState, logger, "NextRound", msg.GetUserId(), func() ([]app.Event, error) {
				_, events, err := matchState.App.Advance(matchState.Session, msg.GetUserId())
				return events, err
			})
		case OpRequestState:
			mh.handle(matchState, logger, "RequestState", msg.GetUserId(), func() ([]app.Event, error) {
				if _, ok := matchState.Session.Participant(msg.GetUserId()); !ok {
					return nil, domain.ErrUnknownParticipant
				}
				snap := matchState.App.Snapshot(matchState.Session, msg.GetUserId())
				return []app.Event{{Kind: app.EventGameState, Payload: snap, Recipients: []string{msg.GetUserId()}}}, nil
			})
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if now := mh.now(); matchState.App.AutoPickDue(matchState.Session, now) {
		events, err := matchState.App.AutoPick(matchState.Session, now)
		if err != nil {
			logger.Error("MatchLoop: auto-pick failed in session %s: %v", matchState.Session.Code, err)
		}
		mh.schedule(matchState, events)
	}

	mh.flush(ctx, matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	if len(matchState.Presences) == 0 && matchState.Session.Phase == domain.PhaseGameEnd && len(matchState.pending) == 0 {
		logger.Info("MatchLoop: Session %s finished and abandoned, terminating.", matchState.Session.Code)
		return nil
	}
	return matchState
}

// handle runs one client action. Rejections go back to the sender only.
func (mh *matchHandler) handle(state *MatchState, logger runtime.Logger, name, senderID string, fn func() ([]app.Event, error)) {
	events, err := fn()
	mh.schedule(state, events)
	if err == nil {
		return
	}
	if app.ClassOf(err) == app.ClassInternal {
		logger.Error("%s: User %s in session %s: %v", name, senderID, state.Session.Code, err)
	} else {
		logger.Warn("%s: User %s rejected in session %s: %v", name, senderID, state.Session.Code, err)
	}
	mh.schedule(state, []app.Event{app.ErrorEvent(senderID, err)})
}

// schedule queues events behind anything already waiting, converting each
// event's delay into ticks.
func (mh *matchHandler) schedule(state *MatchState, events []app.Event) {
	for _, ev := range events {
		due := state.Tick
		if state.lastDue > due {
			due = state.lastDue
		}
		due += delayTicks(ev.Delay, state.TickRate)
		state.pending = append(state.pending, deferredEvent{due: due, ev: ev})
		state.lastDue = due
	}
}

func delayTicks(d time.Duration, tickRate int) int64 {
	if d <= 0 {
		return 0
	}
	perTick := time.Second / time.Duration(tickRate)
	return int64((d + perTick - 1) / perTick)
}

// flush dispatches every queued event whose tick has come, in order.
func (mh *matchHandler) flush(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	delivery := &matchDelivery{presences: state.Presences, dispatcher: dispatcher}

	sent := 0
	for _, d := range state.pending {
		if d.due > state.Tick {
			break
		}
		if err := app.Dispatch(ctx, delivery, state.Session.Code, d.ev); err != nil {
			logger.Error("Failed to dispatch %s: %v", d.ev.Kind, err)
		}
		sent++
	}
	state.pending = state.pending[sent:]
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state.Session)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.lastLabel {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.lastLabel = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		matchState.Tick = tick + int64(graceSeconds*matchState.TickRate)
		mh.flush(ctx, matchState, dispatcher, logger)
	}
	return state
}

// MatchSignal answers SignalSnapshot with the public snapshot as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != SignalSnapshot {
		return state, ""
	}
	out, err := json.Marshal(matchState.App.Snapshot(matchState.Session, ""))
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(out)
}
