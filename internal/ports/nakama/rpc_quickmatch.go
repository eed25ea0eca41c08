package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"sushigo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any lobby of our game with a free seat.
	query := fmt.Sprintf("+label.%s:%s +label.%s:T +label.%s:%s",
		MatchLabelKeyGame, LabelGame, MatchLabelKeyOpen, MatchLabelKeyPhase, domain.PhaseLobby)

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := domain.MaxParticipants - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("QuickMatch: MatchList error: %v", err)
		return "", toRuntimeError(err)
	}

	for _, m := range matches {
		label, err := ParseLabel(m.GetLabel().GetValue())
		if err != nil {
			logger.Warn("QuickMatch: skipping match %s: %v", m.GetMatchId(), err)
			continue
		}
		return marshalResponse(SessionResponse{MatchID: m.GetMatchId(), GameCode: label.Code})
	}

	// No lobby waiting; create one. Seating happens in MatchJoin.
	return rpcCreateSession(ctx, logger, db, nk, payload)
}
