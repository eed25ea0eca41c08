package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sushigo/internal/app"
	"sushigo/internal/domain"
	"sushigo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"nhooyr.io/websocket"
)

// Close codes sent when a websocket cannot be bound to a seat.
const (
	CloseInvalidToken websocket.StatusCode = 4001
	CloseNotPlayer    websocket.StatusCode = 4003
	CloseNotFound     websocket.StatusCode = 4004
)

type createGameRequest struct {
	Name string `json:"name"`
}

type joinGameRequest struct {
	GameCode string `json:"game_code"`
	Name     string `json:"name"`
}

// GameResponse is returned by create-game and join-game.
type GameResponse struct {
	Success  bool   `json:"success"`
	GameCode string `json:"game_code"`
	PlayerID string `json:"player_id"`
	IsHost   bool   `json:"is_host"`
	Token    string `json:"token,omitempty"`
}

// Server exposes the session manager over HTTP and websockets.
type Server struct {
	manager *app.Manager
	hub     *Hub
	logger  runtime.Logger
	echo    *echo.Echo
}

func NewServer(manager *app.Manager, hub *Hub, logger runtime.Logger) *Server {
	s := &Server{manager: manager, hub: hub, logger: logger, echo: echo.New()}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("HTTP %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.GET("/health", s.health)
	e.POST("/api/create-game", s.createGame)
	e.POST("/api/join-game", s.joinGame)
	e.GET("/api/game/:code", s.gameInfo)
	e.GET("/ws/:code/:participant", s.serveWS)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// httpStatus maps an error class to its HTTP status.
func httpStatus(err error) int {
	switch app.ClassOf(err) {
	case app.ClassNotFound:
		return http.StatusNotFound
	case app.ClassValidation:
		return http.StatusBadRequest
	case app.ClassCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("HTTP %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return c.JSON(status, map[string]string{"detail": app.UserMessage(err)})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "sessions": s.manager.Len()})
}

func (s *Server) createGame(c echo.Context) error {
	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Invalid request"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Host"
	}

	seat, err := s.manager.CreateSession(name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, GameResponse{
		Success:  true,
		GameCode: seat.Code,
		PlayerID: seat.ParticipantID,
		IsHost:   true,
		Token:    seat.Token,
	})
}

func (s *Server) joinGame(c echo.Context) error {
	var req joinGameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Invalid request"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Player"
	}

	seat, err := s.manager.JoinSession(req.GameCode, name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, GameResponse{
		Success:  true,
		GameCode: seat.Code,
		PlayerID: seat.ParticipantID,
		Token:    seat.Token,
	})
}

func (s *Server) gameInfo(c echo.Context) error {
	snap, err := s.manager.Snapshot(c.Param("code"), "")
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// serveWS binds a websocket to a seat, then relays client actions to the
// manager until the connection drops.
func (s *Server) serveWS(c echo.Context) error {
	code := app.NormalizeCode(c.Param("code"))
	participantID := c.Param("participant")

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("ServeWS: accept failed for %s/%s: %v", code, participantID, err)
		return nil
	}

	if _, err := s.manager.Snapshot(code, participantID); err != nil {
		if errors.Is(err, app.ErrSessionNotFound) {
			_ = conn.Close(CloseNotFound, "game not found")
		} else {
			_ = conn.Close(CloseNotPlayer, "not a player in this game")
		}
		return nil
	}
	if err := s.manager.VerifySeat(code, participantID, c.QueryParam("token")); err != nil {
		s.logger.Warn("ServeWS: %s/%s: %v", code, participantID, err)
		_ = conn.Close(CloseInvalidToken, "invalid seat token")
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	cl := s.hub.register(code, participantID, conn)
	go cl.writePump(ctx)
	s.logger.Info("ServeWS: %s connected to session %s", participantID, code)

	if err := s.manager.Connect(code, participantID); err != nil {
		s.logger.Warn("ServeWS: connect %s/%s: %v", code, participantID, err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var action ports.Action
		if err := json.Unmarshal(data, &action); err != nil {
			s.logger.Debug("ServeWS: %s sent malformed message: %v", participantID, err)
			continue
		}
		s.handleAction(ctx, code, participantID, action)
	}

	if s.hub.unregister(cl) {
		if err := s.manager.Disconnect(code, participantID); err != nil && !errors.Is(err, app.ErrSessionNotFound) {
			s.logger.Warn("ServeWS: disconnect %s/%s: %v", code, participantID, err)
		}
	}
	s.logger.Info("ServeWS: %s disconnected from session %s", participantID, code)
	return nil
}

func (s *Server) handleAction(ctx context.Context, code, participantID string, action ports.Action) {
	var err error
	switch action.Action {
	case ports.ActionStartGame:
		err = s.manager.StartSession(code, participantID)
	case ports.ActionSelectCard:
		err = s.manager.SubmitSelection(code, participantID, action.Selection())
	case ports.ActionNextRound:
		err = s.manager.AdvanceRound(code, participantID)
	case ports.ActionGetState:
		var snap app.Snapshot
		snap, err = s.manager.Snapshot(code, participantID)
		if err == nil {
			err = s.hub.SendTo(ctx, code, participantID, ports.Message{Type: string(app.EventGameState), Data: snap})
		}
	default:
		s.logger.Debug("ServeWS: %s sent unknown action %q", participantID, action.Action)
		return
	}
	if err != nil && !errors.Is(err, domain.ErrInvalidSelection) {
		s.logger.Warn("ServeWS: %s %s rejected: %v", participantID, action.Action, err)
	}
}
