package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Hassanskary/unistay/internal/hub"
)

// WSHandler upgrades GET /v1/ws?token=... to a websocket and keeps
// the connection registered in the hub until the client goes away.
// Browsers cannot set an Authorization header on websocket dials, so
// the access token travels as a query parameter instead.
type WSHandler struct {
	Hub      *hub.Hub
	Secret   string
	Log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, jwtSecret string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		Hub:    h,
		Secret: jwtSecret,
		Log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The token already authenticates the dial.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles the upgrade.  The read loop only drains control
// frames; all application traffic flows server to client.
func (h *WSHandler) Serve(c echo.Context) error {
	userID, err := h.authenticate(c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.Hub.Register(userID, conn)
	h.Log.Debug().Uint64("user_id", userID).Msg("websocket session opened")

	go func() {
		defer func() {
			h.Hub.Unregister(userID, conn)
			h.Log.Debug().Uint64("user_id", userID).Msg("websocket session closed")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// authenticate parses the HS256 access token and returns its subject.
func (h *WSHandler) authenticate(raw string) (uint64, error) {
	if raw == "" {
		return 0, echo.ErrUnauthorized
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(h.Secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, echo.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, echo.ErrUnauthorized
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, echo.ErrUnauthorized
	}
	return uint64(sub), nil
}
