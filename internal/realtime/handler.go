package realtime

import (
	"net/http"
	"time"

	"github.com/Jiffye-m/chatapp/internal/middleware"
	"github.com/Jiffye-m/chatapp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServeWS upgrades /ws requests. The handshake itself validates the same
// session cookie the REST middleware checks; a caller-supplied user id is
// never trusted.
func ServeWS(h *Hub, jwtSecret, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin header
			return origin == "" || origin == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(middleware.CookieName)
		if err != nil || tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized - no token provided")
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized - invalid token")
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := &Conn{
			id:     uuid.NewString(),
			userID: claims.UserID,
			ws:     ws,
			send:   make(chan Event, sendQueueSize),
		}

		h.register(conn)
		go conn.writePump(h.logger)
		go conn.readPump(h)
	}
}
