package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"carsource_backend/internal/auth"
	"carsource_backend/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set headers on websocket requests, so origin
	// filtering happens at the proxy. Same stance as the HTTP CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS authenticates the connection, upgrades it and attaches the
// client to the hub. The token comes from the Authorization header or,
// for browser clients, the "token" query parameter.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := newClient(hub, conn, claims.UserID)
		hub.register <- client

		// The request context dies when this handler returns; the
		// connection outlives it.
		ctx := logger.WithUserID(context.Background(), claims.UserID)

		// Connecting counts as a heartbeat.
		if err := hub.presence.Heartbeat(ctx, claims.UserID); err != nil {
			logger.Warn("presence heartbeat on connect failed", "user_id", claims.UserID, "error", err)
		}

		go client.writePump()
		go client.readPump(ctx)
	}
}
