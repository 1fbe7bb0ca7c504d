package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/habalhub/habal-hub/internal/api/middleware"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/pkg/logger"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

// HandleWebSocket handles GET /v1/ws. The session token rides in the
// token query parameter because browsers cannot set headers on
// websocket upgrades.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	u := middleware.CurrentUser(c)

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in development
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, u.ID.String(), string(u.Role), h.Logger)
	h.Hub.Register(client)

	// Each connection mirrors its owner's auth state. A sign-out on any
	// device drops the store's user and closes this socket.
	store := session.NewStore()
	store.Apply(session.Event{Type: session.EventSignedIn, User: u})

	events, cancel := h.Sessions.Subscribe()
	go func() {
		for ev := range events {
			if ev.User == nil || ev.User.ID != u.ID {
				continue
			}
			store.Apply(ev)
			if store.Snapshot().User == nil {
				conn.Close()
				return
			}
		}
	}()

	go client.WritePump()
	go func() {
		client.ReadPump()
		cancel()
	}()
}
