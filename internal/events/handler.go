package events

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
	"expertcof/internal/shared/telemetry"
)

// Handler upgrades history subscribers to websocket connections.
type Handler struct {
	Hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler constructs a Handler. allowed is matched the same way as the
// CORS middleware, including "*"; an empty list accepts any origin.
func NewHandler(hub *Hub, allowed []string) *Handler {
	origins := middleware.ParseOrigins(allowed)
	return &Handler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origins.Empty() {
					return true
				}
				return origins.Allows(origin)
			},
		},
	}
}

// RegisterRoutes attaches the websocket route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history/ws", h.connect)
}

func (h *Handler) connect(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário não autenticado.", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		telemetry.Warn("ws.upgrade_failed", map[string]any{"user_id": userID, "error": err})
		return
	}
	h.Hub.Attach(conn, userID)
}
