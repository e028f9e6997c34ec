package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
	"expertcof/internal/shared/telemetry"
)

// Handler exposes the dashboard stats endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.getStats)
}

func (h *Handler) getStats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	summary, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		default:
			telemetry.Error("usage.stats_failed", map[string]any{"user_id": userID, "error": err})
			respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar estatísticas.", nil)
		}
		return
	}
	respond.OK(c, summary)
}
