package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"expertcof/internal/analyses"
	"expertcof/internal/compare"
	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
)

// Handler serves history and recent lists.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.GET("/history/:id", h.detail)
	rg.GET("/analyses/recent", h.recent)
}

func (h *Handler) list(c *gin.Context) {
	sel := compare.ParseSelection(c.Query("selected"))
	if id := c.Query("toggle"); id != "" {
		sel.Toggle(id)
	}
	out, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("q"), sel)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar histórico.", nil)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(RecentLimit)))
	out, err := h.Svc.Recent(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar análises recentes.", nil)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) detail(c *gin.Context) {
	id := c.Param("id")
	c.Set("analysisId", id)
	res, err := h.Svc.Detail(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Análise não encontrada.", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar análise.", nil)
		return
	}
	respond.OK(c, gin.H{
		"result":    res,
		"band":      res.Band(),
		"bandLabel": res.Band().Label(),
		"scoreText": strconv.Itoa(res.Score) + "/100",
	})
}
