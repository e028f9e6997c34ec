package compare

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
)

// Handler serves the side-by-side comparison of the caller's analyses.
type Handler struct {
	Assembler *Assembler
}

// NewHandler constructs a Handler backed by a.
func NewHandler(a *Assembler) *Handler {
	return &Handler{Assembler: a}
}

// RegisterRoutes attaches GET /compare to the router group. The ids query
// parameter is a comma-separated list read with ParseSelection.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/compare", h.compare)
}

func (h *Handler) compare(c *gin.Context) {
	sel := ParseSelection(c.Query("ids"))
	cmp, err := h.Assembler.AssembleFor(c.Request.Context(), middleware.UserIDFromContext(c), sel.IDs())
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar comparação.", nil)
		return
	}
	respond.OK(c, cmp)
}
