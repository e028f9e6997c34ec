package postal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/respond"
)

// Handler exposes address lookup for the profile form.
type Handler struct {
	Client *Client
}

// NewHandler constructs a Handler.
func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

// RegisterRoutes attaches postal routes to the router group. limit guards
// the route against bursts from one user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.GET("/postal/:cep", append(limit, h.lookup)...)
}

func (h *Handler) lookup(c *gin.Context) {
	addr, err := h.Client.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPostalCode):
			respond.Error(c, http.StatusBadRequest, "validation_error", UserMessage(err), nil)
		case errors.Is(err, ErrPostalCodeNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", UserMessage(err), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", UserMessage(err), nil)
		}
		return
	}
	respond.OK(c, addr)
}
