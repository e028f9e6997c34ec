package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	who := IdentityFromContext(c)
	if who.ID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário não autenticado.", nil)
		return
	}
	p, err := h.Svc.Profile(c.Request.Context(), who)
	if err != nil {
		// The token alone still identifies the caller.
		if errors.Is(err, ErrNotFound) {
			respond.JSON(c, http.StatusOK, gin.H{
				"userId":    who.ID,
				"email":     who.Email,
				"name":      who.Name,
				"plan":      PlanFree,
				"planLabel": PlanFree.Label(),
			})
			return
		}
		respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"userId":    p.ID,
		"email":     p.Email,
		"name":      p.Name,
		"plan":      p.Plan,
		"planLabel": p.Plan.Label(),
	})
}

// IdentityFromContext reads the identity placed by the auth middleware.
func IdentityFromContext(c *gin.Context) Identity {
	return Identity{
		ID:    middleware.UserIDFromContext(c),
		Email: middleware.UserEmailFromContext(c),
		Name:  middleware.UserNameFromContext(c),
	}
}
