package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/auth"
	"expertcof/internal/billing"
	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
	"expertcof/internal/shared/telemetry"
	"expertcof/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile and subscription routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.update)
	rg.PUT("/profile/password", h.changePassword)
	rg.POST("/subscription/checkout", h.checkout)
	rg.POST("/subscription/cancel", h.cancel)
	rg.POST("/subscription/portal", h.portal)
}

type passwordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) get(c *gin.Context) {
	who := users.IdentityFromContext(c)
	if who.ID == "" {
		unauthorized(c)
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), who)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Perfil não encontrado.", nil)
			return
		}
		telemetry.Error("profile.load_failed", map[string]any{"user_id": who.ID, "error": err})
		respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar perfil.", nil)
		return
	}
	respond.OK(c, gin.H{"profile": p, "planLabel": p.Plan.Label()})
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		unauthorized(c)
		return
	}
	var req users.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Perfil não encontrado.", nil)
			return
		}
		telemetry.Error("profile.update_failed", map[string]any{"user_id": userID, "error": err})
		respond.Error(c, http.StatusBadGateway, "upstream_error", updateFailed, nil)
		return
	}
	respond.OK(c, gin.H{"profile": p, "message": UpdatedMessage})
}

func (h *Handler) changePassword(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		unauthorized(c)
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), middleware.AccessTokenFromContext(c), req.Password, req.ConfirmPassword)
	if err != nil {
		var apiErr *auth.APIError
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch), errors.Is(err, auth.ErrPasswordTooShort):
			respond.Error(c, http.StatusBadRequest, "validation_error", PasswordError(err), nil)
		case errors.Is(err, auth.ErrNoSession):
			unauthorized(c)
		case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
			respond.Error(c, http.StatusBadRequest, "password_rejected", PasswordError(err), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", PasswordError(err), nil)
		}
		return
	}
	respond.OK(c, gin.H{"message": PasswordMessage})
}

func (h *Handler) checkout(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		unauthorized(c)
		return
	}
	url, err := h.Svc.Checkout(c.Request.Context(), userID)
	if err != nil {
		subscriptionFailed(c, billing.OpCheckout, userID, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) cancel(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		unauthorized(c)
		return
	}
	plan, err := h.Svc.Cancel(c.Request.Context(), userID)
	if err != nil {
		subscriptionFailed(c, billing.OpCancel, userID, err)
		return
	}
	respond.OK(c, gin.H{"plan": plan, "planLabel": plan.Label(), "message": CancelledMessage})
}

func (h *Handler) portal(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		unauthorized(c)
		return
	}
	url, err := h.Svc.Portal(c.Request.Context(), userID)
	if err != nil {
		subscriptionFailed(c, billing.OpPortal, userID, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func subscriptionFailed(c *gin.Context, op billing.Operation, userID string, err error) {
	telemetry.Warn("profile.subscription_failed", map[string]any{
		"user_id":   userID,
		"operation": string(op),
		"error":     err,
	})
	status := http.StatusBadGateway
	if errors.Is(err, ErrMissingPrice) {
		status = http.StatusServiceUnavailable
	}
	respond.Error(c, status, "upstream_error", SubscriptionError(op, err), nil)
}

func unauthorized(c *gin.Context) {
	respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário não autenticado.", nil)
}
