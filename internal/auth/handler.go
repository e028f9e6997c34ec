package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/respond"
)

// Handler serves the sign-in, sign-up and recovery forms.
type Handler struct {
	Client *Client
	// AppURL is the browser app; recovery links land on its
	// /update-password page.
	AppURL string
}

// NewHandler constructs a Handler.
func NewHandler(client *Client, appURL string) *Handler {
	return &Handler{Client: client, AppURL: appURL}
}

// RegisterRoutes attaches auth routes to the router group. They are public.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signin", h.signIn)
	rg.POST("/auth/signup", h.signUp)
	rg.POST("/auth/forgot-password", h.forgotPassword)
	rg.POST("/auth/refresh", h.refresh)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	tok, err := h.Client.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "Erro ao fazer login")
		return
	}
	respond.OK(c, sessionResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
		UserID:       UserID(tok),
		Email:        Email(tok),
	})
}

func (h *Handler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	tok, err := h.Client.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário não autenticado.", nil)
			return
		}
		h.fail(c, err, "Sessão expirada.")
		return
	}
	respond.OK(c, sessionResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
		UserID:       UserID(tok),
		Email:        Email(tok),
	})
}

func (h *Handler) signUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "role must be franchisee, consultant or lawyer", nil)
		return
	}
	user, err := h.Client.SignUp(c.Request.Context(), SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		h.fail(c, err, "Erro ao criar conta")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"userId": user.ID, "email": user.Email})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	redirect := ""
	if h.AppURL != "" {
		redirect = h.AppURL + "/update-password"
	}
	if err := h.Client.ResetPassword(c.Request.Context(), req.Email, redirect); err != nil {
		h.fail(c, err, "Erro ao enviar email de recuperação.")
		return
	}
	respond.OK(c, gin.H{
		"message": "Se houver uma conta com este email, você receberá um link para redefinir sua senha em instantes.",
	})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrMissingCredentials):
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		respond.Error(c, http.StatusUnauthorized, "auth_failed", UserMessage(err, fallback), nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", UserMessage(err, fallback), nil)
	}
}
