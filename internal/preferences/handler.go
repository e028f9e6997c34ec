package preferences

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/server/respond"
)

const (
	themeCookie = "theme"
	cookieTTL   = 365 * 24 * 60 * 60
)

// Handler mirrors the theme preference in a cookie for the browser app.
type Handler struct {
	Secure bool
}

// NewHandler constructs a Handler. secure marks the cookie HTTPS-only.
func NewHandler(secure bool) *Handler {
	return &Handler{Secure: secure}
}

// RegisterRoutes attaches preference routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/preferences/theme", h.getTheme)
	rg.PUT("/preferences/theme", h.putTheme)
}

func (h *Handler) getTheme(c *gin.Context) {
	raw, _ := c.Cookie(themeCookie)
	theme, err := ParseTheme(raw)
	if err != nil {
		theme = ThemeLight
	}
	respond.OK(c, gin.H{"theme": theme})
}

func (h *Handler) putTheme(c *gin.Context) {
	var req struct {
		Theme  string `json:"theme"`
		Toggle bool   `json:"toggle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	var theme Theme
	if req.Toggle {
		raw, _ := c.Cookie(themeCookie)
		current, _ := ParseTheme(raw)
		theme = current.Toggle()
	} else {
		t, err := ParseTheme(req.Theme)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", ErrInvalidTheme.Error(), nil)
			return
		}
		theme = t
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(themeCookie, string(theme), cookieTTL, "/", "", h.Secure, false)
	respond.OK(c, gin.H{"theme": theme})
}
