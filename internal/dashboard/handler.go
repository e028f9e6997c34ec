package dashboard

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"expertcof/internal/analyzer"
	"expertcof/internal/billing"
	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
)

const checkoutConfirmed = "Pagamento confirmado! Plano Premium ativado."

// Handler exposes the dashboard upload widget.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches dashboard routes. limit guards the upload route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	rg.GET("/dashboard", h.state)
	rg.DELETE("/dashboard/current", h.clear)
	rg.POST("/dashboard/upload", append(limit, h.upload)...)
	rg.POST("/dashboard/verify-checkout", h.verifyCheckout)
}

func (h *Handler) state(c *gin.Context) {
	respond.OK(c, h.Svc.State(middleware.UserIDFromContext(c)))
}

func (h *Handler) clear(c *gin.Context) {
	h.Svc.Clear(middleware.UserIDFromContext(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, analyzer.MaxFileSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", analyzer.UserMessage(analyzer.ErrTooLarge), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", analyzer.UserMessage(analyzer.ErrNoFile), nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", analyzer.UserMessage(analyzer.ErrNoFile), nil)
		return
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, analyzer.MaxFileSize+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", analyzer.UserMessage(analyzer.ErrNoFile), nil)
		return
	}

	token := &oauth2.Token{AccessToken: middleware.AccessTokenFromContext(c), TokenType: "Bearer"}
	res, err := h.Svc.Upload(c.Request.Context(), userID, token, fh.Filename, body)
	if err != nil {
		msg := analyzer.UserMessage(err)
		switch {
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "upload_in_progress", "Já existe um envio em andamento.", nil)
		case errors.Is(err, analyzer.ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", msg, nil)
		case errors.Is(err, analyzer.ErrNotPDF), errors.Is(err, analyzer.ErrNoFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		case errors.Is(err, analyzer.ErrUnauthenticated):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", msg, nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", msg, nil)
		}
		return
	}
	respond.OK(c, res)
}

func (h *Handler) verifyCheckout(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	v, err := h.Svc.VerifyCheckout(c.Request.Context(), middleware.UserIDFromContext(c), req.SessionID)
	if err != nil {
		if errors.Is(err, ErrMissingSession) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId is required", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "upstream_error", billing.UserMessage(billing.OpVerify, err), nil)
		return
	}
	body := gin.H{"status": v.Status, "plan": v.Plan, "confirmed": v.Confirmed()}
	if v.Confirmed() {
		body["message"] = checkoutConfirmed
	}
	respond.OK(c, body)
}
