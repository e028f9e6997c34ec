package exports

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
	"expertcof/internal/shared/server/middleware"
	"expertcof/internal/shared/server/respond"
)

// ResultSource loads one of the user's analyses by record id.
type ResultSource interface {
	Result(ctx context.Context, userID, id string) (analysis.Result, error)
}

// Handler serves export downloads and the export archive.
type Handler struct {
	Svc     *Service
	Results ResultSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, results ResultSource) *Handler {
	return &Handler{Svc: svc, Results: results}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exports/:id/xlsx", h.download(FormatSpreadsheet))
	rg.GET("/exports/:id/pdf", h.download(FormatDocument))
	rg.POST("/exports/:id/archive", h.archive)
	rg.GET("/exports/archived", h.archived)
}

func (h *Handler) download(format Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("exportFormat", string(format))
		result, ok := h.load(c)
		if !ok {
			return
		}

		art, err := h.Svc.Render(result, format)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "export_failed", "Erro ao gerar o arquivo.", nil)
			return
		}

		respond.Attachment(c, art.FileName, art.ContentType, art.Body)
	}
}

func (h *Handler) archive(c *gin.Context) {
	format, err := ParseFormat(c.DefaultQuery("format", string(FormatDocument)))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be xlsx or pdf", nil)
		return
	}
	c.Set("exportFormat", string(format))

	result, ok := h.load(c)
	if !ok {
		return
	}

	archived, err := h.Svc.Archive(c.Request.Context(), middleware.UserIDFromContext(c), result, format)
	if err != nil {
		switch {
		case errors.Is(err, ErrArchiveDisabled):
			respond.Error(c, http.StatusServiceUnavailable, "archive_disabled", "export archive is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "export_failed", "Erro ao gerar o arquivo.", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, archived)
}

func (h *Handler) archived(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "key is required", nil)
		return
	}

	rc, meta, err := h.Svc.OpenArchived(c.Request.Context(), middleware.UserIDFromContext(c), key)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "archived export not found", nil)
		case errors.Is(err, ErrArchiveDisabled):
			respond.Error(c, http.StatusServiceUnavailable, "archive_disabled", "export archive is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load archived export", nil)
		}
		return
	}
	defer rc.Close()

	respond.AttachmentStream(c, meta.FileName, meta.ContentType, rc)
}

func (h *Handler) load(c *gin.Context) (analysis.Result, bool) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return analysis.Result{}, false
	}
	c.Set("analysisId", id)

	result, err := h.Results.Result(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, analyses.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Análise não encontrada.", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "upstream_error", "Erro ao carregar análise.", nil)
		}
		return analysis.Result{}, false
	}
	return result, true
}
