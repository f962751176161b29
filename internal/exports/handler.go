package exports

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:id/download", h.create)
	rg.GET("/exports/*key", h.download)
}

func (h *Handler) create(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	exp, err := h.Svc.ExportOwned(c.Request.Context(), documents.OwnerFromContext(c), id)
	if err != nil {
		documents.WriteError(c, err)
		return
	}
	respond.OK(c, exp)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "sign_in_required", "sign in to continue", nil)
		return
	}
	key := strings.TrimLeft(c.Param("key"), "/")
	if key == "" || !object.OwnedBy(key, userID) {
		respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
		return
	}

	rc, err := h.Svc.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read export", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+object.FileName(key)+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}
