package sharing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler exposes share enabling to owners and the public viewer.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches owner routes to the authenticated API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/share", h.enable)
}

// RegisterPublicRoutes attaches the unauthenticated viewer route.
func (h *Handler) RegisterPublicRoutes(rg gin.IRoutes) {
	rg.GET("/view/:id", h.view)
}

func (h *Handler) enable(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	share, err := h.Svc.EnableSharing(c.Request.Context(), documents.OwnerFromContext(c), id)
	if err != nil {
		documents.WriteError(c, err)
		return
	}
	respond.OK(c, share)
}

type viewResponse struct {
	Resume    resumes.Document `json:"resume"`
	ExpiresAt int64            `json:"expiresAt"`
}

func (h *Handler) view(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	doc, err := h.Svc.View(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpired):
			respond.Error(c, http.StatusGone, "expired", "this share link has expired", nil)
		case errors.Is(err, ErrNotShared), errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		}
		return
	}
	respond.OK(c, viewResponse{Resume: doc, ExpiresAt: doc.ShareConfig.ExpiresAt})
}
