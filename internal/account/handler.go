package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/account/sync", h.sync)
}

func (h *Handler) sync(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if middleware.IsGuestFromContext(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}

	deviceID := strings.TrimSpace(middleware.DeviceIDFromContext(c))
	if deviceID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "missing "+middleware.DeviceHeader+" header", []map[string]string{
			{"field": middleware.DeviceHeader, "issue": "required"},
		})
		return
	}

	report, err := h.Svc.SyncDevice(c.Request.Context(), middleware.SessionIDFromContext(c), deviceID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sync drafts", nil)
		return
	}
	c.Set(middleware.SyncResultKey, report.Summary())
	respond.JSON(c, http.StatusOK, report)
}
