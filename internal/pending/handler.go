package pending

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Devices kv.Store
	Resumer *Resumer
}

func NewHandler(devices kv.Store, resumer *Resumer) *Handler {
	return &Handler{Devices: devices, Resumer: resumer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/pending-action", middleware.RequireDevice(), h.set)
	rg.POST("/pending-action/resume", middleware.RequireDevice(), middleware.RequireUser(), h.resume)
}

type setRequest struct {
	Action Kind            `json:"action"`
	Resume json.RawMessage `json:"resumeData"`
}

func (h *Handler) set(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if !req.Action.Valid() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "action must be download or share", nil)
		return
	}
	if len(req.Resume) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeData is required", nil)
		return
	}
	doc, err := resumes.DecodeDocument(req.Resume)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume", nil)
		return
	}
	if err := doc.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume", err)
		return
	}
	device := kv.Device(h.Devices, middleware.DeviceIDFromContext(c))
	if err := NewStore(device).Set(c.Request.Context(), req.Action, doc); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store pending action", nil)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) resume(c *gin.Context) {
	device := kv.Device(h.Devices, middleware.DeviceIDFromContext(c))
	res, err := h.Resumer.Resume(c.Request.Context(), device, documents.OwnerFromContext(c))
	if err != nil {
		documents.WriteError(c, err)
		return
	}
	if res == nil {
		respond.NoContent(c)
		return
	}
	c.Set(middleware.DocumentIDKey, res.Resume.ID)
	respond.OK(c, res)
}
