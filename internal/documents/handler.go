package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.save)
	rg.PATCH("/resumes/:id", h.mutate)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
}

// OwnerFromContext builds the Owner from identity set by the auth middleware.
func OwnerFromContext(c *gin.Context) Owner {
	return Owner{
		DeviceID: middleware.DeviceIDFromContext(c),
		UserID:   middleware.UserIDFromContext(c),
	}
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), OwnerFromContext(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, listResponse{Resumes: docs})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	if err := req.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", err)
		return
	}
	doc, err := h.Svc.Create(c.Request.Context(), OwnerFromContext(c), req.Title)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.Created(c, doc)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	doc, err := h.Svc.Get(c.Request.Context(), OwnerFromContext(c), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) save(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	var doc resumes.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if !resumes.IsSentinelID(id) {
		doc.ID = id
	}
	doc = resumes.Normalize(doc)
	if err := doc.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume", err)
		return
	}

	saved, err := h.Svc.Save(c.Request.Context(), OwnerFromContext(c), doc)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, saved.ID)
	respond.OK(c, saved)
}

func (h *Handler) mutate(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	var req mutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid mutation", err)
		return
	}
	var addedID string
	fn, err := req.mutation(&addedID)
	if err != nil {
		WriteError(c, err)
		return
	}
	validated := func(doc resumes.Document) (resumes.Document, error) {
		out, err := fn(doc)
		if err != nil {
			return resumes.Document{}, err
		}
		if err := out.Validate(); err != nil {
			return resumes.Document{}, validationError{err}
		}
		return out, nil
	}

	doc, err := h.Svc.Mutate(c.Request.Context(), OwnerFromContext(c), id, validated)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, mutationResponse{Resume: doc, AddedID: addedID})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), OwnerFromContext(c), id); err != nil {
		WriteError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) duplicate(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)
	doc, err := h.Svc.Duplicate(c.Request.Context(), OwnerFromContext(c), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.Created(c, doc)
}

type validationError struct{ err error }

func (e validationError) Error() string { return e.err.Error() }
func (e validationError) Unwrap() error { return e.err }

// WriteError maps document errors to responses. Storage faults are reported
// generically.
func WriteError(c *gin.Context, err error) {
	var verr validationError
	switch {
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume", verr.err)
	case errors.Is(err, resumes.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrSignInRequired):
		respond.Error(c, http.StatusUnauthorized, "sign_in_required", "sign in to continue", nil)
	case errors.Is(err, ErrNoOwner):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process resume", nil)
	}
}
