package casedocs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casedocs-backend/internal/doctypes"
	"casedocs-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document lifecycle routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cases/:caseId/documents/unidentified", h.listUnidentified)
	rg.GET("/cases/:caseId/documents/unlinked", h.listUnlinked)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
	rg.GET("/doc-types", h.listDocTypes)
	rg.GET("/doc-types/for-target/:target", h.listDocTypesByTarget)
}

func (h *Handler) listUnidentified(c *gin.Context) {
	h.listByStatus(c, h.Svc.ListUnidentified)
}

func (h *Handler) listUnlinked(c *gin.Context) {
	h.listByStatus(c, h.Svc.ListUnlinked)
}

func (h *Handler) listByStatus(c *gin.Context, list func(ctx context.Context, caseID string) ([]DocumentRecord, error)) {
	caseID := c.Param("caseId")

	docs, err := list(c.Request.Context(), caseID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		}
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, ToResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	detail, err := h.Svc.GetWithTypeInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, ToDetailResponse(detail))
}

type updateRequest struct {
	DocTypeID        *string    `json:"docTypeId"`
	Status           *string    `json:"status"`
	TargetObjectType *string    `json:"targetObjectType"`
	TargetObjectID   *string    `json:"targetObjectId"`
	FilePath         *string    `json:"filePath"`
	ReviewedAt       *time.Time `json:"reviewedAt"`
	UploadedBy       *string    `json:"uploadedBy"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), c.Param("id"), Changes{
		DocTypeID:        req.DocTypeID,
		Status:           req.Status,
		TargetObjectType: req.TargetObjectType,
		TargetObjectID:   req.TargetObjectID,
		FilePath:         req.FilePath,
		ReviewedAt:       req.ReviewedAt,
		UploadedBy:       req.UploadedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrVersioningConflict):
			respond.Error(c, http.StatusConflict, "version_conflict", "version history could not be recorded", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, ToResponse(doc))
}

func (h *Handler) listDocTypes(c *gin.Context) {
	types, err := h.Svc.Types.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list doc types", nil)
		return
	}
	resp := make([]DocTypeResponse, 0, len(types))
	for _, dt := range types {
		resp = append(resp, ToDocTypeResponse(dt))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listDocTypesByTarget(c *gin.Context) {
	target := doctypes.ParseTargetObject(c.Param("target"))
	if target == doctypes.TargetUnknown {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown target object", nil)
		return
	}

	types, err := h.Svc.Types.ListByTarget(c.Request.Context(), target)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list doc types", nil)
		return
	}
	resp := make([]DocTypeResponse, 0, len(types))
	for _, dt := range types {
		resp = append(resp, ToDocTypeResponse(dt))
	}
	respond.JSON(c, http.StatusOK, resp)
}
