package bulkdocs

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/processing"
	"casedocs-backend/internal/shared/server/respond"
)

const maxBatchSize = 100

// Handler wires HTTP handlers to the bulk service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches bulk document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cases/:caseId/documents/bulk", h.createBulk)
	rg.POST("/cases/:caseId/documents/classify", h.classifyBulk)
	rg.POST("/documents/detect", h.detect)
}

// createBulk registers documents for a batch of uploaded files. Per-item
// failures are reported in the body; the request itself always succeeds
// when the batch is well-formed.
func (h *Handler) createBulk(c *gin.Context) {
	caseID := c.Param("caseId")

	var req createBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files is required", nil)
		return
	}
	if len(req.Files) > maxBatchSize {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files in one batch", nil)
		return
	}
	for _, f := range req.Files {
		if strings.TrimSpace(f.FilePath) == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "filePath is required for every file", nil)
			return
		}
	}

	files := make([]FileRef, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, FileRef{FileName: f.FileName, FilePath: f.FilePath})
	}

	result := h.Svc.CreateBulk(c.Request.Context(), caseID, files)

	resp := UploadResponse{
		UploadedCount: result.UploadedCount,
		Documents:     make([]casedocs.DocumentResponse, 0, len(result.Documents)),
		Errors:        result.Errors,
		Success:       result.Success,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for _, doc := range result.Documents {
		resp.Documents = append(resp.Documents, casedocs.ToResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

// classifyBulk assigns types and targets across a batch. One item's failure
// never fails the request or rolls back other items.
func (h *Handler) classifyBulk(c *gin.Context) {
	var req classifyBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Items) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "items is required", nil)
		return
	}
	if len(req.Items) > maxBatchSize {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many items in one batch", nil)
		return
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.DocumentID) == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "documentId is required for every item", nil)
			return
		}
	}

	requests := make([]ClassifyRequest, 0, len(req.Items))
	for _, item := range req.Items {
		requests = append(requests, ClassifyRequest{
			DocumentID:       item.DocumentID,
			DocTypeID:        item.DocTypeID,
			TargetObjectType: item.TargetObjectType,
			TargetObjectID:   item.TargetObjectID,
		})
	}

	result := h.Svc.ClassifyBulk(c.Request.Context(), requests)

	resp := ClassifyResponse{
		AttemptedCount: result.AttemptedCount,
		Items:          make([]ClassifyItemResponse, 0, len(result.Items)),
		Errors:         result.Errors,
		Success:        result.Success,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for _, item := range result.Items {
		entry := ClassifyItemResponse{
			DocumentID:     item.DocumentID,
			Classification: item.Classification,
			Error:          item.Err,
		}
		if item.Document != nil {
			detail := casedocs.ToDetailResponse(*item.Document)
			entry.Document = &detail
		}
		resp.Items = append(resp.Items, entry)
	}
	respond.JSON(c, http.StatusOK, resp)
}

// detect classifies a single document without persisting anything.
func (h *Handler) detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.FilePath == "" && req.Text == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "filePath or text is required", nil)
		return
	}

	result := h.Svc.Orch.ClassifyDocument(c.Request.Context(), processing.Request{
		FileName: req.FileName,
		FilePath: req.FilePath,
		Text:     req.Text,
	})
	respond.JSON(c, http.StatusOK, result)
}
