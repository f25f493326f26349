package bulkdocs

import (
	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/processing"
)

type fileRefRequest struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

type createBulkRequest struct {
	Files []fileRefRequest `json:"files"`
}

// UploadResponse mirrors UploadResult for the wire.
type UploadResponse struct {
	UploadedCount int                         `json:"uploadedCount"`
	Documents     []casedocs.DocumentResponse `json:"documents"`
	Errors        []string                    `json:"errors"`
	Success       bool                        `json:"success"`
}

type classifyItemRequest struct {
	DocumentID       string  `json:"documentId"`
	DocTypeID        *string `json:"docTypeId"`
	TargetObjectType *string `json:"targetObjectType"`
	TargetObjectID   *string `json:"targetObjectId"`
}

type classifyBulkRequest struct {
	Items []classifyItemRequest `json:"items"`
}

// ClassifyItemResponse is the per-document entry of a bulk classify.
type ClassifyItemResponse struct {
	DocumentID     string                           `json:"documentId"`
	Document       *casedocs.DocumentDetailResponse `json:"document,omitempty"`
	Classification *processing.Result               `json:"classification,omitempty"`
	Error          string                           `json:"error,omitempty"`
}

// ClassifyResponse mirrors ClassifyResult for the wire.
type ClassifyResponse struct {
	AttemptedCount int                    `json:"attemptedCount"`
	Items          []ClassifyItemResponse `json:"items"`
	Errors         []string               `json:"errors"`
	Success        bool                   `json:"success"`
}

type detectRequest struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Text     string `json:"text"`
}
