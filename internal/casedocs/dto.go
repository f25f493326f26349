package casedocs

import (
	"time"

	"casedocs-backend/internal/doctypes"
)

// DocumentResponse is the outward-facing representation of a case document.
type DocumentResponse struct {
	DocumentID       string     `json:"documentId"`
	CaseID           string     `json:"caseId"`
	DocTypeID        *string    `json:"docTypeId,omitempty"`
	Status           string     `json:"status"`
	TargetObjectType *string    `json:"targetObjectType,omitempty"`
	TargetObjectID   *string    `json:"targetObjectId,omitempty"`
	ProcessingStatus string     `json:"processingStatus"`
	FilePath         string     `json:"filePath,omitempty"`
	UploadedAt       time.Time  `json:"uploadedAt"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`
	VersionNumber    int        `json:"versionNumber"`
	IsCurrentVersion bool       `json:"isCurrentVersion"`
}

// ToResponse maps a record to its response shape.
func ToResponse(doc DocumentRecord) DocumentResponse {
	return DocumentResponse{
		DocumentID:       doc.ID,
		CaseID:           doc.CaseID,
		DocTypeID:        doc.DocTypeID,
		Status:           doc.Status,
		TargetObjectType: doc.TargetObjectType,
		TargetObjectID:   doc.TargetObjectID,
		ProcessingStatus: string(doc.ProcessingStatus),
		FilePath:         doc.FilePath,
		UploadedAt:       doc.UploadedAt,
		ReviewedAt:       doc.ReviewedAt,
		VersionNumber:    doc.VersionNumber,
		IsCurrentVersion: doc.IsCurrentVersion,
	}
}

// DocTypeResponse is the outward-facing representation of a type descriptor.
type DocTypeResponse struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"displayName"`
	Category     string   `json:"category"`
	CategoryCode int      `json:"categoryCode"`
	TargetObject string   `json:"targetObject"`
	DocumentType string   `json:"documentType"`
	IsRecurring  bool     `json:"isRecurring"`
	Frequency    string   `json:"frequency,omitempty"`
	RequiredFor  []string `json:"requiredFor,omitempty"`
}

// ToDocTypeResponse maps a descriptor to its response shape.
func ToDocTypeResponse(dt doctypes.DocType) DocTypeResponse {
	return DocTypeResponse{
		ID:           dt.ID,
		DisplayName:  dt.DisplayName,
		Category:     string(dt.Category),
		CategoryCode: dt.CategoryCode,
		TargetObject: string(dt.TargetObject),
		DocumentType: string(dt.Mutability),
		IsRecurring:  dt.IsRecurring,
		Frequency:    string(dt.Frequency),
		RequiredFor:  dt.RequiredFor,
	}
}

// VersionHistoryResponse is one archived version of a document.
type VersionHistoryResponse struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"versionNumber"`
	FilePath      string    `json:"filePath"`
	UploadedAt    time.Time `json:"uploadedAt"`
	UploadedBy    *string   `json:"uploadedBy,omitempty"`
}

// DocumentDetailResponse is a document with its type descriptor and history.
type DocumentDetailResponse struct {
	DocumentResponse
	DocType *DocTypeResponse         `json:"docType,omitempty"`
	History []VersionHistoryResponse `json:"versionHistory,omitempty"`
}

// ToDetailResponse maps a hydrated document to its response shape.
func ToDetailResponse(d DocumentWithType) DocumentDetailResponse {
	out := DocumentDetailResponse{DocumentResponse: ToResponse(d.Document)}
	if d.DocType != nil {
		dt := ToDocTypeResponse(*d.DocType)
		out.DocType = &dt
	}
	for _, entry := range d.History {
		out.History = append(out.History, VersionHistoryResponse{
			ID:            entry.ID,
			VersionNumber: entry.VersionNumber,
			FilePath:      entry.FilePath,
			UploadedAt:    entry.UploadedAt,
			UploadedBy:    entry.UploadedBy,
		})
	}
	return out
}
