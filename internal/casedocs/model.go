package casedocs

import "time"

// ProcessingStatus tracks how far a document has moved through the pipeline.
// It is derived from reference presence, never set independently.
type ProcessingStatus string

const (
	StatusUnidentified ProcessingStatus = "unidentified"
	StatusIdentified   ProcessingStatus = "identified"
	StatusProcessed    ProcessingStatus = "processed"
	StatusError        ProcessingStatus = "error"
)

// DeriveProcessingStatus computes the lifecycle state from which references
// are set on the record: no type means unidentified, a type without a target
// means identified, both means processed.
func DeriveProcessingStatus(docTypeID, targetObjectID *string) ProcessingStatus {
	switch {
	case docTypeID == nil || *docTypeID == "":
		return StatusUnidentified
	case targetObjectID == nil || *targetObjectID == "":
		return StatusIdentified
	default:
		return StatusProcessed
	}
}

// DocumentRecord is a persisted case document.
type DocumentRecord struct {
	ID               string
	CaseID           string
	DocTypeID        *string
	Status           string
	TargetObjectType *string
	TargetObjectID   *string
	ProcessingStatus ProcessingStatus
	FilePath         string
	UploadedAt       time.Time
	ReviewedAt       *time.Time
	VersionNumber    int
	IsCurrentVersion bool
	ReplaceVersionID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VersionHistoryEntry archives a superseded file of an updatable document.
// Entries are append-only.
type VersionHistoryEntry struct {
	ID             string
	CaseDocumentID string
	VersionNumber  int
	FilePath       string
	UploadedAt     time.Time
	UploadedBy     *string
	CreatedAt      time.Time
}

// Changes holds the fields an update may touch. Nil means leave unchanged.
// ProcessingStatus is filled in by the service from the derived state and
// must not be supplied by callers.
type Changes struct {
	DocTypeID        *string
	Status           *string
	TargetObjectType *string
	TargetObjectID   *string
	FilePath         *string
	ReviewedAt       *time.Time
	UploadedBy       *string
	ProcessingStatus *ProcessingStatus
}

// IsEmpty reports whether the update would touch nothing.
func (c Changes) IsEmpty() bool {
	return c.DocTypeID == nil && c.Status == nil && c.TargetObjectType == nil &&
		c.TargetObjectID == nil && c.FilePath == nil && c.ReviewedAt == nil &&
		c.ProcessingStatus == nil
}
