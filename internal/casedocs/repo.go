package casedocs

import "context"

// Repo defines persistence operations for case documents.
type Repo interface {
	Create(ctx context.Context, doc DocumentRecord) (DocumentRecord, error)
	GetByID(ctx context.Context, id string) (DocumentRecord, error)
	ListByProcessingStatus(ctx context.Context, caseID string, status ProcessingStatus) ([]DocumentRecord, error)
	// Update applies changes without touching version state.
	Update(ctx context.Context, id string, changes Changes) (DocumentRecord, error)
	// UpdateWithVersion archives the current (version_number, file_path)
	// into history and applies the changes with version_number+1, all in
	// one transaction. Changes.FilePath must be set.
	UpdateWithVersion(ctx context.Context, id string, changes Changes) (DocumentRecord, error)
	// ListVersionHistory returns archived versions newest-first.
	ListVersionHistory(ctx context.Context, caseDocumentID string) ([]VersionHistoryEntry, error)
}
