package casedocs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	docs    map[string]DocumentRecord
	history map[string][]VersionHistoryEntry
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:    make(map[string]DocumentRecord),
		history: make(map[string][]VersionHistoryEntry),
	}
}

// Create stores a new document record.
func (r *MemoryRepo) Create(ctx context.Context, doc DocumentRecord) (DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return DocumentRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.Status == "" {
		doc.Status = "pending"
	}
	if doc.ProcessingStatus == "" {
		doc.ProcessingStatus = StatusUnidentified
	}
	doc.VersionNumber = 1
	doc.IsCurrentVersion = true
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	r.docs[doc.ID] = doc
	return doc, nil
}

// GetByID fetches a document record.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return DocumentRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return DocumentRecord{}, ErrNotFound
	}
	return doc, nil
}

// ListByProcessingStatus lists a case's documents in a lifecycle state,
// oldest upload first.
func (r *MemoryRepo) ListByProcessingStatus(ctx context.Context, caseID string, status ProcessingStatus) ([]DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []DocumentRecord
	for _, doc := range r.docs {
		if doc.CaseID == caseID && doc.ProcessingStatus == status && doc.IsCurrentVersion {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

// Update applies the changed fields.
func (r *MemoryRepo) Update(ctx context.Context, id string, changes Changes) (DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return DocumentRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(id, changes, false)
}

// UpdateWithVersion archives the current file and bumps the version as one
// step.
func (r *MemoryRepo) UpdateWithVersion(ctx context.Context, id string, changes Changes) (DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return DocumentRecord{}, err
	}
	if changes.FilePath == nil {
		return DocumentRecord{}, ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(id, changes, true)
}

func (r *MemoryRepo) applyLocked(id string, changes Changes, version bool) (DocumentRecord, error) {
	doc, ok := r.docs[id]
	if !ok {
		return DocumentRecord{}, ErrNotFound
	}

	if version {
		r.history[id] = append(r.history[id], VersionHistoryEntry{
			ID:             uuid.NewString(),
			CaseDocumentID: id,
			VersionNumber:  doc.VersionNumber,
			FilePath:       doc.FilePath,
			UploadedAt:     time.Now().UTC(),
			UploadedBy:     changes.UploadedBy,
			CreatedAt:      time.Now().UTC(),
		})
		doc.VersionNumber++
	}

	if changes.DocTypeID != nil {
		doc.DocTypeID = changes.DocTypeID
	}
	if changes.Status != nil {
		doc.Status = *changes.Status
	}
	if changes.TargetObjectType != nil {
		doc.TargetObjectType = changes.TargetObjectType
	}
	if changes.TargetObjectID != nil {
		doc.TargetObjectID = changes.TargetObjectID
	}
	if changes.FilePath != nil {
		doc.FilePath = *changes.FilePath
	}
	if changes.ReviewedAt != nil {
		doc.ReviewedAt = changes.ReviewedAt
	}
	if changes.ProcessingStatus != nil {
		doc.ProcessingStatus = *changes.ProcessingStatus
	}
	doc.UpdatedAt = time.Now().UTC()
	r.docs[id] = doc
	return doc, nil
}

// ListVersionHistory returns archived versions newest-first.
func (r *MemoryRepo) ListVersionHistory(ctx context.Context, caseDocumentID string) ([]VersionHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.history[caseDocumentID]
	out := make([]VersionHistoryEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
