package casedocs

import (
	"context"
	"errors"
	"fmt"

	"casedocs-backend/internal/doctypes"
)

// Service contains the lifecycle rules for case documents.
type Service struct {
	Repo  Repo
	Types doctypes.Repo
}

// DocumentWithType is a record hydrated with its type descriptor and, for
// updatable types, its version history newest-first.
type DocumentWithType struct {
	Document DocumentRecord
	DocType  *doctypes.DocType
	History  []VersionHistoryEntry
}

// ListUnidentified returns a case's documents that have no type assigned yet.
func (s *Service) ListUnidentified(ctx context.Context, caseID string) ([]DocumentRecord, error) {
	if caseID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByProcessingStatus(ctx, caseID, StatusUnidentified)
}

// ListUnlinked returns a case's documents that have a type but no target
// entity.
func (s *Service) ListUnlinked(ctx context.Context, caseID string) ([]DocumentRecord, error) {
	if caseID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByProcessingStatus(ctx, caseID, StatusIdentified)
}

// Update applies field changes to a document. The processing status is
// always re-derived from the resulting type/target references. When the
// document's type is updatable and the file reference changes, the previous
// file is archived and the version bumped atomically with the rest of the
// update; a failure there aborts the whole update.
func (s *Service) Update(ctx context.Context, id string, changes Changes) (DocumentRecord, error) {
	if id == "" || changes.IsEmpty() {
		return DocumentRecord{}, ErrInvalidInput
	}

	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return DocumentRecord{}, err
	}

	docTypeID := doc.DocTypeID
	if changes.DocTypeID != nil {
		docTypeID = changes.DocTypeID
	}
	targetID := doc.TargetObjectID
	if changes.TargetObjectID != nil {
		targetID = changes.TargetObjectID
	}
	derived := DeriveProcessingStatus(docTypeID, targetID)
	changes.ProcessingStatus = &derived

	versioned := false
	if changes.FilePath != nil && *changes.FilePath != doc.FilePath && docTypeID != nil {
		docType, err := s.Types.GetByID(ctx, *docTypeID)
		if err != nil {
			if errors.Is(err, doctypes.ErrNotFound) {
				return DocumentRecord{}, fmt.Errorf("%w: unknown doc type %s", ErrInvalidInput, *docTypeID)
			}
			return DocumentRecord{}, err
		}
		versioned = docType.IsUpdatable()
	}

	if versioned {
		return s.Repo.UpdateWithVersion(ctx, id, changes)
	}
	return s.Repo.Update(ctx, id, changes)
}

// GetWithTypeInfo returns a document with its type descriptor hydrated; for
// updatable types the version history is included newest-first.
func (s *Service) GetWithTypeInfo(ctx context.Context, id string) (DocumentWithType, error) {
	if id == "" {
		return DocumentWithType{}, ErrInvalidInput
	}

	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return DocumentWithType{}, err
	}

	out := DocumentWithType{Document: doc}
	if doc.DocTypeID == nil {
		return out, nil
	}

	docType, err := s.Types.GetByID(ctx, *doc.DocTypeID)
	if err != nil {
		if errors.Is(err, doctypes.ErrNotFound) {
			return out, nil
		}
		return DocumentWithType{}, err
	}
	out.DocType = &docType

	if docType.IsUpdatable() {
		history, err := s.Repo.ListVersionHistory(ctx, id)
		if err != nil {
			return DocumentWithType{}, err
		}
		out.History = history
	}
	return out, nil
}
