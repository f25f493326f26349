package casedocs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const recordColumns = `id, case_id, doc_type_id, status, target_object_type, target_object_id, processing_status, file_path, uploaded_at, reviewed_at, version_number, is_current_version, replace_version_id, created_at, updated_at`

// Create inserts a new document record.
func (r *PGRepo) Create(ctx context.Context, doc DocumentRecord) (DocumentRecord, error) {
	const query = `
INSERT INTO case_documents (
    id,
    case_id,
    status,
    processing_status,
    file_path,
    uploaded_at,
    version_number,
    is_current_version
) VALUES ($1, $2, $3, $4, $5, $6, 1, TRUE)
RETURNING ` + recordColumns

	status := doc.Status
	if status == "" {
		status = "pending"
	}
	processing := doc.ProcessingStatus
	if processing == "" {
		processing = StatusUnidentified
	}

	return scanRecord(r.DB.QueryRowContext(
		ctx,
		query,
		doc.ID,
		doc.CaseID,
		status,
		string(processing),
		nullString(doc.FilePath),
		doc.UploadedAt,
	))
}

// GetByID fetches a document record.
func (r *PGRepo) GetByID(ctx context.Context, id string) (DocumentRecord, error) {
	const query = `
SELECT ` + recordColumns + `
FROM case_documents
WHERE id = $1
LIMIT 1`

	doc, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentRecord{}, ErrNotFound
		}
		return DocumentRecord{}, err
	}
	return doc, nil
}

// ListByProcessingStatus lists a case's documents in a given lifecycle state,
// oldest upload first.
func (r *PGRepo) ListByProcessingStatus(ctx context.Context, caseID string, status ProcessingStatus) ([]DocumentRecord, error) {
	const query = `
SELECT ` + recordColumns + `
FROM case_documents
WHERE case_id = $1 AND processing_status = $2 AND is_current_version = TRUE
ORDER BY uploaded_at`

	rows, err := r.DB.QueryContext(ctx, query, caseID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		doc, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Update applies the changed fields and returns the updated record.
func (r *PGRepo) Update(ctx context.Context, id string, changes Changes) (DocumentRecord, error) {
	set, args := buildSet(changes)
	if len(set) == 0 {
		return DocumentRecord{}, ErrInvalidInput
	}
	args = append(args, id)
	query := fmt.Sprintf(`
UPDATE case_documents
SET %s, updated_at = NOW()
WHERE id = $%d
RETURNING `+recordColumns, strings.Join(set, ", "), len(args))

	doc, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentRecord{}, ErrNotFound
		}
		return DocumentRecord{}, err
	}
	return doc, nil
}

// UpdateWithVersion archives the current file and applies the changes with a
// bumped version number in a single transaction. Any failure rolls the whole
// operation back so a version number never advances without its history row.
func (r *PGRepo) UpdateWithVersion(ctx context.Context, id string, changes Changes) (DocumentRecord, error) {
	if changes.FilePath == nil {
		return DocumentRecord{}, ErrInvalidInput
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return DocumentRecord{}, err
	}
	defer tx.Rollback()

	var currentVersion int
	var currentPath sql.NullString
	err = tx.QueryRowContext(ctx, `
SELECT version_number, file_path
FROM case_documents
WHERE id = $1
FOR UPDATE`, id).Scan(&currentVersion, &currentPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DocumentRecord{}, ErrNotFound
		}
		return DocumentRecord{}, err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO document_version_history (case_document_id, version_number, file_path, uploaded_at, uploaded_by)
VALUES ($1, $2, $3, NOW(), $4)`,
		id, currentVersion, currentPath.String, changes.UploadedBy)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("%w: %v", ErrVersioningConflict, err)
	}

	set, args := buildSet(changes)
	args = append(args, currentVersion+1)
	set = append(set, fmt.Sprintf("version_number = $%d", len(args)))
	args = append(args, id)
	query := fmt.Sprintf(`
UPDATE case_documents
SET %s, updated_at = NOW()
WHERE id = $%d
RETURNING `+recordColumns, strings.Join(set, ", "), len(args))

	doc, err := scanRecord(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("%w: %v", ErrVersioningConflict, err)
	}

	if err := tx.Commit(); err != nil {
		return DocumentRecord{}, fmt.Errorf("%w: %v", ErrVersioningConflict, err)
	}
	return doc, nil
}

// ListVersionHistory returns archived versions newest-first.
func (r *PGRepo) ListVersionHistory(ctx context.Context, caseDocumentID string) ([]VersionHistoryEntry, error) {
	const query = `
SELECT id, case_document_id, version_number, file_path, uploaded_at, uploaded_by, created_at
FROM document_version_history
WHERE case_document_id = $1
ORDER BY version_number DESC`

	rows, err := r.DB.QueryContext(ctx, query, caseDocumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VersionHistoryEntry
	for rows.Next() {
		var entry VersionHistoryEntry
		var uploadedBy sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.CaseDocumentID,
			&entry.VersionNumber,
			&entry.FilePath,
			&entry.UploadedAt,
			&uploadedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if uploadedBy.Valid {
			entry.UploadedBy = &uploadedBy.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// buildSet turns the non-nil change fields into SET clauses and args.
func buildSet(changes Changes) ([]string, []any) {
	var set []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.DocTypeID != nil {
		add("doc_type_id", *changes.DocTypeID)
	}
	if changes.Status != nil {
		add("status", *changes.Status)
	}
	if changes.TargetObjectType != nil {
		add("target_object_type", *changes.TargetObjectType)
	}
	if changes.TargetObjectID != nil {
		add("target_object_id", *changes.TargetObjectID)
	}
	if changes.FilePath != nil {
		add("file_path", *changes.FilePath)
	}
	if changes.ReviewedAt != nil {
		add("reviewed_at", *changes.ReviewedAt)
	}
	if changes.ProcessingStatus != nil {
		add("processing_status", string(*changes.ProcessingStatus))
	}
	return set, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (DocumentRecord, error) {
	var doc DocumentRecord
	var docTypeID, targetType, targetID, filePath, replaceID sql.NullString
	var reviewedAt sql.NullTime
	var processing string
	if err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&docTypeID,
		&doc.Status,
		&targetType,
		&targetID,
		&processing,
		&filePath,
		&doc.UploadedAt,
		&reviewedAt,
		&doc.VersionNumber,
		&doc.IsCurrentVersion,
		&replaceID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return DocumentRecord{}, err
	}
	doc.ProcessingStatus = ProcessingStatus(processing)
	if docTypeID.Valid {
		doc.DocTypeID = &docTypeID.String
	}
	if targetType.Valid {
		doc.TargetObjectType = &targetType.String
	}
	if targetID.Valid {
		doc.TargetObjectID = &targetID.String
	}
	if filePath.Valid {
		doc.FilePath = filePath.String
	}
	if reviewedAt.Valid {
		doc.ReviewedAt = &reviewedAt.Time
	}
	if replaceID.Valid {
		doc.ReplaceVersionID = &replaceID.String
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
