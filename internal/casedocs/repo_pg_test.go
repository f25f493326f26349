package casedocs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var recordColumnNames = []string{
	"id", "case_id", "doc_type_id", "status", "target_object_type",
	"target_object_id", "processing_status", "file_path", "uploaded_at",
	"reviewed_at", "version_number", "is_current_version",
	"replace_version_id", "created_at", "updated_at",
}

func recordRow(id string, version int, filePath string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(recordColumnNames).AddRow(
		id, "case-1", nil, "pending", nil, nil, "unidentified", filePath,
		now, nil, version, true, nil, now, now,
	)
}

func TestPGRepoCreateStartsUnidentified(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("INSERT INTO case_documents").
		WithArgs("doc-1", "case-1", "pending", "unidentified", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(recordRow("doc-1", 1, "/files/a.pdf"))

	repo := &PGRepo{DB: db}
	doc, err := repo.Create(context.Background(), DocumentRecord{
		ID:         "doc-1",
		CaseID:     "case-1",
		FilePath:   "/files/a.pdf",
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ProcessingStatus != StatusUnidentified {
		t.Fatalf("processing status = %q", doc.ProcessingStatus)
	}
	if doc.VersionNumber != 1 {
		t.Fatalf("version = %d, want 1", doc.VersionNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateWithVersionIsOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version_number, file_path").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"version_number", "file_path"}).
			AddRow(2, "/files/v2.pdf"))
	mock.ExpectExec("INSERT INTO document_version_history").
		WithArgs("doc-1", 2, "/files/v2.pdf", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("UPDATE case_documents").
		WithArgs("/files/v3.pdf", "identified", 3, "doc-1").
		WillReturnRows(recordRow("doc-1", 3, "/files/v3.pdf"))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	path := "/files/v3.pdf"
	status := StatusIdentified
	doc, err := repo.UpdateWithVersion(context.Background(), "doc-1", Changes{
		FilePath:         &path,
		ProcessingStatus: &status,
	})
	if err != nil {
		t.Fatalf("UpdateWithVersion: %v", err)
	}
	if doc.VersionNumber != 3 {
		t.Fatalf("version = %d, want 3", doc.VersionNumber)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateWithVersionRollsBackOnHistoryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version_number, file_path").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"version_number", "file_path"}).
			AddRow(1, "/files/v1.pdf"))
	mock.ExpectExec("INSERT INTO document_version_history").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	path := "/files/v2.pdf"
	_, err = repo.UpdateWithVersion(context.Background(), "doc-1", Changes{FilePath: &path})
	if !errors.Is(err, ErrVersioningConflict) {
		t.Fatalf("err = %v, want ErrVersioningConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateWithVersionMissingDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT version_number, file_path").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"version_number", "file_path"}))
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	path := "/files/v2.pdf"
	_, err = repo.UpdateWithVersion(context.Background(), "missing", Changes{FilePath: &path})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoUpdateBuildsOnlyChangedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("UPDATE case_documents SET doc_type_id = \\$1, processing_status = \\$2").
		WithArgs("type-1", "identified", "doc-1").
		WillReturnRows(recordRow("doc-1", 1, "/files/a.pdf"))

	repo := &PGRepo{DB: db}
	typeID := "type-1"
	status := StatusIdentified
	if _, err := repo.Update(context.Background(), "doc-1", Changes{
		DocTypeID:        &typeID,
		ProcessingStatus: &status,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListVersionHistoryNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "case_document_id", "version_number", "file_path",
		"uploaded_at", "uploaded_by", "created_at",
	}).
		AddRow("h-2", "doc-1", 2, "/files/v2.pdf", now, nil, now).
		AddRow("h-1", "doc-1", 1, "/files/v1.pdf", now, "user-1", now)
	mock.ExpectQuery("SELECT (.+) FROM document_version_history").
		WithArgs("doc-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	history, err := repo.ListVersionHistory(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ListVersionHistory: %v", err)
	}
	if len(history) != 2 || history[0].VersionNumber != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history[1].UploadedBy == nil || *history[1].UploadedBy != "user-1" {
		t.Fatalf("uploaded_by = %v", history[1].UploadedBy)
	}
}
