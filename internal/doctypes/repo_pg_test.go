package doctypes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var docTypeColumnNames = []string{
	"id", "display_name", "category", "category_code", "target_object",
	"document_type", "is_recurring", "frequency", "required_for",
	"created_at", "updated_at",
}

func TestPGRepoGetByIDParsesEnums(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows(docTypeColumnNames).AddRow(
		"type-1", "Bank Statement", "financial", 3, "bank_account",
		"updatable", true, "monthly", "employees,self_employed",
		now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM doc_types").
		WithArgs("type-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	dt, err := repo.GetByID(context.Background(), "type-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if dt.Category != CategoryFinancial {
		t.Fatalf("category = %q", dt.Category)
	}
	if dt.TargetObject != TargetBankAccount {
		t.Fatalf("target = %q", dt.TargetObject)
	}
	if !dt.IsUpdatable() {
		t.Fatal("expected updatable")
	}
	if dt.Frequency != FrequencyMonthly {
		t.Fatalf("frequency = %q", dt.Frequency)
	}
	if len(dt.RequiredFor) != 2 {
		t.Fatalf("required_for = %v", dt.RequiredFor)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDUnknownEnumValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows(docTypeColumnNames).AddRow(
		"type-2", "Mystery Doc", "galactic", 7, "starship",
		"perpetual", false, "", "",
		now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM doc_types").
		WithArgs("type-2").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	dt, err := repo.GetByID(context.Background(), "type-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if dt.Category != CategoryUnknown {
		t.Fatalf("category = %q, want unknown fallback", dt.Category)
	}
	if dt.TargetObject != TargetUnknown {
		t.Fatalf("target = %q, want unknown fallback", dt.TargetObject)
	}
	if dt.Mutability != MutabilityUnknown {
		t.Fatalf("mutability = %q, want unknown fallback", dt.Mutability)
	}
	if dt.RequiredFor != nil {
		t.Fatalf("required_for = %v, want nil", dt.RequiredFor)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM doc_types").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(docTypeColumnNames))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoListByTarget(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows(docTypeColumnNames).
		AddRow("type-1", "Passport", "identification", 1, "person",
			"one_time", false, "", "employees", now, now).
		AddRow("type-2", "Pay Slip", "employment", 2, "person",
			"recurring", true, "monthly", "employees", now, now)
	mock.ExpectQuery("SELECT (.+) FROM doc_types").
		WithArgs("person").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.ListByTarget(context.Background(), TargetPerson)
	if err != nil {
		t.Fatalf("ListByTarget: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Frequency != FrequencyMonthly {
		t.Fatalf("frequency = %q", got[1].Frequency)
	}
}
