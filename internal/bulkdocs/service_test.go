package bulkdocs

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/classifier"
	"casedocs-backend/internal/doctypes"
	"casedocs-backend/internal/processing"
)

var statementType = doctypes.DocType{
	ID:           "type-statement",
	DisplayName:  "Bank Statement",
	Category:     doctypes.CategoryFinancial,
	CategoryCode: 3,
	TargetObject: doctypes.TargetBankAccount,
	Mutability:   doctypes.MutabilityUpdatable,
}

type stubClassifier struct {
	raw   string
	err   error
	delay time.Duration
}

func (s *stubClassifier) Classify(ctx context.Context, in classifier.Input) (classifier.Output, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return classifier.Output{}, s.err
	}
	return classifier.Output{Raw: s.raw}, nil
}

func newTestService(t *testing.T, client classifier.Client, workers int) (*Service, *casedocs.MemoryRepo) {
	t.Helper()
	repo := casedocs.NewMemoryRepo()
	docs := &casedocs.Service{Repo: repo, Types: doctypes.NewMemoryRepo(statementType)}
	orch := &processing.Orchestrator{
		Client:   client,
		Registry: processing.NewRegistry([]doctypes.DocType{statementType}),
	}
	return &Service{Docs: docs, Orch: orch, Workers: workers}, repo
}

func seedDoc(t *testing.T, repo *casedocs.MemoryRepo, id string) {
	t.Helper()
	if _, err := repo.Create(context.Background(), casedocs.DocumentRecord{
		ID:         id,
		CaseID:     "case-1",
		FilePath:   "/files/" + id + ".pdf",
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestCreateBulkRegistersUnidentifiedDocuments(t *testing.T) {
	svc, _ := newTestService(t, &stubClassifier{}, 1)

	result := svc.CreateBulk(context.Background(), "case-1", []FileRef{
		{FileName: "a.pdf", FilePath: "/files/a.pdf"},
		{FileName: "b.png", FilePath: "/files/b.png"},
	})

	if result.UploadedCount != 2 {
		t.Fatalf("uploadedCount = %d, want 2", result.UploadedCount)
	}
	if !result.Success || len(result.Errors) != 0 {
		t.Fatalf("success = %v, errors = %v", result.Success, result.Errors)
	}
	for _, doc := range result.Documents {
		if doc.ProcessingStatus != casedocs.StatusUnidentified {
			t.Fatalf("processing status = %q, want unidentified", doc.ProcessingStatus)
		}
	}
}

func TestCreateBulkRejectsTraversalFileName(t *testing.T) {
	svc, _ := newTestService(t, &stubClassifier{}, 1)

	result := svc.CreateBulk(context.Background(), "case-1", []FileRef{
		{FileName: "../../etc/passwd", FilePath: "/files/x"},
		{FileName: "ok.pdf", FilePath: "/files/ok.pdf"},
	})

	if result.UploadedCount != 1 {
		t.Fatalf("uploadedCount = %d, want 1", result.UploadedCount)
	}
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("success = %v, errors = %v", result.Success, result.Errors)
	}
	if !strings.Contains(result.Errors[0], "invalid file name") {
		t.Fatalf("error = %q, want invalid file name", result.Errors[0])
	}
}

func TestClassifyBulkAssignsTypeThenTarget(t *testing.T) {
	svc, repo := newTestService(t, &stubClassifier{}, 1)
	seedDoc(t, repo, "doc-1")

	// Assigning an updatable type with no target moves it to identified.
	typeID := statementType.ID
	result := svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-1", DocTypeID: &typeID},
	})
	if !result.Success {
		t.Fatalf("errors = %v", result.Errors)
	}
	doc := result.Items[0].Document
	if doc == nil || doc.Document.ProcessingStatus != casedocs.StatusIdentified {
		t.Fatalf("item = %+v", result.Items[0])
	}

	// Adding a target moves it to processed.
	targetType := "bank_account"
	targetID := "acct-1"
	result = svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-1", DocTypeID: &typeID, TargetObjectType: &targetType, TargetObjectID: &targetID},
	})
	if !result.Success {
		t.Fatalf("errors = %v", result.Errors)
	}
	doc = result.Items[0].Document
	if doc == nil || doc.Document.ProcessingStatus != casedocs.StatusProcessed {
		t.Fatalf("item = %+v", result.Items[0])
	}
	if doc.DocType == nil || doc.DocType.DisplayName != "Bank Statement" {
		t.Fatalf("type info = %+v", doc.DocType)
	}
}

func TestClassifyBulkIsolatesFailures(t *testing.T) {
	svc, repo := newTestService(t, &stubClassifier{}, 1)
	seedDoc(t, repo, "doc-ok")

	typeID := statementType.ID
	result := svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-missing-1", DocTypeID: &typeID},
		{DocumentID: "doc-ok", DocTypeID: &typeID},
		{DocumentID: "doc-missing-2", DocTypeID: &typeID},
	})

	if result.AttemptedCount != 3 {
		t.Fatalf("attempted = %d", result.AttemptedCount)
	}
	if result.Success {
		t.Fatal("expected success=false")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", result.Errors)
	}
	if result.Items[0].Err == "" || result.Items[2].Err == "" {
		t.Fatalf("items = %+v", result.Items)
	}
	if result.Items[1].Err != "" || result.Items[1].Document == nil {
		t.Fatalf("middle item should have succeeded: %+v", result.Items[1])
	}
}

func TestClassifyBulkSuccessReflectsErrorList(t *testing.T) {
	svc, repo := newTestService(t, &stubClassifier{}, 1)
	seedDoc(t, repo, "doc-1")
	seedDoc(t, repo, "doc-2")

	typeID := statementType.ID
	result := svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-1", DocTypeID: &typeID},
		{DocumentID: "doc-2", DocTypeID: &typeID},
	})
	if !result.Success || len(result.Errors) != 0 {
		t.Fatalf("success = %v, errors = %v", result.Success, result.Errors)
	}
}

func TestClassifyBulkAutoDetect(t *testing.T) {
	client := &stubClassifier{raw: `{"category": "BANK_STATEMENT", "confidence": 0.9}`}
	svc, repo := newTestService(t, client, 1)
	seedDoc(t, repo, "doc-1")

	result := svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-1"},
	})
	if !result.Success {
		t.Fatalf("errors = %v", result.Errors)
	}
	item := result.Items[0]
	if item.Classification == nil || item.Classification.PredictedLabel != "BANK_STATEMENT" {
		t.Fatalf("classification = %+v", item.Classification)
	}
	if item.Document == nil || item.Document.Document.ProcessingStatus != casedocs.StatusIdentified {
		t.Fatalf("document = %+v", item.Document)
	}
}

func TestClassifyBulkAutoDetectTransportFailure(t *testing.T) {
	client := &stubClassifier{err: &classifier.TransportError{Op: "converse"}}
	svc, repo := newTestService(t, client, 1)
	seedDoc(t, repo, "doc-1")

	result := svc.ClassifyBulk(context.Background(), []ClassifyRequest{
		{DocumentID: "doc-1"},
	})
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("success = %v, errors = %v", result.Success, result.Errors)
	}
	item := result.Items[0]
	if item.Classification == nil || item.Classification.PredictedLabel != "ERROR" {
		t.Fatalf("classification = %+v", item.Classification)
	}

	// The document is untouched.
	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.ProcessingStatus != casedocs.StatusUnidentified {
		t.Fatalf("processing status = %q, want unidentified", doc.ProcessingStatus)
	}
}

func TestClassifyBulkPreservesInputOrderWithWorkers(t *testing.T) {
	client := &stubClassifier{
		raw:   `{"category": "BANK_STATEMENT", "confidence": 0.9}`,
		delay: 2 * time.Millisecond,
	}
	svc, repo := newTestService(t, client, 4)

	const n = 20
	requests := make([]ClassifyRequest, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("doc-%02d", i)
		if i%5 == 0 {
			// Every fifth document does not exist.
			requests = append(requests, ClassifyRequest{DocumentID: id + "-missing"})
			continue
		}
		seedDoc(t, repo, id)
		requests = append(requests, ClassifyRequest{DocumentID: id})
	}

	result := svc.ClassifyBulk(context.Background(), requests)

	if len(result.Items) != n {
		t.Fatalf("items = %d, want %d", len(result.Items), n)
	}
	for i, item := range result.Items {
		if item.DocumentID != requests[i].DocumentID {
			t.Fatalf("items[%d] = %q, want %q", i, item.DocumentID, requests[i].DocumentID)
		}
		missing := strings.HasSuffix(requests[i].DocumentID, "-missing")
		if missing && item.Err == "" {
			t.Fatalf("items[%d] should have failed", i)
		}
		if !missing && item.Err != "" {
			t.Fatalf("items[%d] failed: %s", i, item.Err)
		}
	}
	if result.Success {
		t.Fatal("expected success=false")
	}
	if len(result.Errors) != n/5 {
		t.Fatalf("errors = %d, want %d", len(result.Errors), n/5)
	}
}
