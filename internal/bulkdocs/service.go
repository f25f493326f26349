package bulkdocs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"casedocs-backend/internal/casedocs"
	"casedocs-backend/internal/processing"
	"casedocs-backend/internal/shared/util"
)

// FileRef points at one uploaded file to register.
type FileRef struct {
	FileName string
	FilePath string
}

// UploadResult is the outcome of a bulk create. Success is computed once,
// from the error list, when the result is assembled.
type UploadResult struct {
	UploadedCount int
	Documents     []casedocs.DocumentRecord
	Errors        []string
	Success       bool
}

// ClassifyRequest describes one document to classify or link. When DocTypeID
// is nil the document's file is run through the orchestrator and the detected
// type is assigned.
type ClassifyRequest struct {
	DocumentID       string
	DocTypeID        *string
	TargetObjectType *string
	TargetObjectID   *string
}

// ClassifyItem is the per-document outcome of a bulk classify, aligned
// index-for-index with the request slice.
type ClassifyItem struct {
	DocumentID     string
	Document       *casedocs.DocumentWithType
	Classification *processing.Result
	Err            string
}

// ClassifyResult is the outcome of a bulk classify.
type ClassifyResult struct {
	AttemptedCount int
	Items          []ClassifyItem
	Errors         []string
	Success        bool
}

// Service applies create and classify operations across many documents in
// one case, isolating per-item failures.
type Service struct {
	Docs *casedocs.Service
	Orch *processing.Orchestrator
	// Workers bounds concurrent in-flight classification calls during
	// ClassifyBulk. Values below 1 mean sequential processing.
	Workers int
}

// CreateBulk registers one document record per file reference. A failing
// item is recorded and processing continues; nothing is rolled back.
func (s *Service) CreateBulk(ctx context.Context, caseID string, files []FileRef) UploadResult {
	var result UploadResult
	for _, file := range files {
		if file.FileName != "" {
			if _, err := util.SanitizeFileName(file.FileName); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("file %s: %v", file.FileName, err))
				continue
			}
		}
		doc, err := s.Docs.Repo.Create(ctx, casedocs.DocumentRecord{
			ID:               uuid.NewString(),
			CaseID:           caseID,
			ProcessingStatus: casedocs.StatusUnidentified,
			FilePath:         file.FilePath,
			UploadedAt:       time.Now().UTC(),
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("file %s: %v", file.FileName, err))
			continue
		}
		result.Documents = append(result.Documents, doc)
		result.UploadedCount++
	}
	result.Success = len(result.Errors) == 0
	return result
}

// ClassifyBulk processes the requests with at most Workers classification
// calls in flight. Items are returned in input order and one item's failure
// never affects another; partial progress is the intended behavior.
func (s *Service) ClassifyBulk(ctx context.Context, requests []ClassifyRequest) ClassifyResult {
	items := make([]ClassifyItem, len(requests))

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			items[i] = s.classifyOne(ctx, requests[i])
		}(i)
	}
	wg.Wait()

	result := ClassifyResult{
		AttemptedCount: len(requests),
		Items:          items,
	}
	for _, item := range items {
		if item.Err != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("document %s: %s", item.DocumentID, item.Err))
		}
	}
	result.Success = len(result.Errors) == 0
	return result
}

// classifyOne is a single unit of work: resolve the record, determine the
// type assignment, apply the update, hydrate type info. Every exit path is
// captured in the returned item.
func (s *Service) classifyOne(ctx context.Context, req ClassifyRequest) ClassifyItem {
	item := ClassifyItem{DocumentID: req.DocumentID}

	doc, err := s.Docs.Repo.GetByID(ctx, req.DocumentID)
	if err != nil {
		item.Err = err.Error()
		return item
	}

	docTypeID := req.DocTypeID
	if docTypeID == nil {
		res := s.Orch.ClassifyDocument(ctx, processing.Request{FilePath: doc.FilePath})
		item.Classification = &res
		if res.Err != "" {
			item.Err = res.Err
			return item
		}
		if res.DocTypeID == "" {
			item.Err = fmt.Sprintf("no document type for label %s", res.PredictedLabel)
			return item
		}
		docTypeID = &res.DocTypeID
	}

	updated, err := s.Docs.Update(ctx, req.DocumentID, casedocs.Changes{
		DocTypeID:        docTypeID,
		TargetObjectType: req.TargetObjectType,
		TargetObjectID:   req.TargetObjectID,
	})
	if err != nil {
		item.Err = err.Error()
		return item
	}

	detail, err := s.Docs.GetWithTypeInfo(ctx, updated.ID)
	if err != nil {
		item.Err = err.Error()
		return item
	}
	item.Document = &detail
	return item
}
