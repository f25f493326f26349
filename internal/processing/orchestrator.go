package processing

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"casedocs-backend/internal/classifier"
	"casedocs-backend/internal/extract"
	"casedocs-backend/internal/shared/telemetry"
)

// previewLimit bounds the stored text preview.
const previewLimit = 500

// Request describes one document to classify. Any combination of text,
// bytes, and path is accepted.
type Request struct {
	FileName string
	FilePath string
	Text     string
	Bytes    []byte
}

// Result is the uniform outcome of classifying one document. A failed
// classification is still a well-formed Result carrying the ERROR label.
type Result struct {
	FileName       string           `json:"fileName"`
	PredictedLabel string           `json:"predictedLabel"`
	CategoryCode   int              `json:"categoryCode"`
	DisplayName    string           `json:"displayName"`
	DocTypeID      string           `json:"docTypeId,omitempty"`
	Confidence     float64          `json:"confidence"`
	Source         extract.Source   `json:"source"`
	UsedText       string           `json:"usedText"`
	RawResponse    string           `json:"rawResponse"`
	Usage          classifier.Usage `json:"usage"`
	Err            string           `json:"error,omitempty"`
}

// Orchestrator composes extraction and classification into one deterministic
// call per document.
type Orchestrator struct {
	Client   classifier.Client
	Registry *Registry
	// Timeout bounds the remote classification call. Zero means the
	// caller's context deadline applies unchanged.
	Timeout time.Duration
}

// ClassifyDocument extracts text, calls the classifier, and maps the
// predicted label to category metadata. It never returns an error: every
// failure path produces a Result with the ERROR label and a message.
func (o *Orchestrator) ClassifyDocument(ctx context.Context, req Request) Result {
	fileName := req.FileName
	if fileName == "" && req.FilePath != "" {
		fileName = filepath.Base(req.FilePath)
	}

	usedText, source := extract.Text(extract.Input{
		Text:     req.Text,
		Bytes:    req.Bytes,
		FilePath: req.FilePath,
		FileName: fileName,
	})

	// The service call benefits from the raw document even when text
	// extraction already succeeded, so load bytes from the path if the
	// caller did not supply them.
	fileBytes := req.Bytes
	if fileBytes == nil && req.FilePath != "" {
		data, err := os.ReadFile(req.FilePath)
		if err != nil {
			telemetry.Warn("processing.read_file_failed", map[string]any{
				"path":  req.FilePath,
				"error": err.Error(),
			})
		} else {
			fileBytes = data
		}
	}

	base := Result{
		FileName: fileName,
		Source:   source,
		UsedText: truncate(usedText, previewLimit),
	}

	callCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	out, err := o.Client.Classify(callCtx, classifier.Input{
		Text:            usedText,
		FileName:        fileName,
		FileBytes:       fileBytes,
		CandidateLabels: o.Registry.CandidateLabels(),
	})
	if err != nil {
		telemetry.Error("processing.classify_failed", map[string]any{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return o.errorResult(base, err.Error())
	}

	parsed := classifier.ParseResponse(out.Raw)
	info := o.Registry.Lookup(parsed.Label)

	base.PredictedLabel = info.Label
	base.CategoryCode = info.CategoryCode
	base.DisplayName = info.DisplayName
	base.DocTypeID = info.DocTypeID
	base.Confidence = parsed.Confidence
	base.RawResponse = parsed.Canonical
	base.Usage = out.Usage
	return base
}

func (o *Orchestrator) errorResult(base Result, msg string) Result {
	entry := o.Registry.ErrorEntry()
	base.PredictedLabel = entry.Label
	base.CategoryCode = entry.CategoryCode
	base.DisplayName = entry.DisplayName
	base.Confidence = 0.0
	base.RawResponse = "{}"
	base.Err = msg
	return base
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
