package classifier

import (
	"context"
	"fmt"
)

// Input carries what gets sent to the remote classification service.
type Input struct {
	Text            string
	FileName        string
	FileBytes       []byte
	CandidateLabels []string
}

// Usage reports token consumption metadata from the remote service.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Output is the raw service response plus usage metadata. Raw may be plain
// JSON, JSON wrapped in a fenced code block, or arbitrary text; callers run
// it through ParseResponse.
type Output struct {
	Raw   string
	Usage Usage
}

// Client abstracts the remote classification service.
type Client interface {
	Classify(ctx context.Context, in Input) (Output, error)
}

// TransportError marks a failure to reach or invoke the remote service.
// It is fatal for a single document and must not be swallowed at this layer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("classifier: %s failed", e.Op)
	}
	return fmt.Sprintf("classifier: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Placeholder is used when no remote service is configured. Every call fails
// with a TransportError, which the orchestrator converts in-band.
type Placeholder struct{}

// Classify always fails.
func (Placeholder) Classify(ctx context.Context, in Input) (Output, error) {
	return Output{}, &TransportError{Op: "classifier not configured"}
}

var _ Client = Placeholder{}
