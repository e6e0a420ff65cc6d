package providers

import (
	"context"
	"encoding/json"
	"time"
)

// OCRProvider handles remote OCR of a document reference.
// A reference is either an http(s) URL or a local file path; the provider
// decides how to transport each to the remote service.
type OCRProvider interface {
	// Name returns the provider identifier (e.g., "mistral-ocr").
	Name() string

	// ProcessDocument runs OCR on a single document reference and returns
	// the provider's response. The response payload is opaque to callers:
	// it is stored and re-emitted, never interpreted.
	ProcessDocument(ctx context.Context, ref string) (*Result, error)

	// Rate limiting properties
	RequestsPerSecond() float64
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// Result is the response from an OCR provider.
type Result struct {
	// Raw is the full provider response body, passed through verbatim.
	Raw json.RawMessage `json:"response"`

	// Model is the remote model that produced the result.
	Model string `json:"model,omitempty"`

	// PageCount is the number of pages the provider reports processing.
	PageCount int `json:"page_count,omitempty"`

	// Timing and retry info
	ExecutionTime time.Duration `json:"execution_time"`
	RetryCount    int           `json:"retry_count"`
}
