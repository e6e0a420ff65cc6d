package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackzampolin/docr/internal/ocrerr"
)

const MockProviderName = "mock"

// MockProvider is an OCRProvider for testing.
type MockProvider struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailFor    map[string]error // per-reference failures
	Response   json.RawMessage

	// Rate limiting
	RPS        float64
	Retries    int
	RetryDelay time.Duration

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	refs         []string
}

// NewMockProvider creates a mock provider with sensible defaults.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Response:   json.RawMessage(`{"model":"mock-ocr","pages":[{"index":0,"markdown":"mock text"}]}`),
		RPS:        60,
		Retries:    3,
		RetryDelay: time.Second,
	}
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return MockProviderName
}

// RequestsPerSecond returns the configured rate limit.
func (m *MockProvider) RequestsPerSecond() float64 {
	return m.RPS
}

// MaxRetries returns the maximum retry attempts.
func (m *MockProvider) MaxRetries() int {
	return m.Retries
}

// RetryDelayBase returns the base delay between retries.
func (m *MockProvider) RetryDelayBase() time.Duration {
	return m.RetryDelay
}

// ProcessDocument records the call and returns the configured response or
// failure for the given reference.
func (m *MockProvider) ProcessDocument(ctx context.Context, ref string) (*Result, error) {
	start := time.Now()
	count := m.requestCount.Add(1)

	m.mu.Lock()
	m.refs = append(m.refs, ref)
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if err, ok := m.FailFor[ref]; ok {
		return nil, err
	}
	if m.ShouldFail {
		return nil, ocrerr.Newf(ocrerr.KindRemoteService, "mock failure %d", count).WithPath(ref)
	}

	return &Result{
		Raw:           m.Response,
		Model:         "mock-ocr",
		PageCount:     1,
		ExecutionTime: time.Since(start),
	}, nil
}

// RequestCount returns the number of ProcessDocument calls made.
func (m *MockProvider) RequestCount() int64 {
	return m.requestCount.Load()
}

// ProcessedRefs returns the references processed, in call order.
func (m *MockProvider) ProcessedRefs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.refs))
	copy(out, m.refs)
	return out
}

// FailRef configures a per-reference failure.
func (m *MockProvider) FailRef(ref string, err error) {
	if m.FailFor == nil {
		m.FailFor = make(map[string]error)
	}
	if err == nil {
		err = fmt.Errorf("mock failure for %s", ref)
	}
	m.FailFor[ref] = err
}

// Verify interface
var _ OCRProvider = (*MockProvider)(nil)
