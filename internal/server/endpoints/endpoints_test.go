package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/home"
	"github.com/jackzampolin/docr/internal/ocrerr"
	"github.com/jackzampolin/docr/internal/providers"
	"github.com/jackzampolin/docr/internal/svcctx"
)

// newTestServices builds a Services struct backed by the given mock provider
// and a temp home directory.
func newTestServices(t *testing.T, mock *providers.MockProvider) *svcctx.Services {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	registry.RegisterOCR(mock.Name(), mock)

	homeDir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := homeDir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}

	return &svcctx.Services{
		Registry:   registry,
		Logger:     logger,
		Home:       homeDir,
		Extensions: docref.DefaultExtensions(),
		Workers:    1,
	}
}

// serve runs the endpoint's handler against the request with services
// attached to the context.
func serve(t *testing.T, handler http.HandlerFunc, req *http.Request, services *svcctx.Services) *httptest.ResponseRecorder {
	t.Helper()
	if services != nil {
		req = req.WithContext(svcctx.WithServices(req.Context(), services))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	ep := &HealthEndpoint{}
	_, _, handler := ep.Route()

	rec := serve(t, handler, httptest.NewRequest("GET", "/health", nil), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want %q", resp.Status, "healthy")
	}
}

func TestProcessEndpoint_URL(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &ProcessEndpoint{}
	_, _, handler := ep.Route()

	body, _ := json.Marshal(ProcessRequest{URL: "https://example.com/doc.pdf"})
	req := httptest.NewRequest("POST", "/ocr/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(t, handler, req, services)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp ProcessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.File != "https://example.com/doc.pdf" {
		t.Errorf("File = %q, want the request URL", resp.File)
	}
	if len(resp.Response) == 0 {
		t.Error("Response is empty")
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestProcessEndpoint_URLValidation(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &ProcessEndpoint{}
	_, _, handler := ep.Route()

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{}`},
		{"not a URL", `{"url":"ftp://example.com/doc.pdf"}`},
		{"unknown process_type", `{"process_type":"file","url":"https://example.com/doc.pdf"}`},
		{"malformed body", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/ocr/process", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(t, handler, req, services)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
	if got := mock.RequestCount(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestProcessEndpoint_RemoteFailure(t *testing.T) {
	mock := providers.NewMockProvider()
	mock.ShouldFail = true
	services := newTestServices(t, mock)
	ep := &ProcessEndpoint{}
	_, _, handler := ep.Route()

	body, _ := json.Marshal(ProcessRequest{URL: "https://example.com/doc.pdf"})
	req := httptest.NewRequest("POST", "/ocr/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(t, handler, req, services)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected error message in response")
	}
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestProcessEndpoint_Upload(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &ProcessEndpoint{}
	_, _, handler := ep.Route()

	buf, contentType := multipartUpload(t, "scan.pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest("POST", "/ocr/process", buf)
	req.Header.Set("Content-Type", contentType)

	rec := serve(t, handler, req, services)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp ProcessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.File != "scan.pdf" {
		t.Errorf("File = %q, want original filename %q", resp.File, "scan.pdf")
	}

	// The provider sees the staged path, which keeps the extension.
	refs := mock.ProcessedRefs()
	if len(refs) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(refs))
	}
	if filepath.Ext(refs[0]) != ".pdf" {
		t.Errorf("staged path = %q, want .pdf extension", refs[0])
	}

	// Staged file is removed after processing.
	entries, err := os.ReadDir(services.Home.UploadsPath())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("uploads dir has %d leftover files, want 0", len(entries))
	}
}

func TestProcessEndpoint_UploadUnsupported(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &ProcessEndpoint{}
	_, _, handler := ep.Route()

	buf, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest("POST", "/ocr/process", buf)
	req.Header.Set("Content-Type", contentType)

	rec := serve(t, handler, req, services)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := mock.RequestCount(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestBatchEndpoint(t *testing.T) {
	mock := providers.NewMockProvider()
	mock.FailRef("https://example.com/b.pdf",
		ocrerr.New(ocrerr.KindRemoteService, "upstream exploded"))
	services := newTestServices(t, mock)
	ep := &BatchEndpoint{}
	_, _, handler := ep.Route()

	urls := []string{
		"https://example.com/a.pdf",
		"https://example.com/b.pdf",
		"https://example.com/c.pdf",
	}
	body, _ := json.Marshal(BatchRequest{URLs: urls})
	req := httptest.NewRequest("POST", "/ocr/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(t, handler, req, services)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp BatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
	if len(resp.FailedURLs) != 1 || resp.FailedURLs[0] != "https://example.com/b.pdf" {
		t.Errorf("failed_urls = %v, want the failing URL only", resp.FailedURLs)
	}
	if len(resp.Results)+len(resp.FailedURLs) != len(urls) {
		t.Errorf("results + failed_urls = %d, want %d",
			len(resp.Results)+len(resp.FailedURLs), len(urls))
	}
}

func TestBatchEndpoint_Validation(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &BatchEndpoint{}
	_, _, handler := ep.Route()

	tooMany := make([]string, maxBatchURLs+1)
	for i := range tooMany {
		tooMany[i] = "https://example.com/doc.pdf"
	}
	tooManyBody, _ := json.Marshal(BatchRequest{URLs: tooMany})

	tests := []struct {
		name string
		body string
	}{
		{"empty urls", `{"urls":[]}`},
		{"too many urls", string(tooManyBody)},
		{"non-URL entry", `{"urls":["https://example.com/a.pdf","/local/path.pdf"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/ocr/batch", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(t, handler, req, services)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
	if got := mock.RequestCount(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestProvidersEndpoint(t *testing.T) {
	mock := providers.NewMockProvider()
	services := newTestServices(t, mock)
	ep := &ProvidersEndpoint{}
	_, _, handler := ep.Route()

	rec := serve(t, handler, httptest.NewRequest("GET", "/providers", nil), services)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp ProvidersResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != mock.Name() {
		t.Errorf("Providers = %v, want [%s]", resp.Providers, mock.Name())
	}
	if resp.Default != mock.Name() {
		t.Errorf("Default = %q, want %q", resp.Default, mock.Name())
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ocrerr.New(ocrerr.KindInvalidInput, "bad"), http.StatusBadRequest},
		{"unsupported type", ocrerr.New(ocrerr.KindUnsupportedFileType, "bad"), http.StatusBadRequest},
		{"remote service", ocrerr.New(ocrerr.KindRemoteService, "bad"), http.StatusInternalServerError},
		{"file access", ocrerr.New(ocrerr.KindFileAccess, "bad"), http.StatusInternalServerError},
		{"plain error", io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
