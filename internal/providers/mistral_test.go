package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/docr/internal/ocrerr"
)

func ocrResponse(model string, pages int) map[string]any {
	pageList := make([]map[string]any, pages)
	for i := range pageList {
		pageList[i] = map[string]any{"index": i, "markdown": "extracted text"}
	}
	return map[string]any{
		"model":      model,
		"pages":      pageList,
		"usage_info": map[string]any{"pages_processed": pages},
	}
}

func TestMistralOCRClient_ProcessDocument_URL(t *testing.T) {
	t.Run("successful OCR", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ocr" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			var req mistralOCRRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if req.Document.Type != "document_url" {
				t.Errorf("document type = %s, want document_url", req.Document.Type)
			}
			if req.Document.DocumentURL != "https://example.com/doc.pdf" {
				t.Errorf("unexpected document_url: %s", req.Document.DocumentURL)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(ocrResponse("mistral-ocr-latest", 3))
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		result, err := client.ProcessDocument(context.Background(), "https://example.com/doc.pdf")
		if err != nil {
			t.Fatalf("ProcessDocument() error = %v", err)
		}
		if result.Model != "mistral-ocr-latest" {
			t.Errorf("Model = %s", result.Model)
		}
		if result.PageCount != 3 {
			t.Errorf("PageCount = %d, want 3", result.PageCount)
		}
		if len(result.Raw) == 0 {
			t.Error("expected raw response payload")
		}
		if result.ExecutionTime == 0 {
			t.Error("expected non-zero ExecutionTime")
		}
	})

	t.Run("empty pages response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"model": "mistral-ocr-latest", "pages": []any{}})
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key", BaseURL: server.URL})

		_, err := client.ProcessDocument(context.Background(), "https://example.com/doc.pdf")
		if err == nil {
			t.Fatal("expected error for empty pages")
		}
		if !ocrerr.IsKind(err, ocrerr.KindRemoteService) {
			t.Errorf("expected remote_service kind, got %s", ocrerr.KindOf(err))
		}
	})

	t.Run("client error is not retried", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "Invalid document format", "type": "invalid_request_error"},
			})
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			RetryDelay: time.Millisecond,
		})

		_, err := client.ProcessDocument(context.Background(), "https://example.com/doc.pdf")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "Invalid document format") {
			t.Errorf("expected API message in error, got %q", err.Error())
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call for 400 response, got %d", calls.Load())
		}
	})

	t.Run("server error is retried", func(t *testing.T) {
		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(ocrResponse("mistral-ocr-latest", 1))
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{
			APIKey:     "test-key",
			BaseURL:    server.URL,
			RetryDelay: time.Millisecond,
		})

		result, err := client.ProcessDocument(context.Background(), "https://example.com/doc.pdf")
		if err != nil {
			t.Fatalf("ProcessDocument() error = %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
		if result.RetryCount != 2 {
			t.Errorf("RetryCount = %d, want 2", result.RetryCount)
		}
	})
}

func TestMistralOCRClient_ProcessDocument_File(t *testing.T) {
	t.Run("uploads then processes by file id", func(t *testing.T) {
		tmpDir := t.TempDir()
		docPath := filepath.Join(tmpDir, "scan.pdf")
		if err := os.WriteFile(docPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		var uploaded atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/files":
				if err := r.ParseMultipartForm(10 << 20); err != nil {
					t.Fatalf("failed to parse upload: %v", err)
				}
				if purpose := r.FormValue("purpose"); purpose != "ocr" {
					t.Errorf("purpose = %s, want ocr", purpose)
				}
				fh := r.MultipartForm.File["file"]
				if len(fh) != 1 || fh[0].Filename != "scan.pdf" {
					t.Errorf("unexpected upload: %+v", fh)
				}
				uploaded.Store(true)
				json.NewEncoder(w).Encode(mistralFileResponse{ID: "file-123"})
			case "/ocr":
				var req mistralOCRRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("failed to decode request: %v", err)
				}
				if req.Document.Type != "file_id" || req.Document.FileID != "file-123" {
					t.Errorf("unexpected document: %+v", req.Document)
				}
				json.NewEncoder(w).Encode(ocrResponse("mistral-ocr-latest", 2))
			default:
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
		}))
		defer server.Close()

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key", BaseURL: server.URL})

		result, err := client.ProcessDocument(context.Background(), docPath)
		if err != nil {
			t.Fatalf("ProcessDocument() error = %v", err)
		}
		if !uploaded.Load() {
			t.Error("expected file upload before OCR call")
		}
		if result.PageCount != 2 {
			t.Errorf("PageCount = %d, want 2", result.PageCount)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		tmpDir := t.TempDir()
		txtPath := filepath.Join(tmpDir, "notes.txt")
		if err := os.WriteFile(txtPath, []byte("hello"), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key"})

		_, err := client.ProcessDocument(context.Background(), txtPath)
		if !ocrerr.IsKind(err, ocrerr.KindUnsupportedFileType) {
			t.Errorf("expected unsupported_file_type, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		client := NewMistralOCRClient(MistralOCRConfig{APIKey: "test-key"})

		_, err := client.ProcessDocument(context.Background(), "/does/not/exist.pdf")
		if !ocrerr.IsKind(err, ocrerr.KindFileAccess) {
			t.Errorf("expected file_access, got %v", err)
		}
	})
}
