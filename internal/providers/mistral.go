package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/ocrerr"
)

const (
	MistralOCRName    = "mistral-ocr"
	MistralOCRBaseURL = "https://api.mistral.ai/v1"
	MistralOCRModel   = "mistral-ocr-latest"

	// Purpose tag Mistral requires on file uploads destined for OCR.
	mistralOCRPurpose = "ocr"
)

// MistralOCRConfig holds configuration for the Mistral OCR client.
type MistralOCRConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	IncludeImages bool    // Whether to include base64 image data in response
	RateLimit     float64 // Requests per second (default: 6.0)
	MaxRetries    int
	RetryDelay    time.Duration
	Extensions    docref.ExtensionSet
}

// MistralOCRClient implements OCRProvider using the Mistral OCR API.
// URLs are passed to the OCR endpoint directly as document_url; local files
// are first uploaded via the files endpoint and referenced by file_id.
type MistralOCRClient struct {
	apiKey        string
	baseURL       string
	model         string
	includeImages bool
	rateLimit     float64
	maxRetries    int
	retryDelay    time.Duration
	extensions    docref.ExtensionSet
	limiter       *RateLimiter
	client        *http.Client
}

// NewMistralOCRClient creates a new Mistral OCR client.
func NewMistralOCRClient(cfg MistralOCRConfig) *MistralOCRClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MistralOCRBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralOCRModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 6.0 // Mistral OCR default rate limit
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if len(cfg.Extensions.List()) == 0 {
		cfg.Extensions = docref.DefaultExtensions()
	}

	return &MistralOCRClient{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		includeImages: cfg.IncludeImages,
		rateLimit:     cfg.RateLimit,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
		extensions:    cfg.Extensions,
		limiter:       NewRateLimiter(cfg.RateLimit),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *MistralOCRClient) Name() string {
	return MistralOCRName
}

// RequestsPerSecond returns the rate limit for Mistral OCR.
func (c *MistralOCRClient) RequestsPerSecond() float64 {
	return c.rateLimit
}

// MaxRetries returns the maximum retry attempts.
func (c *MistralOCRClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay for exponential backoff.
func (c *MistralOCRClient) RetryDelayBase() time.Duration {
	return c.retryDelay
}

// ProcessDocument runs OCR on a URL or local file reference.
func (c *MistralOCRClient) ProcessDocument(ctx context.Context, ref string) (*Result, error) {
	start := time.Now()

	var doc mistralDocument
	if docref.IsURL(ref) {
		doc = mistralDocument{Type: "document_url", DocumentURL: ref}
	} else {
		if !c.extensions.Contains(ref) {
			return nil, ocrerr.New(ocrerr.KindUnsupportedFileType, "unsupported file type").WithPath(ref)
		}
		fileID, err := c.uploadFile(ctx, ref)
		if err != nil {
			return nil, err
		}
		doc = mistralDocument{Type: "file_id", FileID: fileID}
	}

	reqBody := mistralOCRRequest{
		Model:              c.model,
		Document:           doc,
		IncludeImageBase64: c.includeImages,
	}

	raw, attempts, err := c.doOCR(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	// Pull out the fields we report on; the payload itself stays opaque.
	var meta mistralOCRMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindRemoteService, err, "failed to decode OCR response").WithPath(ref)
	}
	if len(meta.Pages) == 0 {
		return nil, ocrerr.New(ocrerr.KindRemoteService, "no pages in OCR response").WithPath(ref)
	}

	result := &Result{
		Raw:           raw,
		Model:         meta.Model,
		PageCount:     len(meta.Pages),
		ExecutionTime: time.Since(start),
		RetryCount:    attempts - 1,
	}
	if meta.UsageInfo != nil && meta.UsageInfo.PagesProcessed > 0 {
		result.PageCount = meta.UsageInfo.PagesProcessed
	}
	return result, nil
}

// uploadFile uploads a local file to the Mistral files endpoint and returns
// the assigned file ID.
func (c *MistralOCRClient) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return "", ocrerr.New(ocrerr.KindFileAccess, "file not found").WithPath(path)
		case errors.Is(err, os.ErrPermission):
			return "", ocrerr.New(ocrerr.KindFileAccess, "permission denied").WithPath(path)
		default:
			return "", ocrerr.Wrap(ocrerr.KindFileAccess, err, "error reading file").WithPath(path)
		}
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", mistralOCRPurpose); err != nil {
		return "", ocrerr.Wrap(ocrerr.KindOther, err, "failed to build upload request")
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", ocrerr.Wrap(ocrerr.KindOther, err, "failed to build upload request")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", ocrerr.Wrap(ocrerr.KindFileAccess, err, "error reading file").WithPath(path)
	}
	if err := mw.Close(); err != nil {
		return "", ocrerr.Wrap(ocrerr.KindOther, err, "failed to build upload request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", ocrerr.Wrap(ocrerr.KindOther, err, "failed to create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", ocrerr.Wrap(ocrerr.KindRemoteService, err, "file upload failed").WithPath(path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ocrerr.Wrap(ocrerr.KindRemoteService, err, "failed to read upload response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", remoteError(resp.StatusCode, body).WithPath(path)
	}

	var uploaded mistralFileResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return "", ocrerr.Wrap(ocrerr.KindRemoteService, err, "failed to decode upload response")
	}
	if uploaded.ID == "" {
		return "", ocrerr.New(ocrerr.KindRemoteService, "upload response missing file id").WithPath(path)
	}
	return uploaded.ID, nil
}

// doOCR posts the OCR request, retrying transient failures (429s, 5xx,
// transport errors) with exponential backoff. Returns the raw response body
// and the number of attempts made.
func (c *MistralOCRClient) doOCR(ctx context.Context, body mistralOCRRequest) (json.RawMessage, int, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, 0, ocrerr.Wrap(ocrerr.KindOther, err, "failed to marshal request")
	}

	var raw json.RawMessage
	attempts := 0

	err = retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return ocrerr.Wrap(ocrerr.KindOther, err, "rate limiter interrupted")
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(bodyBytes))
			if err != nil {
				return ocrerr.Wrap(ocrerr.KindOther, err, "failed to create request")
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.client.Do(req)
			if err != nil {
				return ocrerr.Wrap(ocrerr.KindRemoteService, err, "request failed")
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return ocrerr.Wrap(ocrerr.KindRemoteService, err, "failed to read response")
			}
			if resp.StatusCode != http.StatusOK {
				return remoteError(resp.StatusCode, respBody)
			}

			raw = respBody
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, attempts, err
	}
	return raw, attempts, nil
}

// isRetryable reports whether the remote failure is worth retrying.
// 429 and 5xx are transient; other client errors are not. Transport errors
// carry no status and are retried.
func isRetryable(err error) bool {
	var oe *ocrerr.Error
	if !errors.As(err, &oe) || oe.Kind != ocrerr.KindRemoteService {
		return false
	}
	return oe.Status == 0 || oe.Status == http.StatusTooManyRequests || oe.Status >= 500
}

// remoteError builds a RemoteService error from a non-200 response,
// extracting the API's error message when present.
func remoteError(status int, body []byte) *ocrerr.Error {
	var errResp mistralErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return ocrerr.Newf(ocrerr.KindRemoteService, "Mistral OCR error: %s", errResp.Error.Message).WithStatus(status)
	}
	return ocrerr.Newf(ocrerr.KindRemoteService, "Mistral OCR error: %s", string(body)).WithStatus(status)
}

// Mistral OCR API types

type mistralOCRRequest struct {
	Model              string          `json:"model"`
	Document           mistralDocument `json:"document"`
	IncludeImageBase64 bool            `json:"include_image_base64,omitempty"`
	Pages              []int           `json:"pages,omitempty"`
	ImageLimit         int             `json:"image_limit,omitempty"`
	ImageMinSize       int             `json:"image_min_size,omitempty"`
}

type mistralDocument struct {
	Type        string `json:"type"` // "document_url" or "file_id"
	DocumentURL string `json:"document_url,omitempty"`
	FileID      string `json:"file_id,omitempty"`
}

type mistralFileResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
}

// mistralOCRMeta is the subset of the OCR response we inspect for reporting.
// The full body is carried through untouched in Result.Raw.
type mistralOCRMeta struct {
	Model     string            `json:"model"`
	Pages     []json.RawMessage `json:"pages"`
	UsageInfo *struct {
		PagesProcessed int `json:"pages_processed"`
		DocSizeBytes   int `json:"doc_size_bytes,omitempty"`
	} `json:"usage_info,omitempty"`
}

type mistralErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Verify interface
var _ OCRProvider = (*MistralOCRClient)(nil)
