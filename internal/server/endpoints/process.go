package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/api"
	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/svcctx"
)

// ProcessRequest is the JSON body for URL processing.
type ProcessRequest struct {
	// ProcessType is optional; the only JSON mode is "url".
	ProcessType string `json:"process_type,omitempty"`
	URL         string `json:"url"`
}

// ProcessResponse is a single processed document.
type ProcessResponse struct {
	File     string          `json:"file"`
	Response json.RawMessage `json:"response"`
}

// ProcessEndpoint handles POST /ocr/process. It accepts either a JSON body
// with a document URL or a multipart upload with a "file" field.
type ProcessEndpoint struct{}

var _ api.Endpoint = (*ProcessEndpoint)(nil)

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/ocr/process", e.handler
}

// handler godoc
//
//	@Summary		Process a single document
//	@Description	Run OCR on a document URL (JSON body) or an uploaded file (multipart)
//	@Tags			ocr
//	@Accept			json
//	@Accept			mpfd
//	@Produce		json
//	@Param			request	body		ProcessRequest	false	"Document URL to process"
//	@Param			file	formData	file			false	"Document file to process"
//	@Success		200		{object}	ProcessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/ocr/process [post]
func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		e.handleUpload(w, r)
		return
	}
	e.handleURL(w, r)
}

func (e *ProcessEndpoint) handleURL(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ProcessType != "" && req.ProcessType != "url" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown process_type: %s", req.ProcessType))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if !docref.IsURL(req.URL) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("not a valid document URL: %s", req.URL))
		return
	}

	dispatcher := svcctx.DispatcherFrom(r.Context())
	if dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "no OCR provider configured")
		return
	}

	result, err := dispatcher.Process(r.Context(), req.URL)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	rec := result.Records[0]
	writeJSON(w, http.StatusOK, ProcessResponse{File: rec.File, Response: rec.Response})
}

func (e *ProcessEndpoint) handleUpload(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	services := svcctx.ServicesFrom(r.Context())
	if services == nil || services.Home == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}
	if !services.Extensions.Contains(header.Filename) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s (supported: %s)",
				filepath.Ext(header.Filename), strings.Join(services.Extensions.List(), ", ")))
		return
	}

	// Stage the upload under a unique name so concurrent requests with the
	// same filename don't collide. Removed on every exit path.
	tempPath := filepath.Join(services.Home.UploadsPath(),
		uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	dst, err := os.Create(tempPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to stage upload: %v", err))
		return
	}
	defer os.Remove(tempPath)
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save upload: %v", err))
		return
	}
	dst.Close()

	dispatcher := svcctx.DispatcherFrom(r.Context())
	if dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "no OCR provider configured")
		return
	}

	result, err := dispatcher.Process(r.Context(), tempPath)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	// Report the caller's filename, not the staging path.
	rec := result.Records[0]
	writeJSON(w, http.StatusOK, ProcessResponse{File: header.Filename, Response: rec.Response})
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		docURL   string
		docFile  string
		saveFile string
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single document via the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (docURL == "") == (docFile == "") {
				return errors.New("exactly one of --url or --file is required")
			}

			client := api.NewClient(getServerURL())
			var resp ProcessResponse
			if docURL != "" {
				if err := client.Post(cmd.Context(), "/ocr/process", ProcessRequest{URL: docURL}, &resp); err != nil {
					return err
				}
			} else {
				if err := client.PostFile(cmd.Context(), "/ocr/process", "file", docFile, nil, &resp); err != nil {
					return err
				}
			}

			if saveFile != "" {
				return api.OutputToFile(resp, saveFile)
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&docURL, "url", "", "Document URL to process")
	cmd.Flags().StringVar(&docFile, "file", "", "Local file to upload and process")
	cmd.Flags().StringVarP(&saveFile, "output", "o", "", "Write result to file instead of stdout")
	return cmd
}
