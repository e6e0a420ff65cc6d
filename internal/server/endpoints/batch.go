package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/api"
	"github.com/jackzampolin/docr/internal/docref"
	"github.com/jackzampolin/docr/internal/svcctx"
)

// maxBatchURLs caps how many URLs a single batch request may carry.
const maxBatchURLs = 10

// BatchRequest is the JSON body for batch URL processing.
type BatchRequest struct {
	URLs []string `json:"urls"`
}

// BatchResponse reports per-URL outcomes. Every requested URL lands in
// exactly one of Results or FailedURLs.
type BatchResponse struct {
	Results    []ProcessResponse `json:"results"`
	FailedURLs []string          `json:"failed_urls"`
}

// BatchEndpoint handles POST /ocr/batch.
type BatchEndpoint struct{}

var _ api.Endpoint = (*BatchEndpoint)(nil)

func (e *BatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/ocr/batch", e.handler
}

// handler godoc
//
//	@Summary		Process a batch of document URLs
//	@Description	Run OCR on up to 10 URLs. Failures are isolated per URL.
//	@Tags			ocr
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BatchRequest	true	"URLs to process"
//	@Success		200		{object}	BatchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/ocr/batch [post]
func (e *BatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls must contain at least one URL")
		return
	}
	if len(req.URLs) > maxBatchURLs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("urls must contain at most %d URLs", maxBatchURLs))
		return
	}
	for _, u := range req.URLs {
		if !docref.IsURL(u) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("not a valid document URL: %s", u))
			return
		}
	}

	dispatcher := svcctx.DispatcherFrom(r.Context())
	if dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "no OCR provider configured")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	resp := BatchResponse{
		Results:    []ProcessResponse{},
		FailedURLs: []string{},
	}
	for _, u := range req.URLs {
		result, err := dispatcher.Process(r.Context(), u)
		if err != nil {
			if logger != nil {
				logger.Warn("batch URL failed", "url", u, "error", err)
			}
			resp.FailedURLs = append(resp.FailedURLs, u)
			continue
		}
		rec := result.Records[0]
		resp.Results = append(resp.Results, ProcessResponse{File: rec.File, Response: rec.Response})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *BatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	var saveFile string
	cmd := &cobra.Command{
		Use:   "batch [url...]",
		Short: "Process a batch of document URLs via the server",
		Args:  cobra.RangeArgs(1, maxBatchURLs),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BatchResponse
			if err := client.Post(cmd.Context(), "/ocr/batch", BatchRequest{URLs: args}, &resp); err != nil {
				return err
			}

			if saveFile != "" {
				return api.OutputToFile(resp, saveFile)
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&saveFile, "output", "o", "", "Write results to file instead of stdout")
	return cmd
}
