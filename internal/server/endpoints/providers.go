package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docr/internal/api"
	"github.com/jackzampolin/docr/internal/svcctx"
)

// ProvidersResponse lists the registered OCR providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Default   string   `json:"default,omitempty"`
}

// ProvidersEndpoint handles GET /providers.
type ProvidersEndpoint struct{}

var _ api.Endpoint = (*ProvidersEndpoint)(nil)

func (e *ProvidersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/providers", e.handler
}

// handler godoc
//
//	@Summary		List OCR providers
//	@Description	Returns registered OCR providers and the current default
//	@Tags			providers
//	@Produce		json
//	@Success		200	{object}	ProvidersResponse
//	@Router			/providers [get]
func (e *ProvidersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := ProvidersResponse{Providers: []string{}}

	registry := svcctx.RegistryFrom(r.Context())
	if registry != nil {
		resp.Providers = registry.ListOCR()
		if p, err := registry.Default(); err == nil {
			resp.Default = p.Name()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ProvidersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered OCR providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProvidersResponse
			if err := client.Get(cmd.Context(), "/providers", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
