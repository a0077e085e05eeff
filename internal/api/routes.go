package api

import (
	"net/http"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/config"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	storage := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.Storage.MaxListSize,
	)

	routes.Register(
		mux,
		domain.Spaces.Handler().Routes(),
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Rules.Handler(domain.Documents, domain.Pipeline).Routes(),
		storage.routes(),
	)
}
