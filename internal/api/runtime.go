package api

import (
	"github.com/nikhilakjoshi/reg-interpret-server/internal/config"
	"github.com/nikhilakjoshi/reg-interpret-server/internal/infrastructure"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   pipeline.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Generation: infra.Generation,
		},
		Pagination: cfg.API.Pagination,
		Pipeline:   cfg.Pipeline,
	}
}
