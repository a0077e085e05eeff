package api

import (
	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/internal/rules"
	"github.com/nikhilakjoshi/reg-interpret-server/internal/spaces"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Spaces    spaces.System
	Documents documents.System
	Prompts   prompts.System
	Rules     rules.System
	Pipeline  *pipeline.Runtime
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	spacesSystem := spaces.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	rulesSystem := rules.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	pipelineRuntime := &pipeline.Runtime{
		Client:  runtime.Generation,
		Prompts: promptsSystem,
		Config:  runtime.Pipeline,
		Logger:  runtime.Logger,
	}

	return &Domain{
		Spaces:    spacesSystem,
		Documents: docsSystem,
		Prompts:   promptsSystem,
		Rules:     rulesSystem,
		Pipeline:  pipelineRuntime,
	}
}
