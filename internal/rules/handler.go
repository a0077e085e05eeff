package rules

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/handlers"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/routes"
)

// Handler provides HTTP endpoints for rule operations, including the
// streaming generation endpoint.
type Handler struct {
	sys        System
	docs       documents.System
	rt         *pipeline.Runtime
	orch       *pipeline.Orchestrator
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler. The orchestrator is only constructed
// when a generation client is configured; without one the generation
// endpoint runs in degraded fallback mode.
func NewHandler(
	sys System,
	docs documents.System,
	rt *pipeline.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	h := &Handler{
		sys:        sys,
		docs:       docs,
		rt:         rt,
		logger:     logger.With("handler", "rules"),
		pagination: pagination,
	}

	if rt != nil && rt.Client != nil {
		h.orch = pipeline.New(rt)
	}

	return h
}

// Routes returns the route group definition for rule endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/rules",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PUT", Pattern: "/{id}/toggle", Handler: h.Toggle},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "DELETE", Pattern: "/policy-space/{policy_space_id}", Handler: h.DeleteByPolicySpace},
		},
	}
}

// List returns a paginated list of rules with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single rule by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}

	rule, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rule)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching rules.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Toggle flips a rule's active flag and returns the updated rule.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}

	rule, err := h.sys.Toggle(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rule)
}

// Delete removes a rule by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByPolicySpace removes every rule belonging to a policy space.
func (h *Handler) DeleteByPolicySpace(w http.ResponseWriter, r *http.Request) {
	spaceID := r.PathValue("policy_space_id")
	if spaceID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}

	count, err := h.sys.DeleteByPolicySpace(r.Context(), spaceID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"deleted_count":   count,
		"policy_space_id": spaceID,
	})
}
