package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/extraction"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/handlers"
)

// EventRulesSaved is the extra event appended after the pipeline's
// terminal event once generated rules are persisted.
const EventRulesSaved pipeline.EventType = "rules_saved"

var severities = []string{"low", "medium", "high", "critical"}

// Generate runs the rule generation pipeline for a document and streams
// progress as NDJSON, one event per line, flushed as produced. On
// pipeline completion the final rules are persisted and a rules_saved
// event closes the stream. Without a configured generation client a
// single fallback rule marking the document for manual review is
// produced instead.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRule)
		return
	}
	req = req.Normalize()

	if req.DocumentID == uuid.Nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: document_id required", ErrInvalidRule))
		return
	}
	if req.GeneratedBy == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: generated_by required", ErrInvalidRule))
		return
	}

	doc, data, err := h.docs.Content(r.Context(), req.DocumentID)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	text, err := extraction.Text(data, doc.ContentType)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, extraction.ErrNoText) {
			status = http.StatusUnprocessableEntity
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)

	if h.orch == nil {
		h.generateFallback(w, flusher, r, doc, req)
		return
	}

	runID := uuid.NewString()
	h.logger.InfoContext(r.Context(), "rule generation started",
		"run_id", runID,
		"document", doc.ID,
		"space", doc.PolicySpaceID,
	)

	for event := range h.orch.Run(r.Context(), text, runID) {
		h.writeEvent(w, flusher, event)

		if event.Type == pipeline.EventPipelineCompleted {
			h.persistGenerated(w, flusher, r, doc, req, event)
		}
	}
}

// persistGenerated saves the final rules carried by the terminal event
// and appends a rules_saved event to the stream.
func (h *Handler) persistGenerated(
	w http.ResponseWriter,
	flusher http.Flusher,
	r *http.Request,
	doc *documents.Document,
	req GenerateRequest,
	event pipeline.Event,
) {
	finalRules, _ := event.Data["final_rules"].([]pipeline.FinalRule)
	if len(finalRules) == 0 {
		h.writeEvent(w, flusher, savedEvent(0))
		return
	}

	cmds := make([]CreateCommand, 0, len(finalRules))
	for _, fr := range finalRules {
		cmd, err := commandFromFinalRule(doc, req, fr)
		if err != nil {
			h.writeEvent(w, flusher, streamError("Failed to encode generated rule", err))
			return
		}
		cmds = append(cmds, cmd)
	}

	created, err := h.sys.CreateBatch(r.Context(), cmds)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to persist generated rules", "error", err)
		h.writeEvent(w, flusher, streamError("Failed to save generated rules", err))
		return
	}

	h.writeEvent(w, flusher, savedEvent(len(created)))
}

// generateFallback produces a single manual-review rule when no
// generation client is configured. The stream still carries a terminal
// pipeline_completed event so consumers observe a uniform contract.
func (h *Handler) generateFallback(
	w http.ResponseWriter,
	flusher http.Flusher,
	r *http.Request,
	doc *documents.Document,
	req GenerateRequest,
) {
	fallback := fallbackRule(doc.OriginalFilename)

	completed := pipeline.Event{
		Type:      pipeline.EventPipelineCompleted,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"message":               "Generation client not configured; produced manual review fallback rule",
			"final_rules":           []pipeline.FinalRule{fallback},
			"total_rules_generated": 1,
		},
	}
	h.writeEvent(w, flusher, completed)

	cmd, err := commandFromFinalRule(doc, req, fallback)
	if err != nil {
		h.writeEvent(w, flusher, streamError("Failed to encode fallback rule", err))
		return
	}

	created, err := h.sys.CreateBatch(r.Context(), []CreateCommand{cmd})
	if err != nil {
		h.writeEvent(w, flusher, streamError("Failed to save fallback rule", err))
		return
	}

	h.writeEvent(w, flusher, savedEvent(len(created)))
}

func (h *Handler) writeEvent(w http.ResponseWriter, flusher http.Flusher, event pipeline.Event) {
	line, err := event.NDJSON()
	if err != nil {
		h.logger.Error("failed to encode stream event", "type", event.Type, "error", err)
		return
	}

	if _, err := w.Write(line); err != nil {
		return
	}
	if flusher != nil {
		flusher.Flush()
	}
}

// commandFromFinalRule projects a synthesized rule onto the persistence
// shape. The rule's own risk level wins over the request severity when
// it is a recognized value.
func commandFromFinalRule(
	doc *documents.Document,
	req GenerateRequest,
	fr pipeline.FinalRule,
) (CreateCommand, error) {
	content, err := json.Marshal(fr)
	if err != nil {
		return CreateCommand{}, err
	}

	name := fr.RuleTitle
	if name == "" {
		name = "Generated Compliance Rule"
	}

	severity := strings.ToLower(fr.RiskLevel)
	if !slices.Contains(severities, severity) {
		severity = req.Severity
	}

	id := doc.ID
	return CreateCommand{
		PolicySpaceID:   doc.PolicySpaceID,
		DocumentID:      &id,
		RuleName:        name,
		RuleDescription: fr.RuleDescription,
		RuleContent:     content,
		RuleType:        req.RuleType,
		Severity:        severity,
		GeneratedBy:     req.GeneratedBy,
	}, nil
}

// fallbackRule is the degraded-mode rule marking a document for manual
// compliance review.
func fallbackRule(documentName string) pipeline.FinalRule {
	return pipeline.FinalRule{
		RuleID:                 "RULE_001",
		RuleTitle:              fmt.Sprintf("Manual Review Rule for %s", documentName),
		RuleDescription:        fmt.Sprintf("Placeholder rule for %s; generation client not configured", documentName),
		ComplianceTheme:        "general",
		RequirementType:        "obligation",
		RiskLevel:              "medium",
		ImplementationPriority: "p4",
		ViolationDetection: pipeline.FinalViolationDetection{
			RedFlags: []string{"generation client not configured"},
		},
		StakeholderResponsibilities: pipeline.StakeholderResponsibilities{
			PrimaryOwner: "Compliance Officer",
		},
		SourceInformation: pipeline.SourceInformation{
			RegulationSource: documentName,
		},
		SynthesisMetadata: pipeline.SynthesisMetadata{
			CreatedBy:        "AI Rule Generation System",
			SynthesisVersion: "1.0",
			QualityAssurance: "manual-review-required",
			LastReviewed:     "auto-generated",
		},
	}
}

func savedEvent(count int) pipeline.Event {
	return pipeline.Event{
		Type:      EventRulesSaved,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"saved_rules": count,
		},
	}
}

func streamError(message string, err error) pipeline.Event {
	return pipeline.Event{
		Type:      pipeline.EventError,
		Timestamp: time.Now().UTC(),
		Error:     message,
		Details:   []string{err.Error()},
	}
}
