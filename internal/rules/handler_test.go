package rules_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/internal/rules"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
)

type mockSystem struct {
	listFn        func(ctx context.Context, page pagination.PageRequest, filters rules.Filters) (*pagination.PageResult[rules.Rule], error)
	findFn        func(ctx context.Context, id uuid.UUID) (*rules.Rule, error)
	createBatchFn func(ctx context.Context, cmds []rules.CreateCommand) ([]rules.Rule, error)
	toggleFn      func(ctx context.Context, id uuid.UUID) (*rules.Rule, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	deleteSpaceFn func(ctx context.Context, policySpaceID string) (int, error)
}

func (m *mockSystem) Handler(docs documents.System, rt *pipeline.Runtime) *rules.Handler {
	return newTestHandler(m, docs, rt)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters rules.Filters) (*pagination.PageResult[rules.Rule], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*rules.Rule, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) CreateBatch(ctx context.Context, cmds []rules.CreateCommand) ([]rules.Rule, error) {
	return m.createBatchFn(ctx, cmds)
}

func (m *mockSystem) Toggle(ctx context.Context, id uuid.UUID) (*rules.Rule, error) {
	return m.toggleFn(ctx, id)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) DeleteByPolicySpace(ctx context.Context, policySpaceID string) (int, error) {
	return m.deleteSpaceFn(ctx, policySpaceID)
}

type fakeDocs struct {
	contentFn func(ctx context.Context, id uuid.UUID) (*documents.Document, []byte, error)
}

func (f *fakeDocs) Handler(maxUploadSize int64) *documents.Handler { return nil }

func (f *fakeDocs) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, documents.ErrNotFound
}

func (f *fakeDocs) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return nil, documents.ErrNotFound
}

func (f *fakeDocs) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	return nil, documents.ErrInvalidFile
}

func (f *fakeDocs) Delete(ctx context.Context, id uuid.UUID) error {
	return documents.ErrNotFound
}

func (f *fakeDocs) Content(ctx context.Context, id uuid.UUID) (*documents.Document, []byte, error) {
	return f.contentFn(ctx, id)
}

func newTestHandler(sys *mockSystem, docs documents.System, rt *pipeline.Runtime) *rules.Handler {
	return rules.NewHandler(
		sys,
		docs,
		rt,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *rules.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleRule() rules.Rule {
	docID := uuid.MustParse("650e8400-e29b-41d4-a716-446655440000")
	return rules.Rule{
		ID:              uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		PolicySpaceID:   "aml-monitoring",
		DocumentID:      &docID,
		RuleName:        "Transaction Threshold Reporting",
		RuleDescription: "Report transactions above the statutory threshold",
		RuleContent:     json.RawMessage(`{"rule_id":"RULE_001"}`),
		RuleType:        "compliance",
		Severity:        "high",
		GeneratedBy:     "analyst",
		IsActive:        true,
		CreatedAt:       time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func sampleDocument() documents.Document {
	return documents.Document{
		ID:               uuid.MustParse("650e8400-e29b-41d4-a716-446655440000"),
		PolicySpaceID:    "aml-monitoring",
		Filename:         "regulation.txt",
		OriginalFilename: "regulation.txt",
		ContentType:      "text/plain",
		SizeBytes:        64,
		Status:           "uploaded",
	}
}

func TestHandlerList(t *testing.T) {
	rule := sampleRule()
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, _ rules.Filters) (*pagination.PageResult[rules.Rule], error) {
			result := pagination.NewPageResult([]rules.Rule{rule}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

	t.Run("returns paginated list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/rules", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[rules.Rule]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 || len(result.Data) != 1 {
			t.Fatalf("result = %+v, want single rule", result)
		}
		if result.Data[0].RuleName != rule.RuleName {
			t.Errorf("rule_name = %q, want %q", result.Data[0].RuleName, rule.RuleName)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured rules.Filters
		sys.listFn = func(_ context.Context, _ pagination.PageRequest, f rules.Filters) (*pagination.PageResult[rules.Rule], error) {
			captured = f
			result := pagination.NewPageResult([]rules.Rule{}, 0, 1, 20)
			return &result, nil
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/rules?policy_space_id=aml-monitoring&severity=high", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.PolicySpaceID == nil || *captured.PolicySpaceID != "aml-monitoring" {
			t.Errorf("policy_space_id filter = %v, want aml-monitoring", captured.PolicySpaceID)
		}
		if captured.Severity == nil || *captured.Severity != "high" {
			t.Errorf("severity filter = %v, want high", captured.Severity)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	rule := sampleRule()

	t.Run("returns rule by id", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, id uuid.UUID) (*rules.Rule, error) {
				if id != rule.ID {
					return nil, rules.ErrNotFound
				}
				return &rule, nil
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/rules/"+rule.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got rules.Rule
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != rule.ID {
			t.Errorf("id = %v, want %v", got.ID, rule.ID)
		}
	})

	t.Run("invalid uuid returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/rules/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(_ context.Context, _ uuid.UUID) (*rules.Rule, error) {
				return nil, rules.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/rules/"+uuid.New().String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerToggle(t *testing.T) {
	rule := sampleRule()
	rule.IsActive = false

	t.Run("flips active flag", func(t *testing.T) {
		var capturedID uuid.UUID
		sys := &mockSystem{
			toggleFn: func(_ context.Context, id uuid.UUID) (*rules.Rule, error) {
				capturedID = id
				return &rule, nil
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/rules/"+rule.ID.String()+"/toggle", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedID != rule.ID {
			t.Errorf("id = %v, want %v", capturedID, rule.ID)
		}

		var got rules.Rule
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.IsActive {
			t.Error("is_active = true, want false")
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		sys := &mockSystem{
			toggleFn: func(_ context.Context, _ uuid.UUID) (*rules.Rule, error) {
				return nil, rules.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/rules/"+uuid.New().String()+"/toggle", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	ruleID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	t.Run("deletes rule", func(t *testing.T) {
		var capturedID uuid.UUID
		sys := &mockSystem{
			deleteFn: func(_ context.Context, id uuid.UUID) error {
				capturedID = id
				return nil
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/rules/"+ruleID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if capturedID != ruleID {
			t.Errorf("id = %v, want %v", capturedID, ruleID)
		}
	})

	t.Run("not found returns 404", func(t *testing.T) {
		sys := &mockSystem{
			deleteFn: func(_ context.Context, _ uuid.UUID) error {
				return rules.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/rules/"+uuid.New().String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerDeleteByPolicySpace(t *testing.T) {
	t.Run("deletes all rules in space", func(t *testing.T) {
		var capturedSpace string
		sys := &mockSystem{
			deleteSpaceFn: func(_ context.Context, spaceID string) (int, error) {
				capturedSpace = spaceID
				return 7, nil
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/rules/policy-space/aml-monitoring", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedSpace != "aml-monitoring" {
			t.Errorf("space = %q, want aml-monitoring", capturedSpace)
		}

		var resp map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["deleted_count"] != float64(7) {
			t.Errorf("deleted_count = %v, want 7", resp["deleted_count"])
		}
		if resp["policy_space_id"] != "aml-monitoring" {
			t.Errorf("policy_space_id = %v, want aml-monitoring", resp["policy_space_id"])
		}
	})

	t.Run("empty space returns 404", func(t *testing.T) {
		sys := &mockSystem{
			deleteSpaceFn: func(_ context.Context, _ string) (int, error) {
				return 0, rules.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/rules/policy-space/empty-space", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerGenerateValidation(t *testing.T) {
	t.Run("invalid json returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", strings.NewReader("not json"))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing document_id returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		body, _ := json.Marshal(rules.GenerateRequest{GeneratedBy: "analyst"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing generated_by returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(newTestHandler(sys, &fakeDocs{}, nil))

		body, _ := json.Marshal(rules.GenerateRequest{DocumentID: uuid.New()})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing document returns 404", func(t *testing.T) {
		sys := &mockSystem{}
		docs := &fakeDocs{
			contentFn: func(_ context.Context, _ uuid.UUID) (*documents.Document, []byte, error) {
				return nil, nil, documents.ErrNotFound
			},
		}
		mux := setupMux(newTestHandler(sys, docs, nil))

		body, _ := json.Marshal(rules.GenerateRequest{DocumentID: uuid.New(), GeneratedBy: "analyst"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("unextractable content returns 422", func(t *testing.T) {
		sys := &mockSystem{}
		doc := sampleDocument()
		doc.ContentType = "application/zip"
		docs := &fakeDocs{
			contentFn: func(_ context.Context, _ uuid.UUID) (*documents.Document, []byte, error) {
				return &doc, []byte{0x50, 0x4b, 0x03, 0x04}, nil
			},
		}
		mux := setupMux(newTestHandler(sys, docs, nil))

		body, _ := json.Marshal(rules.GenerateRequest{DocumentID: doc.ID, GeneratedBy: "analyst"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestHandlerGenerateFallback(t *testing.T) {
	doc := sampleDocument()
	docs := &fakeDocs{
		contentFn: func(_ context.Context, _ uuid.UUID) (*documents.Document, []byte, error) {
			return &doc, []byte("All transactions above 10000 EUR must be reported."), nil
		},
	}

	t.Run("streams fallback rule and persists it", func(t *testing.T) {
		var capturedCmds []rules.CreateCommand
		sys := &mockSystem{
			createBatchFn: func(_ context.Context, cmds []rules.CreateCommand) ([]rules.Rule, error) {
				capturedCmds = cmds
				created := make([]rules.Rule, len(cmds))
				return created, nil
			},
		}
		mux := setupMux(newTestHandler(sys, docs, nil))

		body, _ := json.Marshal(rules.GenerateRequest{
			DocumentID:  doc.ID,
			GeneratedBy: "analyst",
			Severity:    "critical",
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
			t.Errorf("content type = %q, want application/x-ndjson", ct)
		}

		events := decodeEvents(t, rec.Body)
		if len(events) != 2 {
			t.Fatalf("event count = %d, want 2", len(events))
		}
		if events[0].Type != pipeline.EventPipelineCompleted {
			t.Errorf("events[0].type = %q, want pipeline_completed", events[0].Type)
		}
		if got := events[0].Data["total_rules_generated"]; got != float64(1) {
			t.Errorf("total_rules_generated = %v, want 1", got)
		}
		if events[1].Type != rules.EventRulesSaved {
			t.Errorf("events[1].type = %q, want rules_saved", events[1].Type)
		}
		if got := events[1].Data["saved_rules"]; got != float64(1) {
			t.Errorf("saved_rules = %v, want 1", got)
		}

		if len(capturedCmds) != 1 {
			t.Fatalf("persisted %d commands, want 1", len(capturedCmds))
		}
		cmd := capturedCmds[0]
		if cmd.PolicySpaceID != doc.PolicySpaceID {
			t.Errorf("policy_space_id = %q, want %q", cmd.PolicySpaceID, doc.PolicySpaceID)
		}
		if cmd.DocumentID == nil || *cmd.DocumentID != doc.ID {
			t.Errorf("document_id = %v, want %v", cmd.DocumentID, doc.ID)
		}
		if cmd.RuleName != "Manual Review Rule for regulation.txt" {
			t.Errorf("rule_name = %q, want manual review title", cmd.RuleName)
		}
		if cmd.RuleType != rules.DefaultRuleType {
			t.Errorf("rule_type = %q, want %q", cmd.RuleType, rules.DefaultRuleType)
		}
		if cmd.Severity != "medium" {
			t.Errorf("severity = %q, want medium (rule risk level wins over request severity)", cmd.Severity)
		}
		if cmd.GeneratedBy != "analyst" {
			t.Errorf("generated_by = %q, want analyst", cmd.GeneratedBy)
		}

		var content pipeline.FinalRule
		if err := json.Unmarshal(cmd.RuleContent, &content); err != nil {
			t.Fatalf("rule content is not a final rule: %v", err)
		}
		if content.RuleID != "RULE_001" {
			t.Errorf("rule content id = %q, want RULE_001", content.RuleID)
		}
	})

	t.Run("persist failure streams error event", func(t *testing.T) {
		sys := &mockSystem{
			createBatchFn: func(_ context.Context, _ []rules.CreateCommand) ([]rules.Rule, error) {
				return nil, rules.ErrInvalidRule
			},
		}
		mux := setupMux(newTestHandler(sys, docs, nil))

		body, _ := json.Marshal(rules.GenerateRequest{DocumentID: doc.ID, GeneratedBy: "analyst"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/rules/generate", bytes.NewReader(body))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		events := decodeEvents(t, rec.Body)
		if len(events) != 2 {
			t.Fatalf("event count = %d, want 2", len(events))
		}
		if events[1].Type != pipeline.EventError {
			t.Errorf("events[1].type = %q, want error", events[1].Type)
		}
		if events[1].Error == "" {
			t.Error("error event carries no message")
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	sys := &mockSystem{}
	group := newTestHandler(sys, &fakeDocs{}, nil).Routes()

	if group.Prefix != "/rules" {
		t.Errorf("prefix = %q, want /rules", group.Prefix)
	}

	want := []struct {
		method  string
		pattern string
	}{
		{"GET", ""},
		{"GET", "/{id}"},
		{"POST", "/generate"},
		{"POST", "/search"},
		{"PUT", "/{id}/toggle"},
		{"DELETE", "/{id}"},
		{"DELETE", "/policy-space/{policy_space_id}"},
	}

	if len(group.Routes) != len(want) {
		t.Fatalf("route count = %d, want %d", len(group.Routes), len(want))
	}

	for i, w := range want {
		r := group.Routes[i]
		if r.Method != w.method || r.Pattern != w.pattern {
			t.Errorf("route[%d] = %s %s, want %s %s", i, r.Method, r.Pattern, w.method, w.pattern)
		}
	}
}

func decodeEvents(t *testing.T, body io.Reader) []pipeline.Event {
	t.Helper()

	var events []pipeline.Event
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e pipeline.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid event line %q: %v", line, err)
		}
		events = append(events, e)
	}
	return events
}
