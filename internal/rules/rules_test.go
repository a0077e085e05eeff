package rules_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/rules"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", rules.ErrNotFound, http.StatusNotFound},
		{"duplicate", rules.ErrDuplicate, http.StatusConflict},
		{"invalid rule", rules.ErrInvalidRule, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", rules.ErrNotFound), http.StatusNotFound},
		{"wrapped invalid", fmt.Errorf("bad input: %w", rules.ErrInvalidRule), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestGenerateRequestNormalize(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		req := rules.GenerateRequest{
			DocumentID:  uuid.New(),
			GeneratedBy: "analyst",
		}.Normalize()

		if req.RuleType != rules.DefaultRuleType {
			t.Errorf("rule_type = %q, want %q", req.RuleType, rules.DefaultRuleType)
		}
		if req.Severity != rules.DefaultSeverity {
			t.Errorf("severity = %q, want %q", req.Severity, rules.DefaultSeverity)
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		req := rules.GenerateRequest{
			DocumentID:  uuid.New(),
			GeneratedBy: "analyst",
			RuleType:    "reporting",
			Severity:    "high",
		}.Normalize()

		if req.RuleType != "reporting" {
			t.Errorf("rule_type = %q, want reporting", req.RuleType)
		}
		if req.Severity != "high" {
			t.Errorf("severity = %q, want high", req.Severity)
		}
	})
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		docID := uuid.New()
		values := url.Values{
			"policy_space_id": {"aml-monitoring"},
			"document_id":     {docID.String()},
			"rule_type":       {"compliance"},
			"severity":        {"high"},
			"generated_by":    {"analyst"},
			"is_active":       {"true"},
		}

		f := rules.FiltersFromQuery(values)

		if f.PolicySpaceID == nil || *f.PolicySpaceID != "aml-monitoring" {
			t.Errorf("PolicySpaceID = %v, want aml-monitoring", f.PolicySpaceID)
		}
		if f.DocumentID == nil || *f.DocumentID != docID {
			t.Errorf("DocumentID = %v, want %v", f.DocumentID, docID)
		}
		if f.RuleType == nil || *f.RuleType != "compliance" {
			t.Errorf("RuleType = %v, want compliance", f.RuleType)
		}
		if f.Severity == nil || *f.Severity != "high" {
			t.Errorf("Severity = %v, want high", f.Severity)
		}
		if f.GeneratedBy == nil || *f.GeneratedBy != "analyst" {
			t.Errorf("GeneratedBy = %v, want analyst", f.GeneratedBy)
		}
		if f.IsActive == nil || *f.IsActive != true {
			t.Errorf("IsActive = %v, want true", f.IsActive)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := rules.FiltersFromQuery(url.Values{})

		if f.PolicySpaceID != nil || f.DocumentID != nil || f.RuleType != nil ||
			f.Severity != nil || f.GeneratedBy != nil || f.IsActive != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("invalid document_id ignored", func(t *testing.T) {
		f := rules.FiltersFromQuery(url.Values{"document_id": {"not-a-uuid"}})

		if f.DocumentID != nil {
			t.Errorf("DocumentID = %v, want nil", f.DocumentID)
		}
	})

	t.Run("invalid is_active ignored", func(t *testing.T) {
		f := rules.FiltersFromQuery(url.Values{"is_active": {"maybe"}})

		if f.IsActive != nil {
			t.Errorf("IsActive = %v, want nil", f.IsActive)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "rules", "r").
		Project("policy_space_id", "PolicySpaceID").
		Project("document_id", "DocumentID").
		Project("rule_type", "RuleType").
		Project("severity", "Severity").
		Project("generated_by", "GeneratedBy").
		Project("is_active", "IsActive")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := rules.Filters{}
		f.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT r.policy_space_id, r.document_id, r.rule_type, r.severity, r.generated_by, r.is_active FROM public.rules r"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("single equals filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := rules.Filters{Severity: ptr("high")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 {
			t.Fatalf("args length = %d, want 1", len(args))
		}
		if v, ok := args[0].(*string); !ok || *v != "high" {
			t.Errorf("args[0] = %v, want *high", args[0])
		}
	})

	t.Run("multiple filters combine with AND", func(t *testing.T) {
		docID := uuid.New()
		b := query.NewBuilder(projection)
		f := rules.Filters{
			PolicySpaceID: ptr("aml-monitoring"),
			DocumentID:    &docID,
			IsActive:      ptr(true),
		}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 3 {
			t.Errorf("args length = %d, want 3", len(args))
		}
	})
}
