package rules

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "rules", "r").
	Project("id", "ID").
	Project("policy_space_id", "PolicySpaceID").
	Project("document_id", "DocumentID").
	Project("rule_name", "RuleName").
	Project("rule_description", "RuleDescription").
	Project("rule_content", "RuleContent").
	Project("rule_type", "RuleType").
	Project("severity", "Severity").
	Project("generated_by", "GeneratedBy").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for rule queries. Nil
// fields are ignored.
type Filters struct {
	PolicySpaceID *string    `json:"policy_space_id,omitempty"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	RuleType      *string    `json:"rule_type,omitempty"`
	Severity      *string    `json:"severity,omitempty"`
	GeneratedBy   *string    `json:"generated_by,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("PolicySpaceID", f.PolicySpaceID).
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("RuleType", f.RuleType).
		WhereEquals("Severity", f.Severity).
		WhereEquals("GeneratedBy", f.GeneratedBy).
		WhereEquals("IsActive", f.IsActive)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if ps := values.Get("policy_space_id"); ps != "" {
		f.PolicySpaceID = &ps
	}

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}

	if rt := values.Get("rule_type"); rt != "" {
		f.RuleType = &rt
	}

	if s := values.Get("severity"); s != "" {
		f.Severity = &s
	}

	if gb := values.Get("generated_by"); gb != "" {
		f.GeneratedBy = &gb
	}

	if a := values.Get("is_active"); a != "" {
		if active, err := strconv.ParseBool(a); err == nil {
			f.IsActive = &active
		}
	}

	return f
}

func scanRule(s repository.Scanner) (Rule, error) {
	var r Rule
	err := s.Scan(
		&r.ID,
		&r.PolicySpaceID,
		&r.DocumentID,
		&r.RuleName,
		&r.RuleDescription,
		&r.RuleContent,
		&r.RuleType,
		&r.Severity,
		&r.GeneratedBy,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
