package rules

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Rule is a persisted compliance rule. RuleContent holds the full
// synthesized rule document as JSON; the scalar columns are the
// queryable projection of it.
type Rule struct {
	ID              uuid.UUID       `json:"id"`
	PolicySpaceID   string          `json:"policy_space_id"`
	DocumentID      *uuid.UUID      `json:"document_id"`
	RuleName        string          `json:"rule_name"`
	RuleDescription string          `json:"rule_description"`
	RuleContent     json.RawMessage `json:"rule_content"`
	RuleType        string          `json:"rule_type"`
	Severity        string          `json:"severity"`
	GeneratedBy     string          `json:"generated_by"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Defaults applied to generate requests.
const (
	DefaultRuleType = "compliance"
	DefaultSeverity = "medium"
)

// GenerateRequest is the payload for the rule generation endpoint.
// RuleType and Severity default when omitted; Severity is only used
// when a generated rule carries no usable risk level of its own.
type GenerateRequest struct {
	DocumentID  uuid.UUID `json:"document_id"`
	GeneratedBy string    `json:"generated_by"`
	RuleType    string    `json:"rule_type,omitempty"`
	Severity    string    `json:"severity,omitempty"`
}

// Normalize applies defaults to omitted optional fields.
func (r GenerateRequest) Normalize() GenerateRequest {
	if r.RuleType == "" {
		r.RuleType = DefaultRuleType
	}
	if r.Severity == "" {
		r.Severity = DefaultSeverity
	}
	return r
}

// CreateCommand carries the data needed to persist one rule.
type CreateCommand struct {
	PolicySpaceID   string
	DocumentID      *uuid.UUID
	RuleName        string
	RuleDescription string
	RuleContent     json.RawMessage
	RuleType        string
	Severity        string
	GeneratedBy     string
}
