package pipeline

import "context"

// Stage names in execution order.
const (
	StageDocumentAnalysis   = "document_analysis"
	StageRuleExtraction     = "rule_extraction"
	StageRuleClassification = "rule_classification"
	StageRuleValidation     = "rule_validation"
	StageRuleSynthesis      = "rule_synthesis"
)

// Stage is the uniform contract each pipeline stage implements. Process
// never panics outward and never mutates the Context on failure; the
// orchestrator merges successful Data into the Context between stages.
// Digest reduces stage Data to the compact summary emitted with the
// stage_completed event.
type Stage interface {
	Name() string
	Title() string
	Describe() string
	Process(ctx context.Context, input any, pctx *Context) Result
	Digest(data any) map[string]any
}

// coerce asserts a stage input to its expected type. Stages accept input
// handed over by the orchestrator but guard the boundary so a wiring
// mistake surfaces as a failed Result rather than a panic.
func coerce[T any](input any) (T, bool) {
	v, ok := input.(T)
	return v, ok
}
