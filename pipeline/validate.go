package pipeline

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/formatting"
)

// Required rule fields and classification enums checked structurally
// before the generation-backed content pass.
var (
	requiredClassification = []string{
		"risk_level",
		"urgency",
		"complexity",
		"implementation_priority",
	}

	classificationEnums = map[string][]string{
		"risk_level":              {"critical", "high", "medium", "low"},
		"urgency":                 {"immediate", "high", "medium", "low"},
		"complexity":              {"high", "medium", "low"},
		"implementation_priority": {"p1", "p2", "p3", "p4"},
	}
)

// Validator is the rule validation stage. Each classified rule passes
// structural, classification, and content checks; a rule is rejected only
// on critical issues. A final cross-rule pass inspects a bounded sample
// of accepted rules for conflicts and gaps without rejecting any.
type Validator struct {
	rt *Runtime
}

// NewValidator creates the rule validation stage.
func NewValidator(rt *Runtime) *Validator {
	return &Validator{rt: rt}
}

func (v *Validator) Name() string  { return StageRuleValidation }
func (v *Validator) Title() string { return "Rule Validator" }

func (v *Validator) Describe() string {
	return "Validates rules for accuracy, completeness, and actionability"
}

func (v *Validator) Process(ctx context.Context, input any, _ *Context) Result {
	rules, ok := coerce[[]ClassifiedRule](input)
	if !ok {
		return Failf("rule validation failed: %v: expected classified rules", ErrBadInput)
	}

	if len(rules) == 0 {
		v.rt.Logger.WarnContext(ctx, "no rules to validate")
		return Succeed(&ValidationData{ValidatedRules: []ValidatedRule{}}, map[string]any{
			"agent": v.Title(),
		})
	}

	v.rt.Logger.InfoContext(ctx, "validating rules", "rules", len(rules))

	outcomes, err := v.validateRules(ctx, rules)
	if err != nil {
		return Failf("rule validation failed: %v", err)
	}

	var validated []ValidatedRule
	var issues []Issue
	for _, outcome := range outcomes {
		if outcome.valid {
			validated = append(validated, outcome.rule)
		} else {
			issues = append(issues, outcome.issues...)
		}
	}

	crossIssues := v.crossValidate(ctx, validated)
	issues = append(issues, crossIssues...)

	data := &ValidationData{
		ValidatedRules:   validated,
		ValidationReport: buildValidationReport(len(rules), len(validated), issues),
		ValidationIssues: issues,
	}

	v.rt.Logger.InfoContext(
		ctx, "validation complete",
		"passed", len(validated),
		"total", len(rules),
		"issues", len(issues),
	)

	return Succeed(data, map[string]any{
		"agent":             v.Title(),
		"rules_validated":   len(validated),
		"validation_issues": len(issues),
	})
}

func (v *Validator) Digest(data any) map[string]any {
	d, ok := coerce[*ValidationData](data)
	if !ok {
		return map[string]any{}
	}

	return map[string]any{
		"rules_validated":         len(d.ValidatedRules),
		"validation_success_rate": d.ValidationReport.ValidationSummary.ValidationSuccessRate,
		"quality_score":           d.ValidationReport.QualityScore,
	}
}

type validationOutcome struct {
	valid  bool
	rule   ValidatedRule
	issues []Issue
}

// validateRules checks every rule concurrently, preserving input order.
func (v *Validator) validateRules(ctx context.Context, rules []ClassifiedRule) ([]validationOutcome, error) {
	outcomes := make([]validationOutcome, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(v.rt.Config.GenerationConcurrency, 1))

	for i, rule := range rules {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			outcome, err := v.validateRule(gctx, rule, i+1)
			if err != nil {
				return fmt.Errorf("rule %d: %w", i+1, err)
			}

			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (v *Validator) validateRule(
	ctx context.Context,
	rule ClassifiedRule,
	number int,
) (validationOutcome, error) {
	issues := validateStructure(rule.OriginalRule, number)
	issues = append(issues, validateClassification(rule.Classification, number)...)

	content, err := v.validateContent(ctx, rule, number)
	if err != nil {
		return validationOutcome{}, err
	}
	issues = append(issues, content.Issues...)

	enhanced := rule.OriginalRule
	if content.CorrectedRule != nil {
		enhanced = content.CorrectedRule.apply(enhanced)
	}

	critical := 0
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			critical++
		}
	}

	status := "passed"
	if critical > 0 {
		status = "failed"
	}

	return validationOutcome{
		valid: critical == 0,
		rule: ValidatedRule{
			OriginalRule:     enhanced,
			Classification:   rule.Classification,
			ValidationStatus: status,
			ValidationIssues: issues,
		},
		issues: issues,
	}, nil
}

// validateStructure enforces the required fields and flags weak content.
// Missing required fields are critical; short titles and descriptions
// are warnings only.
func validateStructure(rule ExtractedRule, number int) []Issue {
	var issues []Issue

	missing := func(field string) Issue {
		return Issue{
			Type:       "missing_field",
			Severity:   SeverityCritical,
			RuleNumber: number,
			Field:      field,
			Message:    fmt.Sprintf("Required field '%s' is missing or empty", field),
		}
	}

	if rule.RuleTitle == "" {
		issues = append(issues, missing("rule_title"))
	}
	if rule.RuleDescription == "" {
		issues = append(issues, missing("rule_description"))
	}
	if rule.RequirementType == "" {
		issues = append(issues, missing("requirement_type"))
	}
	if len(rule.KeyObligations) == 0 {
		issues = append(issues, missing("key_obligations"))
	}
	if len(rule.TargetEntities) == 0 {
		issues = append(issues, missing("target_entities"))
	}

	if rule.RuleTitle != "" && len(rule.RuleTitle) < 10 {
		issues = append(issues, Issue{
			Type:       "content_quality",
			Severity:   SeverityWarning,
			RuleNumber: number,
			Field:      "rule_title",
			Message:    "Rule title is too short (less than 10 characters)",
		})
	}

	if rule.RuleDescription != "" && len(rule.RuleDescription) < 50 {
		issues = append(issues, Issue{
			Type:       "content_quality",
			Severity:   SeverityWarning,
			RuleNumber: number,
			Field:      "rule_description",
			Message:    "Rule description is too brief (less than 50 characters)",
		})
	}

	return issues
}

// validateClassification checks the four enum-bound dimensions.
// Comparison is case-insensitive; missing and out-of-enum values are
// both critical.
func validateClassification(cls Classification, number int) []Issue {
	values := map[string]string{
		"risk_level":              cls.RiskLevel,
		"urgency":                 cls.Urgency,
		"complexity":              cls.Complexity,
		"implementation_priority": cls.ImplementationPriority,
	}

	var issues []Issue
	for _, field := range requiredClassification {
		value := strings.ToLower(values[field])

		if value == "" {
			issues = append(issues, Issue{
				Type:       "missing_classification",
				Severity:   SeverityCritical,
				RuleNumber: number,
				Field:      field,
				Message:    fmt.Sprintf("Classification field '%s' is missing", field),
			})
			continue
		}

		if !slices.Contains(classificationEnums[field], value) {
			issues = append(issues, Issue{
				Type:       "invalid_classification",
				Severity:   SeverityCritical,
				RuleNumber: number,
				Field:      field,
				Message: fmt.Sprintf(
					"Invalid value '%s' for %s. Valid values: %s",
					value, field, strings.Join(classificationEnums[field], ", "),
				),
			})
		}
	}

	return issues
}

// ruleCorrection is the corrected_rule section of a content validation
// response. Non-zero fields overwrite the original rule.
type ruleCorrection struct {
	RuleTitle         string   `json:"rule_title"`
	RuleDescription   string   `json:"rule_description"`
	KeyObligations    []string `json:"key_obligations"`
	DetectionCriteria []string `json:"detection_criteria"`
	RedFlags          []string `json:"red_flags"`
}

func (c *ruleCorrection) apply(rule ExtractedRule) ExtractedRule {
	if c.RuleTitle != "" {
		rule.RuleTitle = c.RuleTitle
	}
	if c.RuleDescription != "" {
		rule.RuleDescription = c.RuleDescription
	}
	if len(c.KeyObligations) > 0 {
		rule.KeyObligations = c.KeyObligations
	}
	if len(c.DetectionCriteria) > 0 {
		rule.DetectionCriteria = c.DetectionCriteria
	}
	if len(c.RedFlags) > 0 {
		rule.RedFlags = c.RedFlags
	}
	return rule
}

type contentValidation struct {
	ValidationResult   string          `json:"validation_result"`
	Issues             []Issue         `json:"issues"`
	CorrectedRule      *ruleCorrection `json:"corrected_rule"`
	ActionabilityScore float64         `json:"actionability_score"`
	ClarityScore       float64         `json:"clarity_score"`
}

func (v *Validator) validateContent(
	ctx context.Context,
	rule ClassifiedRule,
	number int,
) (contentValidation, error) {
	system, spec, err := v.rt.compose(ctx, prompts.StageValidateContent)
	if err != nil {
		return contentValidation{}, err
	}

	original := rule.OriginalRule
	cls := rule.Classification

	prompt := fmt.Sprintf(
		"Validate this compliance rule for accuracy, completeness, and actionability. "+
			"Identify any issues and suggest improvements.\n\n"+
			"Rule to validate:\nTitle: %s\nDescription: %s\nType: %s\nObligations: %s\n"+
			"Target Entities: %s\nPenalties: %s\nDocumentation Required: %s\n\n"+
			"Classification:\nRisk Level: %s\nUrgency: %s\nComplexity: %s\n\n%s",
		original.RuleTitle,
		original.RuleDescription,
		original.RequirementType,
		strings.Join(original.KeyObligations, "; "),
		strings.Join(original.TargetEntities, "; "),
		strings.Join(original.Penalties, "; "),
		strings.Join(original.DocumentationRequired, "; "),
		cls.RiskLevel,
		cls.Urgency,
		cls.Complexity,
		spec,
	)

	resp, err := v.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return contentValidation{}, fmt.Errorf("content validation call: %w", err)
	}

	parsed, err := formatting.Parse[contentValidation](resp)
	if err != nil {
		return contentValidation{}, fmt.Errorf("parse content validation: %w", err)
	}

	for i := range parsed.Issues {
		if parsed.Issues[i].RuleNumber == 0 {
			parsed.Issues[i].RuleNumber = number
		}
	}

	return parsed, nil
}

type crossValidationResponse struct {
	CrossValidationIssues []Issue  `json:"cross_validation_issues"`
	OverallCoherence      string   `json:"overall_coherence"`
	Recommendations       []string `json:"recommendations"`
}

// crossValidate inspects a bounded sample of accepted rules for
// conflicts, overlaps, and gaps. A failed pass degrades to zero issues;
// it never rejects rules or fails the stage.
func (v *Validator) crossValidate(ctx context.Context, validated []ValidatedRule) []Issue {
	if len(validated) < 2 {
		return nil
	}

	sample := validated[:min(len(validated), v.rt.Config.CrossValidationSample)]

	var sb strings.Builder
	for i, rule := range sample {
		fmt.Fprintf(
			&sb, "Rule %d: %s - %s\n",
			i+1, rule.OriginalRule.RuleTitle, rule.OriginalRule.ComplianceTheme,
		)
	}

	system, spec, err := v.rt.compose(ctx, prompts.StageValidateCross)
	if err != nil {
		v.rt.Logger.WarnContext(ctx, "cross-validation skipped", "error", err)
		return nil
	}

	prompt := fmt.Sprintf(
		"Analyze these compliance rules for potential conflicts, overlaps, or gaps. "+
			"Identify any issues that could cause problems during implementation.\n\n"+
			"Rules to analyze:\n%s\n%s",
		sb.String(),
		spec,
	)

	resp, err := v.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		v.rt.Logger.WarnContext(ctx, "cross-validation failed", "error", err)
		return nil
	}

	parsed, err := formatting.Parse[crossValidationResponse](resp)
	if err != nil {
		v.rt.Logger.WarnContext(ctx, "cross-validation parse failed", "error", err)
		return nil
	}

	return parsed.CrossValidationIssues
}

// buildValidationReport aggregates counts and the quality score.
func buildValidationReport(total int, valid int, issues []Issue) ValidationReport {
	var critical, warning, info int
	breakdown := map[string]int{}

	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		case SeverityInfo:
			info++
		}

		t := issue.Type
		if t == "" {
			t = "unknown"
		}
		breakdown[t]++
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(valid) / float64(total) * 100
	}

	return ValidationReport{
		ValidationSummary: ValidationSummary{
			TotalRulesProcessed:   total,
			RulesPassedValidation: valid,
			RulesFailedValidation: total - valid,
			ValidationSuccessRate: successRate,
		},
		IssueSummary: IssueSummary{
			TotalIssues:    len(issues),
			CriticalIssues: critical,
			WarningIssues:  warning,
			InfoIssues:     info,
		},
		IssueBreakdown: breakdown,
		QualityScore:   qualityScore(valid, total, critical, warning),
	}
}

// qualityScore starts from the pass rate percentage and deducts 5 points
// per critical issue and 2 per warning, floored at zero and rounded to
// two decimals.
func qualityScore(valid int, total int, critical int, warning int) float64 {
	if total == 0 {
		return 0
	}

	base := float64(valid) / float64(total) * 100
	score := base - float64(critical*5) - float64(warning*2)

	return math.Round(math.Max(0, score)*100) / 100
}
