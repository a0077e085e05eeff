package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/formatting"
)

// Classifier is the rule classification stage. Rules are classified in
// fixed-size batches with bounded concurrency; batch outputs are stitched
// back in input order.
type Classifier struct {
	rt *Runtime
}

// NewClassifier creates the rule classification stage.
func NewClassifier(rt *Runtime) *Classifier {
	return &Classifier{rt: rt}
}

func (c *Classifier) Name() string  { return StageRuleClassification }
func (c *Classifier) Title() string { return "Rule Classifier" }

func (c *Classifier) Describe() string {
	return "Classifies rules by risk level, urgency, and organizational impact"
}

func (c *Classifier) Process(ctx context.Context, input any, _ *Context) Result {
	rules, ok := coerce[[]ExtractedRule](input)
	if !ok {
		return Failf("rule classification failed: %v: expected extracted rules", ErrBadInput)
	}

	if len(rules) == 0 {
		c.rt.Logger.WarnContext(ctx, "no rules to classify")
		return Succeed(&ClassificationData{ClassifiedRules: []ClassifiedRule{}}, map[string]any{
			"agent": c.Title(),
		})
	}

	c.rt.Logger.InfoContext(ctx, "classifying rules", "rules", len(rules))

	classified, err := ProcessBatches(
		ctx,
		rules,
		c.rt.Config.ClassificationBatchSize,
		c.rt.Config.GenerationConcurrency,
		c.classifyBatch,
	)
	if err != nil {
		return Failf("rule classification failed: %v", err)
	}

	data := &ClassificationData{
		ClassifiedRules:       classified,
		ClassificationSummary: summarizeClassification(classified),
	}

	return Succeed(data, map[string]any{
		"agent":            c.Title(),
		"rules_classified": len(classified),
	})
}

func (c *Classifier) Digest(data any) map[string]any {
	d, ok := coerce[*ClassificationData](data)
	if !ok {
		return map[string]any{}
	}

	return map[string]any{
		"rules_classified":    len(d.ClassifiedRules),
		"high_priority_rules": d.ClassificationSummary.HighPriorityCount,
		"critical_risk_rules": d.ClassificationSummary.RiskDistribution["critical"],
	}
}

type classifiedResponse struct {
	ClassifiedRules []ClassifiedRule `json:"classified_rules"`
}

func (c *Classifier) classifyBatch(
	ctx context.Context,
	batch []ExtractedRule,
	index int,
) ([]ClassifiedRule, error) {
	system, spec, err := c.rt.compose(ctx, prompts.StageClassifyBatch)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Classify these compliance rules across multiple dimensions. "+
			"For each rule, provide comprehensive classification information.\n\n%s\n\nRules to classify:\n%s",
		spec,
		describeRules(batch),
	)

	resp, err := c.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return nil, fmt.Errorf("classification call (batch %d): %w", index+1, err)
	}

	parsed, err := formatting.Parse[classifiedResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parse classified rules (batch %d): %w", index+1, err)
	}

	c.rt.Logger.InfoContext(
		ctx, "batch classified",
		"batch", index+1,
		"rules", len(parsed.ClassifiedRules),
	)

	return parsed.ClassifiedRules, nil
}

// describeRules renders a batch as numbered plain-text summaries for
// the classification prompt.
func describeRules(rules []ExtractedRule) string {
	var sb strings.Builder
	for i, rule := range rules {
		fmt.Fprintf(&sb, "Rule %d:\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", rule.RuleTitle)
		fmt.Fprintf(&sb, "Description: %s\n", rule.RuleDescription)
		fmt.Fprintf(&sb, "Type: %s\n", rule.RequirementType)
		fmt.Fprintf(&sb, "Obligations: %s\n", strings.Join(rule.KeyObligations, "; "))
		fmt.Fprintf(&sb, "Penalties: %s\n\n", strings.Join(rule.Penalties, "; "))
	}
	return sb.String()
}

// summarizeClassification tallies distributions over the fixed risk,
// urgency, and priority enums plus the open compliance-type set.
func summarizeClassification(rules []ClassifiedRule) ClassificationSummary {
	risk := map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0}
	urgency := map[string]int{"immediate": 0, "high": 0, "medium": 0, "low": 0}
	priority := map[string]int{"p1": 0, "p2": 0, "p3": 0, "p4": 0}
	types := map[string]int{}

	for _, rule := range rules {
		cls := rule.Classification

		if level := strings.ToLower(cls.RiskLevel); hasKey(risk, level) {
			risk[level]++
		}
		if u := strings.ToLower(cls.Urgency); hasKey(urgency, u) {
			urgency[u]++
		}
		if p := strings.ToLower(cls.ImplementationPriority); hasKey(priority, p) {
			priority[p]++
		}

		ct := cls.ComplianceType
		if ct == "" {
			ct = "unknown"
		}
		types[ct]++
	}

	return ClassificationSummary{
		TotalRules:                 len(rules),
		RiskDistribution:           risk,
		UrgencyDistribution:        urgency,
		PriorityDistribution:       priority,
		ComplianceTypeDistribution: types,
		HighPriorityCount:          risk["critical"] + risk["high"],
		ImmediateActionCount:       urgency["immediate"] + urgency["high"],
	}
}

func hasKey(m map[string]int, key string) bool {
	_, ok := m[key]
	return ok
}
