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

// Synthesizer is the rule synthesis stage. Validated rules are grouped
// by theme and priority for coherent processing order, expanded
// independently into comprehensive final rules, then enriched with
// sequential identifiers and document context.
type Synthesizer struct {
	rt *Runtime
}

// NewSynthesizer creates the rule synthesis stage.
func NewSynthesizer(rt *Runtime) *Synthesizer {
	return &Synthesizer{rt: rt}
}

func (s *Synthesizer) Name() string  { return StageRuleSynthesis }
func (s *Synthesizer) Title() string { return "Rule Synthesizer" }

func (s *Synthesizer) Describe() string {
	return "Synthesizes validated rules into final, actionable compliance rules"
}

func (s *Synthesizer) Process(ctx context.Context, input any, pctx *Context) Result {
	validated, ok := coerce[[]ValidatedRule](input)
	if !ok {
		return Failf("rule synthesis failed: %v: expected validated rules", ErrBadInput)
	}

	if len(validated) == 0 {
		s.rt.Logger.WarnContext(ctx, "no validated rules to synthesize")
		return Succeed(&SynthesisData{FinalRules: []FinalRule{}}, map[string]any{
			"agent": s.Title(),
		})
	}

	s.rt.Logger.InfoContext(ctx, "synthesizing rules", "rules", len(validated))

	groups := GroupBy(validated, synthesisGroupKey)

	var ordered []ValidatedRule
	for _, key := range groups.Keys() {
		group := groups.Group(key)
		s.rt.Logger.InfoContext(
			ctx, "synthesizing group",
			"group", key,
			"rules", len(group),
		)
		ordered = append(ordered, group...)
	}

	final, err := s.synthesizeRules(ctx, ordered)
	if err != nil {
		return Failf("rule synthesis failed: %v", err)
	}

	enrichRules(final, pctx.Analysis())

	data := &SynthesisData{
		FinalRules:       final,
		SynthesisSummary: summarizeSynthesis(final, validated),
	}

	return Succeed(data, map[string]any{
		"agent":             s.Title(),
		"rules_synthesized": len(final),
	})
}

func (s *Synthesizer) Digest(data any) map[string]any {
	d, ok := coerce[*SynthesisData](data)
	if !ok {
		return map[string]any{}
	}

	return map[string]any{
		"final_rules_generated": len(d.FinalRules),
		"completeness_score":    d.SynthesisSummary.SynthesisOverview.AverageRuleCompleteness,
		"implementation_phases": d.SynthesisSummary.ImplementationOverview.EstimatedImplementationPhases,
	}
}

// synthesisGroupKey combines compliance theme and implementation
// priority. Empty values fall back to "general" and "p4".
func synthesisGroupKey(rule ValidatedRule) string {
	theme := rule.OriginalRule.ComplianceTheme
	if theme == "" {
		theme = "general"
	}

	priority := rule.Classification.ImplementationPriority
	if priority == "" {
		priority = "p4"
	}

	return fmt.Sprintf("%s_%s", theme, priority)
}

// synthesizeRules expands every rule concurrently, preserving group order.
func (s *Synthesizer) synthesizeRules(ctx context.Context, rules []ValidatedRule) ([]FinalRule, error) {
	final := make([]FinalRule, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.rt.Config.GenerationConcurrency, 1))

	for i, rule := range rules {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			expanded, err := s.synthesizeRule(gctx, rule)
			if err != nil {
				return fmt.Errorf("rule %d: %w", i+1, err)
			}

			final[i] = expanded
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return final, nil
}

func (s *Synthesizer) synthesizeRule(ctx context.Context, rule ValidatedRule) (FinalRule, error) {
	system, spec, err := s.rt.compose(ctx, prompts.StageSynthesizeRule)
	if err != nil {
		return FinalRule{}, err
	}

	original := rule.OriginalRule
	cls := rule.Classification

	prompt := fmt.Sprintf(
		"Transform this validated compliance rule into a comprehensive, actionable final rule "+
			"with all necessary implementation details.\n\n"+
			"Original Rule:\nTitle: %s\nDescription: %s\nType: %s\nObligations: %s\n"+
			"Target Entities: %s\nPenalties: %s\nSource Section: %s\nLegal Basis: %s\n\n"+
			"Classification:\nRisk Level: %s\nPriority: %s\nComplexity: %s\n\n%s",
		original.RuleTitle,
		original.RuleDescription,
		original.RequirementType,
		strings.Join(original.KeyObligations, "; "),
		strings.Join(original.TargetEntities, "; "),
		strings.Join(original.Penalties, "; "),
		original.SourceSection,
		original.LegalBasis,
		cls.RiskLevel,
		cls.ImplementationPriority,
		cls.Complexity,
		spec,
	)

	resp, err := s.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return FinalRule{}, fmt.Errorf("synthesis call: %w", err)
	}

	parsed, err := formatting.Parse[FinalRule](resp)
	if err != nil {
		return FinalRule{}, fmt.Errorf("parse final rule: %w", err)
	}

	return parsed, nil
}

// enrichRules assigns sequential identifiers, carries document context
// into source information, and stamps synthesis metadata.
func enrichRules(rules []FinalRule, analysis *AnalysisData) {
	for i := range rules {
		rules[i].RuleID = fmt.Sprintf("RULE_%03d", i+1)

		if analysis != nil {
			rules[i].SourceInformation.DocumentType = fallback(
				analysis.StructureAnalysis.DocumentType, "unknown",
			)
			rules[i].SourceInformation.RegulatoryAuthority = fallback(
				analysis.StructureAnalysis.RegulatoryAuthority, "unknown",
			)
		}

		rules[i].SynthesisMetadata = SynthesisMetadata{
			CreatedBy:        "AI Rule Generation System",
			SynthesisVersion: "1.0",
			QualityAssurance: "multi-agent-validated",
			LastReviewed:     "auto-generated",
		}
	}
}

func fallback(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

// summarizeSynthesis aggregates distributions, rollout estimates, and
// quality indicators for the final rule set.
func summarizeSynthesis(final []FinalRule, original []ValidatedRule) SynthesisSummary {
	if len(final) == 0 {
		return SynthesisSummary{}
	}

	highPriority := 0
	critical := 0
	phases := map[string]int{
		"phase_1_immediate":   0,
		"phase_2_short_term":  0,
		"phase_3_medium_term": 0,
		"phase_4_long_term":   0,
	}

	withMonitoring := 0
	withAutomation := 0
	withGuidance := 0

	stakeholders := map[string]struct{}{}

	for _, rule := range final {
		switch rule.ImplementationPriority {
		case "p1":
			phases["phase_1_immediate"]++
			highPriority++
		case "p2":
			phases["phase_2_short_term"]++
			highPriority++
		case "p3":
			phases["phase_3_medium_term"]++
		default:
			phases["phase_4_long_term"]++
		}

		if rule.RiskLevel == "critical" {
			critical++
		}

		if hasMonitoring(rule) {
			withMonitoring++
		}
		if len(rule.TechnologyRequirements.AutomationOpportunities) > 0 {
			withAutomation++
		}
		if len(rule.ImplementationGuidance.Steps) > 0 {
			withGuidance++
		}

		if owner := rule.StakeholderResponsibilities.PrimaryOwner; owner != "" {
			stakeholders[owner] = struct{}{}
		}
		for _, role := range rule.StakeholderResponsibilities.SupportingRoles {
			stakeholders[role] = struct{}{}
		}
	}

	return SynthesisSummary{
		SynthesisOverview: SynthesisOverview{
			TotalFinalRules:         len(final),
			OriginalRulesProcessed:  len(original),
			SynthesisSuccessRate:    100.0,
			AverageRuleCompleteness: completenessScore(final),
		},
		RuleDistribution: RuleDistribution{
			RiskLevels: CountBy(final, func(r FinalRule) string {
				return fallback(r.RiskLevel, "unknown")
			}),
			ImplementationPriorities: CountBy(final, func(r FinalRule) string {
				return fallback(r.ImplementationPriority, "unknown")
			}),
			ComplianceThemes: CountBy(final, func(r FinalRule) string {
				return fallback(r.ComplianceTheme, "unknown")
			}),
		},
		ImplementationOverview: ImplementationOverview{
			HighPriorityRules:             highPriority,
			CriticalRiskRules:             critical,
			EstimatedImplementationPhases: phases,
			KeyStakeholderGroups:          sortedKeys(stakeholders),
		},
		QualityIndicators: QualityIndicators{
			RulesWithMonitoring:       withMonitoring,
			RulesWithAutomation:       withAutomation,
			RulesWithCompleteGuidance: withGuidance,
		},
	}
}

// completenessScore averages, per rule, the fraction of the five key
// sections that are populated, as a percentage rounded to two decimals.
func completenessScore(rules []FinalRule) float64 {
	if len(rules) == 0 {
		return 0
	}

	total := 0.0
	for _, rule := range rules {
		present := 0
		if len(rule.ImplementationGuidance.Steps) > 0 ||
			len(rule.ImplementationGuidance.SuccessCriteria) > 0 {
			present++
		}
		if hasMonitoring(rule) {
			present++
		}
		if len(rule.ViolationDetection.DetectionCriteria) > 0 ||
			len(rule.ViolationDetection.RedFlags) > 0 {
			present++
		}
		if len(rule.ComplianceEvidence.RequiredDocumentation) > 0 ||
			rule.ComplianceEvidence.RecordRetention != "" {
			present++
		}
		if rule.StakeholderResponsibilities.PrimaryOwner != "" ||
			len(rule.StakeholderResponsibilities.SupportingRoles) > 0 {
			present++
		}

		total += float64(present) / 5 * 100
	}

	return math.Round(total/float64(len(rules))*100) / 100
}

func hasMonitoring(rule FinalRule) bool {
	return rule.MonitoringRequirements.Frequency != "" ||
		len(rule.MonitoringRequirements.Methods) > 0
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
