package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/formatting"
)

// Extractor is the rule extraction stage. It runs one generation call
// per compliance theme (bounded fan-out, theme order preserved) plus a
// final call for general cross-cutting requirements.
type Extractor struct {
	rt *Runtime
}

// NewExtractor creates the rule extraction stage.
func NewExtractor(rt *Runtime) *Extractor {
	return &Extractor{rt: rt}
}

func (e *Extractor) Name() string  { return StageRuleExtraction }
func (e *Extractor) Title() string { return "Rule Extractor" }

func (e *Extractor) Describe() string {
	return "Extracts specific compliance rules and requirements from regulatory text"
}

func (e *Extractor) Process(ctx context.Context, input any, pctx *Context) Result {
	text, ok := coerce[string](input)
	if !ok {
		return Failf("rule extraction failed: %v: expected document text", ErrBadInput)
	}

	var themes []ComplianceTheme
	if analysis := pctx.Analysis(); analysis != nil {
		themes = analysis.ComplianceThemes
	}

	e.rt.Logger.InfoContext(ctx, "extracting rules", "themes", len(themes))

	themeRules, err := e.extractThemeRules(ctx, text, themes)
	if err != nil {
		return Failf("rule extraction failed: %v", err)
	}

	generalRules, err := e.extractGeneralRequirements(ctx, text)
	if err != nil {
		return Failf("rule extraction failed: %v", err)
	}

	rules := append(themeRules, generalRules...)

	data := &ExtractionData{
		ExtractedRules: rules,
		ExtractionSummary: ExtractionSummary{
			TotalRules:          len(rules),
			ThemesProcessed:     len(themes),
			GeneralRequirements: len(generalRules),
		},
	}

	return Succeed(data, map[string]any{
		"agent":           e.Title(),
		"rules_extracted": len(rules),
	})
}

func (e *Extractor) Digest(data any) map[string]any {
	d, ok := coerce[*ExtractionData](data)
	if !ok {
		return map[string]any{}
	}

	return map[string]any{
		"rules_extracted":  len(d.ExtractedRules),
		"themes_processed": d.ExtractionSummary.ThemesProcessed,
	}
}

type rulesResponse struct {
	Rules []ExtractedRule `json:"rules"`
}

// extractThemeRules fans out one generation call per theme and stitches
// results back in theme order.
func (e *Extractor) extractThemeRules(
	ctx context.Context,
	text string,
	themes []ComplianceTheme,
) ([]ExtractedRule, error) {
	if len(themes) == 0 {
		return nil, nil
	}

	perTheme := make([][]ExtractedRule, len(themes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.rt.Config.GenerationConcurrency, 1))

	for i, theme := range themes {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rules, err := e.extractTheme(gctx, text, theme)
			if err != nil {
				return fmt.Errorf("theme %q: %w", theme.Theme, err)
			}

			perTheme[i] = rules
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rules []ExtractedRule
	for i, themeRules := range perTheme {
		rules = append(rules, themeRules...)
		e.rt.Logger.Info(
			"theme rules extracted",
			"theme", themes[i].Theme,
			"rules", len(themeRules),
		)
	}

	return rules, nil
}

func (e *Extractor) extractTheme(
	ctx context.Context,
	text string,
	theme ComplianceTheme,
) ([]ExtractedRule, error) {
	system, spec, err := e.rt.compose(ctx, prompts.StageExtractTheme)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Extract specific compliance rules related to the theme %q from this regulatory document.\n\n"+
			"Theme description: %s\nKey terms to look for: %s\n\n%s\n\nDocument text:\n%s",
		theme.Theme,
		theme.Description,
		strings.Join(theme.Keywords, ", "),
		spec,
		prefix(text, e.rt.Config.ExtractionPrefixLimit),
	)

	resp, err := e.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	parsed, err := formatting.Parse[rulesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parse extracted rules: %w", err)
	}

	// Rules inherit the theme they were extracted for unless the model
	// already set one.
	for i := range parsed.Rules {
		if parsed.Rules[i].ComplianceTheme == "" {
			parsed.Rules[i].ComplianceTheme = theme.Theme
		}
	}

	return parsed.Rules, nil
}

func (e *Extractor) extractGeneralRequirements(ctx context.Context, text string) ([]ExtractedRule, error) {
	system, spec, err := e.rt.compose(ctx, prompts.StageExtractGeneral)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Extract general compliance requirements from this regulatory document that apply broadly across the organization.\n\n"+
			"Look for:\n- Record keeping requirements\n- Reporting obligations\n- Notification requirements\n"+
			"- Training requirements\n- Audit requirements\n- Governance requirements\n\n%s\n\nDocument text:\n%s",
		spec,
		prefix(text, e.rt.Config.ExtractionPrefixLimit),
	)

	resp, err := e.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return nil, fmt.Errorf("general extraction call: %w", err)
	}

	parsed, err := formatting.Parse[rulesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parse general rules: %w", err)
	}

	for i := range parsed.Rules {
		if parsed.Rules[i].ComplianceTheme == "" {
			parsed.Rules[i].ComplianceTheme = "general"
		}
	}

	return parsed.Rules, nil
}
