package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/formatting"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Header and numbering patterns used to estimate section count.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\.`),
	regexp.MustCompile(`(?i)^section \d+`),
	regexp.MustCompile(`(?i)^article \d+`),
	regexp.MustCompile(`^Part [IVX]+`),
	regexp.MustCompile(`^[A-Z][A-Z\s]{10,}$`),
}

// Analyzer is the document analysis stage. It measures the document,
// then runs two generation calls: one for structure, one for compliance
// themes.
type Analyzer struct {
	rt *Runtime
}

// NewAnalyzer creates the document analysis stage.
func NewAnalyzer(rt *Runtime) *Analyzer {
	return &Analyzer{rt: rt}
}

func (a *Analyzer) Name() string  { return StageDocumentAnalysis }
func (a *Analyzer) Title() string { return "Document Analyzer" }

func (a *Analyzer) Describe() string {
	return "Analyzes document structure and identifies key compliance sections"
}

func (a *Analyzer) Process(ctx context.Context, input any, _ *Context) Result {
	text, ok := coerce[string](input)
	if !ok {
		return Failf("document analysis failed: %v: expected document text", ErrBadInput)
	}

	stats := DocumentStatsFor(text)
	a.rt.Logger.InfoContext(
		ctx, "document measured",
		"words", stats.WordCount,
		"sections", stats.SectionCount,
	)

	structure, err := a.analyzeStructure(ctx, text)
	if err != nil {
		return Failf("document analysis failed: %v", err)
	}

	themes, err := a.identifyThemes(ctx, text)
	if err != nil {
		return Failf("document analysis failed: %v", err)
	}

	data := &AnalysisData{
		DocumentStats:     stats,
		StructureAnalysis: structure,
		ComplianceThemes:  themes,
	}

	return Succeed(data, map[string]any{
		"agent":            a.Title(),
		"themes_identified": len(themes),
	})
}

func (a *Analyzer) Digest(data any) map[string]any {
	d, ok := coerce[*AnalysisData](data)
	if !ok {
		return map[string]any{}
	}

	return map[string]any{
		"themes_identified": len(d.ComplianceThemes),
		"document_sections": d.DocumentStats.SectionCount,
		"document_type":     d.StructureAnalysis.DocumentType,
	}
}

// DocumentStatsFor measures word, section, character, and line counts.
// Section count is floored at 1.
func DocumentStatsFor(text string) DocumentStats {
	sections := 0
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		for _, pattern := range sectionPatterns {
			if pattern.MatchString(line) {
				sections++
				break
			}
		}
	}

	return DocumentStats{
		WordCount:      len(wordPattern.FindAllString(text, -1)),
		SectionCount:   max(sections, 1),
		CharacterCount: len(text),
		LineCount:      strings.Count(text, "\n") + 1,
	}
}

func (a *Analyzer) analyzeStructure(ctx context.Context, text string) (StructureAnalysis, error) {
	system, spec, err := a.rt.compose(ctx, prompts.StageAnalyzeStructure)
	if err != nil {
		return StructureAnalysis{}, err
	}

	prompt := fmt.Sprintf(
		"Analyze the structure of this regulatory document.\n\n%s\n\nDocument text:\n%s",
		spec,
		prefix(text, a.rt.Config.AnalysisPrefixLimit),
	)

	resp, err := a.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return StructureAnalysis{}, fmt.Errorf("structure analysis call: %w", err)
	}

	parsed, err := formatting.Parse[StructureAnalysis](resp)
	if err != nil {
		return StructureAnalysis{}, fmt.Errorf("parse structure analysis: %w", err)
	}

	return parsed, nil
}

type themesResponse struct {
	Themes []ComplianceTheme `json:"themes"`
}

func (a *Analyzer) identifyThemes(ctx context.Context, text string) ([]ComplianceTheme, error) {
	system, spec, err := a.rt.compose(ctx, prompts.StageAnalyzeThemes)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Identify the major compliance themes in this regulatory document.\n\n%s\n\nDocument text:\n%s",
		spec,
		prefix(text, a.rt.Config.AnalysisPrefixLimit),
	)

	resp, err := a.rt.Client.Generate(ctx, prompt, system)
	if err != nil {
		return nil, fmt.Errorf("theme identification call: %w", err)
	}

	parsed, err := formatting.Parse[themesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}

	return parsed.Themes, nil
}
