package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []string
	fn    func(prompt string, system string) (string, error)
}

func (f *fakeClient) Generate(_ context.Context, prompt string, system string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.fn(prompt, system)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePrompts struct{}

func (fakePrompts) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	return "You are handling " + string(stage) + ".", nil
}

func (fakePrompts) Spec(_ context.Context, _ prompts.Stage) (string, error) {
	return "Respond in JSON.", nil
}

func newRuntime(fn func(prompt string, system string) (string, error)) (*pipeline.Runtime, *fakeClient) {
	client := &fakeClient{fn: fn}
	return &pipeline.Runtime{
		Client:  client,
		Prompts: fakePrompts{},
		Config:  pipeline.Config{}.Normalize(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, client
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func sampleRule(title string) pipeline.ExtractedRule {
	return pipeline.ExtractedRule{
		RuleTitle: title,
		RuleDescription: "Firms must retain complete customer account records " +
			"for no fewer than five years after account closure.",
		ComplianceTheme: "recordkeeping",
		RequirementType: "obligation",
		TargetEntities:  []string{"broker-dealers"},
		KeyObligations:  []string{"retain customer records for five years"},
		Penalties:       []string{"civil monetary penalties"},
		SourceSection:   "Section 4.2",
		LegalBasis:      "17 CFR 240.17a-4",
	}
}

func sampleClassification() pipeline.Classification {
	return pipeline.Classification{
		RiskLevel:              "high",
		Urgency:                "high",
		Complexity:             "medium",
		ImplementationPriority: "p1",
		ComplianceType:         "regulatory",
	}
}

const passingContent = `{"validation_result":"passed","issues":[]}`

// promptTitles extracts "Title: ..." lines from a rendered prompt, in order.
func promptTitles(prompt string) []string {
	var titles []string
	for line := range strings.SplitSeq(prompt, "\n") {
		if title, ok := strings.CutPrefix(line, "Title: "); ok {
			titles = append(titles, title)
		}
	}
	return titles
}

// pipelineResponder answers every generation call a full run makes,
// dispatching on distinctive prompt fragments.
func pipelineResponder(t *testing.T) func(prompt string, system string) (string, error) {
	return func(prompt string, _ string) (string, error) {
		switch {
		case strings.Contains(prompt, "Analyze the structure"):
			return marshal(t, pipeline.StructureAnalysis{
				DocumentType:        "regulation",
				RegulatoryAuthority: "SEC",
			}), nil
		case strings.Contains(prompt, "major compliance themes"):
			return marshal(t, map[string]any{
				"themes": []pipeline.ComplianceTheme{{
					Theme:       "recordkeeping",
					Description: "Record retention and production obligations",
					Keywords:    []string{"records", "retention"},
				}},
			}), nil
		case strings.Contains(prompt, "related to the theme"):
			return marshal(t, map[string]any{
				"rules": []pipeline.ExtractedRule{sampleRule("Customer record retention")},
			}), nil
		case strings.Contains(prompt, "general compliance requirements"):
			return marshal(t, map[string]any{
				"rules": []pipeline.ExtractedRule{sampleRule("Annual compliance training")},
			}), nil
		case strings.Contains(prompt, "Classify these compliance rules"):
			titles := promptTitles(prompt)
			classified := make([]pipeline.ClassifiedRule, len(titles))
			for i, title := range titles {
				classified[i] = pipeline.ClassifiedRule{
					OriginalRule:   sampleRule(title),
					Classification: sampleClassification(),
				}
			}
			return marshal(t, map[string]any{"classified_rules": classified}), nil
		case strings.Contains(prompt, "Validate this compliance rule"):
			return passingContent, nil
		case strings.Contains(prompt, "potential conflicts"):
			return `{"cross_validation_issues":[]}`, nil
		case strings.Contains(prompt, "Transform this validated compliance rule"):
			titles := promptTitles(prompt)
			title := "synthesized rule"
			if len(titles) > 0 {
				title = titles[0]
			}
			return marshal(t, pipeline.FinalRule{
				RuleTitle:              title,
				ComplianceTheme:        "recordkeeping",
				RiskLevel:              "high",
				ImplementationPriority: "p1",
			}), nil
		}
		return "", fmt.Errorf("unmatched prompt: %.80s", prompt)
	}
}
