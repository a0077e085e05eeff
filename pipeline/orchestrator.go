package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

const (
	keyRunContext   = "run_context"
	keyDocumentText = "document_text"
)

// Orchestrator coordinates the five pipeline stages over a linear state
// graph and streams progress events. Stages run strictly in order; the
// first failure short-circuits the run with a single terminal error
// event.
type Orchestrator struct {
	rt     *Runtime
	stages []Stage
}

// New creates an Orchestrator with the standard five-stage pipeline.
func New(rt *Runtime) *Orchestrator {
	rt.Config = rt.Config.Normalize()

	return &Orchestrator{
		rt: rt,
		stages: []Stage{
			NewAnalyzer(rt),
			NewExtractor(rt),
			NewClassifier(rt),
			NewValidator(rt),
			NewSynthesizer(rt),
		},
	}
}

// Start messages per stage, emitted with stage_started events.
var stageMessages = map[string]string{
	StageDocumentAnalysis:   "Analyzing document structure and compliance themes...",
	StageRuleExtraction:     "Extracting specific compliance rules and requirements...",
	StageRuleClassification: "Classifying rules by risk level, urgency, and implementation priority...",
	StageRuleValidation:     "Validating rules for accuracy, completeness, and actionability...",
	StageRuleSynthesis:      "Synthesizing final actionable compliance rules...",
}

// Run executes the pipeline for a document and returns the event stream.
// The channel carries pipeline_started, per-stage progress, and exactly
// one terminal event (pipeline_completed or error) before closing.
// Cancelling ctx stops the run; nothing is emitted after cancellation.
func (o *Orchestrator) Run(ctx context.Context, documentText string, runID string) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				o.rt.Logger.ErrorContext(ctx, "pipeline panic", "run_id", runID, "panic", r)
				emit(ctx, events, errorEvent("Pipeline execution failed", []string{fmt.Sprint(r)}))
			}
		}()

		o.run(ctx, events, documentText, runID)
	}()

	return events
}

func (o *Orchestrator) run(ctx context.Context, events chan<- Event, documentText string, runID string) {
	started := time.Now()
	pctx := NewContext(runID)

	o.rt.Logger.InfoContext(ctx, "pipeline started", "run_id", runID)

	emit(ctx, events, progressEvent(EventPipelineStarted, map[string]any{
		"message":      "Starting multi-agent rule generation pipeline",
		"total_stages": pctx.TotalStages,
		"stages":       StageNames(),
	}))

	// Captured by the failing node so the terminal event survives any
	// wrapping the graph applies to node errors.
	var failure *stageError

	graph, err := o.buildGraph(ctx, events, pctx, documentText, &failure)
	if err != nil {
		emit(ctx, events, errorEvent("Pipeline execution failed", []string{err.Error()}))
		return
	}

	initial := state.New(nil)
	initial = initial.Set(keyRunContext, pctx)
	initial = initial.Set(keyDocumentText, documentText)

	if _, err := graph.Execute(ctx, initial); err != nil {
		var se *stageError
		if failure != nil {
			se = failure
		} else {
			errors.As(err, &se)
		}

		if se != nil {
			emit(ctx, events, errorEvent(se.message, se.details))
		} else {
			emit(ctx, events, errorEvent("Pipeline execution failed", []string{err.Error()}))
		}
		return
	}

	var finalRules []FinalRule
	if synthesis := pctx.Synthesis(); synthesis != nil {
		finalRules = synthesis.FinalRules
	}

	o.rt.Logger.InfoContext(
		ctx, "pipeline completed",
		"run_id", runID,
		"rules", len(finalRules),
		"elapsed", time.Since(started),
	)

	emit(ctx, events, progressEvent(EventPipelineCompleted, map[string]any{
		"message":               "Multi-agent rule generation completed successfully",
		"pipeline_summary":      pipelineSummary(pctx, time.Since(started)),
		"final_rules":           finalRules,
		"total_rules_generated": len(finalRules),
	}))
}

// buildGraph wires the stages into a linear graph. Nodes capture the
// run-local context and event channel, so a graph is built per run.
func (o *Orchestrator) buildGraph(
	ctx context.Context,
	events chan<- Event,
	pctx *Context,
	documentText string,
	failure **stageError,
) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("rule-generation")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	for i, stage := range o.stages {
		node := o.stageNode(events, pctx, documentText, stage, i+1, failure)
		if err := graph.AddNode(stage.Name(), node); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(o.stages); i++ {
		if err := graph.AddEdge(o.stages[i-1].Name(), o.stages[i].Name(), nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint(o.stages[0].Name()); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(o.stages[len(o.stages)-1].Name()); err != nil {
		return nil, err
	}

	return graph, nil
}

// stageNode wraps a Stage as a graph node: emit stage_started, process,
// halt on failure, commit data, emit stage_completed with the digest.
func (o *Orchestrator) stageNode(
	events chan<- Event,
	pctx *Context,
	documentText string,
	stage Stage,
	number int,
	failure **stageError,
) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		pctx.CurrentStage = number

		emit(ctx, events, progressEvent(EventStageStarted, map[string]any{
			"stage":      number,
			"stage_name": stage.Name(),
			"agent":      stage.Title(),
			"message":    stageMessages[stage.Name()],
		}))

		input := stageInput(stage.Name(), documentText, pctx)

		result := stage.Process(ctx, input, pctx)
		if !result.Success {
			se := &stageError{
				name:    stage.Name(),
				message: failureMessage(stage.Name()),
				details: result.Errors,
			}
			*failure = se
			return s, se
		}

		pctx.commit(result.Data)

		emit(ctx, events, progressEvent(EventStageCompleted, map[string]any{
			"stage":          number,
			"stage_name":     stage.Name(),
			"result_summary": stage.Digest(result.Data),
		}))

		return s, nil
	})
}

// stageInput selects each stage's input: raw document text for analysis
// and extraction, the prior stage's rule list thereafter.
func stageInput(name string, documentText string, pctx *Context) any {
	switch name {
	case StageRuleClassification:
		if extraction := pctx.Extraction(); extraction != nil {
			return extraction.ExtractedRules
		}
		return []ExtractedRule{}
	case StageRuleValidation:
		if classification := pctx.Classification(); classification != nil {
			return classification.ClassifiedRules
		}
		return []ClassifiedRule{}
	case StageRuleSynthesis:
		if validation := pctx.Validation(); validation != nil {
			return validation.ValidatedRules
		}
		return []ValidatedRule{}
	default:
		return documentText
	}
}

// pipelineSummary merges the per-stage summaries recorded in the context.
func pipelineSummary(pctx *Context, elapsed time.Duration) map[string]any {
	summary := map[string]any{
		"execution_overview": map[string]any{
			"total_stages_completed": pctx.TotalStages,
			"pipeline_success":       true,
			"processing_time":        elapsed.Round(time.Millisecond).String(),
		},
	}

	if analysis := pctx.Analysis(); analysis != nil {
		summary[StageDocumentAnalysis] = map[string]any{
			"document_stats":    analysis.DocumentStats,
			"themes_identified": len(analysis.ComplianceThemes),
			"document_type":     fallback(analysis.StructureAnalysis.DocumentType, "unknown"),
		}
	}

	if extraction := pctx.Extraction(); extraction != nil {
		summary[StageRuleExtraction] = extraction.ExtractionSummary
	}

	if classification := pctx.Classification(); classification != nil {
		summary[StageRuleClassification] = classification.ClassificationSummary
	}

	if validation := pctx.Validation(); validation != nil {
		summary[StageRuleValidation] = validation.ValidationReport
	}

	if synthesis := pctx.Synthesis(); synthesis != nil {
		summary[StageRuleSynthesis] = synthesis.SynthesisSummary
	}

	return summary
}
