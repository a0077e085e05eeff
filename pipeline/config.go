package pipeline

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/prompts"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/generation"
)

// Default tunable values. Prefix limits bound how much document text is
// sent per analysis and extraction call; batch size and sample size bound
// classification fan-out and the cross-validation pass.
const (
	DefaultAnalysisPrefixLimit     = 4000
	DefaultExtractionPrefixLimit   = 6000
	DefaultClassificationBatchSize = 5
	DefaultCrossValidationSample   = 20
	DefaultGenerationConcurrency   = 4
)

// Config holds the pipeline tunables. Zero values are replaced with
// defaults by Normalize.
type Config struct {
	AnalysisPrefixLimit     int `toml:"analysis_prefix_limit" json:"analysis_prefix_limit"`
	ExtractionPrefixLimit   int `toml:"extraction_prefix_limit" json:"extraction_prefix_limit"`
	ClassificationBatchSize int `toml:"classification_batch_size" json:"classification_batch_size"`
	CrossValidationSample   int `toml:"cross_validation_sample" json:"cross_validation_sample"`
	GenerationConcurrency   int `toml:"generation_concurrency" json:"generation_concurrency"`
}

// Merge returns a copy with positive overlay fields overriding the
// receiver's values.
func (c Config) Merge(overlay Config) Config {
	if overlay.AnalysisPrefixLimit > 0 {
		c.AnalysisPrefixLimit = overlay.AnalysisPrefixLimit
	}
	if overlay.ExtractionPrefixLimit > 0 {
		c.ExtractionPrefixLimit = overlay.ExtractionPrefixLimit
	}
	if overlay.ClassificationBatchSize > 0 {
		c.ClassificationBatchSize = overlay.ClassificationBatchSize
	}
	if overlay.CrossValidationSample > 0 {
		c.CrossValidationSample = overlay.CrossValidationSample
	}
	if overlay.GenerationConcurrency > 0 {
		c.GenerationConcurrency = overlay.GenerationConcurrency
	}
	return c
}

// Normalize returns a copy with defaults applied to non-positive fields.
func (c Config) Normalize() Config {
	if c.AnalysisPrefixLimit <= 0 {
		c.AnalysisPrefixLimit = DefaultAnalysisPrefixLimit
	}
	if c.ExtractionPrefixLimit <= 0 {
		c.ExtractionPrefixLimit = DefaultExtractionPrefixLimit
	}
	if c.ClassificationBatchSize <= 0 {
		c.ClassificationBatchSize = DefaultClassificationBatchSize
	}
	if c.CrossValidationSample <= 0 {
		c.CrossValidationSample = DefaultCrossValidationSample
	}
	if c.GenerationConcurrency <= 0 {
		c.GenerationConcurrency = DefaultGenerationConcurrency
	}
	return c
}

// PromptSource resolves the effective instructions and response spec for
// a generation call site. prompts.System satisfies it; tests supply fakes.
type PromptSource interface {
	Instructions(ctx context.Context, stage prompts.Stage) (string, error)
	Spec(ctx context.Context, stage prompts.Stage) (string, error)
}

// Runtime bundles the dependencies the stages require. It is constructed
// by composition code from infrastructure and domain systems.
type Runtime struct {
	Client  generation.Client
	Prompts PromptSource
	Config  Config
	Logger  *slog.Logger
}

// compose resolves instructions and spec for a stage and returns
// (system, spec). The spec is appended to user prompts; the instructions
// become the system text of the call.
func (rt *Runtime) compose(ctx context.Context, stage prompts.Stage) (string, string, error) {
	system, err := rt.Prompts.Instructions(ctx, stage)
	if err != nil {
		return "", "", err
	}

	spec, err := rt.Prompts.Spec(ctx, stage)
	if err != nil {
		return "", "", err
	}

	return system, spec, nil
}

// prefix bounds text to at most limit bytes without splitting a rune.
func prefix(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
