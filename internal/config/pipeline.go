package config

import (
	"os"
	"strconv"

	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
)

const (
	EnvPipelineAnalysisPrefixLimit     = "REG_PIPELINE_ANALYSIS_PREFIX_LIMIT"
	EnvPipelineExtractionPrefixLimit   = "REG_PIPELINE_EXTRACTION_PREFIX_LIMIT"
	EnvPipelineClassificationBatchSize = "REG_PIPELINE_CLASSIFICATION_BATCH_SIZE"
	EnvPipelineCrossValidationSample   = "REG_PIPELINE_CROSS_VALIDATION_SAMPLE"
	EnvPipelineGenerationConcurrency   = "REG_PIPELINE_GENERATION_CONCURRENCY"
)

// FinalizePipeline applies environment variable overrides and defaults
// to the pipeline tunables.
func FinalizePipeline(c *pipeline.Config) {
	setIntEnv(EnvPipelineAnalysisPrefixLimit, &c.AnalysisPrefixLimit)
	setIntEnv(EnvPipelineExtractionPrefixLimit, &c.ExtractionPrefixLimit)
	setIntEnv(EnvPipelineClassificationBatchSize, &c.ClassificationBatchSize)
	setIntEnv(EnvPipelineCrossValidationSample, &c.CrossValidationSample)
	setIntEnv(EnvPipelineGenerationConcurrency, &c.GenerationConcurrency)

	*c = c.Normalize()
}

func setIntEnv(envVar string, target *int) {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
