package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a generation call site in the rule pipeline that a
// prompt override targets.
type Stage string

// Valid pipeline stages.
const (
	StageAnalyzeStructure Stage = "analyze_structure"
	StageAnalyzeThemes    Stage = "analyze_themes"
	StageExtractTheme     Stage = "extract_theme"
	StageExtractGeneral   Stage = "extract_general"
	StageClassifyBatch    Stage = "classify_batch"
	StageValidateContent  Stage = "validate_content"
	StageValidateCross    Stage = "validate_cross"
	StageSynthesizeRule   Stage = "synthesize_rule"
)

var stages = []Stage{
	StageAnalyzeStructure,
	StageAnalyzeThemes,
	StageExtractTheme,
	StageExtractGeneral,
	StageClassifyBatch,
	StageValidateContent,
	StageValidateCross,
	StageSynthesizeRule,
}

// Stages returns the list of valid pipeline stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Stage(raw)
	if !slices.Contains(stages, v) {
		return ErrInvalidStage
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known pipeline stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
