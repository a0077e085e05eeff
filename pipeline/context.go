package pipeline

// Context accumulates stage outputs across a pipeline run. It is owned
// by the orchestrator: stages read prior data through the accessors and
// the orchestrator commits new data only after a stage succeeds, so a
// failed stage leaves the Context untouched.
type Context struct {
	RunID        string
	TotalStages  int
	CurrentStage int

	analysis       *AnalysisData
	extraction     *ExtractionData
	classification *ClassificationData
	validation     *ValidationData
	synthesis      *SynthesisData
}

// NewContext creates a Context for a run.
func NewContext(runID string) *Context {
	return &Context{
		RunID:       runID,
		TotalStages: len(StageNames()),
	}
}

// StageNames returns the stage names in execution order.
func StageNames() []string {
	return []string{
		StageDocumentAnalysis,
		StageRuleExtraction,
		StageRuleClassification,
		StageRuleValidation,
		StageRuleSynthesis,
	}
}

// Analysis returns the document analysis output, or nil before that
// stage completes.
func (c *Context) Analysis() *AnalysisData { return c.analysis }

// Extraction returns the rule extraction output, or nil before that
// stage completes.
func (c *Context) Extraction() *ExtractionData { return c.extraction }

// Classification returns the rule classification output, or nil before
// that stage completes.
func (c *Context) Classification() *ClassificationData { return c.classification }

// Validation returns the rule validation output, or nil before that
// stage completes.
func (c *Context) Validation() *ValidationData { return c.validation }

// Synthesis returns the rule synthesis output, or nil before that stage
// completes.
func (c *Context) Synthesis() *SynthesisData { return c.synthesis }

// commit records a completed stage's data. Unknown payload types are
// ignored; the orchestrator only hands over the typed stage outputs.
func (c *Context) commit(data any) {
	switch d := data.(type) {
	case *AnalysisData:
		c.analysis = d
	case *ExtractionData:
		c.extraction = d
	case *ClassificationData:
		c.classification = d
	case *ValidationData:
		c.validation = d
	case *SynthesisData:
		c.synthesis = d
	}
}
