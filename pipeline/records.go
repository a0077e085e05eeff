package pipeline

// DocumentStats holds basic measurements of the source document.
// SectionCount is floored at 1 so downstream summaries never divide
// by zero on unstructured text.
type DocumentStats struct {
	WordCount      int `json:"word_count"`
	SectionCount   int `json:"section_count"`
	CharacterCount int `json:"character_count"`
	LineCount      int `json:"line_count"`
}

// SectionSummary describes one main section identified during analysis.
type SectionSummary struct {
	Title               string `json:"title"`
	Summary             string `json:"summary"`
	ComplianceRelevance string `json:"compliance_relevance"`
}

// Definition is a term defined by the document.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// StructureAnalysis is the generated structural view of the document.
type StructureAnalysis struct {
	DocumentType        string           `json:"document_type"`
	MainSections        []SectionSummary `json:"main_sections"`
	KeyDefinitions      []Definition     `json:"key_definitions"`
	RegulatoryAuthority string           `json:"regulatory_authority"`
	EffectiveDate       string           `json:"effective_date"`
	Scope               string           `json:"scope"`
}

// ComplianceTheme is a compliance area the document governs. Themes
// drive per-theme extraction and the synthesis grouping key.
type ComplianceTheme struct {
	Theme             string   `json:"theme"`
	Description       string   `json:"description"`
	Importance        string   `json:"importance"`
	Keywords          []string `json:"keywords"`
	TypicalViolations []string `json:"typical_violations"`
}

// AnalysisData is the document analysis stage output.
type AnalysisData struct {
	DocumentStats     DocumentStats     `json:"document_stats"`
	StructureAnalysis StructureAnalysis `json:"structure_analysis"`
	ComplianceThemes  []ComplianceTheme `json:"compliance_themes"`
}

// ExtractedRule is the fixed record shape every extracted requirement
// uses. DetectionCriteria and RedFlags are absent at extraction time;
// validation corrections may add them.
type ExtractedRule struct {
	RuleTitle             string   `json:"rule_title"`
	RuleDescription       string   `json:"rule_description"`
	ComplianceTheme       string   `json:"compliance_theme"`
	RequirementType       string   `json:"requirement_type"`
	TargetEntities        []string `json:"target_entities"`
	KeyObligations        []string `json:"key_obligations"`
	Deadlines             []string `json:"deadlines"`
	Penalties             []string `json:"penalties"`
	Exceptions            []string `json:"exceptions"`
	DocumentationRequired []string `json:"documentation_required"`
	MonitoringRequired    bool     `json:"monitoring_required"`
	SourceSection         string   `json:"source_section"`
	LegalBasis            string   `json:"legal_basis"`
	DetectionCriteria     []string `json:"detection_criteria,omitempty"`
	RedFlags              []string `json:"red_flags,omitempty"`
}

// ExtractionSummary reports extraction stage counts.
type ExtractionSummary struct {
	TotalRules          int `json:"total_rules"`
	ThemesProcessed     int `json:"themes_processed"`
	GeneralRequirements int `json:"general_requirements"`
}

// ExtractionData is the rule extraction stage output. Rules are ordered
// by theme (analysis order) with general requirements appended last.
type ExtractionData struct {
	ExtractedRules    []ExtractedRule   `json:"extracted_rules"`
	ExtractionSummary ExtractionSummary `json:"extraction_summary"`
}

// ViolationDetection describes how violations of a rule are detected.
type ViolationDetection struct {
	DetectionMethod     string   `json:"detection_method"`
	DetectionIndicators []string `json:"detection_indicators"`
	RedFlags            []string `json:"red_flags"`
}

// Classification holds the assessment dimensions assigned to a rule.
type Classification struct {
	RiskLevel                string             `json:"risk_level"`
	Urgency                  string             `json:"urgency"`
	Complexity               string             `json:"complexity"`
	BusinessImpact           string             `json:"business_impact"`
	ImplementationDifficulty string             `json:"implementation_difficulty"`
	MonitoringFrequency      string             `json:"monitoring_frequency"`
	OrganizationalScope      string             `json:"organizational_scope"`
	ComplianceType           string             `json:"compliance_type"`
	AutomationPotential      string             `json:"automation_potential"`
	StakeholderGroups        []string           `json:"stakeholder_groups"`
	GeographicScope          string             `json:"geographic_scope"`
	IndustrySpecificity      string             `json:"industry_specificity"`
	ViolationDetection       ViolationDetection `json:"violation_detection"`
	ImplementationPriority   string             `json:"implementation_priority"`
	EstimatedEffort          string             `json:"estimated_effort"`
}

// ClassifiedRule pairs an extracted rule with its classification.
type ClassifiedRule struct {
	OriginalRule   ExtractedRule  `json:"original_rule"`
	Classification Classification `json:"classification"`
}

// ClassificationSummary reports classification distribution counts.
// HighPriorityCount is critical plus high risk; ImmediateActionCount is
// immediate plus high urgency.
type ClassificationSummary struct {
	TotalRules                 int            `json:"total_rules"`
	RiskDistribution           map[string]int `json:"risk_distribution"`
	UrgencyDistribution        map[string]int `json:"urgency_distribution"`
	PriorityDistribution       map[string]int `json:"priority_distribution"`
	ComplianceTypeDistribution map[string]int `json:"compliance_type_distribution"`
	HighPriorityCount          int            `json:"high_priority_count"`
	ImmediateActionCount       int            `json:"immediate_action_count"`
}

// ClassificationData is the rule classification stage output.
type ClassificationData struct {
	ClassifiedRules       []ClassifiedRule      `json:"classified_rules"`
	ClassificationSummary ClassificationSummary `json:"classification_summary"`
}

// Issue records a validation finding. RuleNumber identifies per-rule
// issues; AffectedRules identifies cross-rule issues.
type Issue struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	RuleNumber     int    `json:"rule_number,omitempty"`
	Field          string `json:"field,omitempty"`
	Message        string `json:"message"`
	Suggestion     string `json:"suggestion,omitempty"`
	AffectedRules  []int  `json:"affected_rules,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Issue severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// ValidatedRule is an accepted rule carrying its validation outcome.
type ValidatedRule struct {
	OriginalRule     ExtractedRule  `json:"original_rule"`
	Classification   Classification `json:"classification"`
	ValidationStatus string         `json:"validation_status"`
	ValidationIssues []Issue        `json:"validation_issues"`
}

// ValidationSummary reports validation pass/fail counts.
type ValidationSummary struct {
	TotalRulesProcessed   int     `json:"total_rules_processed"`
	RulesPassedValidation int     `json:"rules_passed_validation"`
	RulesFailedValidation int     `json:"rules_failed_validation"`
	ValidationSuccessRate float64 `json:"validation_success_rate"`
}

// IssueSummary reports issue counts by severity.
type IssueSummary struct {
	TotalIssues    int `json:"total_issues"`
	CriticalIssues int `json:"critical_issues"`
	WarningIssues  int `json:"warning_issues"`
	InfoIssues     int `json:"info_issues"`
}

// ValidationReport aggregates validation outcomes for the rule set.
type ValidationReport struct {
	ValidationSummary ValidationSummary `json:"validation_summary"`
	IssueSummary      IssueSummary      `json:"issue_summary"`
	IssueBreakdown    map[string]int    `json:"issue_breakdown"`
	QualityScore      float64           `json:"quality_score"`
}

// ValidationData is the rule validation stage output. ValidationIssues
// holds issues from rejected rules plus the cross-validation pass.
type ValidationData struct {
	ValidatedRules   []ValidatedRule  `json:"validated_rules"`
	ValidationReport ValidationReport `json:"validation_report"`
	ValidationIssues []Issue          `json:"validation_issues"`
}

// ImplementationGuidance is the how-to section of a final rule.
type ImplementationGuidance struct {
	Steps             []string `json:"steps"`
	RequiredResources []string `json:"required_resources"`
	EstimatedTimeline string   `json:"estimated_timeline"`
	SuccessCriteria   []string `json:"success_criteria"`
}

// MonitoringRequirements describes ongoing compliance monitoring.
type MonitoringRequirements struct {
	Frequency             string   `json:"frequency"`
	Methods               []string `json:"methods"`
	Metrics               []string `json:"metrics"`
	ReportingRequirements []string `json:"reporting_requirements"`
}

// FinalViolationDetection is the expanded detection section of a final rule.
type FinalViolationDetection struct {
	DetectionCriteria  []string `json:"detection_criteria"`
	RedFlags           []string `json:"red_flags"`
	DetectionMethods   []string `json:"detection_methods"`
	EscalationTriggers []string `json:"escalation_triggers"`
}

// ComplianceEvidence describes documentation and audit trail demands.
type ComplianceEvidence struct {
	RequiredDocumentation   []string `json:"required_documentation"`
	AuditTrailRequirements  []string `json:"audit_trail_requirements"`
	RecordRetention         string   `json:"record_retention"`
	DocumentationStandards  []string `json:"documentation_standards"`
}

// PenaltiesAndConsequences describes the cost of non-compliance.
type PenaltiesAndConsequences struct {
	RegulatoryPenalties     []string `json:"regulatory_penalties"`
	BusinessConsequences    []string `json:"business_consequences"`
	RemediationRequirements []string `json:"remediation_requirements"`
}

// StakeholderResponsibilities assigns ownership of a final rule.
type StakeholderResponsibilities struct {
	PrimaryOwner         string   `json:"primary_owner"`
	SupportingRoles      []string `json:"supporting_roles"`
	EscalationPath       []string `json:"escalation_path"`
	TrainingRequirements []string `json:"training_requirements"`
}

// TechnologyRequirements describes tooling needed to implement a rule.
type TechnologyRequirements struct {
	AutomationOpportunities []string `json:"automation_opportunities"`
	SystemRequirements      []string `json:"system_requirements"`
	IntegrationPoints       []string `json:"integration_points"`
	DataRequirements        []string `json:"data_requirements"`
}

// SourceInformation traces a final rule back to the document.
// DocumentType and RegulatoryAuthority are enriched from the analysis
// stage after synthesis.
type SourceInformation struct {
	RegulationSource    string `json:"regulation_source"`
	LegalBasis          string `json:"legal_basis"`
	LastUpdated         string `json:"last_updated"`
	Version             string `json:"version"`
	DocumentType        string `json:"document_type,omitempty"`
	RegulatoryAuthority string `json:"regulatory_authority,omitempty"`
}

// SynthesisMetadata records provenance of the synthesized rule.
type SynthesisMetadata struct {
	CreatedBy        string `json:"created_by"`
	SynthesisVersion string `json:"synthesis_version"`
	QualityAssurance string `json:"quality_assurance"`
	LastReviewed     string `json:"last_reviewed"`
}

// FinalRule is the fully expanded, actionable compliance rule produced
// by the synthesis stage.
type FinalRule struct {
	RuleID                      string                      `json:"rule_id"`
	RuleTitle                   string                      `json:"rule_title"`
	RuleDescription             string                      `json:"rule_description"`
	ComplianceTheme             string                      `json:"compliance_theme"`
	RequirementType             string                      `json:"requirement_type"`
	RiskLevel                   string                      `json:"risk_level"`
	ImplementationPriority      string                      `json:"implementation_priority"`
	TargetEntities              []string                    `json:"target_entities"`
	KeyObligations              []string                    `json:"key_obligations"`
	ImplementationGuidance      ImplementationGuidance      `json:"implementation_guidance"`
	MonitoringRequirements      MonitoringRequirements      `json:"monitoring_requirements"`
	ViolationDetection          FinalViolationDetection     `json:"violation_detection"`
	ComplianceEvidence          ComplianceEvidence          `json:"compliance_evidence"`
	PenaltiesAndConsequences    PenaltiesAndConsequences    `json:"penalties_and_consequences"`
	StakeholderResponsibilities StakeholderResponsibilities `json:"stakeholder_responsibilities"`
	TechnologyRequirements      TechnologyRequirements      `json:"technology_requirements"`
	SourceInformation           SourceInformation           `json:"source_information"`
	SynthesisMetadata           SynthesisMetadata           `json:"synthesis_metadata"`
}

// SynthesisOverview reports high-level synthesis outcomes.
type SynthesisOverview struct {
	TotalFinalRules         int     `json:"total_final_rules"`
	OriginalRulesProcessed  int     `json:"original_rules_processed"`
	SynthesisSuccessRate    float64 `json:"synthesis_success_rate"`
	AverageRuleCompleteness float64 `json:"average_rule_completeness"`
}

// RuleDistribution reports final rule counts by dimension.
type RuleDistribution struct {
	RiskLevels               map[string]int `json:"risk_levels"`
	ImplementationPriorities map[string]int `json:"implementation_priorities"`
	ComplianceThemes         map[string]int `json:"compliance_themes"`
}

// ImplementationOverview reports rollout planning estimates.
type ImplementationOverview struct {
	HighPriorityRules             int            `json:"high_priority_rules"`
	CriticalRiskRules             int            `json:"critical_risk_rules"`
	EstimatedImplementationPhases map[string]int `json:"estimated_implementation_phases"`
	KeyStakeholderGroups          []string       `json:"key_stakeholder_groups"`
}

// QualityIndicators counts final rules carrying key sections.
type QualityIndicators struct {
	RulesWithMonitoring       int `json:"rules_with_monitoring"`
	RulesWithAutomation       int `json:"rules_with_automation"`
	RulesWithCompleteGuidance int `json:"rules_with_complete_guidance"`
}

// SynthesisSummary aggregates synthesis outcomes for the rule set.
type SynthesisSummary struct {
	SynthesisOverview      SynthesisOverview      `json:"synthesis_overview"`
	RuleDistribution       RuleDistribution       `json:"rule_distribution"`
	ImplementationOverview ImplementationOverview `json:"implementation_overview"`
	QualityIndicators      QualityIndicators      `json:"quality_indicators"`
}

// SynthesisData is the rule synthesis stage output.
type SynthesisData struct {
	FinalRules       []FinalRule      `json:"final_rules"`
	SynthesisSummary SynthesisSummary `json:"synthesis_summary"`
}
