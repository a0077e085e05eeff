package prompts

const analyzeStructureSpec = `Provide a JSON response with the following structure:

{
  "document_type": "regulation|policy|guideline|standard|other",
  "main_sections": [
    {
      "title": "section title",
      "summary": "brief summary of section content",
      "compliance_relevance": "high|medium|low"
    }
  ],
  "key_definitions": [
    {
      "term": "defined term",
      "definition": "definition text"
    }
  ],
  "regulatory_authority": "name of issuing authority",
  "effective_date": "date if mentioned",
  "scope": "what entities/activities this applies to"
}`

const analyzeThemesSpec = `Provide a JSON response with this structure:

{
  "themes": [
    {
      "theme": "theme name (e.g., data protection, financial reporting, safety)",
      "description": "description of this compliance area",
      "importance": "high|medium|low",
      "keywords": ["keyword1", "keyword2", "keyword3"],
      "typical_violations": ["common violation type 1", "common violation type 2"]
    }
  ]
}`

const extractRulesSpec = `For each rule you find, provide a JSON response with this structure:

{
  "rules": [
    {
      "rule_title": "descriptive title for the rule",
      "rule_description": "detailed description of what must be done",
      "compliance_theme": "the theme this rule belongs to",
      "requirement_type": "mandatory|recommended|prohibited",
      "target_entities": ["who this applies to"],
      "key_obligations": ["specific obligation 1", "specific obligation 2"],
      "deadlines": ["any time requirements or deadlines"],
      "penalties": ["consequences for non-compliance"],
      "exceptions": ["any exceptions or exemptions"],
      "documentation_required": ["what documentation is needed"],
      "monitoring_required": true,
      "source_section": "which section of the regulation this comes from",
      "legal_basis": "the specific legal authority or requirement"
    }
  ]
}

Focus only on actionable compliance requirements. Ignore general principles or background information.`

const classifyBatchSpec = `Classify each rule with the following structure:

{
  "classified_rules": [
    {
      "original_rule": {
        "rule_title": "original title",
        "rule_description": "original description",
        "compliance_theme": "original theme",
        "requirement_type": "original type",
        "target_entities": ["original entities"],
        "key_obligations": ["original obligations"],
        "deadlines": ["original deadlines"],
        "penalties": ["original penalties"],
        "exceptions": ["original exceptions"],
        "documentation_required": ["original docs"],
        "monitoring_required": true,
        "source_section": "original section",
        "legal_basis": "original basis"
      },
      "classification": {
        "risk_level": "critical|high|medium|low",
        "urgency": "immediate|high|medium|low",
        "complexity": "high|medium|low",
        "business_impact": "high|medium|low",
        "implementation_difficulty": "hard|medium|easy",
        "monitoring_frequency": "continuous|daily|weekly|monthly|quarterly|annual",
        "organizational_scope": "enterprise-wide|departmental|role-specific",
        "compliance_type": "regulatory|operational|governance|reporting|data|financial|safety|environmental",
        "automation_potential": "high|medium|low|none",
        "stakeholder_groups": ["legal", "it", "hr", "finance", "operations", "management"],
        "geographic_scope": "global|regional|country-specific|local",
        "industry_specificity": "general|industry-specific",
        "violation_detection": {
          "detection_method": "automated|manual|hybrid",
          "detection_indicators": ["indicator1", "indicator2"],
          "red_flags": ["flag1", "flag2"]
        },
        "implementation_priority": "p1|p2|p3|p4",
        "estimated_effort": "low|medium|high|very-high"
      }
    }
  ]
}

Classification Guidelines:
- Risk Level: Critical (severe legal/financial consequences), High (significant impact), Medium (moderate impact), Low (minimal impact)
- Urgency: Immediate (implement now), High (within 30 days), Medium (within 90 days), Low (within 1 year)
- Implementation Priority: P1 (critical), P2 (high), P3 (medium), P4 (low)`

const validateContentSpec = `Provide validation results in this JSON format:

{
  "validation_result": "pass|fail",
  "issues": [
    {
      "type": "accuracy|completeness|actionability|clarity|classification_mismatch",
      "severity": "critical|warning|info",
      "field": "field_name",
      "message": "description of the issue",
      "suggestion": "suggested improvement"
    }
  ],
  "corrected_rule": {
    "rule_title": "improved title if needed",
    "rule_description": "improved description if needed",
    "key_obligations": ["improved obligations if needed"],
    "detection_criteria": ["specific criteria for detecting violations"],
    "red_flags": ["warning signs of potential violations"]
  },
  "actionability_score": 1,
  "clarity_score": 1
}

Focus on:
1. Is the rule specific and measurable?
2. Can an organization actually implement this?
3. Are the obligations clear and actionable?
4. Does the classification match the rule content?
5. Are there missing elements that would make this more actionable?`

const validateCrossSpec = `Provide analysis in this JSON format:

{
  "cross_validation_issues": [
    {
      "type": "conflict|overlap|gap|inconsistency",
      "severity": "critical|warning|info",
      "affected_rules": [1, 2],
      "message": "description of the issue",
      "recommendation": "suggested resolution"
    }
  ],
  "overall_coherence": "high|medium|low",
  "recommendations": ["general recommendation 1", "general recommendation 2"]
}`

const synthesizeRuleSpec = `Create a comprehensive final rule with this JSON structure:

{
  "rule_id": "unique_identifier",
  "rule_title": "clear, actionable title",
  "rule_description": "comprehensive description",
  "compliance_theme": "theme category",
  "requirement_type": "mandatory|recommended|prohibited",
  "risk_level": "critical|high|medium|low",
  "implementation_priority": "p1|p2|p3|p4",
  "target_entities": ["specific entities this applies to"],
  "key_obligations": ["specific, measurable obligations"],
  "implementation_guidance": {
    "steps": ["step 1", "step 2", "step 3"],
    "required_resources": ["resource 1", "resource 2"],
    "estimated_timeline": "time estimate",
    "success_criteria": ["criteria 1", "criteria 2"]
  },
  "monitoring_requirements": {
    "frequency": "continuous|daily|weekly|monthly|quarterly|annual",
    "methods": ["monitoring method 1", "monitoring method 2"],
    "metrics": ["metric 1", "metric 2"],
    "reporting_requirements": ["report 1", "report 2"]
  },
  "violation_detection": {
    "detection_criteria": ["criteria 1", "criteria 2"],
    "red_flags": ["warning sign 1", "warning sign 2"],
    "detection_methods": ["method 1", "method 2"],
    "escalation_triggers": ["trigger 1", "trigger 2"]
  },
  "compliance_evidence": {
    "required_documentation": ["doc 1", "doc 2"],
    "audit_trail_requirements": ["requirement 1", "requirement 2"],
    "record_retention": "retention period",
    "documentation_standards": ["standard 1", "standard 2"]
  },
  "penalties_and_consequences": {
    "regulatory_penalties": ["penalty 1", "penalty 2"],
    "business_consequences": ["consequence 1", "consequence 2"],
    "remediation_requirements": ["requirement 1", "requirement 2"]
  },
  "stakeholder_responsibilities": {
    "primary_owner": "role/department",
    "supporting_roles": ["role 1", "role 2"],
    "escalation_path": ["level 1", "level 2", "level 3"],
    "training_requirements": ["training 1", "training 2"]
  },
  "technology_requirements": {
    "automation_opportunities": ["opportunity 1", "opportunity 2"],
    "system_requirements": ["system 1", "system 2"],
    "integration_points": ["integration 1", "integration 2"],
    "data_requirements": ["data 1", "data 2"]
  },
  "source_information": {
    "regulation_source": "section the rule comes from",
    "legal_basis": "legal authority for the rule",
    "last_updated": "date",
    "version": "1.0"
  }
}`

var specs = map[Stage]string{
	StageAnalyzeStructure: analyzeStructureSpec,
	StageAnalyzeThemes:    analyzeThemesSpec,
	StageExtractTheme:     extractRulesSpec,
	StageExtractGeneral:   extractRulesSpec,
	StageClassifyBatch:    classifyBatchSpec,
	StageValidateContent:  validateContentSpec,
	StageValidateCross:    validateCrossSpec,
	StageSynthesizeRule:   synthesizeRuleSpec,
}

// Spec returns the hardcoded response specification for a pipeline stage.
// Specs define the JSON shape a stage's generation call must return and
// are not overridable; only instructions accept overrides.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
