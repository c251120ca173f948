package qa

import (
	"github.com/leapstack-labs/tablook/pkg/core"
)

// DefaultComplexityThreshold is the score from which calculations are
// reported as complex.
const DefaultComplexityThreshold = 0.6

// AnalyzerConfig holds configuration for the analyzer.
type AnalyzerConfig struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	// ComplexityThreshold is used by the calculation-complexity rule
	ComplexityThreshold float64
}

// NewAnalyzerConfig creates a default configuration.
func NewAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		DisabledRules:       make(map[string]bool),
		SeverityOverrides:   make(map[string]core.Severity),
		ComplexityThreshold: DefaultComplexityThreshold,
	}
}

// Analyzer runs the registered rules against a model.
type Analyzer struct {
	config *AnalyzerConfig
}

// NewAnalyzer creates an analyzer. A nil config uses the defaults.
func NewAnalyzer(config *AnalyzerConfig) *Analyzer {
	if config == nil {
		config = NewAnalyzerConfig()
	}
	if config.DisabledRules == nil {
		config.DisabledRules = make(map[string]bool)
	}
	if config.SeverityOverrides == nil {
		config.SeverityOverrides = make(map[string]core.Severity)
	}
	return &Analyzer{config: config}
}

// Analyze runs every enabled rule in ID order and returns the findings
// sorted by severity.
func (a *Analyzer) Analyze(m *core.SemanticModel) []core.Finding {
	return a.Merge(m, nil)
}

// findingKey identifies the entity and kind of issue a finding is about.
type findingKey struct {
	kind   core.FindingKind
	dsID   string
	entity string
	id     string
}

func keyOf(f core.Finding) findingKey {
	return findingKey{kind: f.Kind, dsID: f.DatasourceID, entity: f.Entity, id: f.EntityID}
}

// Merge runs the rules like Analyze and adds the findings raised while the
// model was built. A build finding is dropped when a rule reports the same
// kind of issue on the same entity, including a disabled rule, so each issue
// is reported once and rule configuration applies to it.
func (a *Analyzer) Merge(m *core.SemanticModel, build []core.Finding) []core.Finding {
	findings := []core.Finding{}
	covered := make(map[findingKey]bool)
	if m != nil {
		for _, rule := range GetAll() {
			raised := rule.Check(m, a.config)
			if !rule.Standalone {
				for _, f := range raised {
					covered[keyOf(f)] = true
				}
			}
			if a.isDisabled(rule.ID) {
				continue
			}
			sev := a.getSeverity(rule.ID, rule.Severity)
			for _, f := range raised {
				f.Rule = rule.ID
				f.Severity = sev
				findings = append(findings, f)
			}
		}
	}
	for _, f := range build {
		if !covered[keyOf(f)] {
			findings = append(findings, f)
		}
	}
	core.SortFindings(findings)
	return findings
}

func (a *Analyzer) isDisabled(ruleID string) bool {
	return a.config.DisabledRules[ruleID]
}

func (a *Analyzer) getSeverity(ruleID string, defaultSev core.Severity) core.Severity {
	if sev, ok := a.config.SeverityOverrides[ruleID]; ok {
		return sev
	}
	return defaultSev
}

// Disable disables a rule by ID.
func (a *Analyzer) Disable(ruleID string) {
	a.config.DisabledRules[ruleID] = true
}

// Enable enables a previously disabled rule.
func (a *Analyzer) Enable(ruleID string) {
	delete(a.config.DisabledRules, ruleID)
}
