package qa

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// globalRegistry holds the built-in rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered QA rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// RuleDef is a QA rule definition.
type RuleDef struct {
	ID          string        // Unique identifier, e.g. "QJ01"
	Name        string        // Human-readable name, e.g. "join-review"
	Group       string        // connection, join, field, calculation, sheet
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Check       Check
	// Standalone rules raise findings the assembler never reports, so they
	// never stand in for a build finding about the same entity.
	Standalone bool
}

// Check inspects a model and returns its findings. The severity on
// returned findings is replaced by the rule's effective severity.
type Check func(m *core.SemanticModel, cfg *AnalyzerConfig) []core.Finding

// Register adds a rule to the global registry.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// GetAll returns all registered rules ordered by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// GetByGroup returns the rules of one group ordered by ID.
func GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}
