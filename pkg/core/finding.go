package core

import (
	"fmt"
	"sort"
)

// FindingKind groups findings by what went wrong.
type FindingKind string

// Finding kinds.
const (
	// FindingUnresolved is a reference that does not resolve inside its datasource.
	FindingUnresolved FindingKind = "unresolved_reference"
	// FindingAmbiguous is a classification that fell back to unknown.
	FindingAmbiguous FindingKind = "ambiguous_classification"
	// FindingReview is structure that was extracted but needs a human to confirm.
	FindingReview FindingKind = "review_required"
)

// Entity names used in findings.
const (
	EntityWorkbook    = "workbook"
	EntityDatasource  = "datasource"
	EntityConnection  = "connection"
	EntityTable       = "table"
	EntityJoin        = "join"
	EntityField       = "field"
	EntityCalculation = "calculation"
	EntitySheet       = "sheet"
	EntityFilter      = "filter"
	EntityChart       = "visualization"
)

// Finding is a non-fatal issue discovered while building a model. Findings never
// abort extraction; the affected entity also carries an unknown/unresolved
// marker in the model itself.
type Finding struct {
	// Rule is the QA rule that raised the finding; empty for assembler findings.
	Rule         string      `json:"rule,omitempty"`
	Kind         FindingKind `json:"kind"`
	Severity     Severity    `json:"severity"`
	DatasourceID string      `json:"datasource_id,omitempty"`
	Entity       string      `json:"entity"`
	EntityID     string      `json:"entity_id"`
	Message      string      `json:"message"`
}

// Reason renders the finding as a single human-readable QA reason.
func (f Finding) Reason() string {
	prefix := ""
	if f.Rule != "" {
		prefix = "[" + f.Rule + "] "
	}
	if f.DatasourceID != "" {
		return fmt.Sprintf("%s%s %q in datasource %q: %s", prefix, f.Entity, f.EntityID, f.DatasourceID, f.Message)
	}
	return fmt.Sprintf("%s%s %q: %s", prefix, f.Entity, f.EntityID, f.Message)
}

// SortFindings orders findings by severity, datasource, entity and id.
// The sort is stable so findings for the same entity keep their discovery order.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if a.DatasourceID != b.DatasourceID {
			return a.DatasourceID < b.DatasourceID
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.EntityID < b.EntityID
	})
}

// CountBySeverity returns how many findings exist per severity.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
