package core

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates how urgently a finding needs a human.
type Severity int

// Severity levels for findings.
const (
	// SeverityError marks a reference that is broken in the source document.
	SeverityError Severity = iota
	// SeverityWarning marks an ambiguity that blocks an automatic conversion.
	SeverityWarning
	// SeverityInfo marks a classification that fell back to unknown.
	SeverityInfo
	// SeverityHint marks a heuristic that may deserve a second look.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s, _ = ParseSeverity(name)
	return nil
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s <= other
}
