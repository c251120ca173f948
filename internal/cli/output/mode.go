// Package output renders command results for terminals, pipes and scripts.
//
// Auto mode picks styled text on a TTY and markdown otherwise, so the same
// command reads well in a terminal and pastes cleanly into a document.
package output

import "strings"

// OutputMode selects how results are rendered.
type OutputMode string //nolint:revive // output.OutputMode reads better at call sites than output.Kind

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode converts a configured mode name. Unknown names fall back to auto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Valid reports whether s names a known mode.
func Valid(s string) bool {
	switch strings.ToLower(s) {
	case "", "auto", "text", "markdown", "md", "json":
		return true
	}
	return false
}
