// Package assemble composes the extractor outputs into a validated
// core.SemanticModel.
//
// The assembler is the only place where entities are cross-checked. Every
// reference that does not resolve inside its datasource is rewritten to a
// core.UnresolvedRef marker and reported as a core.Finding; ambiguous
// classifications are reported without being changed. Findings are data,
// never errors: the only error Parse returns is a malformed document.
package assemble
