// Package qa derives a baseline QA report from a semantic model.
//
// Every check is a registered rule that walks the model and reports the
// markers the assembler leaves behind: unresolved references, joins that
// need review and classifications that fell back to unknown. Rules can be
// disabled or have their severity overridden through AnalyzerConfig.
package qa
