// Package core defines the shared language of the tablook system.
//
// This package contains:
//   - The semantic model extracted from a workbook (SemanticModel, Datasource,
//     Field, Calculation, Sheet, ...)
//   - The closed classification axes (Role, DataType, CalcCategory, ChartType, ...)
//   - Findings that describe unresolved references and ambiguous classifications
//   - Contracts for downstream collaborators (LookMLProject, QAReport, Renderer, Reviewer)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
