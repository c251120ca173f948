// Package extract turns a workbook tree into semantic entities.
//
// Each extractor reads the same immutable *rawdoc.Node and has no data
// dependency on the others, so callers may run them concurrently:
//
//	Connections  datasources, connection descriptors and logical tables
//	Joins        join relations and object-graph relationships
//	Fields       fields and calculations
//	Sheets       worksheets, filters and visualization hints
//
// Extractors never fail. Anything they cannot classify is emitted with an
// unknown marker and left for the assembler to report.
package extract
