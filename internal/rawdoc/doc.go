// Package rawdoc reads workbook markup into a generic tree.
//
// The tree keeps what the extractors need and nothing more: element tags,
// attributes in document order with their prefixes as written, and
// character data. It carries no knowledge of the workbook vocabulary.
package rawdoc
