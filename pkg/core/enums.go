package core

import "strings"

// =============================================================================
// Classification axes
// =============================================================================
//
// Every axis is a closed set with an explicit Unknown member. Parse functions
// never guess: anything that is not a recognised spelling maps to Unknown.

// ConnectionType classifies how a datasource reaches its data.
type ConnectionType string

// Connection types.
const (
	ConnectionTable     ConnectionType = "table"
	ConnectionCustomSQL ConnectionType = "custom_sql"
	ConnectionExtract   ConnectionType = "extract"
	ConnectionUnknown   ConnectionType = "unknown"
)

// Valid reports whether c is a member of the axis.
func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionTable, ConnectionCustomSQL, ConnectionExtract, ConnectionUnknown:
		return true
	}
	return false
}

// JoinType is the SQL join kind of a join relation.
type JoinType string

// Join types.
const (
	JoinInner   JoinType = "inner"
	JoinLeft    JoinType = "left"
	JoinRight   JoinType = "right"
	JoinFull    JoinType = "full"
	JoinUnknown JoinType = "unknown"
)

// ParseJoinType maps a declared join kind to a JoinType.
func ParseJoinType(s string) JoinType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inner":
		return JoinInner
	case "left":
		return JoinLeft
	case "right":
		return JoinRight
	case "full", "outer", "full outer":
		return JoinFull
	default:
		return JoinUnknown
	}
}

// Valid reports whether j is a member of the axis.
func (j JoinType) Valid() bool {
	switch j {
	case JoinInner, JoinLeft, JoinRight, JoinFull, JoinUnknown:
		return true
	}
	return false
}

// Role is the analytical role of a field.
type Role string

// Field roles.
const (
	RoleDimension Role = "dimension"
	RoleMeasure   Role = "measure"
	RoleUnknown   Role = "unknown"
)

// ParseRole maps a declared role marker to a Role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dimension":
		return RoleDimension
	case "measure":
		return RoleMeasure
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is a member of the axis.
func (r Role) Valid() bool {
	switch r {
	case RoleDimension, RoleMeasure, RoleUnknown:
		return true
	}
	return false
}

// DataType is the declared value type of a field or calculation.
type DataType string

// Data types.
const (
	DataTypeString   DataType = "string"
	DataTypeNumber   DataType = "number"
	DataTypeDate     DataType = "date"
	DataTypeDateTime DataType = "datetime"
	DataTypeBoolean  DataType = "boolean"
	DataTypeUnknown  DataType = "unknown"
)

// ParseDataType maps declared type metadata (datatype or local-type) to a DataType.
func ParseDataType(s string) DataType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str":
		return DataTypeString
	case "integer", "real", "int", "float", "number", "decimal":
		return DataTypeNumber
	case "date":
		return DataTypeDate
	case "datetime", "timestamp":
		return DataTypeDateTime
	case "boolean", "bool":
		return DataTypeBoolean
	default:
		return DataTypeUnknown
	}
}

// Valid reports whether d is a member of the axis.
func (d DataType) Valid() bool {
	switch d {
	case DataTypeString, DataTypeNumber, DataTypeDate, DataTypeDateTime, DataTypeBoolean, DataTypeUnknown:
		return true
	}
	return false
}

// FieldSource records what backs a field.
type FieldSource string

// Field sources.
const (
	SourceColumn      FieldSource = "column"
	SourceCalculation FieldSource = "calculation"
	SourceParameter   FieldSource = "parameter"
	SourceUnknown     FieldSource = "unknown"
)

// Valid reports whether s is a member of the axis.
func (s FieldSource) Valid() bool {
	switch s {
	case SourceColumn, SourceCalculation, SourceParameter, SourceUnknown:
		return true
	}
	return false
}

// CalcCategory is the high-level kind of a calculation.
type CalcCategory string

// Calculation categories.
const (
	CategorySimple         CalcCategory = "simple"
	CategoryLOD            CalcCategory = "lod"
	CategoryTableCalc      CalcCategory = "table_calc"
	CategoryParameterBased CalcCategory = "parameter_based"
	CategoryUnknown        CalcCategory = "unknown"
)

// Valid reports whether c is a member of the axis.
func (c CalcCategory) Valid() bool {
	switch c {
	case CategorySimple, CategoryLOD, CategoryTableCalc, CategoryParameterBased, CategoryUnknown:
		return true
	}
	return false
}

// ChartType is the best-guess visual encoding of a sheet.
type ChartType string

// Chart types.
const (
	ChartTable       ChartType = "table"
	ChartBar         ChartType = "bar"
	ChartLine        ChartType = "line"
	ChartArea        ChartType = "area"
	ChartScatter     ChartType = "scatter"
	ChartPie         ChartType = "pie"
	ChartSingleValue ChartType = "single_value"
	ChartUnknown     ChartType = "unknown"
)

// Valid reports whether c is a member of the axis.
func (c ChartType) Valid() bool {
	switch c {
	case ChartTable, ChartBar, ChartLine, ChartArea, ChartScatter, ChartPie, ChartSingleValue, ChartUnknown:
		return true
	}
	return false
}

// FilterScope is where a sheet filter applies.
type FilterScope string

// Filter scopes.
const (
	ScopeRows    FilterScope = "rows"
	ScopeColumns FilterScope = "columns"
	ScopeTable   FilterScope = "table"
	ScopeUnknown FilterScope = "unknown"
)

// Valid reports whether f is a member of the axis.
func (f FilterScope) Valid() bool {
	switch f {
	case ScopeRows, ScopeColumns, ScopeTable, ScopeUnknown:
		return true
	}
	return false
}
