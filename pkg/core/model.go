package core

import "strings"

// SchemaVersion is the version stamped on every SemanticModel.
const SchemaVersion = "1.0"

// Workbook is the identity of the converted workbook.
type Workbook struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description"`
}

// DefaultWorkbook returns the placeholder identity used when a document
// carries no workbook identity at all.
func DefaultWorkbook() *Workbook {
	return &Workbook{
		ID:   "unknown",
		Name: "Unknown Workbook",
	}
}

// Connection describes how a datasource reaches its data.
type Connection struct {
	Type     ConnectionType `json:"type" yaml:"type"`
	Dialect  *string        `json:"dialect" yaml:"dialect"`
	Database *string        `json:"database" yaml:"database"`
	Schema   *string        `json:"schema" yaml:"schema"`
	Table    *string        `json:"table" yaml:"table"`
	RawSQL   *string        `json:"raw_sql" yaml:"raw_sql"`
}

// Table is a logical table inside a datasource.
type Table struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Database  *string `json:"database" yaml:"database"`
	Schema    *string `json:"schema" yaml:"schema"`
	Table     *string `json:"table" yaml:"table"`
	IsPrimary bool    `json:"is_primary" yaml:"is_primary"`
}

// Join links two tables of the same datasource.
type Join struct {
	ID                string   `json:"id" yaml:"id"`
	LeftTableID       string   `json:"left_table_id" yaml:"left_table_id"`
	RightTableID      string   `json:"right_table_id" yaml:"right_table_id"`
	JoinType          JoinType `json:"join_type" yaml:"join_type"`
	Condition         string   `json:"condition" yaml:"condition"`
	NeedsManualReview bool     `json:"needs_manual_review" yaml:"needs_manual_review"`
}

// Field is a single dimension, measure or parameter of a datasource.
type Field struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Caption *string `json:"caption" yaml:"caption"`
	TableID *string `json:"table_id" yaml:"table_id"`

	Role        Role     `json:"role" yaml:"role"`
	Datatype    DataType `json:"datatype" yaml:"datatype"`
	Aggregation *string  `json:"aggregation" yaml:"aggregation"`

	Source        FieldSource `json:"source" yaml:"source"`
	ColumnName    *string     `json:"column_name" yaml:"column_name"`
	CalculationID *string     `json:"calculation_id" yaml:"calculation_id"`

	IsHidden bool     `json:"is_hidden" yaml:"is_hidden"`
	Tags     []string `json:"tags" yaml:"tags"`
}

// Label returns the caption when present, otherwise the name.
func (f *Field) Label() string {
	if f.Caption != nil && *f.Caption != "" {
		return *f.Caption
	}
	return f.Name
}

// Calculation is a calculated field definition, referenced by Field.CalculationID.
type Calculation struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	DatasourceID    string       `json:"datasource_id" yaml:"datasource_id"`
	Expression      string       `json:"expression" yaml:"expression"`
	Datatype        DataType     `json:"datatype" yaml:"datatype"`
	Category        CalcCategory `json:"category" yaml:"category"`
	ComplexityScore float64      `json:"complexity_score" yaml:"complexity_score"`
}

// SheetFilter is a filter applied on a sheet.
type SheetFilter struct {
	FieldID    string      `json:"field_id" yaml:"field_id"`
	Expression string      `json:"expression" yaml:"expression"`
	AppliedTo  FilterScope `json:"applied_to" yaml:"applied_to"`
}

// SheetVisualization is the best-guess chart and axis mapping of a sheet.
type SheetVisualization struct {
	ChartType ChartType `json:"chart_type" yaml:"chart_type"`

	PrimaryDimensionID  *string  `json:"primary_dimension_id" yaml:"primary_dimension_id"`
	PrimaryMeasureIDs   []string `json:"primary_measure_ids" yaml:"primary_measure_ids"`
	SplitByDimensionIDs []string `json:"split_by_dimension_ids" yaml:"split_by_dimension_ids"`

	SortOrder   *string `json:"sort_order" yaml:"sort_order"`
	Granularity *string `json:"granularity" yaml:"granularity"`
}

// Sheet is a worksheet (a single view) of the workbook.
type Sheet struct {
	ID            string              `json:"id" yaml:"id"`
	Name          string              `json:"name" yaml:"name"`
	DatasourceID  string              `json:"datasource_id" yaml:"datasource_id"`
	UsedFieldIDs  []string            `json:"used_field_ids" yaml:"used_field_ids"`
	Filters       []SheetFilter       `json:"filters" yaml:"filters"`
	Visualization *SheetVisualization `json:"visualization" yaml:"visualization"`
	Description   *string             `json:"description" yaml:"description"`
}

// Datasource is a logical data model. Its tables, joins and fields are scoped to it.
type Datasource struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Connection Connection `json:"connection" yaml:"connection"`
	Tables     []Table    `json:"tables" yaml:"tables"`
	Joins      []Join     `json:"joins" yaml:"joins"`
	Fields     []Field    `json:"fields" yaml:"fields"`
}

// Field returns the field with the given id.
func (d *Datasource) Field(id string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Table returns the table with the given id.
func (d *Datasource) Table(id string) (*Table, bool) {
	for i := range d.Tables {
		if d.Tables[i].ID == id {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// SemanticModel is the root of the extracted model. It is built once per run
// and treated as read-only afterwards.
type SemanticModel struct {
	SchemaVersion string        `json:"schema_version" yaml:"schema_version"`
	Workbook      *Workbook     `json:"workbook" yaml:"workbook"`
	Datasources   []Datasource  `json:"datasources" yaml:"datasources"`
	Calculations  []Calculation `json:"calculations" yaml:"calculations"`
	Sheets        []Sheet       `json:"sheets" yaml:"sheets"`
}

// NewSemanticModel returns an empty model with non-nil collections.
func NewSemanticModel() *SemanticModel {
	return &SemanticModel{
		SchemaVersion: SchemaVersion,
		Datasources:   []Datasource{},
		Calculations:  []Calculation{},
		Sheets:        []Sheet{},
	}
}

// Datasource returns the datasource with the given id.
func (m *SemanticModel) Datasource(id string) (*Datasource, bool) {
	for i := range m.Datasources {
		if m.Datasources[i].ID == id {
			return &m.Datasources[i], true
		}
	}
	return nil, false
}

// Calculation returns the calculation with the given id inside a datasource.
func (m *SemanticModel) Calculation(datasourceID, id string) (*Calculation, bool) {
	for i := range m.Calculations {
		c := &m.Calculations[i]
		if c.DatasourceID == datasourceID && c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// =============================================================================
// Unresolved references
// =============================================================================

// unresolvedPrefix marks an identifier that could not be resolved.
const unresolvedPrefix = "unresolved:"

// UnresolvedRef returns the explicit marker for a reference that did not resolve.
// The raw reference is kept after the prefix so reviewers can see what was asked for.
func UnresolvedRef(raw string) string {
	if IsUnresolved(raw) {
		return raw
	}
	return unresolvedPrefix + raw
}

// IsUnresolved reports whether id is an unresolved marker.
func IsUnresolved(id string) bool {
	return strings.HasPrefix(id, unresolvedPrefix)
}

// UnresolvedTarget returns the raw reference behind an unresolved marker.
func UnresolvedTarget(id string) string {
	return strings.TrimPrefix(id, unresolvedPrefix)
}

// OptString returns nil for an empty string and a pointer to s otherwise.
func OptString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
