package calc

import "strings"

// FunctionCategory classifies calculation functions by their purpose.
type FunctionCategory string

// FunctionCategory constants.
const (
	CategoryAggregate   FunctionCategory = "aggregate"
	CategoryTableCalc   FunctionCategory = "table_calc"
	CategoryNumber      FunctionCategory = "number"
	CategoryString      FunctionCategory = "string"
	CategoryDate        FunctionCategory = "date"
	CategoryConversion  FunctionCategory = "conversion"
	CategoryLogical     FunctionCategory = "logical"
	CategoryUser        FunctionCategory = "user"
	CategorySpatial     FunctionCategory = "spatial"
	CategoryPassThrough FunctionCategory = "pass_through"
)

// FunctionInfo describes a calculation function.
type FunctionInfo struct {
	Name          string           // upper-case name, e.g. "SUM"
	Signature     string           // e.g. "SUM(expression) -> number"
	Description   string           // brief description
	Category      FunctionCategory // function category
	IsAggregate   bool             // aggregates rows
	IsConditional bool             // branches on its arguments
}

// Catalog lists every function the classifier recognizes.
// SCRIPT_* and RAWSQL* families are matched by prefix in LookupFunction.
var Catalog = []FunctionInfo{
	// ==================== AGGREGATE FUNCTIONS ====================
	{Name: "SUM", Signature: "SUM(expression) -> number", Description: "Sum of values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "AVG", Signature: "AVG(expression) -> number", Description: "Average of values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "MIN", Signature: "MIN(expression[, expression]) -> same", Description: "Minimum value, or the smaller of two values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "MAX", Signature: "MAX(expression[, expression]) -> same", Description: "Maximum value, or the larger of two values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "COUNT", Signature: "COUNT(expression) -> number", Description: "Count of non-null values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "COUNTD", Signature: "COUNTD(expression) -> number", Description: "Count of distinct values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "MEDIAN", Signature: "MEDIAN(expression) -> number", Description: "Median of values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "ATTR", Signature: "ATTR(expression) -> same", Description: "Value if all rows share it, otherwise *", Category: CategoryAggregate, IsAggregate: true},
	{Name: "STDEV", Signature: "STDEV(expression) -> number", Description: "Sample standard deviation", Category: CategoryAggregate, IsAggregate: true},
	{Name: "STDEVP", Signature: "STDEVP(expression) -> number", Description: "Population standard deviation", Category: CategoryAggregate, IsAggregate: true},
	{Name: "VAR", Signature: "VAR(expression) -> number", Description: "Sample variance", Category: CategoryAggregate, IsAggregate: true},
	{Name: "VARP", Signature: "VARP(expression) -> number", Description: "Population variance", Category: CategoryAggregate, IsAggregate: true},
	{Name: "PERCENTILE", Signature: "PERCENTILE(expression, number) -> number", Description: "Percentile of values", Category: CategoryAggregate, IsAggregate: true},
	{Name: "CORR", Signature: "CORR(expr1, expr2) -> number", Description: "Pearson correlation coefficient", Category: CategoryAggregate, IsAggregate: true},
	{Name: "COVAR", Signature: "COVAR(expr1, expr2) -> number", Description: "Sample covariance", Category: CategoryAggregate, IsAggregate: true},
	{Name: "COVARP", Signature: "COVARP(expr1, expr2) -> number", Description: "Population covariance", Category: CategoryAggregate, IsAggregate: true},
	{Name: "COLLECT", Signature: "COLLECT(spatial) -> spatial", Description: "Aggregate spatial values", Category: CategoryAggregate, IsAggregate: true},

	// ==================== TABLE CALCULATIONS ====================
	{Name: "INDEX", Signature: "INDEX() -> number", Description: "Index of the current row in the partition", Category: CategoryTableCalc},
	{Name: "FIRST", Signature: "FIRST() -> number", Description: "Offset from the current row to the first row", Category: CategoryTableCalc},
	{Name: "LAST", Signature: "LAST() -> number", Description: "Offset from the current row to the last row", Category: CategoryTableCalc},
	{Name: "SIZE", Signature: "SIZE() -> number", Description: "Number of rows in the partition", Category: CategoryTableCalc},
	{Name: "LOOKUP", Signature: "LOOKUP(expression, [offset]) -> same", Description: "Value at an offset from the current row", Category: CategoryTableCalc},
	{Name: "PREVIOUS_VALUE", Signature: "PREVIOUS_VALUE(expression) -> same", Description: "Value of this calculation in the previous row", Category: CategoryTableCalc},
	{Name: "TOTAL", Signature: "TOTAL(expression) -> same", Description: "Total for the partition", Category: CategoryTableCalc},
	{Name: "RANK", Signature: "RANK(expression, ['asc'|'desc']) -> number", Description: "Competition rank", Category: CategoryTableCalc},
	{Name: "RANK_DENSE", Signature: "RANK_DENSE(expression, ['asc'|'desc']) -> number", Description: "Dense rank", Category: CategoryTableCalc},
	{Name: "RANK_MODIFIED", Signature: "RANK_MODIFIED(expression, ['asc'|'desc']) -> number", Description: "Modified competition rank", Category: CategoryTableCalc},
	{Name: "RANK_PERCENTILE", Signature: "RANK_PERCENTILE(expression, ['asc'|'desc']) -> number", Description: "Percentile rank", Category: CategoryTableCalc},
	{Name: "RANK_UNIQUE", Signature: "RANK_UNIQUE(expression, ['asc'|'desc']) -> number", Description: "Unique rank", Category: CategoryTableCalc},
	{Name: "RUNNING_AVG", Signature: "RUNNING_AVG(expression) -> number", Description: "Running average", Category: CategoryTableCalc},
	{Name: "RUNNING_COUNT", Signature: "RUNNING_COUNT(expression) -> number", Description: "Running count", Category: CategoryTableCalc},
	{Name: "RUNNING_MAX", Signature: "RUNNING_MAX(expression) -> same", Description: "Running maximum", Category: CategoryTableCalc},
	{Name: "RUNNING_MIN", Signature: "RUNNING_MIN(expression) -> same", Description: "Running minimum", Category: CategoryTableCalc},
	{Name: "RUNNING_SUM", Signature: "RUNNING_SUM(expression) -> number", Description: "Running sum", Category: CategoryTableCalc},
	{Name: "WINDOW_AVG", Signature: "WINDOW_AVG(expression, [start, end]) -> number", Description: "Average over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_COUNT", Signature: "WINDOW_COUNT(expression, [start, end]) -> number", Description: "Count over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_MAX", Signature: "WINDOW_MAX(expression, [start, end]) -> same", Description: "Maximum over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_MEDIAN", Signature: "WINDOW_MEDIAN(expression, [start, end]) -> number", Description: "Median over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_MIN", Signature: "WINDOW_MIN(expression, [start, end]) -> same", Description: "Minimum over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_PERCENTILE", Signature: "WINDOW_PERCENTILE(expression, number, [start, end]) -> number", Description: "Percentile over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_STDEV", Signature: "WINDOW_STDEV(expression, [start, end]) -> number", Description: "Sample standard deviation over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_STDEVP", Signature: "WINDOW_STDEVP(expression, [start, end]) -> number", Description: "Population standard deviation over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_SUM", Signature: "WINDOW_SUM(expression, [start, end]) -> number", Description: "Sum over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_VAR", Signature: "WINDOW_VAR(expression, [start, end]) -> number", Description: "Sample variance over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_VARP", Signature: "WINDOW_VARP(expression, [start, end]) -> number", Description: "Population variance over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_CORR", Signature: "WINDOW_CORR(expr1, expr2, [start, end]) -> number", Description: "Correlation over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_COVAR", Signature: "WINDOW_COVAR(expr1, expr2, [start, end]) -> number", Description: "Sample covariance over the window", Category: CategoryTableCalc},
	{Name: "WINDOW_COVARP", Signature: "WINDOW_COVARP(expr1, expr2, [start, end]) -> number", Description: "Population covariance over the window", Category: CategoryTableCalc},

	// ==================== NUMBER FUNCTIONS ====================
	{Name: "ABS", Signature: "ABS(number) -> number", Description: "Absolute value", Category: CategoryNumber},
	{Name: "ACOS", Signature: "ACOS(number) -> number", Description: "Arc cosine", Category: CategoryNumber},
	{Name: "ASIN", Signature: "ASIN(number) -> number", Description: "Arc sine", Category: CategoryNumber},
	{Name: "ATAN", Signature: "ATAN(number) -> number", Description: "Arc tangent", Category: CategoryNumber},
	{Name: "ATAN2", Signature: "ATAN2(y, x) -> number", Description: "Arc tangent of y/x", Category: CategoryNumber},
	{Name: "CEILING", Signature: "CEILING(number) -> number", Description: "Round up to an integer", Category: CategoryNumber},
	{Name: "COS", Signature: "COS(number) -> number", Description: "Cosine", Category: CategoryNumber},
	{Name: "COT", Signature: "COT(number) -> number", Description: "Cotangent", Category: CategoryNumber},
	{Name: "DEGREES", Signature: "DEGREES(number) -> number", Description: "Radians to degrees", Category: CategoryNumber},
	{Name: "DIV", Signature: "DIV(integer, integer) -> integer", Description: "Integer division", Category: CategoryNumber},
	{Name: "EXP", Signature: "EXP(number) -> number", Description: "e raised to a power", Category: CategoryNumber},
	{Name: "FLOOR", Signature: "FLOOR(number) -> number", Description: "Round down to an integer", Category: CategoryNumber},
	{Name: "HEXBINX", Signature: "HEXBINX(number, number) -> number", Description: "Hexagonal bin x coordinate", Category: CategoryNumber},
	{Name: "HEXBINY", Signature: "HEXBINY(number, number) -> number", Description: "Hexagonal bin y coordinate", Category: CategoryNumber},
	{Name: "LN", Signature: "LN(number) -> number", Description: "Natural logarithm", Category: CategoryNumber},
	{Name: "LOG", Signature: "LOG(number, [base]) -> number", Description: "Logarithm", Category: CategoryNumber},
	{Name: "PI", Signature: "PI() -> number", Description: "The constant pi", Category: CategoryNumber},
	{Name: "POWER", Signature: "POWER(number, power) -> number", Description: "Raise to a power", Category: CategoryNumber},
	{Name: "RADIANS", Signature: "RADIANS(number) -> number", Description: "Degrees to radians", Category: CategoryNumber},
	{Name: "ROUND", Signature: "ROUND(number, [decimals]) -> number", Description: "Round to decimals", Category: CategoryNumber},
	{Name: "SIGN", Signature: "SIGN(number) -> number", Description: "Sign of a number", Category: CategoryNumber},
	{Name: "SIN", Signature: "SIN(number) -> number", Description: "Sine", Category: CategoryNumber},
	{Name: "SQRT", Signature: "SQRT(number) -> number", Description: "Square root", Category: CategoryNumber},
	{Name: "SQUARE", Signature: "SQUARE(number) -> number", Description: "Square", Category: CategoryNumber},
	{Name: "TAN", Signature: "TAN(number) -> number", Description: "Tangent", Category: CategoryNumber},
	{Name: "ZN", Signature: "ZN(expression) -> number", Description: "Zero if null", Category: CategoryNumber},

	// ==================== STRING FUNCTIONS ====================
	{Name: "ASCII", Signature: "ASCII(string) -> number", Description: "Code point of the first character", Category: CategoryString},
	{Name: "CHAR", Signature: "CHAR(number) -> string", Description: "Character for a code point", Category: CategoryString},
	{Name: "CONTAINS", Signature: "CONTAINS(string, substring) -> boolean", Description: "True if string contains substring", Category: CategoryString},
	{Name: "ENDSWITH", Signature: "ENDSWITH(string, substring) -> boolean", Description: "True if string ends with substring", Category: CategoryString},
	{Name: "FIND", Signature: "FIND(string, substring, [start]) -> number", Description: "Position of substring", Category: CategoryString},
	{Name: "FINDNTH", Signature: "FINDNTH(string, substring, n) -> number", Description: "Position of the nth occurrence", Category: CategoryString},
	{Name: "LEFT", Signature: "LEFT(string, n) -> string", Description: "Leftmost characters", Category: CategoryString},
	{Name: "LEN", Signature: "LEN(string) -> number", Description: "Length of string", Category: CategoryString},
	{Name: "LOWER", Signature: "LOWER(string) -> string", Description: "Lower-case string", Category: CategoryString},
	{Name: "LTRIM", Signature: "LTRIM(string) -> string", Description: "Trim leading spaces", Category: CategoryString},
	{Name: "MID", Signature: "MID(string, start, [length]) -> string", Description: "Substring", Category: CategoryString},
	{Name: "PROPER", Signature: "PROPER(string) -> string", Description: "Title-case string", Category: CategoryString},
	{Name: "REGEXP_EXTRACT", Signature: "REGEXP_EXTRACT(string, pattern) -> string", Description: "First regex capture", Category: CategoryString},
	{Name: "REGEXP_EXTRACT_NTH", Signature: "REGEXP_EXTRACT_NTH(string, pattern, n) -> string", Description: "Nth regex capture", Category: CategoryString},
	{Name: "REGEXP_MATCH", Signature: "REGEXP_MATCH(string, pattern) -> boolean", Description: "True if regex matches", Category: CategoryString},
	{Name: "REGEXP_REPLACE", Signature: "REGEXP_REPLACE(string, pattern, replacement) -> string", Description: "Regex replace", Category: CategoryString},
	{Name: "REPLACE", Signature: "REPLACE(string, substring, replacement) -> string", Description: "Replace substring", Category: CategoryString},
	{Name: "RIGHT", Signature: "RIGHT(string, n) -> string", Description: "Rightmost characters", Category: CategoryString},
	{Name: "RTRIM", Signature: "RTRIM(string) -> string", Description: "Trim trailing spaces", Category: CategoryString},
	{Name: "SPACE", Signature: "SPACE(n) -> string", Description: "String of n spaces", Category: CategoryString},
	{Name: "SPLIT", Signature: "SPLIT(string, delimiter, n) -> string", Description: "Nth token after splitting", Category: CategoryString},
	{Name: "STARTSWITH", Signature: "STARTSWITH(string, substring) -> boolean", Description: "True if string starts with substring", Category: CategoryString},
	{Name: "TRIM", Signature: "TRIM(string) -> string", Description: "Trim spaces", Category: CategoryString},
	{Name: "UPPER", Signature: "UPPER(string) -> string", Description: "Upper-case string", Category: CategoryString},

	// ==================== DATE FUNCTIONS ====================
	{Name: "DATEADD", Signature: "DATEADD(part, n, date) -> date", Description: "Add an interval to a date", Category: CategoryDate},
	{Name: "DATEDIFF", Signature: "DATEDIFF(part, start, end, [week_start]) -> number", Description: "Difference between dates", Category: CategoryDate},
	{Name: "DATENAME", Signature: "DATENAME(part, date, [week_start]) -> string", Description: "Name of a date part", Category: CategoryDate},
	{Name: "DATEPARSE", Signature: "DATEPARSE(format, string) -> datetime", Description: "Parse a date string", Category: CategoryDate},
	{Name: "DATEPART", Signature: "DATEPART(part, date, [week_start]) -> number", Description: "Integer date part", Category: CategoryDate},
	{Name: "DATETRUNC", Signature: "DATETRUNC(part, date, [week_start]) -> datetime", Description: "Truncate a date", Category: CategoryDate},
	{Name: "DAY", Signature: "DAY(date) -> number", Description: "Day of month", Category: CategoryDate},
	{Name: "ISDATE", Signature: "ISDATE(string) -> boolean", Description: "True if string is a valid date", Category: CategoryDate},
	{Name: "MAKEDATE", Signature: "MAKEDATE(year, month, day) -> date", Description: "Build a date", Category: CategoryDate},
	{Name: "MAKEDATETIME", Signature: "MAKEDATETIME(date, time) -> datetime", Description: "Build a datetime", Category: CategoryDate},
	{Name: "MAKETIME", Signature: "MAKETIME(hour, minute, second) -> datetime", Description: "Build a time", Category: CategoryDate},
	{Name: "MONTH", Signature: "MONTH(date) -> number", Description: "Month number", Category: CategoryDate},
	{Name: "NOW", Signature: "NOW() -> datetime", Description: "Current date and time", Category: CategoryDate},
	{Name: "QUARTER", Signature: "QUARTER(date) -> number", Description: "Quarter number", Category: CategoryDate},
	{Name: "TODAY", Signature: "TODAY() -> date", Description: "Current date", Category: CategoryDate},
	{Name: "WEEK", Signature: "WEEK(date) -> number", Description: "Week number", Category: CategoryDate},
	{Name: "YEAR", Signature: "YEAR(date) -> number", Description: "Year number", Category: CategoryDate},
	{Name: "ISOYEAR", Signature: "ISOYEAR(date) -> number", Description: "ISO-8601 year", Category: CategoryDate},
	{Name: "ISOWEEK", Signature: "ISOWEEK(date) -> number", Description: "ISO-8601 week", Category: CategoryDate},

	// ==================== TYPE CONVERSION ====================
	{Name: "DATE", Signature: "DATE(expression) -> date", Description: "Convert to date", Category: CategoryConversion},
	{Name: "DATETIME", Signature: "DATETIME(expression) -> datetime", Description: "Convert to datetime", Category: CategoryConversion},
	{Name: "FLOAT", Signature: "FLOAT(expression) -> number", Description: "Convert to float", Category: CategoryConversion},
	{Name: "INT", Signature: "INT(expression) -> integer", Description: "Convert to integer", Category: CategoryConversion},
	{Name: "STR", Signature: "STR(expression) -> string", Description: "Convert to string", Category: CategoryConversion},

	// ==================== LOGICAL FUNCTIONS ====================
	{Name: "IIF", Signature: "IIF(test, then, else, [unknown]) -> same", Description: "Inline conditional", Category: CategoryLogical, IsConditional: true},
	{Name: "IFNULL", Signature: "IFNULL(expr1, expr2) -> same", Description: "expr1 if not null, else expr2", Category: CategoryLogical},
	{Name: "ISNULL", Signature: "ISNULL(expression) -> boolean", Description: "True if null", Category: CategoryLogical},

	// ==================== USER FUNCTIONS ====================
	{Name: "FULLNAME", Signature: "FULLNAME() -> string", Description: "Full name of the current user", Category: CategoryUser},
	{Name: "USERNAME", Signature: "USERNAME() -> string", Description: "Username of the current user", Category: CategoryUser},
	{Name: "USERDOMAIN", Signature: "USERDOMAIN() -> string", Description: "Domain of the current user", Category: CategoryUser},
	{Name: "ISFULLNAME", Signature: "ISFULLNAME(string) -> boolean", Description: "True if the current user's full name matches", Category: CategoryUser},
	{Name: "ISUSERNAME", Signature: "ISUSERNAME(string) -> boolean", Description: "True if the current username matches", Category: CategoryUser},
	{Name: "ISMEMBEROF", Signature: "ISMEMBEROF(string) -> boolean", Description: "True if the current user is in the group", Category: CategoryUser},

	// ==================== SPATIAL FUNCTIONS ====================
	{Name: "MAKEPOINT", Signature: "MAKEPOINT(lat, lon) -> spatial", Description: "Point from coordinates", Category: CategorySpatial},
	{Name: "MAKELINE", Signature: "MAKELINE(point, point) -> spatial", Description: "Line between points", Category: CategorySpatial},
	{Name: "DISTANCE", Signature: "DISTANCE(point, point, unit) -> number", Description: "Distance between points", Category: CategorySpatial},
	{Name: "BUFFER", Signature: "BUFFER(point, distance, unit) -> spatial", Description: "Circle around a point", Category: CategorySpatial},
}

var catalogIndex = func() map[string]*FunctionInfo {
	m := make(map[string]*FunctionInfo, len(Catalog))
	for i := range Catalog {
		m[Catalog[i].Name] = &Catalog[i]
	}
	return m
}()

// scriptInfo stands in for the SCRIPT_BOOL/INT/REAL/STR family.
var scriptInfo = FunctionInfo{
	Name:        "SCRIPT_*",
	Signature:   "SCRIPT_REAL(script, expression...) -> same",
	Description: "Analytics extension call, evaluated as a table calculation",
	Category:    CategoryTableCalc,
}

// rawSQLInfo stands in for the RAWSQL_* and RAWSQLAGG_* families.
var rawSQLInfo = FunctionInfo{
	Name:        "RAWSQL_*",
	Signature:   "RAWSQL_REAL(sql, expression...) -> same",
	Description: "Pass-through SQL evaluated by the database",
	Category:    CategoryPassThrough,
}

// LookupFunction returns the catalog entry for a function name (case-insensitive).
func LookupFunction(name string) (*FunctionInfo, bool) {
	upper := strings.ToUpper(name)
	if fn, ok := catalogIndex[upper]; ok {
		return fn, true
	}
	switch {
	case strings.HasPrefix(upper, "SCRIPT_"):
		return &scriptInfo, true
	case strings.HasPrefix(upper, "RAWSQL"):
		return &rawSQLInfo, true
	}
	return nil, false
}

// IsTableCalcFunction reports whether name is a table calculation function.
func IsTableCalcFunction(name string) bool {
	fn, ok := LookupFunction(name)
	return ok && fn.Category == CategoryTableCalc
}
