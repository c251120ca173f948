package calc

import (
	"math"
	"sort"
	"strings"

	"github.com/leapstack-labs/tablook/pkg/core"
	"github.com/leapstack-labs/tablook/pkg/token"
)

// parametersQualifier is the datasource name that holds workbook parameters.
const parametersQualifier = "parameters"

// Saturation constants for the complexity score. A metric equal to its
// constant contributes half of its weight.
const (
	depthSaturation    = 2
	functionSaturation = 3
	fieldSaturation    = 3
)

// Options tunes Analyze.
type Options struct {
	// Parameters lists parameter names and captions known to the workbook.
	// Unqualified references matching one of them count as parameter references.
	Parameters []string
}

func (o Options) parameterSet() map[string]bool {
	params := make(map[string]bool, len(o.Parameters))
	for _, p := range o.Parameters {
		params[strings.ToLower(strings.Trim(p, "[]"))] = true
	}
	return params
}

// Analysis summarizes a formula.
type Analysis struct {
	Category       core.CalcCategory
	Score          float64
	Depth          int
	Functions      []string   // distinct, sorted, upper-case
	Refs           []FieldRef // distinct, in order of first appearance
	HasConditional bool
	HasAggregate   bool
	// Err is the parse error, if any. Metrics then come from the token stream.
	Err error
}

type metrics struct {
	depth       int
	functions   map[string]bool
	refs        []FieldRef
	conditional bool
}

func newMetrics() *metrics {
	return &metrics{functions: make(map[string]bool)}
}

func (m *metrics) addRef(ref FieldRef) {
	for _, r := range m.refs {
		if r.Key() == ref.Key() {
			return
		}
	}
	m.refs = append(m.refs, ref)
}

// Analyze parses formula and classifies it. It never fails: a formula that
// does not parse is categorized unknown and scored from its tokens.
func Analyze(formula string, opts Options) Analysis {
	params := opts.parameterSet()

	expr, err := Parse(formula)
	var m *metrics
	if err != nil {
		m = tokenMetrics(formula)
	} else {
		m = exprMetrics(expr)
	}

	a := Analysis{
		Category:       core.CategoryUnknown,
		Depth:          m.depth,
		Refs:           m.refs,
		HasConditional: m.conditional,
		Err:            err,
	}
	for name := range m.functions {
		a.Functions = append(a.Functions, name)
		if fn, ok := LookupFunction(name); ok && fn.IsAggregate {
			a.HasAggregate = true
		}
	}
	sort.Strings(a.Functions)
	a.Score = ComplexityScore(m.depth, len(m.functions), len(m.refs), m.conditional)

	if err == nil {
		a.Category = categorize(expr, params)
	}
	return a
}

// ComplexityScore combines the formula metrics into a score in [0, 1).
// Each term saturates as n/(n+k) and carries a quarter of the weight, so the
// score is non-decreasing in every argument. A single field reference with
// no functions or branching scores 0.
func ComplexityScore(depth, functions, fields int, conditional bool) float64 {
	sat := func(n, k int) float64 {
		if n <= 0 {
			return 0
		}
		return float64(n) / float64(n+k)
	}
	cond := 0.0
	if conditional {
		cond = 1
	}
	score := 0.25*sat(depth, depthSaturation) +
		0.25*sat(functions, functionSaturation) +
		0.25*sat(fields-1, fieldSaturation) +
		0.25*cond
	return math.Round(score*1e4) / 1e4
}

// exprMetrics computes nesting depth, functions, references and branching.
func exprMetrics(expr Expr) *metrics {
	m := newMetrics()
	m.depth = nestingDepth(expr)
	Walk(expr, func(e Expr) bool {
		switch n := e.(type) {
		case *FuncCall:
			m.functions[n.Name] = true
			if fn, ok := LookupFunction(n.Name); ok && fn.IsConditional {
				m.conditional = true
			}
		case *FieldRef:
			m.addRef(FieldRef{Qualifier: n.Qualifier, Name: n.Name, At: n.At})
		case *IfExpr, *CaseExpr:
			m.conditional = true
		}
		return true
	})
	return m
}

// nestingDepth counts nested function calls, conditionals and LOD
// expressions. Operators and parentheses do not add depth.
func nestingDepth(expr Expr) int {
	d := 0
	for _, child := range children(expr) {
		if cd := nestingDepth(child); cd > d {
			d = cd
		}
	}
	switch expr.(type) {
	case *FuncCall, *IfExpr, *CaseExpr, *LODExpr:
		d++
	}
	return d
}

// tokenMetrics approximates the metrics of a formula that does not parse.
func tokenMetrics(formula string) *metrics {
	m := newMetrics()
	toks := NewLexer(formula).Tokenize()

	// Each open scope records whether it adds depth.
	var scopes []bool
	current := 0
	open := func(counts bool) {
		scopes = append(scopes, counts)
		if counts {
			current++
			if current > m.depth {
				m.depth = current
			}
		}
	}
	closeScope := func() {
		if len(scopes) == 0 {
			return
		}
		if scopes[len(scopes)-1] {
			current--
		}
		scopes = scopes[:len(scopes)-1]
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Type {
		case token.IDENT:
			if i+1 < len(toks) && toks[i+1].Type == token.LPAREN {
				name := strings.ToUpper(t.Literal)
				m.functions[name] = true
				if fn, ok := LookupFunction(name); ok && fn.IsConditional {
					m.conditional = true
				}
			}
		case token.LPAREN:
			open(i > 0 && toks[i-1].Type == token.IDENT)
		case token.LBRACE, token.IF, token.CASE:
			open(true)
			if t.Type != token.LBRACE {
				m.conditional = true
			}
		case token.RPAREN, token.RBRACE, token.END:
			closeScope()
		case token.FIELD:
			ref := FieldRef{Name: t.Literal, At: t.Pos}
			if i+2 < len(toks) && toks[i+1].Type == token.DOT && toks[i+2].Type == token.FIELD {
				ref.Qualifier = t.Literal
				ref.Name = toks[i+2].Literal
				i += 2
			}
			m.addRef(ref)
		}
	}
	return m
}

// categorize applies the category rules in order: LOD, table calculation,
// parameter reference, then simple when every function is a known
// non-pass-through function.
func categorize(expr Expr, params map[string]bool) core.CalcCategory {
	var hasLOD, hasTableCalc, hasParam, hasUnknownFn bool
	Walk(expr, func(e Expr) bool {
		switch n := e.(type) {
		case *LODExpr:
			hasLOD = true
		case *FuncCall:
			fn, ok := LookupFunction(n.Name)
			switch {
			case !ok || fn.Category == CategoryPassThrough:
				hasUnknownFn = true
			case fn.Category == CategoryTableCalc:
				hasTableCalc = true
			}
		case *FieldRef:
			if isParameterRef(n, params) {
				hasParam = true
			}
		}
		return true
	})

	switch {
	case hasLOD:
		return core.CategoryLOD
	case hasTableCalc:
		return core.CategoryTableCalc
	case hasParam:
		return core.CategoryParameterBased
	case hasUnknownFn:
		return core.CategoryUnknown
	default:
		return core.CategorySimple
	}
}

func isParameterRef(ref *FieldRef, params map[string]bool) bool {
	if ref.Qualifier != "" {
		return strings.EqualFold(ref.Qualifier, parametersQualifier)
	}
	return params[strings.ToLower(ref.Name)]
}

// IsParameterRef reports whether ref points at a workbook parameter.
func IsParameterRef(ref FieldRef, opts Options) bool {
	return isParameterRef(&ref, opts.parameterSet())
}
