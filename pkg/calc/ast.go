package calc

import (
	"strings"

	"github.com/leapstack-labs/tablook/pkg/token"
)

// Expr is a node of a parsed formula.
type Expr interface {
	exprNode()
	// Pos returns the position of the first token of the expression.
	Pos() token.Position
}

// FieldRef is a bracketed reference, optionally qualified: [Sales] or
// [Parameters].[Threshold].
type FieldRef struct {
	Qualifier string
	Name      string
	At        token.Position
}

func (*FieldRef) exprNode() {}

// Pos implements Expr.
func (f *FieldRef) Pos() token.Position { return f.At }

// Key returns a case-insensitive identity for the reference.
func (f *FieldRef) Key() string {
	if f.Qualifier == "" {
		return strings.ToLower(f.Name)
	}
	return strings.ToLower(f.Qualifier) + "." + strings.ToLower(f.Name)
}

// String renders the reference in bracket form.
func (f *FieldRef) String() string {
	if f.Qualifier == "" {
		return "[" + f.Name + "]"
	}
	return "[" + f.Qualifier + "].[" + f.Name + "]"
}

// LiteralKind is the kind of a literal value.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralDate
	LiteralBool
	LiteralNull
)

// Literal represents a constant.
type Literal struct {
	Kind  LiteralKind
	Value string
	At    token.Position
}

func (*Literal) exprNode() {}

// Pos implements Expr.
func (l *Literal) Pos() token.Position { return l.At }

// FuncCall is a function application. Name is upper-cased.
type FuncCall struct {
	Name string
	Args []Expr
	At   token.Position
}

func (*FuncCall) exprNode() {}

// Pos implements Expr.
func (c *FuncCall) Pos() token.Position { return c.At }

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Pos implements Expr.
func (b *BinaryExpr) Pos() token.Position {
	if b.Left != nil {
		return b.Left.Pos()
	}
	return token.Position{}
}

// UnaryExpr is a prefix NOT or minus.
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
	At   token.Position
}

func (*UnaryExpr) exprNode() {}

// Pos implements Expr.
func (u *UnaryExpr) Pos() token.Position { return u.At }

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Expr Expr
	At   token.Position
}

func (*ParenExpr) exprNode() {}

// Pos implements Expr.
func (p *ParenExpr) Pos() token.Position { return p.At }

// InExpr is `expr [NOT] IN (list)`.
type InExpr struct {
	Expr Expr
	Not  bool
	List []Expr
}

func (*InExpr) exprNode() {}

// Pos implements Expr.
func (i *InExpr) Pos() token.Position { return i.Expr.Pos() }

// Branch is one condition/result arm of an IF or CASE.
type Branch struct {
	Cond   Expr
	Result Expr
}

// IfExpr is IF ... THEN ... [ELSEIF ...] [ELSE ...] END.
type IfExpr struct {
	Branches []Branch
	Else     Expr
	At       token.Position
}

func (*IfExpr) exprNode() {}

// Pos implements Expr.
func (i *IfExpr) Pos() token.Position { return i.At }

// CaseExpr is CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []Branch
	Else    Expr
	At      token.Position
}

func (*CaseExpr) exprNode() {}

// Pos implements Expr.
func (c *CaseExpr) Pos() token.Position { return c.At }

// LODExpr is a level-of-detail expression. Scope is FIXED, INCLUDE or
// EXCLUDE; a bare `{ SUM([x]) }` has Scope EOF and no dimensions.
type LODExpr struct {
	Scope token.TokenType
	Dims  []Expr
	Body  Expr
	At    token.Position
}

func (*LODExpr) exprNode() {}

// Pos implements Expr.
func (l *LODExpr) Pos() token.Position { return l.At }

// Walk visits expr depth-first, calling fn before the children.
// Children are skipped when fn returns false.
func Walk(expr Expr, fn func(Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	for _, child := range children(expr) {
		Walk(child, fn)
	}
}

func children(expr Expr) []Expr {
	switch e := expr.(type) {
	case *FuncCall:
		return e.Args
	case *BinaryExpr:
		return []Expr{e.Left, e.Right}
	case *UnaryExpr:
		return []Expr{e.Expr}
	case *ParenExpr:
		return []Expr{e.Expr}
	case *InExpr:
		return append([]Expr{e.Expr}, e.List...)
	case *IfExpr:
		out := make([]Expr, 0, 2*len(e.Branches)+1)
		for _, b := range e.Branches {
			out = append(out, b.Cond, b.Result)
		}
		if e.Else != nil {
			out = append(out, e.Else)
		}
		return out
	case *CaseExpr:
		out := make([]Expr, 0, 2*len(e.Whens)+2)
		if e.Operand != nil {
			out = append(out, e.Operand)
		}
		for _, b := range e.Whens {
			out = append(out, b.Cond, b.Result)
		}
		if e.Else != nil {
			out = append(out, e.Else)
		}
		return out
	case *LODExpr:
		return append(append([]Expr{}, e.Dims...), e.Body)
	}
	return nil
}
