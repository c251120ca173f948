package calc

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/pkg/token"
)

// Precedence levels, lowest first.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precComparison // =, !=, <, >, <=, >=, [NOT] IN
	precAddition   // +, -
	precMultiply   // *, /, %
	precPower      // ^
	precUnary      // -
)

// Parser builds an Expr tree from a formula.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // next token
	errors []error
}

// NewParser creates a parser for the given formula.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a complete formula.
func Parse(input string) (Expr, error) {
	return NewParser(input).Parse()
}

// Parse parses the formula and returns the first error encountered.
// Lexical errors win over parse errors because they explain them.
func (p *Parser) Parse() (Expr, error) {
	if p.token.Type == token.EOF {
		return nil, &ParseError{Pos: p.token.Pos, Message: ErrEmptyFormula}
	}

	expr := p.parseExpression()
	if len(p.errors) == 0 && p.token.Type != token.EOF {
		p.addError(fmt.Sprintf(ErrTrailingInput, describe(p.token)))
	}

	if len(p.lexer.Errors) > 0 {
		return nil, p.lexer.Errors[0]
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return expr, nil
}

// Comments returns the comments seen while parsing.
func (p *Parser) Comments() []*token.Comment {
	return p.lexer.Comments
}

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.match(t) {
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), t))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Pos: p.token.Pos, Message: msg})
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of formula"
	case token.FIELD:
		return "[" + tok.Literal + "]"
	case token.STRING:
		return "string '" + tok.Literal + "'"
	default:
		return "'" + tok.Literal + "'"
	}
}

func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(precNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for !p.failed() {
		prec := p.infixPrecedence()
		if prec < minPrecedence {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) infixPrecedence() int {
	switch p.token.Type {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE, token.IN:
		return precComparison
	case token.NOT:
		if p.peek.Type == token.IN {
			return precComparison
		}
		return precNone
	case token.PLUS, token.MINUS:
		return precAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiply
	case token.CARET:
		return precPower
	default:
		return precNone
	}
}

func (p *Parser) parseInfixExpr(left Expr, prec int) Expr {
	if p.check(token.IN) || p.check(token.NOT) {
		return p.parseIn(left)
	}

	op := p.token.Type
	p.nextToken()

	// ^ is right-associative
	next := prec + 1
	if op == token.CARET {
		next = prec
	}
	right := p.parseExpressionWithPrecedence(next)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

func (p *Parser) parseIn(left Expr) Expr {
	in := &InExpr{Expr: left, Not: p.match(token.NOT)}
	p.nextToken() // IN
	if !p.expect(token.LPAREN) {
		return nil
	}
	in.List = p.parseExprList(token.RPAREN)
	if in.List == nil || !p.expect(token.RPAREN) {
		return nil
	}
	return in
}

// parseExprList parses one or more comma-separated expressions.
func (p *Parser) parseExprList(end token.TokenType) []Expr {
	var list []Expr
	for {
		e := p.parseExpression()
		if e == nil {
			return nil
		}
		list = append(list, e)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.check(end) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), end))
		return nil
	}
	return list
}

func (p *Parser) parsePrefixExpr() Expr {
	at := p.token.Pos
	switch p.token.Type {
	case token.NOT:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(precNot)
		if expr == nil {
			return nil
		}
		return &UnaryExpr{Op: token.NOT, Expr: expr, At: at}

	case token.MINUS:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(precUnary)
		if expr == nil {
			return nil
		}
		return &UnaryExpr{Op: token.MINUS, Expr: expr, At: at}

	case token.PLUS:
		p.nextToken()
		return p.parseExpressionWithPrecedence(precUnary)

	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() Expr {
	tok := p.token
	switch tok.Type {
	case token.FIELD:
		return p.parseFieldRef()
	case token.NUMBER:
		p.nextToken()
		return &Literal{Kind: LiteralNumber, Value: tok.Literal, At: tok.Pos}
	case token.STRING:
		p.nextToken()
		return &Literal{Kind: LiteralString, Value: tok.Literal, At: tok.Pos}
	case token.DATE:
		p.nextToken()
		return &Literal{Kind: LiteralDate, Value: tok.Literal, At: tok.Pos}
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &Literal{Kind: LiteralBool, Value: strings.ToLower(tok.Literal), At: tok.Pos}
	case token.NULL:
		p.nextToken()
		return &Literal{Kind: LiteralNull, Value: "null", At: tok.Pos}
	case token.IDENT:
		if p.peek.Type != token.LPAREN {
			p.addError(fmt.Sprintf(ErrBareIdentifier, tok.Literal))
			return nil
		}
		return p.parseCall()
	case token.LPAREN:
		p.nextToken()
		inner := p.parseExpression()
		if inner == nil || !p.expect(token.RPAREN) {
			return nil
		}
		return &ParenExpr{Expr: inner, At: tok.Pos}
	case token.IF:
		return p.parseIf()
	case token.CASE:
		return p.parseCase()
	case token.LBRACE:
		return p.parseLOD()
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedExpr, describe(tok)))
		return nil
	}
}

func (p *Parser) parseFieldRef() Expr {
	ref := &FieldRef{Name: p.token.Literal, At: p.token.Pos}
	p.nextToken()
	if p.check(token.DOT) && p.peek.Type == token.FIELD {
		p.nextToken()
		ref.Qualifier = ref.Name
		ref.Name = p.token.Literal
		p.nextToken()
	}
	return ref
}

func (p *Parser) parseCall() Expr {
	call := &FuncCall{Name: strings.ToUpper(p.token.Literal), At: p.token.Pos}
	p.nextToken() // name
	p.nextToken() // (
	if p.match(token.RPAREN) {
		return call
	}
	call.Args = p.parseExprList(token.RPAREN)
	if call.Args == nil || !p.expect(token.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseBranch() (Branch, bool) {
	cond := p.parseExpression()
	if cond == nil || !p.expect(token.THEN) {
		return Branch{}, false
	}
	result := p.parseExpression()
	if result == nil {
		return Branch{}, false
	}
	return Branch{Cond: cond, Result: result}, true
}

func (p *Parser) parseElseEnd() (Expr, bool) {
	var elseExpr Expr
	if p.match(token.ELSE) {
		elseExpr = p.parseExpression()
		if elseExpr == nil {
			return nil, false
		}
	}
	return elseExpr, p.expect(token.END)
}

func (p *Parser) parseIf() Expr {
	ifExpr := &IfExpr{At: p.token.Pos}
	p.nextToken() // IF

	for {
		b, ok := p.parseBranch()
		if !ok {
			return nil
		}
		ifExpr.Branches = append(ifExpr.Branches, b)
		if !p.match(token.ELSEIF) {
			break
		}
	}

	elseExpr, ok := p.parseElseEnd()
	if !ok {
		return nil
	}
	ifExpr.Else = elseExpr
	return ifExpr
}

func (p *Parser) parseCase() Expr {
	caseExpr := &CaseExpr{At: p.token.Pos}
	p.nextToken() // CASE

	if !p.check(token.WHEN) {
		caseExpr.Operand = p.parseExpression()
		if caseExpr.Operand == nil {
			return nil
		}
	}
	if !p.check(token.WHEN) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), token.WHEN))
		return nil
	}
	for p.match(token.WHEN) {
		b, ok := p.parseBranch()
		if !ok {
			return nil
		}
		caseExpr.Whens = append(caseExpr.Whens, b)
	}

	elseExpr, ok := p.parseElseEnd()
	if !ok {
		return nil
	}
	caseExpr.Else = elseExpr
	return caseExpr
}

func (p *Parser) parseLOD() Expr {
	lod := &LODExpr{Scope: token.EOF, At: p.token.Pos}
	p.nextToken() // {

	if token.IsLODKeyword(p.token.Type) {
		lod.Scope = p.token.Type
		p.nextToken()
		if !p.check(token.COLON) {
			lod.Dims = p.parseExprList(token.COLON)
			if lod.Dims == nil {
				return nil
			}
		}
		if !p.expect(token.COLON) {
			return nil
		}
	}

	lod.Body = p.parseExpression()
	if lod.Body == nil || !p.expect(token.RBRACE) {
		return nil
	}
	return lod
}
