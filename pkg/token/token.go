// Package token defines the token types for calculation expressions.
//
// The calculation language is small and closed, so every token type is a
// builtin constant; keywords are matched case-insensitively.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // function or bare identifier
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello' or "hello"
	DATE   // #2024-01-31#
	FIELD  // [Sales] (literal holds the name without brackets)

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^
	EQ       // = or ==
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	COLON    // :
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }

	// Keywords (alphabetical)
	AND
	CASE
	ELSE
	ELSEIF
	END
	EXCLUDE
	FALSE
	FIXED
	IF
	IN
	INCLUDE
	NOT
	NULL
	OR
	THEN
	TRUE
	WHEN
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	DATE:   "DATE",
	FIELD:  "FIELD",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",
	EQ:      "=",
	NE:      "!=",
	LT:      "<",
	GT:      ">",
	LE:      "<=",
	GE:      ">=",
	DOT:     ".",
	COMMA:   ",",
	COLON:   ":",
	LPAREN:  "(",
	RPAREN:  ")",
	LBRACE:  "{",
	RBRACE:  "}",

	AND:     "AND",
	CASE:    "CASE",
	ELSE:    "ELSE",
	ELSEIF:  "ELSEIF",
	END:     "END",
	EXCLUDE: "EXCLUDE",
	FALSE:   "FALSE",
	FIXED:   "FIXED",
	IF:      "IF",
	IN:      "IN",
	INCLUDE: "INCLUDE",
	NOT:     "NOT",
	NULL:    "NULL",
	OR:      "OR",
	THEN:    "THEN",
	TRUE:    "TRUE",
	WHEN:    "WHEN",
}

var keywords = map[string]TokenType{
	"and":     AND,
	"case":    CASE,
	"else":    ELSE,
	"elseif":  ELSEIF,
	"end":     END,
	"exclude": EXCLUDE,
	"false":   FALSE,
	"fixed":   FIXED,
	"if":      IF,
	"in":      IN,
	"include": INCLUDE,
	"not":     NOT,
	"null":    NULL,
	"or":      OR,
	"then":    THEN,
	"true":    TRUE,
	"when":    WHEN,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t <= WHEN
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RBRACE
}

// IsLODKeyword returns true for the level-of-detail scope keywords.
func IsLODKeyword(t TokenType) bool {
	return t == FIXED || t == INCLUDE || t == EXCLUDE
}

// Token is a single lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
