package calc

import (
	"fmt"

	"github.com/leapstack-labs/tablook/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnexpectedExpr      = "unexpected token %s at start of expression"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedField   = "unterminated field reference"
	ErrUnterminatedDate    = "unterminated date literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrBareIdentifier      = "bare identifier %q is not a function call"
	ErrTrailingInput       = "unexpected %s after end of expression"
	ErrEmptyFormula        = "empty formula"
)
