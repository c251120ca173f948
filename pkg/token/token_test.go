package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		in   string
		want TokenType
	}{
		{"IF", IF},
		{"if", IF},
		{"ElseIf", ELSEIF},
		{"FIXED", FIXED},
		{"include", INCLUDE},
		{"SUM", IDENT},
		{"running_sum", IDENT},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LookupIdent(tt.in), tt.in)
	}
}

func TestTokenClasses(t *testing.T) {
	assert.True(t, IsKeyword(AND))
	assert.True(t, IsKeyword(WHEN))
	assert.False(t, IsKeyword(IDENT))
	assert.True(t, IsOperator(PLUS))
	assert.True(t, IsOperator(RBRACE))
	assert.False(t, IsOperator(FIELD))
	assert.True(t, IsLODKeyword(EXCLUDE))
	assert.False(t, IsLODKeyword(IF))
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "FIELD", FIELD.String())
	assert.Equal(t, "<=", LE.String())
	assert.Equal(t, "TOKEN(4242)", TokenType(4242).String())
}

func TestPosition(t *testing.T) {
	assert.Equal(t, "-", Position{}.String())
	assert.Equal(t, "2:5", Position{Line: 2, Column: 5, Offset: 12}.String())

	span := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 5, Offset: 4}}
	assert.True(t, span.IsValid())
	assert.True(t, span.Contains(3))
	assert.False(t, span.Contains(4))
}
