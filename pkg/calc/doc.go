// Package calc parses calculated-field formulas and classifies them.
//
// A formula is tokenized by Lexer, parsed into an Expr tree by Parse, and
// summarized by Analyze into an Analysis: the calculation category, the
// complexity score and the field references it depends on.
//
// # Grammar Overview
//
//	expr      → or_expr
//	or_expr   → and_expr { OR and_expr }
//	and_expr  → not_expr { AND not_expr }
//	not_expr  → NOT not_expr | cmp_expr
//	cmp_expr  → add_expr [ (= | != | < | > | <= | >=) add_expr | [NOT] IN ( list ) ]
//	add_expr  → mul_expr { (+ | -) mul_expr }
//	mul_expr  → pow_expr { (* | / | %) pow_expr }
//	pow_expr  → unary { ^ unary }
//	unary     → - unary | primary
//	primary   → field | literal | call | ( expr ) | if | case | lod
//	field     → [name] [ . [name] ]
//	lod       → { [FIXED|INCLUDE|EXCLUDE [dims] :] expr }
//	if        → IF expr THEN expr { ELSEIF expr THEN expr } [ELSE expr] END
//	case      → CASE [expr] WHEN expr THEN expr { WHEN expr THEN expr } [ELSE expr] END
//
// # Basic Usage
//
//	a := calc.Analyze("SUM([Profit]) / SUM([Sales])", calc.Options{})
//	fmt.Println(a.Category, a.Score) // simple 0.2083
package calc
