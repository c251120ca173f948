package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/calc"
	"github.com/leapstack-labs/tablook/pkg/token"
)

// ParametersDatasource is the name of the datasource holding workbook parameters.
const ParametersDatasource = "Parameters"

// isTag matches plain tags and the feature-flagged variants newer workbooks
// write, such as "_.fcp.ObjectModelEncapsulateLegacy.true...relation".
func isTag(n *rawdoc.Node, tag string) bool {
	return n.Tag == tag || strings.HasSuffix(n.Tag, "..."+tag)
}

func childByTag(n *rawdoc.Node, tag string) *rawdoc.Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if isTag(c, tag) {
			return c
		}
	}
	return nil
}

func childrenByTag(n *rawdoc.Node, tag string) []*rawdoc.Node {
	if n == nil {
		return nil
	}
	var out []*rawdoc.Node
	for _, c := range n.Children {
		if isTag(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// datasourceNodes returns the workbook-level datasource elements.
func datasourceNodes(root *rawdoc.Node) []*rawdoc.Node {
	return root.Path("datasources", "datasource")
}

func datasourceID(ds *rawdoc.Node, index int) string {
	return ds.AttrOr("name", fmt.Sprintf("datasource_%d", index+1))
}

func isParameters(ds *rawdoc.Node) bool {
	return ds.AttrOr("name", "") == ParametersDatasource
}

// unbracket strips one pair of surrounding brackets: "[Sales]" -> "Sales".
func unbracket(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return strings.ReplaceAll(s[1:len(s)-1], "]]", "]")
	}
	return s
}

// qualifiedRef is a [qualifier].[name] pair found in markup.
type qualifiedRef struct {
	Qualifier string
	Name      string
}

// scanRefs finds every bracketed reference in text, in order, pairing
// "[a].[b]" into a qualified reference. It reuses the formula lexer, so
// shelf expressions such as "([ds].[a] / [ds].[b])" are handled too.
func scanRefs(text string) []qualifiedRef {
	toks := calc.NewLexer(text).Tokenize()
	var refs []qualifiedRef
	for i := 0; i < len(toks); i++ {
		if toks[i].Type != token.FIELD {
			continue
		}
		if i+2 < len(toks) && toks[i+1].Type == token.DOT && toks[i+2].Type == token.FIELD {
			refs = append(refs, qualifiedRef{Qualifier: toks[i].Literal, Name: toks[i+2].Literal})
			i += 2
			continue
		}
		refs = append(refs, qualifiedRef{Name: toks[i].Literal})
	}
	return refs
}

// splitQualified splits "[db].[schema].[table]" into its parts. An
// unbracketed dotted name such as "[orders.id]" splits on its first dot.
func splitQualified(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") {
		return strings.Split(s, ".")
	}
	var parts []string
	for _, ref := range scanRefs(s) {
		if ref.Qualifier != "" {
			parts = append(parts, ref.Qualifier)
		}
		parts = append(parts, ref.Name)
	}
	if len(parts) == 1 {
		if q, n, ok := strings.Cut(parts[0], "."); ok && q != "" && n != "" {
			return []string{q, n}
		}
	}
	return parts
}

// instance is a parsed column-instance name such as "sum:Sales:qk".
type instance struct {
	Derivation string
	Name       string
	Suffix     string
}

// parseInstance splits "deriv:Name:suffix". Plain names have no derivation.
func parseInstance(s string) instance {
	first := strings.Index(s, ":")
	last := strings.LastIndex(s, ":")
	if first < 0 || first == last {
		return instance{Name: s}
	}
	return instance{
		Derivation: strings.ToLower(s[:first]),
		Name:       s[first+1 : last],
		Suffix:     s[last+1:],
	}
}

// timeBuckets maps date-part derivation prefixes to granularity names.
// A leading "t" marks the truncated variant of the same bucket.
var timeBuckets = map[string]string{
	"yr":  "year",
	"qr":  "quarter",
	"mn":  "month",
	"wk":  "week",
	"dy":  "day",
	"mdy": "day",
	"hr":  "hour",
	"mi":  "minute",
	"sc":  "second",
}

// timeBucket returns the granularity for a derivation, or "".
func timeBucket(derivation string) string {
	d := strings.ToLower(derivation)
	if g, ok := timeBuckets[d]; ok {
		return g
	}
	if strings.HasPrefix(d, "t") {
		return timeBuckets[d[1:]]
	}
	return ""
}
