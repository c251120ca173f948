package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"[db].[schema].[orders]", []string{"db", "schema", "orders"}},
		{"[public].[orders]", []string{"public", "orders"}},
		{"[orders]", []string{"orders"}},
		{"[orders.id]", []string{"orders", "id"}},
		{"dbo.orders", []string{"dbo", "orders"}},
		{"[Order]]s]", []string{"Order]s"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitQualified(tt.in))
		})
	}
}

func TestScanRefs(t *testing.T) {
	refs := scanRefs("([ds].[none:Region:nk] / [ds].[sum:Sales:qk]) + [Loose]")
	assert.Equal(t, []qualifiedRef{
		{Qualifier: "ds", Name: "none:Region:nk"},
		{Qualifier: "ds", Name: "sum:Sales:qk"},
		{Name: "Loose"},
	}, refs)
	assert.Empty(t, scanRefs("no references here"))
}

func TestParseInstance(t *testing.T) {
	assert.Equal(t, instance{Derivation: "sum", Name: "Sales", Suffix: "qk"}, parseInstance("sum:Sales:qk"))
	assert.Equal(t, instance{Derivation: "tmn", Name: "Order Date", Suffix: "ok"}, parseInstance("TMN:Order Date:ok"))
	assert.Equal(t, instance{Name: "Sales"}, parseInstance("Sales"))
	assert.Equal(t, instance{Name: ":Measure Names"}, parseInstance(":Measure Names"))
}

func TestTimeBucket(t *testing.T) {
	assert.Equal(t, "year", timeBucket("yr"))
	assert.Equal(t, "month", timeBucket("tmn"))
	assert.Equal(t, "day", timeBucket("MDY"))
	assert.Equal(t, "quarter", timeBucket("tqr"))
	assert.Empty(t, timeBucket("sum"))
	assert.Empty(t, timeBucket("none"))
	assert.Empty(t, timeBucket(""))
}

func TestUnbracket(t *testing.T) {
	assert.Equal(t, "Sales", unbracket("[Sales]"))
	assert.Equal(t, "a]b", unbracket("[a]]b]"))
	assert.Equal(t, "plain", unbracket(" plain "))
}
