package output

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/pkg/core"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{"md", ModeMarkdown},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"xml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
	assert.True(t, Valid("json"))
	assert.False(t, Valid("xml"))
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on tty", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"json on tty", ModeJSON, true, ModeJSON},
		{"empty", "", false, ModeMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, errOut := newTest(ModeAuto, false)

	r.Header(1, "Datasources")
	r.KeyValue("Workbook", "Sales")
	r.Table([]string{"ID", "Name"}, [][]string{{"a|b", "first"}, {"c", "second\nline"}})
	r.Success("done")

	got := out.String()
	assert.Contains(t, got, "# Datasources\n")
	assert.Contains(t, got, "- **Workbook:** Sales")
	assert.Contains(t, got, "| ID | Name |\n| --- | --- |\n")
	assert.Contains(t, got, `| a\|b | first |`)
	assert.Contains(t, got, "| c | second line |")
	assert.Contains(t, errOut.String(), "done")
	assert.False(t, ansiPattern.MatchString(got+errOut.String()))
}

func TestRenderer_TextWithoutTTY(t *testing.T) {
	r, out, _ := newTest(ModeText, false)

	r.Header(2, "Sheets")
	r.Table([]string{"ID"}, [][]string{{"Sales Trend"}})
	r.Println(r.Styles().Severity(core.SeverityError).Render("error"))

	got := out.String()
	assert.Contains(t, got, "Sheets")
	assert.Contains(t, got, "Sales Trend")
	assert.Contains(t, got, "┌")
	assert.False(t, ansiPattern.MatchString(got), "no escape codes without a terminal")
}

func TestRenderer_JSON(t *testing.T) {
	r, out, errOut := newTest(ModeJSON, true)

	r.Header(1, "ignored")
	r.Warning("ignored")
	require.NoError(t, r.JSON(map[string]int{"sheets": 2}))

	assert.JSONEq(t, `{"sheets": 2}`, out.String())
	assert.Empty(t, errOut.String())
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Table Calc", Title("table_calc"))
	assert.Equal(t, "Single Value", Title("single_value"))
	assert.Equal(t, "Lod", Title("lod"))
}
