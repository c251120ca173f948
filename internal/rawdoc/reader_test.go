package rawdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version='1.0' encoding='utf-8' ?>
<workbook source-build='2023.1' version='18.1' xmlns:user='http://www.tableausoftware.com/xml/user'>
  <repository-location id='SalesOverview' site='acme' />
  <datasources>
    <datasource caption='Orders' name='federated.1abc'>
      <connection class='federated'>
        <relation name='Custom SQL Query' type='text'>SELECT * FROM orders WHERE amount &gt; 0</relation>
      </connection>
      <column caption='Profit Ratio' datatype='real' name='[Calculation_1]' role='measure' user:auto-column='numeric'>
        <calculation class='tableau' formula='SUM([Profit]) / SUM([Sales])' />
      </column>
    </datasource>
    <datasource name='Parameters' />
  </datasources>
</workbook>`

func TestRead_Tree(t *testing.T) {
	root, err := Read([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "workbook", root.Tag)
	assert.Equal(t, []Attr{
		{Name: "source-build", Value: "2023.1"},
		{Name: "version", Value: "18.1"},
		{Name: "xmlns:user", Value: "http://www.tableausoftware.com/xml/user"},
	}, root.Attrs)

	ds := root.Path("datasources", "datasource")
	require.Len(t, ds, 2)
	assert.Equal(t, "federated.1abc", ds[0].AttrOr("name", ""))
	assert.Equal(t, "Parameters", ds[1].AttrOr("name", ""))

	rel := ds[0].First("connection", "relation")
	require.NotNil(t, rel)
	assert.Equal(t, "SELECT * FROM orders WHERE amount > 0", rel.Text)

	col := ds[0].Child("column")
	require.NotNil(t, col)
	v, ok := col.Attr("user:auto-column")
	assert.True(t, ok)
	assert.Equal(t, "numeric", v)
	assert.Equal(t, "SUM([Profit]) / SUM([Sales])", col.Child("calculation").AttrOr("formula", ""))
}

func TestNode_Helpers(t *testing.T) {
	root, err := Read([]byte(sample))
	require.NoError(t, err)

	assert.Len(t, root.Descendants("datasource"), 2)
	assert.Len(t, root.Descendants("calculation"), 1)
	assert.Empty(t, root.Descendants("worksheet"))
	assert.Nil(t, root.Path("worksheets", "worksheet"))
	assert.Nil(t, root.First("nope"))

	loc := root.Child("repository-location")
	assert.Equal(t, "fallback", loc.AttrOr("missing", "fallback"))
	assert.True(t, loc.HasAttr("site"))

	var nilNode *Node
	assert.Nil(t, nilNode.Child("x"))
	assert.Empty(t, nilNode.TrimmedText())
	_, ok := nilNode.Attr("x")
	assert.False(t, ok)
}

func TestNode_WalkSkipsSubtree(t *testing.T) {
	root, err := Read([]byte(sample))
	require.NoError(t, err)

	var tags []string
	root.Walk(func(n *Node) bool {
		tags = append(tags, n.Tag)
		return n.Tag != "datasources"
	})
	assert.Equal(t, []string{"workbook", "repository-location", "datasources"}, tags)
}

func TestNode_Map(t *testing.T) {
	root, err := Read([]byte(`<a x='1'><b>hi</b><c/></a>`))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"tag":   "a",
		"attrs": map[string]string{"x": "1"},
		"children": []any{
			map[string]any{"tag": "b", "text": "hi"},
			map[string]any{"tag": "c"},
		},
	}, root.Map())
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"truncated tag", "<workbook><datasources"},
		{"unclosed element", "<workbook><datasources>"},
		{"mismatched tags", "<workbook><a></b></workbook>"},
		{"trailing garbage", "<workbook/>garbage"},
		{"second root", "<workbook/><workbook/>"},
		{"not markup", "hello world"},
		{"prolog only", "<?xml version='1.0'?>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)

			var mde *MalformedDocumentError
			require.True(t, errors.As(err, &mde))
			assert.GreaterOrEqual(t, mde.Offset, int64(0))
			assert.Contains(t, err.Error(), "malformed document at offset")
		})
	}
}

func zipped(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadPackaged(t *testing.T) {
	pkg := zipped(t, map[string]string{
		"Data/extract.hyper": "binary",
		"Sales.twb":          `<workbook><datasources/></workbook>`,
		"Other.TWB":          `<other/>`,
	}, []string{"Data/extract.hyper", "Sales.twb", "Other.TWB"})

	require.True(t, IsPackaged(pkg))
	root, err := ReadPackaged(pkg)
	require.NoError(t, err)
	assert.Equal(t, "workbook", root.Tag)

	plain, err := ReadPackaged([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "workbook", plain.Tag)
}

func TestReadPackaged_Errors(t *testing.T) {
	noWorkbook := zipped(t, map[string]string{"readme.txt": "x"}, []string{"readme.txt"})
	_, err := ReadPackaged(noWorkbook)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	brokenInside := zipped(t, map[string]string{"a.twb": "<workbook>"}, []string{"a.twb"})
	_, err = ReadPackaged(brokenInside)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = ReadPackaged([]byte("PK\x03\x04truncated"))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
