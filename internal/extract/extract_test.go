package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
)

// loadFixture parses a workbook from testdata.
func loadFixture(t *testing.T, name string) *rawdoc.Node {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	root, err := rawdoc.Read(data)
	require.NoError(t, err)
	return root
}

// parse reads an inline document.
func parse(t *testing.T, doc string) *rawdoc.Node {
	t.Helper()
	root, err := rawdoc.Read([]byte(doc))
	require.NoError(t, err)
	return root
}

func str(s string) *string { return &s }
