package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbook(t *testing.T) {
	wb := Workbook(loadFixture(t, "superstore.twb"))
	require.NotNil(t, wb)
	assert.Equal(t, "SuperstoreSales", wb.ID)
	assert.Equal(t, "SuperstoreSales", wb.Name)
	assert.Nil(t, wb.Description)

	assert.Nil(t, Workbook(parse(t, `<workbook />`)))
	assert.Nil(t, Workbook(parse(t, `<workbook><repository-location path='/x' /></workbook>`)))
}
