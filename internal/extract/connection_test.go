package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/pkg/core"
)

func TestConnections_Superstore(t *testing.T) {
	infos := Connections(loadFixture(t, "superstore.twb"))
	require.Len(t, infos, 5)

	t.Run("parameters", func(t *testing.T) {
		p := infos[0]
		assert.Equal(t, "Parameters", p.ID)
		assert.True(t, p.IsParameters)
		assert.Equal(t, core.ConnectionUnknown, p.Connection.Type)
		assert.Empty(t, p.Tables)
		assert.Nil(t, p.Connection.Dialect)
	})

	t.Run("table join", func(t *testing.T) {
		ds := infos[1]
		assert.Equal(t, "federated.orders", ds.ID)
		assert.Equal(t, "Orders (Superstore)", ds.Name)
		assert.False(t, ds.IsParameters)

		c := ds.Connection
		assert.Equal(t, core.ConnectionTable, c.Type)
		assert.Equal(t, str("postgres"), c.Dialect)
		assert.Equal(t, str("sales"), c.Database)
		assert.Equal(t, str("public"), c.Schema)
		assert.Equal(t, str("orders"), c.Table)
		assert.Nil(t, c.RawSQL)

		require.Len(t, ds.Tables, 2)
		assert.Equal(t, core.Table{
			ID: "Orders", Name: "Orders",
			Database: str("sales"), Schema: str("public"), Table: str("orders"),
			IsPrimary: true,
		}, ds.Tables[0])
		assert.Equal(t, "Returns", ds.Tables[1].ID)
		assert.False(t, ds.Tables[1].IsPrimary)
	})

	t.Run("custom sql", func(t *testing.T) {
		c := infos[2].Connection
		assert.Equal(t, core.ConnectionCustomSQL, c.Type)
		require.NotNil(t, c.RawSQL)
		assert.Equal(t, "SELECT customer_id, SUM(amount) AS total\nFROM orders\nGROUP BY 1", *c.RawSQL)
		assert.Equal(t, str("snowflake"), c.Dialect)
		assert.Equal(t, str("ANALYTICS"), c.Database)
		assert.Nil(t, c.Table)

		require.Len(t, infos[2].Tables, 1)
		tbl := infos[2].Tables[0]
		assert.Equal(t, "Custom SQL Query", tbl.ID)
		assert.True(t, tbl.IsPrimary)
		assert.Nil(t, tbl.Table)
	})

	t.Run("extract", func(t *testing.T) {
		c := infos[3].Connection
		assert.Equal(t, core.ConnectionExtract, c.Type)
		assert.Equal(t, str("hyper"), c.Dialect)
		assert.Empty(t, infos[3].Tables)
	})

	t.Run("nested joins", func(t *testing.T) {
		ds := infos[4]
		c := ds.Connection
		assert.Equal(t, core.ConnectionTable, c.Type)
		assert.Nil(t, c.Dialect, "federated wrapper is not a dialect")
		assert.Equal(t, str("orders"), c.Table)

		ids := make([]string, 0, len(ds.Tables))
		for _, tbl := range ds.Tables {
			ids = append(ids, tbl.ID)
		}
		assert.Equal(t, []string{"orders", "line_items", "Accounts"}, ids)
		assert.True(t, ds.Tables[0].IsPrimary)
		assert.Equal(t, str("crm"), ds.Tables[2].Database)
		assert.Equal(t, str("dbo"), ds.Tables[2].Schema)
		assert.Equal(t, str("accounts"), ds.Tables[2].Table)
	})
}

const objectModel = `<workbook>
  <datasources>
    <datasource name='federated.model'>
      <connection class='federated'>
        <named-connections>
          <named-connection name='bq.1'>
            <connection class='BigQuery' dbname='proj' />
          </named-connection>
        </named-connections>
      </connection>
      <_.fcp.ObjectModelEncapsulateLegacy.true...object-graph>
        <objects>
          <object caption='Orders' id='Orders_ABC'>
            <properties context=''>
              <relation connection='bq.1' name='Orders' table='[sales].[orders]' type='table' />
            </properties>
          </object>
          <object caption='People' id='People_DEF'>
            <properties context=''>
              <relation connection='bq.1' name='People' table='[sales].[people]' type='table' />
            </properties>
          </object>
          <object caption='Orphan' id='Orphan_1' />
        </objects>
        <relationships>
          <relationship>
            <expression op='='>
              <expression op='[Region]' />
              <expression op='[Region (People)]' />
            </expression>
            <first-end-point object-id='Orders_ABC' />
            <second-end-point object-id='People_DEF' />
          </relationship>
          <relationship>
            <expression op='='>
              <expression op='[Person]' />
              <expression op='[Manager]' />
            </expression>
            <first-end-point object-id='Orders_ABC' />
          </relationship>
        </relationships>
      </_.fcp.ObjectModelEncapsulateLegacy.true...object-graph>
    </datasource>
  </datasources>
</workbook>`

func TestConnections_ObjectGraph(t *testing.T) {
	infos := Connections(parse(t, objectModel))
	require.Len(t, infos, 1)
	ds := infos[0]

	assert.Equal(t, "federated.model", ds.Name, "name falls back to the id")
	assert.Equal(t, core.ConnectionTable, ds.Connection.Type)
	assert.Equal(t, str("bigquery"), ds.Connection.Dialect)
	assert.Nil(t, ds.Connection.Table, "multi-object models have no single table")

	require.Len(t, ds.Tables, 3)
	assert.Equal(t, "Orders", ds.Tables[0].ID)
	assert.Equal(t, str("proj"), ds.Tables[0].Database)
	assert.Equal(t, str("sales"), ds.Tables[0].Schema)
	assert.Equal(t, "People", ds.Tables[1].ID)
	assert.Equal(t, "Orphan", ds.Tables[2].ID)
	for _, tbl := range ds.Tables {
		assert.False(t, tbl.IsPrimary, tbl.ID)
	}
}

func TestConnections_Edges(t *testing.T) {
	t.Run("no datasources", func(t *testing.T) {
		assert.Empty(t, Connections(parse(t, `<workbook />`)))
	})

	t.Run("unnamed datasource", func(t *testing.T) {
		infos := Connections(parse(t, `<workbook><datasources><datasource /><datasource /></datasources></workbook>`))
		require.Len(t, infos, 2)
		assert.Equal(t, "datasource_1", infos[0].ID)
		assert.Equal(t, "datasource_2", infos[1].ID)
		assert.Equal(t, core.ConnectionUnknown, infos[0].Connection.Type)
	})

	t.Run("collection has no primary", func(t *testing.T) {
		infos := Connections(parse(t, `<workbook><datasources><datasource name='d'>
			<connection class='sqlserver' dbname='crm'>
				<relation type='collection'>
					<relation name='a' table='[dbo].[a]' type='table' />
					<relation name='b' table='[dbo].[b]' type='table' />
				</relation>
			</connection>
		</datasource></datasources></workbook>`))
		ds := infos[0]
		assert.Equal(t, core.ConnectionTable, ds.Connection.Type)
		assert.Equal(t, str("sqlserver"), ds.Connection.Dialect)
		require.Len(t, ds.Tables, 2)
		assert.False(t, ds.Tables[0].IsPrimary)
		assert.False(t, ds.Tables[1].IsPrimary)
		assert.Equal(t, str("crm"), ds.Tables[0].Database)
	})

	t.Run("blank custom sql", func(t *testing.T) {
		infos := Connections(parse(t, `<workbook><datasources><datasource name='d'>
			<connection class='postgres'><relation name='q' type='text'>   </relation></connection>
		</datasource></datasources></workbook>`))
		c := infos[0].Connection
		assert.Equal(t, core.ConnectionCustomSQL, c.Type)
		assert.Nil(t, c.RawSQL)
	})

	t.Run("duplicate relation names", func(t *testing.T) {
		infos := Connections(parse(t, `<workbook><datasources><datasource name='d'>
			<connection class='mysql'>
				<relation join='inner' type='join'>
					<relation name='t' table='[t]' type='table' />
					<relation name='t' table='[t]' type='table' />
				</relation>
			</connection>
		</datasource></datasources></workbook>`))
		assert.Len(t, infos[0].Tables, 1)
	})
}
