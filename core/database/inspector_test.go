package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT NOT NULL, description TEXT)").Error
	require.NoError(t, err)

	columns, err := TableColumns(db, "test_items")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]Column)
	for _, col := range columns {
		colMap[col.Field] = col
	}
	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "NO", colMap["name"].Null)
	assert.Equal(t, "YES", colMap["description"].Null)

	// sqlite reports nothing for unknown tables
	cols, err := TableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)

	_, err = TableColumns(nil, "test_items")
	assert.Error(t, err)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE records (id TEXT, kind TEXT)").Error)

	missing, err := MissingColumns(db, "records", []string{"id", "Kind", "hash"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hash"}, missing)
}
