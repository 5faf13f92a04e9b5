package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrator_RunEmbedded(t *testing.T) {
	db := openMemory(t)
	migrator := NewMigrator(db, zap.NewNop())

	require.NoError(t, migrator.RunMigrations(""))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	// tables from both migrations exist
	for _, table := range []string{"donations", "donors", "sales_invoices", "payment_entries", "error_logs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, migrator.RunMigrations(""))
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 2, count)
	})
}

func TestLoadMigrations(t *testing.T) {
	source := fstest.MapFS{
		"010_second.sql": {Data: []byte("SELECT 2;")},
		"002_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(source)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, 10, migrations[1].Version)
}

func TestLoadMigrations_InvalidName(t *testing.T) {
	source := fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}

	_, err := loadMigrations(source)
	assert.ErrorContains(t, err, "invalid migration filename")
}
