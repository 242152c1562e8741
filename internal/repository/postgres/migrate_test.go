package postgres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"010_later.sql":  "SELECT 10;",
		"001_init.sql":   "CREATE TABLE families (id UUID PRIMARY KEY);",
		"002_extra.sql":  "SELECT 2;",
		"README.md":      "not a migration",
		"notes_v2.sql":   "SELECT 'skipped';",
		"003noseparator": "SELECT 3;",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	migrations, err := NewMigrator(nil, dir).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE families (id UUID PRIMARY KEY);", migrations[0].SQL)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, 10, migrations[2].Version)
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	_, err := NewMigrator(nil, filepath.Join(t.TempDir(), "nope")).LoadMigrations()
	assert.Error(t, err)
}

func TestLoadMigrations_ShippedSchema(t *testing.T) {
	migrations, err := NewMigrator(nil, filepath.Join("..", "..", "..", "migrations")).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS family_members")
}
