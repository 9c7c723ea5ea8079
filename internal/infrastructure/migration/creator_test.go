package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/constructora/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"add renuncias index":     "add_renuncias_index",
		"Add-Cuota  Inicial":      "add_cuota_inicial",
		"__trim__":                "trim",
		"año 2024":                "ao_2024",
		"!!!":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	mf, err := CreateMigration(dir, "add abonos index", "speeds up client summaries", now)
	require.NoError(t, err)
	assert.Equal(t, "20240506070809", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20240506070809_add_abonos_index.up.sql"), mf.UpPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_abonos_index\n-- Description: speeds up client summaries")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	_, err = CreateMigration(dir, "add abonos index", "", now)
	assert.Error(t, err, "existing files are never overwritten")

	_, err = CreateMigration(dir, "???", "", now)
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20240302000000_b.up.sql":   {},
		"20240302000000_b.down.sql": {},
		"20240301000000_a.up.sql":   {},
		"README.md":                 {},
	}
	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240301000000_a", "20240302000000_b"}, got)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, n := range names {
		_, err := migrations.FS.Open(n + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", n)
	}
}
