package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyRunsEachFileOnce(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	migrations := fstest.MapFS{
		"m/001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n")},
		"m/002_more.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"m/readme.txt":   {Data: []byte("ignored")},
	}

	require.NoError(t, Apply(ctx, db, migrations, "m"))
	require.NoError(t, Apply(ctx, db, migrations, "m"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)

	_, err := db.Exec(`INSERT INTO a (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO b (id) VALUES (1)`)
	require.NoError(t, err)
}

func TestApplyFailsOnBrokenSQL(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE (")},
	}
	require.Error(t, Apply(context.Background(), db, migrations, ""))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Zero(t, n)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nX\n", UpSection("-- +migrate Up\nX\n-- +migrate Down\nY"))
	assert.Equal(t, "plain", UpSection("plain"))
}
