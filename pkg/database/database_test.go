package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db"), MaxOpenConns: 2}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrator_Embedded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	m := NewMigrator(db, zap.NewNop())

	require.NoError(t, m.RunMigrations(ctx, migrations.FS))

	for _, table := range []string{"users", "invoice_applications", "invoice_details"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, m.RunMigrations(ctx, migrations.FS))
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 2, count)
	})
}

func TestMigrator_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_second.sql"), []byte("CREATE TABLE b (id INTEGER);"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_first.sql"), []byte("CREATE TABLE a (id INTEGER);"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	db := openTestDB(t)
	require.NoError(t, NewMigrator(db, zap.NewNop()).RunMigrationsDir(context.Background(), dir))

	rows, err := db.Query("SELECT version, name FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var v int
		var name string
		require.NoError(t, rows.Scan(&v, &name))
		got = append(got, name)
	}
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestLoadMigrations_Errors(t *testing.T) {
	t.Run("bad filename", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("")}})
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"001_a.sql": {Data: []byte("")},
			"001_b.sql": {Data: []byte("")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func TestMigrator_FailedScriptRollsBack(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{"001_broken.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); NOT SQL;")}}

	err := NewMigrator(db, zap.NewNop()).RunMigrations(context.Background(), fsys)
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Zero(t, count)
}

func TestWithTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (v) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t (v) VALUES (2)")
		return err
	}))

	var sum int
	require.NoError(t, db.QueryRow("SELECT COALESCE(SUM(v), 0) FROM t").Scan(&sum))
	assert.Equal(t, 2, sum)
}
