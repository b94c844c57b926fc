package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	createTestRun(t, s1, "run-1")
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var count int
	require.NoError(t, s2.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"runs", "methods", "run_methods", "encode_errors"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q missing after repeated opens", table)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/runs.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestDB_ReturnsUsableConnection(t *testing.T) {
	s := createTestStore(t)
	require.NotNil(t, s.DB())
	assert.NoError(t, s.DB().Ping())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.want))
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		table   string
		columns []string
	}{
		{"runs", []string{"id", "crate", "encoder_version", "ivl_version", "options", "procedures", "succeeded", "failed", "finished"}},
		{"methods", []string{"id", "def", "body_hash", "text"}},
		{"run_methods", []string{"run_id", "method_id", "seq"}},
		{"encode_errors", []string{"id", "run_id", "seq", "def", "class", "code", "message", "location"}},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.columns, getTableColumns(t, s.db, tt.table))
		})
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	assert.Contains(t, getTableIndexes(t, s.db, "methods"), "idx_methods_def")
	assert.Contains(t, getTableIndexes(t, s.db, "run_methods"), "idx_run_methods_seq")
	assert.Contains(t, getTableIndexes(t, s.db, "encode_errors"), "idx_encode_errors_run")
}

func TestConstraint_RunMethodRequiresRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO methods (id, def, body_hash, text) VALUES ('m', 'f', 'h', 'method f()')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO run_methods (run_id, method_id, seq) VALUES ('missing', 'm', 1)`)
	assert.Error(t, err, "foreign key on run_methods.run_id should be enforced")
}

func TestConstraint_EncodeErrorRequiresRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO encode_errors (id, run_id, seq, def, class, code, message)
		VALUES ('e', 'missing', 1, 'f', 'unsupported', 'E201', 'inline asm')
	`)
	assert.Error(t, err)
}

// Migration tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
	assert.Contains(t, getTableIndexes(t, s.db, "encode_errors"), "idx_encode_errors_code")
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	// Schema without migrations, as written by a pre-migration build.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NotContains(t, getTableIndexes(t, db, "encode_errors"), "idx_encode_errors_code")
	db.Close()

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
	assert.Contains(t, getTableIndexes(t, s.db, "encode_errors"), "idx_encode_errors_code")
}

// Helper functions

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid         int
			name, ctype string
			notnull, pk int
			dflt        any
		)
		require.NoError(t, rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk))
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	require.NoError(t, err)
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	return indexes
}
