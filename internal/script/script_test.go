package script

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabuladb/tabula/internal/sql/executor"
)

func TestSplit(t *testing.T) {
	statements := Split(`
		CREATE TABLE t (n INTEGER); -- trailing comment; with a semicolon
		-- full-line comment
		INSERT INTO t (n) VALUES (1);
		SELECT * FROM t
	`)
	require.Len(t, statements, 3)
	assert.Equal(t, "CREATE TABLE t (n INTEGER)", statements[0])
	assert.Equal(t, "SELECT * FROM t", statements[2])
}

func TestSplitHonorsStrings(t *testing.T) {
	statements := Split(`INSERT INTO t (s) VALUES ('semi;colon'); INSERT INTO t (s) VALUES ('it''s -- fine')`)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "semi;colon")
	assert.Contains(t, statements[1], "it''s -- fine")
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("  ;\n; -- nothing here\n"))
}

func TestRunFixtures(t *testing.T) {
	fixtures := []struct {
		file       string
		table      string
		statements int
	}{
		{"friends.sql", "friends", 3},
		{"movies.sql", "movies", 2},
		{"reviews.sql", "reviews", 2},
		{"celebrities.sql", "celebrities", 2},
	}

	for _, fx := range fixtures {
		t.Run(fx.file, func(t *testing.T) {
			exec := executor.New()
			runner := NewRunner(exec, nil)

			n, err := runner.RunFile(filepath.Join("testdata", fx.file))
			require.NoError(t, err)
			assert.Equal(t, fx.statements, n)
			assert.Contains(t, exec.Tables(), fx.table)
		})
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	exec := executor.New()
	runner := NewRunner(exec, nil)

	n, err := runner.Run(`
		CREATE TABLE t (n INTEGER);
		INSERT INTO t (n) VALUES (1);
		INSERT INTO nowhere (n) VALUES (2);
		INSERT INTO t (n) VALUES (3);
	`)
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, err.Error(), "statement 3")

	// The statements before the failure took effect; the one after did not.
	result, err := exec.ExecuteSQL(`SELECT COUNT(*) AS c FROM t`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Rows[0][0].Integer)
}

func TestFriendsScriptEffects(t *testing.T) {
	exec := executor.New()
	runner := NewRunner(exec, nil)

	_, err := runner.RunFile(filepath.Join("testdata", "friends.sql"))
	require.NoError(t, err)

	result, err := exec.ExecuteSQL(`SELECT COUNT(*) AS n FROM friends WHERE health = 'unknown'`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Rows[0][0].Integer)
}
