package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

// run executes a batch of statements, failing the test on any error.
func run(t *testing.T, e *Executor, statements ...string) *Result {
	t.Helper()
	var result *Result
	for _, stmt := range statements {
		var err error
		result, err = e.ExecuteSQL(stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}
	return result
}

// newFriendsDB builds the little dataset most tests share.
func newFriendsDB(t *testing.T) *Executor {
	t.Helper()
	e := New()
	run(t, e,
		`CREATE TABLE friends (name TEXT NOT NULL, age INTEGER, health TEXT)`,
		`INSERT INTO friends (name, age, health) VALUES
			('Ororo', 30, 'good'),
			('Jean', 29, ''),
			('Scott', 31, NULL),
			('Logan', 98, 'good'),
			('Kurt', 30, 'poor')`,
	)
	return e
}

func firstColumn(r *Result) []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[0].String()
	}
	return out
}

func TestInsertAndSelectRoundTrip(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT * FROM friends`)
	assert.Equal(t, []string{"name", "age", "health"}, result.Columns)
	require.Len(t, result.Rows, 5)

	// Insertion order is scan order.
	assert.Equal(t, []string{"Ororo", "Jean", "Scott", "Logan", "Kurt"}, firstColumn(result))
	assert.Equal(t, int64(30), result.Rows[0][1].Integer)
}

func TestSelectProjection(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name, age * 2 AS double_age FROM friends WHERE name = 'Jean'`)
	assert.Equal(t, []string{"name", "double_age"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(58), result.Rows[0][1].Integer)
}

func TestUpdateTouchesOnlyMatchingRows(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `UPDATE friends SET health = 'excellent' WHERE age < 30`)
	assert.Equal(t, 1, result.RowCount)

	result = run(t, e, `SELECT name FROM friends WHERE health = 'excellent'`)
	assert.Equal(t, []string{"Jean"}, firstColumn(result))

	// Everyone else is untouched.
	result = run(t, e, `SELECT health FROM friends WHERE name = 'Ororo'`)
	assert.Equal(t, "good", result.Rows[0][0].Text)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	e := newFriendsDB(t)

	// NOT NULL violation on the last matching row; nothing may change.
	_, err := e.ExecuteSQL(`UPDATE friends SET name = NULL WHERE age > 30`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))

	result := run(t, e, `SELECT name FROM friends`)
	assert.Equal(t, []string{"Ororo", "Jean", "Scott", "Logan", "Kurt"}, firstColumn(result))
}

func TestDeletePreservesRemainingOrder(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `DELETE FROM friends WHERE age = 30`)
	assert.Equal(t, 2, result.RowCount)

	result = run(t, e, `SELECT name FROM friends`)
	assert.Equal(t, []string{"Jean", "Scott", "Logan"}, firstColumn(result))
}

func TestMultiRowInsertIsAllOrNothing(t *testing.T) {
	e := New()
	run(t, e, `CREATE TABLE items (name TEXT NOT NULL, qty INTEGER)`)

	_, err := e.ExecuteSQL(`INSERT INTO items (name, qty) VALUES ('a', 1), (NULL, 2)`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))

	result := run(t, e, `SELECT COUNT(*) AS n FROM items`)
	assert.Equal(t, int64(0), result.Rows[0][0].Integer)
}

func TestInsertUsesColumnDefaults(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE users (name TEXT, status TEXT DEFAULT 'active')`,
		`INSERT INTO users (name) VALUES ('Kitty')`,
	)

	result := run(t, e, `SELECT status FROM users`)
	assert.Equal(t, "active", result.Rows[0][0].Text)
}

func TestAlterTableBackfillsNull(t *testing.T) {
	e := newFriendsDB(t)

	run(t, e, `ALTER TABLE friends ADD COLUMN city TEXT`)

	result := run(t, e, `SELECT name FROM friends WHERE city IS NULL`)
	assert.Len(t, result.Rows, 5)

	// New column is writable and appears in star projections.
	run(t, e, `UPDATE friends SET city = 'Westchester' WHERE name = 'Ororo'`)
	result = run(t, e, `SELECT * FROM friends WHERE city IS NOT NULL`)
	assert.Equal(t, []string{"name", "age", "health", "city"}, result.Columns)
	assert.Len(t, result.Rows, 1)
}

func TestAlterTableBackfillsDefault(t *testing.T) {
	e := newFriendsDB(t)

	run(t, e, `ALTER TABLE friends ADD COLUMN team TEXT DEFAULT 'X-Men'`)
	result := run(t, e, `SELECT COUNT(*) AS n FROM friends WHERE team = 'X-Men'`)
	assert.Equal(t, int64(5), result.Rows[0][0].Integer)
}

func TestOrderByDescWithLimitAndTies(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE movies (title TEXT, imdb_rating REAL)`,
		`INSERT INTO movies (title, imdb_rating) VALUES
			('Alpha', 8.8),
			('Beta', 9.0),
			('Gamma', 8.8),
			('Delta', 7.1),
			('Epsilon', 9.0)`,
	)

	result := run(t, e, `SELECT title FROM movies ORDER BY imdb_rating DESC LIMIT 3`)
	// Ties break by insertion order: Beta before Epsilon, Alpha before Gamma.
	assert.Equal(t, []string{"Beta", "Epsilon", "Alpha"}, firstColumn(result))
}

func TestOrderByNullsSortFirst(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name FROM friends ORDER BY health`)
	// Scott's NULL health sorts before every value, then '' < 'good' < 'poor'.
	assert.Equal(t, []string{"Scott", "Jean", "Ororo", "Logan", "Kurt"}, firstColumn(result))
}

func TestLimitOffsetWindow(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name FROM friends ORDER BY age LIMIT 2 OFFSET 1`)
	assert.Equal(t, []string{"Ororo", "Kurt"}, firstColumn(result))

	// OFFSET past the end yields no rows.
	result = run(t, e, `SELECT name FROM friends LIMIT 10 OFFSET 99`)
	assert.Empty(t, result.Rows)
}

func TestNullComparisonsMatchNothing(t *testing.T) {
	e := newFriendsDB(t)

	// health = NULL is unknown for every row, so nothing passes.
	result := run(t, e, `SELECT name FROM friends WHERE health = NULL`)
	assert.Empty(t, result.Rows)

	result = run(t, e, `SELECT name FROM friends WHERE health <> NULL`)
	assert.Empty(t, result.Rows)
}

func TestIsNullOrEmptyFilter(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name FROM friends WHERE health IS NULL OR health = ''`)
	assert.Equal(t, []string{"Jean", "Scott"}, firstColumn(result))

	result = run(t, e, `SELECT name FROM friends WHERE health IS NOT NULL`)
	assert.Len(t, result.Rows, 4)
}

func TestThreeValuedLogic(t *testing.T) {
	e := newFriendsDB(t)

	// For Scott (health NULL): health = 'good' is unknown, so both the
	// predicate and its negation exclude him.
	result := run(t, e, `SELECT name FROM friends WHERE health = 'good'`)
	assert.Equal(t, []string{"Ororo", "Logan"}, firstColumn(result))

	result = run(t, e, `SELECT name FROM friends WHERE NOT (health = 'good')`)
	assert.Equal(t, []string{"Jean", "Kurt"}, firstColumn(result))

	// FALSE AND NULL is false, TRUE OR NULL is true.
	result = run(t, e, `SELECT name FROM friends WHERE age > 0 OR health = 'good'`)
	assert.Len(t, result.Rows, 5)
	result = run(t, e, `SELECT name FROM friends WHERE age < 0 AND health = 'good'`)
	assert.Empty(t, result.Rows)
}

func TestLikeMatching(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name FROM friends WHERE name LIKE '%o%'`)
	// Case-insensitive: Ororo, Scott, Logan all contain an o or O.
	assert.Equal(t, []string{"Ororo", "Scott", "Logan"}, firstColumn(result))

	result = run(t, e, `SELECT name FROM friends WHERE name LIKE '_ean'`)
	assert.Equal(t, []string{"Jean"}, firstColumn(result))

	result = run(t, e, `SELECT name FROM friends WHERE name NOT LIKE '%o%'`)
	assert.Equal(t, []string{"Jean", "Kurt"}, firstColumn(result))
}

func TestCaseExpression(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name,
		CASE WHEN age >= 90 THEN 'ancient'
		     WHEN age >= 30 THEN 'thirties'
		     ELSE 'twenties' END AS bracket
		FROM friends`)
	got := make(map[string]string)
	for _, row := range result.Rows {
		got[row[0].Text] = row[1].Text
	}
	assert.Equal(t, map[string]string{
		"Ororo": "thirties",
		"Jean":  "twenties",
		"Scott": "thirties",
		"Logan": "ancient",
		"Kurt":  "thirties",
	}, got)
}

func TestCaseOperandFormAndMissingElse(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT CASE health WHEN 'good' THEN 1 WHEN 'poor' THEN 2 END AS code
		FROM friends ORDER BY name`)
	// Jean ('') and Scott (NULL) fall through with no ELSE, yielding NULL.
	byName := map[string]table.Value{}
	names := run(t, e, `SELECT name FROM friends ORDER BY name`)
	for i, row := range names.Rows {
		byName[row[0].Text] = result.Rows[i][0]
	}
	assert.Equal(t, int64(1), byName["Ororo"].Integer)
	assert.Equal(t, int64(2), byName["Kurt"].Integer)
	assert.True(t, byName["Jean"].IsNull)
	assert.True(t, byName["Scott"].IsNull)
}

func TestAggregatesIgnoreNulls(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE scores (player TEXT, points INTEGER)`,
		`INSERT INTO scores (player, points) VALUES
			('a', 10), ('b', NULL), ('c', 20), ('d', NULL), ('e', 30)`,
	)

	result := run(t, e, `SELECT COUNT(*) AS total, COUNT(points) AS scored,
		SUM(points) AS sum, AVG(points) AS avg, MIN(points) AS min, MAX(points) AS max
		FROM scores`)
	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, int64(5), row[0].Integer)
	assert.Equal(t, int64(3), row[1].Integer)
	assert.Equal(t, int64(60), row[2].Integer)
	assert.InDelta(t, 20.0, row[3].Real, 1e-9)
	assert.Equal(t, int64(10), row[4].Integer)
	assert.Equal(t, int64(30), row[5].Integer)
}

func TestAggregatesOverEmptyTable(t *testing.T) {
	e := New()
	run(t, e, `CREATE TABLE empty (n INTEGER)`)

	result := run(t, e, `SELECT COUNT(*) AS c, SUM(n) AS s, MIN(n) AS m FROM empty`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(0), result.Rows[0][0].Integer)
	assert.True(t, result.Rows[0][1].IsNull)
	assert.True(t, result.Rows[0][2].IsNull)
}

func TestGroupByWithHaving(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE reviews (restaurant TEXT, rating INTEGER)`,
		`INSERT INTO reviews (restaurant, rating) VALUES
			('Lombardi', 5), ('Lombardi', 4), ('Lombardi', 5),
			('Katz', 3), ('Katz', 4),
			('Shake', 2)`,
	)

	result := run(t, e, `SELECT restaurant, COUNT(*) AS reviews, AVG(rating) AS avg_rating
		FROM reviews
		GROUP BY restaurant
		HAVING COUNT(*) >= 2
		ORDER BY avg_rating DESC`)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Lombardi", result.Rows[0][0].Text)
	assert.Equal(t, int64(3), result.Rows[0][1].Integer)
	assert.Equal(t, "Katz", result.Rows[1][0].Text)
}

func TestGroupByNullKeysFormOneGroup(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT health, COUNT(*) AS n FROM friends GROUP BY health`)
	counts := map[string]int64{}
	for _, row := range result.Rows {
		key := "NULL"
		if !row[0].IsNull {
			key = row[0].Text
		}
		counts[key] = row[1].Integer
	}
	assert.Equal(t, map[string]int64{"good": 2, "": 1, "NULL": 1, "poor": 1}, counts)
}

func TestGroupByRejectsUngroupedColumn(t *testing.T) {
	e := newFriendsDB(t)

	_, err := e.ExecuteSQL(`SELECT name, COUNT(*) FROM friends GROUP BY health`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestDateColumnsCompareChronologically(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE celebrities (name TEXT, birthdate DATE)`,
		`INSERT INTO celebrities (name, birthdate) VALUES
			('Ada', '1815-12-10'),
			('Grace', '1906-12-09'),
			('Alan', '1912-06-23')`,
	)

	result := run(t, e, `SELECT name FROM celebrities WHERE birthdate < '1910-01-01' ORDER BY birthdate DESC`)
	assert.Equal(t, []string{"Grace", "Ada"}, firstColumn(result))
}

func TestErrorsOnEmptyTableStillSurface(t *testing.T) {
	e := New()
	run(t, e, `CREATE TABLE empty (n INTEGER)`)

	_, err := e.ExecuteSQL(`SELECT nope FROM empty`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))

	_, err = e.ExecuteSQL(`SELECT n FROM empty WHERE nope = 1`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestErrorKinds(t *testing.T) {
	e := newFriendsDB(t)

	_, err := e.ExecuteSQL(`SELEC name FROM friends`)
	assert.True(t, errors.Is(err, sqlerr.ErrParse))

	_, err = e.ExecuteSQL(`SELECT name FROM nowhere`)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))

	_, err = e.ExecuteSQL(`SELECT name FROM friends WHERE name + age > 2`)
	assert.True(t, errors.Is(err, sqlerr.ErrType))
}

func TestCreateTableDuplicate(t *testing.T) {
	e := newFriendsDB(t)

	_, err := e.ExecuteSQL(`CREATE TABLE friends (x INTEGER)`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestDropTable(t *testing.T) {
	e := newFriendsDB(t)

	run(t, e, `DROP TABLE friends`)
	_, err := e.ExecuteSQL(`SELECT * FROM friends`)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
	assert.Empty(t, e.Tables())
}

func TestIntegerWidensToReal(t *testing.T) {
	e := New()
	run(t, e,
		`CREATE TABLE readings (v REAL)`,
		`INSERT INTO readings (v) VALUES (3)`,
	)

	result := run(t, e, `SELECT v FROM readings`)
	assert.InDelta(t, 3.0, result.Rows[0][0].Real, 1e-9)
}

func TestSnapshotIsDetachedCopy(t *testing.T) {
	e := newFriendsDB(t)

	snap, err := e.Snapshot("friends")
	require.NoError(t, err)
	assert.Equal(t, "friends", snap.Name)
	assert.Equal(t, []string{"name", "age", "health"}, snap.ColumnNames())
	require.Len(t, snap.Rows, 5)

	// Later statements must not reach the copy.
	run(t, e, `ALTER TABLE friends ADD COLUMN email TEXT`, `DELETE FROM friends`)
	assert.Len(t, snap.Columns, 3)
	assert.Len(t, snap.Rows, 5)
	assert.Len(t, snap.Rows[0].Values, 3)

	_, err = e.Snapshot("nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrSchema))
}

func TestDivisionByZeroErrors(t *testing.T) {
	e := newFriendsDB(t)

	_, err := e.ExecuteSQL(`SELECT age / 0 FROM friends`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlerr.ErrType), "division by zero should be a type error, got %v", err)
}

func TestExplainSelect(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `EXPLAIN SELECT name FROM friends WHERE age > 30 ORDER BY name LIMIT 2`)
	assert.Equal(t, []string{"step"}, result.Columns)

	steps := firstColumn(result)
	require.NotEmpty(t, steps)
	assert.Equal(t, "SCAN friends", steps[0])
	assert.Contains(t, steps, "LIMIT 2")

	// EXPLAIN does not execute anything.
	check := run(t, e, `SELECT COUNT(*) AS n FROM friends`)
	assert.Equal(t, int64(5), check.Rows[0][0].Integer)
}

func TestResultString(t *testing.T) {
	e := newFriendsDB(t)

	result := run(t, e, `SELECT name, age FROM friends WHERE name = 'Jean'`)
	s := result.String()
	assert.Contains(t, s, "| name |")
	assert.Contains(t, s, "| Jean |")
	assert.Contains(t, s, "(1 rows)")

	empty := run(t, e, `SELECT name FROM friends WHERE age > 1000`)
	assert.Equal(t, "(no rows)", empty.String())
}
