// Package executor runs parsed SQL statements against the catalog.
//
// EDUCATIONAL NOTES:
// ------------------
// The executor is the component that actually runs SQL statements.
// It takes an AST from the parser and:
// 1. Validates the statement (table exists, columns exist, types line up)
// 2. Runs it against the in-memory tables
// 3. Returns a Result with the output rows or an affected-row count
//
// Statements are all-or-nothing: mutations are fully validated and staged
// before any row is touched, so a failing UPDATE or multi-row INSERT
// leaves the table exactly as it was. There is no query optimizer; SELECT
// always runs the same fixed pipeline (see select.go).

package executor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tabuladb/tabula/internal/catalog"
	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/planner"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

// Result represents the result of executing a statement.
type Result struct {
	Columns  []string
	Rows     [][]table.Value
	RowCount int
	Message  string
}

// String formats the result as an ASCII table for display.
func (r *Result) String() string {
	if r.Message != "" {
		return r.Message
	}

	if len(r.Rows) == 0 {
		return "(no rows)"
	}

	var sb strings.Builder

	// Calculate column widths
	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = len(col)
	}
	for _, row := range r.Rows {
		for i, val := range row {
			if len(val.String()) > widths[i] {
				widths[i] = len(val.String())
			}
		}
	}

	divider := func() {
		sb.WriteString("+")
		for _, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}

	divider()
	sb.WriteString("|")
	for i, col := range r.Columns {
		sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], col))
	}
	sb.WriteString("\n")
	divider()

	for _, row := range r.Rows {
		sb.WriteString("|")
		for i, val := range row {
			sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], val.String()))
		}
		sb.WriteString("\n")
	}

	divider()
	sb.WriteString(fmt.Sprintf("(%d rows)\n", len(r.Rows)))

	return sb.String()
}

// Executor executes SQL statements against a catalog. Statements are
// serialized; callers may share one Executor across goroutines.
type Executor struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	ev      *evaluator
}

// New creates an Executor over an empty catalog.
func New() *Executor {
	return NewWithCatalog(catalog.New())
}

// NewWithCatalog creates an Executor over an existing catalog.
func NewWithCatalog(cat *catalog.Catalog) *Executor {
	return &Executor{
		catalog: cat,
		ev:      newEvaluator(),
	}
}

// ExecuteSQL parses and executes a single SQL statement.
func (e *Executor) ExecuteSQL(input string) (*Result, error) {
	stmt, err := parser.ParseStatement(input)
	if err != nil {
		return nil, err
	}
	return e.Execute(stmt)
}

// Execute runs one parsed statement.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch s := stmt.(type) {
	case *parser.SelectStatement:
		return e.executeSelect(s)
	case *parser.InsertStatement:
		return e.executeInsert(s)
	case *parser.UpdateStatement:
		return e.executeUpdate(s)
	case *parser.DeleteStatement:
		return e.executeDelete(s)
	case *parser.CreateTableStatement:
		return e.executeCreateTable(s)
	case *parser.AlterTableStatement:
		return e.executeAlterTable(s)
	case *parser.DropTableStatement:
		return e.executeDropTable(s)
	case *parser.ExplainStatement:
		return e.executeExplain(s)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// Tables returns the table names in creation order.
func (e *Executor) Tables() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.List()
}

// TableSnapshot is a point-in-time copy of one table's schema and rows.
// It is detached from the executor, so it stays valid and read-safe while
// other goroutines keep mutating the table.
type TableSnapshot struct {
	Name    string
	Columns []table.Column
	Rows    []table.Row
}

// ColumnNames returns the snapshot's column names in declaration order.
func (s *TableSnapshot) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Snapshot copies a table's schema and rows under the executor lock.
// Readers that outlive the lock (HTTP handlers, the REPL) must use this
// instead of touching the live table.
func (e *Executor) Snapshot(name string) (*TableSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tbl, err := e.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	cols, rows := tbl.Snapshot()
	return &TableSnapshot{Name: tbl.Name, Columns: cols, Rows: rows}, nil
}

// Describe returns the execution plan for a statement without running it.
func (e *Executor) Describe(stmt parser.Statement) (*planner.Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return planner.Describe(stmt, e.catalog)
}

func (e *Executor) executeCreateTable(stmt *parser.CreateTableStatement) (*Result, error) {
	columns := make([]table.Column, 0, len(stmt.Columns))
	for _, def := range stmt.Columns {
		col, err := e.buildColumn(def)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	schema, err := table.NewSchema(columns)
	if err != nil {
		return nil, err
	}
	if err := e.catalog.Create(table.New(stmt.Table, schema)); err != nil {
		return nil, err
	}

	return &Result{Message: fmt.Sprintf("Table %s created", stmt.Table)}, nil
}

// buildColumn evaluates a column definition's DEFAULT literal and coerces
// it to the declared type.
func (e *Executor) buildColumn(def parser.ColumnDefinition) (table.Column, error) {
	col := table.Column{
		Name:       def.Name,
		Type:       def.Type,
		PrimaryKey: def.PrimaryKey,
		NotNull:    def.NotNull || def.PrimaryKey,
	}
	if def.Default != nil {
		val, err := e.ev.evalLiteral(def.Default)
		if err != nil {
			return table.Column{}, err
		}
		coerced, err := table.Coerce(val, def.Type)
		if err != nil {
			return table.Column{}, sqlerr.Typef("default for column %s: %v", def.Name, err)
		}
		col.Default = &coerced
	}
	return col, nil
}

func (e *Executor) executeDropTable(stmt *parser.DropTableStatement) (*Result, error) {
	if err := e.catalog.Drop(stmt.Table); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table %s dropped", stmt.Table)}, nil
}

func (e *Executor) executeAlterTable(stmt *parser.AlterTableStatement) (*Result, error) {
	tbl, err := e.catalog.Get(stmt.Table)
	if err != nil {
		return nil, err
	}

	col, err := e.buildColumn(stmt.Column)
	if err != nil {
		return nil, err
	}
	if col.NotNull && col.Default == nil && tbl.RowCount() > 0 {
		return nil, sqlerr.Schemaf("cannot add NOT NULL column %s without a default to a non-empty table", col.Name)
	}
	if err := tbl.AddColumn(col); err != nil {
		return nil, err
	}

	return &Result{
		RowCount: tbl.RowCount(),
		Message:  fmt.Sprintf("Column %s added to %s", col.Name, stmt.Table),
	}, nil
}

func (e *Executor) executeInsert(stmt *parser.InsertStatement) (*Result, error) {
	tbl, err := e.catalog.Get(stmt.Table)
	if err != nil {
		return nil, err
	}
	schema := tbl.Schema

	// Map each listed column to its schema position. An empty column list
	// means values arrive in declaration order.
	targets := make([]int, 0, len(stmt.Columns))
	seen := make(map[int]bool)
	for _, name := range stmt.Columns {
		idx, ok := schema.ColumnIndex(name)
		if !ok {
			return nil, sqlerr.Schemaf("no such column %q in table %s", name, stmt.Table)
		}
		if seen[idx] {
			return nil, sqlerr.Schemaf("column %q listed twice", name)
		}
		seen[idx] = true
		targets = append(targets, idx)
	}

	batch := make([][]table.Value, 0, len(stmt.Rows))
	for _, exprs := range stmt.Rows {
		values, err := e.buildInsertRow(stmt, schema, targets, exprs)
		if err != nil {
			return nil, err
		}
		batch = append(batch, values)
	}

	count, err := tbl.InsertMany(batch)
	if err != nil {
		return nil, err
	}
	return &Result{
		RowCount: count,
		Message:  fmt.Sprintf("%d row(s) inserted", count),
	}, nil
}

func (e *Executor) buildInsertRow(stmt *parser.InsertStatement, schema *table.Schema, targets []int, exprs []parser.Expression) ([]table.Value, error) {
	if len(targets) > 0 && len(exprs) != len(targets) {
		return nil, sqlerr.Schemaf("INSERT lists %d columns but %d values", len(targets), len(exprs))
	}
	if len(targets) == 0 && len(exprs) != len(schema.Columns) {
		return nil, sqlerr.Schemaf("table %s expects %d values, got %d", stmt.Table, len(schema.Columns), len(exprs))
	}

	// Unmentioned columns get their default, or NULL.
	values := make([]table.Value, len(schema.Columns))
	for i, col := range schema.Columns {
		if col.Default != nil {
			values[i] = *col.Default
		} else {
			values[i] = table.Null(col.Type)
		}
	}

	for i, expr := range exprs {
		val, err := e.ev.evalLiteral(expr)
		if err != nil {
			return nil, err
		}
		idx := i
		if len(targets) > 0 {
			idx = targets[i]
		}
		values[idx] = val
	}
	return values, nil
}

func (e *Executor) executeUpdate(stmt *parser.UpdateStatement) (*Result, error) {
	tbl, err := e.catalog.Get(stmt.Table)
	if err != nil {
		return nil, err
	}
	schema := tbl.Schema

	type target struct {
		idx int
		col table.Column
	}
	targets := make([]target, 0, len(stmt.Assignments))
	for _, a := range stmt.Assignments {
		idx, ok := schema.ColumnIndex(a.Column)
		if !ok {
			return nil, sqlerr.Schemaf("no such column %q in table %s", a.Column, stmt.Table)
		}
		targets = append(targets, target{idx: idx, col: schema.Columns[idx]})
	}

	// Stage every update before committing any, so a mid-statement error
	// (bad type, NOT NULL violation) leaves the table untouched.
	var updates []table.RowUpdate
	for _, row := range tbl.Scan() {
		match, err := e.ev.predicate(stmt.Where, schema, row)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}

		replacement := make([]table.Value, len(row.Values))
		copy(replacement, row.Values)
		for i, a := range stmt.Assignments {
			t := targets[i]
			val, err := e.ev.evalRow(a.Value, schema, row)
			if err != nil {
				return nil, err
			}
			coerced, err := table.Coerce(val, t.col.Type)
			if err != nil {
				return nil, err
			}
			if coerced.IsNull && t.col.NotNull {
				return nil, sqlerr.Schemaf("column %s cannot be NULL", t.col.Name)
			}
			replacement[t.idx] = coerced
		}
		updates = append(updates, table.RowUpdate{RowID: row.ID, Values: replacement})
	}

	count := tbl.ApplyUpdates(updates)
	return &Result{
		RowCount: count,
		Message:  fmt.Sprintf("%d row(s) updated", count),
	}, nil
}

func (e *Executor) executeDelete(stmt *parser.DeleteStatement) (*Result, error) {
	tbl, err := e.catalog.Get(stmt.Table)
	if err != nil {
		return nil, err
	}

	doomed := make(map[uint64]struct{})
	for _, row := range tbl.Scan() {
		match, err := e.ev.predicate(stmt.Where, tbl.Schema, row)
		if err != nil {
			return nil, err
		}
		if match {
			doomed[row.ID] = struct{}{}
		}
	}

	count := tbl.DeleteRows(doomed)
	return &Result{
		RowCount: count,
		Message:  fmt.Sprintf("%d row(s) deleted", count),
	}, nil
}

func (e *Executor) executeExplain(stmt *parser.ExplainStatement) (*Result, error) {
	plan, err := planner.Describe(stmt.Statement, e.catalog)
	if err != nil {
		return nil, err
	}

	rows := make([][]table.Value, len(plan.Steps))
	for i, step := range plan.Steps {
		rows[i] = []table.Value{table.NewText(step)}
	}
	return &Result{
		Columns:  []string{"step"},
		Rows:     rows,
		RowCount: len(rows),
	}, nil
}
