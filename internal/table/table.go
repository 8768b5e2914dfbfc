// Package table implements the in-memory row store.
//
// EDUCATIONAL NOTES:
// ------------------
// A table is a schema (the ordered column definitions) plus an ordered
// collection of rows. Rows keep their insertion order, which is the order
// scans return them in and the tie-break order for sorting.
//
// Every row always has one value per schema column. When a column is added
// after rows exist, the existing rows are backfilled with the column
// default, or NULL.
package table

import (
	"strings"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
)

// Column is a column definition within a schema.
type Column struct {
	Name       string
	Type       parser.DataType
	PrimaryKey bool
	NotNull    bool
	Default    *Value // nil means no default (backfill with NULL)
}

// Schema defines the structure of a table. Column lookup is
// case-insensitive, matching SQL identifier semantics.
type Schema struct {
	Columns []Column
	lookup  map[string]int
}

// NewSchema creates a schema, rejecting duplicate column names.
func NewSchema(columns []Column) (*Schema, error) {
	s := &Schema{
		Columns: make([]Column, 0, len(columns)),
		lookup:  make(map[string]int, len(columns)),
	}
	for _, col := range columns {
		if err := s.addColumn(col); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) addColumn(col Column) error {
	key := strings.ToLower(col.Name)
	if _, exists := s.lookup[key]; exists {
		return sqlerr.Schemaf("duplicate column %q", col.Name)
	}
	s.lookup[key] = len(s.Columns)
	s.Columns = append(s.Columns, col)
	return nil
}

// ColumnIndex returns the position of a column by name.
func (s *Schema) ColumnIndex(name string) (int, bool) {
	idx, ok := s.lookup[strings.ToLower(name)]
	return idx, ok
}

// Column returns the definition of a named column.
func (s *Schema) Column(name string) (Column, bool) {
	idx, ok := s.ColumnIndex(name)
	if !ok {
		return Column{}, false
	}
	return s.Columns[idx], true
}

// ColumnNames returns the column names in declaration order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Row is a single row. ID is assigned at insertion and never reused; it
// establishes the stable insertion order.
type Row struct {
	ID     uint64
	Values []Value
}

// Table is a named schema plus its rows.
type Table struct {
	Name   string
	Schema *Schema

	rows      []Row
	nextRowID uint64
}

// New creates an empty table.
func New(name string, schema *Schema) *Table {
	return &Table{
		Name:      name,
		Schema:    schema,
		nextRowID: 1,
	}
}

// Insert validates and appends one row, returning its row ID. Values are
// coerced to the declared column types; NOT NULL is enforced.
func (t *Table) Insert(values []Value) (uint64, error) {
	stored, err := t.prepare(values)
	if err != nil {
		return 0, err
	}
	rowID := t.nextRowID
	t.nextRowID++
	t.rows = append(t.rows, Row{ID: rowID, Values: stored})
	return rowID, nil
}

// InsertMany appends a batch of rows, validating every row before storing
// any. A failed row rejects the whole batch, leaving the table unchanged.
func (t *Table) InsertMany(batch [][]Value) (int, error) {
	prepared := make([][]Value, len(batch))
	for i, values := range batch {
		stored, err := t.prepare(values)
		if err != nil {
			return 0, err
		}
		prepared[i] = stored
	}
	for _, stored := range prepared {
		t.rows = append(t.rows, Row{ID: t.nextRowID, Values: stored})
		t.nextRowID++
	}
	return len(prepared), nil
}

func (t *Table) prepare(values []Value) ([]Value, error) {
	if len(values) != len(t.Schema.Columns) {
		return nil, sqlerr.Schemaf("table %s expects %d values, got %d",
			t.Name, len(t.Schema.Columns), len(values))
	}

	stored := make([]Value, len(values))
	for i, val := range values {
		col := t.Schema.Columns[i]
		coerced, err := Coerce(val, col.Type)
		if err != nil {
			return nil, err
		}
		if coerced.IsNull && col.NotNull {
			return nil, sqlerr.Schemaf("column %s cannot be NULL", col.Name)
		}
		stored[i] = coerced
	}
	return stored, nil
}

// Scan returns the rows in insertion order. The returned slice is a copy
// and safe to reorder; the Values slices are shared and must be treated as
// read-only. Mutation goes through ApplyUpdates and DeleteRows.
func (t *Table) Scan() []Row {
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Snapshot returns a copy of the column definitions and the rows in
// insertion order. Unlike Scan, the Values slices are copied too, so the
// result stays valid while the table is mutated afterwards.
func (t *Table) Snapshot() ([]Column, []Row) {
	cols := make([]Column, len(t.Schema.Columns))
	copy(cols, t.Schema.Columns)

	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		values := make([]Value, len(row.Values))
		copy(values, row.Values)
		rows[i] = Row{ID: row.ID, Values: values}
	}
	return cols, rows
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// RowUpdate is a fully evaluated replacement for one row, keyed by row ID.
// The executor stages all updates before committing any, which keeps a
// failed statement all-or-nothing.
type RowUpdate struct {
	RowID  uint64
	Values []Value
}

// ApplyUpdates replaces the values of the addressed rows in place and
// returns the number of rows changed.
func (t *Table) ApplyUpdates(updates []RowUpdate) int {
	byID := make(map[uint64][]Value, len(updates))
	for _, u := range updates {
		byID[u.RowID] = u.Values
	}

	count := 0
	for i := range t.rows {
		if values, ok := byID[t.rows[i].ID]; ok {
			t.rows[i].Values = values
			count++
		}
	}
	return count
}

// DeleteRows removes the rows with the given IDs, preserving the order of
// the remainder, and returns the number removed.
func (t *Table) DeleteRows(ids map[uint64]struct{}) int {
	if len(ids) == 0 {
		return 0
	}

	kept := t.rows[:0]
	count := 0
	for _, row := range t.rows {
		if _, doomed := ids[row.ID]; doomed {
			count++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return count
}

// AddColumn appends a column to the schema and backfills every existing
// row with the column default, or NULL.
func (t *Table) AddColumn(col Column) error {
	if col.Default != nil {
		coerced, err := Coerce(*col.Default, col.Type)
		if err != nil {
			return err
		}
		col.Default = &coerced
	}

	if err := t.Schema.addColumn(col); err != nil {
		return err
	}

	fill := Null(col.Type)
	if col.Default != nil {
		fill = *col.Default
	}
	for i := range t.rows {
		t.rows[i].Values = append(t.rows[i].Values, fill)
	}
	return nil
}
