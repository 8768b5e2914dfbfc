// SELECT pipeline.
//
// EDUCATIONAL NOTES:
// ------------------
// Every SELECT runs the same fixed pipeline:
//
//	scan -> filter -> [group -> aggregate -> HAVING] -> order -> offset -> limit -> project
//
// There is no cost-based planning: no indexes, no join reordering, no
// predicate pushdown. The pipeline is allocated per statement and the
// stages run eagerly over in-memory slices, which keeps each stage a
// plain loop you can read top to bottom.
//
// A query runs in grouped mode when it has a GROUP BY clause or mentions
// an aggregate anywhere in the select list or HAVING. In grouped mode the
// output has one row per group, and a bare column reference is only legal
// when that column is a group key.

package executor

import (
	"sort"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

func (e *Executor) executeSelect(stmt *parser.SelectStatement) (*Result, error) {
	tbl, err := e.catalog.Get(stmt.From)
	if err != nil {
		return nil, err
	}
	schema := tbl.Schema

	grouped := len(stmt.GroupBy) > 0 || selectHasAggregate(stmt)

	// Validate every expression against the schema before touching any
	// rows, so a bad column name fails even on an empty table.
	if err := e.validateSelect(stmt, schema, grouped); err != nil {
		return nil, err
	}

	filtered := make([]table.Row, 0)
	for _, row := range tbl.Scan() {
		match, err := e.ev.predicate(stmt.Where, schema, row)
		if err != nil {
			return nil, err
		}
		if match {
			filtered = append(filtered, row)
		}
	}

	if grouped {
		return e.selectGrouped(stmt, schema, filtered)
	}
	return e.selectPlain(stmt, schema, filtered)
}

func selectHasAggregate(stmt *parser.SelectStatement) bool {
	for _, item := range stmt.Items {
		if containsAggregate(item.Expr) {
			return true
		}
	}
	return containsAggregate(stmt.Having)
}

// ----------------------------------------------------------------------------
// Validation
// ----------------------------------------------------------------------------

func (e *Executor) validateSelect(stmt *parser.SelectStatement, schema *table.Schema, grouped bool) error {
	if err := validateRowExpr(stmt.Where, schema); err != nil {
		return err
	}
	if containsAggregate(stmt.Where) {
		return sqlerr.Schemaf("aggregates are not allowed in WHERE")
	}

	if !grouped {
		for _, item := range stmt.Items {
			if _, star := item.Expr.(*parser.StarExpression); star {
				continue
			}
			if err := validateRowExpr(item.Expr, schema); err != nil {
				return err
			}
		}
		for _, ob := range stmt.OrderBy {
			if _, ok := schema.ColumnIndex(ob.Column); ok {
				continue
			}
			if _, ok := findItem(stmt.Items, ob.Column); !ok {
				return sqlerr.Schemaf("no such column %q in ORDER BY", ob.Column)
			}
		}
		return nil
	}

	keys := make(map[string]bool, len(stmt.GroupBy))
	for _, name := range stmt.GroupBy {
		if _, ok := schema.ColumnIndex(name); !ok {
			return sqlerr.Schemaf("no such column %q in GROUP BY", name)
		}
		keys[strings.ToLower(name)] = true
	}

	for _, item := range stmt.Items {
		if _, star := item.Expr.(*parser.StarExpression); star {
			return sqlerr.Schemaf("* is not allowed in a grouped query")
		}
		if err := validateGroupExpr(item.Expr, schema, keys); err != nil {
			return err
		}
	}
	if err := validateGroupExpr(stmt.Having, schema, keys); err != nil {
		return err
	}
	for _, ob := range stmt.OrderBy {
		if keys[strings.ToLower(ob.Column)] {
			continue
		}
		if _, ok := findItem(stmt.Items, ob.Column); !ok {
			return sqlerr.Schemaf("ORDER BY column %q is neither a group key nor an output column", ob.Column)
		}
	}
	return nil
}

// validateRowExpr checks that every column reference resolves, and that
// aggregate calls only name known functions over valid arguments.
func validateRowExpr(expr parser.Expression, schema *table.Schema) error {
	switch ex := expr.(type) {
	case nil:
		return nil
	case *parser.Identifier:
		if _, ok := schema.ColumnIndex(ex.Name); !ok {
			return sqlerr.Schemaf("no such column %q", ex.Name)
		}
		return nil
	case *parser.BinaryExpression:
		if err := validateRowExpr(ex.Left, schema); err != nil {
			return err
		}
		return validateRowExpr(ex.Right, schema)
	case *parser.UnaryExpression:
		return validateRowExpr(ex.Operand, schema)
	case *parser.IsNullExpression:
		return validateRowExpr(ex.Expr, schema)
	case *parser.CaseExpression:
		if err := validateRowExpr(ex.Operand, schema); err != nil {
			return err
		}
		for _, when := range ex.Whens {
			if err := validateRowExpr(when.Condition, schema); err != nil {
				return err
			}
			if err := validateRowExpr(when.Result, schema); err != nil {
				return err
			}
		}
		return validateRowExpr(ex.Else, schema)
	case *parser.FunctionCall:
		if !aggregateNames[ex.Name] {
			return sqlerr.Schemaf("unknown function %s", ex.Name)
		}
		if ex.Star {
			return nil
		}
		if containsAggregate(ex.Arg) {
			return sqlerr.Schemaf("aggregates cannot be nested")
		}
		return validateRowExpr(ex.Arg, schema)
	default:
		return nil
	}
}

// validateGroupExpr enforces the grouped-mode rule: bare column
// references outside aggregate arguments must be group keys.
func validateGroupExpr(expr parser.Expression, schema *table.Schema, keys map[string]bool) error {
	switch ex := expr.(type) {
	case nil:
		return nil
	case *parser.Identifier:
		if _, ok := schema.ColumnIndex(ex.Name); !ok {
			return sqlerr.Schemaf("no such column %q", ex.Name)
		}
		if !keys[strings.ToLower(ex.Name)] {
			return sqlerr.Schemaf("column %q must appear in GROUP BY or inside an aggregate", ex.Name)
		}
		return nil
	case *parser.FunctionCall:
		// Inside an aggregate, any column is fair game.
		return validateRowExpr(ex, schema)
	case *parser.BinaryExpression:
		if err := validateGroupExpr(ex.Left, schema, keys); err != nil {
			return err
		}
		return validateGroupExpr(ex.Right, schema, keys)
	case *parser.UnaryExpression:
		return validateGroupExpr(ex.Operand, schema, keys)
	case *parser.IsNullExpression:
		return validateGroupExpr(ex.Expr, schema, keys)
	case *parser.CaseExpression:
		if err := validateGroupExpr(ex.Operand, schema, keys); err != nil {
			return err
		}
		for _, when := range ex.Whens {
			if err := validateGroupExpr(when.Condition, schema, keys); err != nil {
				return err
			}
			if err := validateGroupExpr(when.Result, schema, keys); err != nil {
				return err
			}
		}
		return validateGroupExpr(ex.Else, schema, keys)
	default:
		return nil
	}
}

func findItem(items []parser.SelectItem, name string) (int, bool) {
	for i, item := range items {
		if strings.EqualFold(item.Name(), name) {
			return i, true
		}
	}
	return 0, false
}

// ----------------------------------------------------------------------------
// Plain (non-grouped) pipeline
// ----------------------------------------------------------------------------

func (e *Executor) selectPlain(stmt *parser.SelectStatement, schema *table.Schema, rows []table.Row) (*Result, error) {
	if len(stmt.OrderBy) > 0 {
		// Sort keys are precomputed per row so the comparison function
		// stays error-free. The stable sort preserves insertion order
		// between equal keys.
		keys := make([][]table.Value, len(rows))
		for i, row := range rows {
			keys[i] = make([]table.Value, len(stmt.OrderBy))
			for j, ob := range stmt.OrderBy {
				val, err := e.orderKey(stmt, schema, row, ob.Column)
				if err != nil {
					return nil, err
				}
				keys[i][j] = val
			}
		}
		sortRows(rows, keys, stmt.OrderBy)
	}

	rows = applyOffsetLimit(rows, stmt.Offset, stmt.Limit)

	columns := outputColumns(stmt.Items, schema)
	out := make([][]table.Value, 0, len(rows))
	for _, row := range rows {
		projected := make([]table.Value, 0, len(columns))
		for _, item := range stmt.Items {
			if _, star := item.Expr.(*parser.StarExpression); star {
				projected = append(projected, row.Values...)
				continue
			}
			val, err := e.ev.evalRow(item.Expr, schema, row)
			if err != nil {
				return nil, err
			}
			projected = append(projected, val)
		}
		out = append(out, projected)
	}

	return &Result{Columns: columns, Rows: out, RowCount: len(out)}, nil
}

// orderKey resolves an ORDER BY column for one row: schema columns win,
// then select-list aliases.
func (e *Executor) orderKey(stmt *parser.SelectStatement, schema *table.Schema, row table.Row, column string) (table.Value, error) {
	if idx, ok := schema.ColumnIndex(column); ok {
		return row.Values[idx], nil
	}
	idx, _ := findItem(stmt.Items, column)
	return e.ev.evalRow(stmt.Items[idx].Expr, schema, row)
}

func outputColumns(items []parser.SelectItem, schema *table.Schema) []string {
	columns := make([]string, 0, len(items))
	for _, item := range items {
		if _, star := item.Expr.(*parser.StarExpression); star {
			columns = append(columns, schema.ColumnNames()...)
			continue
		}
		columns = append(columns, item.Name())
	}
	return columns
}

// ----------------------------------------------------------------------------
// Grouped pipeline
// ----------------------------------------------------------------------------

// group is one GROUP BY bucket: the rows that share a key tuple, plus a
// representative row for resolving key-column references.
type group struct {
	repr table.Row
	rows []table.Row
}

func (e *Executor) selectGrouped(stmt *parser.SelectStatement, schema *table.Schema, rows []table.Row) (*Result, error) {
	groups, err := e.buildGroups(stmt.GroupBy, schema, rows)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(stmt.Items))
	for i, item := range stmt.Items {
		columns[i] = item.Name()
	}

	type groupRow struct {
		g   *group
		out []table.Value
	}

	kept := make([]groupRow, 0, len(groups))
	for _, g := range groups {
		if stmt.Having != nil {
			val, err := e.evalGroupExpr(stmt.Having, schema, g)
			if err != nil {
				return nil, err
			}
			if !val.IsNull && val.Type != parser.TypeBoolean {
				return nil, sqlerr.Typef("HAVING must be a boolean expression")
			}
			if !isTrue(val) {
				continue
			}
		}

		out := make([]table.Value, len(stmt.Items))
		for i, item := range stmt.Items {
			val, err := e.evalGroupExpr(item.Expr, schema, g)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		kept = append(kept, groupRow{g: g, out: out})
	}

	if len(stmt.OrderBy) > 0 {
		keys := make(map[*group][]table.Value, len(kept))
		for _, gr := range kept {
			key := make([]table.Value, len(stmt.OrderBy))
			for j, ob := range stmt.OrderBy {
				if idx, ok := findItem(stmt.Items, ob.Column); ok {
					key[j] = gr.out[idx]
					continue
				}
				val, err := e.evalGroupExpr(&parser.Identifier{Name: ob.Column}, schema, gr.g)
				if err != nil {
					return nil, err
				}
				key[j] = val
			}
			keys[gr.g] = key
		}
		sort.SliceStable(kept, func(a, b int) bool {
			return lessKeys(keys[kept[a].g], keys[kept[b].g], stmt.OrderBy)
		})
	}

	out := make([][]table.Value, 0, len(kept))
	for _, gr := range kept {
		out = append(out, gr.out)
	}
	out = applyOffsetLimitRows(out, stmt.Offset, stmt.Limit)

	return &Result{Columns: columns, Rows: out, RowCount: len(out)}, nil
}

// buildGroups buckets rows by their GROUP BY key tuple, preserving the
// order in which each key first appears. NULL keys group together. With
// no GROUP BY clause the whole input is one group, even when empty, so a
// bare aggregate over an empty table still returns one row.
func (e *Executor) buildGroups(keyCols []string, schema *table.Schema, rows []table.Row) ([]*group, error) {
	if len(keyCols) == 0 {
		return []*group{{rows: rows}}, nil
	}

	indexes := make([]int, len(keyCols))
	for i, name := range keyCols {
		idx, _ := schema.ColumnIndex(name)
		indexes[i] = idx
	}

	byKey := make(map[string]*group)
	var ordered []*group
	for _, row := range rows {
		var sb strings.Builder
		for _, idx := range indexes {
			val := row.Values[idx]
			if val.IsNull {
				sb.WriteString("\x00null")
			} else {
				sb.WriteString(val.String())
			}
			sb.WriteByte('\x1f')
		}
		key := sb.String()

		g, ok := byKey[key]
		if !ok {
			g = &group{repr: row}
			byKey[key] = g
			ordered = append(ordered, g)
		}
		g.rows = append(g.rows, row)
	}
	return ordered, nil
}

// evalGroupExpr evaluates an expression in grouped mode: aggregate calls
// run over the group's rows, and column references resolve against the
// representative row. Validation has already ensured bare references are
// group keys, so any row in the group would give the same value.
func (e *Executor) evalGroupExpr(expr parser.Expression, schema *table.Schema, g *group) (table.Value, error) {
	switch ex := expr.(type) {
	case *parser.FunctionCall:
		return e.ev.computeAggregate(ex, schema, g.rows)

	case *parser.BinaryExpression:
		left, err := e.evalGroupExpr(ex.Left, schema, g)
		if err != nil {
			return table.Value{}, err
		}
		right, err := e.evalGroupExpr(ex.Right, schema, g)
		if err != nil {
			return table.Value{}, err
		}
		return e.ev.evalBinary(ex.Operator, left, right)

	case *parser.UnaryExpression:
		operand, err := e.evalGroupExpr(ex.Operand, schema, g)
		if err != nil {
			return table.Value{}, err
		}
		return evalUnary(ex.Operator, operand)

	case *parser.IsNullExpression:
		val, err := e.evalGroupExpr(ex.Expr, schema, g)
		if err != nil {
			return table.Value{}, err
		}
		return table.NewBoolean(val.IsNull != ex.Negate), nil

	case *parser.CaseExpression:
		return e.evalGroupCase(ex, schema, g)

	default:
		return e.ev.evalRow(expr, schema, g.repr)
	}
}

func (e *Executor) evalGroupCase(ex *parser.CaseExpression, schema *table.Schema, g *group) (table.Value, error) {
	var operand table.Value
	hasOperand := ex.Operand != nil
	if hasOperand {
		var err error
		operand, err = e.evalGroupExpr(ex.Operand, schema, g)
		if err != nil {
			return table.Value{}, err
		}
	}

	for _, when := range ex.Whens {
		cond, err := e.evalGroupExpr(when.Condition, schema, g)
		if err != nil {
			return table.Value{}, err
		}

		var matched bool
		if hasOperand {
			matched, err = operand.Equals(cond)
			if err != nil {
				return table.Value{}, err
			}
		} else {
			matched = isTrue(cond)
		}

		if matched {
			return e.evalGroupExpr(when.Result, schema, g)
		}
	}

	if ex.Else != nil {
		return e.evalGroupExpr(ex.Else, schema, g)
	}
	return table.Null(parser.TypeUnknown), nil
}

// ----------------------------------------------------------------------------
// Ordering and windowing helpers
// ----------------------------------------------------------------------------

// lessKeys compares two precomputed sort key tuples clause by clause.
// NULL sorts before any value; DESC reverses the comparison.
func lessKeys(a, b []table.Value, clauses []parser.OrderByClause) bool {
	for i, ob := range clauses {
		cmp, err := a[i].Compare(b[i])
		if err != nil || cmp == 0 {
			continue
		}
		if ob.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func sortRows(rows []table.Row, keys [][]table.Value, clauses []parser.OrderByClause) {
	type pair struct {
		row table.Row
		key []table.Value
	}
	pairs := make([]pair, len(rows))
	for i := range rows {
		pairs[i] = pair{row: rows[i], key: keys[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return lessKeys(pairs[a].key, pairs[b].key, clauses)
	})
	for i := range pairs {
		rows[i] = pairs[i].row
	}
}

func applyOffsetLimit(rows []table.Row, offset, limit *int) []table.Row {
	if offset != nil {
		n := *offset
		if n < 0 {
			n = 0
		}
		if n >= len(rows) {
			return nil
		}
		rows = rows[n:]
	}
	if limit != nil {
		n := *limit
		if n < 0 {
			n = 0
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	return rows
}

func applyOffsetLimitRows(rows [][]table.Value, offset, limit *int) [][]table.Value {
	if offset != nil {
		n := *offset
		if n < 0 {
			n = 0
		}
		if n >= len(rows) {
			return nil
		}
		rows = rows[n:]
	}
	if limit != nil {
		n := *limit
		if n < 0 {
			n = 0
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	return rows
}
