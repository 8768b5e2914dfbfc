// Package planner describes how a statement will execute.
//
// EDUCATIONAL NOTES:
// ------------------
// There is no cost-based optimization here: every SELECT runs the same
// fixed pipeline, so the "plan" is simply a human-readable description of
// the stages that pipeline will run for a given statement. EXPLAIN
// surfaces it so you can see, for example, that a WHERE clause means a
// full scan with a filter, or that GROUP BY switches the query into
// grouped mode. Production planners choose between access paths and join
// orders; ours only narrates.

package planner

import (
	"fmt"
	"strings"

	"github.com/tabuladb/tabula/internal/catalog"
	"github.com/tabuladb/tabula/internal/sql/parser"
)

// Plan is an ordered list of pipeline stage descriptions.
type Plan struct {
	Steps []string
}

// Describe builds the stage list for a statement without executing it.
// The target table must exist; column-level validation is left to
// execution.
func Describe(stmt parser.Statement, cat *catalog.Catalog) (*Plan, error) {
	switch s := stmt.(type) {
	case *parser.SelectStatement:
		return describeSelect(s, cat)

	case *parser.InsertStatement:
		if _, err := cat.Get(s.Table); err != nil {
			return nil, err
		}
		return &Plan{Steps: []string{
			fmt.Sprintf("INSERT %d row(s) into %s", len(s.Rows), s.Table),
		}}, nil

	case *parser.UpdateStatement:
		if _, err := cat.Get(s.Table); err != nil {
			return nil, err
		}
		plan := &Plan{Steps: []string{fmt.Sprintf("SCAN %s", s.Table)}}
		if s.Where != nil {
			plan.Steps = append(plan.Steps, fmt.Sprintf("FILTER %s", s.Where))
		}
		plan.Steps = append(plan.Steps, fmt.Sprintf("UPDATE %d column(s)", len(s.Assignments)))
		return plan, nil

	case *parser.DeleteStatement:
		if _, err := cat.Get(s.Table); err != nil {
			return nil, err
		}
		plan := &Plan{Steps: []string{fmt.Sprintf("SCAN %s", s.Table)}}
		if s.Where != nil {
			plan.Steps = append(plan.Steps, fmt.Sprintf("FILTER %s", s.Where))
		}
		plan.Steps = append(plan.Steps, "DELETE")
		return plan, nil

	case *parser.CreateTableStatement:
		return &Plan{Steps: []string{fmt.Sprintf("CREATE TABLE %s (%d columns)", s.Table, len(s.Columns))}}, nil

	case *parser.AlterTableStatement:
		if _, err := cat.Get(s.Table); err != nil {
			return nil, err
		}
		return &Plan{Steps: []string{fmt.Sprintf("ADD COLUMN %s to %s", s.Column.Name, s.Table)}}, nil

	case *parser.DropTableStatement:
		if _, err := cat.Get(s.Table); err != nil {
			return nil, err
		}
		return &Plan{Steps: []string{fmt.Sprintf("DROP TABLE %s", s.Table)}}, nil

	default:
		return nil, fmt.Errorf("cannot explain statement type %T", stmt)
	}
}

func describeSelect(s *parser.SelectStatement, cat *catalog.Catalog) (*Plan, error) {
	if _, err := cat.Get(s.From); err != nil {
		return nil, err
	}

	plan := &Plan{Steps: []string{fmt.Sprintf("SCAN %s", s.From)}}

	if s.Where != nil {
		plan.Steps = append(plan.Steps, fmt.Sprintf("FILTER %s", s.Where))
	}

	if len(s.GroupBy) > 0 {
		plan.Steps = append(plan.Steps, fmt.Sprintf("GROUP BY %s", strings.Join(s.GroupBy, ", ")))
	} else if hasAggregate(s) {
		plan.Steps = append(plan.Steps, "AGGREGATE all rows")
	}
	if s.Having != nil {
		plan.Steps = append(plan.Steps, fmt.Sprintf("HAVING %s", s.Having))
	}

	if len(s.OrderBy) > 0 {
		parts := make([]string, len(s.OrderBy))
		for i, ob := range s.OrderBy {
			dir := "ASC"
			if ob.Descending {
				dir = "DESC"
			}
			parts[i] = ob.Column + " " + dir
		}
		plan.Steps = append(plan.Steps, fmt.Sprintf("SORT %s", strings.Join(parts, ", ")))
	}

	if s.Offset != nil {
		plan.Steps = append(plan.Steps, fmt.Sprintf("OFFSET %d", *s.Offset))
	}
	if s.Limit != nil {
		plan.Steps = append(plan.Steps, fmt.Sprintf("LIMIT %d", *s.Limit))
	}

	names := make([]string, len(s.Items))
	for i, item := range s.Items {
		names[i] = item.Name()
	}
	plan.Steps = append(plan.Steps, fmt.Sprintf("PROJECT %s", strings.Join(names, ", ")))

	return plan, nil
}

func hasAggregate(s *parser.SelectStatement) bool {
	for _, item := range s.Items {
		if exprHasAggregate(item.Expr) {
			return true
		}
	}
	return exprHasAggregate(s.Having)
}

func exprHasAggregate(expr parser.Expression) bool {
	switch ex := expr.(type) {
	case nil:
		return false
	case *parser.FunctionCall:
		return true
	case *parser.BinaryExpression:
		return exprHasAggregate(ex.Left) || exprHasAggregate(ex.Right)
	case *parser.UnaryExpression:
		return exprHasAggregate(ex.Operand)
	case *parser.IsNullExpression:
		return exprHasAggregate(ex.Expr)
	case *parser.CaseExpression:
		if exprHasAggregate(ex.Operand) || exprHasAggregate(ex.Else) {
			return true
		}
		for _, when := range ex.Whens {
			if exprHasAggregate(when.Condition) || exprHasAggregate(when.Result) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
