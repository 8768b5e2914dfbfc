// Aggregate function computation.

package executor

import (
	"strings"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

// aggregateNames is the set of supported aggregate functions.
var aggregateNames = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

// computeAggregate evaluates one aggregate call over a group of rows.
//
// NULL handling follows standard SQL: COUNT(col), SUM, AVG, MIN, and MAX
// all skip NULL inputs. An aggregate over no non-NULL inputs is NULL,
// except COUNT which is 0.
func (ev *evaluator) computeAggregate(call *parser.FunctionCall, schema *table.Schema, rows []table.Row) (table.Value, error) {
	if !aggregateNames[call.Name] {
		return table.Value{}, sqlerr.Schemaf("unknown function %s", call.Name)
	}

	if call.Star {
		if call.Name != "COUNT" {
			return table.Value{}, sqlerr.Schemaf("%s(*) is not supported; only COUNT(*)", call.Name)
		}
		return table.NewInteger(int64(len(rows))), nil
	}

	var (
		count   int64
		sum     float64
		allInt  = true
		best    table.Value
		hasBest bool
	)

	for _, row := range rows {
		val, err := ev.evalRow(call.Arg, schema, row)
		if err != nil {
			return table.Value{}, err
		}
		if val.IsNull {
			continue
		}
		count++

		switch call.Name {
		case "SUM", "AVG":
			if !val.IsNumeric() {
				return table.Value{}, sqlerr.Typef("%s requires numeric input, got %s", call.Name, val.Type)
			}
			sum += val.AsFloat()
			if val.Type != parser.TypeInteger {
				allInt = false
			}

		case "MIN", "MAX":
			if !hasBest {
				best = val
				hasBest = true
				continue
			}
			cmp, err := val.Compare(best)
			if err != nil {
				return table.Value{}, err
			}
			if (call.Name == "MIN" && cmp < 0) || (call.Name == "MAX" && cmp > 0) {
				best = val
			}
		}
	}

	switch call.Name {
	case "COUNT":
		return table.NewInteger(count), nil

	case "SUM":
		if count == 0 {
			return table.Null(parser.TypeReal), nil
		}
		if allInt {
			return table.NewInteger(int64(sum)), nil
		}
		return table.NewReal(sum), nil

	case "AVG":
		if count == 0 {
			return table.Null(parser.TypeReal), nil
		}
		return table.NewReal(sum / float64(count)), nil

	default: // MIN, MAX
		if !hasBest {
			return table.Null(parser.TypeUnknown), nil
		}
		return best, nil
	}
}

// containsAggregate reports whether an expression tree contains an
// aggregate call. It decides whether a SELECT runs in grouped mode.
func containsAggregate(expr parser.Expression) bool {
	switch ex := expr.(type) {
	case nil:
		return false
	case *parser.FunctionCall:
		return aggregateNames[strings.ToUpper(ex.Name)]
	case *parser.BinaryExpression:
		return containsAggregate(ex.Left) || containsAggregate(ex.Right)
	case *parser.UnaryExpression:
		return containsAggregate(ex.Operand)
	case *parser.IsNullExpression:
		return containsAggregate(ex.Expr)
	case *parser.CaseExpression:
		if containsAggregate(ex.Operand) || containsAggregate(ex.Else) {
			return true
		}
		for _, when := range ex.Whens {
			if containsAggregate(when.Condition) || containsAggregate(when.Result) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
