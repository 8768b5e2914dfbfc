// Expression evaluation.
//
// EDUCATIONAL NOTES:
// ------------------
// SQL predicates use three-valued logic: an expression can be true, false,
// or unknown. Any comparison involving NULL is unknown, AND/OR/NOT follow
// the Kleene truth tables, and a row passes a filter only when the
// predicate is strictly true. This is why `WHERE health = NULL` matches
// nothing while `WHERE health IS NULL` works: IS NULL tests nullness
// directly instead of comparing.

package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
	"github.com/tabuladb/tabula/internal/table"
)

// unknown is the NULL boolean produced by comparisons involving NULL.
func unknown() table.Value {
	return table.Null(parser.TypeBoolean)
}

// evaluator evaluates expressions against rows. It caches compiled LIKE
// patterns, which pays off when one predicate is applied to every row of
// a scan.
type evaluator struct {
	likeCache map[string]*regexp.Regexp
}

func newEvaluator() *evaluator {
	return &evaluator{likeCache: make(map[string]*regexp.Regexp)}
}

// evalRow evaluates an expression against a single row. A nil schema means
// there is no row context (INSERT values, DEFAULT literals), in which case
// column references are schema errors.
func (ev *evaluator) evalRow(expr parser.Expression, schema *table.Schema, row table.Row) (table.Value, error) {
	switch ex := expr.(type) {
	case *parser.IntegerLiteral:
		return table.NewInteger(ex.Value), nil

	case *parser.RealLiteral:
		return table.NewReal(ex.Value), nil

	case *parser.StringLiteral:
		return table.NewText(ex.Value), nil

	case *parser.BooleanLiteral:
		return table.NewBoolean(ex.Value), nil

	case *parser.NullLiteral:
		return table.Null(parser.TypeUnknown), nil

	case *parser.Identifier:
		if schema == nil {
			return table.Value{}, sqlerr.Schemaf("column reference %q is not allowed here", ex.Name)
		}
		idx, ok := schema.ColumnIndex(ex.Name)
		if !ok {
			return table.Value{}, sqlerr.Schemaf("no such column %q", ex.Name)
		}
		return row.Values[idx], nil

	case *parser.IsNullExpression:
		val, err := ev.evalRow(ex.Expr, schema, row)
		if err != nil {
			return table.Value{}, err
		}
		return table.NewBoolean(val.IsNull != ex.Negate), nil

	case *parser.CaseExpression:
		return ev.evalCase(ex, schema, row)

	case *parser.BinaryExpression:
		left, err := ev.evalRow(ex.Left, schema, row)
		if err != nil {
			return table.Value{}, err
		}
		right, err := ev.evalRow(ex.Right, schema, row)
		if err != nil {
			return table.Value{}, err
		}
		return ev.evalBinary(ex.Operator, left, right)

	case *parser.UnaryExpression:
		operand, err := ev.evalRow(ex.Operand, schema, row)
		if err != nil {
			return table.Value{}, err
		}
		return evalUnary(ex.Operator, operand)

	case *parser.FunctionCall:
		return table.Value{}, sqlerr.Schemaf("aggregate %s is not allowed here", ex.Name)

	case *parser.StarExpression:
		return table.Value{}, sqlerr.Schemaf("* is not a value expression")

	default:
		return table.Value{}, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

// evalLiteral evaluates an expression with no row context.
func (ev *evaluator) evalLiteral(expr parser.Expression) (table.Value, error) {
	return ev.evalRow(expr, nil, table.Row{})
}

// evalCase walks CASE branches top to bottom and short-circuits at the
// first true condition. A missing ELSE yields NULL.
func (ev *evaluator) evalCase(ex *parser.CaseExpression, schema *table.Schema, row table.Row) (table.Value, error) {
	var operand table.Value
	hasOperand := ex.Operand != nil
	if hasOperand {
		var err error
		operand, err = ev.evalRow(ex.Operand, schema, row)
		if err != nil {
			return table.Value{}, err
		}
	}

	for _, when := range ex.Whens {
		cond, err := ev.evalRow(when.Condition, schema, row)
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
			return ev.evalRow(when.Result, schema, row)
		}
	}

	if ex.Else != nil {
		return ev.evalRow(ex.Else, schema, row)
	}
	return table.Null(parser.TypeUnknown), nil
}

// evalBinary applies a binary operator under three-valued logic.
func (ev *evaluator) evalBinary(op parser.BinaryOp, left, right table.Value) (table.Value, error) {
	switch op {
	case parser.OpAnd, parser.OpOr:
		return evalLogical(op, left, right)
	}

	// All remaining operators propagate NULL: any NULL operand yields
	// unknown (for comparisons) or NULL (for arithmetic).
	if left.IsNull || right.IsNull {
		switch op {
		case parser.OpEquals, parser.OpNotEquals, parser.OpLessThan, parser.OpGreaterThan,
			parser.OpLessOrEqual, parser.OpGreaterOrEqual, parser.OpLike, parser.OpNotLike:
			return unknown(), nil
		default:
			return table.Null(parser.TypeUnknown), nil
		}
	}

	switch op {
	case parser.OpEquals, parser.OpNotEquals:
		eq, err := left.Equals(right)
		if err != nil {
			return table.Value{}, err
		}
		return table.NewBoolean(eq == (op == parser.OpEquals)), nil

	case parser.OpLessThan, parser.OpGreaterThan, parser.OpLessOrEqual, parser.OpGreaterOrEqual:
		cmp, err := left.Compare(right)
		if err != nil {
			return table.Value{}, err
		}
		switch op {
		case parser.OpLessThan:
			return table.NewBoolean(cmp < 0), nil
		case parser.OpGreaterThan:
			return table.NewBoolean(cmp > 0), nil
		case parser.OpLessOrEqual:
			return table.NewBoolean(cmp <= 0), nil
		default:
			return table.NewBoolean(cmp >= 0), nil
		}

	case parser.OpLike, parser.OpNotLike:
		matched, err := ev.like(left, right)
		if err != nil {
			return table.Value{}, err
		}
		return table.NewBoolean(matched == (op == parser.OpLike)), nil

	case parser.OpAdd, parser.OpSubtract, parser.OpMultiply, parser.OpDivide:
		return evalArithmetic(op, left, right)

	default:
		return table.Value{}, fmt.Errorf("unsupported operator: %s", op)
	}
}

// evalLogical implements the Kleene AND/OR truth tables. FALSE AND NULL is
// false and TRUE OR NULL is true; only the undecidable combinations stay
// unknown.
func evalLogical(op parser.BinaryOp, left, right table.Value) (table.Value, error) {
	lv, err := boolOrNull(left)
	if err != nil {
		return table.Value{}, err
	}
	rv, err := boolOrNull(right)
	if err != nil {
		return table.Value{}, err
	}

	if op == parser.OpAnd {
		if lv == tvFalse || rv == tvFalse {
			return table.NewBoolean(false), nil
		}
		if lv == tvNull || rv == tvNull {
			return unknown(), nil
		}
		return table.NewBoolean(true), nil
	}

	if lv == tvTrue || rv == tvTrue {
		return table.NewBoolean(true), nil
	}
	if lv == tvNull || rv == tvNull {
		return unknown(), nil
	}
	return table.NewBoolean(false), nil
}

// truth value of a boolean-or-NULL operand
type tv int

const (
	tvFalse tv = iota
	tvTrue
	tvNull
)

func boolOrNull(v table.Value) (tv, error) {
	if v.IsNull {
		return tvNull, nil
	}
	if v.Type != parser.TypeBoolean {
		return tvFalse, sqlerr.Typef("%s is not a boolean", v.Type)
	}
	if v.Boolean {
		return tvTrue, nil
	}
	return tvFalse, nil
}

// evalArithmetic applies +, -, *, / with integer/real promotion. `+` on
// two text values concatenates.
func evalArithmetic(op parser.BinaryOp, left, right table.Value) (table.Value, error) {
	if op == parser.OpAdd && left.Type == parser.TypeText && right.Type == parser.TypeText {
		return table.NewText(left.Text + right.Text), nil
	}

	if !left.IsNumeric() || !right.IsNumeric() {
		return table.Value{}, sqlerr.Typef("cannot apply %s to %s and %s", op, left.Type, right.Type)
	}

	bothInt := left.Type == parser.TypeInteger && right.Type == parser.TypeInteger

	if op == parser.OpDivide {
		if (right.Type == parser.TypeInteger && right.Integer == 0) ||
			(right.Type == parser.TypeReal && right.Real == 0) {
			return table.Value{}, sqlerr.Typef("division by zero")
		}
	}

	if bothInt {
		a, b := left.Integer, right.Integer
		switch op {
		case parser.OpAdd:
			return table.NewInteger(a + b), nil
		case parser.OpSubtract:
			return table.NewInteger(a - b), nil
		case parser.OpMultiply:
			return table.NewInteger(a * b), nil
		default:
			return table.NewInteger(a / b), nil
		}
	}

	a, b := left.AsFloat(), right.AsFloat()
	switch op {
	case parser.OpAdd:
		return table.NewReal(a + b), nil
	case parser.OpSubtract:
		return table.NewReal(a - b), nil
	case parser.OpMultiply:
		return table.NewReal(a * b), nil
	default:
		return table.NewReal(a / b), nil
	}
}

func evalUnary(op parser.UnaryOp, operand table.Value) (table.Value, error) {
	if operand.IsNull {
		return table.Null(operand.Type), nil
	}

	switch op {
	case parser.UnaryOpNot:
		if operand.Type != parser.TypeBoolean {
			return table.Value{}, sqlerr.Typef("NOT requires a boolean, got %s", operand.Type)
		}
		return table.NewBoolean(!operand.Boolean), nil

	case parser.UnaryOpNegate:
		switch operand.Type {
		case parser.TypeInteger:
			return table.NewInteger(-operand.Integer), nil
		case parser.TypeReal:
			return table.NewReal(-operand.Real), nil
		}
		return table.Value{}, sqlerr.Typef("cannot negate %s", operand.Type)

	default:
		return table.Value{}, fmt.Errorf("unsupported unary operator: %s", op)
	}
}

// like matches text against a SQL LIKE pattern: % matches any run of
// characters, _ matches exactly one. Matching is case-insensitive.
func (ev *evaluator) like(val, pattern table.Value) (bool, error) {
	if val.Type != parser.TypeText && val.Type != parser.TypeDate {
		return false, sqlerr.Typef("LIKE requires text, got %s", val.Type)
	}
	if pattern.Type != parser.TypeText {
		return false, sqlerr.Typef("LIKE pattern must be text, got %s", pattern.Type)
	}

	re, ok := ev.likeCache[pattern.Text]
	if !ok {
		// Escape regex metacharacters first, then translate the SQL
		// wildcards that QuoteMeta left alone.
		quoted := regexp.QuoteMeta(pattern.Text)
		quoted = strings.ReplaceAll(quoted, "%", ".*")
		quoted = strings.ReplaceAll(quoted, "_", ".")

		var err error
		re, err = regexp.Compile("(?is)^" + quoted + "$")
		if err != nil {
			return false, sqlerr.Typef("invalid LIKE pattern %q", pattern.Text)
		}
		ev.likeCache[pattern.Text] = re
	}

	return re.MatchString(val.Text), nil
}

// isTrue reports whether a predicate result is strictly true. Unknown
// (NULL) filters a row out just like false does.
func isTrue(v table.Value) bool {
	return !v.IsNull && v.Type == parser.TypeBoolean && v.Boolean
}

// predicate evaluates a filter expression against a row and reduces the
// three-valued result to pass/fail.
func (ev *evaluator) predicate(expr parser.Expression, schema *table.Schema, row table.Row) (bool, error) {
	if expr == nil {
		return true, nil
	}
	val, err := ev.evalRow(expr, schema, row)
	if err != nil {
		return false, err
	}
	if !val.IsNull && val.Type != parser.TypeBoolean {
		return false, sqlerr.Typef("filter must be a boolean expression")
	}
	return isTrue(val), nil
}
