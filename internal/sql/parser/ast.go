// Package parser implements a recursive-descent SQL parser producing an AST.
//
// EDUCATIONAL NOTES:
// ------------------
// An Abstract Syntax Tree (AST) is a tree representation of the structure
// of a statement. For example:
//
//	SELECT name, age FROM friends WHERE age > 25
//
// becomes
//
//	SelectStatement
//	├── Items: [name, age]
//	├── From: friends
//	└── Where: BinaryExpr(age > 25)
//
// The AST is independent of the original text and is what the executor
// consumes.
package parser

import (
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes.
type Node interface {
	node()
	String() string
}

// Statement represents a SQL statement.
type Statement interface {
	Node
	statement()
}

// Expression represents an expression that can be evaluated.
type Expression interface {
	Node
	expression()
}

// ============================================================================
// Statements
// ============================================================================

// SelectItem is a single projection in a SELECT list.
type SelectItem struct {
	Expr  Expression
	Alias string // optional AS alias
}

// Name returns the output column name for this item.
func (si SelectItem) Name() string {
	if si.Alias != "" {
		return si.Alias
	}
	return si.Expr.String()
}

// SelectStatement represents a SELECT query.
//
// Example: SELECT genre, AVG(imdb_rating) AS avg_rating FROM movies
// GROUP BY genre HAVING AVG(imdb_rating) > 7 ORDER BY avg_rating DESC LIMIT 3
type SelectStatement struct {
	Items   []SelectItem
	From    string
	Where   Expression
	GroupBy []string
	Having  Expression
	OrderBy []OrderByClause
	Limit   *int
	Offset  *int
}

func (s *SelectStatement) node()      {}
func (s *SelectStatement) statement() {}
func (s *SelectStatement) String() string {
	names := make([]string, len(s.Items))
	for i, item := range s.Items {
		names[i] = item.Name()
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), s.From)
}

// OrderByClause represents a single ORDER BY item.
type OrderByClause struct {
	Column     string
	Descending bool
}

// InsertStatement represents an INSERT query, possibly with multiple
// VALUES tuples.
//
// Example: INSERT INTO friends (name, age) VALUES ('Ororo', 30), ('Jean', 29)
type InsertStatement struct {
	Table   string
	Columns []string
	Rows    [][]Expression
}

func (s *InsertStatement) node()      {}
func (s *InsertStatement) statement() {}
func (s *InsertStatement) String() string {
	return fmt.Sprintf("INSERT INTO %s (%d rows)", s.Table, len(s.Rows))
}

// UpdateStatement represents an UPDATE query.
type UpdateStatement struct {
	Table       string
	Assignments []Assignment
	Where       Expression
}

func (s *UpdateStatement) node()      {}
func (s *UpdateStatement) statement() {}
func (s *UpdateStatement) String() string {
	return fmt.Sprintf("UPDATE %s SET %v", s.Table, s.Assignments)
}

// Assignment represents a column = value assignment in UPDATE.
type Assignment struct {
	Column string
	Value  Expression
}

// DeleteStatement represents a DELETE query.
type DeleteStatement struct {
	Table string
	Where Expression
}

func (s *DeleteStatement) node()      {}
func (s *DeleteStatement) statement() {}
func (s *DeleteStatement) String() string {
	return fmt.Sprintf("DELETE FROM %s", s.Table)
}

// CreateTableStatement represents a CREATE TABLE query.
type CreateTableStatement struct {
	Table   string
	Columns []ColumnDefinition
}

func (s *CreateTableStatement) node()      {}
func (s *CreateTableStatement) statement() {}
func (s *CreateTableStatement) String() string {
	return fmt.Sprintf("CREATE TABLE %s (%v)", s.Table, s.Columns)
}

// ColumnDefinition represents a column definition in CREATE TABLE or
// ALTER TABLE ADD COLUMN.
type ColumnDefinition struct {
	Name       string
	Type       DataType
	PrimaryKey bool
	NotNull    bool
	Default    Expression // optional DEFAULT literal
}

func (c ColumnDefinition) String() string {
	s := fmt.Sprintf("%s %s", c.Name, c.Type)
	if c.PrimaryKey {
		s += " PRIMARY KEY"
	}
	if c.NotNull {
		s += " NOT NULL"
	}
	if c.Default != nil {
		s += " DEFAULT " + c.Default.String()
	}
	return s
}

// AlterTableStatement represents ALTER TABLE name ADD COLUMN definition.
// Column addition is append-only; existing rows are backfilled with the
// default value or NULL.
type AlterTableStatement struct {
	Table  string
	Column ColumnDefinition
}

func (s *AlterTableStatement) node()      {}
func (s *AlterTableStatement) statement() {}
func (s *AlterTableStatement) String() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", s.Table, s.Column)
}

// DropTableStatement represents a DROP TABLE query.
type DropTableStatement struct {
	Table string
}

func (s *DropTableStatement) node()      {}
func (s *DropTableStatement) statement() {}
func (s *DropTableStatement) String() string {
	return fmt.Sprintf("DROP TABLE %s", s.Table)
}

// ExplainStatement wraps another statement to describe its pipeline
// without executing it.
type ExplainStatement struct {
	Statement Statement
}

func (s *ExplainStatement) node()      {}
func (s *ExplainStatement) statement() {}
func (s *ExplainStatement) String() string {
	return "EXPLAIN " + s.Statement.String()
}

// DataType represents a declared column type.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeInteger
	TypeReal
	TypeText
	TypeDate
	TypeBoolean
)

func (d DataType) String() string {
	switch d {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeText:
		return "TEXT"
	case TypeDate:
		return "DATE"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ============================================================================
// Expressions
// ============================================================================

// Identifier represents a column name.
type Identifier struct {
	Name string
}

func (e *Identifier) node()       {}
func (e *Identifier) expression() {}
func (e *Identifier) String() string {
	return e.Name
}

// IntegerLiteral represents an integer value.
type IntegerLiteral struct {
	Value int64
}

func (e *IntegerLiteral) node()       {}
func (e *IntegerLiteral) expression() {}
func (e *IntegerLiteral) String() string {
	return fmt.Sprintf("%d", e.Value)
}

// RealLiteral represents a floating-point value.
type RealLiteral struct {
	Value float64
}

func (e *RealLiteral) node()       {}
func (e *RealLiteral) expression() {}
func (e *RealLiteral) String() string {
	return fmt.Sprintf("%g", e.Value)
}

// StringLiteral represents a string value.
type StringLiteral struct {
	Value string
}

func (e *StringLiteral) node()       {}
func (e *StringLiteral) expression() {}
func (e *StringLiteral) String() string {
	return fmt.Sprintf("'%s'", e.Value)
}

// BooleanLiteral represents TRUE or FALSE.
type BooleanLiteral struct {
	Value bool
}

func (e *BooleanLiteral) node()       {}
func (e *BooleanLiteral) expression() {}
func (e *BooleanLiteral) String() string {
	if e.Value {
		return "TRUE"
	}
	return "FALSE"
}

// NullLiteral represents a NULL value.
type NullLiteral struct{}

func (e *NullLiteral) node()       {}
func (e *NullLiteral) expression() {}
func (e *NullLiteral) String() string {
	return "NULL"
}

// StarExpression represents * (all columns).
type StarExpression struct{}

func (e *StarExpression) node()       {}
func (e *StarExpression) expression() {}
func (e *StarExpression) String() string {
	return "*"
}

// BinaryExpression represents a binary operation (a = b, a + b, a LIKE b).
type BinaryExpression struct {
	Left     Expression
	Operator BinaryOp
	Right    Expression
}

func (e *BinaryExpression) node()       {}
func (e *BinaryExpression) expression() {}
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Operator, e.Right)
}

// BinaryOp represents a binary operator.
type BinaryOp int

const (
	OpUnknown BinaryOp = iota
	// Comparison operators
	OpEquals
	OpNotEquals
	OpLessThan
	OpGreaterThan
	OpLessOrEqual
	OpGreaterOrEqual
	// Pattern matching
	OpLike
	OpNotLike
	// Logical operators
	OpAnd
	OpOr
	// Arithmetic operators
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

func (op BinaryOp) String() string {
	switch op {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "!="
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpLessOrEqual:
		return "<="
	case OpGreaterOrEqual:
		return ">="
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

// UnaryExpression represents a unary operation (NOT x, -5).
type UnaryExpression struct {
	Operator UnaryOp
	Operand  Expression
}

func (e *UnaryExpression) node()       {}
func (e *UnaryExpression) expression() {}
func (e *UnaryExpression) String() string {
	return fmt.Sprintf("(%s %s)", e.Operator, e.Operand)
}

// UnaryOp represents a unary operator.
type UnaryOp int

const (
	UnaryOpNot UnaryOp = iota
	UnaryOpNegate
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryOpNot:
		return "NOT"
	case UnaryOpNegate:
		return "-"
	default:
		return "?"
	}
}

// IsNullExpression represents `expr IS NULL` and `expr IS NOT NULL`.
// Unlike `= NULL` (which is always unknown under three-valued logic),
// IS NULL tests nullness directly and always yields true or false.
type IsNullExpression struct {
	Expr   Expression
	Negate bool // IS NOT NULL
}

func (e *IsNullExpression) node()       {}
func (e *IsNullExpression) expression() {}
func (e *IsNullExpression) String() string {
	if e.Negate {
		return fmt.Sprintf("(%s IS NOT NULL)", e.Expr)
	}
	return fmt.Sprintf("(%s IS NULL)", e.Expr)
}

// FunctionCall represents an aggregate call: COUNT(*), SUM(col), AVG(col),
// MIN(col), MAX(col).
type FunctionCall struct {
	Name string // upper-cased
	Arg  Expression
	Star bool // COUNT(*)
}

func (e *FunctionCall) node()       {}
func (e *FunctionCall) expression() {}
func (e *FunctionCall) String() string {
	if e.Star {
		return fmt.Sprintf("%s(*)", e.Name)
	}
	return fmt.Sprintf("%s(%s)", e.Name, e.Arg)
}

// CaseWhen is one WHEN ... THEN ... branch of a CASE expression.
type CaseWhen struct {
	Condition Expression
	Result    Expression
}

// CaseExpression represents CASE ... WHEN ... THEN ... [ELSE ...] END.
//
// Both forms are supported:
//
//	CASE WHEN a > 1 THEN 'x' ELSE 'y' END         (searched)
//	CASE genre WHEN 'drama' THEN 1 ELSE 0 END     (operand)
//
// Branches evaluate top to bottom and short-circuit at the first true
// condition. A missing ELSE yields NULL.
type CaseExpression struct {
	Operand Expression // nil for the searched form
	Whens   []CaseWhen
	Else    Expression // nil when absent
}

func (e *CaseExpression) node()       {}
func (e *CaseExpression) expression() {}
func (e *CaseExpression) String() string {
	var sb strings.Builder
	sb.WriteString("CASE")
	if e.Operand != nil {
		sb.WriteString(" " + e.Operand.String())
	}
	for _, when := range e.Whens {
		fmt.Fprintf(&sb, " WHEN %s THEN %s", when.Condition, when.Result)
	}
	if e.Else != nil {
		sb.WriteString(" ELSE " + e.Else.String())
	}
	sb.WriteString(" END")
	return sb.String()
}
