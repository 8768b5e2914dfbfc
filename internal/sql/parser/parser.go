// Package parser - recursive-descent parser implementation
//
// EDUCATIONAL NOTES:
// ------------------
// The parser reads tokens from the lexer and builds the AST. Each grammar
// rule becomes a function: parseStatement dispatches on the first keyword,
// parseSelectStatement handles the SELECT grammar, and parseExpression is
// a Pratt parser that handles operator precedence.
//
// The parser maintains a current token and a one-token lookahead, which is
// enough for this grammar.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/lexer"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
)

// Parser parses SQL tokens into an AST.
type Parser struct {
	lexer     *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
}

// New creates a Parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		lexer:  l,
		errors: []string{},
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// ParseStatement is a convenience that lexes and parses a single statement.
func ParseStatement(input string) (Statement, error) {
	return New(lexer.New(input)).Parse()
}

// Parse parses the input and returns the AST. All failures are reported as
// sqlerr.ErrParse.
func (p *Parser) Parse() (Statement, error) {
	stmt := p.parseStatement()

	// A trailing semicolon is allowed; anything else after the statement
	// is an error.
	for p.peekTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
	}
	if stmt != nil && !p.peekTokenIs(lexer.TokenEOF) {
		p.errors = append(p.errors, fmt.Sprintf("unexpected input after statement: %q", p.peekToken.Literal))
	}

	if len(p.errors) > 0 {
		return nil, sqlerr.Parsef("%s", strings.Join(p.errors, "; "))
	}
	return stmt, nil
}

// Errors returns any parsing errors encountered.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token is of the expected type.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, fmt.Sprintf("unexpected token %q at line %d, column %d",
		p.peekToken.Literal, p.peekToken.Line, p.peekToken.Column))
	return false
}

// parseStatement dispatches on the first token of the statement.
func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.TokenSelect:
		return p.parseSelectStatement()
	case lexer.TokenInsert:
		return p.parseInsertStatement()
	case lexer.TokenUpdate:
		return p.parseUpdateStatement()
	case lexer.TokenDelete:
		return p.parseDeleteStatement()
	case lexer.TokenCreate:
		return p.parseCreateTableStatement()
	case lexer.TokenAlter:
		return p.parseAlterTableStatement()
	case lexer.TokenDrop:
		return p.parseDropStatement()
	case lexer.TokenExplain:
		return p.parseExplainStatement()
	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected token: %s", p.curToken.Literal))
		return nil
	}
}

// parseSelectStatement parses:
//
//	SELECT items FROM table [WHERE cond] [GROUP BY cols [HAVING cond]]
//	[ORDER BY cols] [LIMIT n [OFFSET m]]
func (p *Parser) parseSelectStatement() *SelectStatement {
	stmt := &SelectStatement{}

	p.nextToken() // move past SELECT
	stmt.Items = p.parseSelectItems()
	if stmt.Items == nil {
		return nil
	}

	if !p.expectPeek(lexer.TokenFrom) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.From = p.curToken.Literal

	if p.peekTokenIs(lexer.TokenWhere) {
		p.nextToken() // move to WHERE
		p.nextToken() // move past WHERE
		stmt.Where = p.parseExpression(PrecedenceLowest)
	}

	if p.peekTokenIs(lexer.TokenGroup) {
		p.nextToken() // move to GROUP
		if !p.expectPeek(lexer.TokenBy) {
			return nil
		}
		stmt.GroupBy = p.parseColumnNameList()

		if p.peekTokenIs(lexer.TokenHaving) {
			p.nextToken() // move to HAVING
			p.nextToken() // move past HAVING
			stmt.Having = p.parseExpression(PrecedenceLowest)
		}
	}

	if p.peekTokenIs(lexer.TokenOrder) {
		p.nextToken() // move to ORDER
		if !p.expectPeek(lexer.TokenBy) {
			return nil
		}
		stmt.OrderBy = p.parseOrderByClause()
	}

	if p.peekTokenIs(lexer.TokenLimit) {
		p.nextToken() // move to LIMIT
		p.nextToken() // move past LIMIT
		limit, err := strconv.Atoi(p.curToken.Literal)
		if err != nil || limit < 0 {
			p.errors = append(p.errors, "LIMIT must be a non-negative integer")
			return nil
		}
		stmt.Limit = &limit

		if p.peekTokenIs(lexer.TokenOffset) {
			p.nextToken() // move to OFFSET
			p.nextToken() // move past OFFSET
			offset, err := strconv.Atoi(p.curToken.Literal)
			if err != nil || offset < 0 {
				p.errors = append(p.errors, "OFFSET must be a non-negative integer")
				return nil
			}
			stmt.Offset = &offset
		}
	}

	return stmt
}

// parseSelectItems parses the projection list: expr [AS alias], ...
func (p *Parser) parseSelectItems() []SelectItem {
	var items []SelectItem

	for {
		if p.curTokenIs(lexer.TokenAsterisk) {
			items = append(items, SelectItem{Expr: &StarExpression{}})
		} else {
			expr := p.parseExpression(PrecedenceLowest)
			if expr == nil {
				p.errors = append(p.errors, "expected expression in SELECT list")
				return nil
			}
			item := SelectItem{Expr: expr}
			if p.peekTokenIs(lexer.TokenAs) {
				p.nextToken() // move to AS
				if !p.expectPeek(lexer.TokenIdent) {
					return nil
				}
				item.Alias = p.curToken.Literal
			}
			items = append(items, item)
		}

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
		p.nextToken() // move to next item
	}

	return items
}

// parseColumnNameList parses: column, column, ... (after GROUP BY).
func (p *Parser) parseColumnNameList() []string {
	var columns []string

	for {
		if !p.expectPeek(lexer.TokenIdent) {
			return nil
		}
		columns = append(columns, p.curToken.Literal)

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
	}

	return columns
}

// parseOrderByClause parses: column [ASC|DESC], ...
func (p *Parser) parseOrderByClause() []OrderByClause {
	var clauses []OrderByClause

	for {
		p.nextToken()
		if !p.curTokenIs(lexer.TokenIdent) {
			p.errors = append(p.errors, "expected column name in ORDER BY")
			return nil
		}

		clause := OrderByClause{Column: p.curToken.Literal}

		if p.peekTokenIs(lexer.TokenAsc) {
			p.nextToken()
		} else if p.peekTokenIs(lexer.TokenDesc) {
			p.nextToken()
			clause.Descending = true
		}

		clauses = append(clauses, clause)

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
	}

	return clauses
}

// parseInsertStatement parses:
//
//	INSERT INTO table [(columns)] VALUES (values) [, (values) ...]
func (p *Parser) parseInsertStatement() *InsertStatement {
	stmt := &InsertStatement{}

	if !p.expectPeek(lexer.TokenInto) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	// Optional column list
	if p.peekTokenIs(lexer.TokenLeftParen) {
		p.nextToken() // move to (
		stmt.Columns = p.parseIdentifierList()
		if !p.expectPeek(lexer.TokenRightParen) {
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenValues) {
		return nil
	}

	// One or more value tuples
	for {
		if !p.expectPeek(lexer.TokenLeftParen) {
			return nil
		}
		p.nextToken() // move past (
		row := p.parseExpressionList()
		if !p.expectPeek(lexer.TokenRightParen) {
			return nil
		}
		stmt.Rows = append(stmt.Rows, row)

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
	}

	return stmt
}

// parseUpdateStatement parses: UPDATE table SET col = value, ... [WHERE cond]
func (p *Parser) parseUpdateStatement() *UpdateStatement {
	stmt := &UpdateStatement{}

	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	if !p.expectPeek(lexer.TokenSet) {
		return nil
	}

	stmt.Assignments = p.parseAssignmentList()

	if p.peekTokenIs(lexer.TokenWhere) {
		p.nextToken() // move to WHERE
		p.nextToken() // move past WHERE
		stmt.Where = p.parseExpression(PrecedenceLowest)
	}

	return stmt
}

// parseAssignmentList parses: column = value, column = value, ...
func (p *Parser) parseAssignmentList() []Assignment {
	var assignments []Assignment

	for {
		p.nextToken()
		if !p.curTokenIs(lexer.TokenIdent) {
			p.errors = append(p.errors, "expected column name in SET")
			return nil
		}
		column := p.curToken.Literal

		if !p.expectPeek(lexer.TokenEquals) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(PrecedenceLowest)

		assignments = append(assignments, Assignment{
			Column: column,
			Value:  value,
		})

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
	}

	return assignments
}

// parseDeleteStatement parses: DELETE FROM table [WHERE cond]
func (p *Parser) parseDeleteStatement() *DeleteStatement {
	stmt := &DeleteStatement{}

	if !p.expectPeek(lexer.TokenFrom) {
		return nil
	}
	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	if p.peekTokenIs(lexer.TokenWhere) {
		p.nextToken() // move to WHERE
		p.nextToken() // move past WHERE
		stmt.Where = p.parseExpression(PrecedenceLowest)
	}

	return stmt
}

// parseCreateTableStatement parses: CREATE TABLE name (column_definitions)
func (p *Parser) parseCreateTableStatement() *CreateTableStatement {
	if !p.expectPeek(lexer.TokenTable) {
		return nil
	}

	stmt := &CreateTableStatement{}

	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	if !p.expectPeek(lexer.TokenLeftParen) {
		return nil
	}

	for {
		p.nextToken()
		col, ok := p.parseColumnDefinition()
		if !ok {
			return nil
		}
		stmt.Columns = append(stmt.Columns, col)

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // consume comma
	}

	if !p.expectPeek(lexer.TokenRightParen) {
		return nil
	}

	return stmt
}

// parseAlterTableStatement parses: ALTER TABLE name ADD [COLUMN] definition
func (p *Parser) parseAlterTableStatement() *AlterTableStatement {
	if !p.expectPeek(lexer.TokenTable) {
		return nil
	}

	stmt := &AlterTableStatement{}

	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	if !p.expectPeek(lexer.TokenAdd) {
		return nil
	}
	// COLUMN keyword is optional: ALTER TABLE t ADD email TEXT also works
	if p.peekTokenIs(lexer.TokenColumn) {
		p.nextToken()
	}

	p.nextToken()
	col, ok := p.parseColumnDefinition()
	if !ok {
		return nil
	}
	stmt.Column = col

	return stmt
}

// parseColumnDefinition parses: name type [PRIMARY KEY] [NOT NULL] [DEFAULT lit]
// with curToken at the column name.
func (p *Parser) parseColumnDefinition() (ColumnDefinition, bool) {
	var col ColumnDefinition

	if !p.curTokenIs(lexer.TokenIdent) {
		p.errors = append(p.errors, fmt.Sprintf("expected column name, got %q", p.curToken.Literal))
		return col, false
	}
	col.Name = p.curToken.Literal

	p.nextToken()
	col.Type = p.parseDataType()
	if col.Type == TypeUnknown {
		return col, false
	}

	// Constraints in any order
	for {
		switch {
		case p.peekTokenIs(lexer.TokenPrimary):
			p.nextToken()
			if !p.expectPeek(lexer.TokenKey) {
				return col, false
			}
			col.PrimaryKey = true
		case p.peekTokenIs(lexer.TokenNot):
			p.nextToken()
			if !p.expectPeek(lexer.TokenNull) {
				return col, false
			}
			col.NotNull = true
		case p.peekTokenIs(lexer.TokenDefault):
			p.nextToken() // move to DEFAULT
			p.nextToken() // move to literal
			def := p.parsePrefixExpression()
			if def == nil {
				p.errors = append(p.errors, "expected literal after DEFAULT")
				return col, false
			}
			col.Default = def
		default:
			return col, true
		}
	}
}

// parseDataType parses a declared column type with curToken at the type
// keyword.
func (p *Parser) parseDataType() DataType {
	switch p.curToken.Type {
	case lexer.TokenInteger:
		return TypeInteger
	case lexer.TokenReal:
		return TypeReal
	case lexer.TokenText:
		// Tolerate VARCHAR(n); the size is ignored.
		if p.peekTokenIs(lexer.TokenLeftParen) {
			p.nextToken() // (
			p.nextToken() // size
			if !p.expectPeek(lexer.TokenRightParen) {
				return TypeUnknown
			}
		}
		return TypeText
	case lexer.TokenDate:
		return TypeDate
	case lexer.TokenBool:
		return TypeBoolean
	default:
		p.errors = append(p.errors, fmt.Sprintf("unknown data type: %s", p.curToken.Literal))
		return TypeUnknown
	}
}

// parseDropStatement parses: DROP TABLE name
func (p *Parser) parseDropStatement() Statement {
	if !p.expectPeek(lexer.TokenTable) {
		return nil
	}

	stmt := &DropTableStatement{}

	if !p.expectPeek(lexer.TokenIdent) {
		return nil
	}
	stmt.Table = p.curToken.Literal

	return stmt
}

// parseExplainStatement parses: EXPLAIN <statement>
func (p *Parser) parseExplainStatement() *ExplainStatement {
	p.nextToken() // move past EXPLAIN

	inner := p.parseStatement()
	if inner == nil {
		return nil
	}
	return &ExplainStatement{Statement: inner}
}

// parseIdentifierList parses: ident, ident, ident with curToken at '('.
func (p *Parser) parseIdentifierList() []string {
	var identifiers []string

	p.nextToken() // move past (
	for !p.curTokenIs(lexer.TokenRightParen) && !p.curTokenIs(lexer.TokenEOF) {
		if p.curTokenIs(lexer.TokenIdent) {
			identifiers = append(identifiers, p.curToken.Literal)
		}
		if p.peekTokenIs(lexer.TokenComma) {
			p.nextToken() // move to comma
			p.nextToken() // move past comma
		} else {
			break
		}
	}

	return identifiers
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []Expression {
	var expressions []Expression

	for {
		expr := p.parseExpression(PrecedenceLowest)
		if expr != nil {
			expressions = append(expressions, expr)
		}

		if !p.peekTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken() // move to comma
		p.nextToken() // move past comma
	}

	return expressions
}

// ============================================================================
// Expression Parsing with Operator Precedence
// ============================================================================

// Precedence levels. Higher numbers bind more tightly.
const (
	PrecedenceLowest = iota
	PrecedenceOr         // OR
	PrecedenceAnd        // AND
	PrecedenceComparison // =, !=, <, >, <=, >=, LIKE, IS
	PrecedenceAddSub     // +, -
	PrecedenceMulDiv     // *, /
	PrecedenceUnary      // -x, NOT x
)

// precedences maps infix token types to their precedence levels.
// TokenNot appears here only for the `a NOT LIKE b` form: in infix
// position NOT can mean nothing else in this grammar.
var precedences = map[lexer.TokenType]int{
	lexer.TokenOr:             PrecedenceOr,
	lexer.TokenAnd:            PrecedenceAnd,
	lexer.TokenEquals:         PrecedenceComparison,
	lexer.TokenNotEquals:      PrecedenceComparison,
	lexer.TokenLessThan:       PrecedenceComparison,
	lexer.TokenGreaterThan:    PrecedenceComparison,
	lexer.TokenLessOrEqual:    PrecedenceComparison,
	lexer.TokenGreaterOrEqual: PrecedenceComparison,
	lexer.TokenLike:           PrecedenceComparison,
	lexer.TokenNot:            PrecedenceComparison,
	lexer.TokenIs:             PrecedenceComparison,
	lexer.TokenPlus:           PrecedenceAddSub,
	lexer.TokenMinus:          PrecedenceAddSub,
	lexer.TokenAsterisk:       PrecedenceMulDiv,
	lexer.TokenSlash:          PrecedenceMulDiv,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return PrecedenceLowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return PrecedenceLowest
}

// parseExpression parses an expression using Pratt parsing.
func (p *Parser) parseExpression(precedence int) Expression {
	left := p.parsePrefixExpression()
	if left == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.TokenEOF) && precedence < p.peekPrecedence() {
		if _, ok := precedences[p.peekToken.Type]; !ok {
			return left
		}

		p.nextToken()
		left = p.parseInfixExpression(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// parsePrefixExpression parses literals, identifiers, function calls,
// CASE expressions, unary operators, and grouped expressions.
func (p *Parser) parsePrefixExpression() Expression {
	switch p.curToken.Type {
	case lexer.TokenIdent:
		if p.peekTokenIs(lexer.TokenLeftParen) {
			return p.parseFunctionCall()
		}
		return &Identifier{Name: p.curToken.Literal}

	case lexer.TokenNumber:
		return p.parseNumberLiteral()

	case lexer.TokenString:
		return &StringLiteral{Value: p.curToken.Literal}

	case lexer.TokenBoolean:
		return &BooleanLiteral{Value: strings.EqualFold(p.curToken.Literal, "TRUE")}

	case lexer.TokenNull:
		return &NullLiteral{}

	case lexer.TokenCase:
		return p.parseCaseExpression()

	case lexer.TokenMinus:
		return p.parseUnaryExpression(UnaryOpNegate)

	case lexer.TokenNot:
		return p.parseUnaryExpression(UnaryOpNot)

	case lexer.TokenLeftParen:
		return p.parseGroupedExpression()

	default:
		p.errors = append(p.errors, fmt.Sprintf("unexpected token %q in expression at line %d, column %d",
			p.curToken.Literal, p.curToken.Line, p.curToken.Column))
		return nil
	}
}

// parseFunctionCall parses name(arg) or name(*), with curToken at the name.
func (p *Parser) parseFunctionCall() Expression {
	call := &FunctionCall{Name: strings.ToUpper(p.curToken.Literal)}

	p.nextToken() // move to (
	if p.peekTokenIs(lexer.TokenAsterisk) {
		p.nextToken()
		call.Star = true
	} else {
		p.nextToken()
		call.Arg = p.parseExpression(PrecedenceLowest)
		if call.Arg == nil {
			p.errors = append(p.errors, fmt.Sprintf("expected argument in %s()", call.Name))
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenRightParen) {
		return nil
	}
	return call
}

// parseCaseExpression parses both CASE forms, with curToken at CASE.
func (p *Parser) parseCaseExpression() Expression {
	expr := &CaseExpression{}

	// Operand form: CASE <expr> WHEN ...
	if !p.peekTokenIs(lexer.TokenWhen) {
		p.nextToken()
		expr.Operand = p.parseExpression(PrecedenceLowest)
		if expr.Operand == nil {
			p.errors = append(p.errors, "expected expression after CASE")
			return nil
		}
	}

	for p.peekTokenIs(lexer.TokenWhen) {
		p.nextToken() // move to WHEN
		p.nextToken() // move past WHEN
		cond := p.parseExpression(PrecedenceLowest)
		if cond == nil {
			p.errors = append(p.errors, "expected condition after WHEN")
			return nil
		}

		if !p.expectPeek(lexer.TokenThen) {
			return nil
		}
		p.nextToken()
		result := p.parseExpression(PrecedenceLowest)
		if result == nil {
			p.errors = append(p.errors, "expected result after THEN")
			return nil
		}

		expr.Whens = append(expr.Whens, CaseWhen{Condition: cond, Result: result})
	}

	if len(expr.Whens) == 0 {
		p.errors = append(p.errors, "CASE requires at least one WHEN branch")
		return nil
	}

	if p.peekTokenIs(lexer.TokenElse) {
		p.nextToken() // move to ELSE
		p.nextToken()
		expr.Else = p.parseExpression(PrecedenceLowest)
		if expr.Else == nil {
			p.errors = append(p.errors, "expected expression after ELSE")
			return nil
		}
	}

	if !p.expectPeek(lexer.TokenEnd) {
		return nil
	}
	return expr
}

// parseNumberLiteral parses an integer or real literal.
func (p *Parser) parseNumberLiteral() Expression {
	literal := p.curToken.Literal

	if intVal, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return &IntegerLiteral{Value: intVal}
	}
	if floatVal, err := strconv.ParseFloat(literal, 64); err == nil {
		return &RealLiteral{Value: floatVal}
	}

	p.errors = append(p.errors, fmt.Sprintf("could not parse %q as number", literal))
	return nil
}

// parseUnaryExpression parses NOT x and -x.
func (p *Parser) parseUnaryExpression(op UnaryOp) Expression {
	p.nextToken()
	operand := p.parseExpression(PrecedenceUnary)
	if operand == nil {
		return nil
	}
	return &UnaryExpression{
		Operator: op,
		Operand:  operand,
	}
}

// parseGroupedExpression parses expressions in parentheses.
func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken() // consume (
	expr := p.parseExpression(PrecedenceLowest)
	if !p.expectPeek(lexer.TokenRightParen) {
		return nil
	}
	return expr
}

// parseInfixExpression parses binary expressions, `a NOT LIKE b`, and
// `a IS [NOT] NULL`, with curToken at the operator.
func (p *Parser) parseInfixExpression(left Expression) Expression {
	switch p.curToken.Type {
	case lexer.TokenIs:
		negate := false
		if p.peekTokenIs(lexer.TokenNot) {
			p.nextToken()
			negate = true
		}
		if !p.expectPeek(lexer.TokenNull) {
			return nil
		}
		return &IsNullExpression{Expr: left, Negate: negate}

	case lexer.TokenNot:
		// Infix NOT must be NOT LIKE.
		if !p.expectPeek(lexer.TokenLike) {
			return nil
		}
		p.nextToken()
		right := p.parseExpression(PrecedenceComparison)
		if right == nil {
			return nil
		}
		return &BinaryExpression{Left: left, Operator: OpNotLike, Right: right}
	}

	expr := &BinaryExpression{
		Left:     left,
		Operator: tokenToOperator(p.curToken.Type),
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}

	return expr
}

// tokenToOperator converts a token type to a binary operator.
func tokenToOperator(t lexer.TokenType) BinaryOp {
	switch t {
	case lexer.TokenEquals:
		return OpEquals
	case lexer.TokenNotEquals:
		return OpNotEquals
	case lexer.TokenLessThan:
		return OpLessThan
	case lexer.TokenGreaterThan:
		return OpGreaterThan
	case lexer.TokenLessOrEqual:
		return OpLessOrEqual
	case lexer.TokenGreaterOrEqual:
		return OpGreaterOrEqual
	case lexer.TokenLike:
		return OpLike
	case lexer.TokenAnd:
		return OpAnd
	case lexer.TokenOr:
		return OpOr
	case lexer.TokenPlus:
		return OpAdd
	case lexer.TokenMinus:
		return OpSubtract
	case lexer.TokenAsterisk:
		return OpMultiply
	case lexer.TokenSlash:
		return OpDivide
	default:
		return OpUnknown
	}
}
