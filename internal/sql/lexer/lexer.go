// Package lexer implements the tokenizer for the SQL subset tabula accepts.
//
// EDUCATIONAL NOTES:
// ------------------
// The lexer is the first stage of statement processing. It turns the raw
// statement text into a stream of tokens the parser consumes:
//
//	SELECT name FROM friends WHERE age > 25
//
// becomes
//
//	[SELECT] [IDENT:name] [FROM] [IDENT:friends] [WHERE] [IDENT:age] [GT] [NUMBER:25]
//
// Because the input often comes from tutorial-style .sql scripts, the lexer
// also skips `-- line comments` the way every SQL engine does.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType identifies the kind of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenIllegal

	// Literals
	TokenIdent
	TokenNumber
	TokenString
	TokenBoolean

	// Statement keywords
	TokenSelect
	TokenInsert
	TokenUpdate
	TokenDelete
	TokenCreate
	TokenDrop
	TokenAlter
	TokenAdd
	TokenColumn
	TokenInto
	TokenValues
	TokenFrom
	TokenWhere
	TokenGroup
	TokenHaving
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenSet
	TokenTable
	TokenAs
	TokenExplain

	// Expression keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenNull
	TokenIs
	TokenLike
	TokenCase
	TokenWhen
	TokenThen
	TokenElse
	TokenEnd
	TokenDefault
	TokenPrimary
	TokenKey

	// Type keywords
	TokenInteger
	TokenReal
	TokenText
	TokenDate
	TokenBool

	// Operators
	TokenEquals
	TokenNotEquals
	TokenLessThan
	TokenGreaterThan
	TokenLessOrEqual
	TokenGreaterOrEqual
	TokenPlus
	TokenMinus
	TokenAsterisk
	TokenSlash

	// Punctuation
	TokenComma
	TokenSemicolon
	TokenLeftParen
	TokenRightParen
)

// Token is a single lexical token with its position in the input.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("Token{%d, %q, line:%d, col:%d}", t.Type, t.Literal, t.Line, t.Column)
}

// keywords maps upper-cased SQL keywords to token types.
var keywords = map[string]TokenType{
	"SELECT":  TokenSelect,
	"INSERT":  TokenInsert,
	"UPDATE":  TokenUpdate,
	"DELETE":  TokenDelete,
	"CREATE":  TokenCreate,
	"DROP":    TokenDrop,
	"ALTER":   TokenAlter,
	"ADD":     TokenAdd,
	"COLUMN":  TokenColumn,
	"INTO":    TokenInto,
	"VALUES":  TokenValues,
	"FROM":    TokenFrom,
	"WHERE":   TokenWhere,
	"GROUP":   TokenGroup,
	"HAVING":  TokenHaving,
	"ORDER":   TokenOrder,
	"BY":      TokenBy,
	"ASC":     TokenAsc,
	"DESC":    TokenDesc,
	"LIMIT":   TokenLimit,
	"OFFSET":  TokenOffset,
	"SET":     TokenSet,
	"TABLE":   TokenTable,
	"AS":      TokenAs,
	"EXPLAIN": TokenExplain,
	"AND":     TokenAnd,
	"OR":      TokenOr,
	"NOT":     TokenNot,
	"NULL":    TokenNull,
	"IS":      TokenIs,
	"LIKE":    TokenLike,
	"CASE":    TokenCase,
	"WHEN":    TokenWhen,
	"THEN":    TokenThen,
	"ELSE":    TokenElse,
	"END":     TokenEnd,
	"DEFAULT": TokenDefault,
	"PRIMARY": TokenPrimary,
	"KEY":     TokenKey,
	"TRUE":    TokenBoolean,
	"FALSE":   TokenBoolean,
	"INT":     TokenInteger,
	"INTEGER": TokenInteger,
	"REAL":    TokenReal,
	"FLOAT":   TokenReal,
	"DOUBLE":  TokenReal,
	"TEXT":    TokenText,
	"VARCHAR": TokenText,
	"DATE":    TokenDate,
	"BOOL":    TokenBool,
	"BOOLEAN": TokenBool,
}

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current character
	line    int
	column  int
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // NUL signifies EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar looks at the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespaceAndComments()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.makeToken(TokenEquals, string(l.ch))
	case '+':
		tok = l.makeToken(TokenPlus, string(l.ch))
	case '-':
		// Always a minus token; negation is the parser's job, so that
		// `age-1` lexes the same as `age - 1`. A leading `--` was
		// already consumed as a comment above.
		tok = l.makeToken(TokenMinus, string(l.ch))
	case '*':
		tok = l.makeToken(TokenAsterisk, string(l.ch))
	case '/':
		tok = l.makeToken(TokenSlash, string(l.ch))
	case '<':
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = l.makeToken(TokenLessOrEqual, string(ch)+string(l.ch))
		} else if l.peekChar() == '>' {
			ch := l.ch
			l.readChar()
			tok = l.makeToken(TokenNotEquals, string(ch)+string(l.ch))
		} else {
			tok = l.makeToken(TokenLessThan, string(l.ch))
		}
	case '>':
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = l.makeToken(TokenGreaterOrEqual, string(ch)+string(l.ch))
		} else {
			tok = l.makeToken(TokenGreaterThan, string(l.ch))
		}
	case '!':
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = l.makeToken(TokenNotEquals, string(ch)+string(l.ch))
		} else {
			tok = l.makeToken(TokenIllegal, string(l.ch))
		}
	case ',':
		tok = l.makeToken(TokenComma, string(l.ch))
	case ';':
		tok = l.makeToken(TokenSemicolon, string(l.ch))
	case '(':
		tok = l.makeToken(TokenLeftParen, string(l.ch))
	case ')':
		tok = l.makeToken(TokenRightParen, string(l.ch))
	case '\'':
		return l.readString()
	case 0:
		tok.Literal = ""
		tok.Type = TokenEOF
		return tok
	default:
		if isLetter(l.ch) {
			return l.readIdentifier()
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = l.makeToken(TokenIllegal, string(l.ch))
	}

	l.readChar()
	return tok
}

// makeToken creates a token with current position info.
func (l *Lexer) makeToken(tokenType TokenType, literal string) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Line:    l.line,
		Column:  l.column,
	}
}

// skipWhitespaceAndComments skips spaces, tabs, newlines, and `--` comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() Token {
	startLine := l.line
	startColumn := l.column
	startPos := l.pos

	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	literal := l.input[startPos:l.pos]

	tokenType, isKeyword := keywords[strings.ToUpper(literal)]
	if !isKeyword {
		tokenType = TokenIdent
	}

	return Token{
		Type:    tokenType,
		Literal: literal,
		Line:    startLine,
		Column:  startColumn,
	}
}

// readNumber reads a numeric literal (integer or real).
func (l *Lexer) readNumber() Token {
	startLine := l.line
	startColumn := l.column
	startPos := l.pos

	if l.ch == '-' {
		l.readChar()
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{
		Type:    TokenNumber,
		Literal: l.input[startPos:l.pos],
		Line:    startLine,
		Column:  startColumn,
	}
}

// readString reads a single-quoted string literal. A doubled quote inside
// the literal is the SQL escape for a literal quote: 'it''s'.
func (l *Lexer) readString() Token {
	startLine := l.line
	startColumn := l.column

	var sb strings.Builder
	l.readChar() // consume opening quote

	for {
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				sb.WriteByte('\'')
				l.readChar()
				l.readChar()
			} else {
				l.readChar()
				break
			}
		} else if l.ch == 0 {
			return Token{
				Type:    TokenError,
				Literal: "unterminated string",
				Line:    startLine,
				Column:  startColumn,
			}
		} else {
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}

	return Token{
		Type:    TokenString,
		Literal: sb.String(),
		Line:    startLine,
		Column:  startColumn,
	}
}

// Tokenize returns all tokens from the input. Useful for debugging and tests.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return unicode.IsDigit(rune(ch))
}
