package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTokens(t *testing.T) {
	tokens := New("SELECT * FROM friends").Tokenize()

	expected := []struct {
		tokenType TokenType
		literal   string
	}{
		{TokenSelect, "SELECT"},
		{TokenAsterisk, "*"},
		{TokenFrom, "FROM"},
		{TokenIdent, "friends"},
		{TokenEOF, ""},
	}

	require.Len(t, tokens, len(expected))
	for i, exp := range expected {
		assert.Equal(t, exp.tokenType, tokens[i].Type, "token %d type", i)
		assert.Equal(t, exp.literal, tokens[i].Literal, "token %d literal", i)
	}
}

func TestComplexQuery(t *testing.T) {
	input := "SELECT name, imdb_rating FROM movies WHERE year >= 1999 AND genre != 'horror'"
	tokens := New(input).Tokenize()

	expected := []TokenType{
		TokenSelect,
		TokenIdent, // name
		TokenComma,
		TokenIdent, // imdb_rating
		TokenFrom,
		TokenIdent, // movies
		TokenWhere,
		TokenIdent, // year
		TokenGreaterOrEqual,
		TokenNumber, // 1999
		TokenAnd,
		TokenIdent, // genre
		TokenNotEquals,
		TokenString, // 'horror'
		TokenEOF,
	}

	require.Len(t, tokens, len(expected))
	for i, typ := range expected {
		assert.Equal(t, typ, tokens[i].Type, "token %d", i)
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	tokens := New("select name from friends group by name having count(*) > 1").Tokenize()

	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}

	assert.Equal(t, []TokenType{
		TokenSelect, TokenIdent, TokenFrom, TokenIdent,
		TokenGroup, TokenBy, TokenIdent,
		TokenHaving, TokenIdent, TokenLeftParen, TokenAsterisk, TokenRightParen,
		TokenGreaterThan, TokenNumber, TokenEOF,
	}, types)
}

func TestCaseExpressionTokens(t *testing.T) {
	input := "CASE WHEN rating > 8 THEN 'great' ELSE 'fine' END"
	tokens := New(input).Tokenize()

	types := []TokenType{
		TokenCase, TokenWhen, TokenIdent, TokenGreaterThan, TokenNumber,
		TokenThen, TokenString, TokenElse, TokenString, TokenEnd, TokenEOF,
	}
	require.Len(t, tokens, len(types))
	for i, typ := range types {
		assert.Equal(t, typ, tokens[i].Type, "token %d", i)
	}
}

func TestLineCommentsAreSkipped(t *testing.T) {
	input := "-- list everyone\nSELECT * FROM friends -- trailing note\n"
	tokens := New(input).Tokenize()

	require.Len(t, tokens, 5)
	assert.Equal(t, TokenSelect, tokens[0].Type)
	assert.Equal(t, 2, tokens[0].Line)
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "'Storm'", "Storm"},
		{"escaped quote", "'it''s fine'", "it's fine"},
		{"empty", "''", ""},
		{"with spaces", "'San Francisco'", "San Francisco"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := New(tt.input).Tokenize()
			require.Len(t, tokens, 2)
			assert.Equal(t, TokenString, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].Literal)
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens := New("'never closed").Tokenize()
	require.Len(t, tokens, 1)
	assert.Equal(t, TokenError, tokens[0].Type)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"8.5", "8.5"},
		{"0.5", "0.5"},
	}

	for _, tt := range tests {
		tokens := New(tt.input).Tokenize()
		require.Len(t, tokens, 2, "input %q", tt.input)
		assert.Equal(t, TokenNumber, tokens[0].Type)
		assert.Equal(t, tt.want, tokens[0].Literal)
	}
}

func TestMinusIsAlwaysItsOwnToken(t *testing.T) {
	// Negation belongs to the parser, so `age-1` and `age - 1` must
	// produce the same token stream.
	for _, input := range []string{"age-1", "age - 1"} {
		tokens := New(input).Tokenize()
		require.Len(t, tokens, 4, "input %q", input)
		assert.Equal(t, TokenIdent, tokens[0].Type)
		assert.Equal(t, TokenMinus, tokens[1].Type)
		assert.Equal(t, TokenNumber, tokens[2].Type)
	}

	tokens := New("-7").Tokenize()
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenMinus, tokens[0].Type)
	assert.Equal(t, TokenNumber, tokens[1].Type)
	assert.Equal(t, "7", tokens[1].Literal)
}

func TestAlterTableTokens(t *testing.T) {
	tokens := New("ALTER TABLE friends ADD COLUMN email TEXT").Tokenize()

	types := []TokenType{
		TokenAlter, TokenTable, TokenIdent, TokenAdd, TokenColumn,
		TokenIdent, TokenText, TokenEOF,
	}
	require.Len(t, tokens, len(types))
	for i, typ := range types {
		assert.Equal(t, typ, tokens[i].Type, "token %d", i)
	}
}

func TestIsNullTokens(t *testing.T) {
	tokens := New("WHERE health IS NOT NULL").Tokenize()

	types := []TokenType{
		TokenWhere, TokenIdent, TokenIs, TokenNot, TokenNull, TokenEOF,
	}
	require.Len(t, tokens, len(types))
	for i, typ := range types {
		assert.Equal(t, typ, tokens[i].Type, "token %d", i)
	}
}
