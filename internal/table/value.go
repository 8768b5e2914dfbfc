package table

import (
	"fmt"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/parser"
	"github.com/tabuladb/tabula/internal/sql/sqlerr"
)

// Value represents a scalar stored in a cell, or NULL.
//
// A Value is a tagged union: Type selects which of the typed fields is
// meaningful. DATE values are carried in Text as ISO 'YYYY-MM-DD' strings,
// which makes lexicographic comparison equal to chronological comparison.
type Value struct {
	Type    parser.DataType
	IsNull  bool
	Integer int64
	Real    float64
	Text    string
	Boolean bool
}

// Constructors keep call sites short and make the tagged-union shape
// hard to get wrong.

func NewInteger(v int64) Value   { return Value{Type: parser.TypeInteger, Integer: v} }
func NewReal(v float64) Value    { return Value{Type: parser.TypeReal, Real: v} }
func NewText(v string) Value     { return Value{Type: parser.TypeText, Text: v} }
func NewDate(v string) Value     { return Value{Type: parser.TypeDate, Text: v} }
func NewBoolean(v bool) Value    { return Value{Type: parser.TypeBoolean, Boolean: v} }
func Null(t parser.DataType) Value { return Value{Type: t, IsNull: true} }

// String returns the display representation of the value.
func (v Value) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch v.Type {
	case parser.TypeInteger:
		return fmt.Sprintf("%d", v.Integer)
	case parser.TypeReal:
		return fmt.Sprintf("%g", v.Real)
	case parser.TypeText, parser.TypeDate:
		return v.Text
	case parser.TypeBoolean:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "?"
	}
}

// IsNumeric reports whether the value holds an integer or real.
func (v Value) IsNumeric() bool {
	return v.Type == parser.TypeInteger || v.Type == parser.TypeReal
}

// isTextual reports whether the value is carried as a string.
func (v Value) isTextual() bool {
	return v.Type == parser.TypeText || v.Type == parser.TypeDate
}

// AsFloat returns the numeric value widened to float64.
func (v Value) AsFloat() float64 {
	if v.Type == parser.TypeInteger {
		return float64(v.Integer)
	}
	return v.Real
}

// Native returns the value as a plain Go value for JSON encoding.
func (v Value) Native() any {
	if v.IsNull {
		return nil
	}
	switch v.Type {
	case parser.TypeInteger:
		return v.Integer
	case parser.TypeReal:
		return v.Real
	case parser.TypeText, parser.TypeDate:
		return v.Text
	case parser.TypeBoolean:
		return v.Boolean
	default:
		return nil
	}
}

// Compare orders two values, returning -1, 0, or 1. NULL sorts before any
// non-NULL value, which serves ORDER BY; predicate evaluation handles NULL
// itself before calling Compare. Comparing incompatible scalar kinds is a
// type error.
func (v Value) Compare(other Value) (int, error) {
	if v.IsNull && other.IsNull {
		return 0, nil
	}
	if v.IsNull {
		return -1, nil
	}
	if other.IsNull {
		return 1, nil
	}

	switch {
	case v.IsNumeric() && other.IsNumeric():
		a, b := v.AsFloat(), other.AsFloat()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil

	case v.isTextual() && other.isTextual():
		return strings.Compare(v.Text, other.Text), nil

	case v.Type == parser.TypeBoolean && other.Type == parser.TypeBoolean:
		switch {
		case !v.Boolean && other.Boolean:
			return -1, nil
		case v.Boolean && !other.Boolean:
			return 1, nil
		}
		return 0, nil

	default:
		return 0, sqlerr.Typef("cannot compare %s with %s", v.Type, other.Type)
	}
}

// Equals reports whether two values are equal. NULL never equals anything,
// including NULL; three-valued logic for that lives in the evaluator.
func (v Value) Equals(other Value) (bool, error) {
	if v.IsNull || other.IsNull {
		return false, nil
	}
	cmp, err := v.Compare(other)
	if err != nil {
		return false, err
	}
	return cmp == 0, nil
}

// Coerce converts a value for storage in a column of the target type.
// Integers widen to real; TEXT and DATE interchange (a DATE is a
// constrained string); everything else must match exactly.
func Coerce(v Value, target parser.DataType) (Value, error) {
	if v.IsNull {
		return Null(target), nil
	}
	if v.Type == target {
		return v, nil
	}

	switch {
	case target == parser.TypeReal && v.Type == parser.TypeInteger:
		return NewReal(float64(v.Integer)), nil
	case target == parser.TypeDate && v.Type == parser.TypeText:
		return NewDate(v.Text), nil
	case target == parser.TypeText && v.Type == parser.TypeDate:
		return NewText(v.Text), nil
	default:
		return Value{}, sqlerr.Typef("cannot store %s value in %s column", v.Type, target)
	}
}
