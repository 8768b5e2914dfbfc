// Package sqlerr defines the error kinds the engine reports to callers.
//
// Every statement failure wraps exactly one of these sentinels, so callers
// (the REPL, the script runner, the HTTP API) can classify failures with
// errors.Is without string matching:
//
//   - ErrParse:  the statement text is malformed
//   - ErrSchema: an unknown table/column, or a duplicate on CREATE/ALTER
//   - ErrType:   incompatible scalar kinds in an expression
//
// Errors are terminal for the statement that produced them. There is no
// retry and no rollback of earlier statements.
package sqlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates a malformed statement.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates an unknown or duplicate table/column.
	ErrSchema = errors.New("schema error")

	// ErrType indicates an operation on incompatible scalar kinds.
	ErrType = errors.New("type error")
)

// Parsef wraps ErrParse with a formatted message.
func Parsef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

// Schemaf wraps ErrSchema with a formatted message.
func Schemaf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// Typef wraps ErrType with a formatted message.
func Typef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrType, fmt.Sprintf(format, args...))
}
