// Package web - input validation for handlers.
//
// Table names arriving in URL paths are validated at the HTTP layer,
// before they reach the executor, which keeps error messages close to
// the request that caused them.

package web

import "regexp"

// identifierPattern matches valid SQL identifiers: a letter or
// underscore followed by letters, digits, and underscores.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if a string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
