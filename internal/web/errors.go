package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/sqlerr"
)

// statusForError maps SQL error kinds to HTTP status codes. Parse and
// type errors are the client's fault; missing tables and columns are
// reported as not found; anything unclassified is a server error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, sqlerr.ErrParse), errors.Is(err, sqlerr.ErrType):
		return http.StatusBadRequest
	case errors.Is(err, sqlerr.ErrSchema):
		if strings.Contains(err.Error(), "no such table") {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHint returns a helpful hint for common SQL errors, or an empty
// string when no hint applies.
func ErrorHint(msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no such table"):
		return "Check the table name, or list tables with GET /api/tables."
	case strings.Contains(lower, "no such column"):
		return "Check the column name, or inspect the schema with GET /api/tables/{name}."
	case strings.Contains(lower, "parse error"):
		return "Check SQL syntax near the indicated line and column."
	case strings.Contains(lower, "cannot be null"):
		return "This column requires a value."
	case strings.Contains(lower, "must appear in group by"):
		return "Every selected column must be a GROUP BY key or inside an aggregate."
	case strings.Contains(lower, "division by zero"):
		return "Guard the divisor with a CASE expression or a WHERE clause."
	default:
		return ""
	}
}
