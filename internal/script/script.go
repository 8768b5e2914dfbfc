// Package script runs multi-statement SQL scripts.
//
// A script is a text file of semicolon-terminated statements with `--`
// line comments. Statements run strictly in order against one executor,
// and the first failure stops the run: everything before the failing
// statement has taken effect, nothing after it runs.
package script

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tabuladb/tabula/internal/sql/executor"
)

// Runner executes scripts against a shared executor.
type Runner struct {
	exec *executor.Executor
	log  logrus.FieldLogger
}

// NewRunner creates a Runner. A nil logger silences progress output.
func NewRunner(exec *executor.Executor, log logrus.FieldLogger) *Runner {
	if log == nil {
		silent := logrus.New()
		silent.SetOutput(os.Stderr)
		silent.SetLevel(logrus.PanicLevel)
		log = silent
	}
	return &Runner{exec: exec, log: log}
}

// RunFile loads and runs a script file, returning the number of
// statements that executed successfully.
func (r *Runner) RunFile(path string) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read script: %w", err)
	}
	return r.Run(string(src))
}

// Run executes every statement in the script, stopping at the first
// failure.
func (r *Runner) Run(src string) (int, error) {
	statements := Split(src)
	for i, stmt := range statements {
		result, err := r.exec.ExecuteSQL(stmt)
		if err != nil {
			return i, fmt.Errorf("statement %d (%s): %w", i+1, preview(stmt), err)
		}
		r.log.WithFields(logrus.Fields{
			"statement": i + 1,
			"rows":      result.RowCount,
		}).Debug(preview(stmt))
	}
	return len(statements), nil
}

// Split divides a script into statements at semicolons, honoring single
// quoted strings (with '' escapes) and `--` line comments. Empty
// statements are dropped.
func Split(src string) []string {
	var (
		statements []string
		current    strings.Builder
		inString   bool
	)

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inString {
			current.WriteRune(ch)
			if ch == '\'' {
				// '' inside a string is an escaped quote
				if i+1 < len(runes) && runes[i+1] == '\'' {
					current.WriteRune(runes[i+1])
					i++
				} else {
					inString = false
				}
			}
			continue
		}

		switch {
		case ch == '\'':
			inString = true
			current.WriteRune(ch)

		case ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			current.WriteRune('\n')

		case ch == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()

		default:
			current.WriteRune(ch)
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// preview truncates a statement for log and error messages.
func preview(stmt string) string {
	flat := strings.Join(strings.Fields(stmt), " ")
	if len(flat) > 60 {
		return flat[:57] + "..."
	}
	return flat
}
