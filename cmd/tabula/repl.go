package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tabuladb/tabula/internal/sql/executor"
)

const banner = `tabula %s
Type '.help' for usage hints or '.quit' to exit.
`

// dotCommands are special commands starting with '.'
var dotCommands = map[string]string{
	".help":   "Show this help message",
	".quit":   "Exit the program",
	".exit":   "Exit the program (alias for .quit)",
	".tables": "List all tables",
	".schema": "Show schema for all tables or a specific table",
	".clear":  "Clear the screen",
}

func runREPL() error {
	exec, err := newExecutor()
	if err != nil {
		return err
	}

	fmt.Printf(banner, version)
	if tables := exec.Tables(); len(tables) > 0 {
		fmt.Printf("Loaded %d table(s): %s\n\n", len(tables), strings.Join(tables, ", "))
	}

	repl(exec, os.Stdin, os.Stdout)
	return nil
}

// repl implements the Read-Eval-Print Loop. Statements may span lines
// and end with a semicolon.
func repl(exec *executor.Executor, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	var inputBuffer strings.Builder

	for {
		if inputBuffer.Len() == 0 {
			fmt.Fprint(out, "tabula> ")
		} else {
			fmt.Fprint(out, "   ...> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}
		line = strings.TrimRight(line, "\n\r")

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), ".") {
			if quit := handleDotCommand(strings.TrimSpace(line), exec, out); quit {
				return
			}
			continue
		}

		inputBuffer.WriteString(line)

		input := strings.TrimSpace(inputBuffer.String())
		if !strings.HasSuffix(input, ";") {
			inputBuffer.WriteString(" ")
			continue
		}
		inputBuffer.Reset()

		result, err := exec.ExecuteSQL(input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprint(out, result.String())
		if !strings.HasSuffix(result.String(), "\n") {
			fmt.Fprintln(out)
		}
	}
}

// handleDotCommand processes special dot commands; it reports whether
// the REPL should exit.
func handleDotCommand(cmd string, exec *executor.Executor, out io.Writer) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case ".help":
		fmt.Fprintln(out, "\nAvailable commands:")
		for cmd, desc := range dotCommands {
			fmt.Fprintf(out, "  %-12s %s\n", cmd, desc)
		}
		fmt.Fprintln(out, "\nSQL Commands:")
		fmt.Fprintln(out, "  CREATE TABLE name (column definitions)")
		fmt.Fprintln(out, "  ALTER TABLE name ADD COLUMN definition")
		fmt.Fprintln(out, "  DROP TABLE name")
		fmt.Fprintln(out, "  INSERT INTO table (columns) VALUES (values), ...")
		fmt.Fprintln(out, "  SELECT columns FROM table [WHERE] [GROUP BY] [HAVING] [ORDER BY] [LIMIT] [OFFSET]")
		fmt.Fprintln(out, "  UPDATE table SET column = value [WHERE condition]")
		fmt.Fprintln(out, "  DELETE FROM table [WHERE condition]")
		fmt.Fprintln(out, "  EXPLAIN statement")
		fmt.Fprintln(out)

	case ".quit", ".exit":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case ".tables":
		tables := exec.Tables()
		if len(tables) == 0 {
			fmt.Fprintln(out, "No tables found.")
			break
		}
		fmt.Fprintln(out, "Tables:")
		for _, name := range tables {
			fmt.Fprintf(out, "  %s\n", name)
		}

	case ".schema":
		if len(parts) > 1 {
			showTableSchema(parts[1], exec, out)
			break
		}
		for _, name := range exec.Tables() {
			showTableSchema(name, exec, out)
		}

	case ".clear":
		// ANSI escape code to clear screen
		fmt.Fprint(out, "\033[H\033[2J")

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(out, "Type '.help' for available commands.")
	}
	return false
}

// showTableSchema displays the schema for a table as a CREATE statement.
func showTableSchema(name string, exec *executor.Executor, out io.Writer) {
	snap, err := exec.Snapshot(name)
	if err != nil {
		fmt.Fprintf(out, "Table '%s' not found.\n", name)
		return
	}

	fmt.Fprintf(out, "CREATE TABLE %s (\n", snap.Name)
	for i, col := range snap.Columns {
		suffix := ""
		if col.PrimaryKey {
			suffix = " PRIMARY KEY"
		} else if col.NotNull {
			suffix = " NOT NULL"
		}
		if col.Default != nil {
			suffix += fmt.Sprintf(" DEFAULT %s", col.Default)
		}
		comma := ","
		if i == len(snap.Columns)-1 {
			comma = ""
		}
		fmt.Fprintf(out, "  %s %s%s%s\n", col.Name, col.Type, suffix, comma)
	}
	fmt.Fprintln(out, ");")
}
