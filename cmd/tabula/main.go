// Package main implements the tabula CLI.
//
// EDUCATIONAL NOTES:
// ------------------
// The CLI exposes three ways to use the engine:
// 1. `tabula repl` - an interactive Read-Eval-Print Loop
// 2. `tabula run script.sql` - batch execution of SQL scripts
// 3. `tabula serve` - the HTTP JSON API
//
// All three share one in-memory executor per process; `run` scripts can
// seed the REPL or the server with --init.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tabuladb/tabula/internal/script"
	"github.com/tabuladb/tabula/internal/sql/executor"
	"github.com/tabuladb/tabula/internal/web"
)

const version = "0.1.0"

var (
	log = logrus.New()

	verbose   bool
	initFiles []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "tabula",
		Short:   "An embedded tabular query engine",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
		// Bare `tabula` drops into the REPL.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringSliceVar(&initFiles, "init", nil, "SQL script(s) to run at startup")

	root.AddCommand(newReplCmd(), newRunCmd(), newServeCmd())
	return root
}

// newExecutor creates the process executor and applies any --init scripts.
func newExecutor() (*executor.Executor, error) {
	exec := executor.New()
	runner := script.NewRunner(exec, log)
	for _, path := range initFiles {
		if _, err := runner.RunFile(path); err != nil {
			return nil, fmt.Errorf("init script %s: %w", path, err)
		}
	}
	return exec, nil
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive SQL session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL()
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.sql> [more scripts...]",
		Short: "Execute SQL script files in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := newExecutor()
			if err != nil {
				return err
			}

			runner := script.NewRunner(exec, log)
			total := 0
			for _, path := range args {
				n, err := runner.RunFile(path)
				total += n
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				log.WithFields(logrus.Fields{"script": path, "statements": n}).Info("script complete")
			}
			fmt.Printf("Executed %d statement(s) from %d script(s)\n", total, len(args))
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := newExecutor()
			if err != nil {
				return err
			}
			return web.NewServer(port, exec, log).Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}
