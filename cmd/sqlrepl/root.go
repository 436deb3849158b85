package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MIUTEpxx/sqlengine/ast"
	"github.com/MIUTEpxx/sqlengine/catalog"
	"github.com/MIUTEpxx/sqlengine/lexer"
	"github.com/MIUTEpxx/sqlengine/parser"
	"github.com/MIUTEpxx/sqlengine/visitor"
)

var schemaPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlrepl",
		Short: "Run SQL scripts against an in-memory relational engine",
	}
	root.PersistentFlags().StringVar(&schemaPath, "schema", "", "path to a YAML schema document to bootstrap the catalog from")
	root.AddCommand(newRunCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.sql>",
		Short: "Lex, parse, and execute a SQL script, printing each statement's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Printf("sqlrepl: starting session for %s", args[0])
			defer log.Printf("sqlrepl: session for %s ended", args[0])

			src, err := os.ReadFile(args[0])
			if err != nil {
				log.Printf("sqlrepl: fatal: %v", err)
				return err
			}

			interp := catalog.NewInterpreter()
			if schemaPath != "" {
				if err := bootstrapSchema(interp, schemaPath); err != nil {
					log.Printf("sqlrepl: fatal: %v", err)
					return err
				}
			}

			stmts, err := parseSource(string(src))
			if err != nil {
				log.Printf("sqlrepl: fatal: %v", err)
				return err
			}

			for i, res := range interp.Execute(stmts) {
				printResult(i, res)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	var showColumns bool
	cmd := &cobra.Command{
		Use:   "check <script.sql>",
		Short: "Lex and parse a SQL script without executing it, reporting any syntax error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			stmts, err := parseSource(string(src))
			if err != nil {
				return err
			}
			fmt.Printf("%d statement(s) parsed cleanly\n", len(stmts))
			if showColumns {
				for i, stmt := range stmts {
					refs := visitor.ColumnRefs(stmt)
					if len(refs) == 0 {
						continue
					}
					names := make([]string, len(refs))
					for j, r := range refs {
						if r.Qualified() {
							names[j] = r.Table + "." + r.Name
						} else {
							names[j] = r.Name
						}
					}
					fmt.Printf("statement %d references: %s\n", i+1, strings.Join(names, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showColumns, "columns", false, "report which columns each statement references")
	return cmd
}

func parseSource(src string) ([]ast.Statement, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

func bootstrapSchema(interp *catalog.Interpreter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading schema file: %w", err)
	}
	stmts, err := catalog.LoadSchemaYAML(data)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if err := interp.Catalog.CreateTable(s); err != nil {
			return err
		}
	}
	return nil
}

func printResult(i int, res catalog.Result) {
	switch res.Kind {
	case catalog.ResultError:
		fmt.Printf("statement %d: error: %v\n", i+1, res.Err)
	case catalog.ResultRows:
		fmt.Printf("statement %d: %d row(s)\n", i+1, len(res.Rows))
		for _, row := range res.Rows {
			fmt.Println(row)
		}
	default:
		fmt.Printf("statement %d: %s (%d row(s) affected)\n", i+1, res.Message, res.RowsAffected)
	}
}
