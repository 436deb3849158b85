package catalog

import (
	"github.com/google/uuid"

	"github.com/MIUTEpxx/sqlengine/ast"
)

// ResultKind tags what shape a Result carries.
type ResultKind int

const (
	// ResultOK is a DDL/DML statement that completed without producing
	// rows (CREATE TABLE, DROP TABLE, INSERT, UPDATE, DELETE).
	ResultOK ResultKind = iota
	// ResultRows is a SELECT's projected rows.
	ResultRows
	// ResultError is a statement that failed; Err holds the cause.
	ResultError
)

// Result is the outcome of executing one statement.
type Result struct {
	StatementID string
	Kind        ResultKind
	Message     string
	Columns     []string
	Rows        []Row
	RowsAffected int
	Err         error
}

// Interpreter executes parsed statements against a Catalog.
type Interpreter struct {
	Catalog *Catalog
}

// NewInterpreter returns an Interpreter over a fresh, empty catalog.
func NewInterpreter() *Interpreter {
	return &Interpreter{Catalog: NewCatalog()}
}

// Execute runs every statement in order and collects one Result per
// statement. A statement that fails does not abort the batch: later
// statements still run against whatever catalog state the prior ones left
// behind, and the failure is reported in that statement's own Result.
func (in *Interpreter) Execute(stmts []ast.Statement) []Result {
	results := make([]Result, len(stmts))
	for i, stmt := range stmts {
		results[i] = in.executeOne(stmt)
	}
	return results
}

func (in *Interpreter) executeOne(stmt ast.Statement) Result {
	id := uuid.New().String()
	switch s := stmt.(type) {
	case *ast.CreateTable:
		if err := in.Catalog.CreateTable(s); err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultOK, Message: "table created"}

	case *ast.DropTable:
		if err := in.Catalog.DropTable(s); err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultOK, Message: "table dropped"}

	case *ast.Insert:
		if err := in.Catalog.Insert(s); err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultOK, Message: "row inserted", RowsAffected: 1}

	case *ast.Update:
		n, err := in.Catalog.Update(s)
		if err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultOK, Message: "rows updated", RowsAffected: n}

	case *ast.Delete:
		n, err := in.Catalog.Delete(s)
		if err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultOK, Message: "rows deleted", RowsAffected: n}

	case *ast.Select:
		header, rows, err := in.Catalog.Select(s)
		if err != nil {
			return errResult(id, err)
		}
		return Result{StatementID: id, Kind: ResultRows, Columns: header, Rows: rows}

	default:
		return errResult(id, newErr(KindExecution, "unsupported statement type"))
	}
}

func errResult(id string, err error) Result {
	return Result{StatementID: id, Kind: ResultError, Err: err, Message: err.Error()}
}

// Tables returns a schema snapshot of the whole catalog (SPEC_FULL.md's
// bulk-introspection supplement, standing in for the original desktop
// tool's single-call table-browser refresh).
func (in *Interpreter) Tables() []TableInfo {
	return in.Catalog.Tables()
}
