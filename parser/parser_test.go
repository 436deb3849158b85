package parser

import (
	"testing"

	"github.com/MIUTEpxx/sqlengine/ast"
	"github.com/MIUTEpxx/sqlengine/lexer"
)

func mustParse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	stmts, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return stmts
}

func TestParseCreateTable(t *testing.T) {
	stmts := mustParse(t, "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL, email VARCHAR(64) UNIQUE);")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	ct, ok := stmts[0].(*ast.CreateTable)
	if !ok {
		t.Fatalf("got %T, want *ast.CreateTable", stmts[0])
	}
	if ct.Name != "users" {
		t.Errorf("Name = %q, want %q", ct.Name, "users")
	}
	if len(ct.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(ct.Columns))
	}
	if ct.Columns[0].Type.Kind != ast.IntKind {
		t.Errorf("column 0 kind = %v, want IntKind", ct.Columns[0].Type.Kind)
	}
	if len(ct.Columns[0].Constraints) != 1 || ct.Columns[0].Constraints[0] != ast.ConstraintPrimaryKey {
		t.Errorf("column 0 constraints = %v, want [PRIMARY KEY]", ct.Columns[0].Constraints)
	}
	if ct.Columns[1].Type.Length != 32 {
		t.Errorf("column 1 length = %d, want 32", ct.Columns[1].Type.Length)
	}
}

func TestParseDropTable(t *testing.T) {
	stmts := mustParse(t, "DROP TABLE users;")
	dt, ok := stmts[0].(*ast.DropTable)
	if !ok {
		t.Fatalf("got %T, want *ast.DropTable", stmts[0])
	}
	if dt.Name != "users" {
		t.Errorf("Name = %q, want %q", dt.Name, "users")
	}
}

func TestParseInsert(t *testing.T) {
	stmts := mustParse(t, "INSERT INTO users VALUES (1, 'Alice', NULL);")
	ins, ok := stmts[0].(*ast.Insert)
	if !ok {
		t.Fatalf("got %T, want *ast.Insert", stmts[0])
	}
	if len(ins.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(ins.Values))
	}
	if ins.Values[0].Kind != ast.LitInt || ins.Values[0].Int != 1 {
		t.Errorf("value 0 = %+v, want int 1", ins.Values[0])
	}
	if ins.Values[1].Kind != ast.LitString || ins.Values[1].Str != "Alice" {
		t.Errorf("value 1 = %+v, want string Alice", ins.Values[1])
	}
	if ins.Values[2].Kind != ast.LitNull {
		t.Errorf("value 2 = %+v, want NULL", ins.Values[2])
	}
}

func TestParseUpdateWithExpr(t *testing.T) {
	stmts := mustParse(t, "UPDATE accounts SET balance = balance + 100, note = 'paid' WHERE id = 7;")
	up, ok := stmts[0].(*ast.Update)
	if !ok {
		t.Fatalf("got %T, want *ast.Update", stmts[0])
	}
	if len(up.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(up.Assignments))
	}
	bin, ok := up.Assignments[0].Expr.(ast.BinaryExpr)
	if !ok {
		t.Fatalf("assignment 0 expr = %T, want ast.BinaryExpr", up.Assignments[0].Expr)
	}
	if _, ok := bin.Left.(ast.ColumnExpr); !ok {
		t.Errorf("binary left = %T, want ast.ColumnExpr", bin.Left)
	}
	if up.Where == nil {
		t.Fatal("expected a WHERE clause")
	}
}

func TestParseDeleteWithoutWhere(t *testing.T) {
	stmts := mustParse(t, "DELETE FROM sessions;")
	del, ok := stmts[0].(*ast.Delete)
	if !ok {
		t.Fatalf("got %T, want *ast.Delete", stmts[0])
	}
	if del.Where != nil {
		t.Errorf("Where = %v, want nil", del.Where)
	}
}

func TestParseSelectFull(t *testing.T) {
	stmts := mustParse(t, `SELECT DISTINCT a.id, COUNT(*) AS cnt
		FROM orders a, customers b
		WHERE a.customer_id = b.id AND b.active = 1
		GROUP BY a.id
		ORDER BY a.id DESC, cnt ASC
		LIMIT 10;`)
	sel, ok := stmts[0].(*ast.Select)
	if !ok {
		t.Fatalf("got %T, want *ast.Select", stmts[0])
	}
	if !sel.Distinct {
		t.Error("Distinct = false, want true")
	}
	if len(sel.Projection) != 2 {
		t.Fatalf("got %d projection items, want 2", len(sel.Projection))
	}
	agg, ok := sel.Projection[1].(ast.AggregateItem)
	if !ok {
		t.Fatalf("projection 1 = %T, want ast.AggregateItem", sel.Projection[1])
	}
	if agg.Fn != "COUNT" || !agg.ArgStar || agg.Alias != "cnt" {
		t.Errorf("aggregate = %+v, unexpected", agg)
	}
	if len(sel.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(sel.Tables))
	}
	if sel.Tables[0].Alias != "a" || sel.Tables[1].Alias != "b" {
		t.Errorf("table aliases = %q, %q", sel.Tables[0].Alias, sel.Tables[1].Alias)
	}
	and, ok := sel.Where.(ast.And)
	if !ok {
		t.Fatalf("Where = %T, want ast.And", sel.Where)
	}
	if _, ok := and.Left.(ast.Compare); !ok {
		t.Errorf("And.Left = %T, want ast.Compare", and.Left)
	}
	if len(sel.GroupBy) != 1 || sel.GroupBy[0].Name != "id" {
		t.Errorf("GroupBy = %+v, unexpected", sel.GroupBy)
	}
	if len(sel.OrderBy) != 2 || sel.OrderBy[0].Dir != ast.Descending || sel.OrderBy[1].Dir != ast.Ascending {
		t.Errorf("OrderBy = %+v, unexpected", sel.OrderBy)
	}
	if sel.Limit == nil || *sel.Limit != 10 {
		t.Errorf("Limit = %v, want 10", sel.Limit)
	}
}

func TestParseWhereOrPrecedence(t *testing.T) {
	stmts := mustParse(t, "SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3;")
	sel := stmts[0].(*ast.Select)
	or, ok := sel.Where.(ast.Or)
	if !ok {
		t.Fatalf("Where = %T, want ast.Or (OR is lowest precedence)", sel.Where)
	}
	if _, ok := or.Left.(ast.And); !ok {
		t.Errorf("Or.Left = %T, want ast.And", or.Left)
	}
}

func TestParseParenthesizedPredicate(t *testing.T) {
	stmts := mustParse(t, "SELECT * FROM t WHERE a = 1 AND (b = 2 OR c = 3);")
	sel := stmts[0].(*ast.Select)
	and, ok := sel.Where.(ast.And)
	if !ok {
		t.Fatalf("Where = %T, want ast.And", sel.Where)
	}
	if _, ok := and.Right.(ast.Or); !ok {
		t.Errorf("And.Right = %T, want ast.Or", and.Right)
	}
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	toks, err := lexer.Lex("SELECT * FROM t")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected an error for a missing terminating semicolon")
	}
}

func TestParseUnknownStatementIsError(t *testing.T) {
	toks, err := lexer.Lex("FROB t;")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected an error for an unrecognized statement keyword")
	}
}

func TestParseMultipleStatements(t *testing.T) {
	stmts := mustParse(t, "CREATE TABLE t (id INT PRIMARY KEY); INSERT INTO t VALUES (1); SELECT * FROM t;")
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
}
