package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIUTEpxx/sqlengine/ast"
	"github.com/MIUTEpxx/sqlengine/lexer"
	"github.com/MIUTEpxx/sqlengine/parser"
)

func mustParse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	return stmts
}

func run(t *testing.T, in *Interpreter, src string) []Result {
	t.Helper()
	return in.Execute(mustParse(t, src))
}

func newUsersTable(t *testing.T) *Interpreter {
	t.Helper()
	in := NewInterpreter()
	results := run(t, in, "CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(32) NOT NULL, age INT);")
	require.Equal(t, ResultOK, results[0].Kind, results[0].Message)
	return in
}

func TestCreateTableRejectsDuplicate(t *testing.T) {
	in := newUsersTable(t)
	results := run(t, in, "CREATE TABLE users (id INT);")
	require.Equal(t, ResultError, results[0].Kind)
	var engErr *EngineError
	require.ErrorAs(t, results[0].Err, &engErr)
	assert.Equal(t, KindSchema, engErr.Kind)
}

func TestCreateTableRejectsMultiplePrimaryKeys(t *testing.T) {
	in := NewInterpreter()
	results := run(t, in, "CREATE TABLE t (a INT PRIMARY KEY, b INT PRIMARY KEY);")
	require.Equal(t, ResultError, results[0].Kind)
}

func TestInsertAndSelectStar(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	run(t, in, "INSERT INTO users VALUES (2, 'Bob', 25);")

	results := run(t, in, "SELECT * FROM users;")
	require.Equal(t, ResultRows, results[0].Kind)
	assert.Len(t, results[0].Rows, 2)
}

func TestInsertArityMismatch(t *testing.T) {
	in := newUsersTable(t)
	results := run(t, in, "INSERT INTO users VALUES (1, 'Alice');")
	require.Equal(t, ResultError, results[0].Kind)
}

func TestInsertNotNullViolation(t *testing.T) {
	in := newUsersTable(t)
	results := run(t, in, "INSERT INTO users VALUES (1, '', 30);")
	require.Equal(t, ResultError, results[0].Kind, "empty string coerces to NULL and must fail the NOT NULL name column")
}

func TestInsertPrimaryKeyUniqueness(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	results := run(t, in, "INSERT INTO users VALUES (1, 'Carol', 40);")
	require.Equal(t, ResultError, results[0].Kind)
	var engErr *EngineError
	require.ErrorAs(t, results[0].Err, &engErr)
	assert.Equal(t, KindConstraint, engErr.Kind)
}

func TestSelectWhereFilter(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	run(t, in, "INSERT INTO users VALUES (2, 'Bob', 25);")

	results := run(t, in, "SELECT name FROM users WHERE age >= 30;")
	require.Equal(t, ResultRows, results[0].Kind)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, "Alice", results[0].Rows[0][0].Str)
}

func TestSelectOrderByMixedDirections(t *testing.T) {
	in := NewInterpreter()
	run(t, in, "CREATE TABLE t (id INT PRIMARY KEY, grp INT, val INT);")
	run(t, in, "INSERT INTO t VALUES (1, 1, 10);")
	run(t, in, "INSERT INTO t VALUES (2, 1, 5);")
	run(t, in, "INSERT INTO t VALUES (3, 2, 1);")

	results := run(t, in, "SELECT id FROM t ORDER BY grp ASC, val DESC;")
	require.Equal(t, ResultRows, results[0].Kind)
	require.Len(t, results[0].Rows, 3)
	assert.EqualValues(t, 1, results[0].Rows[0][0].Int)
	assert.EqualValues(t, 2, results[0].Rows[1][0].Int)
	assert.EqualValues(t, 3, results[0].Rows[2][0].Int)
}

func TestSelectLimitZero(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	results := run(t, in, "SELECT * FROM users LIMIT 0;")
	require.Equal(t, ResultRows, results[0].Kind)
	assert.Len(t, results[0].Rows, 0)
}

func TestSelectAggregateOverEmptyTable(t *testing.T) {
	in := newUsersTable(t)
	results := run(t, in, "SELECT COUNT(*) FROM users;")
	require.Equal(t, ResultRows, results[0].Kind)
	require.Len(t, results[0].Rows, 1)
	assert.EqualValues(t, 0, results[0].Rows[0][0].Int)
}

func TestSelectDistinctOverNulls(t *testing.T) {
	in := NewInterpreter()
	run(t, in, "CREATE TABLE t (id INT PRIMARY KEY, tag VARCHAR(8));")
	run(t, in, "INSERT INTO t VALUES (1, '');")
	run(t, in, "INSERT INTO t VALUES (2, '');")
	run(t, in, "INSERT INTO t VALUES (3, 'x');")

	results := run(t, in, "SELECT DISTINCT tag FROM t;")
	require.Equal(t, ResultRows, results[0].Kind)
	assert.Len(t, results[0].Rows, 2)
}

func TestSelectGroupByWithAggregate(t *testing.T) {
	in := NewInterpreter()
	run(t, in, "CREATE TABLE sales (id INT PRIMARY KEY, region VARCHAR(8), amount INT);")
	run(t, in, "INSERT INTO sales VALUES (1, 'east', 10);")
	run(t, in, "INSERT INTO sales VALUES (2, 'east', 20);")
	run(t, in, "INSERT INTO sales VALUES (3, 'west', 5);")

	results := run(t, in, "SELECT region, SUM(amount) AS total FROM sales GROUP BY region ORDER BY region ASC;")
	require.Equal(t, ResultRows, results[0].Kind)
	require.Len(t, results[0].Rows, 2)
	assert.Equal(t, "east", results[0].Rows[0][0].Str)
	assert.EqualValues(t, 30, results[0].Rows[0][1].Int)
	assert.Equal(t, "west", results[0].Rows[1][0].Str)
	assert.EqualValues(t, 5, results[0].Rows[1][1].Int)
}

func TestUpdateWithEmptyMatchIsError(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	results := run(t, in, "UPDATE users SET age = 31 WHERE id = 999;")
	require.Equal(t, ResultError, results[0].Kind)
	assert.Equal(t, 0, results[0].RowsAffected)
}

func TestUpdateArithmeticExpression(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	results := run(t, in, "UPDATE users SET age = age + 1 WHERE id = 1;")
	require.Equal(t, ResultOK, results[0].Kind)
	assert.Equal(t, 1, results[0].RowsAffected)

	sel := run(t, in, "SELECT age FROM users WHERE id = 1;")
	require.Len(t, sel[0].Rows, 1)
	assert.EqualValues(t, 31, sel[0].Rows[0][0].Int)
}

func TestUpdateRejectsWholeBatchOnConstraintFailure(t *testing.T) {
	in := NewInterpreter()
	run(t, in, "CREATE TABLE t (id INT PRIMARY KEY, code INT UNIQUE);")
	run(t, in, "INSERT INTO t VALUES (1, 100);")
	run(t, in, "INSERT INTO t VALUES (2, 200);")
	run(t, in, "INSERT INTO t VALUES (3, 300);")

	// Every matching row would collide on the same new code value: the
	// whole batch must be rejected, leaving all three rows unchanged.
	results := run(t, in, "UPDATE t SET code = 999 WHERE id = 1 OR id = 2;")
	require.Equal(t, ResultError, results[0].Kind)

	sel := run(t, in, "SELECT code FROM t WHERE id = 1;")
	require.Len(t, sel[0].Rows, 1)
	assert.EqualValues(t, 100, sel[0].Rows[0][0].Int)
}

func TestDeleteWithEmptyMatchIsError(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	results := run(t, in, "DELETE FROM users WHERE id = 999;")
	require.Equal(t, ResultError, results[0].Kind)
}

func TestDeleteWithoutWhereClearsTable(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	run(t, in, "INSERT INTO users VALUES (2, 'Bob', 25);")
	results := run(t, in, "DELETE FROM users;")
	require.Equal(t, ResultOK, results[0].Kind)
	assert.Equal(t, 2, results[0].RowsAffected)

	sel := run(t, in, "SELECT * FROM users;")
	assert.Len(t, sel[0].Rows, 0)
}

func TestRowLevelHelpers(t *testing.T) {
	in := newUsersTable(t)
	stored, err := in.Catalog.InsertRow("users", []ast.Literal{
		{Kind: ast.LitInt, Int: 1},
		{Kind: ast.LitString, Str: "Alice"},
		{Kind: ast.LitInt, Int: 30},
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Alice", stored[1].Str)

	cols, rows, err := in.Catalog.GetTableData("users")
	require.NoError(t, err)
	assert.Len(t, cols, 3)
	require.Len(t, rows, 1)

	require.NoError(t, in.Catalog.UpdateRow("users", Value{Kind: ValInt, Int: 1}, map[string]ast.Literal{
		"age": {Kind: ast.LitInt, Int: 31},
	}))
	_, rows, err = in.Catalog.GetTableData("users")
	require.NoError(t, err)
	assert.EqualValues(t, 31, rows[0][2].Int)

	require.NoError(t, in.Catalog.DeleteRow("users", Value{Kind: ValInt, Int: 1}))
	_, rows, err = in.Catalog.GetTableData("users")
	require.NoError(t, err)
	assert.Len(t, rows, 0)
}

func TestBatchDoesNotAbortOnStatementError(t *testing.T) {
	in := newUsersTable(t)
	results := run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30); INSERT INTO nosuchtable VALUES (1); INSERT INTO users VALUES (2, 'Bob', 25);")
	require.Len(t, results, 3)
	assert.Equal(t, ResultOK, results[0].Kind)
	assert.Equal(t, ResultError, results[1].Kind)
	assert.Equal(t, ResultOK, results[2].Kind)

	sel := run(t, in, "SELECT * FROM users;")
	assert.Len(t, sel[0].Rows, 2)
}

func TestLikePattern(t *testing.T) {
	in := newUsersTable(t)
	run(t, in, "INSERT INTO users VALUES (1, 'Alice', 30);")
	run(t, in, "INSERT INTO users VALUES (2, 'Bob', 25);")

	results := run(t, in, "SELECT name FROM users WHERE name LIKE 'A%';")
	require.Equal(t, ResultRows, results[0].Kind)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, "Alice", results[0].Rows[0][0].Str)

	// LIKE is case-insensitive, including the no-wildcard case where it
	// behaves like EQ.
	caseInsensitive := run(t, in, "SELECT name FROM users WHERE name LIKE 'alice';")
	require.Equal(t, ResultRows, caseInsensitive[0].Kind)
	require.Len(t, caseInsensitive[0].Rows, 1)
	assert.Equal(t, "Alice", caseInsensitive[0].Rows[0][0].Str)

	mixedWildcard := run(t, in, "SELECT name FROM users WHERE name LIKE 'a%E';")
	require.Equal(t, ResultRows, mixedWildcard[0].Kind)
	require.Len(t, mixedWildcard[0].Rows, 1)
	assert.Equal(t, "Alice", mixedWildcard[0].Rows[0][0].Str)
}

func TestInsertRowReturnsCoercedRow(t *testing.T) {
	in := NewInterpreter()
	results := run(t, in, "CREATE TABLE notes (id INT PRIMARY KEY, body VARCHAR(32));")
	require.Equal(t, ResultOK, results[0].Kind, results[0].Message)

	stored, err := in.Catalog.InsertRow("notes", []ast.Literal{
		{Kind: ast.LitInt, Int: 1},
		{Kind: ast.LitString, Str: ""},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, stored[1].IsNull(), "empty string must coerce to NULL and be observable on the returned row")
}

func TestYAMLSchemaRoundTrip(t *testing.T) {
	in := newUsersTable(t)
	data, err := DumpSchemaYAML(in.Catalog)
	require.NoError(t, err)

	fresh := NewCatalog()
	stmts, err := LoadSchemaYAML(data)
	require.NoError(t, err)
	for _, s := range stmts {
		require.NoError(t, fresh.CreateTable(s))
	}
	assert.Len(t, fresh.Tables(), 1)
	assert.Equal(t, "users", fresh.Tables()[0].Name)
}
