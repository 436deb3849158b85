// Package ast defines the statement tree the parser produces and the
// interpreter consumes: a small tagged-variant AST dedicated to the SQL
// subset in scope (DDL CREATE/DROP TABLE, DML INSERT/UPDATE/DELETE, and
// SELECT with projection, filtering, grouping, aggregation, ordering and
// limiting over a Cartesian product of tables).
package ast

import "github.com/MIUTEpxx/sqlengine/token"

// Statement is any top-level SQL statement.
type Statement interface {
	statementNode()
	Pos() token.Position
}

// CreateTable is CREATE TABLE name (col-def, ...).
type CreateTable struct {
	StartPos token.Position
	Name     string
	Columns  []*ColumnDef
}

func (*CreateTable) statementNode()        {}
func (s *CreateTable) Pos() token.Position { return s.StartPos }

// DropTable is DROP TABLE name.
type DropTable struct {
	StartPos token.Position
	Name     string
}

func (*DropTable) statementNode()        {}
func (s *DropTable) Pos() token.Position { return s.StartPos }

// Insert is INSERT INTO name VALUES (literal, ...).
type Insert struct {
	StartPos token.Position
	Table    string
	Values   []*Literal
}

func (*Insert) statementNode()        {}
func (s *Insert) Pos() token.Position { return s.StartPos }

// Assignment is a single SET column = expr clause of an UPDATE.
type Assignment struct {
	Column string
	Expr   Expr
}

// Update is UPDATE name SET col = expr, ... [WHERE pred].
type Update struct {
	StartPos    token.Position
	Table       string
	Assignments []*Assignment
	Where       Predicate // nil when absent
}

func (*Update) statementNode()        {}
func (s *Update) Pos() token.Position { return s.StartPos }

// Delete is DELETE FROM name [WHERE pred].
type Delete struct {
	StartPos token.Position
	Table    string
	Where    Predicate // nil when absent
}

func (*Delete) statementNode()        {}
func (s *Delete) Pos() token.Position { return s.StartPos }

// OrderDir is the sort direction of a single ORDER BY column.
type OrderDir int

const (
	Ascending OrderDir = iota
	Descending
)

// OrderItem is one column of an ORDER BY clause, with its own direction
// (spec.md's mixed-direction upgrade: see SPEC_FULL.md's Open Question
// Decisions, item 1 — each column sorts independently rather than a
// single whole-sort-reversal flag).
type OrderItem struct {
	Col ColRef
	Dir OrderDir
}

// Select is a SELECT statement over the Cartesian product of Tables.
type Select struct {
	StartPos   token.Position
	Distinct   bool
	Projection []ProjectionItem
	Tables     []TableRef
	Where      Predicate // nil when absent
	GroupBy    []ColRef
	OrderBy    []OrderItem
	Limit      *int // nil when absent
}

func (*Select) statementNode()        {}
func (s *Select) Pos() token.Position { return s.StartPos }

// ColumnType is a column's declared INT or VARCHAR(N) type.
type ColumnType struct {
	Kind   ColumnKind
	Length int // VARCHAR(N); 0 when unspecified or Kind == IntKind
}

// ColumnKind distinguishes the two declarable column types.
type ColumnKind int

const (
	IntKind ColumnKind = iota
	VarcharKind
)

func (k ColumnKind) String() string {
	if k == IntKind {
		return "INT"
	}
	return "VARCHAR"
}

// Constraint is one of the three column-level constraint spellings the
// grammar accepts, stored verbatim.
type Constraint string

const (
	ConstraintPrimaryKey Constraint = "PRIMARY KEY"
	ConstraintNotNull    Constraint = "NOT NULL"
	ConstraintUnique     Constraint = "UNIQUE"
)

// ColumnDef is a single column declaration inside CREATE TABLE.
type ColumnDef struct {
	Name        string
	Type        ColumnType
	Constraints []Constraint
}

// TableRef is a FROM-clause table reference; Alias defaults to Name.
type TableRef struct {
	Name  string
	Alias string
}

// ColRef is a column reference, optionally qualified by a table alias.
type ColRef struct {
	Table string // "" when bare
	Name  string
}

func (c ColRef) Qualified() bool { return c.Table != "" }

// LiteralKind distinguishes the dynamic type of a Literal or Value.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitInt
	LitFloat
	LitString
)

// Literal is a constant value appearing in SQL source (INSERT VALUES, a
// WHERE comparison's right-hand side, or a SET expression).
type Literal struct {
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
}

// ProjectionItem is one entry of a SELECT's column list.
type ProjectionItem interface {
	projectionNode()
}

// StarItem is the '*' projection, expanding to every source column.
type StarItem struct{}

func (StarItem) projectionNode() {}

// ColumnItem projects a single column, optionally under an alias.
type ColumnItem struct {
	Ref   ColRef
	Alias string // "" when absent
}

func (ColumnItem) projectionNode() {}

// AggregateItem projects the result of an aggregate function call.
type AggregateItem struct {
	Fn       string // COUNT, SUM, AVG, MIN, MAX
	ArgStar  bool   // true for COUNT(*)
	Arg      ColRef // valid when !ArgStar
	Distinct bool
	Alias    string // "" when absent
}

func (AggregateItem) projectionNode() {}

// Expr is a value-producing expression: a literal, a column reference, or
// a binary arithmetic node. Used both as a WHERE comparison's right-hand
// side and as an UPDATE SET expression.
type Expr interface {
	exprNode()
}

// LiteralExpr wraps a Literal as an Expr.
type LiteralExpr struct{ Lit Literal }

func (LiteralExpr) exprNode() {}

// ColumnExpr wraps a ColRef as an Expr.
type ColumnExpr struct{ Ref ColRef }

func (ColumnExpr) exprNode() {}

// BinaryExpr is the single `operand OP operand` arithmetic form an UPDATE
// SET expression may take (spec.md §4.3: "more elaborate expression trees
// are a non-goal").
type BinaryExpr struct {
	Left  Expr
	Op    token.Type // PLUS, MINUS, ASTERISK, SLASH
	Right Expr
}

func (BinaryExpr) exprNode() {}

// Predicate is a boolean WHERE-clause expression tree: And/Or internal
// nodes over Compare leaves.
type Predicate interface {
	predicateNode()
}

// Compare is a leaf predicate: left <op> right.
type Compare struct {
	Left  ColRef
	Op    token.Type // EQ, NEQ, LT, LTE, GT, GTE, LIKE
	Right Expr       // ColumnExpr or LiteralExpr
}

func (Compare) predicateNode() {}

// And is a conjunction of two predicates.
type And struct{ Left, Right Predicate }

func (And) predicateNode() {}

// Or is a disjunction of two predicates.
type Or struct{ Left, Right Predicate }

func (Or) predicateNode() {}
