// Package catalog holds the in-memory relational store and the
// interpreter that executes parsed statements against it.
package catalog

import "github.com/MIUTEpxx/sqlengine/ast"

// ColumnSpec is a table's resolved column definition.
type ColumnSpec struct {
	Name       string
	Type       ast.ColumnType
	PrimaryKey bool
	NotNull    bool
	Unique     bool
}

// Row is one stored record, a slice of values parallel to its Table's
// Columns.
type Row []Value

// Table is a single in-memory relation: an ordered column list plus its
// rows, in insertion order.
type Table struct {
	Name    string
	Columns []ColumnSpec
	Rows    []Row
	// pkIndex is the position of the PRIMARY KEY column in Columns, or -1
	// if the table was declared without one.
	pkIndex int
}

func (t *Table) colIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) column(name string) (ColumnSpec, int, bool) {
	i := t.colIndex(name)
	if i < 0 {
		return ColumnSpec{}, -1, false
	}
	return t.Columns[i], i, true
}

// HasPrimaryKey reports whether the table declared a PRIMARY KEY column.
func (t *Table) HasPrimaryKey() bool { return t.pkIndex >= 0 }

// PrimaryKeyColumn returns the table's PRIMARY KEY column spec; ok is false
// if the table has none.
func (t *Table) PrimaryKeyColumn() (ColumnSpec, bool) {
	if t.pkIndex < 0 {
		return ColumnSpec{}, false
	}
	return t.Columns[t.pkIndex], true
}

// Catalog is the full set of live tables.
type Catalog struct {
	tables map[string]*Table
	// order preserves CREATE TABLE order, for deterministic schema
	// introspection and YAML export.
	order []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

func (c *Catalog) table(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, newErr(KindNotFound, "no such table %q", name)
	}
	return t, nil
}

// CreateTable builds a new table from a CREATE TABLE statement. The table
// name must be unused and at most one column may be marked PRIMARY KEY.
func (c *Catalog) CreateTable(stmt *ast.CreateTable) error {
	if _, exists := c.tables[stmt.Name]; exists {
		return newErr(KindSchema, "table %q already exists", stmt.Name)
	}
	if len(stmt.Columns) == 0 {
		return newErr(KindSchema, "table %q must declare at least one column", stmt.Name)
	}

	cols := make([]ColumnSpec, len(stmt.Columns))
	pkIndex := -1
	seen := make(map[string]bool, len(stmt.Columns))
	for i, cd := range stmt.Columns {
		if seen[cd.Name] {
			return newErr(KindSchema, "duplicate column %q in table %q", cd.Name, stmt.Name)
		}
		seen[cd.Name] = true

		spec := ColumnSpec{Name: cd.Name, Type: cd.Type}
		for _, con := range cd.Constraints {
			switch con {
			case ast.ConstraintPrimaryKey:
				if pkIndex >= 0 {
					return newErr(KindSchema, "table %q declares more than one PRIMARY KEY", stmt.Name)
				}
				spec.PrimaryKey = true
				spec.NotNull = true
				pkIndex = i
			case ast.ConstraintNotNull:
				spec.NotNull = true
			case ast.ConstraintUnique:
				spec.Unique = true
			}
		}
		cols[i] = spec
	}

	c.tables[stmt.Name] = &Table{Name: stmt.Name, Columns: cols, pkIndex: pkIndex}
	c.order = append(c.order, stmt.Name)
	return nil
}

// DropTable removes a table. It is an error to drop a table that does not
// exist.
func (c *Catalog) DropTable(stmt *ast.DropTable) error {
	if _, ok := c.tables[stmt.Name]; !ok {
		return newErr(KindNotFound, "no such table %q", stmt.Name)
	}
	delete(c.tables, stmt.Name)
	for i, n := range c.order {
		if n == stmt.Name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// TableInfo is a schema-snapshot view of one table, returned in bulk by
// Interpreter.Tables for callers (such as a UI table browser) that want
// the whole catalog shape in one call rather than
// walking GetTableData per table.
type TableInfo struct {
	Name     string
	Columns  []ColumnSpec
	RowCount int
}

// Tables returns a schema snapshot of every table, in CREATE TABLE order.
func (c *Catalog) Tables() []TableInfo {
	infos := make([]TableInfo, 0, len(c.order))
	for _, name := range c.order {
		t := c.tables[name]
		infos = append(infos, TableInfo{Name: t.Name, Columns: t.Columns, RowCount: len(t.Rows)})
	}
	return infos
}
