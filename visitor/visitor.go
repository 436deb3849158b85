// Package visitor provides a Walk over the statement AST and a ColumnRefs
// helper built on top of it, used by the sqlrepl CLI's check command to
// report which columns a statement touches before it ever runs.
package visitor

import "github.com/MIUTEpxx/sqlengine/ast"

// Visitor is called once per AST node Walk descends into. Visit returns a
// Visitor to continue walking that node's children with (itself, to reuse
// v), or nil to skip them.
type Visitor interface {
	Visit(node any) Visitor
}

// Walk traverses node and its children depth-first, calling v.Visit on
// each one encountered. Leaf values (strings, ColRef, Literal) are not
// walked further.
func Walk(v Visitor, node any) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}

	switch n := node.(type) {
	case *ast.CreateTable:
		for _, c := range n.Columns {
			Walk(v, c)
		}
	case *ast.Insert:
		for _, lit := range n.Values {
			Walk(v, lit)
		}
	case *ast.Update:
		for _, a := range n.Assignments {
			Walk(v, a.Expr)
		}
		Walk(v, n.Where)
	case *ast.Delete:
		Walk(v, n.Where)
	case *ast.Select:
		for _, item := range n.Projection {
			Walk(v, item)
		}
		Walk(v, n.Where)
	case ast.And:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case ast.Or:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case ast.Compare:
		Walk(v, n.Right)
	case ast.BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case ast.AggregateItem:
		// leaf for walking purposes: Arg/ArgStar carry no sub-nodes worth
		// visiting separately.
	}
}

// refCollector gathers every ast.ColRef Walk's Visit callback hands it.
type refCollector struct {
	refs []ast.ColRef
}

func (c *refCollector) Visit(node any) Visitor {
	switch n := node.(type) {
	case ast.ColumnExpr:
		c.refs = append(c.refs, n.Ref)
	case ast.ColumnItem:
		c.refs = append(c.refs, n.Ref)
	case ast.Compare:
		c.refs = append(c.refs, n.Left)
	}
	return c
}

// ColumnRefs walks stmt and returns the column references in its WHERE
// comparisons, SET expressions, and plain projection columns, in the order
// Walk encounters them. Aggregate arguments, GROUP BY and ORDER BY columns,
// and UPDATE target columns are not included. Duplicates are not removed.
func ColumnRefs(stmt ast.Statement) []ast.ColRef {
	c := &refCollector{}
	Walk(c, stmt)
	return c.refs
}
