// Package format renders statement ASTs back to canonical SQL text, used
// to check the lexer/parser's round-trip properties: re-lexing and
// re-parsing a formatted statement must reproduce the same AST.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MIUTEpxx/sqlengine/ast"
)

// Statement renders a single statement as canonical SQL, including its
// trailing semicolon.
func Statement(stmt ast.Statement) string {
	var sb strings.Builder
	writeStatement(&sb, stmt)
	sb.WriteByte(';')
	return sb.String()
}

func writeStatement(sb *strings.Builder, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.CreateTable:
		fmt.Fprintf(sb, "CREATE TABLE %s (", s.Name)
		for i, c := range s.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeColumnDef(sb, c)
		}
		sb.WriteByte(')')
	case *ast.DropTable:
		fmt.Fprintf(sb, "DROP TABLE %s", s.Name)
	case *ast.Insert:
		fmt.Fprintf(sb, "INSERT INTO %s VALUES (", s.Table)
		for i, v := range s.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLiteral(sb, *v)
		}
		sb.WriteByte(')')
	case *ast.Update:
		fmt.Fprintf(sb, "UPDATE %s SET ", s.Table)
		for i, a := range s.Assignments {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s = ", a.Column)
			writeExpr(sb, a.Expr)
		}
		writeWhere(sb, s.Where)
	case *ast.Delete:
		fmt.Fprintf(sb, "DELETE FROM %s", s.Table)
		writeWhere(sb, s.Where)
	case *ast.Select:
		writeSelect(sb, s)
	}
}

func writeColumnDef(sb *strings.Builder, c *ast.ColumnDef) {
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	writeColumnType(sb, c.Type)
	for _, con := range c.Constraints {
		sb.WriteByte(' ')
		sb.WriteString(string(con))
	}
}

func writeColumnType(sb *strings.Builder, t ast.ColumnType) {
	sb.WriteString(t.Kind.String())
	if t.Kind == ast.VarcharKind && t.Length > 0 {
		fmt.Fprintf(sb, "(%d)", t.Length)
	}
}

func writeLiteral(sb *strings.Builder, lit ast.Literal) {
	switch lit.Kind {
	case ast.LitNull:
		sb.WriteString("NULL")
	case ast.LitInt:
		sb.WriteString(strconv.FormatInt(lit.Int, 10))
	case ast.LitFloat:
		sb.WriteString(strconv.FormatFloat(lit.Flt, 'g', -1, 64))
	case ast.LitString:
		sb.WriteByte('\'')
		sb.WriteString(lit.Str)
		sb.WriteByte('\'')
	}
}

func writeColRef(sb *strings.Builder, ref ast.ColRef) {
	if ref.Qualified() {
		sb.WriteString(ref.Table)
		sb.WriteByte('.')
	}
	sb.WriteString(ref.Name)
}

func writeExpr(sb *strings.Builder, e ast.Expr) {
	switch v := e.(type) {
	case ast.LiteralExpr:
		writeLiteral(sb, v.Lit)
	case ast.ColumnExpr:
		writeColRef(sb, v.Ref)
	case ast.BinaryExpr:
		writeExpr(sb, v.Left)
		sb.WriteByte(' ')
		sb.WriteString(v.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, v.Right)
	}
}

func writeWhere(sb *strings.Builder, pred ast.Predicate) {
	if pred == nil {
		return
	}
	sb.WriteString(" WHERE ")
	writePredicate(sb, pred)
}

func writePredicate(sb *strings.Builder, pred ast.Predicate) {
	switch p := pred.(type) {
	case ast.And:
		writePredicate(sb, p.Left)
		sb.WriteString(" AND ")
		writePredicate(sb, p.Right)
	case ast.Or:
		sb.WriteByte('(')
		writePredicate(sb, p.Left)
		sb.WriteString(" OR ")
		writePredicate(sb, p.Right)
		sb.WriteByte(')')
	case ast.Compare:
		writeColRef(sb, p.Left)
		sb.WriteByte(' ')
		sb.WriteString(p.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, p.Right)
	}
}

func writeSelect(sb *strings.Builder, s *ast.Select) {
	sb.WriteString("SELECT ")
	if s.Distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, item := range s.Projection {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeProjectionItem(sb, item)
	}
	sb.WriteString(" FROM ")
	for i, t := range s.Tables {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name)
		if t.Alias != "" && t.Alias != t.Name {
			sb.WriteByte(' ')
			sb.WriteString(t.Alias)
		}
	}
	writeWhere(sb, s.Where)
	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, ref := range s.GroupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeColRef(sb, ref)
		}
	}
	if len(s.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, item := range s.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeColRef(sb, item.Col)
			if item.Dir == ast.Descending {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
	}
	if s.Limit != nil {
		fmt.Fprintf(sb, " LIMIT %d", *s.Limit)
	}
}

func writeProjectionItem(sb *strings.Builder, item ast.ProjectionItem) {
	switch v := item.(type) {
	case ast.StarItem:
		sb.WriteByte('*')
	case ast.ColumnItem:
		writeColRef(sb, v.Ref)
		if v.Alias != "" {
			fmt.Fprintf(sb, " AS %s", v.Alias)
		}
	case ast.AggregateItem:
		sb.WriteString(v.Fn)
		sb.WriteByte('(')
		if v.Distinct {
			sb.WriteString("DISTINCT ")
		}
		if v.ArgStar {
			sb.WriteByte('*')
		} else {
			writeColRef(sb, v.Arg)
		}
		sb.WriteByte(')')
		if v.Alias != "" {
			fmt.Fprintf(sb, " AS %s", v.Alias)
		}
	}
}
