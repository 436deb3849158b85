package catalog

import (
	"regexp"
	"strings"

	"github.com/MIUTEpxx/sqlengine/ast"
	"github.com/MIUTEpxx/sqlengine/token"
)

// resolver looks up a column reference's value within whatever row shape
// the caller is iterating: a single table's row (UPDATE/DELETE) or a
// Cartesian-product combined row (SELECT).
type resolver interface {
	resolve(ast.ColRef) (Value, error)
}

// singleRowResolver resolves column references against one table's row,
// used by UPDATE and DELETE's WHERE clause. A qualified reference must name
// the table itself (there is nothing else it could mean with one FROM
// source); a bare reference always resolves directly.
type singleRowResolver struct {
	table *Table
	row   Row
}

func (r singleRowResolver) resolve(ref ast.ColRef) (Value, error) {
	if ref.Qualified() && ref.Table != r.table.Name {
		return Value{}, newErr(KindNotFound, "no such table alias %q", ref.Table)
	}
	_, idx, ok := r.table.column(ref.Name)
	if !ok {
		return Value{}, newErr(KindNotFound, "no such column %q", ref.Name)
	}
	return r.row[idx], nil
}

func evalExpr(e ast.Expr, r resolver) (Value, error) {
	switch v := e.(type) {
	case ast.LiteralExpr:
		return literalToValue(v.Lit), nil
	case ast.ColumnExpr:
		return r.resolve(v.Ref)
	case ast.BinaryExpr:
		left, err := evalExpr(v.Left, r)
		if err != nil {
			return Value{}, err
		}
		right, err := evalExpr(v.Right, r)
		if err != nil {
			return Value{}, err
		}
		return evalArith(left, v.Op, right)
	default:
		return Value{}, newErr(KindExecution, "unsupported expression")
	}
}

func literalToValue(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.LitNull:
		return Value{Kind: ValNull}
	case ast.LitInt:
		return Value{Kind: ValInt, Int: lit.Int}
	case ast.LitString:
		if lit.Str == "" {
			return Value{Kind: ValNull}
		}
		return Value{Kind: ValString, Str: lit.Str}
	default:
		// LitFloat becomes a ValFloat, which no column stores (columns are
		// INT or VARCHAR only): arithmetic on it is rejected by evalArith,
		// and assigning it to a column is rejected by checkAssignableType.
		return Value{Kind: ValFloat, Flt: lit.Flt}
	}
}

func evalArith(left Value, op token.Type, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Value{Kind: ValNull}, nil
	}
	if left.Kind != ValInt || right.Kind != ValInt {
		return Value{}, newErr(KindType, "arithmetic requires two INT operands")
	}
	switch op {
	case token.PLUS:
		return Value{Kind: ValInt, Int: left.Int + right.Int}, nil
	case token.MINUS:
		return Value{Kind: ValInt, Int: left.Int - right.Int}, nil
	case token.ASTERISK:
		return Value{Kind: ValInt, Int: left.Int * right.Int}, nil
	case token.SLASH:
		if right.Int == 0 {
			return Value{}, newErr(KindExecution, "division by zero")
		}
		return Value{Kind: ValInt, Int: left.Int / right.Int}, nil
	default:
		return Value{}, newErr(KindExecution, "unsupported arithmetic operator %s", op)
	}
}

func evalPredicate(p ast.Predicate, r resolver) (bool, error) {
	switch v := p.(type) {
	case ast.And:
		left, err := evalPredicate(v.Left, r)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return evalPredicate(v.Right, r)
	case ast.Or:
		left, err := evalPredicate(v.Left, r)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalPredicate(v.Right, r)
	case ast.Compare:
		return evalCompare(v, r)
	default:
		return false, newErr(KindExecution, "unsupported predicate")
	}
}

func evalCompare(c ast.Compare, r resolver) (bool, error) {
	left, err := r.resolve(c.Left)
	if err != nil {
		return false, err
	}
	right, err := evalExpr(c.Right, r)
	if err != nil {
		return false, err
	}

	if c.Op == token.LIKE {
		if left.IsNull() || right.IsNull() || left.Kind != ValString || right.Kind != ValString {
			return false, nil
		}
		return matchLike(left.Str, right.Str), nil
	}

	// Three-valued logic: a comparison against NULL, or between NULL
	// operands, is never true.
	if left.IsNull() || right.IsNull() {
		return false, nil
	}
	if left.Kind != right.Kind {
		return false, newErr(KindType, "cannot compare %s with %s", left, right)
	}

	switch c.Op {
	case token.EQ:
		return left.Equal(right), nil
	case token.NEQ:
		return !left.Equal(right), nil
	case token.LT:
		return left.Compare(right) < 0, nil
	case token.LTE:
		return left.Compare(right) <= 0, nil
	case token.GT:
		return left.Compare(right) > 0, nil
	case token.GTE:
		return left.Compare(right) >= 0, nil
	default:
		return false, newErr(KindExecution, "unsupported comparison operator %s", c.Op)
	}
}

// matchLike implements SQL LIKE with the two standard wildcards: '%'
// matches any run of characters, '_' matches exactly one. The match is
// always case-insensitive, per spec.
func matchLike(s, pattern string) bool {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteByte('$')
	re := regexp.MustCompile(sb.String())
	return re.MatchString(s)
}
