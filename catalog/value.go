package catalog

import (
	"fmt"
	"strconv"

	"github.com/MIUTEpxx/sqlengine/ast"
)

// ValueKind is the dynamic type a stored Value carries. Unlike ast.Literal,
// there is no float tier: a column is either INT or VARCHAR, so a Value is
// always Null, Int, or String once it has passed coercion.
type ValueKind int

const (
	ValNull ValueKind = iota
	ValInt
	ValString
	// ValFloat only ever appears as an aggregate result (AVG); no column
	// type can declare it, so coerce never produces one.
	ValFloat
)

// Value is a single stored cell, or — for ValFloat — an aggregate result.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
	Flt  float64
}

func (v Value) String() string {
	switch v.Kind {
	case ValNull:
		return "NULL"
	case ValInt:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	default:
		return v.Str
	}
}

func (v Value) IsNull() bool { return v.Kind == ValNull }

// Equal reports whether two values are the same kind and payload. NULL is
// never equal to anything, including another NULL, matching SQL's
// three-valued-logic convention for comparisons.
func (v Value) Equal(o Value) bool {
	if v.Kind == ValNull || o.Kind == ValNull {
		return false
	}
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == ValInt {
		return v.Int == o.Int
	}
	if v.Kind == ValFloat {
		return v.Flt == o.Flt
	}
	return v.Str == o.Str
}

// Compare orders two non-null values of the same kind: -1, 0, or 1. The
// result is meaningless for mismatched kinds, and it panics if the receiver
// is NULL; callers must check those cases first (see compareOrdered in
// select.go, which treats NULL as sorting before any non-null value instead
// of calling Compare).
func (v Value) Compare(o Value) int {
	switch v.Kind {
	case ValInt:
		switch {
		case v.Int < o.Int:
			return -1
		case v.Int > o.Int:
			return 1
		default:
			return 0
		}
	case ValString:
		switch {
		case v.Str < o.Str:
			return -1
		case v.Str > o.Str:
			return 1
		default:
			return 0
		}
	case ValFloat:
		switch {
		case v.Flt < o.Flt:
			return -1
		case v.Flt > o.Flt:
			return 1
		default:
			return 0
		}
	default:
		panic("catalog: Compare called on a NULL value")
	}
}

// coerce converts a parsed literal into a Value fit for the given column
// type, applying the two conversions the catalog allows:
//   - a NULL literal always yields a NULL value (the NOT NULL check happens
//     separately, once the row is otherwise assembled);
//   - an empty string literal against either column type is treated as
//     NULL, matching the row-level helpers' "empty string means null"
//     convention.
//
// Anything else must match the column's declared kind exactly: no implicit
// widening between INT and VARCHAR.
func coerce(lit ast.Literal, col ColumnSpec) (Value, error) {
	if lit.Kind == ast.LitNull {
		return Value{Kind: ValNull}, nil
	}
	switch col.Type.Kind {
	case ast.IntKind:
		if lit.Kind != ast.LitInt {
			return Value{}, newErr(KindType, "column %q is INT, got %s", col.Name, literalKindName(lit.Kind))
		}
		return Value{Kind: ValInt, Int: lit.Int}, nil
	case ast.VarcharKind:
		if lit.Kind != ast.LitString {
			return Value{}, newErr(KindType, "column %q is VARCHAR, got %s", col.Name, literalKindName(lit.Kind))
		}
		if lit.Str == "" {
			return Value{Kind: ValNull}, nil
		}
		if col.Type.Length > 0 && len(lit.Str) > col.Type.Length {
			return Value{}, newErr(KindType, "value %q exceeds VARCHAR(%d) for column %q", lit.Str, col.Type.Length, col.Name)
		}
		return Value{Kind: ValString, Str: lit.Str}, nil
	default:
		return Value{}, newErr(KindSchema, "column %q has an unrecognized type", col.Name)
	}
}

func literalKindName(k ast.LiteralKind) string {
	switch k {
	case ast.LitNull:
		return "NULL"
	case ast.LitInt:
		return "INT"
	case ast.LitFloat:
		return "FLOAT"
	case ast.LitString:
		return "STRING"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}
