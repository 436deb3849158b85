package catalog

import "github.com/MIUTEpxx/sqlengine/ast"

// evalAggregate folds one aggregate projection item over a group's member
// rows. NULLs are skipped by every aggregate except COUNT(*), matching
// standard SQL aggregate semantics.
func evalAggregate(item ast.AggregateItem, sources []source, rows []combinedRow) (Value, error) {
	if item.ArgStar {
		if item.Fn != "COUNT" {
			return Value{}, newErr(KindExecution, "%s(*) is not supported", item.Fn)
		}
		return Value{Kind: ValInt, Int: int64(len(rows))}, nil
	}

	vals := make([]Value, 0, len(rows))
	for _, row := range rows {
		v, err := (combinedResolver{sources: sources, row: row}).resolve(item.Arg)
		if err != nil {
			return Value{}, err
		}
		if v.IsNull() {
			continue
		}
		vals = append(vals, v)
	}
	if item.Distinct {
		vals = distinctValues(vals)
	}

	switch item.Fn {
	case "COUNT":
		return Value{Kind: ValInt, Int: int64(len(vals))}, nil
	case "SUM":
		sum, err := sumInts(vals)
		if err != nil {
			return Value{}, err
		}
		if len(vals) == 0 {
			return Value{Kind: ValNull}, nil
		}
		return Value{Kind: ValInt, Int: sum}, nil
	case "AVG":
		if len(vals) == 0 {
			return Value{Kind: ValNull}, nil
		}
		sum, err := sumInts(vals)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValFloat, Flt: float64(sum) / float64(len(vals))}, nil
	case "MIN":
		return extremum(vals, -1)
	case "MAX":
		return extremum(vals, 1)
	default:
		return Value{}, newErr(KindExecution, "unsupported aggregate function %s", item.Fn)
	}
}

func sumInts(vals []Value) (int64, error) {
	var sum int64
	for _, v := range vals {
		if v.Kind != ValInt {
			return 0, newErr(KindType, "SUM/AVG require INT columns")
		}
		sum += v.Int
	}
	return sum, nil
}

func extremum(vals []Value, want int) (Value, error) {
	if len(vals) == 0 {
		return Value{Kind: ValNull}, nil
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if v.Kind != best.Kind {
			return Value{}, newErr(KindType, "MIN/MAX require a single column type")
		}
		if v.Compare(best) == want {
			best = v
		}
	}
	return best, nil
}

func distinctValues(vals []Value) []Value {
	seen := make(map[string]bool, len(vals))
	out := make([]Value, 0, len(vals))
	for _, v := range vals {
		k := v.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
