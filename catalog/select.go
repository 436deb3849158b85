package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MIUTEpxx/sqlengine/ast"
)

// source is one FROM-clause entry resolved to its live table.
type source struct {
	alias string
	table *Table
}

// combinedRow is one row of the Cartesian product: one Row per source,
// aligned positionally with the sources slice it was built from.
type combinedRow []Row

// combinedResolver resolves column references against a Cartesian-product
// row. A qualified reference must name one of the FROM aliases; a bare
// reference resolves against the first source (in FROM order) that has a
// matching column, with no ambiguity detection (see SPEC_FULL.md's Open
// Question Decisions, item 4).
type combinedResolver struct {
	sources []source
	row     combinedRow
}

func (r combinedResolver) resolve(ref ast.ColRef) (Value, error) {
	if ref.Qualified() {
		for i, s := range r.sources {
			if s.alias == ref.Table {
				_, idx, ok := s.table.column(ref.Name)
				if !ok {
					return Value{}, newErr(KindNotFound, "no such column %q in table %q", ref.Name, s.alias)
				}
				return r.row[i][idx], nil
			}
		}
		return Value{}, newErr(KindNotFound, "no such table alias %q", ref.Table)
	}
	for i, s := range r.sources {
		if _, idx, ok := s.table.column(ref.Name); ok {
			return r.row[i][idx], nil
		}
	}
	return Value{}, newErr(KindNotFound, "no such column %q", ref.Name)
}

// Select executes a SELECT statement end to end: Cartesian product, WHERE
// filter, GROUP BY (or the implicit whole-result group an aggregate
// projection induces), per-group projection, DISTINCT, ORDER BY, LIMIT.
func (c *Catalog) Select(stmt *ast.Select) (header []string, rows []Row, err error) {
	sources, err := c.resolveSources(stmt.Tables)
	if err != nil {
		return nil, nil, err
	}

	product := cartesianProduct(sources)

	var filtered []combinedRow
	for _, row := range product {
		if stmt.Where == nil {
			filtered = append(filtered, row)
			continue
		}
		match, err := evalPredicate(stmt.Where, combinedResolver{sources: sources, row: row})
		if err != nil {
			return nil, nil, err
		}
		if match {
			filtered = append(filtered, row)
		}
	}

	groups, err := groupRows(sources, filtered, stmt.GroupBy, hasAggregate(stmt.Projection))
	if err != nil {
		return nil, nil, err
	}

	header = projectionHeader(stmt.Projection, sources)
	outs := make([]outputRow, 0, len(groups))
	for _, g := range groups {
		row, err := projectGroup(stmt.Projection, sources, g)
		if err != nil {
			return nil, nil, err
		}
		var rep combinedRow
		if len(g.rows) > 0 {
			rep = g.rows[0]
		}
		outs = append(outs, outputRow{values: row, rep: rep})
	}

	if stmt.Distinct {
		outs = distinctOutputs(outs)
	}

	if len(stmt.OrderBy) > 0 {
		if err := orderOutputs(outs, header, sources, stmt.OrderBy); err != nil {
			return nil, nil, err
		}
	}

	outRows := make([]Row, len(outs))
	for i, o := range outs {
		outRows[i] = o.values
	}

	if stmt.Limit != nil {
		n := *stmt.Limit
		if n < 0 {
			n = 0
		}
		if n < len(outRows) {
			outRows = outRows[:n]
		}
	}

	return header, outRows, nil
}

func (c *Catalog) resolveSources(refs []ast.TableRef) ([]source, error) {
	sources := make([]source, len(refs))
	for i, ref := range refs {
		t, err := c.table(ref.Name)
		if err != nil {
			return nil, err
		}
		alias := ref.Alias
		if alias == "" {
			alias = ref.Name
		}
		sources[i] = source{alias: alias, table: t}
	}
	return sources, nil
}

func cartesianProduct(sources []source) []combinedRow {
	if len(sources) == 0 {
		return nil
	}
	product := []combinedRow{{}}
	for _, s := range sources {
		var next []combinedRow
		for _, partial := range product {
			for _, row := range s.table.Rows {
				cr := make(combinedRow, len(partial), len(partial)+1)
				copy(cr, partial)
				cr = append(cr, row)
				next = append(next, cr)
			}
		}
		product = next
	}
	return product
}

func hasAggregate(items []ast.ProjectionItem) bool {
	for _, it := range items {
		if _, ok := it.(ast.AggregateItem); ok {
			return true
		}
	}
	return false
}

// group is one GROUP BY bucket: its member rows, in first-seen order.
type group struct {
	rows []combinedRow
}

// groupRows partitions filtered into GROUP BY buckets. When groupBy is
// empty but the projection aggregates, the whole filtered set becomes one
// implicit group — even when filtered is empty, so that e.g. SELECT
// COUNT(*) FROM t WHERE false still yields a single row with count 0
// rather than no rows at all. When neither applies, every row is its own
// singleton group (plain, non-aggregated projection).
func groupRows(sources []source, filtered []combinedRow, groupBy []ast.ColRef, aggregated bool) ([]group, error) {
	if len(groupBy) > 0 {
		order := make([]string, 0)
		buckets := make(map[string]*group)
		for _, row := range filtered {
			key, err := groupKey(sources, row, groupBy)
			if err != nil {
				return nil, err
			}
			b, ok := buckets[key]
			if !ok {
				b = &group{}
				buckets[key] = b
				order = append(order, key)
			}
			b.rows = append(b.rows, row)
		}
		groups := make([]group, len(order))
		for i, k := range order {
			groups[i] = *buckets[k]
		}
		return groups, nil
	}
	if aggregated {
		return []group{{rows: filtered}}, nil
	}
	groups := make([]group, len(filtered))
	for i, row := range filtered {
		groups[i] = group{rows: []combinedRow{row}}
	}
	return groups, nil
}

func groupKey(sources []source, row combinedRow, groupBy []ast.ColRef) (string, error) {
	var sb strings.Builder
	for _, ref := range groupBy {
		v, err := combinedResolver{sources: sources, row: row}.resolve(ref)
		if err != nil {
			return "", err
		}
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String(), nil
}

func projectionHeader(items []ast.ProjectionItem, sources []source) []string {
	var header []string
	for _, it := range items {
		switch v := it.(type) {
		case ast.StarItem:
			for _, s := range sources {
				for _, col := range s.table.Columns {
					header = append(header, s.alias+"."+col.Name)
				}
			}
		case ast.ColumnItem:
			if v.Alias != "" {
				header = append(header, v.Alias)
			} else {
				header = append(header, v.Ref.Name)
			}
		case ast.AggregateItem:
			name := v.Alias
			if name == "" {
				arg := "*"
				if !v.ArgStar {
					arg = v.Arg.Name
				}
				name = fmt.Sprintf("%s(%s)", v.Fn, arg)
			}
			header = append(header, name)
		}
	}
	return header
}

// projectGroup evaluates every projection item against one group,
// producing a single output row. Plain columns and '*' are resolved
// against the group's representative (first) row; aggregates fold over
// every member row.
func projectGroup(items []ast.ProjectionItem, sources []source, g group) (Row, error) {
	var rep resolver
	var repRow combinedRow
	if len(g.rows) > 0 {
		repRow = g.rows[0]
		rep = combinedResolver{sources: sources, row: repRow}
	}

	var out Row
	for _, it := range items {
		switch v := it.(type) {
		case ast.StarItem:
			if repRow == nil {
				for _, s := range sources {
					for range s.table.Columns {
						out = append(out, Value{Kind: ValNull})
					}
				}
				continue
			}
			for i, s := range sources {
				out = append(out, repRow[i][:len(s.table.Columns)]...)
			}
		case ast.ColumnItem:
			if rep == nil {
				out = append(out, Value{Kind: ValNull})
				continue
			}
			val, err := rep.resolve(v.Ref)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		case ast.AggregateItem:
			val, err := evalAggregate(v, sources, g.rows)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
	}
	return out, nil
}

// outputRow pairs one projected result row with its group's representative
// source row, so ORDER BY can sort by a column that was not projected.
type outputRow struct {
	values Row
	rep    combinedRow // nil for an implicit aggregate group over zero rows
}

func distinctOutputs(outs []outputRow) []outputRow {
	seen := make(map[string]bool, len(outs))
	kept := make([]outputRow, 0, len(outs))
	for _, o := range outs {
		key := rowKey(o.values)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, o)
	}
	return kept
}

func rowKey(row Row) string {
	var sb strings.Builder
	for _, v := range row {
		sb.WriteByte(byte(v.Kind))
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String()
}

// orderOutputs sorts outs in place by the ORDER BY columns. Each column
// carries its own direction (an upgrade over a single whole-sort-reversal
// flag: see SPEC_FULL.md's Open Question Decisions, item 1), and NULL
// compares lower than any non-null value, so it comes first under ASC and
// last under DESC. A column is
// looked up in the projected header first (so ordering by an aggregate
// alias works), falling back to the group's representative source row
// (so ordering by a column that was not itself projected still works).
func orderOutputs(outs []outputRow, header []string, sources []source, orderBy []ast.OrderItem) error {
	valueFor := func(o outputRow, ref ast.ColRef) (Value, error) {
		if idx := headerIndex(header, ref); idx >= 0 {
			return o.values[idx], nil
		}
		if o.rep == nil {
			return Value{}, newErr(KindNotFound, "ORDER BY column %q is not in the result", ref.Name)
		}
		return combinedResolver{sources: sources, row: o.rep}.resolve(ref)
	}

	var sortErr error
	sort.SliceStable(outs, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, item := range orderBy {
			vi, err := valueFor(outs[i], item.Col)
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := valueFor(outs[j], item.Col)
			if err != nil {
				sortErr = err
				return false
			}
			cmp := compareOrdered(vi, vj)
			if cmp == 0 {
				continue
			}
			if item.Dir == ast.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

func headerIndex(header []string, ref ast.ColRef) int {
	if ref.Qualified() {
		qualified := ref.Table + "." + ref.Name
		for i, h := range header {
			if h == qualified {
				return i
			}
		}
		return -1
	}
	for i, h := range header {
		if h == ref.Name {
			return i
		}
	}
	return -1
}

// compareOrdered is Value.Compare generalized to tolerate NULL: NULL
// sorts before every non-null value and is equal to another NULL.
func compareOrdered(a, b Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	return a.Compare(b)
}
