package catalog

import "github.com/MIUTEpxx/sqlengine/ast"

// checkRowConstraints validates a candidate row against its table's NOT
// NULL, PRIMARY KEY, and UNIQUE constraints. excludeRowIdx is the index of
// the row being replaced (UPDATE) so it does not conflict with itself; pass
// -1 when inserting a brand-new row.
func checkRowConstraints(t *Table, values Row, excludeRowIdx int) error {
	for i, col := range t.Columns {
		v := values[i]
		if col.NotNull && v.IsNull() {
			return newErr(KindConstraint, "column %q of table %q cannot be NULL", col.Name, t.Name)
		}
		if !col.PrimaryKey && !col.Unique {
			continue
		}
		if v.IsNull() {
			// NULL never conflicts with another NULL under UNIQUE; a
			// PRIMARY KEY column is already NOT NULL so this path is
			// unreachable for it.
			continue
		}
		for ri, row := range t.Rows {
			if ri == excludeRowIdx {
				continue
			}
			if row[i].Equal(v) {
				what := "UNIQUE"
				if col.PrimaryKey {
					what = "PRIMARY KEY"
				}
				return newErr(KindConstraint, "%s violation on column %q of table %q", what, col.Name, t.Name)
			}
		}
	}
	return nil
}

// coerceRow converts a literal list into a Row matching t's column order,
// checking arity first.
func coerceRow(t *Table, lits []ast.Literal) (Row, error) {
	if len(lits) != len(t.Columns) {
		return nil, newErr(KindExecution, "table %q has %d columns, got %d values", t.Name, len(t.Columns), len(lits))
	}
	row := make(Row, len(lits))
	for i, lit := range lits {
		v, err := coerce(lit, t.Columns[i])
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// Insert executes an INSERT statement.
func (c *Catalog) Insert(stmt *ast.Insert) error {
	lits := make([]ast.Literal, len(stmt.Values))
	for i, v := range stmt.Values {
		lits[i] = *v
	}
	_, err := c.InsertRow(stmt.Table, lits)
	return err
}

// InsertRow is the row-level insert primitive: coerce, constrain, append.
// It returns the row as actually stored, since coercion can alter the
// caller's literals (e.g. an empty string normalizes to NULL).
func (c *Catalog) InsertRow(tableName string, lits []ast.Literal) (Row, error) {
	t, err := c.table(tableName)
	if err != nil {
		return nil, err
	}
	row, err := coerceRow(t, lits)
	if err != nil {
		return nil, err
	}
	if err := checkRowConstraints(t, row, -1); err != nil {
		return nil, err
	}
	t.Rows = append(t.Rows, row)
	return row, nil
}

// Update executes an UPDATE statement. Matching rows are validated and
// rebuilt in full before any of them are written back (see
// SPEC_FULL.md's Open Question Decisions on UPDATE atomicity): a
// constraint or type failure on the Nth matching row leaves the table
// completely untouched, rather than partially updated.
func (c *Catalog) Update(stmt *ast.Update) (int, error) {
	t, err := c.table(stmt.Table)
	if err != nil {
		return 0, err
	}

	type pending struct {
		idx int
		row Row
	}
	var candidates []pending

	for idx, row := range t.Rows {
		if stmt.Where != nil {
			match, err := evalPredicate(stmt.Where, singleRowResolver{table: t, row: row})
			if err != nil {
				return 0, err
			}
			if !match {
				continue
			}
		}
		newRow := make(Row, len(row))
		copy(newRow, row)
		for _, asn := range stmt.Assignments {
			_, colIdx, ok := t.column(asn.Column)
			if !ok {
				return 0, newErr(KindNotFound, "no such column %q", asn.Column)
			}
			val, err := evalExpr(asn.Expr, singleRowResolver{table: t, row: newRow})
			if err != nil {
				return 0, err
			}
			if err := checkAssignableType(t.Columns[colIdx], val); err != nil {
				return 0, err
			}
			newRow[colIdx] = val
		}
		candidates = append(candidates, pending{idx: idx, row: newRow})
	}
	if stmt.Where != nil && len(candidates) == 0 {
		return 0, newErr(KindExecution, "UPDATE WHERE matched no rows in table %q", t.Name)
	}

	// Validate every candidate against the table as it will look once all
	// of them land, so two rows in the same UPDATE batch that would
	// collide with each other are caught before anything is written.
	post := make([]Row, len(t.Rows))
	copy(post, t.Rows)
	for _, p := range candidates {
		post[p.idx] = p.row
	}
	postTable := &Table{Name: t.Name, Columns: t.Columns, Rows: post}
	for _, p := range candidates {
		if err := checkRowConstraints(postTable, p.row, p.idx); err != nil {
			return 0, err
		}
	}
	for i, cand := range candidates {
		for j, other := range candidates {
			if i == j {
				continue
			}
			if rowsConflict(t, cand.row, other.row) {
				return 0, newErr(KindConstraint, "UPDATE batch produces conflicting rows in table %q", t.Name)
			}
		}
	}

	for _, p := range candidates {
		t.Rows[p.idx] = p.row
	}
	return len(candidates), nil
}

// rowsConflict reports whether two rows would violate each other's
// PRIMARY KEY or UNIQUE constraints if both existed at once.
func rowsConflict(t *Table, a, b Row) bool {
	for i, col := range t.Columns {
		if !col.PrimaryKey && !col.Unique {
			continue
		}
		if a[i].IsNull() || b[i].IsNull() {
			continue
		}
		if a[i].Equal(b[i]) {
			return true
		}
	}
	return false
}

func checkAssignableType(col ColumnSpec, v Value) error {
	if v.IsNull() {
		return nil
	}
	switch col.Type.Kind {
	case ast.IntKind:
		if v.Kind != ValInt {
			return newErr(KindType, "column %q is INT", col.Name)
		}
	case ast.VarcharKind:
		if v.Kind != ValString {
			return newErr(KindType, "column %q is VARCHAR", col.Name)
		}
	}
	return nil
}

// UpdateRow is the row-level update primitive: locate the row by its
// primary key value and apply a column->literal update map. The catalog's
// empty-string-means-NULL convention applies to both the key lookup and
// the new column values.
func (c *Catalog) UpdateRow(tableName string, pk Value, updates map[string]ast.Literal) error {
	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	pkCol, ok := t.PrimaryKeyColumn()
	if !ok {
		return newErr(KindSchema, "table %q has no PRIMARY KEY", t.Name)
	}
	pk = normalizeEmptyString(pk)
	idx, err := findByPrimaryKey(t, pkCol, pk)
	if err != nil {
		return err
	}

	newRow := make(Row, len(t.Columns))
	copy(newRow, t.Rows[idx])
	for col, lit := range updates {
		_, colIdx, ok := t.column(col)
		if !ok {
			return newErr(KindNotFound, "no such column %q", col)
		}
		v, err := coerce(lit, t.Columns[colIdx])
		if err != nil {
			return err
		}
		newRow[colIdx] = v
	}
	if err := checkRowConstraints(t, newRow, idx); err != nil {
		return err
	}
	t.Rows[idx] = newRow
	return nil
}

// Delete executes a DELETE statement. A WHERE clause that matches no rows
// is an error (see SPEC_FULL.md's Open Question Decisions): it most often
// signals a typo'd filter rather than an intentional no-op, so it is
// treated the same way a zero-match UPDATE would be.
func (c *Catalog) Delete(stmt *ast.Delete) (int, error) {
	t, err := c.table(stmt.Table)
	if err != nil {
		return 0, err
	}
	if stmt.Where == nil {
		n := len(t.Rows)
		t.Rows = nil
		return n, nil
	}

	kept := make([]Row, 0, len(t.Rows))
	removed := 0
	for _, row := range t.Rows {
		match, err := evalPredicate(stmt.Where, singleRowResolver{table: t, row: row})
		if err != nil {
			return 0, err
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, newErr(KindExecution, "DELETE WHERE matched no rows in table %q", t.Name)
	}
	t.Rows = kept
	return removed, nil
}

// DeleteRow is the row-level delete primitive: remove the row identified
// by a primary key value.
func (c *Catalog) DeleteRow(tableName string, pk Value) error {
	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	pkCol, ok := t.PrimaryKeyColumn()
	if !ok {
		return newErr(KindSchema, "table %q has no PRIMARY KEY", t.Name)
	}
	pk = normalizeEmptyString(pk)
	idx, err := findByPrimaryKey(t, pkCol, pk)
	if err != nil {
		return err
	}
	t.Rows = append(t.Rows[:idx], t.Rows[idx+1:]...)
	return nil
}

// GetTableData returns a defensive copy of a table's columns and rows.
func (c *Catalog) GetTableData(tableName string) ([]ColumnSpec, []Row, error) {
	t, err := c.table(tableName)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]ColumnSpec, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cp := make(Row, len(r))
		copy(cp, r)
		rows[i] = cp
	}
	return cols, rows, nil
}

func normalizeEmptyString(v Value) Value {
	if v.Kind == ValString && v.Str == "" {
		return Value{Kind: ValNull}
	}
	return v
}

func findByPrimaryKey(t *Table, pkCol ColumnSpec, pk Value) (int, error) {
	_, idx, _ := t.column(pkCol.Name)
	for i, row := range t.Rows {
		if row[idx].Equal(pk) {
			return i, nil
		}
	}
	return -1, newErr(KindNotFound, "no row with %s=%s in table %q", pkCol.Name, pk, t.Name)
}
