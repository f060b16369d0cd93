package sqlgen

import (
	"errors"
	"strings"

	"github.com/pgdeck/pgdeck/internal/models"
)

// ErrNoIdentifyingColumns is returned when a row cannot be addressed
// safely enough for the requested statement.
var ErrNoIdentifyingColumns = errors.New("no identifying columns for row")

// IdentifyingColumns resolves the column set used to address a single
// row: the primary key, else unique columns, else every column of the
// row. fellBackToAll flags the last resort, which may match more than
// one row.
func IdentifyingColumns(defs []models.ColumnDefinition) (cols []models.ColumnDefinition, fellBackToAll bool) {
	for _, d := range defs {
		if d.IsPK {
			cols = append(cols, d)
		}
	}
	if len(cols) > 0 {
		return cols, false
	}
	for _, d := range defs {
		if d.IsUnique {
			cols = append(cols, d)
		}
	}
	if len(cols) > 0 {
		return cols, false
	}
	return defs, true
}

// whereClause renders the AND-joined identifying conditions using each
// column's original value. Identifying columns absent from the result
// set are skipped; their values are unknowable here.
func whereClause(idCols []models.ColumnDefinition, columns []string, row []any) string {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	var conds []string
	for _, col := range idCols {
		i, ok := index[col.Name]
		if !ok || i >= len(row) {
			continue
		}
		if row[i] == nil {
			conds = append(conds, quoteAlways(col.Name)+" IS NULL")
		} else {
			conds = append(conds, quoteAlways(col.Name)+" = "+Literal(row[i]))
		}
	}
	return strings.Join(conds, " AND ")
}

// BuildUpdate emits a single-cell UPDATE for the row identified by
// originalRow. The identifying policy is PK, else unique, else all
// columns; the all-columns fallback is a correctness risk (it can match
// several rows) and is left to the caller to confirm.
func BuildUpdate(table, column string, newValue any, originalRow []any, columns []string, defs []models.ColumnDefinition) (string, error) {
	idCols, _ := IdentifyingColumns(defs)
	where := whereClause(idCols, columns, originalRow)
	if where == "" {
		return "", ErrNoIdentifyingColumns
	}

	schema, name := SplitTable(table)
	return "UPDATE " + quoteAlways(schema) + "." + quoteAlways(name) +
		" SET " + quoteAlways(column) + " = " + Literal(newValue) +
		" WHERE " + where + ";", nil
}

// BuildDelete emits a DELETE for the row. Unlike updates, a delete is
// refused outright when neither a primary key nor a unique column is
// available: an all-columns match is too weak a guarantee for a
// destructive statement.
func BuildDelete(table string, row []any, defs []models.ColumnDefinition, columns []string) (string, error) {
	idCols, fellBackToAll := IdentifyingColumns(defs)
	if fellBackToAll || len(idCols) == 0 {
		return "", ErrNoIdentifyingColumns
	}

	where := whereClause(idCols, columns, row)
	if where == "" {
		return "", ErrNoIdentifyingColumns
	}

	schema, name := SplitTable(table)
	return "DELETE FROM " + quoteAlways(schema) + "." + quoteAlways(name) +
		" WHERE " + where + ";", nil
}
