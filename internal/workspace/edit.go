package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/pgdeck/pgdeck/internal/gateway"
	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/sqlgen"
)

// ErrEditNotAllowed is returned when the tab has no editable table
// context.
var ErrEditNotAllowed = errors.New("inline editing is not available for this result")

type editSnapshot struct {
	handle  string
	schema  string
	table   string
	columns []string
	row     []any
	defs    []models.ColumnDefinition
	gen     uint64
}

func (w *Workspace) editSnapshot(tabID string, rowIdx int) (editSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab := w.findTabLocked(tabID)
	if tab == nil {
		return editSnapshot{}, ErrTabNotFound
	}
	if tab.SelectedTable == "" || len(tab.ColumnDefs) == 0 || !sqlgen.CanEdit(tab.SQL) {
		return editSnapshot{}, ErrEditNotAllowed
	}
	if tab.ConnectionID == "" {
		return editSnapshot{}, ErrNotConnected
	}
	if tab.Results == nil || rowIdx < 0 || rowIdx >= len(tab.Results.Rows) {
		return editSnapshot{}, fmt.Errorf("row %d out of range", rowIdx)
	}

	schema, table := sqlgen.SplitTable(tab.SelectedTable)
	row := make([]any, len(tab.Results.Rows[rowIdx]))
	copy(row, tab.Results.Rows[rowIdx])

	return editSnapshot{
		handle:  tab.ConnectionID,
		schema:  schema,
		table:   table,
		columns: append([]string(nil), tab.Results.Columns...),
		row:     row,
		defs:    append([]models.ColumnDefinition(nil), tab.ColumnDefs...),
		gen:     tab.generation,
	}, nil
}

// UpdateCell changes one cell of a result row. Row identification uses
// the PK-first policy from sqlgen; execution goes through the gateway's
// bound-parameter UpdateCell, with the equivalent literal statement
// attached to failures for diagnosis. The cached result row is patched
// in place on success.
func (w *Workspace) UpdateCell(ctx context.Context, tabID string, rowIdx int, column string, newValue *string) error {
	snap, err := w.editSnapshot(tabID, rowIdx)
	if err != nil {
		return err
	}

	colIdx := -1
	for i, c := range snap.columns {
		if c == column {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return fmt.Errorf("column %q not in result set", column)
	}

	var newValueAny any
	if newValue != nil {
		newValueAny = *newValue
	}
	stmt, err := sqlgen.BuildUpdate(snap.schema+"."+snap.table, column, newValueAny, snap.row, snap.columns, snap.defs)
	if err != nil {
		return err
	}

	idCols, _ := sqlgen.IdentifyingColumns(snap.defs)
	identifiers := rowIdentifiers(idCols, snap.columns, snap.row)

	colType := ""
	for _, d := range snap.defs {
		if d.Name == column {
			colType = d.DataType
			break
		}
	}

	if _, err := w.gw.UpdateCell(ctx, snap.handle, snap.schema, snap.table, column, colType, newValue, identifiers); err != nil {
		w.emit(EditFailedEvent{TabID: tabID, SQL: stmt, Err: err})
		return err
	}

	// Result sets handed out in tab snapshots are never mutated; the
	// edit installs a fresh one with only the patched row reallocated.
	w.withTab(tabID, snap.gen, func(t *Tab) {
		if t.Results == nil || rowIdx >= len(t.Results.Rows) || colIdx >= len(t.Results.Rows[rowIdx]) {
			return
		}
		next := *t.Results
		next.Rows = append([][]any(nil), t.Results.Rows...)
		row := append([]any(nil), next.Rows[rowIdx]...)
		row[colIdx] = newValueAny
		next.Rows[rowIdx] = row
		t.Results = &next
	})
	w.emit(StateChangedEvent{})
	return nil
}

// DeleteRow deletes one result row. Deletion is refused when the table
// has neither a primary key nor a unique column; an all-columns match
// is not a safe identity for a destructive statement.
func (w *Workspace) DeleteRow(ctx context.Context, tabID string, rowIdx int) error {
	snap, err := w.editSnapshot(tabID, rowIdx)
	if err != nil {
		return err
	}

	stmt, err := sqlgen.BuildDelete(snap.schema+"."+snap.table, snap.row, snap.defs, snap.columns)
	if err != nil {
		return err
	}

	if _, err := w.gw.RunQuery(ctx, snap.handle, stmt); err != nil {
		w.emit(EditFailedEvent{TabID: tabID, SQL: stmt, Err: err})
		return err
	}

	w.withTab(tabID, snap.gen, func(t *Tab) {
		if t.Results == nil || rowIdx >= len(t.Results.Rows) {
			return
		}
		next := *t.Results
		next.Rows = make([][]any, 0, len(t.Results.Rows)-1)
		next.Rows = append(next.Rows, t.Results.Rows[:rowIdx]...)
		next.Rows = append(next.Rows, t.Results.Rows[rowIdx+1:]...)
		t.Results = &next
	})
	w.emit(StateChangedEvent{})
	return nil
}

// rowIdentifiers converts the identifying columns' original values into
// the gateway's bound-identifier form. Values are stringified for
// binding; nil stays nil so the driver emits IS NULL.
func rowIdentifiers(idCols []models.ColumnDefinition, columns []string, row []any) []gateway.RowIdentifier {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	var ids []gateway.RowIdentifier
	for _, col := range idCols {
		i, ok := index[col.Name]
		if !ok || i >= len(row) {
			continue
		}
		id := gateway.RowIdentifier{Column: col.Name, DataType: col.DataType}
		if row[i] != nil {
			s := bindString(row[i])
			id.Value = &s
		}
		ids = append(ids, id)
	}
	return ids
}

func bindString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case map[string]any, []any:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
