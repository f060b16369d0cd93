package workspace

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pgdeck/pgdeck/internal/history"
	"github.com/pgdeck/pgdeck/internal/sqlgen"
)

// Run executes sql on a tab's live connection. Blank SQL or a
// disconnected tab is a no-op. A tab runs at most one query at a time;
// a second run while one is in flight is rejected with
// ErrQueryInFlight. On success the executor tries to infer the query's
// table context to enable inline editing; inference failures are
// silent.
func (w *Workspace) Run(ctx context.Context, tabID, sql string) error {
	w.mu.Lock()
	tab := w.findTabLocked(tabID)
	if tab == nil {
		w.mu.Unlock()
		return ErrTabNotFound
	}
	if strings.TrimSpace(sql) == "" || tab.ConnectionID == "" {
		w.mu.Unlock()
		return nil
	}
	if tab.IsLoading {
		w.mu.Unlock()
		return ErrQueryInFlight
	}

	tab.SQL = sql
	tab.Results = nil
	tab.Err = ""
	tab.SelectedTable = ""
	tab.ColumnDefs = nil
	tab.IsLoading = true
	tab.generation++
	gen := tab.generation
	handle := tab.ConnectionID
	connName, dbName := w.connLabelLocked(tab.SavedConnectionID)
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})

	// Loading always clears, whatever path the run takes, but only for
	// this generation: a newer run owns the flag by then.
	defer w.clearLoading(tabID, gen)

	start := time.Now()
	result, err := w.gw.RunQuery(ctx, handle, sql)
	elapsed := time.Since(start)

	w.record(history.Entry{
		ConnectionName: connName,
		DatabaseName:   dbName,
		Query:          sql,
		Duration:       elapsed,
		RowsAffected:   result.AffectedRows,
		Success:        err == nil,
		ErrorMessage:   errString(err),
	})

	if err != nil {
		w.withTab(tabID, gen, func(t *Tab) {
			t.Err = err.Error()
			t.Duration = elapsed
		})
		w.emit(QueryFailedEvent{TabID: tabID, SQL: sql, Err: err})
		return err
	}

	w.withTab(tabID, gen, func(t *Tab) {
		t.Results = &result
		t.Duration = elapsed
	})
	w.emit(StateChangedEvent{})

	w.inferTableContext(ctx, tabID, gen, handle, sql)
	return nil
}

// inferTableContext scans sql for its first FROM target and, if the
// gateway can describe that table, flips on inline editing for the tab.
// Any failure here only leaves editing disabled; results stay on screen.
func (w *Workspace) inferTableContext(ctx context.Context, tabID string, gen uint64, handle, sql string) {
	schema, table, ok := sqlgen.InferTable(sql)
	if !ok {
		return
	}

	w.withTab(tabID, gen, func(t *Tab) {
		t.retitleForInference(table)
	})

	cols, err := w.gw.GetColumns(ctx, handle, schema, table)
	if err != nil {
		log.Printf("failed to fetch columns for %s.%s: %v", schema, table, err)
		return
	}
	if len(cols) == 0 {
		return
	}

	w.withTab(tabID, gen, func(t *Tab) {
		t.SelectedTable = schema + "." + table
		t.ColumnDefs = cols
	})
	w.emit(StateChangedEvent{})
}

// SelectTable points the active tab at schema.table on the given saved
// connection: it generates the default SELECT, fetches the table's
// columns, and runs the query. Unlike inference, a column fetch failure
// here is a tab-level error, not a silent degradation.
func (w *Workspace) SelectTable(ctx context.Context, savedID, schema, table string) error {
	w.mu.Lock()
	node := w.findNodeLocked(savedID)
	if node == nil {
		w.mu.Unlock()
		return ErrUnknownConnection
	}
	if node.Handle == "" {
		w.mu.Unlock()
		return ErrNotConnected
	}
	handle := node.Handle
	dbName := node.Conn.Config.DBName
	connName := node.Conn.Name

	sql := fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d",
		sqlgen.QuoteIdent(schema), sqlgen.QuoteIdent(table), w.cfg.General.DefaultLimit)

	tab := w.findTabLocked(w.activeTabID)
	if tab == nil {
		w.mu.Unlock()
		return ErrTabNotFound
	}
	if tab.IsLoading {
		w.mu.Unlock()
		return ErrQueryInFlight
	}
	tab.SavedConnectionID = savedID
	tab.ConnectionID = handle
	tab.DBName = dbName
	tab.SQL = sql
	tab.Results = nil
	tab.Err = ""
	tab.SelectedTable = ""
	tab.ColumnDefs = nil
	tab.IsLoading = true
	tab.generation++
	tab.retitleForInference(table)
	gen := tab.generation
	tabID := tab.ID
	w.activeConnection = handle
	w.activeSavedID = savedID
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})

	defer w.clearLoading(tabID, gen)

	cols, err := w.gw.GetColumns(ctx, handle, schema, table)
	if err != nil {
		w.withTab(tabID, gen, func(t *Tab) {
			t.Err = err.Error()
		})
		w.emit(QueryFailedEvent{TabID: tabID, SQL: sql, Err: err})
		return err
	}

	start := time.Now()
	result, err := w.gw.RunQuery(ctx, handle, sql)
	elapsed := time.Since(start)

	w.record(history.Entry{
		ConnectionName: connName,
		DatabaseName:   dbName,
		Query:          sql,
		Duration:       elapsed,
		RowsAffected:   result.AffectedRows,
		Success:        err == nil,
		ErrorMessage:   errString(err),
	})

	if err != nil {
		w.withTab(tabID, gen, func(t *Tab) {
			t.Err = err.Error()
			t.Duration = elapsed
		})
		w.emit(QueryFailedEvent{TabID: tabID, SQL: sql, Err: err})
		return err
	}

	w.withTab(tabID, gen, func(t *Tab) {
		t.Results = &result
		t.Duration = elapsed
		if len(cols) > 0 {
			t.SelectedTable = schema + "." + table
			t.ColumnDefs = cols
		}
	})
	w.emit(StateChangedEvent{})
	return nil
}

// withTab applies fn to the tab only if it still exists and still has
// the generation the caller started with. Superseded or orphaned
// results are dropped on the floor.
func (w *Workspace) withTab(tabID string, gen uint64, fn func(*Tab)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	tab := w.findTabLocked(tabID)
	if tab == nil || tab.generation != gen {
		return false
	}
	fn(tab)
	return true
}

func (w *Workspace) clearLoading(tabID string, gen uint64) {
	if w.withTab(tabID, gen, func(t *Tab) { t.IsLoading = false }) {
		w.emit(StateChangedEvent{})
	}
}

func (w *Workspace) connLabelLocked(savedID string) (name, dbName string) {
	if node := w.findNodeLocked(savedID); node != nil {
		return node.Conn.Name, node.Conn.Config.DBName
	}
	return "", ""
}

func (w *Workspace) record(entry history.Entry) {
	if w.hist == nil {
		return
	}
	if err := w.hist.Add(entry); err != nil {
		log.Printf("failed to record query history: %v", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
