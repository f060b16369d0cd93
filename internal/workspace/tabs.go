package workspace

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/pgdeck/pgdeck/internal/models"
	"github.com/pgdeck/pgdeck/internal/sqlgen"
)

// Tab is one workspace tab. Everything except ID, Title, SQL,
// SavedConnectionID and DBName is transient and never persisted.
type Tab struct {
	ID                string
	SavedConnectionID string
	// ConnectionID is the live handle; empty means disconnected.
	ConnectionID string
	Title        string
	SQL          string
	DBName       string

	Results   *models.QueryResult
	Err       string
	IsLoading bool
	// SelectedTable ("schema.table") and ColumnDefs are set together, and
	// only when a column fetch succeeded with at least one column. They
	// are the sole gate for inline editing.
	SelectedTable string
	ColumnDefs    []models.ColumnDefinition
	Duration      time.Duration

	// customTitle records a user rename; inferred titles never overwrite
	// a custom one.
	customTitle bool
	// generation invalidates in-flight results when the tab is rerun or
	// reset.
	generation uint64
}

var genericTitle = regexp.MustCompile(`^Query \d+$`)

func (w *Workspace) newTabLocked() *Tab {
	w.tabSeq++
	return &Tab{
		ID:    uuid.New().String(),
		Title: fmt.Sprintf("Query %d", w.tabSeq),
	}
}

func (w *Workspace) findTabLocked(id string) *Tab {
	for _, t := range w.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// NewTab appends a fresh tab bound to the currently selected connection
// and makes it active.
func (w *Workspace) NewTab() Tab {
	w.mu.Lock()
	tab := w.newTabLocked()
	tab.ConnectionID = w.activeConnection
	tab.SavedConnectionID = w.activeSavedID
	if node := w.findNodeLocked(w.activeSavedID); node != nil {
		tab.DBName = node.Conn.Config.DBName
	}
	w.tabs = append(w.tabs, tab)
	w.activeTabID = tab.ID
	snapshot := *tab
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})
	return snapshot
}

// CloseTab removes a tab. Closing the last remaining tab is a no-op:
// the store never goes empty.
func (w *Workspace) CloseTab(id string) {
	w.mu.Lock()
	if len(w.tabs) <= 1 {
		w.mu.Unlock()
		return
	}

	idx := -1
	for i, t := range w.tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return
	}

	// Invalidate any in-flight result for the closed tab.
	w.tabs[idx].generation++
	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)

	if w.activeTabID == id {
		if idx >= len(w.tabs) {
			idx = len(w.tabs) - 1
		}
		w.activeTabID = w.tabs[idx].ID
	}
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})
}

// SetActiveTab switches the active tab pointer.
func (w *Workspace) SetActiveTab(id string) error {
	w.mu.Lock()
	if w.findTabLocked(id) == nil {
		w.mu.Unlock()
		return ErrTabNotFound
	}
	w.activeTabID = id
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})
	return nil
}

// SetSQL updates a tab's editor text.
func (w *Workspace) SetSQL(id, sql string) error {
	w.mu.Lock()
	tab := w.findTabLocked(id)
	if tab == nil {
		w.mu.Unlock()
		return ErrTabNotFound
	}
	tab.SQL = sql
	w.mu.Unlock()

	w.schedulePersist()
	return nil
}

// RenameTab sets a user-chosen title, which inference will never
// overwrite afterwards.
func (w *Workspace) RenameTab(id, title string) error {
	w.mu.Lock()
	tab := w.findTabLocked(id)
	if tab == nil {
		w.mu.Unlock()
		return ErrTabNotFound
	}
	tab.Title = title
	tab.customTitle = true
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})
	return nil
}

// Tabs returns copies of all tabs in order.
func (w *Workspace) Tabs() []Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Tab, len(w.tabs))
	for i, t := range w.tabs {
		out[i] = *t
	}
	return out
}

// ActiveTab returns a copy of the active tab.
func (w *Workspace) ActiveTab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	if tab := w.findTabLocked(w.activeTabID); tab != nil {
		return *tab
	}
	// Unreachable while the invariants hold; return a zero tab rather
	// than panic in a View call.
	return Tab{}
}

// ActiveTabID returns the id of the active tab.
func (w *Workspace) ActiveTabID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeTabID
}

// CanEdit reports whether the tab's current result grid may be edited
// inline. It is recomputed from the tab's current SQL on every call,
// never cached: editing needs a selected table with known columns and a
// plain single-table SELECT.
func (w *Workspace) CanEdit(tabID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	tab := w.findTabLocked(tabID)
	if tab == nil {
		return false
	}
	return tab.SelectedTable != "" && len(tab.ColumnDefs) > 0 && sqlgen.CanEdit(tab.SQL)
}

// retitleForInference replaces the title with the inferred table name
// unless the user renamed the tab. Called with the lock held.
func (t *Tab) retitleForInference(table string) {
	if t.customTitle {
		return
	}
	t.Title = table
}

// looksCustomTitle reports whether a restored title should be treated as
// user-chosen: anything that is neither the generic default nor the
// table name its own SQL infers.
func looksCustomTitle(title, sql string) bool {
	if title == "" || genericTitle.MatchString(title) {
		return false
	}
	if _, table, ok := sqlgen.InferTable(sql); ok && table == title {
		return false
	}
	return true
}
