package workspace

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// RestoreSession rebuilds the workspace from the persisted session
// snapshot and the current saved-connection list. Live handles in the
// snapshot are dead by construction; every referenced saved connection
// is re-opened fresh, sequentially, and tabs are rewired to the new
// handles. A connection that fails to open leaves its tabs disconnected
// but never aborts restoration.
//
// An error from the snapshot or connection-list fetch itself is fatal:
// the workspace is NOT marked loaded, which keeps the persister off so
// the on-disk snapshot survives for the next attempt.
func (w *Workspace) RestoreSession(ctx context.Context) error {
	session, err := w.gw.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := w.LoadConnections(ctx); err != nil {
		return fmt.Errorf("failed to load connections: %w", err)
	}

	// Distinct saved ids, the session-level one first. Resolution is
	// sequential to bound startup load on the gateway and keep the logs
	// deterministic.
	var order []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	add(session.LastSavedConnectionID)
	for _, ts := range session.Tabs {
		add(ts.SavedConnectionID)
	}

	handles := make(map[string]string, len(order))
	for _, savedID := range order {
		handle, err := w.Connect(ctx, savedID)
		if err != nil {
			log.Printf("session restore: could not reconnect %s: %v", savedID, err)
			continue
		}
		handles[savedID] = handle
	}

	var tabs []*Tab
	for _, ts := range session.Tabs {
		tab := &Tab{
			ID:                ts.ID,
			Title:             ts.Title,
			SQL:               ts.SQL,
			SavedConnectionID: ts.SavedConnectionID,
			DBName:            ts.DBName,
			customTitle:       looksCustomTitle(ts.Title, ts.SQL),
		}
		if tab.ID == "" {
			tab.ID = uuid.New().String()
		}

		switch {
		case ts.SavedConnectionID != "":
			// All transient fields stay empty even when this lookup
			// misses: the tab persists but needs a manual reconnect.
			tab.ConnectionID = handles[ts.SavedConnectionID]
		case session.LastSavedConnectionID != "":
			// Legacy tabs carry no saved id of their own.
			if handle, ok := handles[session.LastSavedConnectionID]; ok {
				tab.ConnectionID = handle
				tab.SavedConnectionID = session.LastSavedConnectionID
			}
		}
		tabs = append(tabs, tab)
	}

	w.mu.Lock()
	if len(tabs) > 0 {
		w.tabs = tabs
		w.tabSeq = len(tabs)
	} else if session.Tabs == nil && session.LastQuery != "" {
		// Pre-tabs snapshot: seed the single default tab's editor text.
		w.tabs[0].SQL = session.LastQuery
	}

	w.activeTabID = w.tabs[0].ID
	if session.ActiveTabID != "" && w.findTabLocked(session.ActiveTabID) != nil {
		w.activeTabID = session.ActiveTabID
	}

	// Global active connection: the session's own saved id if it
	// resolved, else whatever the active tab ended up connected to.
	if handle, ok := handles[session.LastSavedConnectionID]; ok {
		w.activeConnection = handle
		w.activeSavedID = session.LastSavedConnectionID
	} else if active := w.findTabLocked(w.activeTabID); active != nil && active.ConnectionID != "" {
		w.activeConnection = active.ConnectionID
		w.activeSavedID = active.SavedConnectionID
	} else {
		// Connect calls during handle resolution select whatever opened
		// last; when neither source resolves, no connection is selected.
		w.activeConnection = ""
		w.activeSavedID = ""
	}

	w.loaded = true
	w.mu.Unlock()

	w.emit(StateChangedEvent{})
	return nil
}
