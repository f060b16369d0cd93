package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgdeck/pgdeck/internal/models"
)

func TestRestoreSessionRebuildsTabs(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}
	gw.session = models.Session{
		LastSavedConnectionID: "s1",
		Tabs: []models.TabState{
			{ID: "t1", Title: "Query 1", SQL: "SELECT 1", SavedConnectionID: "s1", ConnectionID: "dead-handle"},
		},
		ActiveTabID: "t1",
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if !w.Loaded() {
		t.Fatal("workspace not marked loaded after successful restore")
	}

	tabs := w.Tabs()
	if len(tabs) != 1 {
		t.Fatalf("expected 1 tab, got %d", len(tabs))
	}
	tab := tabs[0]
	if tab.ID != "t1" || tab.SQL != "SELECT 1" {
		t.Errorf("tab not rebuilt from snapshot: %+v", tab)
	}
	if tab.ConnectionID == "" || tab.ConnectionID == "dead-handle" {
		t.Errorf("tab must get a freshly issued handle, got %q", tab.ConnectionID)
	}
	if tab.Results != nil || tab.Err != "" || tab.IsLoading || tab.SelectedTable != "" || len(tab.ColumnDefs) != 0 {
		t.Errorf("transient fields must reset on restore: %+v", tab)
	}
	if w.ActiveTabID() != "t1" {
		t.Errorf("active tab = %q, want t1", w.ActiveTabID())
	}

	handle, savedID := w.ActiveConnection()
	if handle != tab.ConnectionID || savedID != "s1" {
		t.Errorf("global active connection = (%q, %q), want (%q, s1)", handle, savedID, tab.ConnectionID)
	}
}

func TestRestoreSessionConnectFailureLeavesTabDisconnected(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}
	gw.failConnect["appdb"] = errBoom
	gw.session = models.Session{
		LastSavedConnectionID: "s1",
		Tabs: []models.TabState{
			{ID: "t1", SQL: "SELECT 1", SavedConnectionID: "s1"},
		},
		ActiveTabID: "t1",
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatalf("a per-connection failure must not abort restoration: %v", err)
	}
	if !w.Loaded() {
		t.Fatal("store must be marked loaded even when reconnects fail")
	}

	tab := w.Tabs()[0]
	if tab.ConnectionID != "" {
		t.Errorf("tab should be disconnected, got handle %q", tab.ConnectionID)
	}
	if tab.SQL != "SELECT 1" {
		t.Errorf("tab text lost: %q", tab.SQL)
	}
}

func TestRestoreSessionClearsConnectionWhenNothingResolves(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{
		savedConn("s1", "Primary", "maindb"),
		savedConn("s2", "Replica", "replicadb"),
	}
	gw.failConnect["maindb"] = errBoom
	gw.session = models.Session{
		LastSavedConnectionID: "s1",
		Tabs: []models.TabState{
			{ID: "t1", SQL: "SELECT 1", SavedConnectionID: "s1"},
			{ID: "t2", SQL: "SELECT 2", SavedConnectionID: "s2"},
		},
		ActiveTabID: "t1",
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	// s2 reconnected during handle resolution, but neither the session's
	// own connection nor the active tab has a live handle, so no global
	// connection may be selected.
	if handle, savedID := w.ActiveConnection(); handle != "" || savedID != "" {
		t.Errorf("global connection = (%q, %q), want none", handle, savedID)
	}

	tabs := w.Tabs()
	if tabs[0].ConnectionID != "" {
		t.Errorf("tab on the failed connection should stay disconnected, got %q", tabs[0].ConnectionID)
	}
	if tabs[1].ConnectionID == "" {
		t.Error("tab on the healthy connection lost its fresh handle")
	}
}

func TestRestoreSessionLoadFailureIsFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.sessionErr = errBoom

	w := newTestWorkspace(gw, WithPersistDelay(10*time.Millisecond))
	defer w.Close()

	if err := w.RestoreSession(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected load failure to propagate, got %v", err)
	}
	if w.Loaded() {
		t.Fatal("store must not be marked loaded after a fatal restore error")
	}

	// The persister stays off: a failed restore must never let an empty
	// default state overwrite the on-disk snapshot.
	w.schedulePersist()
	w.NewTab()
	time.Sleep(50 * time.Millisecond)
	if gw.savedCount() > 0 {
		t.Fatal("persister wrote a session despite a failed restore")
	}
}

func TestRestoreSessionLegacyTabFallsBackToLastSaved(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}
	gw.session = models.Session{
		LastSavedConnectionID: "s1",
		Tabs: []models.TabState{
			{ID: "t1", SQL: "SELECT 1"}, // legacy: no saved_connection_id
		},
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	tab := w.Tabs()[0]
	if tab.ConnectionID == "" {
		t.Error("legacy tab should inherit the session-level connection")
	}
	if tab.SavedConnectionID != "s1" {
		t.Errorf("legacy tab saved id = %q, want s1", tab.SavedConnectionID)
	}
}

func TestRestoreSessionLegacyBareQuery(t *testing.T) {
	gw := newFakeGateway()
	gw.session = models.Session{LastQuery: "SELECT 42"}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	tabs := w.Tabs()
	if len(tabs) != 1 {
		t.Fatalf("expected the single default tab, got %d", len(tabs))
	}
	if tabs[0].SQL != "SELECT 42" {
		t.Errorf("legacy last_query not seeded: %q", tabs[0].SQL)
	}
	if tabs[0].ConnectionID != "" {
		t.Error("a bare legacy query implies no connection")
	}
}

func TestRestoreSessionMissingActiveTabDefaultsToFirst(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}
	gw.session = models.Session{
		Tabs: []models.TabState{
			{ID: "t1", SQL: "SELECT 1", SavedConnectionID: "s1"},
			{ID: "t2", SQL: "SELECT 2", SavedConnectionID: "s1"},
		},
		ActiveTabID: "gone",
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := w.ActiveTabID(); got != "t1" {
		t.Errorf("active tab = %q, want first tab t1", got)
	}
}

func TestRestoreSessionSharedConnectionResolvedOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}
	gw.session = models.Session{
		LastSavedConnectionID: "s1",
		Tabs: []models.TabState{
			{ID: "t1", SQL: "SELECT 1", SavedConnectionID: "s1"},
			{ID: "t2", SQL: "SELECT 2", SavedConnectionID: "s1"},
		},
	}

	w := newTestWorkspace(gw)
	defer w.Close()

	if err := w.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	tabs := w.Tabs()
	if tabs[0].ConnectionID == "" || tabs[0].ConnectionID != tabs[1].ConnectionID {
		t.Errorf("tabs on the same saved connection must share one handle: %q vs %q",
			tabs[0].ConnectionID, tabs[1].ConnectionID)
	}
	if gw.handleSeq != 1 {
		t.Errorf("expected exactly one connect, got %d", gw.handleSeq)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	gw := newFakeGateway()
	gw.connections = []models.SavedConnection{savedConn("s1", "Primary", "appdb")}

	w := newTestWorkspace(gw)
	if err := w.LoadConnections(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Connect(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	markLoaded(w)

	first := w.Tabs()[0]
	if err := w.SetSQL(first.ID, "SELECT * FROM users"); err != nil {
		t.Fatal(err)
	}
	second := w.NewTab()
	if err := w.SetSQL(second.ID, "SELECT count(*) FROM orders"); err != nil {
		t.Fatal(err)
	}
	if err := w.RenameTab(second.ID, "order count"); err != nil {
		t.Fatal(err)
	}

	snapshot := w.Snapshot()
	w.Close()

	// A fresh process: same snapshot, same saved connections.
	gw2 := newFakeGateway()
	gw2.connections = gw.connections
	gw2.session = snapshot

	w2 := newTestWorkspace(gw2)
	defer w2.Close()
	if err := w2.RestoreSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	before := w.Tabs()
	after := w2.Tabs()
	if len(before) != len(after) {
		t.Fatalf("tab count changed across restart: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("tab %d id changed: %q -> %q", i, before[i].ID, after[i].ID)
		}
		if after[i].SQL != before[i].SQL {
			t.Errorf("tab %d sql changed: %q -> %q", i, before[i].SQL, after[i].SQL)
		}
		if after[i].Title != before[i].Title {
			t.Errorf("tab %d title changed: %q -> %q", i, before[i].Title, after[i].Title)
		}
		if after[i].Results != nil || after[i].Err != "" || after[i].IsLoading {
			t.Errorf("tab %d transient state must be empty after restore", i)
		}
	}
	if w2.ActiveTabID() != w.ActiveTabID() {
		t.Errorf("active tab changed across restart: %q -> %q", w.ActiveTabID(), w2.ActiveTabID())
	}
}
