package workspace

import (
	"testing"
	"time"
)

func TestPersistDebounceCoalescesBursts(t *testing.T) {
	gw := newFakeGateway()
	w := newTestWorkspace(gw, WithPersistDelay(30*time.Millisecond))
	defer w.Close()
	markLoaded(w)

	// A burst of mutations within the window collapses into one write.
	w.NewTab()
	w.NewTab()
	first := w.Tabs()[0].ID
	if err := w.SetSQL(first, "SELECT 1"); err != nil {
		t.Fatal(err)
	}

	if !waitFor(time.Second, func() bool { return gw.savedCount() >= 1 }) {
		t.Fatal("debounced write never fired")
	}
	time.Sleep(60 * time.Millisecond)
	if got := gw.savedCount(); got != 1 {
		t.Errorf("burst produced %d writes, want 1", got)
	}

	saved := gw.lastSaved()
	if len(saved.Tabs) != 3 {
		t.Errorf("persisted %d tabs, want 3", len(saved.Tabs))
	}
	if saved.Tabs[0].SQL != "SELECT 1" {
		t.Errorf("persisted sql = %q", saved.Tabs[0].SQL)
	}
}

func TestPersistSuppressedBeforeLoad(t *testing.T) {
	gw := newFakeGateway()
	w := newTestWorkspace(gw, WithPersistDelay(10*time.Millisecond))
	defer w.Close()

	w.NewTab()
	w.Flush()
	time.Sleep(50 * time.Millisecond)
	if got := gw.savedCount(); got != 0 {
		t.Errorf("persisted %d sessions before restore completed", got)
	}
}

func TestFlushWritesImmediately(t *testing.T) {
	gw := newFakeGateway()
	w := newTestWorkspace(gw, WithPersistDelay(time.Hour))
	defer w.Close()
	markLoaded(w)

	tab := w.NewTab()
	if err := w.SetSQL(tab.ID, "SELECT now()"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got := gw.savedCount(); got != 1 {
		t.Fatalf("flush produced %d writes, want 1", got)
	}
	saved := gw.lastSaved()
	if saved.ActiveTabID != tab.ID {
		t.Errorf("persisted active tab = %q, want %q", saved.ActiveTabID, tab.ID)
	}
}

func TestSnapshotCarriesOnlyDurableFields(t *testing.T) {
	gw := newFakeGateway()
	w, tabID := editableWorkspace(t, gw, pkDefs())
	markLoaded(w)

	snap := w.Snapshot()
	if len(snap.Tabs) != 1 {
		t.Fatalf("expected 1 tab, got %d", len(snap.Tabs))
	}
	if snap.Tabs[0].ID != tabID || snap.Tabs[0].SQL != "SELECT * FROM users" {
		t.Errorf("durable tab fields wrong: %+v", snap.Tabs[0])
	}
	if snap.LastQuery != "SELECT * FROM users" {
		t.Errorf("last_query = %q", snap.LastQuery)
	}
	if snap.LastTable != "public.users" {
		t.Errorf("last_table = %q", snap.LastTable)
	}
	if snap.LastSavedConnectionID != "s1" {
		t.Errorf("last_saved_connection_id = %q", snap.LastSavedConnectionID)
	}
}
