package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"), maxEntries)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndGetRecent(t *testing.T) {
	s := newTestStore(t, 0)

	entries := []Entry{
		{ConnectionName: "Primary", DatabaseName: "appdb", Query: "SELECT 1", Duration: 12 * time.Millisecond, Success: true},
		{ConnectionName: "Primary", DatabaseName: "appdb", Query: "SELECT broken", Success: false, ErrorMessage: "syntax error"},
	}
	for _, e := range entries {
		if err := s.Add(e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Most recent first.
	if got[0].Query != "SELECT broken" || got[0].Success {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[0].ErrorMessage != "syntax error" {
		t.Errorf("error message = %q", got[0].ErrorMessage)
	}
	if got[1].Query != "SELECT 1" || !got[1].Success {
		t.Errorf("second entry = %+v", got[1])
	}
	if got[1].Duration != 12*time.Millisecond {
		t.Errorf("duration = %v", got[1].Duration)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t, 0)

	for _, q := range []string{"SELECT * FROM users", "SELECT * FROM orders", "DELETE FROM users"} {
		if err := s.Add(Entry{ConnectionName: "c", DatabaseName: "d", Query: q, Success: true}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Search("users", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Query != "SELECT * FROM users" && e.Query != "DELETE FROM users" {
			t.Errorf("unexpected match %q", e.Query)
		}
	}
}

func TestTrimBoundsTableSize(t *testing.T) {
	s := newTestStore(t, 3)

	for i := 0; i < 6; i++ {
		if err := s.Add(Entry{ConnectionName: "c", DatabaseName: "d", Query: "SELECT 1", Success: true}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetRecent(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected history trimmed to 3 entries, got %d", len(got))
	}
}
