package workspace

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pgdeck/pgdeck/internal/models"
)

// persister is a trailing-edge debouncer: every schedule restarts the
// quiescence window, and only the last pending write survives a burst.
type persister struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	write func()
}

func newPersister(delay time.Duration, write func()) *persister {
	return &persister{delay: delay, write: write}
}

func (p *persister) schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.write)
}

func (p *persister) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// schedulePersist queues a session write after the debounce window.
// Writes are suppressed entirely until restoration has succeeded once;
// see RestoreSession.
func (w *Workspace) schedulePersist() {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()
	if !loaded {
		return
	}
	w.persist.schedule()
}

// Snapshot renders the current workspace as the persisted session form.
// Only durable fields go in; results, errors and column metadata never
// do.
func (w *Workspace) Snapshot() models.Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	session := models.Session{
		LastConnectionID:      w.activeConnection,
		LastSavedConnectionID: w.activeSavedID,
		ActiveTabID:           w.activeTabID,
	}

	for _, t := range w.tabs {
		session.Tabs = append(session.Tabs, models.TabState{
			ID:                t.ID,
			Title:             t.Title,
			SQL:               t.SQL,
			ConnectionID:      t.ConnectionID,
			SavedConnectionID: t.SavedConnectionID,
			DBName:            t.DBName,
		})
	}

	if active := w.findTabLocked(w.activeTabID); active != nil {
		session.LastQuery = active.SQL
		session.LastTable = active.SelectedTable
	}
	return session
}

func (w *Workspace) writeSession() {
	session := w.Snapshot()
	if err := w.gw.SaveSession(context.Background(), session); err != nil {
		log.Printf("failed to save session: %v", err)
	}
}

// Flush persists immediately, bypassing the debounce. Used at shutdown.
func (w *Workspace) Flush() {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()
	if !loaded {
		return
	}
	w.persist.stop()
	w.writeSession()
}
