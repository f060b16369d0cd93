// Package workspace implements the controller behind the SQL workspace:
// the saved-connection tree, the tab store, session reconciliation at
// startup, query execution with table-context inference, inline
// update/delete, and debounced session persistence.
//
// All state lives behind one mutex; gateway calls always run outside it
// against immutable snapshots captured at invocation time. Results
// coming back from the gateway are applied only if the target tab still
// exists and still has the generation the call was started with.
package workspace

import (
	"errors"
	"sync"
	"time"

	"github.com/pgdeck/pgdeck/internal/config"
	"github.com/pgdeck/pgdeck/internal/gateway"
	"github.com/pgdeck/pgdeck/internal/history"
)

var (
	// ErrTabNotFound is returned for operations on a closed or unknown tab.
	ErrTabNotFound = errors.New("tab not found")
	// ErrQueryInFlight rejects a run on a tab whose previous query has not
	// finished yet.
	ErrQueryInFlight = errors.New("a query is already running on this tab")
	// ErrConnectInFlight rejects a connect while another one for the same
	// saved connection is still pending.
	ErrConnectInFlight = errors.New("connection attempt already in progress")
	// ErrNotConnected is returned when an operation needs a live handle the
	// tab or node does not have.
	ErrNotConnected = errors.New("not connected")
	// ErrUnknownConnection is returned for an id missing from the saved
	// connection list.
	ErrUnknownConnection = errors.New("unknown saved connection")
)

// Workspace is the single-writer state container for the whole session.
type Workspace struct {
	mu  sync.Mutex
	gw  gateway.Gateway
	cfg *config.Config

	nodes []*ConnectionNode

	tabs        []*Tab
	activeTabID string
	tabSeq      int

	// activeConnection is the globally selected live handle, used for
	// highlighting; activeSavedID is its durable counterpart.
	activeConnection string
	activeSavedID    string

	// loaded flips to true only after a successful session restore. Until
	// then the persister must not write: overwriting a good on-disk
	// snapshot with an empty default state would destroy the user's
	// session.
	loaded bool

	persist *persister
	hist    *history.Store
	onEvent func(Event)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithHistory attaches a query history store.
func WithHistory(h *history.Store) Option {
	return func(w *Workspace) { w.hist = h }
}

// WithPersistDelay overrides the debounce window (tests).
func WithPersistDelay(d time.Duration) Option {
	return func(w *Workspace) { w.persist.delay = d }
}

// New creates a workspace with a single empty tab.
func New(gw gateway.Gateway, cfg *config.Config, opts ...Option) *Workspace {
	w := &Workspace{
		gw:  gw,
		cfg: cfg,
	}
	w.persist = newPersister(time.Second, w.writeSession)
	for _, opt := range opts {
		opt(w)
	}
	w.tabs = []*Tab{w.newTabLocked()}
	w.activeTabID = w.tabs[0].ID
	return w
}

// SetEventHandler registers the sink for workspace events. The handler
// is called from whatever goroutine completed the operation.
func (w *Workspace) SetEventHandler(fn func(Event)) {
	w.mu.Lock()
	w.onEvent = fn
	w.mu.Unlock()
}

func (w *Workspace) emit(ev Event) {
	w.mu.Lock()
	fn := w.onEvent
	w.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Close flushes nothing but stops the pending persist timer.
func (w *Workspace) Close() {
	w.persist.stop()
}

// Loaded reports whether session restoration has completed successfully.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// ActiveConnection returns the globally selected live handle and its
// saved id.
func (w *Workspace) ActiveConnection() (handle, savedID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeConnection, w.activeSavedID
}
