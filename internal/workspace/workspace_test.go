package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pgdeck/pgdeck/internal/config"
	"github.com/pgdeck/pgdeck/internal/gateway"
	"github.com/pgdeck/pgdeck/internal/models"
)

// fakeGateway is an in-memory Gateway for controller tests. Failures
// are injected per operation; RunQuery can be made to block so tests
// can observe in-flight state.
type fakeGateway struct {
	mu sync.Mutex

	connections []models.SavedConnection
	session     models.Session
	sessionErr  error

	handleSeq   int
	failConnect map[string]error // keyed by DBConfig.DBName
	open        map[string]bool  // live handles

	schemas    []string
	schemasErr error
	tables     map[string][]string // keyed by schema
	tablesErr  error
	columns    map[string][]models.ColumnDefinition // keyed by "schema.table"
	columnsErr error

	queryResult models.QueryResult
	queryErr    error
	queryBlock  chan struct{} // when non-nil, RunQuery waits on it
	queries     []string

	savedSessions []models.Session
	updates       []string // "schema.table.column" per UpdateCell
	updateErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		failConnect: make(map[string]error),
		open:        make(map[string]bool),
		tables:      make(map[string][]string),
		columns:     make(map[string][]models.ColumnDefinition),
		schemas:     []string{"public"},
	}
}

func (f *fakeGateway) LoadConnections(ctx context.Context) ([]models.SavedConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SavedConnection(nil), f.connections...), nil
}

func (f *fakeGateway) SaveConnection(ctx context.Context, conn models.SavedConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.connections {
		if c.ID == conn.ID {
			f.connections[i] = conn
			return nil
		}
	}
	f.connections = append(f.connections, conn)
	return nil
}

func (f *fakeGateway) DeleteConnection(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.connections[:0]
	for _, c := range f.connections {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.connections = kept
	return nil
}

func (f *fakeGateway) ConnectDB(ctx context.Context, cfg models.DBConfig) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failConnect[cfg.DBName]; err != nil {
		return "", err
	}
	f.handleSeq++
	handle := fmt.Sprintf("live-%d", f.handleSeq)
	f.open[handle] = true
	return handle, nil
}

func (f *fakeGateway) Disconnect(ctx context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, handle)
	return nil
}

func (f *fakeGateway) GetSchemas(ctx context.Context, handle string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.schemas...), f.schemasErr
}

func (f *fakeGateway) GetTables(ctx context.Context, handle, schema string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return append([]string(nil), f.tables[schema]...), nil
}

func (f *fakeGateway) GetColumns(ctx context.Context, handle, schema, table string) ([]models.ColumnDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return append([]models.ColumnDefinition(nil), f.columns[schema+"."+table]...), nil
}

func (f *fakeGateway) RunQuery(ctx context.Context, handle, sql string) (models.QueryResult, error) {
	f.mu.Lock()
	block := f.queryBlock
	f.queries = append(f.queries, sql)
	result := f.queryResult
	err := f.queryErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return models.QueryResult{}, err
	}
	return result, nil
}

func (f *fakeGateway) UpdateCell(ctx context.Context, handle, schema, table, column, colType string, newValue *string, ids []gateway.RowIdentifier) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updates = append(f.updates, schema+"."+table+"."+column)
	return 1, nil
}

func (f *fakeGateway) SaveSession(ctx context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedSessions = append(f.savedSessions, session)
	return nil
}

func (f *fakeGateway) LoadSession(ctx context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeGateway) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.savedSessions)
}

func (f *fakeGateway) lastSaved() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.savedSessions[len(f.savedSessions)-1]
}

func savedConn(id, name, db string) models.SavedConnection {
	return models.SavedConnection{
		ID:   id,
		Name: name,
		Config: models.DBConfig{
			Host: "localhost", Port: 5432, User: "postgres", DBName: db,
		},
	}
}

func newTestWorkspace(gw gateway.Gateway, opts ...Option) *Workspace {
	return New(gw, config.GetDefaults(), opts...)
}

var errBoom = errors.New("boom")

// markLoaded fakes a completed restore so persister-dependent paths are
// live without running the full reconciler.
func markLoaded(w *Workspace) {
	w.mu.Lock()
	w.loaded = true
	w.mu.Unlock()
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
