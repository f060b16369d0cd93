package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pgdeck/pgdeck/internal/models"
)

// OpenFunc opens a database connection for a config and returns the
// driver behind it.
type OpenFunc func(ctx context.Context, config models.DBConfig) (Driver, error)

// Local is the in-process Gateway: a registry of live drivers keyed by
// freshly issued handles, plus file-backed connection and session
// storage. Handles are never persisted as reconnection keys; a restart
// invalidates all of them.
type Local struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	store   *Storage
	open    OpenFunc
}

// NewLocal creates a Local gateway over the given storage and opener.
func NewLocal(store *Storage, open OpenFunc) *Local {
	return &Local{
		drivers: make(map[string]Driver),
		store:   store,
		open:    open,
	}
}

func (l *Local) LoadConnections(ctx context.Context) ([]models.SavedConnection, error) {
	return l.store.LoadConnections()
}

func (l *Local) SaveConnection(ctx context.Context, conn models.SavedConnection) error {
	return l.store.SaveConnection(conn)
}

func (l *Local) DeleteConnection(ctx context.Context, id string) error {
	return l.store.DeleteConnection(id)
}

// ConnectDB opens a fresh connection and issues a new live handle for it.
func (l *Local) ConnectDB(ctx context.Context, config models.DBConfig) (string, error) {
	driver, err := l.open(ctx, config)
	if err != nil {
		return "", err
	}

	handle := uuid.New().String()
	l.mu.Lock()
	l.drivers[handle] = driver
	l.mu.Unlock()
	return handle, nil
}

// Disconnect closes a live connection and forgets its handle.
func (l *Local) Disconnect(ctx context.Context, handle string) error {
	l.mu.Lock()
	driver, ok := l.drivers[handle]
	delete(l.drivers, handle)
	l.mu.Unlock()

	if !ok {
		return ErrHandleNotFound
	}
	driver.Close()
	return nil
}

func (l *Local) driver(handle string) (Driver, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	driver, ok := l.drivers[handle]
	if !ok {
		return nil, ErrHandleNotFound
	}
	return driver, nil
}

func (l *Local) GetSchemas(ctx context.Context, handle string) ([]string, error) {
	driver, err := l.driver(handle)
	if err != nil {
		return nil, err
	}
	return driver.GetSchemas(ctx)
}

func (l *Local) GetTables(ctx context.Context, handle, schema string) ([]string, error) {
	driver, err := l.driver(handle)
	if err != nil {
		return nil, err
	}
	return driver.GetTables(ctx, schema)
}

func (l *Local) GetColumns(ctx context.Context, handle, schema, table string) ([]models.ColumnDefinition, error) {
	driver, err := l.driver(handle)
	if err != nil {
		return nil, err
	}
	return driver.GetColumns(ctx, schema, table)
}

func (l *Local) RunQuery(ctx context.Context, handle, sql string) (models.QueryResult, error) {
	driver, err := l.driver(handle)
	if err != nil {
		return models.QueryResult{}, err
	}
	return driver.Query(ctx, sql)
}

func (l *Local) UpdateCell(ctx context.Context, handle, schema, table, column, colType string, newValue *string, identifiers []RowIdentifier) (int64, error) {
	driver, err := l.driver(handle)
	if err != nil {
		return 0, err
	}
	return driver.UpdateCell(ctx, schema, table, column, colType, newValue, identifiers)
}

func (l *Local) SaveSession(ctx context.Context, session models.Session) error {
	return l.store.SaveSession(session)
}

func (l *Local) LoadSession(ctx context.Context) (models.Session, error) {
	return l.store.LoadSession()
}

// Close disconnects every live driver. Used at shutdown.
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for handle, driver := range l.drivers {
		driver.Close()
		delete(l.drivers, handle)
	}
}
