// Package gateway defines the boundary between the workspace controller
// and everything that actually touches a database or the disk: opening
// connections, running queries, introspecting metadata, and persisting
// the saved-connection list and session snapshot.
package gateway

import (
	"context"
	"errors"

	"github.com/pgdeck/pgdeck/internal/models"
)

// ErrHandleNotFound is returned when a live handle does not exist,
// typically because the process restarted or the connection was closed.
var ErrHandleNotFound = errors.New("connection not found")

// RowIdentifier addresses a row in a bound-parameter cell update: the
// column, its original value (nil means IS NULL), and its data type used
// for the placeholder cast.
type RowIdentifier struct {
	Column   string
	Value    *string
	DataType string
}

// Gateway is the full operation surface the controller consumes. Live
// handles are opaque strings valid only for the current process.
type Gateway interface {
	LoadConnections(ctx context.Context) ([]models.SavedConnection, error)
	SaveConnection(ctx context.Context, conn models.SavedConnection) error
	DeleteConnection(ctx context.Context, id string) error

	ConnectDB(ctx context.Context, config models.DBConfig) (string, error)
	Disconnect(ctx context.Context, handle string) error

	GetSchemas(ctx context.Context, handle string) ([]string, error)
	GetTables(ctx context.Context, handle, schema string) ([]string, error)
	GetColumns(ctx context.Context, handle, schema, table string) ([]models.ColumnDefinition, error)

	RunQuery(ctx context.Context, handle, sql string) (models.QueryResult, error)
	UpdateCell(ctx context.Context, handle, schema, table, column, colType string, newValue *string, identifiers []RowIdentifier) (int64, error)

	SaveSession(ctx context.Context, session models.Session) error
	LoadSession(ctx context.Context) (models.Session, error)
}

// Driver is one open database connection behind a live handle.
type Driver interface {
	Query(ctx context.Context, sql string) (models.QueryResult, error)
	GetSchemas(ctx context.Context) ([]string, error)
	GetTables(ctx context.Context, schema string) ([]string, error)
	GetColumns(ctx context.Context, schema, table string) ([]models.ColumnDefinition, error)
	UpdateCell(ctx context.Context, schema, table, column, colType string, newValue *string, identifiers []RowIdentifier) (int64, error)
	Ping(ctx context.Context) error
	Close()
}
