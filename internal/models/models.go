package models

import "fmt"

// DBConfig holds everything needed to open a PostgreSQL connection.
type DBConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	DBName   string `json:"dbname"`
}

// Addr returns a short user@host:port/db label for logs and the UI.
func (c DBConfig) Addr() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.DBName)
}

// SavedConnection is a durable, user-named connection profile. Its ID is
// the only key that survives restarts; live handles never do.
type SavedConnection struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Config DBConfig `json:"config"`
}

// QueryResult is the gateway's answer to a query execution.
type QueryResult struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	AffectedRows int64    `json:"affected_rows"`
	QueryType    string   `json:"query_type"`
}

// ColumnDefinition carries the column metadata used to drive inline
// editing. IsPK/IsUnique are authoritative for row identification.
type ColumnDefinition struct {
	Name       string   `json:"name"`
	DataType   string   `json:"data_type"`
	IsPK       bool     `json:"is_pk"`
	IsUnique   bool     `json:"is_unique"`
	EnumValues []string `json:"enum_values,omitempty"`
}
