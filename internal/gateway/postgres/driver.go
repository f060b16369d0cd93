// Package postgres implements the gateway driver for PostgreSQL on top
// of pgx connection pools.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgdeck/pgdeck/internal/gateway"
	"github.com/pgdeck/pgdeck/internal/models"
)

// Driver is one open pgx pool.
type Driver struct {
	pool *pgxpool.Pool
}

// Open connects to the database described by config and verifies the
// connection with a ping.
func Open(ctx context.Context, config models.DBConfig) (*Driver, error) {
	connString := buildConnString(config)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 3 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Driver{pool: pool}, nil
}

func buildConnString(config models.DBConfig) string {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s database=%s sslmode=prefer",
		config.Host, config.Port, config.User, config.DBName,
	)
	if config.Password != "" {
		connStr += fmt.Sprintf(" password=%s", config.Password)
	}
	return connStr
}

// Query executes arbitrary SQL and returns columns, rows and the
// affected-row count. The query type is inferred from the first keyword.
func (d *Driver) Query(ctx context.Context, sql string) (models.QueryResult, error) {
	result := models.QueryResult{QueryType: queryType(sql)}

	rows, err := d.pool.Query(ctx, sql)
	if err != nil {
		return models.QueryResult{}, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	result.Columns = make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		result.Columns[i] = string(fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.QueryResult{}, err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return models.QueryResult{}, err
	}

	rows.Close()
	result.AffectedRows = rows.CommandTag().RowsAffected()
	return result, nil
}

func queryType(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

// normalizeValue maps pgx-native values onto types the rest of the app
// (and JSON) can carry: byte slices and uuids become strings, timestamps
// become formatted strings, scalars pass through.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case time.Time:
		return val.Format("2006-01-02 15:04:05.999999-07")
	case map[string]any, []any:
		return val
	case bool, string, int16, int32, int64, float32, float64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetSchemas lists user-visible schemas.
func (d *Driver) GetSchemas(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg_%'
		  AND schema_name != 'information_schema'
		ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// GetTables lists the tables of one schema.
func (d *Driver) GetTables(ctx context.Context, schema string) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetColumns returns column metadata including primary-key, uniqueness
// and enum information, straight from pg_catalog.
func (d *Driver) GetColumns(ctx context.Context, schema, table string) ([]models.ColumnDefinition, error) {
	const sql = `
		SELECT
			a.attname AS column_name,
			format_type(a.atttypid, a.atttypmod) AS data_type,
			EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid
				  AND a.attnum = ANY(i.indkey::int[])
				  AND i.indisprimary
			) AS is_pk,
			EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid
				  AND a.attnum = ANY(i.indkey::int[])
				  AND i.indisunique AND a.attnotnull
			) AS is_unique,
			(
				SELECT array_agg(e.enumlabel ORDER BY e.enumsortorder)
				FROM pg_enum e
				WHERE e.enumtypid = t.oid
			) AS enum_values
		FROM pg_attribute a
		JOIN pg_class c ON a.attrelid = c.oid
		JOIN pg_namespace n ON c.relnamespace = n.oid
		JOIN pg_type t ON a.atttypid = t.oid
		WHERE n.nspname = $1 AND c.relname = $2
		  AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`

	rows, err := d.pool.Query(ctx, sql, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var cols []models.ColumnDefinition
	for rows.Next() {
		var col models.ColumnDefinition
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsPK, &col.IsUnique, &col.EnumValues); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// UpdateCell updates a single cell with bound parameters, addressing the
// row by the given identifiers. A nil identifier value becomes IS NULL;
// each bound identifier is cast to its column's data type.
func (d *Driver) UpdateCell(ctx context.Context, schema, table, column, colType string, newValue *string, identifiers []gateway.RowIdentifier) (int64, error) {
	cast := ""
	if colType != "" {
		cast = "::" + colType
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `UPDATE %s.%s SET %s = $1%s WHERE `,
		quoteIdent(schema), quoteIdent(table), quoteIdent(column), cast)

	args := []any{normalizeNewValue(colType, newValue)}
	bindIndex := 2
	for i, id := range identifiers {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		if id.Value != nil {
			fmt.Fprintf(&sb, `%s = $%d::%s`, quoteIdent(id.Column), bindIndex, id.DataType)
			args = append(args, *id.Value)
			bindIndex++
		} else {
			fmt.Fprintf(&sb, `%s IS NULL`, quoteIdent(id.Column))
		}
	}

	tag, err := d.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// normalizeNewValue converts a JSON array literal into Postgres array
// syntax when the target column is an array type; other values bind
// as-is.
func normalizeNewValue(colType string, newValue *string) any {
	if newValue == nil {
		return nil
	}
	v := *newValue
	isArrayType := strings.HasPrefix(colType, "_") || strings.HasSuffix(colType, "[]")
	if !isArrayType || !strings.HasPrefix(strings.TrimSpace(v), "[") {
		return v
	}

	var arr []any
	if err := json.Unmarshal([]byte(v), &arr); err != nil {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('{')
	for i, elem := range arr {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch e := elem.(type) {
		case nil:
			sb.WriteString("NULL")
		case string:
			sb.WriteByte('"')
			for _, c := range e {
				if c == '"' || c == '\\' {
					sb.WriteByte('\\')
				}
				sb.WriteRune(c)
			}
			sb.WriteByte('"')
		default:
			fmt.Fprintf(&sb, "%v", e)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Ping verifies the connection is still alive.
func (d *Driver) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close releases the pool.
func (d *Driver) Close() {
	d.pool.Close()
}
