// internal/output/postgres.go
package output

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// PostgresWriter writes rows into a PostgreSQL table. Like the SQLite
// sink it derives the schema from the first batch.
type PostgresWriter struct {
	db      *sql.DB
	table   string
	columns []string
}

// NewPostgresWriter connects using a lib/pq DSN (postgres:// URL or
// key=value form).
func NewPostgresWriter(dsn, table string) (*PostgresWriter, error) {
	if table == "" {
		table = "leads"
	}
	if !sqlIdentifierRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &PostgresWriter{db: db, table: table}, nil
}

// Write creates the table from the batch's columns if needed and inserts
// every row inside one transaction.
func (w *PostgresWriter) Write(rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	if w.columns == nil {
		w.columns = collectHeaders(rows)
		if err := w.createTable(rows); err != nil {
			return err
		}
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(w.columns))
	placeholders := make([]string, len(w.columns))
	for i, col := range w.columns {
		quoted[i] = quoteIdentifier(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(w.table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]interface{}, len(w.columns))
		for i, col := range w.columns {
			args[i] = convertSQLValue(row[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the connection pool.
func (w *PostgresWriter) Close() error {
	return w.db.Close()
}

func (w *PostgresWriter) createTable(rows []map[string]interface{}) error {
	defs := make([]string, 0, len(w.columns))
	for _, col := range w.columns {
		if !sqlIdentifierRe.MatchString(col) {
			return fmt.Errorf("invalid column name: %s", col)
		}
		defs = append(defs, quoteIdentifier(col)+" "+inferPostgresType(firstValue(rows, col)))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdentifier(w.table), strings.Join(defs, ", "))
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}
	return nil
}

func inferPostgresType(value interface{}) string {
	switch value.(type) {
	case int, int32, int64:
		return "BIGINT"
	case float32, float64:
		return "DOUBLE PRECISION"
	case bool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// quoteIdentifier double-quotes an identifier for PostgreSQL.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
