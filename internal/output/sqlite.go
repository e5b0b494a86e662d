// internal/output/sqlite.go
package output

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var sqlIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLiteWriter writes rows into a table in a SQLite database file. The
// table is created from the first batch's key union; the sink is separate
// from the session store and safe to point at a fresh file.
type SQLiteWriter struct {
	db      *sql.DB
	table   string
	columns []string
}

// NewSQLiteWriter opens or creates the database file.
func NewSQLiteWriter(path, table string) (*SQLiteWriter, error) {
	if table == "" {
		table = "leads"
	}
	if !sqlIdentifierRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteWriter{db: db, table: table}, nil
}

// Write creates the table from the batch's columns if needed and inserts
// every row inside one transaction.
func (w *SQLiteWriter) Write(rows []map[string]interface{}) error {
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

	placeholders := make([]string, len(w.columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		w.table, strings.Join(w.columns, ", "), strings.Join(placeholders, ", "))

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

// Close closes the database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// createTable infers a column type from the first non-nil value seen per
// column and issues CREATE TABLE IF NOT EXISTS.
func (w *SQLiteWriter) createTable(rows []map[string]interface{}) error {
	defs := make([]string, 0, len(w.columns))
	for _, col := range w.columns {
		if !sqlIdentifierRe.MatchString(col) {
			return fmt.Errorf("invalid column name: %s", col)
		}
		defs = append(defs, col+" "+inferSQLiteType(firstValue(rows, col)))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", w.table, strings.Join(defs, ", "))
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}
	return nil
}

func firstValue(rows []map[string]interface{}, col string) interface{} {
	for _, row := range rows {
		if v, ok := row[col]; ok && v != nil {
			return v
		}
	}
	return nil
}

func inferSQLiteType(value interface{}) string {
	switch value.(type) {
	case int, int32, int64, bool:
		return "INTEGER"
	case float32, float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

// convertSQLValue normalizes values the drivers cannot bind directly.
func convertSQLValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return v.Format(time.RFC3339)
	case []string:
		return strings.Join(v, " ")
	case string, bool, int, int32, int64, float32, float64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
