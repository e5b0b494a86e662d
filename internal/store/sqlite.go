// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Bucket names for the single-document families.
const (
	bucketSettings = "settings"
	bucketResults  = "results"
	bucketSaved    = "saved"
)

// Store is the persistence contract for settings, the latest extraction
// result, the cumulative saved state and saved profiles. Results are
// replaced wholesale every pass; saved state only grows through
// AppendResults; profiles upsert by normalized profile URL.
type Store interface {
	Settings(ctx context.Context) (json.RawMessage, error)
	SetSettings(ctx context.Context, raw json.RawMessage) error

	Results(ctx context.Context) (types.ExtractionResult, error)
	SetResults(ctx context.Context, result types.ExtractionResult) error

	Saved(ctx context.Context) (types.SavedState, error)
	AppendResults(ctx context.Context, result types.ExtractionResult) (types.SavedState, error)
	ClearSaved(ctx context.Context) error

	SavedProfiles(ctx context.Context) ([]types.ProfileRecord, error)
	UpsertProfile(ctx context.Context, profile types.ProfileRecord) error
	DeleteProfile(ctx context.Context, profileURL string) error
	ClearProfiles(ctx context.Context) error

	Close() error
}

// SQLiteStore implements Store over a local SQLite file: one JSON document
// per bucket plus a profiles table. The connection pool is capped at one
// connection, so AppendResults' read-merge-write runs serialized and two
// concurrent extraction passes cannot lose each other's leads.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger utils.Logger
}

// NewSQLiteStore opens (creating if needed) the store database at path.
func NewSQLiteStore(path string, logger utils.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store database path is required")
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store database: %w", err)
	}

	// Single writer keeps AppendResults serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.WithField("component", "store"),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS buckets (
			name TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT NOT NULL,
			profile_key TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_id ON profiles (id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate store schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) readBucket(ctx context.Context, name string, out interface{}) (bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM buckets WHERE name = ?", name).Scan(&doc)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read bucket %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return false, fmt.Errorf("failed to decode bucket %s: %w", name, err)
	}
	return true, nil
}

func (s *SQLiteStore) writeBucket(ctx context.Context, name string, value interface{}) error {
	doc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode bucket %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO buckets (name, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		name, string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write bucket %s: %w", name, err)
	}
	return nil
}

// Settings returns the raw settings document, nil when none is stored.
func (s *SQLiteStore) Settings(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	found, err := s.readBucket(ctx, bucketSettings, &raw)
	if err != nil || !found {
		return nil, err
	}
	return raw, nil
}

// SetSettings replaces the stored settings document.
func (s *SQLiteStore) SetSettings(ctx context.Context, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("settings document is not valid JSON")
	}
	return s.writeBucket(ctx, bucketSettings, raw)
}

// Results returns the latest extraction result; the zero value when none
// has been stored yet.
func (s *SQLiteStore) Results(ctx context.Context) (types.ExtractionResult, error) {
	var result types.ExtractionResult
	_, err := s.readBucket(ctx, bucketResults, &result)
	return result, err
}

// SetResults replaces the latest extraction result wholesale.
func (s *SQLiteStore) SetResults(ctx context.Context, result types.ExtractionResult) error {
	return s.writeBucket(ctx, bucketResults, result)
}

// Saved returns the cumulative saved state; empty when nothing was saved.
func (s *SQLiteStore) Saved(ctx context.Context) (types.SavedState, error) {
	var saved types.SavedState
	_, err := s.readBucket(ctx, bucketSaved, &saved)
	return saved, err
}

// AppendResults merges result into the saved state inside one transaction
// and returns the merged state. The saved document is re-read inside the
// transaction so concurrent callers serialize instead of clobbering.
func (s *SQLiteStore) AppendResults(ctx context.Context, result types.ExtractionResult) (types.SavedState, error) {
	var merged types.SavedState

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return merged, fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	var saved types.SavedState
	var doc string
	err = tx.QueryRowContext(ctx,
		"SELECT doc FROM buckets WHERE name = ?", bucketSaved).Scan(&doc)
	switch {
	case err == sql.ErrNoRows:
		// First append, start from empty.
	case err != nil:
		return merged, fmt.Errorf("failed to read saved state: %w", err)
	default:
		if err := json.Unmarshal([]byte(doc), &saved); err != nil {
			return merged, fmt.Errorf("failed to decode saved state: %w", err)
		}
	}

	merged = Merge(saved, result)

	encoded, err := json.Marshal(merged)
	if err != nil {
		return merged, fmt.Errorf("failed to encode saved state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO buckets (name, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		bucketSaved, string(encoded), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return merged, fmt.Errorf("failed to write saved state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return merged, fmt.Errorf("failed to commit append: %w", err)
	}

	counts := merged.Counts()
	s.logger.Debugf("appended results: %d emails, %d phones, %d social links",
		counts["emails"], counts["phones"], counts["social_links"])
	return merged, nil
}

// ClearSaved removes the cumulative saved state.
func (s *SQLiteStore) ClearSaved(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM buckets WHERE name = ?", bucketSaved); err != nil {
		return fmt.Errorf("failed to clear saved state: %w", err)
	}
	return nil
}

// SavedProfiles returns all stored profiles, most recently updated first.
func (s *SQLiteStore) SavedProfiles(ctx context.Context) ([]types.ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM profiles ORDER BY updated_at DESC, profile_key ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.ProfileRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var profile types.ProfileRecord
		if err := json.Unmarshal([]byte(doc), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// UpsertProfile inserts or replaces a profile keyed by its normalized
// profile URL, so re-extracting the same profile updates in place.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile types.ProfileRecord) error {
	if profile.ProfileURL == "" {
		return fmt.Errorf("profile URL is required")
	}

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, profile_key, doc, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_key) DO UPDATE SET
			id = excluded.id, doc = excluded.doc, updated_at = excluded.updated_at`,
		profile.ID, NormalizeURL(profile.ProfileURL), string(doc),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// DeleteProfile removes the profile stored under profileURL's identity.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, profileURL string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM profiles WHERE profile_key = ?", NormalizeURL(profileURL)); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// ClearProfiles removes every stored profile.
func (s *SQLiteStore) ClearProfiles(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("failed to clear profiles: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
