// Package database provides SQLite implementation of the Store interface.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/factchecker/misinfo-detector/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			method TEXT NOT NULL,
			request_size INTEGER NOT NULL,
			response_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_logs(timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSetting retrieves a setting by key. A missing key returns nil, nil.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)

	var st models.Setting
	err := row.Scan(&st.Key, &st.Value, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// PutSetting inserts or replaces a setting.
func (s *SQLiteStore) PutSetting(ctx context.Context, setting *models.Setting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		setting.Key, setting.Value, setting.UpdatedAt)
	return err
}

// ListSettings returns every stored setting ordered by key.
func (s *SQLiteStore) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		var st models.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, &st)
	}
	return settings, rows.Err()
}

// LogRequest stores an audit log entry.
func (s *SQLiteStore) LogRequest(ctx context.Context, log *models.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, request_id, endpoint, method, request_size, response_code, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.RequestID, log.Endpoint, log.Method, log.RequestSize,
		log.ResponseCode, log.DurationMs, log.Timestamp)
	return err
}

// GetAuditLogs returns paginated audit logs.
func (s *SQLiteStore) GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, endpoint, method, request_size, response_code, duration_ms, timestamp
		FROM audit_logs ORDER BY timestamp DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.RequestID, &l.Endpoint, &l.Method,
			&l.RequestSize, &l.ResponseCode, &l.DurationMs, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
