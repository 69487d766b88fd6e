// Package db persists riqwest log records in a SQLite database so past
// requests and responses can be inspected later.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	tag        TEXT NOT NULL,
	record     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// Entry is one stored record.
type Entry struct {
	ID        int64
	Tag       string
	Record    map[string]any
	CreatedAt time.Time
}

// History is an http.Logger that stores every record it receives.
type History struct {
	db           *sql.DB
	queryTimeout time.Duration

	mu      sync.Mutex
	lastErr error
}

// Open opens (creating if needed) a history database.
// Supported formats:
// - sqlite://path/to/history.db
// - sqlite:./history.db
// - path/to/history.db
func Open(connectionString string) (*History, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writes
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &History{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Log stores the record. Write failures are kept and reported by Err,
// since the logging hook cannot fail a request.
func (h *History) Log(tag string, record rhttp.Fields) {
	data, err := json.Marshal(record)
	if err != nil {
		h.setErr(fmt.Errorf("encode record: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.queryTimeout)
	defer cancel()

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO records (tag, record, created_at) VALUES (?, ?, ?)`,
		tag, string(data), time.Now().UTC())
	if err != nil {
		h.setErr(fmt.Errorf("insert record: %w", err))
	}
}

// Err returns the most recent write error, if any.
func (h *History) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *History) setErr(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.queryTimeout)
	defer cancel()

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, tag, record, created_at FROM records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e    Entry
			data string
		)
		if err := rows.Scan(&e.ID, &e.Tag, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &e.Record); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// parseConnectionString turns a connection string into a SQLite DSN.
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return "", fmt.Errorf("empty connection string")
	}

	if strings.HasPrefix(connStr, "sqlite://") {
		return strings.TrimPrefix(connStr, "sqlite://"), nil
	}
	if strings.HasPrefix(connStr, "sqlite:") {
		return strings.TrimPrefix(connStr, "sqlite:"), nil
	}
	if strings.Contains(connStr, "://") {
		scheme := connStr[:strings.Index(connStr, "://")]
		return "", fmt.Errorf("unsupported database scheme: %s", scheme)
	}
	return connStr, nil
}
