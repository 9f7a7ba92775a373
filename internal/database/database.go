package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"header-sweep/internal/header"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryDB manages the SQLite database of modification history
type HistoryDB struct {
	db *sql.DB
}

// ModificationRecord represents a single per-file outcome
type ModificationRecord struct {
	ID           int64
	Timestamp    time.Time
	Action       string // MODIFIED, DRY_RUN, SKIP, or ERROR
	Path         string
	FileName     string
	Size         int64
	Signature    string
	LinesRemoved int
	BytesRemoved int64
	WalkRoot     string
	ErrorMessage string
	CreatedAt    time.Time
}

// NewHistoryDB creates a new database connection and initializes schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A trivial query creates the file and surfaces permission problems
	// up front, unlike Ping()
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode: the sweep writes while the query CLI reads
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return hdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (h *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS modifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL,

		signature TEXT,
		lines_removed INTEGER,
		bytes_removed INTEGER,

		walk_root TEXT,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON modifications(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON modifications(action);
	CREATE INDEX IF NOT EXISTS idx_path ON modifications(path);
	CREATE INDEX IF NOT EXISTS idx_bytes_removed ON modifications(bytes_removed);
	CREATE INDEX IF NOT EXISTS idx_created_at ON modifications(created_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := h.db.Exec(schema)
	return err
}

// RecordModification inserts a per-file outcome into the database
func (h *HistoryDB) RecordModification(action string, res header.Result, size int64, walkRoot, errorMsg string) error {
	query := `
	INSERT INTO modifications (
		timestamp, action, path, file_name, size,
		signature, lines_removed, bytes_removed,
		walk_root, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(
		query,
		time.Now(),
		action,
		res.Path,
		filepath.Base(res.Path),
		size,
		res.Signature,
		res.LinesRemoved,
		res.BytesRemoved,
		walkRoot,
		errorMsg,
	)

	return err
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (h *HistoryDB) Vacuum() error {
	_, err := h.db.Exec("VACUUM")
	return err
}

// GetDatabaseStats returns database statistics
func (h *HistoryDB) GetDatabaseStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalRecords int64
	err := h.db.QueryRow("SELECT COUNT(*) FROM modifications").Scan(&totalRecords)
	if err != nil {
		return nil, err
	}
	stats["total_records"] = totalRecords

	var pageCount, pageSize int64
	err = h.db.QueryRow("PRAGMA page_count").Scan(&pageCount)
	if err != nil {
		return nil, err
	}
	err = h.db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	if err != nil {
		return nil, err
	}
	stats["database_size_bytes"] = pageCount * pageSize

	var oldest, newest sql.NullString
	err = h.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM modifications").Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if t, ok := parseSQLiteTime(oldest); ok {
		stats["oldest_record"] = t
	}
	if t, ok := parseSQLiteTime(newest); ok {
		stats["newest_record"] = t
	}

	return stats, nil
}

// parseSQLiteTime parses the timestamp formats go-sqlite3 may emit
func parseSQLiteTime(v sql.NullString) (time.Time, bool) {
	if !v.Valid || v.String == "" {
		return time.Time{}, false
	}
	formats := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, v.String); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
