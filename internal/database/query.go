package database

import (
	"database/sql"
	"time"
)

const recordColumns = `
	SELECT id, timestamp, action, path, file_name, size,
	       signature, lines_removed, bytes_removed, walk_root, error_message
	FROM modifications
`

// GetRecentModifications returns the N most recent per-file outcomes
func (h *HistoryDB) GetRecentModifications(limit int) ([]ModificationRecord, error) {
	query := recordColumns + `
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return h.queryModifications(query, limit)
}

// GetModificationsByAction returns outcomes filtered by action type
func (h *HistoryDB) GetModificationsByAction(action string) ([]ModificationRecord, error) {
	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return h.queryModifications(query, action)
}

// GetModificationsByPath returns outcomes matching a path pattern
func (h *HistoryDB) GetModificationsByPath(pathPattern string) ([]ModificationRecord, error) {
	query := recordColumns + `
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return h.queryModifications(query, pathPattern)
}

// GetLargestModifications returns the N modifications that removed the
// most bytes
func (h *HistoryDB) GetLargestModifications(limit int) ([]ModificationRecord, error) {
	query := recordColumns + `
	WHERE action = 'MODIFIED'
	ORDER BY bytes_removed DESC
	LIMIT ?
	`

	return h.queryModifications(query, limit)
}

// SweepStats summarizes sweep history over a period
type SweepStats struct {
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	TotalModified     int64          `json:"total_modified"`
	TotalSkipped      int64          `json:"total_skipped"`
	TotalErrors       int64          `json:"total_errors"`
	TotalLinesRemoved int64          `json:"total_lines_removed"`
	TotalBytesRemoved int64          `json:"total_bytes_removed"`
	ByAction          map[string]int `json:"by_action"`
	BySignature       map[string]int `json:"by_signature"`
}

// GetSweepStats aggregates outcomes over the last N days
func (h *HistoryDB) GetSweepStats(days int) (*SweepStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats := &SweepStats{
		StartDate:   start,
		EndDate:     end,
		ByAction:    make(map[string]int),
		BySignature: make(map[string]int),
	}

	row := h.db.QueryRow(`
	SELECT
		COALESCE(SUM(CASE WHEN action = 'MODIFIED' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'SKIP' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'ERROR' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'MODIFIED' THEN lines_removed ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'MODIFIED' THEN bytes_removed ELSE 0 END), 0)
	FROM modifications
	WHERE timestamp BETWEEN ? AND ?
	`, start, end)
	if err := row.Scan(
		&stats.TotalModified,
		&stats.TotalSkipped,
		&stats.TotalErrors,
		&stats.TotalLinesRemoved,
		&stats.TotalBytesRemoved,
	); err != nil {
		return nil, err
	}

	if err := h.countGroupedInto(stats.ByAction, `
	SELECT action, COUNT(*)
	FROM modifications
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`, start, end); err != nil {
		return nil, err
	}

	if err := h.countGroupedInto(stats.BySignature, `
	SELECT signature, COUNT(*)
	FROM modifications
	WHERE action = 'MODIFIED' AND signature != '' AND timestamp BETWEEN ? AND ?
	GROUP BY signature
	`, start, end); err != nil {
		return nil, err
	}

	return stats, nil
}

func (h *HistoryDB) countGroupedInto(dest map[string]int, query string, args ...interface{}) error {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

// queryModifications executes a record query and scans results
func (h *HistoryDB) queryModifications(query string, args ...interface{}) ([]ModificationRecord, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ModificationRecord
	for rows.Next() {
		var rec ModificationRecord
		var signature, walkRoot, errorMessage sql.NullString
		var linesRemoved, bytesRemoved sql.NullInt64

		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Action,
			&rec.Path,
			&rec.FileName,
			&rec.Size,
			&signature,
			&linesRemoved,
			&bytesRemoved,
			&walkRoot,
			&errorMessage,
		); err != nil {
			return nil, err
		}

		rec.Signature = signature.String
		rec.LinesRemoved = int(linesRemoved.Int64)
		rec.BytesRemoved = bytesRemoved.Int64
		rec.WalkRoot = walkRoot.String
		rec.ErrorMessage = errorMessage.String
		records = append(records, rec)
	}

	return records, rows.Err()
}
