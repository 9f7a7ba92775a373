package database

import (
	"os"
	"path/filepath"
	"testing"

	"header-sweep/internal/header"
)

func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryDB failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

func modifiedResult(path string) header.Result {
	return header.Result{
		Path:     path,
		Modified: true,
		StripInfo: header.StripInfo{
			Signature:    "/* ************************************************************************** */",
			LinesRemoved: 12,
			BytesRemoved: 972,
		},
	}
}

func TestNewHistoryDB_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	db, err := NewHistoryDB(dbPath)
	if err != nil {
		t.Fatalf("NewHistoryDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file was not created: %v", err)
	}
}

func TestRecordAndQuery(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordModification("MODIFIED", modifiedResult("/src/main.c"), 1500, "/src", ""); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}
	if err := db.RecordModification("SKIP", header.Result{Path: "/src/blob.bin"}, 900, "/src", "unreadable file"); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}
	if err := db.RecordModification("ERROR", header.Result{Path: "/src/ro.c"}, 800, "/src", "write /src/ro.c: permission denied"); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}

	recent, err := db.GetRecentModifications(10)
	if err != nil {
		t.Fatalf("GetRecentModifications failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d records, want 3", len(recent))
	}

	modified, err := db.GetModificationsByAction("MODIFIED")
	if err != nil {
		t.Fatalf("GetModificationsByAction failed: %v", err)
	}
	if len(modified) != 1 {
		t.Fatalf("got %d MODIFIED records, want 1", len(modified))
	}
	rec := modified[0]
	if rec.Path != "/src/main.c" {
		t.Errorf("Path = %q", rec.Path)
	}
	if rec.FileName != "main.c" {
		t.Errorf("FileName = %q, want main.c", rec.FileName)
	}
	if rec.LinesRemoved != 12 {
		t.Errorf("LinesRemoved = %d, want 12", rec.LinesRemoved)
	}
	if rec.BytesRemoved != 972 {
		t.Errorf("BytesRemoved = %d, want 972", rec.BytesRemoved)
	}
	if rec.WalkRoot != "/src" {
		t.Errorf("WalkRoot = %q, want /src", rec.WalkRoot)
	}

	errored, err := db.GetModificationsByAction("ERROR")
	if err != nil {
		t.Fatalf("GetModificationsByAction failed: %v", err)
	}
	if len(errored) != 1 || errored[0].ErrorMessage == "" {
		t.Errorf("expected one ERROR record with a message, got %+v", errored)
	}
}

func TestGetModificationsByPath(t *testing.T) {
	db := openTestDB(t)

	paths := []string{"/proj/a/main.c", "/proj/a/util.c", "/other/x.c"}
	for _, p := range paths {
		if err := db.RecordModification("MODIFIED", modifiedResult(p), 1000, "/proj", ""); err != nil {
			t.Fatalf("RecordModification failed: %v", err)
		}
	}

	records, err := db.GetModificationsByPath("/proj/%")
	if err != nil {
		t.Fatalf("GetModificationsByPath failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestGetLargestModifications(t *testing.T) {
	db := openTestDB(t)

	sizes := []int64{100, 5000, 300}
	for i, bytes := range sizes {
		res := modifiedResult(filepath.Join("/src", "file"+string(rune('a'+i))+".c"))
		res.BytesRemoved = bytes
		if err := db.RecordModification("MODIFIED", res, bytes+50, "/src", ""); err != nil {
			t.Fatalf("RecordModification failed: %v", err)
		}
	}
	// SKIPs never count as largest removals
	if err := db.RecordModification("SKIP", header.Result{Path: "/src/skip.c"}, 9000, "/src", "unreadable"); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}

	records, err := db.GetLargestModifications(2)
	if err != nil {
		t.Fatalf("GetLargestModifications failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].BytesRemoved != 5000 || records[1].BytesRemoved != 300 {
		t.Errorf("wrong order: %d, %d", records[0].BytesRemoved, records[1].BytesRemoved)
	}
}

func TestGetSweepStats(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.RecordModification("MODIFIED", modifiedResult("/src/f.c"), 1500, "/src", ""); err != nil {
			t.Fatalf("RecordModification failed: %v", err)
		}
	}
	if err := db.RecordModification("SKIP", header.Result{Path: "/src/b.bin"}, 10, "/src", "unreadable"); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}
	if err := db.RecordModification("ERROR", header.Result{Path: "/src/ro.c"}, 10, "/src", "permission denied"); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}

	stats, err := db.GetSweepStats(30)
	if err != nil {
		t.Fatalf("GetSweepStats failed: %v", err)
	}

	if stats.TotalModified != 3 {
		t.Errorf("TotalModified = %d, want 3", stats.TotalModified)
	}
	if stats.TotalSkipped != 1 {
		t.Errorf("TotalSkipped = %d, want 1", stats.TotalSkipped)
	}
	if stats.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", stats.TotalErrors)
	}
	if stats.TotalLinesRemoved != 36 {
		t.Errorf("TotalLinesRemoved = %d, want 36", stats.TotalLinesRemoved)
	}
	if stats.TotalBytesRemoved != 2916 {
		t.Errorf("TotalBytesRemoved = %d, want 2916", stats.TotalBytesRemoved)
	}
	if stats.ByAction["MODIFIED"] != 3 || stats.ByAction["SKIP"] != 1 || stats.ByAction["ERROR"] != 1 {
		t.Errorf("ByAction = %v", stats.ByAction)
	}
	if len(stats.BySignature) != 1 {
		t.Errorf("BySignature = %v", stats.BySignature)
	}
}

func TestGetDatabaseStats(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordModification("MODIFIED", modifiedResult("/src/f.c"), 1500, "/src", ""); err != nil {
		t.Fatalf("RecordModification failed: %v", err)
	}

	stats, err := db.GetDatabaseStats()
	if err != nil {
		t.Fatalf("GetDatabaseStats failed: %v", err)
	}
	if stats["total_records"].(int64) != 1 {
		t.Errorf("total_records = %v, want 1", stats["total_records"])
	}
	if stats["database_size_bytes"].(int64) <= 0 {
		t.Errorf("database_size_bytes = %v", stats["database_size_bytes"])
	}
}

func TestVacuum(t *testing.T) {
	db := openTestDB(t)
	if err := db.Vacuum(); err != nil {
		t.Errorf("Vacuum failed: %v", err)
	}
}
