package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"header-sweep/internal/database"
	"header-sweep/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/header-sweep/history.db", "Path to modification history database")
	recent := flag.Int("recent", 0, "Show N most recent modifications")
	stats := flag.Bool("stats", false, "Show sweep statistics")
	action := flag.String("action", "", "Filter by action (MODIFIED, DRY_RUN, SKIP, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N modifications that removed the most bytes")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// Open database
	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  header-sweep-query --recent 10          # Show 10 most recent modifications")
		fmt.Println("  header-sweep-query --stats              # Show sweep statistics")
		fmt.Println("  header-sweep-query --action MODIFIED    # Show only stripped files")
		fmt.Println("  header-sweep-query --path '/home/%'     # Show records under /home")
		fmt.Println("  header-sweep-query --largest 10         # Show 10 largest removals")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.HistoryDB, days int, jsonOutput bool) {
	stats, err := db.GetSweepStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Sweep Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Files Modified:   %d\n", stats.TotalModified)
	fmt.Printf("Files Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Errors:           %d\n", stats.TotalErrors)
	fmt.Printf("Lines Removed:    %d\n", stats.TotalLinesRemoved)
	fmt.Printf("Bytes Removed:    %s\n\n", formatBytes(stats.TotalBytesRemoved))

	if len(stats.BySignature) > 0 {
		fmt.Println("By Signature:")
		for sig, count := range stats.BySignature {
			fmt.Printf("  %-82s %d\n", sig, count)
		}
		fmt.Println()
	}

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentModifications(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent modifications: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *database.HistoryDB, action string, jsonOutput bool) {
	records, err := db.GetModificationsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByPath(db *database.HistoryDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetModificationsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *database.HistoryDB, limit int, jsonOutput bool) {
	records, err := db.GetLargestModifications(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest modifications: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d removals:\n\n", limit)
	printRecords(records)
}

func printRecords(records []database.ModificationRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tLines\tRemoved\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t-----\t-------\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		removed := formatBytes(r.BytesRemoved)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.LinesRemoved, removed, r.Path)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
