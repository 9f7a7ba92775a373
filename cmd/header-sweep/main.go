package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"header-sweep/internal/config"
	"header-sweep/internal/database"
	"header-sweep/internal/exitcodes"
	"header-sweep/internal/logging"
	"header-sweep/internal/metrics"
	"header-sweep/internal/scan"
	"header-sweep/internal/sweep"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Optional path to configuration file")
	dryRun := flag.Bool("dry-run", false, "Report files that would change without modifying them")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(exitcodes.InvalidTarget)
	}
	root := flag.Arg(0)

	// Load configuration (built-in defaults when no file is given)
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load config: %v\n", err)
			os.Exit(exitcodes.InvalidConfig)
		}
	}

	// Initialize logger
	logger := logging.NewWithConfig(cfg)

	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be modified")
	}

	// Initialize metrics (Prometheus)
	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Initialize database for modification history
	var db *database.HistoryDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening history database: %s", cfg.DatabasePath)
		var err error
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, stopping...", sig)
		cancel()
	}()

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	fmt.Printf("Scanning dir: %s\n\n", root)

	sweeper := sweep.NewSweeper(cfg, logger, *dryRun, db)
	summary, err := sweeper.Run(ctx, root)
	if err != nil {
		if errors.Is(err, scan.ErrInvalidTarget) {
			fmt.Fprintf(os.Stderr, "Error: directory '%s' not found or not a directory.\n", root)
			os.Exit(exitcodes.InvalidTarget)
		}
		if errors.Is(err, context.Canceled) {
			logger.Println("Sweep interrupted")
			if summary != nil {
				summary.PrintSummary(os.Stdout)
			}
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Printf("ERROR: Sweep failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}

	summary.PrintSummary(os.Stdout)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <directory>\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "Strip the 42 school boilerplate header from source files under <directory>.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}
