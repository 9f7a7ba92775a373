package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"header-sweep/internal/config"
	"header-sweep/internal/database"
	"header-sweep/internal/fsops"
	"header-sweep/internal/header"
	"header-sweep/internal/limiter"
	"header-sweep/internal/metrics"
	"header-sweep/internal/safety"
	"header-sweep/internal/scan"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepLogger interface for structured logging during a sweep
type SweepLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// sweepStdLogger wraps standard log.Logger to implement SweepLogger interface
type sweepStdLogger struct {
	*log.Logger
}

func (l *sweepStdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *sweepStdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *sweepStdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for sweep metrics
type Metrics interface {
	FilesScannedTotal() prometheus.Counter
	ErrorsTotal() prometheus.Counter
}

// sweepMetrics wraps global metrics to implement Metrics interface
type sweepMetrics struct{}

func (m *sweepMetrics) FilesScannedTotal() prometheus.Counter {
	return metrics.FilesScannedTotal
}

func (m *sweepMetrics) ErrorsTotal() prometheus.Counter {
	return metrics.ErrorsTotal
}

// Summary aggregates a whole run for the final report
type Summary struct {
	Root          string
	Processed     int
	Modified      int
	Skipped       int
	Errors        int
	LinesRemoved  int64
	BytesRemoved  int64
	ModifiedPaths []string
	Duration      time.Duration
}

// Sweeper drives one run: walk the root, strip each candidate in turn,
// report per-file outcomes, and aggregate a summary. Files are handled
// strictly one at a time.
type Sweeper struct {
	cfg       *config.Config
	logger    SweepLogger
	metrics   Metrics
	stripper  *header.Stripper
	scanner   *scan.Scanner
	validator *safety.Validator
	db        *database.HistoryDB
	out       io.Writer
	dryRun    bool
}

// NewSweeper creates a Sweeper. db may be nil to disable history.
func NewSweeper(cfg *config.Config, logger *log.Logger, dryRun bool, db *database.HistoryDB) *Sweeper {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		cfg:      cfg,
		logger:   &sweepStdLogger{Logger: logger},
		metrics:  &sweepMetrics{},
		stripper: header.NewStripper(cfg.Signatures, cfg.HeaderLines),
		scanner:  scan.NewScanner(logger),
		db:       db,
		out:      os.Stdout,
		dryRun:   dryRun,
	}
}

// SetRewriter replaces the filesystem layer used for per-file reads and
// writes, for tests.
func (s *Sweeper) SetRewriter(rw fsops.Rewriter) {
	s.stripper.SetRewriter(rw)
}

// SetValidator overrides the rewrite-target validator, for tests.
func (s *Sweeper) SetValidator(v *safety.Validator) {
	s.validator = v
}

// SetOutput redirects per-file and summary output, for tests.
func (s *Sweeper) SetOutput(w io.Writer) {
	if w != nil {
		s.out = w
	}
}

// Run sweeps the tree rooted at root. It returns a fatal error only
// when the root is unusable; per-file failures are isolated, recorded,
// and reflected in the Summary.
func (s *Sweeper) Run(ctx context.Context, root string) (*Summary, error) {
	start := time.Now()
	metrics.RecordSweepRun()

	candidates, err := s.scanner.Walk(root)
	if err != nil {
		if !errors.Is(err, scan.ErrInvalidTarget) {
			s.metrics.ErrorsTotal().Inc()
		}
		return nil, err
	}

	validator := s.validator
	if validator == nil {
		validator = safety.NewValidator([]string{root}, nil)
	}

	var cpuLimiter *limiter.CPULimiter
	if s.cfg.ResourceLimits.MaxCPUPercent > 0 {
		cpuLimiter = limiter.NewCPULimiter(s.cfg.ResourceLimits.MaxCPUPercent)
	}

	summary := &Summary{Root: root}

	s.logger.Info("Starting sweep",
		"root", root,
		"candidates", len(candidates),
		"dry_run", s.dryRun,
	)

	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			summary.Duration = time.Since(start)
			return summary, ctx.Err()
		default:
		}

		if cpuLimiter != nil {
			cpuLimiter.Throttle()
		}

		if !s.cfg.MatchesExtension(cand.Path) {
			continue
		}

		summary.Processed++
		s.metrics.FilesScannedTotal().Inc()
		fmt.Fprintf(s.out, "Checking: %s...", cand.Path)

		if err := validator.ValidateRewriteTarget(cand.Path); err != nil {
			fmt.Fprintln(s.out, " skipped.")
			s.logStructured("SKIP", cand.Path, header.StripInfo{}, err.Error())
			s.record("SKIP", header.Result{Path: cand.Path}, cand.Size, root, err.Error())
			summary.Skipped++
			continue
		}

		res, err := s.processOne(cand.Path)
		if err != nil {
			switch {
			case errors.Is(err, header.ErrUnreadable):
				fmt.Fprintln(s.out, " skipped.")
				s.logStructured("SKIP", cand.Path, header.StripInfo{}, err.Error())
				s.record("SKIP", res, cand.Size, root, err.Error())
				summary.Skipped++
			default:
				fmt.Fprintln(s.out, " ERROR")
				s.logger.Error("Failed to process", "path", cand.Path, "error", err)
				s.logStructured("ERROR", cand.Path, res.StripInfo, err.Error())
				s.record("ERROR", res, cand.Size, root, err.Error())
				s.metrics.ErrorsTotal().Inc()
				summary.Errors++
			}
			continue
		}

		if !res.Modified {
			fmt.Fprintln(s.out, " unchanged.")
			continue
		}

		action := "MODIFIED"
		if s.dryRun {
			action = "DRY_RUN"
			fmt.Fprintln(s.out, " would modify (dry run).")
		} else {
			fmt.Fprintln(s.out, " MODIFIED")
		}

		s.logStructured(action, cand.Path, res.StripInfo, "")
		s.record(action, res, cand.Size, root, "")

		summary.Modified++
		summary.LinesRemoved += int64(res.LinesRemoved)
		summary.BytesRemoved += res.BytesRemoved
		summary.ModifiedPaths = append(summary.ModifiedPaths, cand.Path)

		metrics.RecordModification(res.Signature, res.LinesRemoved, res.BytesRemoved)
	}

	summary.Duration = time.Since(start)
	metrics.SweepDuration.Observe(summary.Duration.Seconds())

	s.logger.Info("Sweep complete",
		"processed", summary.Processed,
		"modified", summary.Modified,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"bytes_removed", summary.BytesRemoved,
		"duration", summary.Duration,
	)

	return summary, nil
}

func (s *Sweeper) processOne(path string) (header.Result, error) {
	if s.dryRun {
		return s.stripper.PreviewFile(path)
	}
	return s.stripper.ProcessFile(path)
}

// record writes a per-file outcome to the history database, if enabled.
// History failures never fail the sweep.
func (s *Sweeper) record(action string, res header.Result, size int64, root, errMsg string) {
	if s.db == nil {
		return
	}
	if err := s.db.RecordModification(action, res, size, root, errMsg); err != nil {
		s.logger.Error("Failed to record to database", "error", err)
	}
}

// logStructured logs with structured format: timestamp, action, path,
// signature, lines and bytes removed
func (s *Sweeper) logStructured(action, path string, info header.StripInfo, errMsg string) {
	logEntry := fmt.Sprintf("[%s] %s path=%s lines_removed=%d bytes_removed=%d",
		time.Now().UTC().Format(time.RFC3339),
		action,
		path,
		info.LinesRemoved,
		info.BytesRemoved,
	)
	if errMsg != "" {
		logEntry += fmt.Sprintf(" error=%q", errMsg)
	}
	s.logger.Info(logEntry)
}

// PrintSummary writes the end-of-run report in the classic format
func (sum *Summary) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n=> RESULT <=")
	if len(sum.ModifiedPaths) > 0 {
		fmt.Fprintf(w, "Modified %d out of %d scanned files:\n", sum.Modified, sum.Processed)
		for _, p := range sum.ModifiedPaths {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	} else {
		fmt.Fprintf(w, "No files modified out of %d scanned files.\n", sum.Processed)
	}
	if sum.Errors > 0 {
		fmt.Fprintf(w, "%d files failed; see log for details.\n", sum.Errors)
	}
}
