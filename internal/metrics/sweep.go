package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep subsystem metrics
var (
	// SweepDuration tracks how long sweep runs take
	SweepDuration prometheus.Histogram

	// FilesScannedTotal tracks total files examined
	FilesScannedTotal prometheus.Counter

	// FilesModifiedTotal tracks total files whose header was stripped
	FilesModifiedTotal prometheus.Counter

	// LinesRemovedTotal tracks total header lines removed
	LinesRemovedTotal prometheus.Counter

	// BytesRemovedTotal tracks total bytes removed from files
	BytesRemovedTotal prometheus.Counter

	// ErrorsTotal tracks per-file errors across all runs
	ErrorsTotal prometheus.Counter

	// SweepLastRunTimestamp records Unix timestamp of last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// SignatureMatchesTotal tracks matches per signature
	SignatureMatchesTotal *prometheus.CounterVec
)

// initSweepMetrics initializes all sweep subsystem metrics
func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"headersweep_sweep_duration_seconds",
		"Duration of sweep runs in seconds.",
	)

	FilesScannedTotal = NewCounter(
		"headersweep_files_scanned_total",
		"Total number of files examined for a boilerplate header.",
	)

	FilesModifiedTotal = NewCounter(
		"headersweep_files_modified_total",
		"Total number of files whose header was stripped.",
	)

	LinesRemovedTotal = NewCounter(
		"headersweep_lines_removed_total",
		"Total header lines removed across all files.",
	)

	BytesRemovedTotal = NewCounter(
		"headersweep_bytes_removed_total",
		"Total bytes removed across all files.",
	)

	ErrorsTotal = NewCounter(
		"headersweep_errors_total",
		"Total per-file errors encountered during sweeps.",
	)

	SweepLastRunTimestamp = NewGauge(
		"headersweep_last_run_timestamp",
		"Timestamp of the last sweep run (Unix epoch seconds).",
	)

	SignatureMatchesTotal = NewCounterVec(
		"headersweep_signature_matches_total",
		"Total header matches per signature string.",
		[]string{"signature"},
	)
}

// registerSweepMetrics registers all sweep metrics with Prometheus
func registerSweepMetrics() {
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(FilesScannedTotal)
	prometheus.MustRegister(FilesModifiedTotal)
	prometheus.MustRegister(LinesRemovedTotal)
	prometheus.MustRegister(BytesRemovedTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(SweepLastRunTimestamp)
	prometheus.MustRegister(SignatureMatchesTotal)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordModification records one stripped file
func RecordModification(signature string, linesRemoved int, bytesRemoved int64) {
	FilesModifiedTotal.Inc()
	LinesRemovedTotal.Add(float64(linesRemoved))
	BytesRemovedTotal.Add(float64(bytesRemoved))
	if signature != "" {
		SignatureMatchesTotal.WithLabelValues(signature).Inc()
	}
}
