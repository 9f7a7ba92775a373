package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	Init()
}

func TestInitIsIdempotent(t *testing.T) {
	// A second Init must not panic with duplicate registration
	Init()
	Init()

	if FilesScannedTotal == nil || SweepDuration == nil {
		t.Fatal("metrics not initialized")
	}
}

func TestRecordModification(t *testing.T) {
	beforeFiles := testutil.ToFloat64(FilesModifiedTotal)
	beforeLines := testutil.ToFloat64(LinesRemovedTotal)
	beforeBytes := testutil.ToFloat64(BytesRemovedTotal)

	RecordModification("/* banner */", 12, 972)

	if got := testutil.ToFloat64(FilesModifiedTotal) - beforeFiles; got != 1 {
		t.Errorf("FilesModifiedTotal delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LinesRemovedTotal) - beforeLines; got != 12 {
		t.Errorf("LinesRemovedTotal delta = %v, want 12", got)
	}
	if got := testutil.ToFloat64(BytesRemovedTotal) - beforeBytes; got != 972 {
		t.Errorf("BytesRemovedTotal delta = %v, want 972", got)
	}
	if got := testutil.ToFloat64(SignatureMatchesTotal.WithLabelValues("/* banner */")); got != 1 {
		t.Errorf("SignatureMatchesTotal = %v, want 1", got)
	}
}

func TestRecordSweepRun(t *testing.T) {
	RecordSweepRun()
	if got := testutil.ToFloat64(SweepLastRunTimestamp); got <= 0 {
		t.Errorf("SweepLastRunTimestamp = %v, want > 0", got)
	}
}
