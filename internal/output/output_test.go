package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// =============================================================================
// JSON Report Tests
// =============================================================================

func TestCountRisks(t *testing.T) {
	findings := []check.Finding{
		{Risk: check.RiskHigh},
		{Risk: check.RiskHigh},
		{Risk: check.RiskLow},
	}

	counts := CountRisks(findings)
	if counts["high"] != 2 || counts["low"] != 1 {
		t.Errorf("CountRisks() = %v", counts)
	}
}

func TestWriteJSON(t *testing.T) {
	report := &Report{
		Target:    "http://localhost:3000",
		StartedAt: time.Now(),
		Duration:  "1.5s",
		Findings: []check.Finding{
			{ID: "f1", CheckID: "cors", Name: "Reflected CORS origin", Endpoint: "/", Risk: check.RiskHigh},
		},
		RiskCounts: map[string]int{"high": 1},
		ChecksRun:  6,
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Target != report.Target || len(decoded.Findings) != 1 {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
	if decoded.Findings[0].CheckID != "cors" {
		t.Errorf("finding fields lost: %+v", decoded.Findings[0])
	}
}

func TestWriteJSONFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "scan.json")

	err := WriteJSONFile(path, &Report{Target: "http://localhost:3000"})
	if err != nil {
		t.Fatalf("WriteJSONFile() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

// =============================================================================
// Console Reporter Tests
// =============================================================================

func TestConsoleReporter_Events(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.CheckStarted("cors", "CORS misconfiguration")
	r.CheckCompleted("cors", "CORS misconfiguration", 0)
	r.CheckStarted("exposure", "Sensitive path exposure")
	r.CheckCompleted("exposure", "Sensitive path exposure", 2)
	r.CheckFailed("race", "Race condition probing", errors.New("dial refused"))

	out := buf.String()
	for _, want := range []string{"CORS misconfiguration", "clean", "2 finding(s)", "error: dial refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Summary(&Report{
		Target:   "http://localhost:3000",
		Duration: "2s",
		Findings: []check.Finding{
			{Name: "Environment file exposed", Endpoint: "/.env", Risk: check.RiskCritical},
		},
		RiskCounts:  map[string]int{"critical": 1},
		ChecksRun:   6,
		ChecksError: 1,
	})

	out := buf.String()
	for _, want := range []string{"[CRIT]", "/.env", "critical=1", "1 of 6 checks failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
