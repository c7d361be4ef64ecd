// Package output renders scan results for machines (JSON report files)
// and for humans (console reporter).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/check"
	"github.com/PentesterFlow/LocalScan/internal/discovery"
)

// Report is the JSON document produced by a scan.
type Report struct {
	Target      string            `json:"target"`
	StartedAt   time.Time         `json:"startedAt"`
	Duration    string            `json:"duration"`
	Routes      []discovery.Route `json:"routes"`
	Findings    []check.Finding   `json:"findings"`
	RiskCounts  map[string]int    `json:"riskCounts"`
	ChecksRun   int               `json:"checksRun"`
	ChecksError int               `json:"checksError"`
}

// CountRisks tallies findings by risk level.
func CountRisks(findings []check.Finding) map[string]int {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[string(f.Risk)]++
	}
	return counts
}

// WriteJSON encodes the report to w with indentation.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteJSONFile writes the report to path, creating parent directories
// as needed.
func WriteJSONFile(path string, report *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	return WriteJSON(f, report)
}
