package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// riskMarks order findings visually without relying on terminal colors.
var riskMarks = map[check.Risk]string{
	check.RiskCritical: "[CRIT]",
	check.RiskHigh:     "[HIGH]",
	check.RiskMedium:   "[MED ]",
	check.RiskLow:      "[LOW ]",
}

// ConsoleReporter prints check progress as it happens and a findings
// summary at the end.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// CheckStarted implements check.Reporter.
func (r *ConsoleReporter) CheckStarted(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "==> %s (%s)\n", name, id)
}

// CheckCompleted implements check.Reporter.
func (r *ConsoleReporter) CheckCompleted(id, name string, findings int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if findings == 0 {
		fmt.Fprintf(r.out, "    clean\n")
		return
	}
	fmt.Fprintf(r.out, "    %d finding(s)\n", findings)
}

// CheckFailed implements check.Reporter.
func (r *ConsoleReporter) CheckFailed(id, name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "    error: %v\n", err)
}

// Summary prints each finding and the end-of-scan totals.
func (r *ConsoleReporter) Summary(report *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(report.Findings) > 0 {
		fmt.Fprintln(r.out)
	}
	for _, f := range report.Findings {
		mark, ok := riskMarks[f.Risk]
		if !ok {
			mark = "[????]"
		}
		fmt.Fprintf(r.out, "%s %-30s %s\n", mark, f.Endpoint, f.Name)
	}

	fmt.Fprintf(r.out, "\nScan of %s finished in %s\n", report.Target, report.Duration)
	fmt.Fprintf(r.out, "  routes:   %d\n", len(report.Routes))
	fmt.Fprintf(r.out, "  findings: %d", len(report.Findings))

	if len(report.Findings) > 0 {
		fmt.Fprintf(r.out, " (critical=%d high=%d medium=%d low=%d)",
			report.RiskCounts[string(check.RiskCritical)],
			report.RiskCounts[string(check.RiskHigh)],
			report.RiskCounts[string(check.RiskMedium)],
			report.RiskCounts[string(check.RiskLow)])
	}
	fmt.Fprintln(r.out)

	if report.ChecksError > 0 {
		fmt.Fprintf(r.out, "  %d of %d checks failed; results may be incomplete\n",
			report.ChecksError, report.ChecksRun)
	}
}
