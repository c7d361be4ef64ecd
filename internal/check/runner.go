package check

import (
	"context"
	"fmt"

	"github.com/PentesterFlow/LocalScan/internal/logger"
	"github.com/PentesterFlow/LocalScan/internal/metrics"
)

// Reporter receives per-check status events. The event payload is the only
// contract the external reporter depends on; rendering is its own concern.
type Reporter interface {
	CheckStarted(id, name string)
	CheckCompleted(id, name string, findings int)
	CheckFailed(id, name string, err error)
}

// NopReporter discards all events.
type NopReporter struct{}

// CheckStarted implements Reporter.
func (NopReporter) CheckStarted(string, string) {}

// CheckCompleted implements Reporter.
func (NopReporter) CheckCompleted(string, string, int) {}

// CheckFailed implements Reporter.
func (NopReporter) CheckFailed(string, string, error) {}

// Runner executes checks strictly one at a time, in list order. A check
// may fan out its own concurrent requests internally; the runner's only
// concurrency guarantee is that no two checks run in the same window.
type Runner struct {
	reporter Reporter
	log      *logger.Logger
}

// NewRunner creates a runner. A nil reporter discards events.
func NewRunner(reporter Reporter, log *logger.Logger) *Runner {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if log == nil {
		log = logger.Global().WithComponent("scheduler")
	}
	return &Runner{reporter: reporter, log: log}
}

// Run invokes each check in order and aggregates findings. A failing check
// is logged as a warning and skipped; findings already collected from
// earlier checks are never lost.
func (r *Runner) Run(ctx context.Context, checks []Check, sc *Context) []Finding {
	var all []Finding

	for _, c := range checks {
		if ctx.Err() != nil {
			r.log.Warn("Scan cancelled, skipping remaining checks")
			break
		}

		r.reporter.CheckStarted(c.ID(), c.Name())
		r.log.CheckEvent(c.ID(), "started", 0)

		findings, err := r.runOne(ctx, c, sc)
		if err != nil {
			r.log.WithError(err).Warnf("Check %s failed, continuing", c.ID())
			r.reporter.CheckFailed(c.ID(), c.Name(), err)
			continue
		}

		for _, f := range findings {
			metrics.Global().RecordFinding()
			r.log.FindingEvent(f.CheckID, f.Endpoint, string(f.Risk), f.Name)
		}

		all = append(all, findings...)
		r.log.CheckEvent(c.ID(), "completed", len(findings))
		r.reporter.CheckCompleted(c.ID(), c.Name(), len(findings))
	}

	return all
}

// runOne isolates a single check invocation, converting panics into
// ordinary errors so a misbehaving check cannot take down the scan.
func (r *Runner) runOne(ctx context.Context, c Check, sc *Context) (findings []Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = fmt.Errorf("check %s panicked: %v", c.ID(), rec)
		}
	}()

	return c.Run(ctx, sc)
}
